// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"
)

const defaultBaseURL = "http://localhost:8080"

// The suite runs against an already deployed service. HTTP_BASE_URL points at
// it and ADMIN_TOKEN must hold a valid super admin token (see `app token mint`).
func requireEnv(t *testing.T) (string, string) {
	t.Helper()

	token := os.Getenv("ADMIN_TOKEN")
	if token == "" {
		t.Skip("ADMIN_TOKEN not set, skipping e2e test")
	}

	baseURL := os.Getenv("HTTP_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return baseURL, token
}

type apiClient struct {
	baseURL string
	token   string
	headers map[string]string
	http    *http.Client
}

func newAPIClient(baseURL, token string) *apiClient {
	return &apiClient{
		baseURL: baseURL,
		token:   token,
		headers: map[string]string{},
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *apiClient) withHeader(key, value string) *apiClient {
	clone := newAPIClient(c.baseURL, c.token)
	for k, v := range c.headers {
		clone.headers[k] = v
	}
	clone.headers[key] = value
	return clone
}

// do performs a JSON request and returns the status code and decoded body.
func (c *apiClient) do(ctx context.Context, method, path string, body any) (int, map[string]any, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, nil, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}

	out := map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			return resp.StatusCode, nil, fmt.Errorf("non-JSON response (status %d): %s", resp.StatusCode, string(raw))
		}
	}

	return resp.StatusCode, out, nil
}

func errorCode(body map[string]any) string {
	e, ok := body["error"].(map[string]any)
	if !ok {
		return ""
	}
	code, _ := e["code"].(string)
	return code
}

func uniqueSuffix() string {
	return fmt.Sprintf("%d", time.Now().UnixNano())
}
