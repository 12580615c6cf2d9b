// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/canonical/access-control-service/internal/logging"
	"github.com/canonical/access-control-service/internal/monitoring/prometheus"
	"github.com/canonical/access-control-service/internal/tracing"
	"github.com/canonical/access-control-service/internal/types"
	"github.com/canonical/access-control-service/pkg/authentication"
)

var (
	clientID     string
	clientSecret string
	tokenURL     string
	issuerURL    string
	scopes       []string

	mintUserID string
	mintTTL    time.Duration
	signingKey string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Obtain access tokens",
}

// mintTokenCmd signs a super-admin session token locally with the service's
// signing secret. Bootstrap tool, the secret never leaves the operator's
// environment.
var mintTokenCmd = &cobra.Command{
	Use:   "mint",
	Short: "Mint a super admin session token with the service signing secret",
	Run: func(cmd *cobra.Command, args []string) {
		secret := signingKey
		if secret == "" {
			secret = os.Getenv("JWT_SIGNING_SECRET")
		}
		if secret == "" {
			log.Fatal("Either --signing-secret or the JWT_SIGNING_SECRET env var must be set")
		}

		logger := logging.NewNoopLogger()
		tokens := authentication.NewTokenService(
			secret,
			mintTTL,
			tracing.NewTracer(tracing.NewNoopConfig()),
			prometheus.NewMonitor("cli", logger),
			logger,
		)

		token, err := tokens.IssueSessionToken(context.Background(), &types.User{
			ID:           mintUserID,
			IsSuperAdmin: true,
		}, mintTTL)
		if err != nil {
			log.Fatalf("Failed to mint token: %v", err)
		}

		fmt.Println(token)
	},
}

// oauthTokenCmd fetches a machine token using the client credentials flow,
// for deployments with the OIDC machine verifier enabled.
var oauthTokenCmd = &cobra.Command{
	Use:   "oauth",
	Short: "Get an access token using Client Credentials flow",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		if tokenURL == "" {
			if issuerURL == "" {
				log.Fatal("Either --token-url or --issuer-url must be provided")
			}

			// Discovery endpoint
			provider, err := oidc.NewProvider(ctx, issuerURL)
			if err != nil {
				log.Fatalf("Failed to create OIDC provider from issuer: %v", err)
			}
			tokenURL = provider.Endpoint().TokenURL
		}

		config := &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     tokenURL,
			Scopes:       scopes,
		}

		token, err := config.Token(ctx)
		if err != nil {
			log.Fatalf("Failed to get token: %v", err)
		}

		fmt.Println(token.AccessToken)
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.AddCommand(mintTokenCmd)
	tokenCmd.AddCommand(oauthTokenCmd)

	mintTokenCmd.Flags().StringVar(&mintUserID, "user-id", "", "Subject user ID for the token")
	mintTokenCmd.Flags().DurationVar(&mintTTL, "ttl", time.Hour, "Token lifetime")
	mintTokenCmd.Flags().StringVar(&signingKey, "signing-secret", "", "JWT signing secret (defaults to JWT_SIGNING_SECRET env var)")
	_ = mintTokenCmd.MarkFlagRequired("user-id")

	oauthTokenCmd.Flags().StringVar(&clientID, "client-id", "", "Client ID")
	oauthTokenCmd.Flags().StringVar(&clientSecret, "client-secret", "", "Client Secret")
	oauthTokenCmd.Flags().StringVar(&tokenURL, "token-url", "", "Token URL")
	oauthTokenCmd.Flags().StringVar(&issuerURL, "issuer-url", "", "Issuer URL (for OIDC discovery)")
	oauthTokenCmd.Flags().StringSliceVar(&scopes, "scopes", []string{}, "Scopes (comma-separated)")

	_ = oauthTokenCmd.MarkFlagRequired("client-id")
	_ = oauthTokenCmd.MarkFlagRequired("client-secret")
}
