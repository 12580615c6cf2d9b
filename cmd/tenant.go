// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var tenantCmd = &cobra.Command{
	Use:   "tenant",
	Short: "Manage tenants",
}

type tenantJSON struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Subdomain string    `json:"subdomain"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

var createTenantCmd = &cobra.Command{
	Use:   "create [name] [subdomain]",
	Short: "Create a new tenant",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getClient()
		if err != nil {
			return err
		}

		var t tenantJSON
		err = client.do(context.Background(), "POST", "/api/v0/superadmin/tenants", map[string]string{
			"name":      args[0],
			"subdomain": args[1],
		}, &t)
		if err != nil {
			return fmt.Errorf("failed to create tenant: %w", err)
		}

		fmt.Printf("Tenant created: %s (ID: %s)\n", t.Name, t.ID)
		return nil
	},
}

var listTenantsCmd = &cobra.Command{
	Use:   "list",
	Short: "List all tenants",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getClient()
		if err != nil {
			return err
		}

		var resp struct {
			Tenants []tenantJSON `json:"tenants"`
		}
		if err := client.do(context.Background(), "GET", "/api/v0/superadmin/tenants", nil, &resp); err != nil {
			return fmt.Errorf("failed to list tenants: %w", err)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tSUBDOMAIN\tSTATUS\tCREATED_AT")
		for _, t := range resp.Tenants {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", t.ID, t.Name, t.Subdomain, t.Status, t.CreatedAt.Format(time.RFC3339))
		}
		w.Flush()
		return nil
	},
}

var suspendTenantCmd = &cobra.Command{
	Use:   "suspend [id]",
	Short: "Suspend a tenant",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setTenantStatus(args[0], "suspend")
	},
}

var unsuspendTenantCmd = &cobra.Command{
	Use:   "unsuspend [id]",
	Short: "Lift a tenant suspension",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setTenantStatus(args[0], "unsuspend")
	},
}

func setTenantStatus(id, action string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	var resp struct {
		Tenant struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"tenant"`
	}
	err = client.do(context.Background(), "POST", fmt.Sprintf("/api/v0/superadmin/tenants/%s/%s", id, action), nil, &resp)
	if err != nil {
		return fmt.Errorf("failed to %s tenant: %w", action, err)
	}

	fmt.Printf("Tenant %s is now %s\n", resp.Tenant.ID, resp.Tenant.Status)
	return nil
}

var impersonateUserID string

var impersonateCmd = &cobra.Command{
	Use:   "impersonate [tenant-id]",
	Short: "Issue a short lived impersonation token for a tenant",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getClient()
		if err != nil {
			return err
		}

		body := map[string]string{}
		if impersonateUserID != "" {
			body["user_id"] = impersonateUserID
		}

		var resp struct {
			AccessToken string `json:"access_token"`
			ExpiresIn   int    `json:"expires_in"`
			Tenant      struct {
				Subdomain string `json:"subdomain"`
			} `json:"tenant"`
			ImpersonatedUser struct {
				Email string `json:"email"`
			} `json:"impersonated_user"`
		}
		err = client.do(context.Background(), "POST", "/api/v0/superadmin/impersonate/"+args[0], body, &resp)
		if err != nil {
			return fmt.Errorf("failed to impersonate tenant: %w", err)
		}

		fmt.Printf("Impersonating %s on %s (expires in %ds)\n", resp.ImpersonatedUser.Email, resp.Tenant.Subdomain, resp.ExpiresIn)
		fmt.Println(resp.AccessToken)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tenantCmd)
	tenantCmd.AddCommand(createTenantCmd)
	tenantCmd.AddCommand(listTenantsCmd)
	tenantCmd.AddCommand(suspendTenantCmd)
	tenantCmd.AddCommand(unsuspendTenantCmd)
	tenantCmd.AddCommand(impersonateCmd)

	impersonateCmd.Flags().StringVar(&impersonateUserID, "user-id", "", "Impersonate a specific user instead of the default target")
}
