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

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage tenant users",
}

type userJSON struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

var listUsersCmd = &cobra.Command{
	Use:   "list [tenant-id]",
	Short: "List users for a tenant",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getClient()
		if err != nil {
			return err
		}

		var resp struct {
			Users []userJSON `json:"users"`
		}
		err = client.do(context.Background(), "GET", fmt.Sprintf("/api/v0/superadmin/tenants/%s/users", args[0]), nil, &resp)
		if err != nil {
			return fmt.Errorf("failed to list users: %w", err)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "USER_ID\tEMAIL\tROLE\tSTATUS")
		for _, u := range resp.Users {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", u.ID, u.Email, u.Role, u.Status)
		}
		w.Flush()
		return nil
	},
}

var createUserCmd = &cobra.Command{
	Use:   "create [tenant-id] [email] [role]",
	Short: "Create a user in a tenant",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getClient()
		if err != nil {
			return err
		}

		var u userJSON
		err = client.do(context.Background(), "POST", fmt.Sprintf("/api/v0/superadmin/tenants/%s/users", args[0]), map[string]string{
			"email": args[1],
			"role":  args[2],
		}, &u)
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		fmt.Printf("User created: %s (ID: %s, Role: %s)\n", u.Email, u.ID, u.Role)
		return nil
	},
}

var updateUserCmd = &cobra.Command{
	Use:   "update [tenant-id] [user-id] [role]",
	Short: "Update user role",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getClient()
		if err != nil {
			return err
		}

		var u userJSON
		err = client.do(context.Background(), "PATCH", fmt.Sprintf("/api/v0/superadmin/tenants/%s/users/%s", args[0], args[1]), map[string]string{
			"role": args[2],
		}, &u)
		if err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}

		fmt.Printf("User updated: %s\n", u.Email)
		fmt.Printf("New Role: %s\n", u.Role)
		return nil
	},
}

func init() {
	tenantCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(listUsersCmd)
	usersCmd.AddCommand(createUserCmd)
	usersCmd.AddCommand(updateUserCmd)
}
