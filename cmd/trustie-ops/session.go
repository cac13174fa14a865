package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	tokenEmail string
	tokenRoles []string
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage dashboard sessions",
}

var sessionTokenCmd = &cobra.Command{
	Use:   "token <admin-id>",
	Short: "Mint a session token for an admin",
	Long: `Token signs a session for the given admin with the configured secret.
Send it as the session cookie or as a Bearer header.

Example:
  trustie-ops session token admin-1 --email ops@trustie.example`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := container.Sessions.IssueToken(args[0], tokenEmail, tokenRoles)
		if err != nil {
			return fmt.Errorf("issue token: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	sessionTokenCmd.Flags().StringVar(&tokenEmail, "email", "", "email claim")
	sessionTokenCmd.Flags().StringSliceVar(&tokenRoles, "role", []string{"admin"}, "role claims")

	sessionCmd.AddCommand(sessionTokenCmd)
}
