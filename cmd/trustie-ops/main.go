// Package main provides trustie-ops, the operator CLI for the admin backend.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"trustie-admin/infrastructure/config"
	"trustie-admin/infrastructure/di"
)

var (
	// container is built once in PersistentPreRunE
	container *di.Container
	cleanup   = func() {}

	jsonOutput bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "trustie-ops",
	Short: "Operator tooling for the Trustie admin backend",
	Long: `trustie-ops inspects and replays failed feed fanouts and mints session
tokens for the admin dashboard. It reads the same configuration as the API.`,
	SilenceUsage:      true,
	PersistentPreRunE: initContainer,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		cleanup()
		_ = container.Logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print JSON instead of a table")

	rootCmd.AddCommand(fanoutCmd)
	rootCmd.AddCommand(sessionCmd)
}

func initContainer(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	c, clean, err := di.InitializeContainer(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("initialize container: %w", err)
	}
	container, cleanup = c, clean
	return nil
}
