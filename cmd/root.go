// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for sqlrun.
// It implements subcommands for running SQL scripts, previewing how a script splits
// into statements, and managing the stored database connection, using the Cobra CLI
// framework with a pterm terminal UI.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	apperr "sqlrun/cli/internal/errors"
	"sqlrun/cli/internal/logging"

	"github.com/spf13/cobra"
)

var (
	showVersion bool
	configPath  string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "sqlrun",
	Short: "Run SQL scripts against PostgreSQL one statement at a time",
	Long: `sqlrun splits a SQL script into statements and runs them in order against a
PostgreSQL database, each in its own transaction. Every statement gets its own
result; failures point at the exact line and column of the script.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Fprintf(cmd.OutOrStdout(), "sqlrun %s\n", Version)
			return nil
		}
		// If no flag is set, show help
		return cmd.Help()
	},
}

// Execute runs the CLI application.
// Interrupts cancel the command context so a run stops between statements.
// A run whose statements failed exits with status 1 without repeating the report.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		if !apperr.Is(err, apperr.StatementsFailed) {
			fmt.Fprintln(os.Stderr, logging.PresentError("sqlrun", err))
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show version information")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $XDG_CONFIG_HOME/sqlrun/config.yaml)")
}
