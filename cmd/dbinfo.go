// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"sqlrun/cli/internal/dsn"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var dbinfoDSN string

// dbinfoCmd shows which database a run would use, with the password masked.
var dbinfoCmd = &cobra.Command{
	Use:   "dbinfo",
	Short: "Show the database connection a run would use",
	Long: `The dbinfo command resolves the connection string exactly as 'sqlrun run' does
(--dsn flag, SQLRUN_DSN, DATABASE_URL, config file, then OS keychain) and displays it
with the password masked. No connection is opened.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings(false)
		if err != nil {
			return err
		}
		resolved, err := s.resolveDSN(dbinfoDSN)
		if err != nil {
			return err
		}
		info, err := dsn.ParseInfo(resolved.DSN)
		if err != nil {
			return err
		}

		pterm.Println(pterm.NewStyle(pterm.FgLightCyan).Sprint("Using connection from ") + pterm.NewStyle(pterm.Bold).Sprint(string(resolved.Origin)))
		pterm.Println()
		pterm.DefaultBox.
			WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("Database Connection")).
			WithTopPadding(1).WithBottomPadding(1).WithLeftPadding(1).WithRightPadding(1).
			Println(info.Redacted())

		data := pterm.TableData{
			{"Host", info.Host},
			{"Port", info.Port},
			{"User", info.User},
			{"Database", info.Database},
		}
		if err := pterm.DefaultTable.WithData(data).Render(); err != nil {
			return err
		}
		pterm.Println()
		pterm.Println("To update the stored connection, run: sqlrun connect")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbinfoCmd)
	dbinfoCmd.Flags().StringVar(&dbinfoDSN, "dsn", "", "Connection string to inspect instead of the configured one")
}
