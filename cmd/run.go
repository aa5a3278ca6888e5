// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"os"
	"time"

	apperr "sqlrun/cli/internal/errors"
	"sqlrun/cli/internal/report"
	"sqlrun/cli/internal/script"
	"sqlrun/cli/internal/sqlexec"
	"sqlrun/cli/internal/terminal"

	"github.com/spf13/cobra"
)

var (
	runDSN          string
	continueOnError bool
	runTimeout      time.Duration
	runJSON         bool
	verboseRun      bool
)

// runCmd runs a SQL script statement by statement.
var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Run a SQL script against the configured database",
	Long: `The run command splits a SQL script into statements and executes them in order,
each inside its own transaction. A failed statement is rolled back; statements that
already committed stay committed.

By default the run stops at the first failure. Use --continue-on-error to attempt
every statement. Pass "-" as the file to read the script from standard input.

The exit status is 0 when every statement succeeded and 1 otherwise.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings(verboseRun)
		if err != nil {
			return err
		}

		src, err := script.Load(args[0])
		if err != nil {
			return err
		}
		stmts := src.Statements()
		s.log.Debug("script split", s.log.Args("path", src.Path, "statements", len(stmts)))

		var dial sqlexec.DialFunc
		if len(stmts) > 0 {
			resolved, err := s.resolveDSN(runDSN)
			if err != nil {
				return err
			}
			dial = sqlexec.Dial(resolved.DSN)
		}

		policy := sqlexec.Policy{StopOnError: s.cfg.StopOnError}
		if cmd.Flags().Changed("continue-on-error") {
			policy.StopOnError = !continueOnError
		}
		exec := sqlexec.New(s.log)
		exec.StatementTimeout = s.cfg.StatementTimeout
		if cmd.Flags().Changed("statement-timeout") {
			exec.StatementTimeout = runTimeout
		}

		out := cmd.OutOrStdout()
		var render *report.Renderer
		if !runJSON {
			width := 0
			tty := terminal.IsTerminal(os.Stdout)
			if tty {
				width = terminal.Width(os.Stdout)
			}
			render = report.NewRenderer(out, width)
			render.Header(src.Path, len(stmts))

			prog := newProgress(tty)
			defer prog.Stop()
			exec.OnStart = func(stmt script.Statement) {
				prog.Start(fmt.Sprintf("[%d/%d] running statement at line %d", stmt.Index, len(stmts), stmt.StartLine))
			}
			exec.OnResult = func(res sqlexec.ExecutionResult) {
				prog.Stop()
				render.Result(res)
			}
		}

		var results []sqlexec.ExecutionResult
		if dial != nil {
			results, err = exec.RunWith(cmd.Context(), dial, stmts, policy)
			if err != nil {
				return err
			}
		}

		summary := report.Summarize(results, len(stmts))
		if runJSON {
			if err := report.WriteJSON(out, report.Document{Script: src.Path, Results: results, Summary: summary}); err != nil {
				return err
			}
		} else {
			render.Summary(summary)
		}

		if report.ExitCode(summary) != 0 {
			return apperr.New(apperr.StatementsFailed, fmt.Sprintf("%d of %d statements failed", summary.Failed, summary.Total))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&runDSN, "dsn", "", "PostgreSQL connection string (overrides SQLRUN_DSN, DATABASE_URL, config and keychain)")
	runCmd.Flags().BoolVar(&continueOnError, "continue-on-error", false, "Keep running after a statement fails")
	runCmd.Flags().DurationVar(&runTimeout, "statement-timeout", 0, "Cancel any single statement running longer than this (0 disables)")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "Print results and summary as JSON")
	runCmd.Flags().BoolVarP(&verboseRun, "verbose", "v", false, "Enable debug logging on stderr")
}
