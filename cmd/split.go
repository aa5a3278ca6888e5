// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"os"

	"sqlrun/cli/internal/report"
	"sqlrun/cli/internal/script"
	"sqlrun/cli/internal/terminal"

	"github.com/spf13/cobra"
)

var splitJSON bool

// splitStatement is the JSON form of one statement in split output.
type splitStatement struct {
	script.Statement
	Category script.Category `json:"category"`
}

// splitCmd previews how a script splits into statements without touching a database.
var splitCmd = &cobra.Command{
	Use:   "split <file>",
	Short: "Show the statements a script splits into, without running them",
	Long: `The split command prints every statement sqlrun would execute for a script, with
its index, starting line and category. No database connection is made.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := script.Load(args[0])
		if err != nil {
			return err
		}
		stmts := src.Statements()

		if splitJSON {
			out := make([]splitStatement, 0, len(stmts))
			for _, s := range stmts {
				out = append(out, splitStatement{Statement: s, Category: script.Classify(s.Text)})
			}
			return report.WriteJSON(cmd.OutOrStdout(), out)
		}

		width := 0
		if terminal.IsTerminal(os.Stdout) {
			width = terminal.Width(os.Stdout)
		}
		r := report.NewRenderer(cmd.OutOrStdout(), width)
		r.Header(src.Path, len(stmts))
		if len(stmts) == 0 {
			return nil
		}
		return r.Statements(stmts)
	},
}

func init() {
	rootCmd.AddCommand(splitCmd)
	splitCmd.Flags().BoolVar(&splitJSON, "json", false, "Print statements as JSON")
}
