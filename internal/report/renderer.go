// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"sqlrun/cli/internal/script"
	"sqlrun/cli/internal/sqlexec"

	"github.com/pterm/pterm"
)

var (
	styleOK     = pterm.NewStyle(pterm.FgGreen)
	styleFail   = pterm.NewStyle(pterm.FgRed, pterm.Bold)
	styleMuted  = pterm.NewStyle(pterm.FgGray)
	styleAccent = pterm.NewStyle(pterm.FgLightCyan)
	styleWarn   = pterm.NewStyle(pterm.FgYellow)
)

// Renderer prints run progress for humans.
type Renderer struct {
	w io.Writer
	// width is the terminal width used to cut long source lines; 0 disables cutting
	width int
}

// NewRenderer creates a renderer writing to w.
func NewRenderer(w io.Writer, width int) *Renderer {
	return &Renderer{w: w, width: width}
}

// Header announces the script about to run.
func (r *Renderer) Header(path string, count int) {
	pterm.Fprintln(r.w, styleAccent.Sprint("→ Script:     ")+pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint(path))
	pterm.Fprintln(r.w, styleAccent.Sprint("→ Statements: ")+fmt.Sprint(count))
	pterm.Fprintln(r.w)
}

// Result prints one statement outcome, followed by an error excerpt on failure.
func (r *Renderer) Result(res sqlexec.ExecutionResult) {
	mark := styleOK.Sprint("✓")
	text := res.Message
	if !res.Success {
		mark = styleFail.Sprint("✗")
		text = styleFail.Sprint(res.ErrorMessage)
	}
	pterm.Fprintln(r.w, fmt.Sprintf("%s %s %-10s %s %9s  %s",
		mark,
		styleMuted.Sprintf("[%d]", res.Statement.Index),
		res.Category,
		styleMuted.Sprintf("line %-5d", res.Statement.StartLine),
		formatDuration(res.Duration),
		text,
	))
	if res.Success {
		return
	}

	if d, ok := res.Diagnostic(); ok {
		gutter := len(fmt.Sprint(d.Context[len(d.Context)-1].Number))
		for _, l := range d.Context {
			prefix := "    "
			line := r.clip(l.Text)
			if l.IsErrorLine {
				prefix = "  " + styleFail.Sprint("→") + " "
				line = pterm.NewStyle(pterm.Bold).Sprint(line)
			}
			pterm.Fprintln(r.w, prefix+styleMuted.Sprintf("%*d |", gutter, l.Number)+" "+line)
			if l.IsErrorLine {
				pterm.Fprintln(r.w, "    "+strings.Repeat(" ", gutter)+styleMuted.Sprint(" |")+" "+styleFail.Sprint(d.Pointer()))
			}
		}
		pterm.Fprintln(r.w, styleMuted.Sprintf("    at line %d, column %d", d.Line, d.Column))
	} else {
		first, _, _ := strings.Cut(res.Statement.Text, "\n")
		pterm.Fprintln(r.w, "    "+styleMuted.Sprintf("%d |", res.Statement.StartLine)+" "+r.clip(first))
	}
	if res.Detail != "" {
		pterm.Fprintln(r.w, "    "+styleMuted.Sprint("detail: ")+res.Detail)
	}
	if res.Hint != "" {
		pterm.Fprintln(r.w, "    "+styleWarn.Sprint("hint: ")+res.Hint)
	}
}

// Summary prints the run totals in a box.
func (r *Renderer) Summary(s SessionSummary) {
	lines := []string{
		fmt.Sprintf("Statements: %d", s.Total),
		styleOK.Sprintf("Succeeded:  %d", s.Succeeded),
	}
	if s.Failed > 0 {
		lines = append(lines, styleFail.Sprintf("Failed:     %d", s.Failed))
	} else {
		lines = append(lines, fmt.Sprintf("Failed:     %d", s.Failed))
	}
	if s.HaltedEarly {
		lines = append(lines, styleWarn.Sprintf("Skipped:    %d (halted after first failure)", s.Skipped()))
	}
	lines = append(lines, fmt.Sprintf("Duration:   %s", formatDuration(s.TotalDuration)))

	title := styleOK.Sprint("Run succeeded")
	if !s.OverallSuccess {
		title = styleFail.Sprint("Run failed")
	}
	pterm.Fprintln(r.w)
	pterm.Fprintln(r.w, pterm.DefaultBox.WithTitle(title).WithTopPadding(1).WithBottomPadding(1).WithLeftPadding(1).WithRightPadding(1).Sprint(strings.Join(lines, "\n")))
}

// Statements prints a split script as a table, one row per statement.
func (r *Renderer) Statements(stmts []script.Statement) error {
	data := pterm.TableData{{"#", "Line", "Category", "Statement"}}
	for _, s := range stmts {
		first, _, more := strings.Cut(s.Text, "\n")
		if more {
			first += " …"
		}
		data = append(data, []string{
			fmt.Sprint(s.Index),
			fmt.Sprint(s.StartLine),
			script.Classify(s.Text).String(),
			r.clip(first),
		})
	}
	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	pterm.Fprintln(r.w, out)
	return nil
}

// clip shortens s to the renderer width.
func (r *Renderer) clip(s string) string {
	limit := r.width - 12
	if r.width <= 0 || limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit-1]) + "…"
}

// Document is the machine-readable form of a run.
type Document struct {
	Script  string                    `json:"script"`
	Results []sqlexec.ExecutionResult `json:"results"`
	Summary SessionSummary            `json:"summary"`
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.1fms", float64(d)/float64(time.Millisecond))
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}
