// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package report aggregates per-statement results into a run summary and renders
// results, diagnostics and summaries to the terminal or as JSON.
package report

import (
	"encoding/json"
	"time"

	"sqlrun/cli/internal/sqlexec"
)

// SessionSummary describes one run.
type SessionSummary struct {
	// Total is the number of statements planned, not the number attempted
	Total          int           `json:"total"`
	Succeeded      int           `json:"succeeded"`
	Failed         int           `json:"failed"`
	TotalDuration  time.Duration `json:"-"`
	OverallSuccess bool          `json:"overall_success"`
	HaltedEarly    bool          `json:"halted_early"`
}

// Summarize aggregates results of a run that planned inputCount statements.
func Summarize(results []sqlexec.ExecutionResult, inputCount int) SessionSummary {
	s := SessionSummary{Total: inputCount}
	for _, r := range results {
		if r.Success {
			s.Succeeded++
		} else {
			s.Failed++
		}
		s.TotalDuration += r.Duration
	}
	s.HaltedEarly = len(results) < inputCount
	s.OverallSuccess = s.Failed == 0 && len(results) == inputCount
	return s
}

// Skipped is the number of planned statements that never ran.
func (s SessionSummary) Skipped() int {
	return max(s.Total-s.Succeeded-s.Failed, 0)
}

// ExitCode maps a summary to the process exit status.
func ExitCode(s SessionSummary) int {
	if s.OverallSuccess {
		return 0
	}
	return 1
}

func (s SessionSummary) MarshalJSON() ([]byte, error) {
	type alias SessionSummary
	return json.Marshal(struct {
		alias
		TotalDurationSeconds float64 `json:"total_duration_seconds"`
	}{alias(s), s.TotalDuration.Seconds()})
}
