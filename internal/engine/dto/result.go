package dto

import (
	"time"

	"github.com/abhishekk536-cpu/market-ai/internal/entity"
)

// RunOptions controls one pipeline invocation. The run-once decision is made
// from the injected date and lock, never from ambient filesystem state.
type RunOptions struct {
	Date   time.Time
	Force  bool
	Weekly bool
}

// SymbolResult is the outcome of processing one symbol in a run.
type SymbolResult struct {
	Symbol        string
	SignalEmitted bool
	Err           error
}

// Failed reports whether the symbol could not be processed.
func (r SymbolResult) Failed() bool {
	return r.Err != nil
}

// RunSummary aggregates the per-symbol results of one pipeline run.
type RunSummary struct {
	RunDate    time.Time
	AlreadyRan bool
	Results    []SymbolResult
}

// Processed counts symbols that completed without error.
func (s *RunSummary) Processed() int {
	n := 0
	for _, r := range s.Results {
		if !r.Failed() {
			n++
		}
	}
	return n
}

// Failed counts symbols that ended with an error.
func (s *RunSummary) Failed() int {
	return len(s.Results) - s.Processed()
}

// Signals counts symbols that emitted a signal record.
func (s *RunSummary) Signals() int {
	n := 0
	for _, r := range s.Results {
		if r.SignalEmitted {
			n++
		}
	}
	return n
}

// BacktestReport bundles the trade-level rows and the aggregate summary of
// one evaluated shortlist.
type BacktestReport struct {
	WeekID  string
	Trades  []entity.BacktestTrade
	Summary entity.BacktestSummary
}
