// Copyright 2026 Elasticsearch B.V. and contributors
// SPDX-License-Identifier: Apache-2.0

package spans

import "time"

// Outcome is the pass/fail verdict of one check run.
type Outcome struct {
	Passed        bool
	ErrorMessages []string
}

// Evaluate fails the run if any span has status ERROR. Messages of error
// spans are collected in encounter order; empty messages are skipped. A run
// without spans passes.
func Evaluate(result SpanResult) Outcome {
	out := Outcome{Passed: true}
	result.EachSpan(func(span Span) {
		if !span.IsError() {
			return
		}
		out.Passed = false
		if span.Status.Message != "" {
			out.ErrorMessages = append(out.ErrorMessages, span.Status.Message)
		}
	})
	return out
}

// Run is the outcome of a single trace.
type Run struct {
	TraceID string
	Spans   SpanResult
	Outcome
}

// Start returns the earliest span start of the run. ok is false when no
// span carries a start time.
func (r Run) Start() (start time.Time, ok bool) {
	var earliest UnixNano
	r.Spans.EachSpan(func(s Span) {
		if s.StartTimeUnixNano > 0 && (earliest == 0 || s.StartTimeUnixNano < earliest) {
			earliest = s.StartTimeUnixNano
		}
	})
	if earliest == 0 {
		return time.Time{}, false
	}
	return time.Unix(0, int64(earliest)), true
}

// DurationSeconds returns the duration of the first root span, or the extent
// of all spans when no root was captured.
func (r Run) DurationSeconds() float64 {
	var first, last UnixNano
	root, haveRoot := 0.0, false
	r.Spans.EachSpan(func(s Span) {
		if s.IsRoot() && !haveRoot {
			root, haveRoot = s.DurationSeconds(), true
		}
		if first == 0 || s.StartTimeUnixNano < first {
			first = s.StartTimeUnixNano
		}
		if s.EndTimeUnixNano > last {
			last = s.EndTimeUnixNano
		}
	})
	if haveRoot {
		return root
	}
	if last <= first {
		return 0
	}
	return float64(last-first) / 1e9
}

// RunsReport lists every run in trace order with pass/fail totals.
type RunsReport struct {
	Runs   []Run
	Passed int
	Failed int
}

// EvaluateAll evaluates every trace in groups.
func EvaluateAll(groups TraceGroups) RunsReport {
	report := RunsReport{Runs: make([]Run, 0, groups.Len())}
	for _, id := range groups.order {
		result := *groups.byID[id]
		run := Run{TraceID: id, Spans: result, Outcome: Evaluate(result)}
		if run.Passed {
			report.Passed++
		} else {
			report.Failed++
		}
		report.Runs = append(report.Runs, run)
	}
	return report
}
