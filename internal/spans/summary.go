// Copyright 2026 Elasticsearch B.V. and contributors
// SPDX-License-Identifier: Apache-2.0

package spans

import (
	"context"
	"maps"
	"math"
	"strconv"
)

// TestCaseResultStatusKey marks spans that report a test case result.
const TestCaseResultStatusKey = "test.case.result.status"

// SummaryAccumulator collects summary statistics across pages.
type SummaryAccumulator struct {
	TraceIDs          map[string]struct{}
	FailedTraceIDs    map[string]struct{}
	TotalDurationSecs float64
	DurationCount     int
	TotalTestCount    int
}

// NewSummaryAccumulator returns an empty accumulator.
func NewSummaryAccumulator() *SummaryAccumulator {
	return &SummaryAccumulator{
		TraceIDs:       make(map[string]struct{}),
		FailedTraceIDs: make(map[string]struct{}),
	}
}

// SummaryFold adds every span of result to acc and returns it.
func SummaryFold(acc *SummaryAccumulator, result SpanResult) *SummaryAccumulator {
	result.EachSpan(func(span Span) {
		acc.TraceIDs[span.TraceID] = struct{}{}
		if span.IsError() {
			acc.FailedTraceIDs[span.TraceID] = struct{}{}
		}
		if span.IsRoot() {
			acc.TotalDurationSecs += span.DurationSeconds()
			acc.DurationCount++
		}
		if _, ok := span.Attribute(TestCaseResultStatusKey); ok {
			acc.TotalTestCount++
		}
	})
	return acc
}

// Clone returns a deep copy.
func (a *SummaryAccumulator) Clone() *SummaryAccumulator {
	c := *a
	c.TraceIDs = maps.Clone(a.TraceIDs)
	c.FailedTraceIDs = maps.Clone(a.FailedTraceIDs)
	return &c
}

// Summary converts the accumulator into counts.
func (a *SummaryAccumulator) Summary() SpansSummary {
	return SpansSummary{
		TraceCount:        len(a.TraceIDs),
		FailedTraceCount:  len(a.FailedTraceIDs),
		TotalDurationSecs: a.TotalDurationSecs,
		DurationCount:     a.DurationCount,
		TotalTestCount:    a.TotalTestCount,
	}
}

// SpansSummary is the display form of a summary.
type SpansSummary struct {
	TraceCount        int     `json:"trace_count"`
	FailedTraceCount  int     `json:"failed_trace_count"`
	TotalDurationSecs float64 `json:"total_duration_secs"`
	DurationCount     int     `json:"duration_count"`
	TotalTestCount    int     `json:"total_test_count"`
}

// PassedTraceCount returns the number of traces without an error span.
func (s SpansSummary) PassedTraceCount() int {
	return s.TraceCount - s.FailedTraceCount
}

// AverageDuration returns the mean root span duration in seconds. ok is
// false when no root span was seen.
func (s SpansSummary) AverageDuration() (avg float64, ok bool) {
	if s.DurationCount == 0 {
		return 0, false
	}
	return s.TotalDurationSecs / float64(s.DurationCount), true
}

// FormatAverageDuration renders the average as "N/A" or "<seconds> s",
// rounded to three decimals.
func FormatAverageDuration(s SpansSummary) string {
	avg, ok := s.AverageDuration()
	if !ok {
		return "N/A"
	}
	return strconv.FormatFloat(math.Round(avg*1000)/1000, 'f', -1, 64) + " s"
}

// Summarize folds every span matching filter into a summary. progress, if
// set, receives a snapshot after every page.
func Summarize(ctx context.Context, fetcher PageFetcher, filter Filter, progress ProgressFunc[SpansSummary]) (SpansSummary, error) {
	var report ProgressFunc[*SummaryAccumulator]
	if progress != nil {
		report = func(acc *SummaryAccumulator, state FetchState) {
			progress(acc.Summary(), state)
		}
	}
	acc, err := ReduceIncremental(ctx, fetcher, filter, NewSummaryAccumulator(), SummaryFold, report)
	if err != nil {
		return SpansSummary{}, err
	}
	return acc.Summary(), nil
}
