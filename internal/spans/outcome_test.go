// Copyright 2026 Elasticsearch B.V. and contributors
// SPDX-License-Identifier: Apache-2.0

package spans

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name     string
		result   SpanResult
		passed   bool
		messages []string
	}{
		{
			name:   "all ok",
			result: testResult("a", testSpan("t", "1", "", StatusOK, ""), testSpan("t", "2", "1", StatusUnset, "")),
			passed: true,
		},
		{
			name:     "one error",
			result:   testResult("a", testSpan("t", "1", "", StatusOK, ""), testSpan("t", "2", "1", StatusError, "timeout")),
			passed:   false,
			messages: []string{"timeout"},
		},
		{
			name:   "error without message",
			result: testResult("a", testSpan("t", "1", "", StatusError, "")),
			passed: false,
		},
		{
			name: "messages in encounter order without dedup",
			result: MergeSpanResults(
				testResult("a", testSpan("t", "1", "", StatusError, "first"), testSpan("t", "2", "1", StatusError, "second")),
				testResult("b", testSpan("t", "3", "1", StatusError, "first")),
			),
			passed:   false,
			messages: []string{"first", "second", "first"},
		},
		{
			name:   "no spans",
			result: SpanResult{},
			passed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.result)
			assert.Equal(t, tt.passed, got.Passed)
			assert.Equal(t, tt.messages, got.ErrorMessages)
		})
	}
}

func TestEvaluateAll(t *testing.T) {
	input := testResult("a",
		testSpan("t1", "1", "", StatusOK, ""),
		testSpan("t2", "2", "", StatusError, "bad"),
		testSpan("t3", "3", "", StatusOK, ""),
	)

	report := EvaluateAll(GroupByTrace(input))
	assert.Equal(t, 2, report.Passed)
	assert.Equal(t, 1, report.Failed)
	if assert.Len(t, report.Runs, 3) {
		assert.Equal(t, "t1", report.Runs[0].TraceID)
		assert.Equal(t, "t2", report.Runs[1].TraceID)
		assert.False(t, report.Runs[1].Passed)
		assert.Equal(t, []string{"bad"}, report.Runs[1].ErrorMessages)
		assert.Equal(t, 1, report.Runs[2].Spans.SpanCount())
	}
}

func TestRunStartAndDuration(t *testing.T) {
	root := testSpan("t1", "a", "", StatusOK, "")
	child := testSpan("t1", "b", "a", StatusOK, "")
	child.StartTimeUnixNano = 500_000_000
	child.EndTimeUnixNano = 9_000_000_000

	run := Run{TraceID: "t1", Spans: testResult("svc", root, child)}
	start, ok := run.Start()
	assert.True(t, ok)
	assert.Equal(t, time.Unix(0, 500_000_000), start)
	assert.InDelta(t, 2.0, run.DurationSeconds(), 1e-9)

	orphan := Run{TraceID: "t1", Spans: testResult("svc", child)}
	assert.InDelta(t, 8.5, orphan.DurationSeconds(), 1e-9)

	var empty Run
	_, ok = empty.Start()
	assert.False(t, ok)
	assert.Zero(t, empty.DurationSeconds())
}
