// Copyright 2026 Elasticsearch B.V. and contributors
// SPDX-License-Identifier: Apache-2.0

package spans

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupByTraceInterleaved(t *testing.T) {
	input := SpanResult{ResourceSpans: []ResourceSpans{
		{
			Resource: testResource("api"),
			ScopeSpans: []ScopeSpans{{
				Scope: Scope{Name: "checks"},
				Spans: []Span{
					testSpan("t1", "a", "", StatusOK, ""),
					testSpan("t2", "b", "", StatusOK, ""),
					testSpan("t1", "c", "a", StatusOK, ""),
				},
			}},
		},
		{
			Resource: testResource("db"),
			ScopeSpans: []ScopeSpans{{
				Scope: Scope{Name: "checks"},
				Spans: []Span{testSpan("t1", "d", "c", StatusOK, "")},
			}},
		},
	}}

	groups := GroupByTrace(input)
	assert.Equal(t, []string{"t1", "t2"}, groups.IDs())
	assert.Equal(t, 2, groups.Len())

	t1, ok := groups.Get("t1")
	require.True(t, ok)
	require.Len(t, t1.ResourceSpans, 2)
	assert.True(t, t1.ResourceSpans[0].Resource.Equal(testResource("api")))
	require.Len(t, t1.ResourceSpans[0].ScopeSpans, 1)
	assert.Equal(t, []string{"a", "c", "d"}, allSpanIDs(t1))

	t2, ok := groups.Get("t2")
	require.True(t, ok)
	assert.Equal(t, []string{"b"}, allSpanIDs(t2))

	_, ok = groups.Get("missing")
	assert.False(t, ok)
}

func TestGroupByTraceMergesEqualResourcesAcrossPages(t *testing.T) {
	page1 := testResult("api", testSpan("t1", "a", "", StatusOK, ""))
	page2 := testResult("api", testSpan("t1", "b", "a", StatusOK, ""))
	merged := MergeSpanResults(page1, page2)
	require.Len(t, merged.ResourceSpans, 2)

	t1, ok := GroupByTrace(merged).Get("t1")
	require.True(t, ok)
	require.Len(t, t1.ResourceSpans, 1)
	require.Len(t, t1.ResourceSpans[0].ScopeSpans, 1)
	assert.Equal(t, []string{"a", "b"}, allSpanIDs(t1))
}

func TestGroupByTraceKeepsNonAdjacentResourcesSeparate(t *testing.T) {
	input := MergeSpanResults(
		MergeSpanResults(
			testResult("api", testSpan("t1", "a", "", StatusOK, "")),
			testResult("db", testSpan("t1", "b", "a", StatusOK, "")),
		),
		testResult("api", testSpan("t1", "c", "a", StatusOK, "")),
	)

	t1, ok := GroupByTrace(input).Get("t1")
	require.True(t, ok)
	assert.Len(t, t1.ResourceSpans, 3)
}

func TestGroupByTraceNewScopeWithinResource(t *testing.T) {
	input := SpanResult{ResourceSpans: []ResourceSpans{{
		Resource: testResource("api"),
		ScopeSpans: []ScopeSpans{
			{Scope: Scope{Name: "http"}, Spans: []Span{testSpan("t1", "a", "", StatusOK, "")}},
			{Scope: Scope{Name: "sql"}, Spans: []Span{testSpan("t1", "b", "a", StatusOK, "")}},
		},
	}}}

	t1, ok := GroupByTrace(input).Get("t1")
	require.True(t, ok)
	require.Len(t, t1.ResourceSpans, 1)
	assert.Len(t, t1.ResourceSpans[0].ScopeSpans, 2)
}

func TestGroupByTraceIsIdempotent(t *testing.T) {
	input := MergeSpanResults(
		testResult("api", testSpan("t1", "a", "", StatusOK, ""), testSpan("t2", "x", "", StatusOK, "")),
		testResult("db", testSpan("t1", "b", "a", StatusError, "down")),
	)

	t1, ok := GroupByTrace(input).Get("t1")
	require.True(t, ok)

	regrouped := GroupByTrace(t1)
	assert.Equal(t, []string{"t1"}, regrouped.IDs())
	again, ok := regrouped.Get("t1")
	require.True(t, ok)
	assert.Equal(t, t1, again)
}

func TestGroupByTraceIsComplete(t *testing.T) {
	input := MergeSpanResults(
		testResult("api",
			testSpan("t1", "a", "", StatusOK, ""),
			testSpan("t2", "b", "", StatusOK, ""),
			testSpan("t3", "c", "", StatusOK, "")),
		testResult("db",
			testSpan("t2", "d", "b", StatusOK, ""),
			testSpan("t1", "e", "a", StatusOK, "")),
	)

	groups := GroupByTrace(input)
	total := 0
	for _, id := range groups.IDs() {
		group, ok := groups.Get(id)
		require.True(t, ok)
		group.EachSpan(func(s Span) { assert.Equal(t, id, s.TraceID) })
		total += group.SpanCount()
	}
	assert.Equal(t, input.SpanCount(), total)
	assert.Equal(t, input.SpanCount(), groups.Merged().SpanCount())
}
