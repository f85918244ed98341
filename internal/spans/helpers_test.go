// Copyright 2026 Elasticsearch B.V. and contributors
// SPDX-License-Identifier: Apache-2.0

package spans

import (
	"context"
	"fmt"
)

// pagedFetcher serves a fixed list of pages and records the tokens it was
// called with.
type pagedFetcher struct {
	pages  []Page
	tokens []string
	errAt  int
	err    error
	onCall func(call int)
}

func newPagedFetcher(pages ...[]SpanResult) *pagedFetcher {
	f := &pagedFetcher{errAt: -1}
	for i, results := range pages {
		page := Page{Results: results}
		if i < len(pages)-1 {
			page.NextPageToken = fmt.Sprintf("p%d", i+1)
		}
		f.pages = append(f.pages, page)
	}
	return f
}

func (f *pagedFetcher) FetchSpanPage(_ context.Context, _ Filter, token string) (Page, error) {
	f.tokens = append(f.tokens, token)
	call := len(f.tokens) - 1
	if f.onCall != nil {
		f.onCall(call)
	}
	if call == f.errAt {
		return Page{}, f.err
	}
	if call >= len(f.pages) {
		return Page{}, fmt.Errorf("unexpected page request %d", call)
	}
	return f.pages[call], nil
}

func testSpan(traceID, spanID, parentID string, code StatusCode, message string) Span {
	return Span{
		TraceID:           traceID,
		SpanID:            spanID,
		ParentSpanID:      parentID,
		Name:              "span-" + spanID,
		StartTimeUnixNano: 1_000_000_000,
		EndTimeUnixNano:   3_000_000_000,
		Status:            Status{Code: code, Message: message},
	}
}

func testResource(service string) Resource {
	return Resource{Attributes: []KeyValue{{Key: "service.name", Value: StringValue(service)}}}
}

func testResult(service string, spans ...Span) SpanResult {
	return SpanResult{ResourceSpans: []ResourceSpans{{
		Resource: testResource(service),
		ScopeSpans: []ScopeSpans{{
			Scope: Scope{Name: "checks"},
			Spans: spans,
		}},
	}}}
}

func allSpanIDs(r SpanResult) []string {
	var ids []string
	r.EachSpan(func(s Span) { ids = append(ids, s.SpanID) })
	return ids
}
