// Copyright 2026 Elasticsearch B.V. and contributors
// SPDX-License-Identifier: Apache-2.0

package spans

// TraceGroups maps trace ids to the spans of that trace, in the order the
// trace ids were first seen.
type TraceGroups struct {
	order []string
	byID  map[string]*SpanResult
}

// GroupByTrace splits result into one SpanResult per trace id. Resource and
// scope nesting is kept: consecutive spans that share a resource (and scope)
// with the trace's previous entry are appended to it, otherwise a new entry
// is started. Span order within a trace follows the input.
func GroupByTrace(result SpanResult) TraceGroups {
	g := TraceGroups{byID: make(map[string]*SpanResult)}
	for _, rs := range result.ResourceSpans {
		for _, ss := range rs.ScopeSpans {
			for _, span := range ss.Spans {
				g.add(rs, ss, span)
			}
		}
	}
	return g
}

func (g *TraceGroups) add(rs ResourceSpans, ss ScopeSpans, span Span) {
	group, ok := g.byID[span.TraceID]
	if !ok {
		group = &SpanResult{}
		g.byID[span.TraceID] = group
		g.order = append(g.order, span.TraceID)
	}

	n := len(group.ResourceSpans)
	if n == 0 || !group.ResourceSpans[n-1].Resource.Equal(rs.Resource) {
		group.ResourceSpans = append(group.ResourceSpans, ResourceSpans{
			Resource:  rs.Resource,
			SchemaURL: rs.SchemaURL,
		})
		n++
	}
	last := &group.ResourceSpans[n-1]

	m := len(last.ScopeSpans)
	if m == 0 || !last.ScopeSpans[m-1].Scope.Equal(ss.Scope) {
		last.ScopeSpans = append(last.ScopeSpans, ScopeSpans{
			Scope:     ss.Scope,
			SchemaURL: ss.SchemaURL,
		})
		m++
	}
	scope := &last.ScopeSpans[m-1]
	scope.Spans = append(scope.Spans, span)
}

// Len returns the number of traces.
func (g TraceGroups) Len() int {
	return len(g.order)
}

// IDs returns the trace ids in first-seen order.
func (g TraceGroups) IDs() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Get returns the spans of one trace.
func (g TraceGroups) Get(traceID string) (SpanResult, bool) {
	group, ok := g.byID[traceID]
	if !ok {
		return SpanResult{}, false
	}
	return *group, true
}

// Merged rebuilds a single SpanResult holding every trace in order.
func (g TraceGroups) Merged() SpanResult {
	var out SpanResult
	for _, id := range g.order {
		out.ResourceSpans = append(out.ResourceSpans, g.byID[id].ResourceSpans...)
	}
	return out
}
