// Copyright 2026 Elasticsearch B.V. and contributors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"

	"github.com/elastic/checkscope/internal/spans"
)

// maxTreeDepth caps parent chain walks so a cyclic parent reference cannot
// loop forever.
const maxTreeDepth = 64

// padOrTruncate ensures s is exactly width cells wide.
func padOrTruncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	w := ansi.StringWidth(s)
	if w > width {
		return ansi.Truncate(s, width, "…")
	}
	return s + strings.Repeat(" ", width-w)
}

// truncateLine cuts s to width cells, leaving shorter strings alone.
func truncateLine(s string, width int) string {
	if width <= 0 || ansi.StringWidth(s) <= width {
		return s
	}
	return ansi.Truncate(s, width, "…")
}

// formatClockTime returns zero-padded HH:MM:SS
func formatClockTime(t time.Time) string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour(), t.Minute(), t.Second())
}

// formatFullTime returns full date and time in local time with seconds
func formatFullTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04:05")
}

// formatSeconds renders a duration in seconds the way the summary does.
func formatSeconds(secs float64) string {
	d := time.Duration(secs * float64(time.Second))
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	default:
		return fmt.Sprintf("%.3fs", secs)
	}
}

// resourceLabel names a resource by service.name followed by its other
// attributes.
func resourceLabel(r spans.Resource) string {
	name := "(unknown service)"
	var rest []string
	for _, kv := range r.Attributes {
		if kv.Key == "service.name" {
			name = kv.Value.String()
			continue
		}
		rest = append(rest, kv.Key+"="+kv.Value.String())
	}
	if len(rest) == 0 {
		return name
	}
	return name + "  " + strings.Join(rest, " ")
}

func scopeLabel(s spans.Scope) string {
	name := s.Name
	if name == "" {
		name = "(unnamed scope)"
	}
	if s.Version != "" {
		name += "@" + s.Version
	}
	return name
}

// spanDepth counts the ancestors of a span present in parents.
func spanDepth(span spans.Span, parents map[string]string) int {
	depth := 0
	parent := span.ParentSpanID
	for parent != "" && depth < maxTreeDepth {
		next, ok := parents[parent]
		if !ok {
			break
		}
		depth++
		parent = next
	}
	return depth
}

// renderTraceTree renders the spans of a trace grouped by resource and scope.
// Within a scope, spans are ordered by start time and indented by their depth
// in the trace.
func renderTraceTree(result spans.SpanResult, width int) string {
	if result.SpanCount() == 0 {
		return DetailMutedStyle.Render("No spans in this trace.")
	}

	parents := make(map[string]string, result.SpanCount())
	result.EachSpan(func(s spans.Span) {
		parents[s.SpanID] = s.ParentSpanID
	})

	var b strings.Builder
	for _, rs := range result.ResourceSpans {
		b.WriteString(truncateLine(ResourceStyle.Render(resourceLabel(rs.Resource)), width))
		b.WriteString("\n")
		for _, ss := range rs.ScopeSpans {
			b.WriteString("  ")
			b.WriteString(truncateLine(ScopeStyle.Render(scopeLabel(ss.Scope)), width-2))
			b.WriteString("\n")

			ordered := make([]spans.Span, len(ss.Spans))
			copy(ordered, ss.Spans)
			sort.SliceStable(ordered, func(i, j int) bool {
				return ordered[i].StartTimeUnixNano < ordered[j].StartTimeUnixNano
			})
			for _, span := range ordered {
				b.WriteString(truncateLine(renderSpanLine(span, spanDepth(span, parents)), width))
				b.WriteString("\n")
				if span.IsError() && span.Status.Message != "" {
					indent := strings.Repeat("  ", spanDepth(span, parents)+3)
					b.WriteString(truncateLine(indent+FailStyle.Render(span.Status.Message), width))
					b.WriteString("\n")
				}
			}
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderSpanLine(span spans.Span, depth int) string {
	indent := strings.Repeat("  ", depth+2)
	status := DetailMutedStyle.Render("UNSET")
	switch span.Status.Code {
	case spans.StatusOK:
		status = PassStyle.Render("OK")
	case spans.StatusError:
		status = FailStyle.Render("ERROR")
	}
	name := span.Name
	if name == "" {
		name = "(unnamed)"
	}
	return fmt.Sprintf("%s%s %s  %s  %s  %s",
		indent,
		"└",
		DetailValueStyle.Render(name),
		status,
		DetailMutedStyle.Render(formatSeconds(span.DurationSeconds())),
		DetailMutedStyle.Render(span.Kind.String()+" "+span.SpanID),
	)
}
