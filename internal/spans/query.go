// Copyright 2026 Elasticsearch B.V. and contributors
// SPDX-License-Identifier: Apache-2.0

package spans

import "strings"

// Field prefixes used in query text for each attribute level.
const (
	ResourcePrefix = "resource."
	ScopePrefix    = "instrumentationScope."
	SpanPrefix     = "attributes."
)

var queryEscaper = strings.NewReplacer(
	`\`, `\\`,
	`(`, `\(`,
	`)`, `\)`,
	`:`, `\:`,
	`<`, `\<`,
	`>`, `\>`,
	`"`, `\"`,
	`*`, `\*`,
)

// EscapeQuery backslash-escapes the characters with meaning in query text.
func EscapeQuery(s string) string {
	return queryEscaper.Replace(s)
}

// QueryText renders filter as a DQL query suitable for pasting into a
// dashboard search bar. String values are quoted after escaping. Time bounds
// are not part of the text.
func QueryText(f Filter) string {
	var clauses []string
	if f.TraceID != "" {
		clauses = append(clauses, "traceId: "+EscapeQuery(f.TraceID))
	}
	if f.SpanID != "" {
		clauses = append(clauses, "spanId: "+EscapeQuery(f.SpanID))
	}
	for _, part := range []struct {
		prefix string
		filter AttributeFilter
	}{
		{ResourcePrefix, f.ResourceAttributes},
		{ScopePrefix, f.ScopeAttributes},
		{SpanPrefix, f.SpanAttributes},
	} {
		if clause := attributeQuery(part.prefix, part.filter); clause != "" {
			clauses = append(clauses, clause)
		}
	}
	return strings.Join(clauses, " and ")
}

func attributeQuery(prefix string, filter AttributeFilter) string {
	keys := make([]string, 0, len(filter))
	for _, m := range filter {
		key := EscapeQuery(prefix + m.Key)
		if m.Exists {
			keys = append(keys, key+":*")
			continue
		}
		values := make([]string, 0, len(m.Values))
		for _, v := range m.Values {
			if v.IsString() {
				values = append(values, key+`.keyword: "`+EscapeQuery(v.String())+`"`)
				continue
			}
			values = append(values, key+": "+EscapeQuery(v.String()))
		}
		clause := strings.Join(values, " or ")
		if len(values) > 1 {
			clause = "(" + clause + ")"
		}
		keys = append(keys, clause)
	}
	return strings.Join(keys, " and ")
}
