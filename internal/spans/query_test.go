// Copyright 2026 Elasticsearch B.V. and contributors
// SPDX-License-Identifier: Apache-2.0

package spans

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryText(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   string
	}{
		{
			name: "resource value and span attribute existence",
			filter: Filter{
				ResourceAttributes: AttributeFilter{{Key: "user.id", Values: []Literal{StringLiteral("abc")}}},
				SpanAttributes:     AttributeFilter{{Key: "test.case.result.status", Exists: true}},
			},
			want: `resource.user.id.keyword: "abc" and attributes.test.case.result.status:*`,
		},
		{
			name: "escaping",
			filter: Filter{
				SpanAttributes: AttributeFilter{{Key: "k", Values: []Literal{StringLiteral(`a:b"c`)}}},
			},
			want: `attributes.k.keyword: "a\:b\"c"`,
		},
		{
			name: "multiple values are parenthesized",
			filter: Filter{
				ScopeAttributes: AttributeFilter{{Key: "n", Values: []Literal{NumberLiteral("1"), BoolLiteral(true), StringLiteral("x")}}},
			},
			want: `(instrumentationScope.n: 1 or instrumentationScope.n: true or instrumentationScope.n.keyword: "x")`,
		},
		{
			name: "ids then attributes, time bounds omitted",
			filter: Filter{
				TraceID:            "t(1)",
				SpanID:             "s*",
				FromTime:           time.Unix(0, 0),
				ToTime:             time.Unix(100, 0),
				ResourceAttributes: AttributeFilter{{Key: "a", Exists: true}, {Key: "b", Values: []Literal{NumberLiteral("2")}}},
			},
			want: `traceId: t\(1\) and spanId: s\* and resource.a:* and resource.b: 2`,
		},
		{
			name: "keys are escaped with their prefix",
			filter: Filter{
				SpanAttributes: AttributeFilter{{Key: "weird<key>", Exists: true}},
			},
			want: `attributes.weird\<key\>:*`,
		},
		{
			name:   "empty attribute filter is dropped",
			filter: Filter{TraceID: "t", ResourceAttributes: AttributeFilter{}},
			want:   `traceId: t`,
		},
		{
			name:   "empty filter",
			filter: Filter{},
			want:   ``,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, QueryText(tt.filter))
		})
	}
}

func TestQueryTextFromDecodedFilter(t *testing.T) {
	var f Filter
	require.NoError(t, json.Unmarshal([]byte(`{"user.id":["abc"]}`), &f.ResourceAttributes))
	require.NoError(t, json.Unmarshal([]byte(`{"test.case.result.status":null}`), &f.SpanAttributes))

	assert.Equal(t, `resource.user.id.keyword: "abc" and attributes.test.case.result.status:*`, QueryText(f))
}

func TestEscapeQuery(t *testing.T) {
	assert.Equal(t, `\\\(\)\:\<\>\"\*plain`, EscapeQuery(`\():<>"*plain`))
}
