// Copyright 2026 Elasticsearch B.V. and contributors
// SPDX-License-Identifier: Apache-2.0

package spans

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const otlpJSON = `{
  "resourceSpans": [{
    "resource": {"attributes": [{"key": "service.name", "value": {"stringValue": "checkout"}}]},
    "scopeSpans": [{
      "scope": {"name": "pytest", "version": "1.0"},
      "spans": [{
        "traceId": "0102",
        "spanId": "aa",
        "parentSpanId": "",
        "name": "test_login",
        "kind": 2,
        "startTimeUnixNano": "1000000000",
        "endTimeUnixNano": "3500000000",
        "status": {"code": 2, "message": "boom"},
        "attributes": [
          {"key": "retries", "value": {"intValue": "3"}},
          {"key": "ok", "value": {"boolValue": true}},
          {"key": "n", "value": {"intValue": 7}}
        ]
      }]
    }]
  }]
}`

func TestSpanResultUnmarshal(t *testing.T) {
	var result SpanResult
	require.NoError(t, json.Unmarshal([]byte(otlpJSON), &result))
	require.Equal(t, 1, result.SpanCount())

	rs := result.ResourceSpans[0]
	name, ok := rs.Resource.Attributes[0].Value.AsString()
	assert.True(t, ok)
	assert.Equal(t, "checkout", name)
	assert.Equal(t, "pytest", rs.ScopeSpans[0].Scope.Name)

	span := rs.ScopeSpans[0].Spans[0]
	assert.True(t, span.IsRoot())
	assert.True(t, span.IsError())
	assert.Equal(t, "boom", span.Status.Message)
	assert.Equal(t, UnixNano(1_000_000_000), span.StartTimeUnixNano)
	assert.InDelta(t, 2.5, span.DurationSeconds(), 1e-9)
	assert.Equal(t, "SERVER", span.Kind.String())

	retries, ok := span.Attributes[0].Value.AsInt()
	assert.True(t, ok)
	assert.Equal(t, int64(3), retries)

	other := span.Attributes[1].Value
	assert.Equal(t, ValueOther, other.Kind())
	assert.JSONEq(t, `{"boolValue":true}`, string(other.Raw()))
	assert.Equal(t, "true", other.String())

	n, ok := span.Attributes[2].Value.AsInt()
	assert.True(t, ok)
	assert.Equal(t, int64(7), n)
}

func TestStatusUnmarshalEnumNames(t *testing.T) {
	tests := []struct {
		in   string
		want StatusCode
	}{
		{`{"code":"STATUS_CODE_ERROR"}`, StatusError},
		{`{"code":"OK"}`, StatusOK},
		{`{"code":1}`, StatusOK},
		{`{}`, StatusUnset},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var s Status
			require.NoError(t, json.Unmarshal([]byte(tt.in), &s))
			assert.Equal(t, tt.want, s.Code)
		})
	}

	var s Status
	assert.Error(t, json.Unmarshal([]byte(`{"code":"SIDEWAYS"}`), &s))
}

func TestAttributeValuePassesThroughUnexpectedShapes(t *testing.T) {
	tests := []string{
		`{"intValue":"not-a-number"}`,
		`{"stringValue":42}`,
		`{"arrayValue":{"values":[{"stringValue":"a"}]}}`,
		`"bare"`,
	}
	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			var v AttributeValue
			require.NoError(t, json.Unmarshal([]byte(in), &v))
			assert.Equal(t, ValueOther, v.Kind())

			out, err := json.Marshal(v)
			require.NoError(t, err)
			assert.JSONEq(t, in, string(out))
		})
	}
}

func TestAttributeValueMarshal(t *testing.T) {
	out, err := json.Marshal([]KeyValue{
		{Key: "s", Value: StringValue("x")},
		{Key: "i", Value: IntValue(-4)},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"key":"s","value":{"stringValue":"x"}},{"key":"i","value":{"intValue":"-4"}}]`, string(out))
}

func TestResourceEqualIsStructural(t *testing.T) {
	a := testResource("api")
	b := testResource("api")
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(testResource("web")))

	var ra, rb Resource
	require.NoError(t, json.Unmarshal([]byte(`{"attributes":[{"key":"k","value":{"doubleValue":1.5}}]}`), &ra))
	require.NoError(t, json.Unmarshal([]byte(`{"attributes":[{"key":"k","value":{ "doubleValue" : 1.5 }}]}`), &rb))
	assert.True(t, ra.Equal(rb))
}
