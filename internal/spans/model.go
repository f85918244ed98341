// Copyright 2026 Elasticsearch B.V. and contributors
// SPDX-License-Identifier: Apache-2.0

// Package spans holds the span model returned by the telemetry API and the
// pipeline that turns paginated span pages into per-trace outcomes and
// summary statistics.
package spans

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	tracepb "go.opentelemetry.io/proto/otlp/trace/v1"
)

// StatusCode is the OTLP span status code.
type StatusCode = tracepb.Status_StatusCode

// Span status codes.
const (
	StatusUnset = tracepb.Status_STATUS_CODE_UNSET
	StatusOK    = tracepb.Status_STATUS_CODE_OK
	StatusError = tracepb.Status_STATUS_CODE_ERROR
)

// SpanResult is one page item returned by the telemetry API.
type SpanResult struct {
	ResourceSpans []ResourceSpans `json:"resourceSpans"`
}

// ResourceSpans groups scope spans emitted by one resource.
type ResourceSpans struct {
	Resource   Resource     `json:"resource"`
	ScopeSpans []ScopeSpans `json:"scopeSpans"`
	SchemaURL  string       `json:"schemaUrl,omitempty"`
}

// ScopeSpans groups spans emitted by one instrumentation scope.
type ScopeSpans struct {
	Scope     Scope  `json:"scope"`
	Spans     []Span `json:"spans"`
	SchemaURL string `json:"schemaUrl,omitempty"`
}

// Resource describes the entity that produced a set of spans.
type Resource struct {
	Attributes             []KeyValue `json:"attributes,omitempty"`
	DroppedAttributesCount uint32     `json:"droppedAttributesCount,omitempty"`
}

// Equal reports whether two resources carry the same attributes.
func (r Resource) Equal(other Resource) bool {
	return r.DroppedAttributesCount == other.DroppedAttributesCount &&
		attributesEqual(r.Attributes, other.Attributes)
}

// Scope describes the instrumentation library that produced spans.
type Scope struct {
	Name                   string     `json:"name,omitempty"`
	Version                string     `json:"version,omitempty"`
	Attributes             []KeyValue `json:"attributes,omitempty"`
	DroppedAttributesCount uint32     `json:"droppedAttributesCount,omitempty"`
}

// Equal reports whether two scopes are structurally identical.
func (s Scope) Equal(other Scope) bool {
	return s.Name == other.Name &&
		s.Version == other.Version &&
		s.DroppedAttributesCount == other.DroppedAttributesCount &&
		attributesEqual(s.Attributes, other.Attributes)
}

// Span is a single OTLP span.
type Span struct {
	TraceID           string     `json:"traceId"`
	SpanID            string     `json:"spanId"`
	ParentSpanID      string     `json:"parentSpanId,omitempty"`
	Name              string     `json:"name,omitempty"`
	Kind              SpanKind   `json:"kind,omitempty"`
	StartTimeUnixNano UnixNano   `json:"startTimeUnixNano"`
	EndTimeUnixNano   UnixNano   `json:"endTimeUnixNano"`
	Status            Status     `json:"status"`
	Attributes        []KeyValue `json:"attributes,omitempty"`
}

// IsRoot reports whether the span has no parent.
func (s Span) IsRoot() bool {
	return s.ParentSpanID == ""
}

// IsError reports whether the span status is ERROR.
func (s Span) IsError() bool {
	return s.Status.Code == StatusError
}

// DurationSeconds returns end minus start in seconds.
func (s Span) DurationSeconds() float64 {
	return float64(s.EndTimeUnixNano-s.StartTimeUnixNano) / 1e9
}

// Attribute returns the first attribute with the given key.
func (s Span) Attribute(key string) (AttributeValue, bool) {
	for _, kv := range s.Attributes {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return AttributeValue{}, false
}

// Status is the span status.
type Status struct {
	Code    StatusCode `json:"code,omitempty"`
	Message string     `json:"message,omitempty"`
}

// UnmarshalJSON accepts the status code as an integer or as its enum name.
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw struct {
		Code    json.RawMessage `json:"code"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	code, err := parseEnum(raw.Code, "STATUS_CODE_", tracepb.Status_StatusCode_value)
	if err != nil {
		return fmt.Errorf("status code: %w", err)
	}
	s.Code = StatusCode(code)
	s.Message = raw.Message
	return nil
}

// SpanKind is the OTLP span kind.
type SpanKind int32

// UnmarshalJSON accepts the kind as an integer or as its enum name.
func (k *SpanKind) UnmarshalJSON(data []byte) error {
	v, err := parseEnum(data, "SPAN_KIND_", tracepb.Span_SpanKind_value)
	if err != nil {
		return fmt.Errorf("span kind: %w", err)
	}
	*k = SpanKind(v)
	return nil
}

// String returns the short kind name, e.g. "SERVER".
func (k SpanKind) String() string {
	return strings.TrimPrefix(tracepb.Span_SpanKind(k).String(), "SPAN_KIND_")
}

func parseEnum(data []byte, prefix string, names map[string]int32) (int32, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return 0, nil
	}
	if data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return 0, err
		}
		if v, ok := names[name]; ok {
			return v, nil
		}
		if v, ok := names[prefix+strings.ToUpper(name)]; ok {
			return v, nil
		}
		if n, err := strconv.ParseInt(name, 10, 32); err == nil {
			return int32(n), nil
		}
		return 0, fmt.Errorf("unknown value %q", name)
	}
	var n int32
	if err := json.Unmarshal(data, &n); err != nil {
		return 0, err
	}
	return n, nil
}

// UnixNano is a timestamp in nanoseconds since the epoch. OTLP JSON encodes
// it as a string, other producers as a number; both decode.
type UnixNano int64

// UnmarshalJSON accepts a JSON number or a numeric string.
func (n *UnixNano) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		*n = 0
		return nil
	}
	s := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*n = 0
			return nil
		}
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return fmt.Errorf("invalid unix nano timestamp %s", data)
		}
		v = int64(f)
	}
	*n = UnixNano(v)
	return nil
}

// KeyValue is one attribute.
type KeyValue struct {
	Key   string         `json:"key"`
	Value AttributeValue `json:"value"`
}

func attributesEqual(a, b []KeyValue) bool {
	return slices.EqualFunc(a, b, func(x, y KeyValue) bool {
		return x.Key == y.Key && x.Value.Equal(y.Value)
	})
}

// EachSpan calls fn for every span in document order.
func (r SpanResult) EachSpan(fn func(Span)) {
	for _, rs := range r.ResourceSpans {
		for _, ss := range rs.ScopeSpans {
			for _, span := range ss.Spans {
				fn(span)
			}
		}
	}
}

// SpanCount returns the number of spans at every nesting level.
func (r SpanResult) SpanCount() int {
	n := 0
	for _, rs := range r.ResourceSpans {
		for _, ss := range rs.ScopeSpans {
			n += len(ss.Spans)
		}
	}
	return n
}
