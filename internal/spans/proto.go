// Copyright 2026 Elasticsearch B.V. and contributors
// SPDX-License-Identifier: Apache-2.0

package spans

import (
	"encoding/base64"
	"encoding/hex"

	commonpb "go.opentelemetry.io/proto/otlp/common/v1"
	resourcepb "go.opentelemetry.io/proto/otlp/resource/v1"
	tracepb "go.opentelemetry.io/proto/otlp/trace/v1"
	"google.golang.org/protobuf/encoding/protojson"
)

// ToProto converts the result into OTLP TracesData.
func (r SpanResult) ToProto() *tracepb.TracesData {
	data := &tracepb.TracesData{}
	for _, rs := range r.ResourceSpans {
		prs := &tracepb.ResourceSpans{
			Resource: &resourcepb.Resource{
				Attributes:             keyValuesToProto(rs.Resource.Attributes),
				DroppedAttributesCount: rs.Resource.DroppedAttributesCount,
			},
			SchemaUrl: rs.SchemaURL,
		}
		for _, ss := range rs.ScopeSpans {
			pss := &tracepb.ScopeSpans{
				Scope: &commonpb.InstrumentationScope{
					Name:                   ss.Scope.Name,
					Version:                ss.Scope.Version,
					Attributes:             keyValuesToProto(ss.Scope.Attributes),
					DroppedAttributesCount: ss.Scope.DroppedAttributesCount,
				},
				SchemaUrl: ss.SchemaURL,
			}
			for _, span := range ss.Spans {
				pss.Spans = append(pss.Spans, spanToProto(span))
			}
			prs.ScopeSpans = append(prs.ScopeSpans, pss)
		}
		data.ResourceSpans = append(data.ResourceSpans, prs)
	}
	return data
}

func spanToProto(s Span) *tracepb.Span {
	return &tracepb.Span{
		TraceId:           decodeID(s.TraceID),
		SpanId:            decodeID(s.SpanID),
		ParentSpanId:      decodeID(s.ParentSpanID),
		Name:              s.Name,
		Kind:              tracepb.Span_SpanKind(s.Kind),
		StartTimeUnixNano: uint64(s.StartTimeUnixNano),
		EndTimeUnixNano:   uint64(s.EndTimeUnixNano),
		Attributes:        keyValuesToProto(s.Attributes),
		Status: &tracepb.Status{
			Code:    s.Status.Code,
			Message: s.Status.Message,
		},
	}
}

// decodeID accepts hex (OTLP JSON) and falls back to base64 (protojson).
func decodeID(id string) []byte {
	if id == "" {
		return nil
	}
	if b, err := hex.DecodeString(id); err == nil {
		return b
	}
	if b, err := base64.StdEncoding.DecodeString(id); err == nil {
		return b
	}
	return []byte(id)
}

func keyValuesToProto(kvs []KeyValue) []*commonpb.KeyValue {
	if len(kvs) == 0 {
		return nil
	}
	out := make([]*commonpb.KeyValue, 0, len(kvs))
	for _, kv := range kvs {
		out = append(out, &commonpb.KeyValue{Key: kv.Key, Value: valueToProto(kv.Value)})
	}
	return out
}

func valueToProto(v AttributeValue) *commonpb.AnyValue {
	switch v.Kind() {
	case ValueString:
		return &commonpb.AnyValue{Value: &commonpb.AnyValue_StringValue{StringValue: v.str}}
	case ValueInt:
		return &commonpb.AnyValue{Value: &commonpb.AnyValue_IntValue{IntValue: v.num}}
	}
	var out commonpb.AnyValue
	if err := protojson.Unmarshal(v.raw, &out); err != nil {
		return &commonpb.AnyValue{Value: &commonpb.AnyValue_StringValue{StringValue: string(v.raw)}}
	}
	return &out
}
