// Copyright 2026 Elasticsearch B.V. and contributors
// SPDX-License-Identifier: Apache-2.0

package spans

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// ValueKind tags the variant held by an AttributeValue.
type ValueKind int

// Attribute value kinds. Everything that is not a string or an int64 is kept
// as raw JSON.
const (
	ValueOther ValueKind = iota
	ValueString
	ValueInt
)

// AttributeValue is an OTLP AnyValue reduced to the variants the pipeline
// inspects. Other shapes pass through untouched.
type AttributeValue struct {
	kind ValueKind
	str  string
	num  int64
	raw  json.RawMessage
}

// StringValue returns a string attribute value.
func StringValue(s string) AttributeValue {
	return AttributeValue{kind: ValueString, str: s}
}

// IntValue returns an int64 attribute value.
func IntValue(i int64) AttributeValue {
	return AttributeValue{kind: ValueInt, num: i}
}

// OtherValue wraps an AnyValue JSON object the model does not interpret.
func OtherValue(raw json.RawMessage) AttributeValue {
	return AttributeValue{kind: ValueOther, raw: compact(raw)}
}

// Kind returns the variant tag.
func (v AttributeValue) Kind() ValueKind { return v.kind }

// AsString returns the string payload.
func (v AttributeValue) AsString() (string, bool) {
	return v.str, v.kind == ValueString
}

// AsInt returns the int64 payload.
func (v AttributeValue) AsInt() (int64, bool) {
	return v.num, v.kind == ValueInt
}

// Raw returns the verbatim JSON of an Other value.
func (v AttributeValue) Raw() json.RawMessage {
	return v.raw
}

// String renders the value for display.
func (v AttributeValue) String() string {
	switch v.kind {
	case ValueString:
		return v.str
	case ValueInt:
		return strconv.FormatInt(v.num, 10)
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(v.raw, &obj); err == nil && len(obj) == 1 {
		for _, inner := range obj {
			return string(inner)
		}
	}
	return string(v.raw)
}

// Equal reports structural equality.
func (v AttributeValue) Equal(other AttributeValue) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case ValueString:
		return v.str == other.str
	case ValueInt:
		return v.num == other.num
	}
	return bytes.Equal(v.raw, other.raw)
}

// UnmarshalJSON decodes an OTLP JSON AnyValue. It never rejects a value:
// malformed or unknown shapes become Other.
func (v *AttributeValue) UnmarshalJSON(data []byte) error {
	*v = OtherValue(data)

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil
	}
	if raw, ok := obj["stringValue"]; ok {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			*v = StringValue(s)
		}
		return nil
	}
	if raw, ok := obj["intValue"]; ok {
		if i, ok := parseIntValue(raw); ok {
			*v = IntValue(i)
		}
	}
	return nil
}

// MarshalJSON encodes the value back into OTLP JSON.
func (v AttributeValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case ValueString:
		return json.Marshal(map[string]string{"stringValue": v.str})
	case ValueInt:
		return json.Marshal(map[string]string{"intValue": strconv.FormatInt(v.num, 10)})
	}
	if len(v.raw) == 0 {
		return []byte("{}"), nil
	}
	return v.raw, nil
}

func parseIntValue(raw json.RawMessage) (int64, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		i, err := strconv.ParseInt(s, 10, 64)
		return i, err == nil
	}
	var i int64
	if err := json.Unmarshal(raw, &i); err == nil {
		return i, true
	}
	return 0, false
}

func compact(raw json.RawMessage) json.RawMessage {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return append(json.RawMessage(nil), raw...)
	}
	return buf.Bytes()
}
