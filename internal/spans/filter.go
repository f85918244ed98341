// Copyright 2026 Elasticsearch B.V. and contributors
// SPDX-License-Identifier: Apache-2.0

package spans

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalidFilterCombination is returned when a span id is requested
// without the trace id it belongs to.
var ErrInvalidFilterCombination = errors.New("span id requires a trace id")

// Filter selects spans from the telemetry API.
type Filter struct {
	TraceID            string
	SpanID             string
	FromTime           time.Time
	ToTime             time.Time
	ResourceAttributes AttributeFilter
	ScopeAttributes    AttributeFilter
	SpanAttributes     AttributeFilter
}

// Validate rejects filter combinations the API cannot serve.
func (f Filter) Validate() error {
	if f.SpanID != "" && f.TraceID == "" {
		return ErrInvalidFilterCombination
	}
	return nil
}

// Literal is a filter value: a string, a number or a bool.
type Literal struct {
	v any
}

// StringLiteral returns a string literal.
func StringLiteral(s string) Literal { return Literal{v: s} }

// NumberLiteral returns a numeric literal.
func NumberLiteral(n json.Number) Literal { return Literal{v: n} }

// BoolLiteral returns a boolean literal.
func BoolLiteral(b bool) Literal { return Literal{v: b} }

// IsString reports whether the literal is a string.
func (l Literal) IsString() bool {
	_, ok := l.v.(string)
	return ok
}

// String returns the literal's text without quoting.
func (l Literal) String() string {
	switch v := l.v.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	}
	return ""
}

// UnmarshalJSON accepts a JSON string, number or bool.
func (l *Literal) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}
	switch v.(type) {
	case string, json.Number, bool:
		l.v = v
		return nil
	}
	return fmt.Errorf("attribute filter value must be a string, number or bool, got %s", data)
}

// MarshalJSON encodes the literal with its original JSON type.
func (l Literal) MarshalJSON() ([]byte, error) {
	if l.v == nil {
		return []byte("null"), nil
	}
	return json.Marshal(l.v)
}

// native returns the literal as a plain Go value.
func (l Literal) native() any {
	n, ok := l.v.(json.Number)
	if !ok {
		return l.v
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}

// AttributeMatch is one key of an attribute filter. With Exists set the
// attribute only has to be present; otherwise it must equal one of Values.
type AttributeMatch struct {
	Key    string
	Values []Literal
	Exists bool
}

// AttributeFilter is an ordered map of attribute key to accepted values.
// Keys are ANDed, values within a key are ORed.
type AttributeFilter []AttributeMatch

// UnmarshalJSON decodes a JSON object keeping key order. A null member means
// "attribute exists".
func (f *AttributeFilter) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		*f = nil
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("attribute filter must be an object, got %s", data)
	}
	out := AttributeFilter{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("attribute filter %q: %w", key, err)
		}
		match := AttributeMatch{Key: key}
		if string(bytes.TrimSpace(raw)) == "null" {
			match.Exists = true
		} else if err := json.Unmarshal(raw, &match.Values); err != nil {
			return fmt.Errorf("attribute filter %q: %w", key, err)
		}
		out = append(out, match)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*f = out
	return nil
}

// MarshalJSON encodes the filter as an object in key order.
func (f AttributeFilter) MarshalJSON() ([]byte, error) {
	if f == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range f {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(m.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		if m.Exists {
			buf.WriteString("null")
			continue
		}
		values := m.Values
		if values == nil {
			values = []Literal{}
		}
		encoded, err := json.Marshal(values)
		if err != nil {
			return nil, err
		}
		buf.Write(encoded)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML renders the filter as a mapping in key order.
func (f AttributeFilter) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, m := range f {
		key := &yaml.Node{}
		if err := key.Encode(m.Key); err != nil {
			return nil, err
		}
		val := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
		if !m.Exists {
			values := make([]any, 0, len(m.Values))
			for _, v := range m.Values {
				values = append(values, v.native())
			}
			val = &yaml.Node{}
			if err := val.Encode(values); err != nil {
				return nil, err
			}
		}
		node.Content = append(node.Content, key, val)
	}
	return node, nil
}

// Lookback is a preset telemetry time window ending now.
type Lookback int

// Lookback presets.
const (
	LookbackDay Lookback = iota
	LookbackWeek
	LookbackMonth
)

// DefaultLookback is the window used when none is configured.
const DefaultLookback = LookbackWeek

var lookbackNames = map[Lookback]string{
	LookbackDay:   "1d",
	LookbackWeek:  "1w",
	LookbackMonth: "1mo",
}

// String returns the short preset name.
func (l Lookback) String() string {
	if name, ok := lookbackNames[l]; ok {
		return name
	}
	return fmt.Sprintf("Lookback(%d)", int(l))
}

// Label returns a human readable preset name.
func (l Lookback) Label() string {
	switch l {
	case LookbackDay:
		return "1 day"
	case LookbackMonth:
		return "1 month"
	default:
		return "1 week"
	}
}

// Start returns the beginning of the window that ends at now.
func (l Lookback) Start(now time.Time) time.Time {
	switch l {
	case LookbackDay:
		return now.AddDate(0, 0, -1)
	case LookbackMonth:
		return now.AddDate(0, -1, 0)
	default:
		return now.AddDate(0, 0, -7)
	}
}

// Next cycles to the following preset.
func (l Lookback) Next() Lookback {
	return (l + 1) % Lookback(len(lookbackNames))
}

// ParseLookback parses a preset name such as "1d", "1w" or "1mo".
func ParseLookback(s string) (Lookback, error) {
	switch s {
	case "1d", "day", "24h":
		return LookbackDay, nil
	case "1w", "week", "7d", "":
		return LookbackWeek, nil
	case "1mo", "month", "30d":
		return LookbackMonth, nil
	}
	return 0, fmt.Errorf("invalid lookback %q (use 1d, 1w or 1mo)", s)
}
