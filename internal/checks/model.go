// Copyright 2026 Elasticsearch B.V. and contributors
// SPDX-License-Identifier: Apache-2.0

// Package checks is the client for the check-manager API: health checks,
// their templates and on-demand runs.
package checks

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/checkscope/internal/jsonapi"
	"github.com/elastic/checkscope/internal/spans"
)

// Resource type names used by the check-manager API.
const (
	CheckType    = "check"
	TemplateType = "check_template"
)

// Check is a scheduled health check.
type Check struct {
	ID         string          `json:"id" yaml:"id"`
	Type       string          `json:"type" yaml:"-"`
	Attributes CheckAttributes `json:"attributes" yaml:"attributes"`
	Links      jsonapi.Links   `json:"links,omitempty" yaml:"-"`
}

// CheckAttributes holds the check definition.
type CheckAttributes struct {
	Metadata      Metadata      `json:"metadata" yaml:"metadata"`
	Schedule      string        `json:"schedule" yaml:"schedule"`
	OutcomeFilter OutcomeFilter `json:"outcome_filter" yaml:"outcome_filter"`
}

// OutcomeFilter selects the telemetry that belongs to a check.
type OutcomeFilter struct {
	ResourceAttributes spans.AttributeFilter `json:"resource_attributes,omitempty" yaml:"resource_attributes,omitempty"`
	ScopeAttributes    spans.AttributeFilter `json:"scope_attributes,omitempty" yaml:"scope_attributes,omitempty"`
	SpanAttributes     spans.AttributeFilter `json:"span_attributes,omitempty" yaml:"span_attributes,omitempty"`
}

// Name returns the display name, falling back to the id.
func (c Check) Name() string {
	if c.Attributes.Metadata.Name != "" {
		return c.Attributes.Metadata.Name
	}
	return c.ID
}

// SpanFilter returns the telemetry filter for the check over the lookback
// window ending at now.
func (c Check) SpanFilter(lookback spans.Lookback, now time.Time) spans.Filter {
	of := c.Attributes.OutcomeFilter
	return spans.Filter{
		FromTime:           lookback.Start(now),
		ToTime:             now,
		ResourceAttributes: of.ResourceAttributes,
		ScopeAttributes:    of.ScopeAttributes,
		SpanAttributes:     of.SpanAttributes,
	}
}

// Metadata describes a check. Keys the client does not know are kept in
// Extra and written back unchanged.
type Metadata struct {
	Name         string
	Description  string
	TemplateID   string
	TemplateArgs json.RawMessage
	Extra        map[string]json.RawMessage
}

var metadataKeys = []string{"name", "description", "template_id", "template_args"}

// UnmarshalJSON splits known keys from extra ones.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var known struct {
		Name         string          `json:"name"`
		Description  string          `json:"description"`
		TemplateID   string          `json:"template_id"`
		TemplateArgs json.RawMessage `json:"template_args"`
	}
	if err := json.Unmarshal(data, &known); err != nil {
		return fmt.Errorf("check metadata: %w", err)
	}
	*m = Metadata{
		Name:         known.Name,
		Description:  known.Description,
		TemplateID:   known.TemplateID,
		TemplateArgs: known.TemplateArgs,
	}
	for _, k := range metadataKeys {
		delete(raw, k)
	}
	if len(raw) > 0 {
		m.Extra = raw
	}
	return nil
}

// MarshalJSON merges known and extra keys.
func (m Metadata) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(m.Extra)+4)
	for k, v := range m.Extra {
		out[k] = v
	}
	out["name"] = m.Name
	if m.Description != "" {
		out["description"] = m.Description
	}
	if m.TemplateID != "" {
		out["template_id"] = m.TemplateID
	}
	if len(m.TemplateArgs) > 0 {
		out["template_args"] = m.TemplateArgs
	}
	return json.Marshal(out)
}

// MarshalYAML renders the metadata for `--output yaml`.
func (m Metadata) MarshalYAML() (any, error) {
	out := map[string]any{"name": m.Name}
	if m.Description != "" {
		out["description"] = m.Description
	}
	if m.TemplateID != "" {
		out["template_id"] = m.TemplateID
	}
	if len(m.TemplateArgs) > 0 {
		var args any
		if err := json.Unmarshal(m.TemplateArgs, &args); err == nil {
			out["template_args"] = args
		}
	}
	for k, v := range m.Extra {
		var val any
		if err := json.Unmarshal(v, &val); err == nil {
			out[k] = val
		}
	}
	return out, nil
}

// Template is a check template.
type Template struct {
	ID         string             `json:"id"`
	Type       string             `json:"type"`
	Attributes TemplateAttributes `json:"attributes"`
	Links      jsonapi.Links      `json:"links,omitempty"`
}

// TemplateAttributes holds the template metadata and the JSON schema of its
// arguments.
type TemplateAttributes struct {
	Metadata  TemplateMetadata `json:"metadata"`
	Arguments json.RawMessage  `json:"arguments,omitempty"`
}

// TemplateMetadata describes a template.
type TemplateMetadata struct {
	Label       string `json:"label,omitempty"`
	Description string `json:"description,omitempty"`
}

// Label returns the display label, falling back to the id.
func (t Template) Label() string {
	if t.Attributes.Metadata.Label != "" {
		return t.Attributes.Metadata.Label
	}
	return t.ID
}

// FindTemplate returns the template with the given id.
func FindTemplate(templates []Template, id string) (Template, error) {
	for _, t := range templates {
		if t.ID == id {
			return t, nil
		}
	}
	return Template{}, fmt.Errorf("%w: %q", ErrTemplateNotFound, id)
}

// NewCheck is the input for creating a check.
type NewCheck struct {
	Name         string
	Description  string
	TemplateID   string
	TemplateArgs json.RawMessage
	Schedule     string
}

// Validate checks the fields the server requires.
func (n NewCheck) Validate() error {
	if n.Name == "" {
		return fmt.Errorf("check name is required")
	}
	if n.TemplateID == "" {
		return fmt.Errorf("template id is required")
	}
	if n.Schedule == "" {
		return fmt.Errorf("schedule is required")
	}
	if len(n.TemplateArgs) > 0 && !json.Valid(n.TemplateArgs) {
		return fmt.Errorf("template args must be valid JSON")
	}
	return nil
}

type newCheckAttributes struct {
	Metadata Metadata `json:"metadata"`
	Schedule string   `json:"schedule"`
}

func (n NewCheck) document() jsonapi.Document[jsonapi.Resource[newCheckAttributes]] {
	return jsonapi.Document[jsonapi.Resource[newCheckAttributes]]{
		Data: jsonapi.Resource[newCheckAttributes]{
			Type: CheckType,
			Attributes: newCheckAttributes{
				Metadata: Metadata{
					Name:         n.Name,
					Description:  n.Description,
					TemplateID:   n.TemplateID,
					TemplateArgs: n.TemplateArgs,
				},
				Schedule: n.Schedule,
			},
		},
	}
}
