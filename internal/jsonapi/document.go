// Copyright 2026 Elasticsearch B.V. and contributors
// SPDX-License-Identifier: Apache-2.0

// Package jsonapi implements the subset of JSON:API (https://jsonapi.org)
// spoken by the check-manager and telemetry services: envelope types, error
// documents and a small request helper.
package jsonapi

import (
	"bytes"
	"encoding/json"
)

// MediaType is the JSON:API content type.
const MediaType = "application/vnd.api+json"

// Resource is a single resource object.
type Resource[T any] struct {
	ID         string `json:"id,omitempty"`
	Type       string `json:"type"`
	Attributes T      `json:"attributes"`
	Links      Links  `json:"links,omitempty"`
}

// Document is a top-level document with one primary resource.
type Document[R any] struct {
	Data  R     `json:"data"`
	Links Links `json:"links,omitempty"`
}

// ListDocument is a top-level document with a list of primary resources and
// typed meta information.
type ListDocument[R, M any] struct {
	Data  []R   `json:"data"`
	Meta  M     `json:"meta"`
	Links Links `json:"links,omitempty"`
}

// Links is a links object.
type Links map[string]Link

// Link is either a bare URL or a link object.
type Link struct {
	Href  string `json:"href"`
	Title string `json:"title,omitempty"`
}

// UnmarshalJSON accepts both link forms.
func (l *Link) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &l.Href)
	}
	if string(data) == "null" {
		*l = Link{}
		return nil
	}
	type plain Link
	return json.Unmarshal(data, (*plain)(l))
}
