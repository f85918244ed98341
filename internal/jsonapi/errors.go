// Copyright 2026 Elasticsearch B.V. and contributors
// SPDX-License-Identifier: Apache-2.0

package jsonapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// maxErrorBody bounds the response text kept in a TransportError.
const maxErrorBody = 512

// ErrorSource points at the part of the request that caused an error.
type ErrorSource struct {
	Pointer   string `json:"pointer,omitempty"`
	Parameter string `json:"parameter,omitempty"`
	Header    string `json:"header,omitempty"`
}

// ErrorObject is one entry of an error document.
type ErrorObject struct {
	Status string         `json:"status,omitempty"`
	Code   string         `json:"code,omitempty"`
	Title  string         `json:"title,omitempty"`
	Detail string         `json:"detail,omitempty"`
	Source *ErrorSource   `json:"source,omitempty"`
	Meta   map[string]any `json:"meta,omitempty"`
}

// String renders "title (code status): detail".
func (e ErrorObject) String() string {
	return fmt.Sprintf("%s (code %s): %s", e.Title, e.Status, e.Detail)
}

// ErrorDocument is a top-level error document.
type ErrorDocument struct {
	Errors []ErrorObject `json:"errors"`
}

// APIError is returned when the server answers with a structured error
// document.
type APIError struct {
	StatusCode int
	Errors     []ErrorObject
}

func (e *APIError) Error() string {
	lines := make([]string, 0, len(e.Errors))
	for _, obj := range e.Errors {
		lines = append(lines, obj.String())
	}
	return strings.Join(lines, "\n")
}

// TransportError is an HTTP failure without a usable error document, or a
// network error. StatusCode is 0 when no response was received.
type TransportError struct {
	StatusCode int
	Status     string
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		if e.Err != nil {
			return e.Err.Error()
		}
		return "request failed"
	}
	msg := e.Status
	if msg == "" {
		msg = fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

func (e *TransportError) Unwrap() error { return e.Err }

// StatusCode extracts the HTTP status of an APIError or TransportError.
func StatusCode(err error) (int, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode, true
	}
	var tErr *TransportError
	if errors.As(err, &tErr) && tErr.StatusCode != 0 {
		return tErr.StatusCode, true
	}
	return 0, false
}

// IsUnauthorized reports whether err means the credentials were rejected.
func IsUnauthorized(err error) bool {
	code, ok := StatusCode(err)
	return ok && (code == http.StatusUnauthorized || code == http.StatusForbidden)
}

// IsNotFound reports whether err is a 404.
func IsNotFound(err error) bool {
	code, ok := StatusCode(err)
	return ok && code == http.StatusNotFound
}

// decodeError turns a failed response into an APIError when the body is an
// error document, or a TransportError otherwise.
func decodeError(statusCode int, status string, body []byte) error {
	var doc ErrorDocument
	if err := json.Unmarshal(body, &doc); err == nil && len(doc.Errors) > 0 {
		return &APIError{StatusCode: statusCode, Errors: doc.Errors}
	}
	text := strings.TrimSpace(string(body))
	if len(text) > maxErrorBody {
		text = text[:maxErrorBody] + "..."
	}
	return &TransportError{StatusCode: statusCode, Status: status, Body: text}
}
