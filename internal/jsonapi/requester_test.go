// Copyright 2026 Elasticsearch B.V. and contributors
// SPDX-License-Identifier: Apache-2.0

package jsonapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct {
	Name string `json:"name"`
}

func newTestRequester(t *testing.T, handler http.Handler, creds Credentials) *Requester {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	r, err := NewRequester(Options{BaseURL: server.URL + "/api/", Credentials: creds})
	require.NoError(t, err)
	return r
}

func TestNewRequesterRejectsBadURL(t *testing.T) {
	_, err := NewRequester(Options{BaseURL: "ftp://example.com"})
	assert.Error(t, err)
	_, err = NewRequester(Options{BaseURL: "://nope"})
	assert.Error(t, err)
}

func TestRequesterURL(t *testing.T) {
	r, err := NewRequester(Options{BaseURL: "http://host/v1/"})
	require.NoError(t, err)

	tests := []struct {
		name string
		req  Request
		want string
	}{
		{"plain path", Request{Path: "/checks/"}, "http://host/v1/checks/"},
		{"params escaped", Request{Path: "/spans", PathParams: []string{"a b", "c/d"}}, "http://host/v1/spans/a%20b/c%2Fd"},
		{"empty params skipped", Request{Path: "/spans", PathParams: []string{"t1", ""}}, "http://host/v1/spans/t1"},
		{"path with slash", Request{Path: "/checks/", PathParams: []string{"42"}, TrailingSlash: true}, "http://host/v1/checks/42/"},
		{"repeated query", Request{Path: "/checks/", Query: url.Values{"ids": {"1", "2"}}}, "http://host/v1/checks/?ids=1&ids=2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.URL(tt.req))
		})
	}
}

func TestRequesterDo(t *testing.T) {
	router := chi.NewRouter()
	router.Post("/api/widgets/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, MediaType, r.Header.Get("Content-Type"))
		assert.Equal(t, "session=abc", r.Header.Get("Cookie"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.JSONEq(t, `{"data":{"type":"widget","attributes":{"name":"w"}}}`, string(body))

		w.Header().Set("Content-Type", MediaType)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"7","type":"widget","attributes":{"name":"w"},"links":{"self":"/widgets/7"}}}`))
	})

	r := newTestRequester(t, router, Credentials{Cookie: "session=abc", Token: "tok"})

	var doc Document[Resource[widget]]
	err := r.Do(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/widgets/",
		Body:   Document[Resource[widget]]{Data: Resource[widget]{Type: "widget", Attributes: widget{Name: "w"}}},
	}, &doc)
	require.NoError(t, err)

	assert.Equal(t, "7", doc.Data.ID)
	assert.Equal(t, "w", doc.Data.Attributes.Name)
	assert.Equal(t, "/widgets/7", doc.Data.Links["self"].Href)
}

func TestRequesterDoErrors(t *testing.T) {
	router := chi.NewRouter()
	router.Get("/api/structured", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"errors":[{"status":"422","code":"bad_schedule","title":"Invalid schedule","detail":"not a cron expression","source":{"pointer":"/data/attributes/schedule"}}]}`))
	})
	router.Get("/api/plain", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	})
	router.Get("/api/unauthorized", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	r := newTestRequester(t, router, Credentials{})

	t.Run("structured", func(t *testing.T) {
		err := r.Do(context.Background(), Request{Path: "/structured"}, nil)
		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
		require.Len(t, apiErr.Errors, 1)
		assert.Equal(t, "/data/attributes/schedule", apiErr.Errors[0].Source.Pointer)
		assert.Equal(t, "Invalid schedule (code 422): not a cron expression", err.Error())
		assert.False(t, IsUnauthorized(err))
	})

	t.Run("plain", func(t *testing.T) {
		err := r.Do(context.Background(), Request{Path: "/plain"}, nil)
		var tErr *TransportError
		require.True(t, errors.As(err, &tErr))
		assert.Equal(t, http.StatusBadGateway, tErr.StatusCode)
		assert.Contains(t, err.Error(), "upstream exploded")
	})

	t.Run("unauthorized", func(t *testing.T) {
		err := r.Do(context.Background(), Request{Path: "/unauthorized"}, nil)
		assert.True(t, IsUnauthorized(err))
		code, ok := StatusCode(err)
		assert.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, code)
	})

	t.Run("not found", func(t *testing.T) {
		err := r.Do(context.Background(), Request{Path: "/missing"}, nil)
		assert.True(t, IsNotFound(err))
	})
}

func TestRequesterNetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	base := server.URL
	server.Close()

	r, err := NewRequester(Options{BaseURL: base})
	require.NoError(t, err)

	err = r.Do(context.Background(), Request{Path: "/x"}, nil)
	var tErr *TransportError
	require.True(t, errors.As(err, &tErr))
	assert.Equal(t, 0, tErr.StatusCode)
	assert.NotNil(t, errors.Unwrap(err))
	assert.False(t, IsUnauthorized(err))
}

func TestRequesterDecodeFailure(t *testing.T) {
	r := newTestRequester(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":`))
	}), Credentials{})

	var doc Document[Resource[widget]]
	err := r.Do(context.Background(), Request{Path: "/x"}, &doc)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "decode GET"))
}

func TestLinkForms(t *testing.T) {
	var links Links
	require.NoError(t, json.Unmarshal([]byte(`{"self":"/a","next":{"href":"/b","title":"Next"},"prev":null}`), &links))
	assert.Equal(t, "/a", links["self"].Href)
	assert.Equal(t, "/b", links["next"].Href)
	assert.Equal(t, "Next", links["next"].Title)
	assert.Equal(t, "", links["prev"].Href)
}
