// Copyright 2026 Elasticsearch B.V. and contributors
// SPDX-License-Identifier: Apache-2.0

package checks

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/elastic/checkscope/internal/jsonapi"
)

const checkJSON = `{
  "id": "c1",
  "type": "check",
  "attributes": {
    "metadata": {"name": "Login works", "template_id": "tpl-http", "template_args": {"url": "https://example.com"}, "owner": "team-a"},
    "schedule": "*/5 * * * *",
    "outcome_filter": {
      "resource_attributes": {"k8s.cronjob.name": ["login-check"]},
      "span_attributes": {"test.case.result.status": null}
    }
  },
  "links": {"self": "/checks/c1"}
}`

const templateJSON = `{
  "id": "tpl-http",
  "type": "check_template",
  "attributes": {
    "metadata": {"label": "HTTP probe", "description": "GET a URL"},
    "arguments": {"type": "object", "properties": {"url": {"type": "string"}}}
  }
}`

// fakeCheckManager is an in-memory check-manager API.
type fakeCheckManager struct {
	mu       sync.Mutex
	checks   map[string]json.RawMessage
	runs     []string
	created  []byte
	lastPath string
	lastIDs  []string
}

func (f *fakeCheckManager) snapshot() (path string, ids []string, runs []string, created []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastPath, f.lastIDs, append([]string(nil), f.runs...), f.created
}

func newFakeCheckManager(t *testing.T) (*fakeCheckManager, *httptest.Server) {
	t.Helper()
	f := &fakeCheckManager{checks: map[string]json.RawMessage{"c1": json.RawMessage(checkJSON)}}

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			f.mu.Lock()
			f.lastPath = req.URL.Path
			f.lastIDs = req.URL.Query()["ids"]
			f.mu.Unlock()
			w.Header().Set("Content-Type", jsonapi.MediaType)
			next.ServeHTTP(w, req)
		})
	})
	r.Get("/checks/", func(w http.ResponseWriter, _ *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		data := make([]json.RawMessage, 0, len(f.checks))
		for _, c := range f.checks {
			data = append(data, c)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": data, "meta": nil})
	})
	r.Post("/checks/", func(w http.ResponseWriter, req *http.Request) {
		body, _ := io.ReadAll(req.Body)
		f.mu.Lock()
		f.created = body
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"c2","type":"check","attributes":{"metadata":{"name":"New"},"schedule":"0 * * * *","outcome_filter":{}}}}`))
	})
	r.Get("/checks/{id}", func(w http.ResponseWriter, req *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		c, ok := f.checks[chi.URLParam(req, "id")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"errors":[{"status":"404","title":"Not found","detail":"no such check"}]}`))
			return
		}
		_, _ = w.Write([]byte(`{"data":` + string(c) + `}`))
	})
	r.Delete("/checks/{id}", func(w http.ResponseWriter, req *http.Request) {
		f.mu.Lock()
		delete(f.checks, chi.URLParam(req, "id"))
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	r.Post("/checks/{id}/run/", func(w http.ResponseWriter, req *http.Request) {
		f.mu.Lock()
		f.runs = append(f.runs, chi.URLParam(req, "id"))
		f.mu.Unlock()
		w.WriteHeader(http.StatusAccepted)
	})
	r.Get("/check_templates/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":[` + templateJSON + `]}`))
	})
	r.Get("/check_templates/{id}", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":` + templateJSON + `}`))
	})

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return f, server
}

func newTestClient(t *testing.T, url string, cache *Cache) *Client {
	t.Helper()
	c, err := NewClient(ClientOptions{URL: url, Timeout: 5 * time.Second, Cache: cache})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return c
}

func TestListAndGetChecks(t *testing.T) {
	fake, server := newFakeCheckManager(t)
	cache, err := NewCache(time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(cache.Close)
	c := newTestClient(t, server.URL, cache)

	list, err := c.ListChecks(context.Background(), "c1", "c9")
	if err != nil {
		t.Fatalf("ListChecks() error = %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("len(list) = %d, want 1", len(list))
	}
	if _, ids, _, _ := fake.snapshot(); !reflect.DeepEqual(ids, []string{"c1", "c9"}) {
		t.Errorf("ids query = %v, want [c1 c9]", ids)
	}

	check, err := c.GetCheck(context.Background(), "c1")
	if err != nil {
		t.Fatalf("GetCheck() error = %v", err)
	}
	if path, _, _, _ := fake.snapshot(); path != "/checks/c1" {
		t.Errorf("path = %q, want /checks/c1", path)
	}
	if check.Name() != "Login works" {
		t.Errorf("Name() = %q", check.Name())
	}
	if check.Attributes.Metadata.TemplateID != "tpl-http" {
		t.Errorf("TemplateID = %q", check.Attributes.Metadata.TemplateID)
	}
	if _, ok := check.Attributes.Metadata.Extra["owner"]; !ok {
		t.Error("extra metadata key owner was dropped")
	}
	of := check.Attributes.OutcomeFilter
	if len(of.ResourceAttributes) != 1 || of.ResourceAttributes[0].Key != "k8s.cronjob.name" {
		t.Errorf("resource_attributes = %+v", of.ResourceAttributes)
	}
	if len(of.SpanAttributes) != 1 || !of.SpanAttributes[0].Exists {
		t.Errorf("span_attributes = %+v", of.SpanAttributes)
	}

	cached, ok := cache.Check("c1")
	if !ok || cached.Name() != "Login works" {
		t.Errorf("cache.Check(c1) = %v, %v", cached.Name(), ok)
	}
}

func TestGetCheckNotFound(t *testing.T) {
	_, server := newFakeCheckManager(t)
	c := newTestClient(t, server.URL, nil)

	_, err := c.GetCheck(context.Background(), "missing")
	if !jsonapi.IsNotFound(err) {
		t.Fatalf("error = %v, want 404", err)
	}
	var apiErr *jsonapi.APIError
	if !errors.As(err, &apiErr) || apiErr.Errors[0].Detail != "no such check" {
		t.Errorf("error = %v, want APIError with detail", err)
	}
}

func TestCreateCheck(t *testing.T) {
	fake, server := newFakeCheckManager(t)
	c := newTestClient(t, server.URL, nil)

	created, err := c.CreateCheck(context.Background(), NewCheck{
		Name:         "New",
		Description:  "hourly",
		TemplateID:   "tpl-http",
		TemplateArgs: json.RawMessage(`{"url":"https://example.com"}`),
		Schedule:     "0 * * * *",
	})
	if err != nil {
		t.Fatalf("CreateCheck() error = %v", err)
	}
	if created.ID != "c2" {
		t.Errorf("ID = %q, want c2", created.ID)
	}

	_, _, _, raw := fake.snapshot()
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("request body: %v", err)
	}
	want := map[string]any{
		"data": map[string]any{
			"type": "check",
			"attributes": map[string]any{
				"metadata": map[string]any{
					"name":          "New",
					"description":   "hourly",
					"template_id":   "tpl-http",
					"template_args": map[string]any{"url": "https://example.com"},
				},
				"schedule": "0 * * * *",
			},
		},
	}
	if !reflect.DeepEqual(body, want) {
		t.Errorf("body = %v\nwant %v", body, want)
	}
}

func TestCreateCheckValidates(t *testing.T) {
	c := newTestClient(t, "http://127.0.0.1:1", nil)
	tests := []NewCheck{
		{TemplateID: "t", Schedule: "* * * * *"},
		{Name: "n", Schedule: "* * * * *"},
		{Name: "n", TemplateID: "t"},
		{Name: "n", TemplateID: "t", Schedule: "* * * * *", TemplateArgs: json.RawMessage(`{`)},
	}
	for _, in := range tests {
		if _, err := c.CreateCheck(context.Background(), in); err == nil {
			t.Errorf("CreateCheck(%+v) expected error", in)
		}
	}
}

func TestRunAndRemoveCheck(t *testing.T) {
	fake, server := newFakeCheckManager(t)
	cache, err := NewCache(time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(cache.Close)
	c := newTestClient(t, server.URL, cache)

	if err := c.RunCheck(context.Background(), "c1"); err != nil {
		t.Fatalf("RunCheck() error = %v", err)
	}
	path, _, runs, _ := fake.snapshot()
	if path != "/checks/c1/run/" {
		t.Errorf("path = %q, want /checks/c1/run/", path)
	}
	if !reflect.DeepEqual(runs, []string{"c1"}) {
		t.Errorf("runs = %v", runs)
	}

	if _, err := c.ListChecks(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, ok := cache.Checks(); !ok {
		t.Fatal("listing not cached")
	}

	if err := c.RemoveCheck(context.Background(), "c1"); err != nil {
		t.Fatalf("RemoveCheck() error = %v", err)
	}
	if _, ok := cache.Check("c1"); ok {
		t.Error("removed check still cached")
	}
	if _, ok := cache.Checks(); ok {
		t.Error("listing still cached after remove")
	}
	list, err := c.ListChecks(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 0 {
		t.Errorf("len(list) = %d after remove, want 0", len(list))
	}
}

func TestTemplates(t *testing.T) {
	_, server := newFakeCheckManager(t)
	c := newTestClient(t, server.URL, nil)

	list, err := c.ListTemplates(context.Background())
	if err != nil {
		t.Fatalf("ListTemplates() error = %v", err)
	}
	tpl, err := FindTemplate(list, "tpl-http")
	if err != nil {
		t.Fatalf("FindTemplate() error = %v", err)
	}
	if tpl.Label() != "HTTP probe" {
		t.Errorf("Label() = %q", tpl.Label())
	}
	if !json.Valid(tpl.Attributes.Arguments) {
		t.Error("arguments schema not kept")
	}

	if _, err := FindTemplate(list, "nope"); !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("FindTemplate(nope) error = %v, want ErrTemplateNotFound", err)
	}

	got, err := c.GetTemplate(context.Background(), "tpl-http")
	if err != nil {
		t.Fatalf("GetTemplate() error = %v", err)
	}
	if got.ID != "tpl-http" {
		t.Errorf("ID = %q", got.ID)
	}
}
