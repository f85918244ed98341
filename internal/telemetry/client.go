// Copyright 2026 Elasticsearch B.V. and contributors
// SPDX-License-Identifier: Apache-2.0

// Package telemetry is the client for the span-query API that stores the
// telemetry emitted by check runs.
package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/elastic/checkscope/internal/jsonapi"
	"github.com/elastic/checkscope/internal/spans"
)

const tracerName = "github.com/elastic/checkscope/internal/telemetry"

// timeLayout is ISO-8601 in UTC with millisecond precision.
const timeLayout = "2006-01-02T15:04:05.000Z07:00"

// Client fetches span pages.
type Client struct {
	api    *jsonapi.Requester
	logger *zap.Logger
	tracer trace.Tracer
}

var _ spans.PageFetcher = (*Client)(nil)

// ClientOptions configures a Client.
type ClientOptions struct {
	URL         string
	Timeout     time.Duration
	Credentials jsonapi.Credentials
	Transport   http.RoundTripper
	UserAgent   string
	Logger      *zap.Logger
}

// NewClient creates a telemetry client.
func NewClient(opts ClientOptions) (*Client, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	api, err := jsonapi.NewRequester(jsonapi.Options{
		BaseURL:     opts.URL,
		Timeout:     opts.Timeout,
		Credentials: opts.Credentials,
		Transport:   opts.Transport,
		UserAgent:   opts.UserAgent,
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}
	return &Client{
		api:    api,
		logger: logger.Named("telemetry"),
		tracer: otel.Tracer(tracerName),
	}, nil
}

type pageMeta struct {
	Page struct {
		NextPageToken string `json:"next_page_token"`
	} `json:"page"`
}

type spansDocument = jsonapi.ListDocument[jsonapi.Resource[spans.SpanResult], pageMeta]

// FetchSpanPage requests one page of spans. A span id without a trace id is
// rejected before any request is made.
func (c *Client) FetchSpanPage(ctx context.Context, filter spans.Filter, pageToken string) (spans.Page, error) {
	if err := filter.Validate(); err != nil {
		return spans.Page{}, err
	}

	ctx, span := c.tracer.Start(ctx, "telemetry.fetch_page",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.Bool("page.continuation", pageToken != ""),
			attribute.String("filter.trace_id", filter.TraceID),
		),
	)
	defer span.End()

	req := jsonapi.Request{
		Path:       "/spans",
		PathParams: []string{filter.TraceID, filter.SpanID},
		Query:      Query(filter, pageToken),
	}

	var doc spansDocument
	if err := c.api.Do(ctx, req, &doc); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Debug("span page failed", zap.String("trace_id", filter.TraceID), zap.Error(err))
		return spans.Page{}, err
	}

	page := spans.Page{
		Results:       make([]spans.SpanResult, 0, len(doc.Data)),
		NextPageToken: doc.Meta.Page.NextPageToken,
	}
	count := 0
	for _, item := range doc.Data {
		page.Results = append(page.Results, item.Attributes)
		count += item.Attributes.SpanCount()
	}

	span.SetAttributes(
		attribute.Int("page.results", len(page.Results)),
		attribute.Int("page.spans", count),
		attribute.Bool("page.has_next", page.NextPageToken != ""),
	)
	c.logger.Debug("span page fetched",
		zap.Int("results", len(page.Results)),
		zap.Int("spans", count),
		zap.Bool("has_next", page.NextPageToken != ""),
	)
	return page, nil
}

// Query builds the query string for a span request. Empty values are left
// out.
func Query(filter spans.Filter, pageToken string) url.Values {
	q := url.Values{}
	if !filter.FromTime.IsZero() {
		q.Set("from_time", filter.FromTime.UTC().Format(timeLayout))
	}
	if !filter.ToTime.IsZero() {
		q.Set("to_time", filter.ToTime.UTC().Format(timeLayout))
	}
	for _, tok := range AttributeTokens(filter.ResourceAttributes) {
		q.Add("resource_attributes", tok)
	}
	for _, tok := range AttributeTokens(filter.ScopeAttributes) {
		q.Add("scope_attributes", tok)
	}
	for _, tok := range AttributeTokens(filter.SpanAttributes) {
		q.Add("span_attributes", tok)
	}
	if pageToken != "" {
		q.Set("page_token", pageToken)
	}
	return q
}

// AttributeTokens flattens an attribute filter into query tokens: a bare
// key for "must exist", otherwise key="string" or key=value per value.
func AttributeTokens(f spans.AttributeFilter) []string {
	var out []string
	for _, m := range f {
		if m.Exists {
			out = append(out, m.Key)
			continue
		}
		for _, v := range m.Values {
			if v.IsString() {
				out = append(out, m.Key+"="+quote(v.String()))
			} else {
				out = append(out, m.Key+"="+v.String())
			}
		}
	}
	return out
}

// quote renders s as a JSON string without HTML escaping.
func quote(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return `"` + s + `"`
	}
	return string(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
}
