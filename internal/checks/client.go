// Copyright 2026 Elasticsearch B.V. and contributors
// SPDX-License-Identifier: Apache-2.0

package checks

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/elastic/checkscope/internal/jsonapi"
)

// ErrTemplateNotFound is returned by FindTemplate.
var ErrTemplateNotFound = errors.New("template not found")

const tracerName = "github.com/elastic/checkscope/internal/checks"

// Client talks to the check-manager API.
type Client struct {
	api    *jsonapi.Requester
	cache  *Cache
	logger *zap.Logger
	tracer trace.Tracer
}

// ClientOptions configures a Client.
type ClientOptions struct {
	URL         string
	Timeout     time.Duration
	Credentials jsonapi.Credentials
	Transport   http.RoundTripper
	UserAgent   string
	Logger      *zap.Logger
	// Cache is optional. When set, every successful read refreshes it.
	Cache *Cache
}

// NewClient creates a check-manager client.
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
		cache:  opts.Cache,
		logger: logger.Named("checks"),
		tracer: otel.Tracer(tracerName),
	}, nil
}

// Cached returns the client's cache, or nil.
func (c *Client) Cached() *Cache {
	return c.cache
}

func (c *Client) do(ctx context.Context, op string, req jsonapi.Request, out any) error {
	ctx, span := c.tracer.Start(ctx, "checks."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("http.method", methodOrGet(req.Method))),
	)
	defer span.End()

	if err := c.api.Do(ctx, req, out); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Debug("check-manager request failed", zap.String("op", op), zap.Error(err))
		return err
	}
	return nil
}

func methodOrGet(m string) string {
	if m == "" {
		return http.MethodGet
	}
	return m
}

func idsQuery(ids []string) url.Values {
	if len(ids) == 0 {
		return nil
	}
	return url.Values{"ids": ids}
}

// ListChecks returns checks, optionally restricted to ids.
func (c *Client) ListChecks(ctx context.Context, ids ...string) ([]Check, error) {
	var doc jsonapi.ListDocument[Check, struct{}]
	req := jsonapi.Request{Path: "/checks/", Query: idsQuery(ids)}
	if err := c.do(ctx, "list_checks", req, &doc); err != nil {
		return nil, fmt.Errorf("list checks: %w", err)
	}
	if c.cache != nil {
		if len(ids) == 0 {
			c.cache.PutChecks(doc.Data)
		} else {
			for _, check := range doc.Data {
				c.cache.PutCheck(check)
			}
		}
	}
	return doc.Data, nil
}

// GetCheck returns one check.
func (c *Client) GetCheck(ctx context.Context, id string) (Check, error) {
	var doc jsonapi.Document[Check]
	req := jsonapi.Request{Path: "/checks/", PathParams: []string{id}}
	if err := c.do(ctx, "get_check", req, &doc); err != nil {
		return Check{}, fmt.Errorf("get check %s: %w", id, err)
	}
	if c.cache != nil {
		c.cache.PutCheck(doc.Data)
	}
	return doc.Data, nil
}

// CreateCheck creates a check from a template and returns it.
func (c *Client) CreateCheck(ctx context.Context, in NewCheck) (Check, error) {
	if err := in.Validate(); err != nil {
		return Check{}, err
	}
	var doc jsonapi.Document[Check]
	req := jsonapi.Request{Method: http.MethodPost, Path: "/checks/", Body: in.document()}
	if err := c.do(ctx, "create_check", req, &doc); err != nil {
		return Check{}, fmt.Errorf("create check: %w", err)
	}
	if c.cache != nil {
		c.cache.PutCheck(doc.Data)
	}
	c.logger.Info("check created", zap.String("id", doc.Data.ID), zap.String("name", doc.Data.Name()))
	return doc.Data, nil
}

// RemoveCheck deletes a check.
func (c *Client) RemoveCheck(ctx context.Context, id string) error {
	req := jsonapi.Request{Method: http.MethodDelete, Path: "/checks/", PathParams: []string{id}}
	if err := c.do(ctx, "remove_check", req, nil); err != nil {
		return fmt.Errorf("remove check %s: %w", id, err)
	}
	if c.cache != nil {
		c.cache.DeleteCheck(id)
	}
	c.logger.Info("check removed", zap.String("id", id))
	return nil
}

// RunCheck triggers an immediate run.
func (c *Client) RunCheck(ctx context.Context, id string) error {
	req := jsonapi.Request{Method: http.MethodPost, Path: "/checks/", PathParams: []string{id, "run"}, TrailingSlash: true}
	if err := c.do(ctx, "run_check", req, nil); err != nil {
		return fmt.Errorf("run check %s: %w", id, err)
	}
	c.logger.Info("check run requested", zap.String("id", id))
	return nil
}

// ListTemplates returns templates, optionally restricted to ids.
func (c *Client) ListTemplates(ctx context.Context, ids ...string) ([]Template, error) {
	var doc jsonapi.ListDocument[Template, struct{}]
	req := jsonapi.Request{Path: "/check_templates/", Query: idsQuery(ids)}
	if err := c.do(ctx, "list_templates", req, &doc); err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	if c.cache != nil {
		if len(ids) == 0 {
			c.cache.PutTemplates(doc.Data)
		} else {
			for _, t := range doc.Data {
				c.cache.PutTemplate(t)
			}
		}
	}
	return doc.Data, nil
}

// GetTemplate returns one template.
func (c *Client) GetTemplate(ctx context.Context, id string) (Template, error) {
	var doc jsonapi.Document[Template]
	req := jsonapi.Request{Path: "/check_templates/", PathParams: []string{id}}
	if err := c.do(ctx, "get_template", req, &doc); err != nil {
		return Template{}, fmt.Errorf("get template %s: %w", id, err)
	}
	if c.cache != nil {
		c.cache.PutTemplate(doc.Data)
	}
	return doc.Data, nil
}
