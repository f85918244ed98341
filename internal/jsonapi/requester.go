// Copyright 2026 Elasticsearch B.V. and contributors
// SPDX-License-Identifier: Apache-2.0

package jsonapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout applies when Options.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// Credentials ride along on every request.
type Credentials struct {
	Cookie string // raw Cookie header value, e.g. "session=abc"
	Token  string // bearer token
}

// Options configures a Requester.
type Options struct {
	BaseURL     string
	Timeout     time.Duration
	Credentials Credentials
	Transport   http.RoundTripper // nil uses http.DefaultTransport
	UserAgent   string
	Logger      *zap.Logger
}

// Requester sends JSON:API requests relative to a base URL.
type Requester struct {
	baseURL    string
	creds      Credentials
	userAgent  string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewRequester validates the base URL and returns a Requester.
func NewRequester(opts Options) (*Requester, error) {
	base := strings.TrimSuffix(strings.TrimSpace(opts.BaseURL), "/")
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q must be http or https", opts.BaseURL)
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Requester{
		baseURL:   base,
		creds:     opts.Credentials,
		userAgent: opts.UserAgent,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: opts.Transport,
		},
		logger: logger,
	}, nil
}

// BaseURL returns the normalized base URL.
func (r *Requester) BaseURL() string { return r.baseURL }

// Request describes one API call.
type Request struct {
	Method string
	// Path is appended to the base URL, e.g. "/checks/".
	Path string
	// PathParams are escaped and appended to Path as segments. Empty
	// params are skipped.
	PathParams []string
	// TrailingSlash appends "/" after the last path param.
	TrailingSlash bool
	// Query params. Repeated keys are sent as repeated params.
	Query url.Values
	// Body is JSON encoded when non-nil.
	Body any
}

// URL builds the absolute URL for req.
func (r *Requester) URL(req Request) string {
	var b strings.Builder
	b.WriteString(r.baseURL)
	b.WriteString(req.Path)

	var segments []string
	for _, p := range req.PathParams {
		if p != "" {
			segments = append(segments, url.PathEscape(p))
		}
	}
	if len(segments) > 0 {
		if !strings.HasSuffix(req.Path, "/") {
			b.WriteByte('/')
		}
		b.WriteString(strings.Join(segments, "/"))
		if req.TrailingSlash {
			b.WriteByte('/')
		}
	}
	if len(req.Query) > 0 {
		b.WriteByte('?')
		b.WriteString(req.Query.Encode())
	}
	return b.String()
}

// Do sends req and decodes the response body into out (if non-nil).
// Failed responses become *APIError or *TransportError.
func (r *Requester) Do(ctx context.Context, req Request, out any) error {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	endpoint := r.URL(req)

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", MediaType)
	httpReq.Header.Set("Accept", MediaType+", application/json")
	if r.userAgent != "" {
		httpReq.Header.Set("User-Agent", r.userAgent)
	}
	if r.creds.Cookie != "" {
		httpReq.Header.Set("Cookie", r.creds.Cookie)
	}
	if r.creds.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+r.creds.Token)
	}

	start := time.Now()
	resp, err := r.httpClient.Do(httpReq)
	if err != nil {
		r.logger.Debug("request failed", zap.String("method", method), zap.String("url", endpoint), zap.Error(err))
		return &TransportError{Err: fmt.Errorf("%s %s: %w", method, endpoint, err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{StatusCode: resp.StatusCode, Status: resp.Status, Err: fmt.Errorf("read response: %w", err)}
	}
	r.logger.Debug("request done",
		zap.String("method", method),
		zap.String("url", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)),
	)

	if resp.StatusCode >= 400 {
		return decodeError(resp.StatusCode, resp.Status, respBody)
	}
	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, endpoint, err)
	}
	return nil
}
