// Copyright 2026 Elasticsearch B.V. and contributors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/elastic/checkscope/internal/checks"
	"github.com/elastic/checkscope/internal/config"
	"github.com/elastic/checkscope/internal/jsonapi"
	"github.com/elastic/checkscope/internal/logging"
	"github.com/elastic/checkscope/internal/otlp"
	"github.com/elastic/checkscope/internal/telemetry"
)

// runtime holds what every command shares once configuration is loaded.
type runtime struct {
	cfg       config.Config
	logger    *zap.Logger
	providers *otlp.Providers // nil unless OTLP export is enabled
	cache     *checks.Cache
}

type runtimeKey struct{}

func withRuntime(ctx context.Context, rt *runtime) context.Context {
	return context.WithValue(ctx, runtimeKey{}, rt)
}

func runtimeFrom(ctx context.Context) (*runtime, bool) {
	if ctx == nil {
		return nil, false
	}
	rt, ok := ctx.Value(runtimeKey{}).(*runtime)
	return rt, ok && rt != nil
}

// newRuntime sets up OTLP export (when enabled), the logger and the checks
// cache. logOut nil means stderr.
func newRuntime(ctx context.Context, cfg config.Config, logOut io.Writer) (*runtime, error) {
	rt := &runtime{cfg: cfg}

	if cfg.OTLP.Enabled {
		providers, err := otlp.Setup(ctx, otlp.Config{
			Endpoint:       cfg.OTLP.Endpoint,
			Insecure:       cfg.OTLP.Insecure,
			ServiceName:    "checkscope",
			ServiceVersion: version,
		})
		if err != nil {
			return nil, fmt.Errorf("set up OTLP export: %w", err)
		}
		rt.providers = providers
	}

	var extra []zapcore.Core
	if core := rt.providers.ZapCore(); core != nil {
		extra = append(extra, core)
	}
	logger, err := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: logOut,
		Extra:  extra,
	})
	if err != nil {
		_ = rt.providers.Shutdown(ctx)
		return nil, err
	}
	rt.logger = logger

	cache, err := checks.NewCache(checks.DefaultCacheTTL)
	if err != nil {
		_ = rt.providers.Shutdown(ctx)
		return nil, err
	}
	rt.cache = cache

	logger.Debug("configuration loaded",
		zap.String("profile", cfg.Profile),
		zap.String("check_manager_url", cfg.CheckManager.URL),
		zap.String("telemetry_url", cfg.Telemetry.URL),
		zap.Bool("otlp", cfg.OTLP.Enabled),
	)
	return rt, nil
}

func credentials(cfg config.Config) jsonapi.Credentials {
	return jsonapi.Credentials{Cookie: cfg.Auth.Cookie, Token: cfg.Auth.Token}
}

func userAgent() string {
	return "checkscope/" + version
}

// checksClient builds a check-manager client from cfg.
func (r *runtime) checksClient(cfg config.Config) (*checks.Client, error) {
	client, err := checks.NewClient(checks.ClientOptions{
		URL:         cfg.CheckManager.URL,
		Timeout:     cfg.CheckManager.Timeout,
		Credentials: credentials(cfg),
		Transport:   r.providers.Transport(nil),
		UserAgent:   userAgent(),
		Logger:      r.logger,
		Cache:       r.cache,
	})
	if err != nil {
		return nil, fmt.Errorf("create check-manager client: %w", err)
	}
	return client, nil
}

// telemetryClient builds a span-query client from cfg.
func (r *runtime) telemetryClient(cfg config.Config) (*telemetry.Client, error) {
	client, err := telemetry.NewClient(telemetry.ClientOptions{
		URL:         cfg.Telemetry.URL,
		Timeout:     cfg.Telemetry.Timeout,
		Credentials: credentials(cfg),
		Transport:   r.providers.Transport(nil),
		UserAgent:   userAgent(),
		Logger:      r.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create telemetry client: %w", err)
	}
	return client, nil
}

// Close flushes the logger and the OTLP exporters.
func (r *runtime) Close(ctx context.Context) error {
	var errs []error
	if r.cache != nil {
		r.cache.Close()
	}
	if r.logger != nil {
		// Sync on a terminal returns ENOTTY/EINVAL; nothing to act on.
		_ = r.logger.Sync()
	}
	if err := r.providers.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown OTLP: %w", err))
	}
	return errors.Join(errs...)
}
