// Copyright 2026 Elasticsearch B.V. and contributors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/elastic/checkscope/internal/checks"
	"github.com/elastic/checkscope/internal/spans"
	"github.com/elastic/checkscope/internal/telemetry"
)

// checkTarget is what the telemetry commands need for one check.
type checkTarget struct {
	rt      *runtime
	check   checks.Check
	fetcher *telemetry.Client
	filter  spans.Filter
}

// loadCheckTarget fetches the check and builds its span filter over the
// configured lookback ending now.
func loadCheckTarget(cmd *cobra.Command, id string) (*checkTarget, error) {
	rt, client, err := checksClientFor(cmd)
	if err != nil {
		return nil, err
	}
	check, err := client.GetCheck(cmd.Context(), id)
	if err != nil {
		return nil, fmt.Errorf("get check %s: %w", id, err)
	}
	fetcher, err := rt.telemetryClient(rt.cfg)
	if err != nil {
		return nil, err
	}
	lookback := rt.cfg.Telemetry.LookbackPreset()
	filter := check.SpanFilter(lookback, time.Now())
	rt.logger.Debug("check filter",
		zap.String("check", check.ID),
		zap.String("lookback", lookback.String()),
		zap.String("query", spans.QueryText(filter)),
	)
	return &checkTarget{rt: rt, check: check, fetcher: fetcher, filter: filter}, nil
}

// progressPrinter reports page progress to w. It writes nothing for a
// single-page result.
func progressPrinter[T any](w io.Writer, describe func(T) string) spans.ProgressFunc[T] {
	pages := 0
	return func(acc T, state spans.FetchState) {
		pages++
		if state == spans.Completed {
			if pages > 1 {
				fmt.Fprintf(w, "Fetched %d pages: %s\n", pages, describe(acc))
			}
			return
		}
		fmt.Fprintf(w, "Fetched page %d: %s...\n", pages, describe(acc))
	}
}
