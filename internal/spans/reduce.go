// Copyright 2026 Elasticsearch B.V. and contributors
// SPDX-License-Identifier: Apache-2.0

package spans

import (
	"context"
	"slices"
	"sync/atomic"
)

// Page is one page of span results plus the token for the next page.
// An empty NextPageToken marks the last page.
type Page struct {
	Results       []SpanResult
	NextPageToken string
}

// PageFetcher fetches a single page of spans.
type PageFetcher interface {
	FetchSpanPage(ctx context.Context, filter Filter, pageToken string) (Page, error)
}

// PageFetcherFunc adapts a function to PageFetcher.
type PageFetcherFunc func(ctx context.Context, filter Filter, pageToken string) (Page, error)

// FetchSpanPage calls f.
func (f PageFetcherFunc) FetchSpanPage(ctx context.Context, filter Filter, pageToken string) (Page, error) {
	return f(ctx, filter, pageToken)
}

// FetchState tags a progress emission.
type FetchState int

// Fetch states.
const (
	Loading FetchState = iota
	Completed
)

func (s FetchState) String() string {
	if s == Completed {
		return "completed"
	}
	return "loading"
}

// FoldFunc folds one span result into the accumulator.
type FoldFunc[T any] func(acc T, result SpanResult) T

// ProgressFunc receives the accumulator after each page.
type ProgressFunc[T any] func(acc T, state FetchState)

// Reduce fetches every page matching filter and folds each span result into
// initial, in page order.
func Reduce[T any](ctx context.Context, fetcher PageFetcher, filter Filter, initial T, fold FoldFunc[T]) (T, error) {
	return ReduceIncremental(ctx, fetcher, filter, initial, fold, nil)
}

// ReduceIncremental is Reduce with a progress callback. After every page but
// the last the callback receives the accumulator tagged Loading; after the
// last page it receives it tagged Completed, exactly once. On error nothing
// more is emitted and the zero value is returned.
func ReduceIncremental[T any](ctx context.Context, fetcher PageFetcher, filter Filter, initial T, fold FoldFunc[T], progress ProgressFunc[T]) (T, error) {
	var zero T
	if err := filter.Validate(); err != nil {
		return zero, err
	}

	acc := initial
	token := ""
	for {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		page, err := fetcher.FetchSpanPage(ctx, filter, token)
		if err != nil {
			return zero, err
		}
		for _, result := range page.Results {
			acc = fold(acc, result)
		}
		token = page.NextPageToken
		if token == "" {
			if progress != nil {
				progress(acc, Completed)
			}
			return acc, nil
		}
		if progress != nil {
			progress(acc, Loading)
		}
	}
}

// MergeSpanResults appends the resource spans of result to acc. The returned
// value never shares its backing array with an earlier one, so snapshots
// handed out by ReduceIncremental stay valid.
func MergeSpanResults(acc SpanResult, result SpanResult) SpanResult {
	return SpanResult{
		ResourceSpans: append(slices.Clip(acc.ResourceSpans), result.ResourceSpans...),
	}
}

// Generations hands out request generations. Only emissions from the latest
// generation are delivered; older ones are dropped.
type Generations struct {
	current atomic.Uint64
}

// Next starts a new generation, making every earlier one stale.
func (g *Generations) Next() uint64 {
	return g.current.Add(1)
}

// Current returns the latest generation.
func (g *Generations) Current() uint64 {
	return g.current.Load()
}

// IsCurrent reports whether gen is still the latest generation.
func (g *Generations) IsCurrent(gen uint64) bool {
	return g.current.Load() == gen
}

// Guard wraps progress so that it only fires while gen is current.
func Guard[T any](g *Generations, gen uint64, progress ProgressFunc[T]) ProgressFunc[T] {
	return func(acc T, state FetchState) {
		if progress == nil || !g.IsCurrent(gen) {
			return
		}
		progress(acc, state)
	}
}
