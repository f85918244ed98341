// Copyright 2026 Elasticsearch B.V. and contributors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/elastic/checkscope/internal/spans"
)

// streamBuffer bounds how far a reduction may run ahead of the UI.
const streamBuffer = 16

// fetchChecks loads checks and templates together.
func (m Model) fetchChecks() tea.Cmd {
	source := m.checks
	parent := m.ctx
	timeout := m.tuiConfig.RequestTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, timeout)
		defer cancel()

		list, err := source.ListChecks(ctx)
		if err != nil {
			return checksMsg{err: err}
		}
		templates, err := source.ListTemplates(ctx)
		if err != nil {
			return checksMsg{err: err}
		}
		return checksMsg{checks: list, templates: templates}
	}
}

// startCheckLoad starts a new generation and runs the summary and runs
// reductions for the current check. Emissions of older generations are
// dropped; their requests are left to finish.
func (m *Model) startCheckLoad() tea.Cmd {
	gen := m.gens.Next()
	filter := m.Check.Check.SpanFilter(m.Lookback, m.now())

	m.Check.Gen = gen
	m.Check.Filter = filter
	m.Check.Summary = spans.SpansSummary{}
	m.Check.SummaryState = spans.Loading
	m.Check.SummaryLoading = true
	m.Check.SummaryPages = 0
	m.Check.Groups = spans.TraceGroups{}
	m.Check.Report = spans.RunsReport{}
	m.Check.RunsLoading = true
	m.Check.RunsPages = 0
	m.Check.Cursor = 0
	m.UI.Err = nil

	fetcher := m.fetcher
	gens := m.gens
	parent := m.ctx
	timeout := m.tuiConfig.RequestTimeout
	logger := m.logger

	ch := make(chan tea.Msg, streamBuffer)
	send := func(msg tea.Msg) {
		if gens.IsCurrent(gen) {
			ch <- msg
		}
	}

	go func() {
		defer close(ch)
		ctx, cancel := context.WithTimeout(parent, timeout)
		defer cancel()

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			progress := spans.Guard(gens, gen, func(s spans.SpansSummary, state spans.FetchState) {
				ch <- summaryMsg{gen: gen, summary: s, state: state}
			})
			if _, err := spans.Summarize(ctx, fetcher, filter, progress); err != nil {
				logger.Debug("summary reduction failed", zap.Uint64("gen", gen), zap.Error(err))
				send(summaryMsg{gen: gen, err: err})
			}
		}()
		go func() {
			defer wg.Done()
			progress := spans.Guard(gens, gen, func(r spans.SpanResult, state spans.FetchState) {
				ch <- runsMsg{gen: gen, result: r, state: state}
			})
			if _, err := spans.ReduceIncremental(ctx, fetcher, filter, spans.SpanResult{}, spans.MergeSpanResults, progress); err != nil {
				logger.Debug("runs reduction failed", zap.Uint64("gen", gen), zap.Error(err))
				send(runsMsg{gen: gen, err: err})
			}
		}()
		wg.Wait()
	}()

	return waitForStream(ch)
}

// startTraceLoad refetches the spans of the trace in view.
func (m *Model) startTraceLoad() tea.Cmd {
	gen := m.traceGens.Next()
	m.Trace.Gen = gen
	m.Trace.Loading = true
	m.UI.Err = nil

	filter := m.traceFilter()
	fetcher := m.fetcher
	parent := m.ctx
	timeout := m.tuiConfig.RequestTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, timeout)
		defer cancel()
		result, err := spans.Reduce(ctx, fetcher, filter, spans.SpanResult{}, spans.MergeSpanResults)
		return traceMsg{gen: gen, result: result, err: err}
	}
}

// traceFilter narrows the check filter to the trace in view.
func (m Model) traceFilter() spans.Filter {
	f := m.Check.Filter
	f.TraceID = m.Trace.TraceID
	f.SpanID = ""
	return f
}

// doAction runs or removes a check.
func (m Model) doAction(action pendingAction) tea.Cmd {
	source := m.checks
	parent := m.ctx
	timeout := m.tuiConfig.RequestTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, timeout)
		defer cancel()
		var err error
		switch action.Kind {
		case actionRemove:
			err = source.RemoveCheck(ctx, action.CheckID)
		default:
			err = source.RunCheck(ctx, action.CheckID)
		}
		return actionDoneMsg{action: action, err: err}
	}
}

// watchProfiles blocks until the profiles file is written or recreated.
// The parent directory is watched so editors that replace the file are seen.
func watchProfiles(path string) tea.Cmd {
	return func() tea.Msg {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return watchErrorMsg{err: fmt.Errorf("create watcher: %w", err)}
		}
		defer watcher.Close()

		if err := watcher.Add(filepath.Dir(path)); err != nil {
			return watchErrorMsg{err: fmt.Errorf("watch profiles: %w", err)}
		}

		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return watchErrorMsg{err: fmt.Errorf("watcher closed")}
				}
				if filepath.Clean(event.Name) != filepath.Clean(path) {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					return profilesChangedMsg{path: path}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return watchErrorMsg{err: fmt.Errorf("watcher closed")}
				}
				return watchErrorMsg{err: err}
			}
		}
	}
}

// reloadClients rebuilds the clients from the current configuration.
func (m Model) reloadClients() tea.Cmd {
	reload := m.reload
	return func() tea.Msg {
		source, fetcher, err := reload()
		return clientsReloadedMsg{checks: source, fetcher: fetcher, err: err}
	}
}

// reloadTick schedules the next automatic reload.
func reloadTick(d time.Duration) tea.Cmd {
	if d <= 0 {
		return nil
	}
	return tea.Tick(d, func(time.Time) tea.Msg { return reloadTickMsg{} })
}
