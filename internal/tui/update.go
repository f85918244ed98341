// Copyright 2026 Elasticsearch B.V. and contributors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/elastic/checkscope/internal/jsonapi"
	"github.com/elastic/checkscope/internal/spans"
)

// handleAsyncError records err for display. It returns false when err is nil
// so the caller can proceed with success handling.
func (m *Model) handleAsyncError(err error) (done bool) {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return true
	}
	m.logger.Debug("request failed", zap.Error(err))
	if errors.Is(err, context.DeadlineExceeded) {
		err = fmt.Errorf("request timed out after %s: %w", m.tuiConfig.RequestTimeout, err)
	}
	m.UI.Err = err
	return true
}

// Init loads the checks list and starts the background watchers.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.fetchChecks(), m.Components.Spinner.Tick}
	if m.tuiConfig.WatchProfiles && m.profilesPath != "" && m.reload != nil {
		cmds = append(cmds, watchProfiles(m.profilesPath))
	}
	if tick := reloadTick(m.tuiConfig.ReloadInterval); tick != nil {
		cmds = append(cmds, tick)
	}
	return tea.Batch(cmds...)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.UI.Width = msg.Width
		m.UI.Height = msg.Height
		m.Components.Viewport.Width = max(msg.Width-4, 10)
		m.Components.Viewport.Height = max(msg.Height-6, 3)
		m.refreshTraceViewport()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Components.Spinner, cmd = m.Components.Spinner.Update(msg)
		return m, cmd

	case streamMsg:
		next, cmd := m.Update(msg.msg)
		return next, tea.Batch(cmd, waitForStream(msg.ch))

	case checksMsg:
		return m.handleChecksMsg(msg)

	case summaryMsg:
		return m.handleSummaryMsg(msg), nil

	case runsMsg:
		return m.handleRunsMsg(msg), nil

	case traceMsg:
		return m.handleTraceMsg(msg), nil

	case actionDoneMsg:
		return m.handleActionDone(msg)

	case profilesChangedMsg:
		m.setStatus("Profiles changed, reconnecting...")
		return m, m.reloadClients()

	case watchErrorMsg:
		m.logger.Debug("profiles watch stopped", zap.Error(msg.err))
		return m, nil

	case clientsReloadedMsg:
		return m.handleClientsReloaded(msg)

	case reloadTickMsg:
		cmd := m.reloadCurrentView()
		return m, tea.Batch(cmd, reloadTick(m.tuiConfig.ReloadInterval))
	}
	return m, nil
}

func (m Model) handleChecksMsg(msg checksMsg) (tea.Model, tea.Cmd) {
	m.List.Loading = false
	if m.handleAsyncError(msg.err) {
		return m, nil
	}
	m.UI.Err = nil
	m.List.Checks = msg.checks
	m.setTemplates(msg.templates)
	m.List.LastRefresh = m.now()
	if m.List.Cursor >= len(m.List.Checks) {
		m.List.Cursor = max(len(m.List.Checks)-1, 0)
	}
	return m, nil
}

func (m Model) handleSummaryMsg(msg summaryMsg) Model {
	if !m.gens.IsCurrent(msg.gen) || msg.gen != m.Check.Gen {
		return m
	}
	if msg.err != nil {
		m.Check.SummaryLoading = false
		m.handleAsyncError(msg.err)
		return m
	}
	m.Check.Summary = msg.summary
	m.Check.SummaryState = msg.state
	m.Check.SummaryPages++
	m.Check.SummaryLoading = msg.state != spans.Completed
	return m
}

func (m Model) handleRunsMsg(msg runsMsg) Model {
	if !m.gens.IsCurrent(msg.gen) || msg.gen != m.Check.Gen {
		return m
	}
	if msg.err != nil {
		m.Check.RunsLoading = false
		m.handleAsyncError(msg.err)
		return m
	}
	m.Check.Groups = spans.GroupByTrace(msg.result)
	m.Check.Report = spans.EvaluateAll(m.Check.Groups)
	m.Check.RunsPages++
	m.Check.RunsLoading = msg.state != spans.Completed
	if m.Check.Cursor >= len(m.Check.Report.Runs) {
		m.Check.Cursor = max(len(m.Check.Report.Runs)-1, 0)
	}
	return m
}

func (m Model) handleTraceMsg(msg traceMsg) Model {
	if !m.traceGens.IsCurrent(msg.gen) || msg.gen != m.Trace.Gen {
		return m
	}
	m.Trace.Loading = false
	if m.handleAsyncError(msg.err) {
		return m
	}
	m.Trace.Result = msg.result
	m.refreshTraceViewport()
	return m
}

func (m Model) handleActionDone(msg actionDoneMsg) (tea.Model, tea.Cmd) {
	if m.handleAsyncError(msg.err) {
		m.setStatus(fmt.Sprintf("Failed to %s %s", msg.action.Kind, msg.action.Name))
		return m, nil
	}
	switch msg.action.Kind {
	case actionRemove:
		m.setStatus(fmt.Sprintf("Removed %s", msg.action.Name))
		if m.UI.Mode == viewCheck && m.Check.Check.ID == msg.action.CheckID {
			m.gens.Next()
			m.popView()
		}
		m.List.Loading = true
		return m, m.fetchChecks()
	default:
		m.setStatus(fmt.Sprintf("Run requested for %s", msg.action.Name))
		return m, nil
	}
}

func (m Model) handleClientsReloaded(msg clientsReloadedMsg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	if m.tuiConfig.WatchProfiles && m.profilesPath != "" {
		cmds = append(cmds, watchProfiles(m.profilesPath))
	}
	if msg.err != nil {
		m.UI.Err = fmt.Errorf("reload profiles: %w", msg.err)
		return m, tea.Batch(cmds...)
	}
	m.checks = msg.checks
	m.fetcher = msg.fetcher
	m.setStatus("Reconnected")
	cmds = append(cmds, m.reloadCurrentView())
	return m, tea.Batch(cmds...)
}

// reloadCurrentView re-runs the request behind the current view with now
// reset.
func (m *Model) reloadCurrentView() tea.Cmd {
	switch m.UI.Mode {
	case viewCheck:
		return m.startCheckLoad()
	case viewTrace:
		return m.startTraceLoad()
	case viewConfirm:
		return nil
	default:
		m.List.Loading = true
		return m.fetchChecks()
	}
}

// pushView saves current mode to the view stack and transitions to a new view
func (m *Model) pushView(newMode viewMode) {
	m.UI.ViewStack = append(m.UI.ViewStack, m.UI.Mode)
	m.UI.Mode = newMode
}

// popView returns to the previous view from the stack, returns false if stack is empty
func (m *Model) popView() bool {
	if len(m.UI.ViewStack) == 0 {
		return false
	}
	n := len(m.UI.ViewStack) - 1
	m.UI.Mode = m.UI.ViewStack[n]
	m.UI.ViewStack = m.UI.ViewStack[:n]
	return true
}

// enterCheck opens the check view for the check under the cursor.
func (m *Model) enterCheck() tea.Cmd {
	check, ok := m.selectedCheck()
	if !ok {
		return nil
	}
	m.Check = CheckState{Check: check}
	m.pushView(viewCheck)
	return m.startCheckLoad()
}

// enterTrace opens the trace view for the run under the cursor, rendering
// the spans the runs reduction already fetched.
func (m *Model) enterTrace() {
	run, ok := m.selectedRun()
	if !ok {
		return
	}
	m.traceGens.Next()
	m.Trace = TraceState{TraceID: run.TraceID, Result: run.Spans}
	m.pushView(viewTrace)
	m.refreshTraceViewport()
	m.Components.Viewport.GotoTop()
}

func (m *Model) refreshTraceViewport() {
	if m.Trace.TraceID == "" {
		return
	}
	m.Components.Viewport.SetContent(renderTraceTree(m.Trace.Result, m.Components.Viewport.Width))
}

// currentQuery returns the filter behind the current view as DQL text.
func (m Model) currentQuery() string {
	switch m.UI.Mode {
	case viewTrace:
		return spans.QueryText(m.traceFilter())
	case viewCheck:
		return spans.QueryText(m.Check.Filter)
	default:
		if check, ok := m.selectedCheck(); ok {
			return spans.QueryText(check.SpanFilter(m.Lookback, m.now()))
		}
		return ""
	}
}

func (m *Model) copyQuery() {
	query := m.currentQuery()
	if query == "" {
		m.setStatus("Nothing to copy")
		return
	}
	if err := m.copyText(query); err != nil {
		m.setStatus("Clipboard error: " + err.Error())
		return
	}
	m.setStatus("Query copied to clipboard")
}

// unauthorizedHint is shown next to 401/403 errors.
func unauthorizedHint(err error) string {
	if jsonapi.IsUnauthorized(err) {
		return " (session expired? update auth.cookie or auth.token and press r)"
	}
	return ""
}
