// Copyright 2026 Elasticsearch B.V. and contributors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/elastic/checkscope/internal/checks"
	"github.com/elastic/checkscope/internal/spans"
)

// View modes
type viewMode int

const (
	viewChecks viewMode = iota
	viewCheck
	viewTrace
	viewConfirm
)

func (v viewMode) String() string {
	switch v {
	case viewCheck:
		return "check"
	case viewTrace:
		return "trace"
	case viewConfirm:
		return "confirm"
	default:
		return "checks"
	}
}

// CheckSource is the subset of the check-manager client the TUI uses.
type CheckSource interface {
	ListChecks(ctx context.Context, ids ...string) ([]checks.Check, error)
	ListTemplates(ctx context.Context, ids ...string) ([]checks.Template, error)
	RunCheck(ctx context.Context, id string) error
	RemoveCheck(ctx context.Context, id string) error
}

// ReloadFunc rebuilds both clients, typically after the profiles file changed.
type ReloadFunc func() (CheckSource, spans.PageFetcher, error)

// Messages

type checksMsg struct {
	checks    []checks.Check
	templates []checks.Template
	err       error
}

type summaryMsg struct {
	gen     uint64
	summary spans.SpansSummary
	state   spans.FetchState
	err     error
}

type runsMsg struct {
	gen    uint64
	result spans.SpanResult
	state  spans.FetchState
	err    error
}

type traceMsg struct {
	gen    uint64
	result spans.SpanResult
	err    error
}

type actionDoneMsg struct {
	action pendingAction
	err    error
}

type profilesChangedMsg struct {
	path string
}

type watchErrorMsg struct {
	err error
}

type clientsReloadedMsg struct {
	checks  CheckSource
	fetcher spans.PageFetcher
	err     error
}

type reloadTickMsg struct{}

// streamMsg carries one message from a background reduction along with the
// channel to keep draining.
type streamMsg struct {
	ch  <-chan tea.Msg
	msg tea.Msg
}

// waitForStream returns a command that yields the next message of ch, or
// nil once ch is closed.
func waitForStream(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return streamMsg{ch: ch, msg: msg}
	}
}
