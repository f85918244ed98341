// Copyright 2026 Elasticsearch B.V. and contributors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/elastic/checkscope/internal/checks"
	"github.com/elastic/checkscope/internal/spans"
)

// UIState holds general UI state shared across views.
type UIState struct {
	Mode          viewMode   // Current view mode
	ViewStack     []viewMode // Navigation history for back navigation
	Err           error      // Last error, cleared by the next successful load
	Width         int        // Terminal width
	Height        int        // Terminal height
	StatusMessage string     // Temporary status message
	StatusTime    time.Time  // When status was set
	Confirm       *pendingAction
}

// ListState holds the checks list.
type ListState struct {
	Checks      []checks.Check
	Templates   map[string]checks.Template // By template id, for labels
	Cursor      int
	Loading     bool
	LastRefresh time.Time
}

// CheckState holds the selected check and its two reductions.
type CheckState struct {
	Check  checks.Check
	Filter spans.Filter
	Gen    uint64 // Generation both reductions were started under

	Summary        spans.SpansSummary
	SummaryState   spans.FetchState
	SummaryLoading bool
	SummaryPages   int

	Groups      spans.TraceGroups
	Report      spans.RunsReport
	RunsLoading bool
	RunsPages   int

	Cursor int
}

// Loading reports whether either reduction is still running.
func (c CheckState) Loading() bool {
	return c.SummaryLoading || c.RunsLoading
}

// TraceState holds the trace detail view.
type TraceState struct {
	TraceID string
	Result  spans.SpanResult
	Gen     uint64
	Loading bool
}

// UIComponents holds UI component instances.
type UIComponents struct {
	Spinner  spinner.Model
	Viewport viewport.Model // Trace tree
}

// actionKind identifies a check mutation.
type actionKind int

const (
	actionRun actionKind = iota
	actionRemove
)

func (a actionKind) String() string {
	if a == actionRemove {
		return "remove"
	}
	return "run"
}

// pendingAction is a mutation waiting for confirmation.
type pendingAction struct {
	Kind    actionKind
	CheckID string
	Name    string
}
