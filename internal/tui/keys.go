// Copyright 2026 Elasticsearch B.V. and contributors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// listNav handles standard list navigation, returning the new cursor position.
// Returns -1 if the key is not a navigation key.
func listNav(cursor, listLen int, key string) int {
	switch key {
	case "up", "k":
		if cursor > 0 {
			return cursor - 1
		}
		return cursor
	case "down", "j":
		if cursor < listLen-1 {
			return cursor + 1
		}
		return cursor
	case "home", "g":
		return 0
	case "end", "G":
		if listLen > 0 {
			return listLen - 1
		}
		return 0
	case "pgup":
		return max(cursor-10, 0)
	case "pgdown":
		if listLen == 0 {
			return 0
		}
		return min(cursor+10, listLen-1)
	}
	return -1
}

// viewportScroll handles standard viewport scrolling keys.
// Returns true if the key was handled.
func viewportScroll(vp *viewport.Model, key string) bool {
	switch key {
	case "j", "down":
		vp.ScrollDown(1)
	case "k", "up":
		vp.ScrollUp(1)
	case "pgdown", " ":
		vp.HalfPageDown()
	case "pgup":
		vp.HalfPageUp()
	case "g", "home":
		vp.GotoTop()
	case "G", "end":
		vp.GotoBottom()
	default:
		return false
	}
	return true
}

// handleKey dispatches a key press to the handler of the current view.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.UI.Mode {
	case viewConfirm:
		return m.handleConfirmKey(key)
	case viewTrace:
		return m.handleTraceKey(key)
	case viewCheck:
		return m.handleCheckKey(key)
	default:
		return m.handleListKey(key)
	}
}

func (m Model) handleListKey(key string) (tea.Model, tea.Cmd) {
	if c := listNav(m.List.Cursor, len(m.List.Checks), key); c >= 0 {
		m.List.Cursor = c
		return m, nil
	}

	switch key {
	case "q", "esc":
		return m, tea.Quit
	case "enter":
		return m, m.enterCheck()
	case "r":
		return m, m.reloadCurrentView()
	case "t":
		m.Lookback = m.Lookback.Next()
		m.setStatus("Lookback: " + m.Lookback.Label())
	case "y":
		m.copyQuery()
	case "x":
		if check, ok := m.selectedCheck(); ok {
			return m, m.doAction(pendingAction{Kind: actionRun, CheckID: check.ID, Name: check.Name()})
		}
	case "d":
		if check, ok := m.selectedCheck(); ok {
			m.confirm(pendingAction{Kind: actionRemove, CheckID: check.ID, Name: check.Name()})
		}
	}
	return m, nil
}

func (m Model) handleCheckKey(key string) (tea.Model, tea.Cmd) {
	if c := listNav(m.Check.Cursor, len(m.Check.Report.Runs), key); c >= 0 {
		m.Check.Cursor = c
		return m, nil
	}

	check := m.Check.Check
	switch key {
	case "q":
		return m, tea.Quit
	case "esc", "backspace":
		m.gens.Next() // drop in-flight emissions
		m.popView()
	case "enter":
		m.enterTrace()
	case "r":
		return m, m.reloadCurrentView()
	case "t":
		m.Lookback = m.Lookback.Next()
		m.setStatus("Lookback: " + m.Lookback.Label())
		return m, m.startCheckLoad()
	case "y":
		m.copyQuery()
	case "x":
		return m, m.doAction(pendingAction{Kind: actionRun, CheckID: check.ID, Name: check.Name()})
	case "d":
		m.confirm(pendingAction{Kind: actionRemove, CheckID: check.ID, Name: check.Name()})
	}
	return m, nil
}

func (m Model) handleTraceKey(key string) (tea.Model, tea.Cmd) {
	if viewportScroll(&m.Components.Viewport, key) {
		return m, nil
	}

	switch key {
	case "q":
		return m, tea.Quit
	case "esc", "backspace":
		m.traceGens.Next()
		m.Trace = TraceState{}
		m.popView()
	case "r":
		return m, m.reloadCurrentView()
	case "y":
		m.copyQuery()
	}
	return m, nil
}

func (m Model) handleConfirmKey(key string) (tea.Model, tea.Cmd) {
	action := m.UI.Confirm
	switch key {
	case "y", "Y", "enter":
		m.UI.Confirm = nil
		m.popView()
		if action == nil {
			return m, nil
		}
		m.setStatus(fmt.Sprintf("Requesting %s of %s...", action.Kind, action.Name))
		return m, m.doAction(*action)
	case "n", "N", "esc", "q":
		m.UI.Confirm = nil
		m.popView()
		m.setStatus("Cancelled")
	}
	return m, nil
}

// confirm asks for confirmation before running action.
func (m *Model) confirm(action pendingAction) {
	m.UI.Confirm = &action
	m.pushView(viewConfirm)
}
