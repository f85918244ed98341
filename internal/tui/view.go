// Copyright 2026 Elasticsearch B.V. and contributors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/elastic/checkscope/internal/spans"
)

// statusTTL is how long a status message stays in the status bar.
const statusTTL = 5 * time.Second

// View renders the current view.
func (m Model) View() string {
	var body string
	switch m.UI.Mode {
	case viewCheck:
		body = m.renderCheckView()
	case viewTrace:
		body = m.renderTraceView()
	case viewConfirm:
		body = m.renderConfirm()
	default:
		body = m.renderChecksList()
	}

	parts := []string{m.renderHeader(), body}
	if m.UI.Err != nil {
		parts = append(parts, truncateLine(ErrorStyle.Render("Error: "+m.UI.Err.Error()+unauthorizedHint(m.UI.Err)), m.UI.Width-2))
	}
	parts = append(parts, m.renderStatusBar(), m.renderHelpBar())
	return AppStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// renderHeader renders the title line with the active lookback on the right.
func (m Model) renderHeader() string {
	title := TitleStyle.Render("checkscope")
	switch m.UI.Mode {
	case viewCheck, viewConfirm:
		if m.Check.Check.ID != "" {
			title += DetailMutedStyle.Render(" › ") + TitleStyle.Render(m.Check.Check.Name())
		}
	case viewTrace:
		title += DetailMutedStyle.Render(" › "+m.Check.Check.Name()+" › ") + TitleStyle.Render("trace "+m.Trace.TraceID)
	}
	right := DetailMutedStyle.Render("[ Lookback: " + m.Lookback.Label() + " ]")

	gap := m.UI.Width - 2 - lipgloss.Width(title) - lipgloss.Width(right)
	if gap < 1 {
		return truncateLine(title, m.UI.Width-2)
	}
	return title + strings.Repeat(" ", gap) + right
}

// contentHeight returns the number of rows left for a view's body.
func (m Model) contentHeight(reserved int) int {
	const chrome = 5 // header, status bar, help bar, padding
	return max(m.UI.Height-chrome-reserved, 3)
}

// calcVisibleRange returns the slice of a list to draw so that the cursor
// stays roughly centered.
func calcVisibleRange(cursor, listLen, height int) (startIdx, endIdx int) {
	startIdx = max(cursor-height/2, 0)
	endIdx = startIdx + height
	if endIdx > listLen {
		endIdx = listLen
		startIdx = max(endIdx-height, 0)
	}
	return startIdx, endIdx
}

func (m Model) renderChecksList() string {
	if len(m.List.Checks) == 0 {
		if m.List.Loading {
			return m.Components.Spinner.View() + LoadingStyle.Render(" Loading checks...")
		}
		return DetailMutedStyle.Render("No checks defined.")
	}

	width := m.UI.Width - 2
	nameW := max(width*35/100, 12)
	templateW := max(width*25/100, 10)
	scheduleW := 16
	idW := max(width-nameW-templateW-scheduleW-3, 8)

	header := padOrTruncate("NAME", nameW) + " " +
		padOrTruncate("TEMPLATE", templateW) + " " +
		padOrTruncate("SCHEDULE", scheduleW) + " " +
		padOrTruncate("ID", idW)

	var b strings.Builder
	b.WriteString(HeaderRowStyle.Render(header))
	b.WriteString("\n")

	start, end := calcVisibleRange(m.List.Cursor, len(m.List.Checks), m.contentHeight(2))
	for i := start; i < end; i++ {
		c := m.List.Checks[i]
		row := padOrTruncate(c.Name(), nameW) + " " +
			padOrTruncate(m.templateLabel(c), templateW) + " " +
			padOrTruncate(c.Attributes.Schedule, scheduleW) + " " +
			padOrTruncate(c.ID, idW)
		if i == m.List.Cursor {
			b.WriteString(SelectedRowStyle.Render(row))
		} else {
			b.WriteString(RowStyle.Render(row))
		}
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// renderSummaryPanel renders the aggregate numbers of the check.
func (m Model) renderSummaryPanel() string {
	s := m.Check.Summary
	field := func(k, v string) string {
		return DetailKeyStyle.Render(k+": ") + DetailValueStyle.Render(v)
	}
	line := strings.Join([]string{
		field("Runs", strconv.Itoa(s.TraceCount)),
		DetailKeyStyle.Render("Passed: ") + PassStyle.Render(strconv.Itoa(s.PassedTraceCount())),
		DetailKeyStyle.Render("Failed: ") + FailStyle.Render(strconv.Itoa(s.FailedTraceCount)),
		field("Avg duration", spans.FormatAverageDuration(s)),
		field("Test cases", strconv.Itoa(s.TotalTestCount)),
	}, "   ")

	if m.Check.SummaryLoading {
		pages := ""
		if m.Check.SummaryPages > 0 {
			pages = fmt.Sprintf(" (%d pages)", m.Check.SummaryPages)
		}
		line += "   " + m.Components.Spinner.View() + LoadingStyle.Render(" loading"+pages)
	}
	return PanelStyle.Width(max(m.UI.Width-4, 20)).Render(line)
}

func (m Model) renderCheckView() string {
	var b strings.Builder
	b.WriteString(m.renderSummaryPanel())
	b.WriteString("\n")
	query := spans.QueryText(m.Check.Filter)
	b.WriteString(truncateLine(DetailMutedStyle.Render("Query: ")+QueryStyle.Render(query), m.UI.Width-2))
	b.WriteString("\n\n")
	b.WriteString(m.renderRunsTable())
	return b.String()
}

func (m Model) renderRunsTable() string {
	report := m.Check.Report
	if len(report.Runs) == 0 {
		if m.Check.RunsLoading {
			return m.Components.Spinner.View() + LoadingStyle.Render(" Loading runs...")
		}
		return DetailMutedStyle.Render("No runs in the last " + m.Lookback.Label() + ".")
	}

	width := m.UI.Width - 2
	const statusW, startW, durW, spansW, traceW = 6, 19, 10, 6, 32
	errW := max(width-statusW-startW-durW-spansW-traceW-5, 10)

	header := padOrTruncate("STATUS", statusW) + " " +
		padOrTruncate("STARTED", startW) + " " +
		padOrTruncate("DURATION", durW) + " " +
		padOrTruncate("SPANS", spansW) + " " +
		padOrTruncate("TRACE ID", traceW) + " " +
		padOrTruncate("ERRORS", errW)

	var b strings.Builder
	b.WriteString(HeaderRowStyle.Render(header))
	b.WriteString("\n")

	start, end := calcVisibleRange(m.Check.Cursor, len(report.Runs), m.contentHeight(8))
	for i := start; i < end; i++ {
		run := report.Runs[i]
		status := "PASS"
		if !run.Outcome.Passed {
			status = "FAIL"
		}
		started := "-"
		if ts, ok := run.Start(); ok {
			started = formatFullTime(ts)
		}
		rest := " " + padOrTruncate(started, startW) + " " +
			padOrTruncate(formatSeconds(run.DurationSeconds()), durW) + " " +
			padOrTruncate(strconv.Itoa(run.Spans.SpanCount()), spansW) + " " +
			padOrTruncate(run.TraceID, traceW) + " " +
			padOrTruncate(strings.Join(run.Outcome.ErrorMessages, "; "), errW)
		if i == m.Check.Cursor {
			b.WriteString(SelectedRowStyle.Render(padOrTruncate(status, statusW) + rest))
		} else {
			b.WriteString(outcomeStyle(run.Outcome.Passed).Render(padOrTruncate(status, statusW)) + RowStyle.Render(rest))
		}
		b.WriteString("\n")
	}

	b.WriteString(PassStyle.Render(fmt.Sprintf("PASS %d", report.Passed)))
	b.WriteString(DetailMutedStyle.Render(" / "))
	b.WriteString(FailStyle.Render(fmt.Sprintf("FAIL %d", report.Failed)))
	if m.Check.RunsLoading {
		b.WriteString("  " + m.Components.Spinner.View() + LoadingStyle.Render(fmt.Sprintf(" loading (%d pages)", m.Check.RunsPages)))
	}
	return b.String()
}

func (m Model) renderTraceView() string {
	var b strings.Builder
	info := fmt.Sprintf("%d spans", m.Trace.Result.SpanCount())
	if m.Trace.Loading {
		info += "  " + m.Components.Spinner.View() + LoadingStyle.Render(" reloading")
	}
	b.WriteString(DetailMutedStyle.Render(info))
	b.WriteString("\n")
	b.WriteString(m.Components.Viewport.View())
	return b.String()
}

func (m Model) renderConfirm() string {
	action := m.UI.Confirm
	if action == nil {
		return ""
	}
	text := fmt.Sprintf("%s check %q?\n\n", strings.ToUpper(action.Kind.String()[:1])+action.Kind.String()[1:], action.Name) +
		DetailMutedStyle.Render(action.CheckID) + "\n\n" +
		HelpKeyStyle.Render("y") + HelpDescStyle.Render(" confirm  ") +
		HelpKeyStyle.Render("n") + HelpDescStyle.Render(" cancel")
	return lipgloss.Place(m.UI.Width-2, m.contentHeight(0), lipgloss.Center, lipgloss.Center, ConfirmStyle.Render(text))
}

// renderStatusBar renders counts, refresh time and the latest status message.
func (m Model) renderStatusBar() string {
	var parts []string
	parts = append(parts, StatusKeyStyle.Render("Checks: ")+StatusValueStyle.Render(strconv.Itoa(len(m.List.Checks))))
	if !m.List.LastRefresh.IsZero() {
		parts = append(parts, StatusKeyStyle.Render("Refreshed: ")+StatusValueStyle.Render(formatClockTime(m.List.LastRefresh)))
	}
	if m.UI.Mode == viewCheck {
		parts = append(parts, StatusKeyStyle.Render("Runs: ")+StatusValueStyle.Render(strconv.Itoa(len(m.Check.Report.Runs))))
	}
	if m.loading() {
		parts = append(parts, LoadingStyle.Render("loading..."))
	}
	if m.UI.StatusMessage != "" && m.now().Sub(m.UI.StatusTime) < statusTTL {
		parts = append(parts, StatusValueStyle.Render(m.UI.StatusMessage))
	}
	return StatusBarStyle.Width(max(m.UI.Width-2, 10)).Render(truncateLine(strings.Join(parts, "  │  "), m.UI.Width-4))
}

// renderHelpBar renders the keys available in the current view.
func (m Model) renderHelpBar() string {
	var keys [][2]string
	switch m.UI.Mode {
	case viewCheck:
		keys = [][2]string{
			{"j/k", "scroll"}, {"enter", "trace"}, {"t", "lookback"}, {"r", "reload"},
			{"y", "copy query"}, {"x", "run now"}, {"d", "remove"}, {"esc", "back"}, {"q", "quit"},
		}
	case viewTrace:
		keys = [][2]string{
			{"j/k", "scroll"}, {"r", "reload"}, {"y", "copy query"}, {"esc", "back"}, {"q", "quit"},
		}
	case viewConfirm:
		keys = [][2]string{{"y", "confirm"}, {"n", "cancel"}}
	default:
		keys = [][2]string{
			{"j/k", "scroll"}, {"enter", "open"}, {"t", "lookback"}, {"r", "reload"},
			{"y", "copy query"}, {"x", "run now"}, {"d", "remove"}, {"q", "quit"},
		}
	}

	rendered := make([]string, 0, len(keys))
	for _, k := range keys {
		rendered = append(rendered, HelpKeyStyle.Render(k[0])+HelpDescStyle.Render(" "+k[1]))
	}
	return HelpStyle.Render(truncateLine(strings.Join(rendered, "  "), m.UI.Width-4))
}
