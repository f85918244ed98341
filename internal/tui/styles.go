// Copyright 2026 Elasticsearch B.V. and contributors
// SPDX-License-Identifier: Apache-2.0

package tui

import "github.com/charmbracelet/lipgloss"

// Colors
var (
	primaryColor   = lipgloss.Color("#7D56F4")
	secondaryColor = lipgloss.Color("#5A5A5A")
	successColor   = lipgloss.Color("#04B575")
	warningColor   = lipgloss.Color("#FFCC00")
	errorColor     = lipgloss.Color("#FF5F56")
	infoColor      = lipgloss.Color("#61AFEF")
	fgColor        = lipgloss.Color("#E0E0E0")
	mutedColor     = lipgloss.Color("#6C757D")
)

// Styles
var (
	AppStyle = lipgloss.NewStyle().
			Padding(0, 1)

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(fgColor).
			Background(lipgloss.Color("#333333")).
			Padding(0, 1)

	StatusKeyStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	StatusValueStyle = lipgloss.NewStyle().
				Foreground(fgColor)

	// Column header row
	HeaderRowStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Bold(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(secondaryColor)

	RowStyle = lipgloss.NewStyle().
			Foreground(fgColor)

	SelectedRowStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("#4A4A7A")).
				Foreground(lipgloss.Color("#FFFFFF")).
				Bold(true)

	PassStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	FailStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	// Summary panel
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(secondaryColor).
			Padding(0, 1)

	DetailKeyStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	DetailValueStyle = lipgloss.NewStyle().
				Foreground(fgColor)

	DetailMutedStyle = lipgloss.NewStyle().
				Foreground(mutedColor)

	QueryStyle = lipgloss.NewStyle().
			Foreground(infoColor)

	ResourceStyle = lipgloss.NewStyle().
			Foreground(infoColor).
			Bold(true)

	ScopeStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	// Confirmation prompt
	ConfirmStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(warningColor).
			Padding(0, 2)

	// Help bar
	HelpStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Padding(0, 1)

	HelpKeyStyle = lipgloss.NewStyle().
			Foreground(primaryColor)

	HelpDescStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	LoadingStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true)
)

// outcomeStyle returns the style for a PASS/FAIL cell.
func outcomeStyle(passed bool) lipgloss.Style {
	if passed {
		return PassStyle
	}
	return FailStyle
}
