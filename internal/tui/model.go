// Copyright 2026 Elasticsearch B.V. and contributors
// SPDX-License-Identifier: Apache-2.0

// Package tui implements the checkscope terminal dashboard.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"golang.design/x/clipboard"

	"github.com/elastic/checkscope/internal/checks"
	"github.com/elastic/checkscope/internal/config"
	"github.com/elastic/checkscope/internal/spans"
)

// Model is the main TUI model.
//
// State is organized into embedded structs:
//   - UI: mode, view stack, dimensions, status and errors
//   - List: checks list and template labels
//   - Check: the selected check, its summary and its runs
//   - Trace: the trace detail view
//   - Components: spinner and viewport
type Model struct {
	ctx          context.Context
	checks       CheckSource
	fetcher      spans.PageFetcher
	cache        *checks.Cache
	reload       ReloadFunc
	tuiConfig    config.TUIConfig
	profilesPath string
	logger       *zap.Logger
	gens         *spans.Generations // Check view reductions
	traceGens    *spans.Generations // Trace view reloads
	now          func() time.Time
	copyText     func(string) error

	Lookback spans.Lookback

	UI         UIState
	List       ListState
	Check      CheckState
	Trace      TraceState
	Components UIComponents
}

// Options configures NewModel.
type Options struct {
	Checks  CheckSource
	Fetcher spans.PageFetcher
	// Cache, when set, renders the last fetched checks before the first
	// request completes.
	Cache    *checks.Cache
	Lookback spans.Lookback
	Config   config.TUIConfig
	// ProfilesPath is watched when Config.WatchProfiles is set; Reload then
	// rebuilds both clients.
	ProfilesPath string
	Reload       ReloadFunc
	Logger       *zap.Logger
}

// NewModel creates a new TUI model.
func NewModel(ctx context.Context, opts Options) Model {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	tuiCfg := opts.Config
	if tuiCfg.RequestTimeout <= 0 {
		tuiCfg.RequestTimeout = config.DefaultRequestTimeout
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = LoadingStyle

	m := Model{
		ctx:          ctx,
		checks:       opts.Checks,
		fetcher:      opts.Fetcher,
		cache:        opts.Cache,
		reload:       opts.Reload,
		tuiConfig:    tuiCfg,
		profilesPath: opts.ProfilesPath,
		logger:       logger.Named("tui"),
		gens:         &spans.Generations{},
		traceGens:    &spans.Generations{},
		now:          time.Now,
		copyText:     writeClipboard,
		Lookback:     opts.Lookback,
		UI: UIState{
			Mode:   viewChecks,
			Width:  80,
			Height: 24,
		},
		List: ListState{
			Templates: map[string]checks.Template{},
			Loading:   true,
		},
		Components: UIComponents{
			Spinner:  sp,
			Viewport: viewport.New(80, 20),
		},
	}

	if opts.Cache != nil {
		if list, ok := opts.Cache.Checks(); ok {
			m.List.Checks = list
		}
		if templates, ok := opts.Cache.Templates(); ok {
			m.setTemplates(templates)
		}
	}
	return m
}

// Run starts the program and blocks until the user quits.
func Run(ctx context.Context, opts Options) error {
	m := NewModel(ctx, opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

func writeClipboard(text string) error {
	if err := clipboard.Init(); err != nil {
		return err
	}
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}

func (m *Model) setTemplates(list []checks.Template) {
	m.List.Templates = make(map[string]checks.Template, len(list))
	for _, t := range list {
		m.List.Templates[t.ID] = t
	}
}

// templateLabel returns the label of a check's template, or "".
func (m Model) templateLabel(c checks.Check) string {
	id := c.Attributes.Metadata.TemplateID
	if id == "" {
		return ""
	}
	if t, ok := m.List.Templates[id]; ok {
		return t.Label()
	}
	return id
}

// selectedCheck returns the check under the list cursor.
func (m Model) selectedCheck() (checks.Check, bool) {
	if m.List.Cursor < 0 || m.List.Cursor >= len(m.List.Checks) {
		return checks.Check{}, false
	}
	return m.List.Checks[m.List.Cursor], true
}

// selectedRun returns the run under the check view cursor.
func (m Model) selectedRun() (spans.Run, bool) {
	runs := m.Check.Report.Runs
	if m.Check.Cursor < 0 || m.Check.Cursor >= len(runs) {
		return spans.Run{}, false
	}
	return runs[m.Check.Cursor], true
}

func (m *Model) setStatus(msg string) {
	m.UI.StatusMessage = msg
	m.UI.StatusTime = m.now()
}

// loading reports whether the current view is waiting on a request.
func (m Model) loading() bool {
	switch m.UI.Mode {
	case viewCheck:
		return m.Check.Loading()
	case viewTrace:
		return m.Trace.Loading
	default:
		return m.List.Loading
	}
}
