// Copyright 2026 Elasticsearch B.V. and contributors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"
	osSignal "os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/elastic/checkscope/internal/config"
	"github.com/elastic/checkscope/internal/spans"
	"github.com/elastic/checkscope/internal/tui"
)

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Open the interactive dashboard",
	Long: `Opens the terminal dashboard: the checks list, a per-check summary with its
runs, and the span tree of a selected run.

Summaries and runs stream in page by page. Press 't' to cycle the lookback
(1d, 1w, 1mo). When the profiles file changes the dashboard reconnects with
the new settings.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := mustRuntime(cmd)
		if err != nil {
			return err
		}
		return runTUI(cmd, rt)
	},
}

func init() {
	uiCmd.Flags().Duration("request-timeout", config.DefaultRequestTimeout, "Bound on one summary or runs load (env: CHECKSCOPE_TUI_REQUEST_TIMEOUT)")
	uiCmd.Flags().Duration("reload-interval", config.DefaultReloadInterval, "Reload the current view periodically, 0 disables (env: CHECKSCOPE_TUI_RELOAD_INTERVAL)")
	uiCmd.Flags().Bool("watch-profiles", config.DefaultWatchProfilesFile, "Reconnect when the profiles file changes (env: CHECKSCOPE_TUI_WATCH_PROFILES)")
	rootCmd.AddCommand(uiCmd)
}

func runTUI(cmd *cobra.Command, rt *runtime) error {
	notifyCtx, stop := osSignal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source, err := rt.checksClient(rt.cfg)
	if err != nil {
		return err
	}
	fetcher, err := rt.telemetryClient(rt.cfg)
	if err != nil {
		return err
	}

	var profilesPath string
	if rt.cfg.TUI.WatchProfiles {
		if profilesPath, err = config.GetConfigPath(); err != nil {
			rt.logger.Warn("profiles file not watched", zap.Error(err))
		}
	}

	reload := func() (tui.CheckSource, spans.PageFetcher, error) {
		cfg, err := config.Load(cmd)
		if err != nil {
			return nil, nil, err
		}
		source, err := rt.checksClient(cfg)
		if err != nil {
			return nil, nil, err
		}
		fetcher, err := rt.telemetryClient(cfg)
		if err != nil {
			return nil, nil, err
		}
		rt.logger.Info("clients reloaded",
			zap.String("profile", cfg.Profile),
			zap.String("check_manager_url", cfg.CheckManager.URL),
			zap.String("telemetry_url", cfg.Telemetry.URL),
		)
		return source, fetcher, nil
	}

	return tui.Run(notifyCtx, tui.Options{
		Checks:       source,
		Fetcher:      fetcher,
		Cache:        rt.cache,
		Lookback:     rt.cfg.Telemetry.LookbackPreset(),
		Config:       rt.cfg.TUI,
		ProfilesPath: profilesPath,
		Reload:       reload,
		Logger:       rt.logger,
	})
}
