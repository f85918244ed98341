// Copyright 2026 Elasticsearch B.V. and contributors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/elastic/checkscope/internal/config"
)

// shutdownTimeout bounds flushing of OTLP exporters on exit.
const shutdownTimeout = 5 * time.Second

var rootCmd = &cobra.Command{
	Use:   "checkscope",
	Short: "Inspect health checks and the telemetry they produce",
	Long: `checkscope lists health checks from the check-manager API and evaluates
their runs from the spans stored by the telemetry API.

Open the dashboard with 'checkscope ui', or use the subcommands to script
the same queries. Settings come from flags, CHECKSCOPE_* environment
variables and the active profile (see 'checkscope config').`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cmd)
		if err != nil {
			return err
		}
		var logOut io.Writer
		if cmd.Name() == "ui" {
			// Keep log lines off the alt screen; the OTLP core still sees them.
			logOut = io.Discard
		}
		rt, err := newRuntime(cmd.Context(), cfg, logOut)
		if err != nil {
			return err
		}
		ctx := config.WithContext(cmd.Context(), cfg)
		cmd.SetContext(withRuntime(ctx, rt))
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		rt, ok := runtimeFrom(cmd.Context())
		if !ok {
			return nil
		}
		ctx, cancel := context.WithTimeout(context.WithoutCancel(cmd.Context()), shutdownTimeout)
		defer cancel()
		return rt.Close(ctx)
	},
}

func init() {
	// Global flags (Viper precedence: flags > env > profile > defaults)
	pf := rootCmd.PersistentFlags()
	pf.String("profile", "", "Profile to use instead of current-profile (env: CHECKSCOPE_PROFILE)")
	pf.String("check-manager-url", config.DefaultCheckManagerURL, "check-manager API base URL (env: CHECKSCOPE_CHECK_MANAGER_URL)")
	pf.String("telemetry-url", config.DefaultTelemetryURL, "Telemetry API base URL including the version (env: CHECKSCOPE_TELEMETRY_URL)")
	pf.Duration("timeout", config.DefaultTimeout, "Per-request timeout for both APIs (env: CHECKSCOPE_CHECK_MANAGER_TIMEOUT)")
	pf.String("lookback", config.DefaultLookback, "Telemetry window: 1d, 1w or 1mo (env: CHECKSCOPE_TELEMETRY_LOOKBACK)")
	pf.String("cookie", "", "Session cookie sent as the Cookie header (env: CHECKSCOPE_AUTH_COOKIE)")
	pf.String("token", "", "Bearer token (env: CHECKSCOPE_AUTH_TOKEN)")
	pf.String("otlp", config.DefaultOTLPEndpoint, "OTLP HTTP endpoint for checkscope's own traces and logs (env: CHECKSCOPE_OTLP_ENDPOINT)")
	pf.Bool("otlp-enabled", false, "Export checkscope's own traces and logs over OTLP (env: CHECKSCOPE_OTLP_ENABLED)")
	pf.Bool("otlp-insecure", true, "Use plain HTTP for OTLP export (env: CHECKSCOPE_OTLP_INSECURE)")
	pf.String("log-level", config.DefaultLogLevel, "Log level: debug, info, warn, error (env: CHECKSCOPE_LOG_LEVEL)")
	pf.String("log-format", config.DefaultLogFormat, "Log format: console or json (env: CHECKSCOPE_LOG_FORMAT)")
}

// mustRuntime returns the runtime built by the root pre-run hook.
func mustRuntime(cmd *cobra.Command) (*runtime, error) {
	rt, ok := runtimeFrom(cmd.Context())
	if !ok {
		return nil, fmt.Errorf("configuration not loaded")
	}
	return rt, nil
}
