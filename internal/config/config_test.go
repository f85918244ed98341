// Copyright 2026 Elasticsearch B.V. and contributors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"testing"
	"time"

	"github.com/spf13/cobra"
)

func newTestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use: "test",
		RunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
	}
	// Root-level flags
	cmd.PersistentFlags().String("profile", "", "")
	cmd.PersistentFlags().String("check-manager-url", "", "")
	cmd.PersistentFlags().String("telemetry-url", "", "")
	cmd.PersistentFlags().Duration("timeout", 0, "")
	cmd.PersistentFlags().String("cookie", "", "")
	cmd.PersistentFlags().String("token", "", "")
	cmd.PersistentFlags().String("log-level", "", "")

	// Command-local flags
	cmd.Flags().String("lookback", "", "")
	cmd.Flags().String("output", "", "")
	cmd.Flags().Duration("reload-interval", 0, "")

	return cmd
}

// isolate points the profiles file at an empty temp dir and clears env overrides.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, k := range []string{
		"CHECKSCOPE_PROFILE",
		"CHECKSCOPE_CHECK_MANAGER_URL",
		"CHECKSCOPE_TELEMETRY_URL",
		"CHECKSCOPE_TELEMETRY_LOOKBACK",
		"CHECKSCOPE_AUTH_TOKEN",
		"CHECKSCOPE_LOG_LEVEL",
		"CHECKSCOPE_TUI_REQUEST_TIMEOUT",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(newTestCmd())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.CheckManager.URL != DefaultCheckManagerURL {
		t.Errorf("CheckManager.URL = %q, want %q", cfg.CheckManager.URL, DefaultCheckManagerURL)
	}
	if cfg.Telemetry.URL != DefaultTelemetryURL {
		t.Errorf("Telemetry.URL = %q, want %q", cfg.Telemetry.URL, DefaultTelemetryURL)
	}
	if cfg.Telemetry.Lookback != DefaultLookback {
		t.Errorf("Telemetry.Lookback = %q, want %q", cfg.Telemetry.Lookback, DefaultLookback)
	}
	if cfg.TUI.RequestTimeout != DefaultRequestTimeout {
		t.Errorf("TUI.RequestTimeout = %v, want %v", cfg.TUI.RequestTimeout, DefaultRequestTimeout)
	}
	if cfg.Profile != "" {
		t.Errorf("Profile = %q, want empty", cfg.Profile)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("CHECKSCOPE_CHECK_MANAGER_URL", "http://cm:9000")
	t.Setenv("CHECKSCOPE_TELEMETRY_URL", "https://tel.example.com/v2")
	t.Setenv("CHECKSCOPE_TELEMETRY_LOOKBACK", "1mo")
	t.Setenv("CHECKSCOPE_AUTH_TOKEN", "tok")
	t.Setenv("CHECKSCOPE_LOG_LEVEL", "debug")
	t.Setenv("CHECKSCOPE_TUI_REQUEST_TIMEOUT", "45s")

	cfg, err := Load(newTestCmd())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.CheckManager.URL != "http://cm:9000" {
		t.Errorf("CheckManager.URL = %q", cfg.CheckManager.URL)
	}
	if cfg.Telemetry.URL != "https://tel.example.com/v2" {
		t.Errorf("Telemetry.URL = %q", cfg.Telemetry.URL)
	}
	if cfg.Telemetry.Lookback != "1mo" {
		t.Errorf("Telemetry.Lookback = %q, want 1mo", cfg.Telemetry.Lookback)
	}
	if cfg.Auth.Token != "tok" {
		t.Errorf("Auth.Token = %q, want tok", cfg.Auth.Token)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	if cfg.TUI.RequestTimeout != 45*time.Second {
		t.Errorf("TUI.RequestTimeout = %v, want 45s", cfg.TUI.RequestTimeout)
	}
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	isolate(t)
	t.Setenv("CHECKSCOPE_CHECK_MANAGER_URL", "http://env:8000")

	cmd := newTestCmd()
	_ = cmd.PersistentFlags().Set("check-manager-url", "http://flag:8000")
	_ = cmd.PersistentFlags().Set("timeout", "5s")

	cfg, err := Load(cmd)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.CheckManager.URL != "http://flag:8000" {
		t.Errorf("CheckManager.URL = %q, want flag value", cfg.CheckManager.URL)
	}
	if cfg.CheckManager.Timeout != 5*time.Second || cfg.Telemetry.Timeout != 5*time.Second {
		t.Errorf("timeouts = %v/%v, want 5s for both", cfg.CheckManager.Timeout, cfg.Telemetry.Timeout)
	}
}

func TestLoad_ProfileBetweenEnvAndDefaults(t *testing.T) {
	isolate(t)
	t.Setenv("PROFILE_TOKEN", "from-env-ref")
	if err := SaveProfiles(&ProfileConfig{
		CurrentProfile: "staging",
		Profiles: map[string]Profile{
			"staging": {
				CheckManager: CheckManagerProfile{URL: "http://staging:8000"},
				Telemetry:    TelemetryProfile{URL: "http://staging:8080/v1", Lookback: "1d"},
				Auth:         AuthProfile{Token: "${PROFILE_TOKEN}"},
			},
			"prod": {
				CheckManager: CheckManagerProfile{URL: "https://prod:8000"},
			},
		},
	}); err != nil {
		t.Fatalf("SaveProfiles: %v", err)
	}
	t.Setenv("CHECKSCOPE_TELEMETRY_URL", "http://env:8080/v1")

	cfg, err := Load(newTestCmd())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Profile != "staging" {
		t.Errorf("Profile = %q, want staging", cfg.Profile)
	}
	if cfg.CheckManager.URL != "http://staging:8000" {
		t.Errorf("CheckManager.URL = %q, want profile value", cfg.CheckManager.URL)
	}
	if cfg.Telemetry.URL != "http://env:8080/v1" {
		t.Errorf("Telemetry.URL = %q, want env value", cfg.Telemetry.URL)
	}
	if cfg.Telemetry.Lookback != "1d" {
		t.Errorf("Telemetry.Lookback = %q, want 1d", cfg.Telemetry.Lookback)
	}
	if cfg.Auth.Token != "from-env-ref" {
		t.Errorf("Auth.Token = %q, want resolved env ref", cfg.Auth.Token)
	}

	cmd := newTestCmd()
	_ = cmd.PersistentFlags().Set("profile", "prod")
	cfg, err = Load(cmd)
	if err != nil {
		t.Fatalf("Load(prod) returned error: %v", err)
	}
	if cfg.CheckManager.URL != "https://prod:8000" {
		t.Errorf("CheckManager.URL = %q, want prod value", cfg.CheckManager.URL)
	}
}

func TestLoad_UnknownProfile(t *testing.T) {
	isolate(t)
	cmd := newTestCmd()
	_ = cmd.PersistentFlags().Set("profile", "missing")
	if _, err := Load(cmd); err == nil {
		t.Fatal("expected error for unknown profile")
	}
}

func TestLoad_InvalidEnv_FailsFast(t *testing.T) {
	isolate(t)
	t.Setenv("CHECKSCOPE_TUI_REQUEST_TIMEOUT", "abc")

	if _, err := Load(newTestCmd()); err == nil {
		t.Fatalf("expected error for invalid duration, got nil")
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			CheckManager: CheckManagerConfig{URL: DefaultCheckManagerURL, Timeout: time.Second},
			Telemetry:    TelemetryConfig{URL: DefaultTelemetryURL, Timeout: time.Second, Lookback: "1w"},
			Log:          LogConfig{Level: "info", Format: "json"},
			TUI:          TUIConfig{RequestTimeout: time.Minute},
		}
	}
	if err := valid().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	tests := map[string]func(*Config){
		"empty check manager url": func(c *Config) { c.CheckManager.URL = "" },
		"non-http telemetry url":  func(c *Config) { c.Telemetry.URL = "ftp://host/v1" },
		"zero timeout":            func(c *Config) { c.CheckManager.Timeout = 0 },
		"bad lookback":            func(c *Config) { c.Telemetry.Lookback = "3d" },
		"otlp without endpoint":   func(c *Config) { c.OTLP.Enabled = true },
		"bad log level":           func(c *Config) { c.Log.Level = "loud" },
		"bad log format":          func(c *Config) { c.Log.Format = "xml" },
		"negative reload":         func(c *Config) { c.TUI.ReloadInterval = -time.Second },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := valid()
			mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLookbackPreset(t *testing.T) {
	if got := (TelemetryConfig{Lookback: "1d"}).LookbackPreset().String(); got != "1d" {
		t.Errorf("LookbackPreset() = %q, want 1d", got)
	}
}
