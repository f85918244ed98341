// Copyright 2026 Elasticsearch B.V. and contributors
// SPDX-License-Identifier: Apache-2.0

// Package config provides centralized configuration management for checkscope.
// It supports deterministic precedence (flags > env > profile > defaults) using
// Viper, and fail-fast validation to prevent silent misconfiguration.
package config

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/elastic/checkscope/internal/spans"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "CHECKSCOPE"

// Config holds all application configuration.
type Config struct {
	CheckManager CheckManagerConfig `mapstructure:"check_manager"`
	Telemetry    TelemetryConfig    `mapstructure:"telemetry"`
	Auth         AuthConfig         `mapstructure:"auth"`
	OTLP         OTLPConfig         `mapstructure:"otlp"`
	Log          LogConfig          `mapstructure:"log"`
	TUI          TUIConfig          `mapstructure:"tui"`
	Profile      string             `mapstructure:"profile"` // Active profile name, if any
}

// CheckManagerConfig holds check-manager API settings.
type CheckManagerConfig struct {
	URL     string        `mapstructure:"url"`     // Base URL of the check-manager API
	Timeout time.Duration `mapstructure:"timeout"` // Per-request timeout
}

// TelemetryConfig holds span-query API settings.
type TelemetryConfig struct {
	URL      string        `mapstructure:"url"`      // Base URL including the API version, e.g. /v1
	Timeout  time.Duration `mapstructure:"timeout"`  // Per-request timeout
	Lookback string        `mapstructure:"lookback"` // Default lookback preset (1d, 1w, 1mo)
}

// LookbackPreset returns the parsed lookback. Validate guarantees it parses.
func (t TelemetryConfig) LookbackPreset() spans.Lookback {
	l, err := spans.ParseLookback(t.Lookback)
	if err != nil {
		return spans.DefaultLookback
	}
	return l
}

// AuthConfig holds the credentials sent with every request.
type AuthConfig struct {
	Cookie string `mapstructure:"cookie"` // Raw Cookie header value
	Token  string `mapstructure:"token"`  // Bearer token
}

// OTLPConfig holds self-telemetry export settings.
type OTLPConfig struct {
	Enabled  bool   `mapstructure:"enabled"`  // Export own traces and logs
	Endpoint string `mapstructure:"endpoint"` // OTLP HTTP endpoint (host:port)
	Insecure bool   `mapstructure:"insecure"` // Use plain HTTP
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // console or json
}

// TUIConfig holds TUI timing and request settings.
type TUIConfig struct {
	RequestTimeout time.Duration `mapstructure:"request_timeout"` // Bound on one full reduction
	ReloadInterval time.Duration `mapstructure:"reload_interval"` // Auto reload, 0 disables
	WatchProfiles  bool          `mapstructure:"watch_profiles"`  // Reload endpoints when the profiles file changes
}

// Default configuration values.
const (
	DefaultCheckManagerURL   = "http://127.0.0.1:8000"
	DefaultTelemetryURL      = "http://127.0.0.1:8080/v1"
	DefaultTimeout           = 30 * time.Second
	DefaultLookback          = "1w"
	DefaultOTLPEndpoint      = "localhost:4318"
	DefaultLogLevel          = "warn"
	DefaultLogFormat         = "console"
	DefaultRequestTimeout    = 2 * time.Minute
	DefaultReloadInterval    = time.Duration(0)
	DefaultWatchProfilesFile = true
)

// ContextKey is used to store config in context.
type ContextKey struct{}

// FromContext retrieves Config from context.
func FromContext(ctx context.Context) (Config, bool) {
	cfg, ok := ctx.Value(ContextKey{}).(Config)
	return cfg, ok
}

// WithContext stores Config in context.
func WithContext(ctx context.Context, cfg Config) context.Context {
	return context.WithValue(ctx, ContextKey{}, cfg)
}

// Load builds a Config using Viper with precedence: flags > env > profile > defaults.
// It binds flags from the command (and its parents) and fails fast on invalid values.
func Load(cmd *cobra.Command) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	if err := bindFlagsRecursive(v, cmd); err != nil {
		return Config{}, fmt.Errorf("bind flags: %w", err)
	}
	if err := applyProfile(v); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// setDefaults registers default values with Viper.
func setDefaults(v *viper.Viper) {
	v.SetDefault("profile", "")

	v.SetDefault("check_manager.url", DefaultCheckManagerURL)
	v.SetDefault("check_manager.timeout", DefaultTimeout)

	v.SetDefault("telemetry.url", DefaultTelemetryURL)
	v.SetDefault("telemetry.timeout", DefaultTimeout)
	v.SetDefault("telemetry.lookback", DefaultLookback)

	v.SetDefault("auth.cookie", "")
	v.SetDefault("auth.token", "")

	v.SetDefault("otlp.enabled", false)
	v.SetDefault("otlp.endpoint", DefaultOTLPEndpoint)
	v.SetDefault("otlp.insecure", true)

	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)

	v.SetDefault("tui.request_timeout", DefaultRequestTimeout)
	v.SetDefault("tui.reload_interval", DefaultReloadInterval)
	v.SetDefault("tui.watch_profiles", DefaultWatchProfilesFile)
}

// applyProfile layers the active profile between env and defaults. Profile
// values replace defaults, so flags and env still win.
func applyProfile(v *viper.Viper) error {
	profiles, err := LoadProfiles()
	if err != nil {
		return err
	}
	p, name := profiles.GetActiveProfile(v.GetString("profile"))
	if p == nil {
		if flag := v.GetString("profile"); flag != "" {
			return fmt.Errorf("profile %q not found", flag)
		}
		return nil
	}
	resolved, err := p.Resolve()
	if err != nil {
		return fmt.Errorf("profile %q: %w", name, err)
	}
	v.SetDefault("profile", name)
	for key, value := range resolved.settings() {
		v.SetDefault(key, value)
	}
	return nil
}

// bindFlagsRecursive binds flags from cmd and all parents so Viper sees them.
func bindFlagsRecursive(v *viper.Viper, cmd *cobra.Command) error {
	if cmd == nil {
		return nil
	}
	if err := bindFlagSet(v, cmd.Flags()); err != nil {
		return err
	}
	if err := bindFlagSet(v, cmd.PersistentFlags()); err != nil {
		return err
	}
	return bindFlagsRecursive(v, cmd.Parent())
}

// flagToKey maps flag names to nested config keys.
var flagToKey = map[string]string{
	"profile":           "profile",
	"check-manager-url": "check_manager.url",
	"telemetry-url":     "telemetry.url",
	"timeout":           "check_manager.timeout",
	"lookback":          "telemetry.lookback",
	"cookie":            "auth.cookie",
	"token":             "auth.token",
	"otlp":              "otlp.endpoint",
	"otlp-enabled":      "otlp.enabled",
	"otlp-insecure":     "otlp.insecure",
	"log-level":         "log.level",
	"log-format":        "log.format",
	"request-timeout":   "tui.request_timeout",
	"reload-interval":   "tui.reload_interval",
	"watch-profiles":    "tui.watch_profiles",
}

// bindFlagSet binds flags to Viper keys using explicit mappings to nested keys.
// Only flags with a mapping are bound; command-local flags such as --output
// stay out of the config.
func bindFlagSet(v *viper.Viper, fs *pflag.FlagSet) error {
	if fs == nil {
		return nil
	}
	var bindErr error
	fs.VisitAll(func(f *pflag.Flag) {
		key, ok := flagToKey[f.Name]
		if !ok {
			return
		}
		if err := v.BindPFlag(key, f); err != nil && bindErr == nil {
			bindErr = fmt.Errorf("flag %s: %w", f.Name, err)
		}
	})
	if bindErr != nil {
		return bindErr
	}
	// --timeout applies to both upstream APIs.
	if f := fs.Lookup("timeout"); f != nil {
		if err := v.BindPFlag("telemetry.timeout", f); err != nil {
			return err
		}
	}
	return nil
}

// Validate enforces correctness and fails fast on invalid configuration.
func (c Config) Validate() error {
	if err := validateURL("check_manager.url", c.CheckManager.URL); err != nil {
		return err
	}
	if err := validateURL("telemetry.url", c.Telemetry.URL); err != nil {
		return err
	}
	if c.CheckManager.Timeout <= 0 {
		return fmt.Errorf("check_manager.timeout must be > 0")
	}
	if c.Telemetry.Timeout <= 0 {
		return fmt.Errorf("telemetry.timeout must be > 0")
	}
	if _, err := spans.ParseLookback(c.Telemetry.Lookback); err != nil {
		return fmt.Errorf("telemetry.lookback: %w", err)
	}
	if c.OTLP.Enabled && strings.TrimSpace(c.OTLP.Endpoint) == "" {
		return fmt.Errorf("otlp.endpoint is required when otlp.enabled is set")
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be console or json, got %q", c.Log.Format)
	}
	if c.TUI.RequestTimeout <= 0 {
		return fmt.Errorf("tui.request_timeout must be > 0")
	}
	if c.TUI.ReloadInterval < 0 {
		return fmt.Errorf("tui.reload_interval must be >= 0")
	}
	return nil
}

func validateURL(key, raw string) error {
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("%s is required", key)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must be an http or https URL, got %q", key, raw)
	}
	return nil
}
