// Copyright 2026 Elasticsearch B.V. and contributors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ProfileConfig represents the top-level configuration file structure.
// Stored at ~/.config/checkscope/config.yaml
type ProfileConfig struct {
	CurrentProfile string             `yaml:"current-profile,omitempty"`
	Profiles       map[string]Profile `yaml:"profiles,omitempty"`
}

// Profile represents a named configuration profile containing the
// check-manager and telemetry endpoints, credentials and OTLP settings.
type Profile struct {
	CheckManager CheckManagerProfile `yaml:"check-manager,omitempty"`
	Telemetry    TelemetryProfile    `yaml:"telemetry,omitempty"`
	Auth         AuthProfile         `yaml:"auth,omitempty"`
	OTLP         OTLPProfile         `yaml:"otlp,omitempty"`
}

// CheckManagerProfile holds check-manager settings for a profile.
type CheckManagerProfile struct {
	URL     string        `yaml:"url,omitempty"`
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// TelemetryProfile holds span-query settings for a profile.
type TelemetryProfile struct {
	URL      string `yaml:"url,omitempty"` // Must end in the API version, e.g. /v1
	Lookback string `yaml:"lookback,omitempty"`
}

// AuthProfile holds credentials for a profile.
type AuthProfile struct {
	Cookie string `yaml:"cookie,omitempty"` // Supports ${ENV_VAR} syntax
	Token  string `yaml:"token,omitempty"`  // Supports ${ENV_VAR} syntax
}

// OTLPProfile holds OTLP connection settings for a profile.
type OTLPProfile struct {
	Endpoint string `yaml:"endpoint,omitempty"`
	Insecure *bool  `yaml:"insecure,omitempty"` // Pointer to distinguish unset from false
	Enabled  *bool  `yaml:"enabled,omitempty"`
}

// Default configuration directory and file names.
const (
	ConfigDirName  = "checkscope"
	ConfigFileName = "config.yaml"
)

// GetConfigDir returns the path to the checkscope config directory.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config/checkscope
func GetConfigDir() (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("get home directory: %w", err)
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, ConfigDirName), nil
}

// GetConfigPath returns the full path to the config file.
func GetConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

// LoadProfiles loads the profile configuration from disk.
// Returns an empty ProfileConfig if the file doesn't exist.
// Warns to stderr if file permissions are insecure.
func LoadProfiles() (*ProfileConfig, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &ProfileConfig{Profiles: make(map[string]Profile)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	checkFilePermissions(path)

	var cfg ProfileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	if cfg.Profiles == nil {
		cfg.Profiles = make(map[string]Profile)
	}
	return &cfg, nil
}

// SaveProfiles writes the profile configuration to disk with 0600 permissions,
// creating the config directory if needed.
func SaveProfiles(cfg *ProfileConfig) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// GetProfile returns the named profile, or an error if it doesn't exist.
func (c *ProfileConfig) GetProfile(name string) (Profile, error) {
	p, ok := c.Profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("profile %q not found", name)
	}
	return p, nil
}

// SetProfile creates or updates a named profile.
func (c *ProfileConfig) SetProfile(name string, profile Profile) {
	if c.Profiles == nil {
		c.Profiles = make(map[string]Profile)
	}
	c.Profiles[name] = profile
}

// DeleteProfile removes a named profile.
func (c *ProfileConfig) DeleteProfile(name string) error {
	if _, ok := c.Profiles[name]; !ok {
		return fmt.Errorf("profile %q not found", name)
	}
	delete(c.Profiles, name)
	if c.CurrentProfile == name {
		c.CurrentProfile = ""
	}
	return nil
}

// ListProfiles returns all profile names, sorted.
func (c *ProfileConfig) ListProfiles() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// GetActiveProfile returns the currently active profile.
// If profileFlag is set, uses that. Otherwise uses current-profile from config.
// Returns nil profile and empty name if no profile is active.
func (c *ProfileConfig) GetActiveProfile(profileFlag string) (*Profile, string) {
	name := profileFlag
	if name == "" {
		name = c.CurrentProfile
	}
	if name == "" {
		return nil, ""
	}
	p, err := c.GetProfile(name)
	if err != nil {
		return nil, ""
	}
	return &p, name
}

// envVarPattern matches ${VAR_NAME} patterns
var envVarPattern = regexp.MustCompile(`^\$\{([^}]+)\}$`)

// IsEnvRef returns true if the string is an environment variable reference.
func IsEnvRef(s string) bool {
	return envVarPattern.MatchString(s)
}

// expandEnvVar expands a single ${VAR} reference. Non-references are
// returned as-is.
func expandEnvVar(s string) (string, bool) {
	matches := envVarPattern.FindStringSubmatch(s)
	if len(matches) != 2 {
		return s, true
	}
	return os.LookupEnv(matches[1])
}

// Resolve returns a copy of the profile with all ${ENV_VAR} references expanded.
// Returns an error if any referenced environment variable is undefined.
func (p Profile) Resolve() (Profile, error) {
	resolved := p

	cookie, ok := expandEnvVar(p.Auth.Cookie)
	if !ok {
		return Profile{}, fmt.Errorf("undefined environment variable in cookie: %s", p.Auth.Cookie)
	}
	resolved.Auth.Cookie = cookie

	token, ok := expandEnvVar(p.Auth.Token)
	if !ok {
		return Profile{}, fmt.Errorf("undefined environment variable in token: %s", p.Auth.Token)
	}
	resolved.Auth.Token = token

	return resolved, nil
}

// settings flattens the non-empty profile fields into viper keys.
func (p Profile) settings() map[string]any {
	out := make(map[string]any)
	put := func(key, value string) {
		if value != "" {
			out[key] = value
		}
	}
	put("check_manager.url", p.CheckManager.URL)
	put("telemetry.url", p.Telemetry.URL)
	put("telemetry.lookback", p.Telemetry.Lookback)
	put("auth.cookie", p.Auth.Cookie)
	put("auth.token", p.Auth.Token)
	put("otlp.endpoint", p.OTLP.Endpoint)
	if p.CheckManager.Timeout > 0 {
		out["check_manager.timeout"] = p.CheckManager.Timeout
		out["telemetry.timeout"] = p.CheckManager.Timeout
	}
	if p.OTLP.Insecure != nil {
		out["otlp.insecure"] = *p.OTLP.Insecure
	}
	if p.OTLP.Enabled != nil {
		out["otlp.enabled"] = *p.OTLP.Enabled
	}
	return out
}

// HasCredentials returns true if the profile contains any authentication credentials.
func (p Profile) HasCredentials() bool {
	return p.Auth.Cookie != "" || p.Auth.Token != ""
}

// HasPlainTextCredentials returns true if the profile contains credentials
// that are not environment variable references.
func (p Profile) HasPlainTextCredentials() bool {
	return (p.Auth.Cookie != "" && !IsEnvRef(p.Auth.Cookie)) ||
		(p.Auth.Token != "" && !IsEnvRef(p.Auth.Token))
}

// checkFilePermissions warns to stderr if the config file has insecure permissions.
func checkFilePermissions(path string) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	mode := info.Mode().Perm()
	if mode&0077 != 0 { // group or world can read
		fmt.Fprintf(os.Stderr, "Warning: %s has permissions %04o, should be 0600 for security\n", path, mode)
	}
}

func maskSecret(s string) string {
	if s == "" || IsEnvRef(s) {
		return s
	}
	return "****"
}

// MaskCredentials returns a copy of the profile with credentials masked for display.
// Environment variable references are shown as-is, plain text values are replaced with "****".
func (p Profile) MaskCredentials() Profile {
	masked := p
	masked.Auth.Cookie = maskSecret(p.Auth.Cookie)
	masked.Auth.Token = maskSecret(p.Auth.Token)
	return masked
}

// MaskAllCredentials returns a copy of the config with all profile credentials masked.
func (c ProfileConfig) MaskAllCredentials() ProfileConfig {
	masked := ProfileConfig{
		CurrentProfile: c.CurrentProfile,
		Profiles:       make(map[string]Profile, len(c.Profiles)),
	}
	for name, profile := range c.Profiles {
		masked.Profiles[name] = profile.MaskCredentials()
	}
	return masked
}

// String returns a YAML representation of the config with credentials masked.
func (c ProfileConfig) String() string {
	data, err := yaml.Marshal(c.MaskAllCredentials())
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return strings.TrimSpace(string(data))
}

// PlainTextCredentialWarning returns a warning message if any profiles contain
// plain text credentials.
func PlainTextCredentialWarning() string {
	return "Warning: Storing credentials in plain text. Consider using environment\n" +
		"variable references (e.g., token: ${CHECKSCOPE_TOKEN}) for better security."
}
