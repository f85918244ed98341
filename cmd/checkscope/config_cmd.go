// Copyright 2026 Elasticsearch B.V. and contributors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/elastic/checkscope/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage checkscope configuration and profiles",
	Long: `Manage checkscope configuration profiles.

Profiles hold the check-manager and telemetry endpoints, credentials and
OTLP settings of one environment, so you can switch between them (similar
to kubectl contexts).

Configuration is stored in ~/.config/checkscope/config.yaml`,
	// Skip config loading so a broken profile can still be repaired.
	PersistentPreRunE:  func(cmd *cobra.Command, args []string) error { return nil },
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error { return nil },
}

var useProfileCmd = &cobra.Command{
	Use:   "use-profile <name>",
	Short: "Set the current profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		cfg, err := config.LoadProfiles()
		if err != nil {
			return fmt.Errorf("load profiles: %w", err)
		}

		if _, err := cfg.GetProfile(name); err != nil {
			return fmt.Errorf("profile %q does not exist", name)
		}

		cfg.CurrentProfile = name
		if err := config.SaveProfiles(cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Switched to profile %q\n", name)
		return nil
	},
}

var setProfileCmd = &cobra.Command{
	Use:   "set-profile <name>",
	Short: "Create or update a profile",
	Long: `Create or update a named profile. Only the global flags given on the
command line are stored; other fields of an existing profile are kept.

Examples:
  # Local development
  checkscope config set-profile local \
    --check-manager-url http://127.0.0.1:8000 \
    --telemetry-url http://127.0.0.1:8080/v1

  # Staging with a token read from the environment at load time
  checkscope config set-profile staging \
    --check-manager-url https://checks.staging.example.com \
    --telemetry-url https://telemetry.staging.example.com/v1 \
    --token '${STAGING_CHECKSCOPE_TOKEN}' \
    --lookback 1d

Credentials can be stored as:
  - Environment variable references: ${MY_SECRET} (recommended)
  - Plain text values (warning will be shown)`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		cfg, err := config.LoadProfiles()
		if err != nil {
			return fmt.Errorf("load profiles: %w", err)
		}

		// Get existing profile or create new one
		profile, _ := cfg.GetProfile(name)
		if err := applyProfileFlags(cmd, &profile); err != nil {
			return err
		}
		cfg.SetProfile(name, profile)

		if err := config.SaveProfiles(cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}

		if profile.HasPlainTextCredentials() {
			fmt.Fprintln(cmd.ErrOrStderr(), config.PlainTextCredentialWarning())
			fmt.Fprintln(cmd.ErrOrStderr())
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Profile %q saved\n", name)
		return nil
	},
}

// applyProfileFlags copies the global flags set on the command line into p.
func applyProfileFlags(cmd *cobra.Command, p *config.Profile) error {
	fs := cmd.Flags()
	str := func(flag string, dst *string) error {
		if !fs.Changed(flag) {
			return nil
		}
		v, err := fs.GetString(flag)
		if err != nil {
			return err
		}
		*dst = v
		return nil
	}
	boolPtr := func(flag string, dst **bool) error {
		if !fs.Changed(flag) {
			return nil
		}
		v, err := fs.GetBool(flag)
		if err != nil {
			return err
		}
		*dst = &v
		return nil
	}

	for _, f := range []struct {
		flag string
		dst  *string
	}{
		{"check-manager-url", &p.CheckManager.URL},
		{"telemetry-url", &p.Telemetry.URL},
		{"lookback", &p.Telemetry.Lookback},
		{"cookie", &p.Auth.Cookie},
		{"token", &p.Auth.Token},
		{"otlp", &p.OTLP.Endpoint},
	} {
		if err := str(f.flag, f.dst); err != nil {
			return err
		}
	}
	if err := boolPtr("otlp-insecure", &p.OTLP.Insecure); err != nil {
		return err
	}
	if err := boolPtr("otlp-enabled", &p.OTLP.Enabled); err != nil {
		return err
	}
	if fs.Changed("timeout") {
		d, err := fs.GetDuration("timeout")
		if err != nil {
			return err
		}
		p.CheckManager.Timeout = d
	}
	return nil
}

var getProfilesCmd = &cobra.Command{
	Use:     "get-profiles",
	Aliases: []string{"list-profiles", "profiles"},
	Short:   "List all profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		cfg, err := config.LoadProfiles()
		if err != nil {
			return fmt.Errorf("load profiles: %w", err)
		}

		names := cfg.ListProfiles()
		if len(names) == 0 {
			fmt.Fprintln(out, "No profiles configured.")
			fmt.Fprintln(out, "Create one with: checkscope config set-profile <name> --check-manager-url <url>")
			return nil
		}

		fmt.Fprintln(out, "PROFILES:")
		for _, name := range names {
			marker := "  "
			if name == cfg.CurrentProfile {
				marker = "* "
			}
			profile, _ := cfg.GetProfile(name)
			fmt.Fprintf(out, "%s%-20s  %s\n", marker, name, formatProfileSummary(profile))
		}

		if cfg.CurrentProfile != "" {
			fmt.Fprintf(out, "\n* = current profile\n")
		}
		return nil
	},
}

var currentProfileCmd = &cobra.Command{
	Use:   "current-profile",
	Short: "Show the current profile name",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadProfiles()
		if err != nil {
			return fmt.Errorf("load profiles: %w", err)
		}

		if cfg.CurrentProfile == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "No profile selected (using defaults)")
			return nil
		}

		fmt.Fprintln(cmd.OutOrStdout(), cfg.CurrentProfile)
		return nil
	},
}

var deleteProfileCmd = &cobra.Command{
	Use:   "delete-profile <name>",
	Short: "Delete a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		cfg, err := config.LoadProfiles()
		if err != nil {
			return fmt.Errorf("load profiles: %w", err)
		}

		if err := cfg.DeleteProfile(name); err != nil {
			return err
		}

		if err := config.SaveProfiles(cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Profile %q deleted\n", name)
		return nil
	},
}

var viewConfigCmd = &cobra.Command{
	Use:   "view",
	Short: "Show the full configuration (credentials masked)",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		cfg, err := config.LoadProfiles()
		if err != nil {
			return fmt.Errorf("load profiles: %w", err)
		}

		if len(cfg.Profiles) == 0 && cfg.CurrentProfile == "" {
			fmt.Fprintln(out, "No configuration found.")
			fmt.Fprintln(out, "Create a profile with: checkscope config set-profile <name> --check-manager-url <url>")
			return nil
		}

		fmt.Fprintln(out, cfg.String())
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the configuration file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.GetConfigPath()
		if err != nil {
			return fmt.Errorf("get config path: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(useProfileCmd)
	configCmd.AddCommand(setProfileCmd)
	configCmd.AddCommand(getProfilesCmd)
	configCmd.AddCommand(currentProfileCmd)
	configCmd.AddCommand(deleteProfileCmd)
	configCmd.AddCommand(viewConfigCmd)
	configCmd.AddCommand(configPathCmd)

	rootCmd.AddCommand(configCmd)
}

// formatProfileSummary returns a brief summary of a profile's endpoints.
func formatProfileSummary(p config.Profile) string {
	var parts []string
	if p.CheckManager.URL != "" {
		parts = append(parts, "checks="+p.CheckManager.URL)
	}
	if p.Telemetry.URL != "" {
		parts = append(parts, "telemetry="+p.Telemetry.URL)
	}
	if p.Telemetry.Lookback != "" {
		parts = append(parts, "lookback="+p.Telemetry.Lookback)
	}
	if p.OTLP.Endpoint != "" {
		parts = append(parts, "otlp="+p.OTLP.Endpoint)
	}
	if len(parts) == 0 {
		return "(empty)"
	}
	return strings.Join(parts, ", ")
}
