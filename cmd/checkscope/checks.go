// Copyright 2026 Elasticsearch B.V. and contributors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/elastic/checkscope/internal/checks"
)

// Flags for the checks commands
var (
	checksListOutput string
	checksGetOutput  string

	createName        string
	createDescription string
	createTemplate    string
	createArgs        string
	createSchedule    string

	deleteYes bool
)

var checksCmd = &cobra.Command{
	Use:     "checks",
	Aliases: []string{"check"},
	Short:   "List, create, delete and run health checks",
}

var checksListCmd = &cobra.Command{
	Use:   "list [id...]",
	Short: "List checks, optionally restricted to the given ids",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateOutput(checksListOutput, outputTable, outputJSON, outputYAML); err != nil {
			return err
		}
		rt, client, err := checksClientFor(cmd)
		if err != nil {
			return err
		}
		list, err := client.ListChecks(cmd.Context(), args...)
		if err != nil {
			return fmt.Errorf("list checks: %w", err)
		}

		out := cmd.OutOrStdout()
		switch checksListOutput {
		case outputJSON:
			return writeJSON(out, list)
		case outputYAML:
			return writeYAML(out, list)
		}

		templates, err := client.ListTemplates(cmd.Context())
		if err != nil {
			// Labels are cosmetic; fall back to template ids.
			rt.logger.Warn("list templates failed", zap.Error(err))
		}
		printChecksTable(out, list, templates)
		return nil
	},
}

var checksGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one check",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateOutput(checksGetOutput, outputJSON, outputYAML); err != nil {
			return err
		}
		_, client, err := checksClientFor(cmd)
		if err != nil {
			return err
		}
		check, err := client.GetCheck(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("get check %s: %w", args[0], err)
		}
		if checksGetOutput == outputJSON {
			return writeJSON(cmd.OutOrStdout(), check)
		}
		return writeYAML(cmd.OutOrStdout(), check)
	},
}

var checksCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a check from a template",
	Long: `Create a check from a template.

Examples:
  checkscope checks create --name "Login works" --template tpl-http \
    --args '{"url": "https://example.com/login"}' --schedule '*/5 * * * *'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		in := checks.NewCheck{
			Name:        createName,
			Description: createDescription,
			TemplateID:  createTemplate,
			Schedule:    createSchedule,
		}
		if createArgs != "" {
			in.TemplateArgs = json.RawMessage(createArgs)
		}
		if err := in.Validate(); err != nil {
			return err
		}

		_, client, err := checksClientFor(cmd)
		if err != nil {
			return err
		}
		templates, err := client.ListTemplates(cmd.Context())
		if err != nil {
			return fmt.Errorf("list templates: %w", err)
		}
		tpl, err := checks.FindTemplate(templates, in.TemplateID)
		if err != nil {
			return err
		}

		check, err := client.CreateCheck(cmd.Context(), in)
		if err != nil {
			return fmt.Errorf("create check: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created check %q (%s) from template %q\n", check.Name(), check.ID, tpl.Label())
		return nil
	},
}

var checksDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm", "remove"},
	Short:   "Delete a check",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, client, err := checksClientFor(cmd)
		if err != nil {
			return err
		}
		id := args[0]
		check, err := client.GetCheck(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("get check %s: %w", id, err)
		}
		name := check.Name()

		if !deleteYes {
			ok, err := confirmY(cmd.InOrStdin(), cmd.OutOrStdout(), fmt.Sprintf("Delete check %q (%s)? Type 'y' to continue: ", name, id))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
				return nil
			}
		}

		if err := client.RemoveCheck(cmd.Context(), id); err != nil {
			return fmt.Errorf("delete check %s: %w", id, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted check %q\n", name)
		return nil
	},
}

var checksRunCmd = &cobra.Command{
	Use:   "run <id>",
	Short: "Run a check now",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, client, err := checksClientFor(cmd)
		if err != nil {
			return err
		}
		if err := client.RunCheck(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("run check %s: %w", args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Run requested for %s\n", args[0])
		return nil
	},
}

func init() {
	checksListCmd.Flags().StringVarP(&checksListOutput, "output", "o", outputTable, "Output format: table, json or yaml")
	checksGetCmd.Flags().StringVarP(&checksGetOutput, "output", "o", outputYAML, "Output format: json or yaml")

	checksCreateCmd.Flags().StringVar(&createName, "name", "", "Check name (required)")
	checksCreateCmd.Flags().StringVar(&createDescription, "description", "", "Check description")
	checksCreateCmd.Flags().StringVar(&createTemplate, "template", "", "Template id (required)")
	checksCreateCmd.Flags().StringVar(&createArgs, "args", "", "Template arguments as a JSON object")
	checksCreateCmd.Flags().StringVar(&createSchedule, "schedule", "", "Cron schedule (required)")

	checksDeleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Do not ask for confirmation")

	checksCmd.AddCommand(checksListCmd, checksGetCmd, checksCreateCmd, checksDeleteCmd, checksRunCmd)
	rootCmd.AddCommand(checksCmd)
}

// checksClientFor returns the runtime and a check-manager client for cmd.
func checksClientFor(cmd *cobra.Command) (*runtime, *checks.Client, error) {
	rt, err := mustRuntime(cmd)
	if err != nil {
		return nil, nil, err
	}
	client, err := rt.checksClient(rt.cfg)
	if err != nil {
		return nil, nil, err
	}
	return rt, client, nil
}

func printChecksTable(w io.Writer, list []checks.Check, templates []checks.Template) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No checks found.")
		return
	}
	labels := make(map[string]string, len(templates))
	for _, t := range templates {
		labels[t.ID] = t.Label()
	}

	table := newTableRenderer(w, []column{
		{Label: "ID", Width: 24},
		{Label: "NAME", Width: 0},
		{Label: "TEMPLATE", Width: 20},
		{Label: "SCHEDULE", Width: 16},
	})
	table.Header()
	for _, c := range list {
		tpl := c.Attributes.Metadata.TemplateID
		if label, ok := labels[tpl]; ok {
			tpl = label
		}
		table.Row(c.ID, c.Name(), tpl, c.Attributes.Schedule)
	}
}
