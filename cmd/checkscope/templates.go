// Copyright 2026 Elasticsearch B.V. and contributors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var templatesOutput string

var templatesCmd = &cobra.Command{
	Use:     "templates",
	Aliases: []string{"template"},
	Short:   "Browse check templates",
}

var templatesListCmd = &cobra.Command{
	Use:   "list [id...]",
	Short: "List templates, optionally restricted to the given ids",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateOutput(templatesOutput, outputTable, outputJSON); err != nil {
			return err
		}
		_, client, err := checksClientFor(cmd)
		if err != nil {
			return err
		}
		list, err := client.ListTemplates(cmd.Context(), args...)
		if err != nil {
			return fmt.Errorf("list templates: %w", err)
		}

		out := cmd.OutOrStdout()
		if templatesOutput == outputJSON {
			return writeJSON(out, list)
		}
		if len(list) == 0 {
			fmt.Fprintln(out, "No templates found.")
			return nil
		}
		table := newTableRenderer(out, []column{
			{Label: "ID", Width: 24},
			{Label: "LABEL", Width: 28},
			{Label: "DESCRIPTION", Width: 0},
		})
		table.Header()
		for _, t := range list {
			table.Row(t.ID, t.Label(), t.Attributes.Metadata.Description)
		}
		return nil
	},
}

var templatesGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one template and its argument schema as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, client, err := checksClientFor(cmd)
		if err != nil {
			return err
		}
		tpl, err := client.GetTemplate(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("get template %s: %w", args[0], err)
		}
		return writeJSON(cmd.OutOrStdout(), tpl)
	},
}

func init() {
	templatesListCmd.Flags().StringVarP(&templatesOutput, "output", "o", outputTable, "Output format: table or json")

	templatesCmd.AddCommand(templatesListCmd, templatesGetCmd)
	rootCmd.AddCommand(templatesCmd)
}
