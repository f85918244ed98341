// Copyright 2026 Elasticsearch B.V. and contributors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.design/x/clipboard"

	"github.com/elastic/checkscope/internal/spans"
)

// Flags for query command
var (
	queryTrace string
	queryCopy  bool
)

var queryCmd = &cobra.Command{
	Use:   "query <check-id>",
	Short: "Print the check's span filter as a DQL query",
	Long: `Print the check's span filter as DQL text that can be pasted into a
dashboard search bar. The time range is not part of the text.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, client, err := checksClientFor(cmd)
		if err != nil {
			return err
		}
		check, err := client.GetCheck(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("get check %s: %w", args[0], err)
		}
		rt, err := mustRuntime(cmd)
		if err != nil {
			return err
		}

		filter := check.SpanFilter(rt.cfg.Telemetry.LookbackPreset(), time.Now())
		filter.TraceID = queryTrace
		text := spans.QueryText(filter)
		fmt.Fprintln(cmd.OutOrStdout(), text)

		if queryCopy {
			if err := clipboard.Init(); err != nil {
				return fmt.Errorf("clipboard unavailable: %w", err)
			}
			clipboard.Write(clipboard.FmtText, []byte(text))
			fmt.Fprintln(cmd.ErrOrStderr(), "Copied to clipboard")
		}
		return nil
	},
}

func init() {
	queryCmd.Flags().StringVar(&queryTrace, "trace", "", "Narrow the query to one trace id")
	queryCmd.Flags().BoolVar(&queryCopy, "copy", false, "Copy the query to the clipboard")
	rootCmd.AddCommand(queryCmd)
}
