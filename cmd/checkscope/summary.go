// Copyright 2026 Elasticsearch B.V. and contributors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/elastic/checkscope/internal/spans"
)

var summaryJSON bool

var summaryCmd = &cobra.Command{
	Use:   "summary <check-id>",
	Short: "Summarize the runs of a check",
	Long: `Count runs, failures and test cases of a check within the lookback and
average the duration of its root spans. Progress is reported on stderr while
pages are fetched.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := loadCheckTarget(cmd, args[0])
		if err != nil {
			return err
		}
		progress := progressPrinter(cmd.ErrOrStderr(), func(s spans.SpansSummary) string {
			return fmt.Sprintf("%d runs, %d failed", s.TraceCount, s.FailedTraceCount)
		})
		summary, err := spans.Summarize(cmd.Context(), target.fetcher, target.filter, progress)
		if err != nil {
			return fmt.Errorf("summarize: %w", err)
		}
		if summaryJSON {
			return writeJSON(cmd.OutOrStdout(), summary)
		}
		printSummary(cmd.OutOrStdout(), target.check.Name(), target.rt.cfg.Telemetry.LookbackPreset(), summary)
		return nil
	},
}

func init() {
	summaryCmd.Flags().BoolVar(&summaryJSON, "json", false, "Print the summary as JSON")
	rootCmd.AddCommand(summaryCmd)
}

func printSummary(w io.Writer, name string, lookback spans.Lookback, s spans.SpansSummary) {
	fmt.Fprintf(w, "%s (last %s)\n", name, lookback.Label())
	fmt.Fprintf(w, "  Runs:          %d\n", s.TraceCount)
	fmt.Fprintf(w, "  Passed:        %d\n", s.PassedTraceCount())
	fmt.Fprintf(w, "  Failed:        %d\n", s.FailedTraceCount)
	fmt.Fprintf(w, "  Avg duration:  %s\n", spans.FormatAverageDuration(s))
	fmt.Fprintf(w, "  Test cases:    %d\n", s.TotalTestCount)
}
