// Copyright 2026 Elasticsearch B.V. and contributors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/elastic/checkscope/internal/otlp"
	"github.com/elastic/checkscope/internal/spans"
)

var runsExport bool

var runsCmd = &cobra.Command{
	Use:   "runs <check-id>",
	Short: "Evaluate each run of a check as PASS or FAIL",
	Long: `Group the check's spans by trace and evaluate every trace. A run fails
when any of its spans has status ERROR; the span messages are listed.

With --export each run is also sent as an OTLP log record (INFO for a pass,
ERROR for a failure) to the endpoint configured with --otlp.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := loadCheckTarget(cmd, args[0])
		if err != nil {
			return err
		}
		if runsExport && (target.rt.providers == nil || target.rt.providers.Logger == nil) {
			return fmt.Errorf("--export requires OTLP export (--otlp-enabled)")
		}

		progress := progressPrinter(cmd.ErrOrStderr(), func(r spans.SpanResult) string {
			return fmt.Sprintf("%d spans", r.SpanCount())
		})
		result, err := spans.ReduceIncremental(cmd.Context(), target.fetcher, target.filter, spans.SpanResult{}, spans.MergeSpanResults, progress)
		if err != nil {
			return fmt.Errorf("fetch spans: %w", err)
		}

		report := spans.EvaluateAll(spans.GroupByTrace(result))
		printRunsTable(cmd.OutOrStdout(), report)

		if runsExport {
			otlp.NewReporter(target.rt.providers.Logger).EmitReport(cmd.Context(), target.check.ID, report)
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d runs over OTLP\n", len(report.Runs))
		}
		return nil
	},
}

func init() {
	runsCmd.Flags().BoolVar(&runsExport, "export", false, "Send each run as an OTLP log record")
	rootCmd.AddCommand(runsCmd)
}

func printRunsTable(w io.Writer, report spans.RunsReport) {
	if len(report.Runs) == 0 {
		fmt.Fprintln(w, "No runs found.")
		return
	}
	table := newTableRenderer(w, []column{
		{Label: "STATUS", Width: 6},
		{Label: "STARTED", Width: 19},
		{Label: "DURATION", Width: 10},
		{Label: "SPANS", Width: 5},
		{Label: "TRACE ID", Width: 32},
		{Label: "ERRORS", Width: 0},
	})
	table.Header()
	for _, run := range report.Runs {
		status := "PASS"
		if !run.Passed {
			status = "FAIL"
		}
		started := "-"
		if ts, ok := run.Start(); ok {
			started = ts.Local().Format("2006-01-02 15:04:05")
		}
		table.Row(status, started,
			fmt.Sprintf("%.3fs", run.DurationSeconds()),
			strconv.Itoa(run.Spans.SpanCount()),
			run.TraceID,
			strings.Join(run.ErrorMessages, "; "))
	}
	fmt.Fprintf(w, "\nPASS %d / FAIL %d\n", report.Passed, report.Failed)
}
