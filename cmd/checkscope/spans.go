// Copyright 2026 Elasticsearch B.V. and contributors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"google.golang.org/protobuf/proto"

	"github.com/elastic/checkscope/internal/spans"
)

// Flags for spans command
var (
	spansTrace   string
	spansSpan    string
	spansJSON    bool
	spansOTLPOut string
)

var spansCmd = &cobra.Command{
	Use:   "spans <check-id>",
	Short: "Fetch the spans a check produced",
	Long: `Fetch every span matching the check's outcome filter within the lookback.

Narrow the result to one trace with --trace, and to one span of it with
--span. --otlp-out writes the result as an OTLP protobuf TracesData message
that other OpenTelemetry tools can load.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := loadCheckTarget(cmd, args[0])
		if err != nil {
			return err
		}
		filter := target.filter
		filter.TraceID = spansTrace
		filter.SpanID = spansSpan
		if err := filter.Validate(); err != nil {
			return fmt.Errorf("--span: %w", err)
		}

		result, err := spans.Reduce(cmd.Context(), target.fetcher, filter, spans.SpanResult{}, spans.MergeSpanResults)
		if err != nil {
			return fmt.Errorf("fetch spans: %w", err)
		}

		if spansOTLPOut != "" {
			data, err := proto.Marshal(result.ToProto())
			if err != nil {
				return fmt.Errorf("encode OTLP: %w", err)
			}
			if err := os.WriteFile(spansOTLPOut, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", spansOTLPOut, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d spans to %s\n", result.SpanCount(), spansOTLPOut)
		}

		if spansJSON {
			return writeJSON(cmd.OutOrStdout(), result)
		}
		printSpansTable(cmd.OutOrStdout(), result)
		return nil
	},
}

func init() {
	spansCmd.Flags().StringVar(&spansTrace, "trace", "", "Only spans of this trace id")
	spansCmd.Flags().StringVar(&spansSpan, "span", "", "Only this span id (requires --trace)")
	spansCmd.Flags().BoolVar(&spansJSON, "json", false, "Print the OTLP/JSON result instead of a table")
	spansCmd.Flags().StringVar(&spansOTLPOut, "otlp-out", "", "Also write the result as OTLP protobuf to this file")

	rootCmd.AddCommand(spansCmd)
}

func statusText(code spans.StatusCode) string {
	switch code {
	case spans.StatusOK:
		return "OK"
	case spans.StatusError:
		return "ERROR"
	default:
		return "UNSET"
	}
}

func serviceName(r spans.Resource) string {
	for _, kv := range r.Attributes {
		if kv.Key == "service.name" {
			return kv.Value.String()
		}
	}
	return ""
}

func printSpansTable(w io.Writer, result spans.SpanResult) {
	if result.SpanCount() == 0 {
		fmt.Fprintln(w, "No spans found.")
		return
	}
	table := newTableRenderer(w, []column{
		{Label: "TRACE ID", Width: 32},
		{Label: "SPAN ID", Width: 16},
		{Label: "PARENT", Width: 16},
		{Label: "STATUS", Width: 6},
		{Label: "DURATION", Width: 10},
		{Label: "SERVICE", Width: 16},
		{Label: "NAME", Width: 0},
	})
	table.Header()
	for _, rs := range result.ResourceSpans {
		service := serviceName(rs.Resource)
		for _, ss := range rs.ScopeSpans {
			for _, s := range ss.Spans {
				name := s.Name
				if s.IsError() && s.Status.Message != "" {
					name += ": " + s.Status.Message
				}
				table.Row(s.TraceID, s.SpanID, s.ParentSpanID, statusText(s.Status.Code),
					fmt.Sprintf("%.3fs", s.DurationSeconds()), service, name)
			}
		}
	}
	fmt.Fprintf(w, "\n%d spans\n", result.SpanCount())
}
