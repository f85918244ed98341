// Copyright 2026 Elasticsearch B.V. and contributors
// SPDX-License-Identifier: Apache-2.0

package otlp

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"github.com/elastic/checkscope/internal/spans"
)

// Reporter emits one OTel log record per evaluated check run.
type Reporter struct {
	logger log.Logger
	now    func() time.Time
}

// NewReporter creates a Reporter on top of provider.
func NewReporter(provider *sdklog.LoggerProvider) *Reporter {
	return &Reporter{
		logger: provider.Logger(ScopeName),
		now:    time.Now,
	}
}

// EmitRun sends the outcome of a run of checkID. Failed runs are emitted at
// ERROR severity with the collected span messages as the body.
func (r *Reporter) EmitRun(ctx context.Context, checkID string, run spans.Run) {
	var record log.Record
	record.SetObservedTimestamp(r.now())
	if start, ok := run.Start(); ok {
		record.SetTimestamp(start)
	}

	severity := outcomeToSeverity(run.Outcome)
	record.SetSeverity(severity)
	record.SetSeverityText(severity.String())

	body := "check run passed"
	if !run.Passed {
		body = "check run failed"
		if len(run.ErrorMessages) > 0 {
			body += ": " + strings.Join(run.ErrorMessages, "; ")
		}
	}
	record.SetBody(log.StringValue(body))

	record.AddAttributes(
		log.String("check.id", checkID),
		log.String("trace.id", run.TraceID),
		log.Bool("check.run.passed", run.Passed),
		log.Int("check.run.span_count", run.Spans.SpanCount()),
		log.Int("check.run.error_count", len(run.ErrorMessages)),
	)
	r.logger.Emit(ctx, record)
}

// EmitReport sends every run of report.
func (r *Reporter) EmitReport(ctx context.Context, checkID string, report spans.RunsReport) {
	for _, run := range report.Runs {
		r.EmitRun(ctx, checkID, run)
	}
}

// outcomeToSeverity maps a run outcome to an OTel severity.
func outcomeToSeverity(o spans.Outcome) log.Severity {
	if o.Passed {
		return log.SeverityInfo
	}
	return log.SeverityError
}
