package service

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("jsfix.service")
	meter  = otel.Meter("jsfix.service")
)

var (
	fileFixLatency metric.Float64Histogram
	filesTotal     metric.Int64Counter
	fixesTotal     metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics creates the instruments once. Safe to call concurrently.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		fileFixLatency, err = meter.Float64Histogram(
			"fix_file_duration_seconds",
			metric.WithDescription("Duration of applying one file's fix plan"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		filesTotal, err = meter.Int64Counter(
			"fix_files_total",
			metric.WithDescription("Files processed by the fix executor, by outcome"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		fixesTotal, err = meter.Int64Counter(
			"fix_operations_total",
			metric.WithDescription("Fix operations processed, by outcome"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// startExecuteSpan creates a span around one executor run
func startExecuteSpan(ctx context.Context, runID string, files int, dryRun bool) (context.Context, trace.Span) {
	return tracer.Start(ctx, "ParallelExecutor.Execute",
		trace.WithAttributes(
			attribute.String("fix.run_id", runID),
			attribute.Int("fix.files", files),
			attribute.Bool("fix.dry_run", dryRun),
		),
	)
}

func fileOutcome(success, skipped bool) string {
	switch {
	case skipped:
		return "skipped"
	case success:
		return "succeeded"
	default:
		return "failed"
	}
}

func recordFileFix(ctx context.Context, outcome string, duration time.Duration, applied, failed, skipped int) {
	if err := initMetrics(); err != nil {
		return
	}

	fileFixLatency.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.String("outcome", outcome)))
	filesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	if applied > 0 {
		fixesTotal.Add(ctx, int64(applied), metric.WithAttributes(attribute.String("outcome", "applied")))
	}
	if failed > 0 {
		fixesTotal.Add(ctx, int64(failed), metric.WithAttributes(attribute.String("outcome", "failed")))
	}
	if skipped > 0 {
		fixesTotal.Add(ctx, int64(skipped), metric.WithAttributes(attribute.String("outcome", "skipped")))
	}
}
