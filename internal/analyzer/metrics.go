package analyzer

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
	tracer = otel.Tracer("jsfix.analyzer")
	meter  = otel.Meter("jsfix.analyzer")
)

var (
	analyzeLatency  metric.Float64Histogram
	analyzeTotal    metric.Int64Counter
	detectionsFound metric.Int64Histogram
	parseFailures   metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics creates the instruments once. Safe to call concurrently.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		analyzeLatency, err = meter.Float64Histogram(
			"analyze_duration_seconds",
			metric.WithDescription("Duration of single file analysis"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		analyzeTotal, err = meter.Int64Counter(
			"analyze_files_total",
			metric.WithDescription("Total number of analyzed files"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		detectionsFound, err = meter.Int64Histogram(
			"analyze_detections",
			metric.WithDescription("Number of detections per analyzed file"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		parseFailures, err = meter.Int64Counter(
			"analyze_parse_failures_total",
			metric.WithDescription("Files whose syntax tree could not be built"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// startAnalyzeSpan creates a span around the analysis of one file
func startAnalyzeSpan(ctx context.Context, language, path string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Analyzer.Analyze",
		trace.WithAttributes(
			attribute.String("analyze.language", language),
			attribute.String("analyze.file_path", path),
		),
	)
}

func recordAnalysis(ctx context.Context, language string, duration time.Duration, detections int, parseFailed bool) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String("language", language))
	analyzeLatency.Record(ctx, duration.Seconds(), attrs)
	analyzeTotal.Add(ctx, 1, attrs)
	detectionsFound.Record(ctx, int64(detections), attrs)
	if parseFailed {
		parseFailures.Add(ctx, 1, attrs)
	}
}
