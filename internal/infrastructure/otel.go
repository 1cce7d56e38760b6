package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	ServiceName    = "sirius"
	ServiceVersion = "1.0.0"
	MeterName      = "sirius"
)

// OTelProviders holds the OpenTelemetry providers and derived instruments.
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	PrometheusHTTP http.Handler
	Logger         *slog.Logger
}

// InitializeOTel sets up tracing (stdout exporter) and metrics (Prometheus
// exporter, served by the app's /metrics endpoint).
func InitializeOTel(logger *slog.Logger) (*OTelProviders, error) {
	if logger == nil {
		logger = slog.Default()
	}
	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(ServiceName),
		semconv.ServiceVersion(ServiceVersion),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	traceExporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}
	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tracerProvider)

	promExporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}
	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(promExporter),
	)
	otel.SetMeterProvider(meterProvider)

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.Info("opentelemetry initialized",
		slog.String("service", ServiceName),
		slog.String("version", ServiceVersion))

	return &OTelProviders{
		TracerProvider: tracerProvider,
		MeterProvider:  meterProvider,
		Tracer:         tracerProvider.Tracer(MeterName),
		Meter:          meterProvider.Meter(MeterName),
		PrometheusHTTP: promhttp.Handler(),
		Logger:         logger,
	}, nil
}

// Shutdown flushes and stops the providers.
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	if p == nil {
		return nil
	}
	var firstErr error
	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			firstErr = err
		}
	}
	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// WizardMetrics are the business metrics recorded around wizard runs.
type WizardMetrics struct {
	RunsStarted metric.Int64Counter
	RunsFailed  metric.Int64Counter
	RunDuration metric.Float64Histogram
}

// NewWizardMetrics creates the wizard run instruments on the given meter.
func NewWizardMetrics(meter metric.Meter) (*WizardMetrics, error) {
	runsStarted, err := meter.Int64Counter("sirius.wizard.runs_started",
		metric.WithDescription("Report runs triggered"))
	if err != nil {
		return nil, err
	}
	runsFailed, err := meter.Int64Counter("sirius.wizard.runs_failed",
		metric.WithDescription("Report runs that ended in failure"))
	if err != nil {
		return nil, err
	}
	runDuration, err := meter.Float64Histogram("sirius.wizard.run_duration_seconds",
		metric.WithDescription("Report run duration in seconds"))
	if err != nil {
		return nil, err
	}
	return &WizardMetrics{
		RunsStarted: runsStarted,
		RunsFailed:  runsFailed,
		RunDuration: runDuration,
	}, nil
}

// RecordStart counts one triggered run.
func (m *WizardMetrics) RecordStart(ctx context.Context, wizardType string) {
	if m == nil {
		return
	}
	m.RunsStarted.Add(ctx, 1, metric.WithAttributes(attribute.String("wizard_type", wizardType)))
}

// RecordRun records one completed or failed run.
func (m *WizardMetrics) RecordRun(ctx context.Context, wizardType string, duration time.Duration, failed bool) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("wizard_type", wizardType))
	if failed {
		m.RunsFailed.Add(ctx, 1, attrs)
	}
	m.RunDuration.Record(ctx, duration.Seconds(), attrs)
}
