// Package tracing installs the global OpenTelemetry tracer provider so the
// spans emitted across the service are exported instead of dropped by the
// default no-op provider.
package tracing

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

// Config contains OpenTelemetry tracing configuration.
type Config struct {
	Enabled        bool    `yaml:"enabled" env:"TRACING_ENABLED"`
	ServiceName    string  `yaml:"service_name" env:"TRACING_SERVICE_NAME"`
	ServiceVersion string  `yaml:"service_version"`
	Environment    string  `yaml:"environment" env:"TRACING_ENVIRONMENT"`
	SampleRate     float64 `yaml:"sample_rate" env:"TRACING_SAMPLE_RATE"`

	// ExportType selects the span exporter: otlp or console.
	ExportType     string        `yaml:"export_type" env:"TRACING_EXPORT_TYPE"`
	ExportEndpoint string        `yaml:"export_endpoint" env:"TRACING_EXPORT_ENDPOINT"`
	ExportTimeout  time.Duration `yaml:"export_timeout" env:"TRACING_EXPORT_TIMEOUT"`
	ExportInsecure bool          `yaml:"export_insecure" env:"TRACING_EXPORT_INSECURE"`
}

// DefaultConfig returns default tracing configuration.
func DefaultConfig() *Config {
	return &Config{
		Enabled:        false,
		ServiceName:    "cogniscreen",
		Environment:    "development",
		SampleRate:     1.0,
		ExportType:     "otlp",
		ExportEndpoint: "localhost:4318",
		ExportTimeout:  10 * time.Second,
		ExportInsecure: true,
	}
}

// ShutdownFunc flushes and stops the tracer provider.
type ShutdownFunc func(ctx context.Context) error

// Setup builds a tracer provider from the configuration and registers it
// globally, along with W3C trace-context propagation. The returned shutdown
// function must be called before process exit to flush buffered spans.
// When tracing is disabled the global no-op provider is left in place.
func Setup(ctx context.Context, cfg *Config) (ShutdownFunc, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if !cfg.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := newExporter(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create span exporter: %w", err)
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironment(cfg.Environment),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to build trace resource: %w", err)
	}

	sampler := sdktrace.AlwaysSample()
	if cfg.SampleRate < 1.0 {
		sampler = sdktrace.TraceIDRatioBased(cfg.SampleRate)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(cfg.ExportTimeout)),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sampler)),
	)

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return provider.Shutdown, nil
}

func newExporter(ctx context.Context, cfg *Config) (sdktrace.SpanExporter, error) {
	switch cfg.ExportType {
	case "otlp":
		opts := []otlptracehttp.Option{
			otlptracehttp.WithEndpoint(cfg.ExportEndpoint),
			otlptracehttp.WithTimeout(cfg.ExportTimeout),
		}
		if cfg.ExportInsecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		return otlptracehttp.New(ctx, opts...)

	case "console":
		return stdouttrace.New(
			stdouttrace.WithWriter(os.Stdout),
			stdouttrace.WithPrettyPrint(),
		)

	default:
		return nil, fmt.Errorf("unsupported trace export type: %s", cfg.ExportType)
	}
}
