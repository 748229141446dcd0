package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"newsreader/pkg/config"
)

// ProviderConfig controls the tracer provider installed by Setup.
type ProviderConfig struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string
	// SampleRatio is the fraction of root spans sampled, 0 < ratio <= 1.
	SampleRatio float64
	// Exporter receives finished spans. Nil keeps spans in-process only,
	// which still gives every request a trace ID for log correlation.
	Exporter sdktrace.SpanExporter
}

// ProviderConfigFromEnv reads OTEL_TRACING_ENABLED, OTEL_SAMPLE_RATIO and VERSION.
func ProviderConfigFromEnv(serviceName string) ProviderConfig {
	return ProviderConfig{
		Enabled:        config.GetEnvBool("OTEL_TRACING_ENABLED", false),
		ServiceName:    serviceName,
		ServiceVersion: config.GetEnvString("VERSION", "dev"),
		SampleRatio:    config.GetEnvFloat("OTEL_SAMPLE_RATIO", 1.0),
	}
}

// ShutdownFunc flushes and stops the provider.
type ShutdownFunc func(context.Context) error

// Setup installs the global propagator and, when enabled, an SDK tracer provider.
func Setup(ctx context.Context, cfg ProviderConfig) (ShutdownFunc, error) {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if !cfg.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	if cfg.SampleRatio <= 0 || cfg.SampleRatio > 1 {
		return nil, fmt.Errorf("tracing: sample ratio must be in (0, 1], got %v", cfg.SampleRatio)
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = TracerName
	}

	res, err := resource.New(ctx, resource.WithAttributes(
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("service.version", cfg.ServiceVersion),
	))
	if err != nil {
		return nil, fmt.Errorf("tracing: resource: %w", err)
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
	}
	if cfg.Exporter != nil {
		opts = append(opts, sdktrace.WithBatcher(cfg.Exporter))
	}

	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}
