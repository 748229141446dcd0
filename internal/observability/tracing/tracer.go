package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope of every span the service creates.
const TracerName = "newsreader"

// GetTracer returns the tracer of the currently installed provider.
func GetTracer() trace.Tracer {
	return otel.Tracer(TracerName)
}

// StartSpan starts a client span with attrs.
//
//	ctx, span := tracing.StartSpan(ctx, "newsapi.top-headlines", attribute.String("country", "us"))
//	defer span.End()
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return GetTracer().Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
}

// EndSpan records err on span, if any, and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
