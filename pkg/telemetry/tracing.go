package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultTracerName is the tracer used when none is configured.
const DefaultTracerName = "vroute"

// Span attribute keys.
const (
	AttrPath    = attribute.Key("vroute.path")
	AttrViewID  = attribute.Key("vroute.view_id")
	AttrOutcome = attribute.Key("vroute.outcome")
	AttrHops    = attribute.Key("vroute.redirect_hops")
	AttrDepth   = attribute.Key("vroute.chain_depth")
)

// Tracer returns a tracer from the global provider. Configure the provider in
// main before starting navigation:
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	otel.SetTracerProvider(tp)
func Tracer(name string) trace.Tracer {
	if name == "" {
		name = DefaultTracerName
	}
	return otel.Tracer(name)
}

// Start starts an internal span. A nil tracer falls back to the default one.
func Start(ctx context.Context, tracer trace.Tracer, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if tracer == nil {
		tracer = Tracer("")
	}
	return tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// End records err on span, if any, and ends it.
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
