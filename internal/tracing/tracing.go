package tracing

import (
	"context"
	"fmt"

	"github.com/nfrund/applydash/internal/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// InstrumentationName is the tracer name used for webhook and bus spans.
const InstrumentationName = "github.com/nfrund/applydash"

// Setup initializes OpenTelemetry with a Zipkin exporter. When tracing is
// disabled it returns a no-op tracer and a no-op shutdown.
func Setup(ctx context.Context, cfg config.Tracing) (trace.Tracer, func(context.Context) error, error) {
	if !cfg.Enabled {
		return Noop(), func(context.Context) error { return nil }, nil
	}

	exporter, err := zipkin.New(cfg.ZipkinURL)
	if err != nil {
		return nil, nil, fmt.Errorf("create zipkin exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", cfg.ServiceName),
		),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("create trace resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	return tp.Tracer(InstrumentationName), tp.Shutdown, nil
}

// Noop returns a tracer that records nothing.
func Noop() trace.Tracer {
	return noop.NewTracerProvider().Tracer(InstrumentationName)
}
