package tracing

import (
	"context"

	"github.com/Ramsey-B/fern/pkg/tracing/exporters"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Config controls how the global tracer provider is built.
type Config struct {
	ServiceName string
	Environment string
	OTLP        *exporters.OTLPConfig
}

// Init builds the tracer provider, registers it globally and wires the
// package tracer. When no OTLP config is given spans are written to stdout
// via the console exporter. The returned function flushes and shuts the
// provider down.
func Init(ctx context.Context, config Config) (func(context.Context) error, error) {
	var exporter sdktrace.SpanExporter
	if config.OTLP != nil {
		otlpExporter, err := exporters.NewOTLPExporter(ctx, *config.OTLP)
		if err != nil {
			return nil, err
		}
		exporter = otlpExporter
	} else {
		exporter = &exporters.ConsoleExporter{}
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(config.ServiceName),
		attribute.String("deployment.environment", config.Environment),
	))
	if err != nil {
		return nil, err
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	SetTracer(provider.Tracer(config.ServiceName))

	return provider.Shutdown, nil
}
