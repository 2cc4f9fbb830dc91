package exporters

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/sdk/trace"
)

// ConsoleExporter writes one line per finished span to stdout. It stands in
// for the OTLP exporter in local runs where no collector is available.
type ConsoleExporter struct{}

func (c *ConsoleExporter) ExportSpans(ctx context.Context, spans []trace.ReadOnlySpan) error {
	for _, span := range spans {
		fmt.Printf("span name=%s trace_id=%s duration=%s\n",
			span.Name(),
			span.SpanContext().TraceID(),
			span.EndTime().Sub(span.StartTime()),
		)
	}
	return nil
}

func (c *ConsoleExporter) Shutdown(ctx context.Context) error {
	return nil
}
