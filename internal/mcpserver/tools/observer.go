package tools

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/erauner12/mcp-toolservers/internal/mcpserver/tools"

// Observer records one span, one counter increment and one latency sample per dispatch
type Observer struct {
	tracer trace.Tracer

	invocations metric.Int64Counter
	latency     metric.Float64Histogram
}

// NewObserver creates an observer bound to the provided meter and tracer
func NewObserver(meter metric.Meter, tracer trace.Tracer) (*Observer, error) {
	invocations, err := meter.Int64Counter(
		"mcp.tool.invocations",
		metric.WithDescription("Number of tool invocations"),
	)
	if err != nil {
		return nil, err
	}
	latency, err := meter.Float64Histogram(
		"mcp.tool.latency",
		metric.WithDescription("Tool latency in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &Observer{
		tracer:      tracer,
		invocations: invocations,
		latency:     latency,
	}, nil
}

// NewGlobalObserver binds to the process-wide OpenTelemetry providers
func NewGlobalObserver(server string) (*Observer, error) {
	meter := otel.Meter(instrumentationName, metric.WithInstrumentationAttributes(attribute.String("server", server)))
	tracer := otel.Tracer(instrumentationName)
	return NewObserver(meter, tracer)
}

// start opens the dispatch span; the returned func closes it with the outcome
func (o *Observer) start(ctx context.Context, tool string) (context.Context, func(Result, time.Duration)) {
	if o == nil {
		return ctx, func(Result, time.Duration) {}
	}

	var span trace.Span
	if o.tracer != nil {
		ctx, span = o.tracer.Start(ctx, "tool.dispatch", trace.WithAttributes(attribute.String("tool_name", tool)))
	}

	return ctx, func(result Result, duration time.Duration) {
		attrs := []attribute.KeyValue{
			attribute.String("tool_name", tool),
			attribute.Bool("success", result.OK),
		}
		if !result.OK {
			attrs = append(attrs, attribute.String("error_kind", string(result.Kind())))
		}

		options := metric.WithAttributes(attrs...)
		o.invocations.Add(ctx, 1, options)
		o.latency.Record(ctx, duration.Seconds(), options)

		if span == nil {
			return
		}
		span.SetAttributes(attrs...)
		if result.OK {
			span.SetStatus(codes.Ok, "")
		} else {
			span.SetStatus(codes.Error, result.Failure.Message)
		}
		span.End()
	}
}
