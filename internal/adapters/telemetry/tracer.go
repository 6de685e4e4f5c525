package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/kiln/internal/core/ports"
)

// InstrumentationName names the tracer used for task spans.
const InstrumentationName = "go.trai.ch/kiln"

// AttrGraph tags a span with the graph it belongs to.
const AttrGraph = "kiln.graph"

var (
	_ ports.Tracer = (*OTelTracer)(nil)
	_ ports.Span   = (*OTelSpan)(nil)
)

// OTelTracer implements ports.Tracer with OpenTelemetry. Every span is
// forwarded to the renderer through a Bridge.
type OTelTracer struct {
	tracer   trace.Tracer
	provider *sdktrace.TracerProvider
	renderer ports.Renderer
}

// NewOTelTracer creates a tracer reporting to renderer. With a nil renderer
// spans go to the globally registered provider.
func NewOTelTracer(renderer ports.Renderer) *OTelTracer {
	if renderer == nil {
		return &OTelTracer{tracer: otel.Tracer(InstrumentationName)}
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(NewBridge(renderer)),
	)
	return &OTelTracer{
		tracer:   provider.Tracer(InstrumentationName),
		provider: provider,
		renderer: renderer,
	}
}

// Shutdown flushes and stops the tracer provider.
func (t *OTelTracer) Shutdown(ctx context.Context) error {
	if t.provider == nil {
		return nil
	}
	return t.provider.Shutdown(ctx)
}

// Start creates a new span.
func (t *OTelTracer) Start(ctx context.Context, name string, opts ...ports.SpanOption) (context.Context, ports.Span) {
	cfg := &ports.SpanConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	var startOpts []trace.SpanStartOption
	if cfg.Graph != "" {
		startOpts = append(startOpts, trace.WithAttributes(attribute.String(AttrGraph, cfg.Graph)))
	}
	ctx, span := t.tracer.Start(ctx, name, startOpts...)

	var batcher *LogBatcher
	if t.renderer != nil {
		spanID := span.SpanContext().SpanID().String()
		renderer := t.renderer
		batcher = NewLogBatcher(0, 0, func(data []byte) {
			renderer.OnTaskLog(spanID, data)
		})
	}

	return ctx, &OTelSpan{span: span, batcher: batcher}
}

// EmitPlan records the layered plan on the current span and hands it to the renderer.
func (t *OTelTracer) EmitPlan(ctx context.Context, graph string, groups [][]string) {
	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		var names []string
		for _, group := range groups {
			names = append(names, group...)
		}
		span.AddEvent("plan_emitted", trace.WithAttributes(
			attribute.String(AttrGraph, graph),
			attribute.Int("groups", len(groups)),
			attribute.StringSlice("tasks", names),
		))
	}

	if t.renderer != nil {
		t.renderer.OnPlanEmit(graph, groups)
	}
}

// OTelSpan implements ports.Span using OpenTelemetry.
type OTelSpan struct {
	span    trace.Span
	batcher *LogBatcher
}

// End flushes buffered output and completes the span.
func (s *OTelSpan) End() {
	if s.batcher != nil {
		_ = s.batcher.Close()
	}
	s.span.End()
}

// RecordError records err and marks the span as failed.
func (s *OTelSpan) RecordError(err error) {
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

// SetAttribute adds a key-value pair to the span.
func (s *OTelSpan) SetAttribute(key string, value any) {
	switch v := value.(type) {
	case string:
		s.span.SetAttributes(attribute.String(key, v))
	case int:
		s.span.SetAttributes(attribute.Int(key, v))
	case int64:
		s.span.SetAttributes(attribute.Int64(key, v))
	case float64:
		s.span.SetAttributes(attribute.Float64(key, v))
	case bool:
		s.span.SetAttributes(attribute.Bool(key, v))
	case []string:
		s.span.SetAttributes(attribute.StringSlice(key, v))
	default:
		s.span.SetAttributes(attribute.String(key, fmt.Sprintf("%v", v)))
	}
}

// Write sends task output to the renderer, or records it as a span event
// when there is none.
func (s *OTelSpan) Write(p []byte) (int, error) {
	if s.batcher != nil {
		return s.batcher.Write(p)
	}
	s.span.AddEvent("log", trace.WithAttributes(attribute.String("message", string(p))))
	return len(p), nil
}
