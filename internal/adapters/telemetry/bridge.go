package telemetry

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
)

var _ sdktrace.SpanProcessor = (*Bridge)(nil)

// Bridge is a span processor that turns task spans into renderer events.
// Spans are forwarded synchronously, so the renderer sees them in order.
type Bridge struct {
	renderer ports.Renderer
}

// NewBridge returns a Bridge feeding renderer. A nil renderer drops every span.
func NewBridge(renderer ports.Renderer) *Bridge {
	return &Bridge{renderer: renderer}
}

// OnStart reports the task start with the id of its parent span, if any.
func (b *Bridge) OnStart(parent context.Context, s sdktrace.ReadWriteSpan) {
	id, ok := b.spanID(s)
	if !ok {
		return
	}

	parentID := ""
	if p := trace.SpanContextFromContext(parent); p.IsValid() {
		parentID = p.SpanID().String()
	}
	b.renderer.OnTaskStart(id, parentID, s.Name(), s.StartTime())
}

// OnEnd reports the task outcome.
func (b *Bridge) OnEnd(s sdktrace.ReadOnlySpan) {
	id, ok := b.spanID(s)
	if !ok {
		return
	}
	b.renderer.OnTaskComplete(id, s.EndTime(), outcome(s))
}

// ForceFlush does nothing; spans are never buffered.
func (b *Bridge) ForceFlush(context.Context) error { return nil }

// Shutdown does nothing.
func (b *Bridge) Shutdown(context.Context) error { return nil }

func (b *Bridge) spanID(s sdktrace.ReadOnlySpan) (string, bool) {
	if b.renderer == nil || !s.SpanContext().IsValid() {
		return "", false
	}
	return s.SpanContext().SpanID().String(), true
}

// outcome rebuilds the task error from the span status. A failure marked
// with ports.AttrRecovered is joined with domain.ErrTaskRecovered.
func outcome(s sdktrace.ReadOnlySpan) error {
	status := s.Status()
	if status.Code != codes.Error {
		return nil
	}

	msg := status.Description
	if msg == "" {
		msg = domain.ErrTaskExecutionFailed.Error()
	}
	err := errors.New(msg)

	for _, attr := range s.Attributes() {
		if string(attr.Key) == ports.AttrRecovered && attr.Value.AsBool() {
			return errors.Join(domain.ErrTaskRecovered, err)
		}
	}
	return err
}
