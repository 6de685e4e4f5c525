package ports

import (
	"context"
	"io"
)

//go:generate mockgen -source=telemetry.go -destination=mocks/mock_telemetry.go -package=mocks

// Tracer is the entry point for creating spans.
type Tracer interface {
	// Start creates a new span.
	Start(ctx context.Context, name string, opts ...SpanOption) (context.Context, Span)
	// EmitPlan signals that a graph is planned for execution, layered into groups.
	EmitPlan(ctx context.Context, graph string, groups [][]string)
}

// Span represents a unit of work.
type Span interface {
	io.Writer
	// End completes the span.
	End()
	// RecordError records an error for the span.
	RecordError(err error)
	// SetAttribute adds a key-value pair to the span.
	SetAttribute(key string, value any)
}

// AttrRecovered is the span attribute set on a failed task whose failure was
// recovered instead of aborting the graph.
const AttrRecovered = "kiln.recovered"

// SpanConfig holds configuration for a starting span.
type SpanConfig struct {
	// Graph is the name of the graph the span belongs to.
	Graph string
}

// SpanOption is a functional option for configuring a span.
type SpanOption func(*SpanConfig)

// WithGraph tags the span with the graph it belongs to.
func WithGraph(name string) SpanOption {
	return func(c *SpanConfig) {
		c.Graph = name
	}
}
