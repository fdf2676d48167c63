package workflow

import (
	"context"

	"github.com/dukex/nodeflow/pkg/otelhelper"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// tracedSteps runs every executor step inside its own span.
type tracedSteps struct {
	tracer trace.Tracer
	nodeID string
}

func (s tracedSteps) Run(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := otelhelper.StartSpan(ctx, s.tracer, "step."+name,
		attribute.String(otelhelper.NodeIDKey, s.nodeID),
		attribute.String(otelhelper.StepNameKey, name),
	)
	defer span.End()

	err := fn(ctx)
	if err != nil {
		otelhelper.SetError(span, err)
	}

	return err
}
