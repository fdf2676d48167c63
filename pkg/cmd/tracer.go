package cmd

import (
	"context"

	"github.com/dukex/nodeflow/pkg/otelhelper"
	"go.opentelemetry.io/otel/trace"
)

// NewTracer exports spans over OTLP when enabled and discards them otherwise.
//
// nolint:ireturn
func NewTracer(ctx context.Context, enabled bool, cfg otelhelper.Config) (trace.Tracer, otelhelper.ShutdownFunc, error) {
	if !enabled {
		return otelhelper.NewNoopTracer(), func(context.Context) error { return nil }, nil
	}

	return otelhelper.NewTracer(ctx, cfg)
}
