package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dukex/nodeflow/pkg/broadcast"
	"github.com/dukex/nodeflow/pkg/cmd"
	"github.com/dukex/nodeflow/pkg/metrics"
	"github.com/dukex/nodeflow/pkg/otelhelper"
	"github.com/dukex/nodeflow/pkg/persistence"
	"github.com/dukex/nodeflow/pkg/workflow"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	cli "github.com/urfave/cli/v3"
)

// runtime holds what every subcommand builds from the global flags.
type runtime struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	broadcaster broadcast.Broadcaster
	registry    *prometheus.Registry
	metrics     *metrics.Engine
	executor    *workflow.Executor
	shutdown    otelhelper.ShutdownFunc
}

func newRuntime(ctx context.Context, command *cli.Command, logger *slog.Logger) (*runtime, error) {
	p, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
	if err != nil {
		return nil, err
	}

	broadcaster, err := cmd.NewBroadcaster(cmd.BroadcastConfig{
		Provider:     command.String("broadcast"),
		RedisURL:     command.String("redis-url"),
		KafkaBrokers: command.String("kafka-brokers"),
	}, logger)
	if err != nil {
		_ = p.Close(ctx)

		return nil, err
	}

	tracer, shutdown, err := cmd.NewTracer(ctx, command.Bool("otel-enabled"), otelhelper.Config{
		ServiceName: "nodeflow",
		SampleRatio: command.Float("otel-sample-ratio"),
	})
	if err != nil {
		_ = broadcaster.Close()
		_ = p.Close(ctx)

		return nil, fmt.Errorf("failed to initialize tracer: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	engine := metrics.NewEngine(reg)

	executor := workflow.NewExecutor(p, cmd.NewRegistry(logger, p, command.Duration("http-timeout")),
		workflow.WithPublisher(broadcaster),
		workflow.WithTracer(tracer),
		workflow.WithMetrics(engine),
		workflow.WithLogger(logger),
	)

	return &runtime{
		logger:      logger,
		persistence: p,
		broadcaster: broadcaster,
		registry:    reg,
		metrics:     engine,
		executor:    executor,
		shutdown:    shutdown,
	}, nil
}

func (r *runtime) Close(ctx context.Context) {
	if err := r.shutdown(ctx); err != nil {
		r.logger.ErrorContext(ctx, "Failed to shutdown tracer provider", "error", err)
	}

	if err := r.broadcaster.Close(); err != nil {
		r.logger.ErrorContext(ctx, "Failed to close broadcaster", "error", err)
	}

	if err := r.persistence.Close(ctx); err != nil {
		r.logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
	}
}
