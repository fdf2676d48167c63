// Package main is the nodeflow command: the HTTP API, one-off runs, workflow
// import and validation, status watching and the cron scheduler.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dukex/nodeflow/pkg/log"
	cli "github.com/urfave/cli/v3"
)

func main() {
	err := newApp().Run(context.Background(), os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:                  "nodeflow",
		Usage:                 "Execute node-based workflows",
		EnableShellCompletion: true,
		Commands: []*cli.Command{
			NewAPICommand(),
			NewRunCommand(),
			NewImportCommand(),
			NewValidateCommand(),
			NewWatchCommand(),
			NewScheduleCommand(),
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "Database connection URL for persistence (file path or postgres://)",
				Value:   "./data",
				Sources: cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "broadcast",
				Usage:   "Status broadcast backend (none, memory, redis, kafka)",
				Value:   "none",
				Sources: cli.EnvVars("BROADCAST"),
			},
			&cli.StringFlag{
				Name:    "redis-url",
				Usage:   "Redis URL for the redis broadcast backend",
				Value:   "redis://localhost:6379/0",
				Sources: cli.EnvVars("REDIS_URL"),
			},
			&cli.StringFlag{
				Name:    "kafka-brokers",
				Usage:   "Comma separated Kafka brokers for the kafka broadcast backend",
				Sources: cli.EnvVars("KAFKA_BROKERS"),
			},
			&cli.DurationFlag{
				Name:    "http-timeout",
				Usage:   "Timeout of outgoing HTTP calls made by nodes",
				Value:   30 * time.Second,
				Sources: cli.EnvVars("HTTP_TIMEOUT"),
			},
			&cli.BoolFlag{
				Name:    "otel-enabled",
				Usage:   "Export traces over OTLP/HTTP",
				Sources: cli.EnvVars("OTEL_ENABLED"),
			},
			&cli.FloatFlag{
				Name:    "otel-sample-ratio",
				Usage:   "Fraction of runs traced when tracing is enabled",
				Value:   1,
				Sources: cli.EnvVars("OTEL_SAMPLE_RATIO"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Before: func(ctx context.Context, command *cli.Command) (context.Context, error) {
			log.Setup(command.String("log-level"))

			return ctx, nil
		},
	}
}
