package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dukex/nodeflow/pkg/broadcast"
	"github.com/dukex/nodeflow/pkg/log"
	"github.com/dukex/nodeflow/pkg/models"
	"github.com/dukex/nodeflow/pkg/registry"
	"github.com/dukex/nodeflow/pkg/workflow"
	"github.com/google/uuid"
	cli "github.com/urfave/cli/v3"
)

const defaultPort = 9091

var errMissingArgument = errors.New("missing argument")

func NewAPICommand() *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Serve the HTTP API and webhooks",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			logger := log.WithModule("api")
			logger.InfoContext(ctx, "Initializing Nodeflow API")

			rt, err := newRuntime(ctx, command, logger)
			if err != nil {
				return err
			}
			defer rt.Close(ctx)

			api := NewAPI(logger, rt.persistence, rt.executor, rt.metrics, rt.registry)

			return api.Start(int(command.Int("port")))
		},
	}
}

func NewRunCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Execute a workflow once and print its final context",
		ArgsUsage: "<workflow-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "trigger-event-id",
				Usage: "Trigger event id (generated if empty)",
			},
			&cli.StringFlag{
				Name:  "data",
				Usage: "Initial context as a JSON object",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			workflowID := command.Args().First()
			if workflowID == "" {
				return fmt.Errorf("%w: workflow id", errMissingArgument)
			}

			var initial map[string]any

			if raw := command.String("data"); raw != "" {
				if err := json.Unmarshal([]byte(raw), &initial); err != nil {
					return fmt.Errorf("invalid --data: %w", err)
				}
			}

			logger := log.WithModule("run")

			rt, err := newRuntime(ctx, command, logger)
			if err != nil {
				return err
			}
			defer rt.Close(ctx)

			result, err := rt.executor.Execute(ctx, workflow.Request{
				WorkflowID:     workflowID,
				TriggerEventID: command.String("trigger-event-id"),
				InitialData:    initial,
			})
			if err != nil {
				fmt.Fprintln(command.Root().ErrWriter, workflow.ErrorStack(err))

				return err
			}

			return printJSON(command.Root().Writer, result.FinalContext)
		},
	}
}

func NewImportCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Validate and store a workflow document",
		ArgsUsage: "<file.json>",
		Action: func(ctx context.Context, command *cli.Command) error {
			wf, err := readWorkflowDocument(command.Args().First())
			if err != nil {
				return err
			}

			logger := log.WithModule("import")

			rt, err := newRuntime(ctx, command, logger)
			if err != nil {
				return err
			}
			defer rt.Close(ctx)

			if wf.ID == "" {
				wf.ID = uuid.NewString()
			}

			wf.Adopt()

			if err := rt.persistence.WorkflowRepository().Save(ctx, wf); err != nil {
				return fmt.Errorf("failed to save workflow: %w", err)
			}

			logger.InfoContext(ctx, "Workflow imported", "workflow_id", wf.ID, "nodes", len(wf.Nodes))
			fmt.Fprintln(command.Root().Writer, wf.ID)

			return nil
		},
	}
}

func NewValidateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Aliases:   []string{"v"},
		Usage:     "Check a workflow document without storing it",
		ArgsUsage: "<file.json>",
		Action: func(_ context.Context, command *cli.Command) error {
			wf, err := readWorkflowDocument(command.Args().First())
			if err != nil {
				return err
			}

			fmt.Fprintf(command.Root().Writer, "workflow %s is valid: %d nodes, %d connections\n",
				wf.ID, len(wf.Nodes), len(wf.Connections))

			return nil
		},
	}
}

func NewWatchCommand() *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Usage:     "Print the node status snapshots of a workflow as they are broadcast",
		ArgsUsage: "<workflow-id>",
		Action: func(ctx context.Context, command *cli.Command) error {
			workflowID := command.Args().First()
			if workflowID == "" {
				return fmt.Errorf("%w: workflow id", errMissingArgument)
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger := log.WithModule("watch")

			rt, err := newRuntime(ctx, command, logger)
			if err != nil {
				return err
			}
			defer rt.Close(context.WithoutCancel(ctx))

			messages, err := rt.broadcaster.Subscribe(ctx, broadcast.WorkflowChannel(workflowID))
			if err != nil {
				return fmt.Errorf("failed to subscribe: %w", err)
			}

			for msg := range messages {
				var snapshot map[string]models.NodeExecution
				if err := msg.Decode(&snapshot); err != nil {
					logger.WarnContext(ctx, "Skipping undecodable message", "error", err)

					continue
				}

				if err := printJSON(command.Root().Writer, snapshot); err != nil {
					return err
				}
			}

			return nil
		},
	}
}

func NewScheduleCommand() *cli.Command {
	return &cli.Command{
		Name:  "schedule",
		Usage: "Run workflows whose manual trigger carries a cron schedule",
		Action: func(ctx context.Context, command *cli.Command) error {
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger := log.WithModule("schedule")

			rt, err := newRuntime(ctx, command, logger)
			if err != nil {
				return err
			}
			defer rt.Close(context.WithoutCancel(ctx))

			runner := workflow.NewRunner(rt.executor, logger)
			scheduler := workflow.NewScheduler(rt.persistence.WorkflowRepository(), runner, rt.metrics, logger)

			count, err := scheduler.Load(ctx)
			if err != nil {
				return err
			}

			logger.InfoContext(ctx, "Scheduler started", "schedules", count)
			scheduler.Start()

			<-ctx.Done()

			logger.InfoContext(ctx, "Stopping scheduler")
			<-scheduler.Stop().Done()
			runner.Wait()

			return nil
		},
	}
}

func readWorkflowDocument(path string) (*models.Workflow, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: workflow document path", errMissingArgument)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow document: %w", err)
	}

	return registry.ValidateWorkflowDocument(raw)
}

func printJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	return encoder.Encode(v)
}
