// Package protocol defines the contract between the workflow engine and the
// node executors it runs.
package protocol

import (
	"context"

	"github.com/dukex/nodeflow/pkg/models"
	"github.com/dukex/nodeflow/pkg/template"
)

// Executor runs one node. It receives the context accumulated so far and
// returns the full, updated context. On failure it returns a *WorkflowError
// and the engine stops the run.
type Executor interface {
	Execute(ctx context.Context, input Input) (template.Context, error)
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, input Input) (template.Context, error)

func (f ExecutorFunc) Execute(ctx context.Context, input Input) (template.Context, error) {
	return f(ctx, input)
}

// Input is everything an executor gets for one invocation.
type Input struct {
	NodeID    string
	NodeType  models.NodeType
	Data      models.NodeData
	Context   template.Context
	Step      StepRunner
	UserID    string
	Templates *template.Resolver
}

// StepRunner wraps a named unit of side-effecting work. Executors route every
// outbound call through it so the engine can trace and time it.
type StepRunner interface {
	Run(ctx context.Context, name string, fn func(context.Context) error) error
}

// StepRunnerFunc adapts a function to the StepRunner interface.
type StepRunnerFunc func(ctx context.Context, name string, fn func(context.Context) error) error

func (f StepRunnerFunc) Run(ctx context.Context, name string, fn func(context.Context) error) error {
	return f(ctx, name, fn)
}

// DirectStepRunner runs every step inline without instrumentation.
var DirectStepRunner StepRunner = StepRunnerFunc(func(ctx context.Context, _ string, fn func(context.Context) error) error {
	return fn(ctx)
})

// CredentialStore resolves a credential owned by a given user. Implementations
// return an error when the credential does not exist or belongs to someone else.
type CredentialStore interface {
	Credential(ctx context.Context, credentialID, userID string) (*models.Credential, error)
}

// Resolver returns the template resolver for this invocation, falling back to
// a resolver with the built-in helpers.
func (in Input) Resolver() *template.Resolver {
	if in.Templates == nil {
		return template.NewResolver()
	}

	return in.Templates
}

// Runner returns the step runner for this invocation, falling back to
// DirectStepRunner.
func (in Input) Runner() StepRunner {
	if in.Step == nil {
		return DirectStepRunner
	}

	return in.Step
}
