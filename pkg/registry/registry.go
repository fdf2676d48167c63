// Package registry maps node types to their executors and describes the
// configuration each node type accepts.
package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/dukex/nodeflow/pkg/models"
	nodeai "github.com/dukex/nodeflow/pkg/nodes/ai"
	"github.com/dukex/nodeflow/pkg/nodes/httprequest"
	"github.com/dukex/nodeflow/pkg/nodes/messaging"
	"github.com/dukex/nodeflow/pkg/nodes/trigger"
	"github.com/dukex/nodeflow/pkg/protocol"
)

// ErrUnknownNodeType is matched by every UnknownNodeTypeError.
var ErrUnknownNodeType = errors.New("unknown node type")

// UnknownNodeTypeError reports a node type with no executor.
type UnknownNodeTypeError struct {
	Type models.NodeType
}

func (e *UnknownNodeTypeError) Error() string {
	return fmt.Sprintf("%v: %q", ErrUnknownNodeType, string(e.Type))
}

func (e *UnknownNodeTypeError) Is(target error) bool {
	return target == ErrUnknownNodeType
}

// Dependencies are the shared resources executors are built from.
type Dependencies struct {
	Logger      *slog.Logger
	HTTPClient  *http.Client
	Providers   nodeai.ProviderSource
	Credentials protocol.CredentialStore
}

// Registry resolves node types to executors. It is safe for concurrent use
// once built.
type Registry struct {
	logger      *slog.Logger
	trigger     *trigger.Executor
	httpRequest *httprequest.Executor
	discord     *messaging.Discord
	slack       *messaging.Slack
	ai          map[models.NodeType]*nodeai.Executor
}

// NewRegistry builds an executor for every known node type.
func NewRegistry(deps Dependencies) *Registry {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := &Registry{
		logger:      logger.With("module", "registry"),
		trigger:     trigger.NewExecutor(),
		httpRequest: httprequest.NewExecutor(deps.HTTPClient),
		discord:     messaging.NewDiscord(deps.HTTPClient),
		slack:       messaging.NewSlack(deps.HTTPClient),
		ai:          make(map[models.NodeType]*nodeai.Executor),
	}

	for _, nodeType := range models.AllNodeTypes() {
		if !nodeType.IsAI() {
			continue
		}

		executor, err := nodeai.NewExecutor(nodeType, deps.Providers, deps.Credentials)
		if err != nil {
			// AllNodeTypes and IsAI agree, so this only fires on a programming error.
			panic(err)
		}

		r.ai[nodeType] = executor
	}

	return r
}

// Lookup returns the executor for nodeType.
func (r *Registry) Lookup(nodeType models.NodeType) (protocol.Executor, error) {
	switch nodeType {
	case models.NodeTypeInitial, models.NodeTypeManualTrigger, models.NodeTypeGoogleFormTrigger, models.NodeTypeStripeTrigger:
		return r.trigger, nil
	case models.NodeTypeHTTPRequest:
		return r.httpRequest, nil
	case models.NodeTypeGemini, models.NodeTypeOpenAI, models.NodeTypeAnthropic, models.NodeTypeGrok, models.NodeTypeDeepSeek:
		return r.ai[nodeType], nil
	case models.NodeTypeDiscord:
		return r.discord, nil
	case models.NodeTypeSlack:
		return r.slack, nil
	default:
		r.logger.Warn("No executor for node type", "node_type", string(nodeType))

		return nil, &UnknownNodeTypeError{Type: nodeType}
	}
}
