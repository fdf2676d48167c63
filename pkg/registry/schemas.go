package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dukex/nodeflow/pkg/graph"
	"github.com/dukex/nodeflow/pkg/models"
	nodeai "github.com/dukex/nodeflow/pkg/nodes/ai"
	"github.com/dukex/nodeflow/pkg/nodes/httprequest"
	"github.com/dukex/nodeflow/pkg/nodes/messaging"
	"github.com/dukex/nodeflow/pkg/nodes/trigger"
	"github.com/xeipuuv/gojsonschema"
)

// Category groups node types for editors.
type Category string

const (
	CategoryTrigger Category = "trigger"
	CategoryAction  Category = "action"
)

// NodeTypeInfo describes one node type.
type NodeTypeInfo struct {
	Type        models.NodeType `json:"type"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    Category        `json:"category"`
	Schema      map[string]any  `json:"schema"`
}

// Catalogue lists every node type with the JSON schema of its data.
func Catalogue() []NodeTypeInfo {
	types := models.AllNodeTypes()
	infos := make([]NodeTypeInfo, 0, len(types))

	for _, nodeType := range types {
		info, _ := describe(nodeType)
		infos = append(infos, info)
	}

	return infos
}

func describe(nodeType models.NodeType) (NodeTypeInfo, bool) {
	info := NodeTypeInfo{Type: nodeType, Category: CategoryAction}

	switch nodeType {
	case models.NodeTypeInitial:
		info.Name, info.Description = "Initial", "Placeholder start node of a new workflow"
	case models.NodeTypeManualTrigger:
		info.Name, info.Description = "Manual Trigger", "Starts the workflow on demand or on a cron schedule"
	case models.NodeTypeGoogleFormTrigger:
		info.Name, info.Description = "Google Form Trigger", "Starts the workflow when a Google Form is submitted"
	case models.NodeTypeStripeTrigger:
		info.Name, info.Description = "Stripe Trigger", "Starts the workflow when a Stripe event is received"
	case models.NodeTypeHTTPRequest:
		info.Name, info.Description = "HTTP Request", "Calls an HTTP endpoint and stores the response"
		info.Schema = httprequest.Schema()
	case models.NodeTypeGemini:
		info.Name, info.Description = "Gemini", "Generates text with Google Gemini"
	case models.NodeTypeOpenAI:
		info.Name, info.Description = "OpenAI", "Generates text with OpenAI"
	case models.NodeTypeAnthropic:
		info.Name, info.Description = "Anthropic", "Generates text with Anthropic Claude"
	case models.NodeTypeGrok:
		info.Name, info.Description = "Grok", "Generates text with xAI Grok"
	case models.NodeTypeDeepSeek:
		info.Name, info.Description = "DeepSeek", "Generates text with DeepSeek"
	case models.NodeTypeDiscord:
		info.Name, info.Description = "Discord", "Posts a message to a Discord webhook"
		info.Schema = messaging.DiscordSchema()
	case models.NodeTypeSlack:
		info.Name, info.Description = "Slack", "Posts a message to a Slack webhook"
		info.Schema = messaging.SlackSchema()
	default:
		return info, false
	}

	switch {
	case nodeType.IsTrigger():
		info.Category = CategoryTrigger
		info.Schema = trigger.Schema()
	case nodeType.IsAI():
		info.Schema = nodeai.Schema()
	}

	return info, true
}

// SchemaFor returns the JSON schema of nodeType's data.
func SchemaFor(nodeType models.NodeType) (map[string]any, error) {
	info, ok := describe(nodeType)
	if !ok {
		return nil, &UnknownNodeTypeError{Type: nodeType}
	}

	return info.Schema, nil
}

// ValidateNodeData checks a raw node data payload against the schema of nodeType.
func ValidateNodeData(nodeType models.NodeType, data map[string]any) error {
	schema, err := SchemaFor(nodeType)
	if err != nil {
		return err
	}

	if data == nil {
		data = map[string]any{}
	}

	result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(schema), gojsonschema.NewGoLoader(data))
	if err != nil {
		return fmt.Errorf("failed to validate %s data: %w", nodeType, err)
	}

	if result.Valid() {
		return nil
	}

	messages := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		messages = append(messages, desc.String())
	}

	return fmt.Errorf("invalid %s data: %s", nodeType, strings.Join(messages, "; "))
}

type documentNode struct {
	ID   string          `json:"id"`
	Type models.NodeType `json:"type"`
	Data map[string]any  `json:"data"`
}

type document struct {
	Nodes []documentNode `json:"nodes"`
}

// ValidateWorkflowDocument checks a workflow JSON document: every node's data
// against its schema, the references between nodes and connections, and the
// absence of cycles. All problems found are returned joined.
func ValidateWorkflowDocument(raw []byte) (*models.Workflow, error) {
	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("invalid workflow document: %w", err)
	}

	var errs []error

	for _, node := range doc.Nodes {
		if err := ValidateNodeData(node.Type, node.Data); err != nil {
			errs = append(errs, fmt.Errorf("node %s: %w", node.ID, err))
		}
	}

	var workflow models.Workflow
	if err := json.Unmarshal(raw, &workflow); err != nil {
		return nil, errors.Join(append(errs, fmt.Errorf("invalid workflow document: %w", err))...)
	}

	if err := workflow.Validate(); err != nil {
		errs = append(errs, err)
	}

	if _, err := graph.Sort(workflow.Nodes, workflow.Connections); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return &workflow, nil
}
