package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// NodeType tags the kind of a node. The set is closed: every value handled by
// the engine is listed in AllNodeTypes.
type NodeType string

const (
	NodeTypeInitial           NodeType = "INITIAL"
	NodeTypeManualTrigger     NodeType = "MANUAL_TRIGGER"
	NodeTypeGoogleFormTrigger NodeType = "GOOGLE_FORM_TRIGGER"
	NodeTypeStripeTrigger     NodeType = "STRIPE_TRIGGER"
	NodeTypeHTTPRequest       NodeType = "HTTP_REQUEST"
	NodeTypeGemini            NodeType = "GEMINI"
	NodeTypeOpenAI            NodeType = "OPENAI"
	NodeTypeAnthropic         NodeType = "ANTHROPIC"
	NodeTypeGrok              NodeType = "GROK"
	NodeTypeDeepSeek          NodeType = "DEEPSEEK"
	NodeTypeDiscord           NodeType = "DISCORD"
	NodeTypeSlack             NodeType = "SLACK"
)

// AllNodeTypes lists every known node type in declaration order.
func AllNodeTypes() []NodeType {
	return []NodeType{
		NodeTypeInitial,
		NodeTypeManualTrigger,
		NodeTypeGoogleFormTrigger,
		NodeTypeStripeTrigger,
		NodeTypeHTTPRequest,
		NodeTypeGemini,
		NodeTypeOpenAI,
		NodeTypeAnthropic,
		NodeTypeGrok,
		NodeTypeDeepSeek,
		NodeTypeDiscord,
		NodeTypeSlack,
	}
}

// IsKnown reports whether t is part of the closed enumeration.
func (t NodeType) IsKnown() bool {
	for _, known := range AllNodeTypes() {
		if t == known {
			return true
		}
	}

	return false
}

// IsTrigger reports whether the node type starts a run.
func (t NodeType) IsTrigger() bool {
	switch t {
	case NodeTypeInitial, NodeTypeManualTrigger, NodeTypeGoogleFormTrigger, NodeTypeStripeTrigger:
		return true
	default:
		return false
	}
}

// IsAI reports whether the node type calls a language model provider.
func (t NodeType) IsAI() bool {
	switch t {
	case NodeTypeGemini, NodeTypeOpenAI, NodeTypeAnthropic, NodeTypeGrok, NodeTypeDeepSeek:
		return true
	default:
		return false
	}
}

// Position is the editor placement of a node. It has no effect on execution.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is one step of a workflow graph.
type Node struct {
	ID         string    `json:"id"          validate:"required"`
	WorkflowID string    `json:"workflow_id"`
	Name       string    `json:"name"`
	Type       NodeType  `json:"type"        validate:"required"`
	Position   Position  `json:"position"`
	Data       NodeData  `json:"data"`
	CreatedAt  time.Time `json:"created_at"`
}

// UnmarshalJSON decodes the node and its type-specific data payload.
func (n *Node) UnmarshalJSON(raw []byte) error {
	type plainNode Node

	aux := struct {
		*plainNode

		Data json.RawMessage `json:"data"`
	}{plainNode: (*plainNode)(n)}

	if err := json.Unmarshal(raw, &aux); err != nil {
		return err
	}

	data, err := DecodeNodeData(n.Type, aux.Data)
	if err != nil {
		return fmt.Errorf("node %s: %w", n.ID, err)
	}

	n.Data = data

	return nil
}
