// Package testutil provides test data builders and utilities for testing.
package testutil

import (
	"github.com/dukex/nodeflow/pkg/models"
	"github.com/google/uuid"
)

// CreateTestNode creates a manual trigger node with default values that can be overridden.
func CreateTestNode(overrides ...func(*models.Node)) *models.Node {
	node := &models.Node{
		ID:       uuid.New().String(),
		Name:     "Test Node",
		Type:     models.NodeTypeManualTrigger,
		Position: models.Position{X: 100, Y: 200},
		Data:     models.TriggerData{},
	}

	for _, override := range overrides {
		override(node)
	}

	return node
}

// WithID sets the node id.
func WithID(id string) func(*models.Node) {
	return func(n *models.Node) {
		n.ID = id
	}
}

// WithName sets the node name.
func WithName(name string) func(*models.Node) {
	return func(n *models.Node) {
		n.Name = name
	}
}

// WithType sets the node type and resets the data to the empty variant for it.
func WithType(nodeType models.NodeType) func(*models.Node) {
	return func(n *models.Node) {
		n.Type = nodeType
		n.Data, _ = models.DecodeNodeData(nodeType, nil)
	}
}

// WithData sets the node data.
func WithData(data models.NodeData) func(*models.Node) {
	return func(n *models.Node) {
		n.Data = data
	}
}

// WithHTTPRequest configures the node as an HTTP_REQUEST node.
func WithHTTPRequest(variableName, method, endpoint string) func(*models.Node) {
	return func(n *models.Node) {
		n.Type = models.NodeTypeHTTPRequest
		n.Data = models.HTTPRequestData{
			VariableName: variableName,
			Method:       method,
			Endpoint:     endpoint,
		}
	}
}

// WithPosition sets the node position.
func WithPosition(x, y float64) func(*models.Node) {
	return func(n *models.Node) {
		n.Position = models.Position{X: x, Y: y}
	}
}
