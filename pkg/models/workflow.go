// Package models defines the core domain models for node-based workflow execution.
package models

import (
	"fmt"
	"time"
)

// Workflow is a user-owned graph of nodes joined by directed connections.
type Workflow struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"       validate:"required"`
	UserID      string        `json:"user_id"    validate:"required"`
	Nodes       []*Node       `json:"nodes"`
	Connections []*Connection `json:"connections"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// NodeByID returns the node with the given id, if present.
func (w *Workflow) NodeByID(id string) (*Node, bool) {
	for _, node := range w.Nodes {
		if node.ID == id {
			return node, true
		}
	}

	return nil, false
}

// Validate checks the structural invariants of the graph: node ids are unique
// and every connection joins two nodes of this workflow.
func (w *Workflow) Validate() error {
	seen := make(map[string]bool, len(w.Nodes))

	for _, node := range w.Nodes {
		if node.ID == "" {
			return fmt.Errorf("workflow %s has a node without id", w.ID)
		}

		if seen[node.ID] {
			return fmt.Errorf("workflow %s has duplicate node id %s", w.ID, node.ID)
		}

		if node.WorkflowID != "" && node.WorkflowID != w.ID {
			return fmt.Errorf("node %s belongs to workflow %s, not %s", node.ID, node.WorkflowID, w.ID)
		}

		seen[node.ID] = true
	}

	for _, conn := range w.Connections {
		if conn.WorkflowID != "" && conn.WorkflowID != w.ID {
			return fmt.Errorf("connection %s belongs to workflow %s, not %s", conn.ID, conn.WorkflowID, w.ID)
		}

		if !seen[conn.FromNodeID] {
			return fmt.Errorf("connection %s references unknown source node %s", conn.ID, conn.FromNodeID)
		}

		if !seen[conn.ToNodeID] {
			return fmt.Errorf("connection %s references unknown target node %s", conn.ID, conn.ToNodeID)
		}
	}

	return nil
}

// Adopt stamps the workflow id onto every node and connection and fills in
// default connection ports.
func (w *Workflow) Adopt() {
	for _, node := range w.Nodes {
		node.WorkflowID = w.ID
	}

	for _, conn := range w.Connections {
		conn.WorkflowID = w.ID
		conn.FromOutput, conn.ToInput = conn.Ports()
	}
}
