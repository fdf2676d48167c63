package testutil

import (
	"fmt"

	"github.com/dukex/nodeflow/pkg/models"
	"github.com/google/uuid"
)

// CreateTestWorkflow builds a workflow owned by "user-1" holding the given nodes.
func CreateTestWorkflow(nodes ...*models.Node) *models.Workflow {
	workflow := &models.Workflow{
		ID:     uuid.New().String(),
		Name:   "Test Workflow",
		UserID: "user-1",
		Nodes:  nodes,
	}
	workflow.Adopt()

	return workflow
}

// Chain connects the nodes of the workflow in slice order.
func Chain(workflow *models.Workflow) *models.Workflow {
	for i := 1; i < len(workflow.Nodes); i++ {
		workflow.Connections = append(workflow.Connections, models.NewConnection(
			fmt.Sprintf("conn-%d", i),
			workflow.ID,
			workflow.Nodes[i-1].ID,
			workflow.Nodes[i].ID,
		))
	}

	return workflow
}

// Connect adds a connection from one node to another.
func Connect(workflow *models.Workflow, from, to string) *models.Workflow {
	workflow.Connections = append(workflow.Connections, models.NewConnection(
		fmt.Sprintf("conn-%s-%s", from, to),
		workflow.ID,
		from,
		to,
	))

	return workflow
}
