package models

// DefaultPort is the port name used when a connection does not name one.
const DefaultPort = "main"

// Connection is a directed dependency edge: ToNodeID executes after FromNodeID.
type Connection struct {
	ID         string `json:"id"`
	WorkflowID string `json:"workflow_id"`
	FromNodeID string `json:"from_node_id" validate:"required"`
	ToNodeID   string `json:"to_node_id"   validate:"required"`
	FromOutput string `json:"from_output"`
	ToInput    string `json:"to_input"`
}

// NewConnection builds a connection between the main ports of two nodes.
func NewConnection(id, workflowID, fromNodeID, toNodeID string) *Connection {
	return &Connection{
		ID:         id,
		WorkflowID: workflowID,
		FromNodeID: fromNodeID,
		ToNodeID:   toNodeID,
		FromOutput: DefaultPort,
		ToInput:    DefaultPort,
	}
}

// Ports returns the output and input port names, defaulting empty ones to "main".
func (c *Connection) Ports() (string, string) {
	from, to := c.FromOutput, c.ToInput
	if from == "" {
		from = DefaultPort
	}

	if to == "" {
		to = DefaultPort
	}

	return from, to
}
