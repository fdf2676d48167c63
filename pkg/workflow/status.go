package workflow

import (
	"time"

	"github.com/dukex/nodeflow/pkg/models"
)

// statusBoard is the per-run node status map. Only the goroutine running the
// workflow touches it.
type statusBoard struct {
	nodes map[string]models.NodeExecution
}

func newStatusBoard(nodes []*models.Node) *statusBoard {
	board := &statusBoard{nodes: make(map[string]models.NodeExecution, len(nodes))}

	for _, node := range nodes {
		board.nodes[node.ID] = models.NodeExecution{NodeID: node.ID, Status: models.NodeStatusInitial}
	}

	return board
}

func (b *statusBoard) start(nodeID string, at time.Time) {
	b.nodes[nodeID] = models.NodeExecution{
		NodeID:    nodeID,
		Status:    models.NodeStatusLoading,
		StartedAt: &at,
	}
}

func (b *statusBoard) succeed(nodeID string, at time.Time) {
	entry := b.nodes[nodeID]
	entry.Status = models.NodeStatusSuccess
	entry.CompletedAt = &at
	b.nodes[nodeID] = entry
}

func (b *statusBoard) fail(nodeID string, at time.Time, err error) {
	entry := b.nodes[nodeID]
	entry.Status = models.NodeStatusError
	entry.CompletedAt = &at
	entry.Error = err.Error()
	b.nodes[nodeID] = entry
}

// snapshot copies the board so publishers may hold on to it.
func (b *statusBoard) snapshot() map[string]models.NodeExecution {
	out := make(map[string]models.NodeExecution, len(b.nodes))
	for id, entry := range b.nodes {
		out[id] = entry
	}

	return out
}
