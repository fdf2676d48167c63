// Package graph orders workflow nodes so that every node runs after the nodes
// it depends on.
package graph

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dukex/nodeflow/pkg/models"
)

// ErrCyclicGraph is matched by every CyclicGraphError.
var ErrCyclicGraph = errors.New("workflow contains a cycle")

// CyclicGraphError reports the nodes that could not be ordered.
type CyclicGraphError struct {
	NodeIDs []string
}

func (e *CyclicGraphError) Error() string {
	return fmt.Sprintf("%v: unresolved nodes [%s]", ErrCyclicGraph, strings.Join(e.NodeIDs, ", "))
}

func (e *CyclicGraphError) Is(target error) bool {
	return target == ErrCyclicGraph
}

// Sort returns nodes in dependency order using Kahn's algorithm.
//
// Ties are broken by input order, so the result is deterministic for a given
// input. Nodes that no connection touches are appended after the ordered
// nodes, and connections that reference unknown node ids are ignored. With no
// connections the input order is returned. A repeated node id keeps only its
// first occurrence.
func Sort(nodes []*models.Node, connections []*models.Connection) ([]*models.Node, error) {
	position := make(map[string]int, len(nodes))
	for i, node := range nodes {
		if _, seen := position[node.ID]; !seen {
			position[node.ID] = i
		}
	}

	if len(connections) == 0 {
		sorted := make([]*models.Node, 0, len(position))

		for i, node := range nodes {
			if position[node.ID] == i {
				sorted = append(sorted, node)
			}
		}

		return sorted, nil
	}

	inDegree := make(map[string]int, len(nodes))
	successors := make(map[string][]string, len(nodes))
	connected := make(map[string]bool, len(nodes))

	for _, conn := range connections {
		_, fromKnown := position[conn.FromNodeID]
		_, toKnown := position[conn.ToNodeID]

		if !fromKnown || !toKnown {
			continue
		}

		successors[conn.FromNodeID] = append(successors[conn.FromNodeID], conn.ToNodeID)
		inDegree[conn.ToNodeID]++
		connected[conn.FromNodeID] = true
		connected[conn.ToNodeID] = true
	}

	// ready holds input positions of nodes with no pending predecessors,
	// kept sorted so the earliest input node is taken first.
	ready := make([]int, 0, len(nodes))

	for i, node := range nodes {
		if connected[node.ID] && inDegree[node.ID] == 0 && position[node.ID] == i {
			ready = append(ready, i)
		}
	}

	sorted := make([]*models.Node, 0, len(nodes))

	for len(ready) > 0 {
		current := nodes[ready[0]]
		ready = ready[1:]

		sorted = append(sorted, current)

		for _, next := range successors[current.ID] {
			inDegree[next]--
			if inDegree[next] == 0 {
				ready = insertSorted(ready, position[next])
			}
		}
	}

	var unresolved []string

	for i, node := range nodes {
		if connected[node.ID] && inDegree[node.ID] > 0 && position[node.ID] == i {
			unresolved = append(unresolved, node.ID)
		}
	}

	if len(unresolved) > 0 {
		return nil, &CyclicGraphError{NodeIDs: unresolved}
	}

	for i, node := range nodes {
		if !connected[node.ID] && position[node.ID] == i {
			sorted = append(sorted, node)
		}
	}

	return sorted, nil
}

func insertSorted(queue []int, value int) []int {
	idx := len(queue)

	for i, existing := range queue {
		if value < existing {
			idx = i

			break
		}
	}

	queue = append(queue, 0)
	copy(queue[idx+1:], queue[idx:])
	queue[idx] = value

	return queue
}
