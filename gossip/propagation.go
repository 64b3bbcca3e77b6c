package gossip

import "fmt"

// PropagationRecord describes how and when the rumor reached one participant.
// Predecessor is nil only for the source.
type PropagationRecord struct {
	ParticipantID int  `json:"participantId"`
	Distance      int  `json:"distanceFromSource"`
	Predecessor   *int `json:"predecessorId"`
}

type hop struct {
	node        int
	distance    int
	predecessor *int
}

// Propagate runs a breadth-first spread of the rumor from source. The blocker
// is recorded when reached but never passes the rumor on, so part of the
// graph may stay unreached. Neighbors are visited in edge insertion order,
// which fixes the predecessor of nodes with several same-distance parents.
func Propagate(g *Graph, source, blocker int) ([]PropagationRecord, map[int]int, error) {
	if !g.Has(source) || !g.Has(blocker) {
		return nil, nil, fmt.Errorf("%w: source=%d blocker=%d", ErrInvalidParameters, source, blocker)
	}
	if source == blocker {
		return nil, nil, fmt.Errorf("%w: %d", ErrUnreachableBlocker, source)
	}

	adj := g.Adjacency()
	visited := make([]bool, len(adj))
	visited[source] = true

	records := make([]PropagationRecord, 0, len(adj))
	parentOf := make(map[int]int, len(adj))
	queue := []hop{{node: source}}

	for len(queue) > 0 {
		h := queue[0]
		queue = queue[1:]

		records = append(records, PropagationRecord{
			ParticipantID: h.node,
			Distance:      h.distance,
			Predecessor:   h.predecessor,
		})
		if h.predecessor != nil {
			parentOf[h.node] = *h.predecessor
		}
		if h.node == blocker {
			continue
		}

		for _, next := range adj[h.node] {
			if visited[next] {
				continue
			}
			visited[next] = true
			from := h.node
			queue = append(queue, hop{node: next, distance: h.distance + 1, predecessor: &from})
		}
	}
	return records, parentOf, nil
}
