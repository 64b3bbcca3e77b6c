package gossip

import (
	"fmt"
	"math/rand"
)

// Participant is a labeled node of the social graph.
type Participant struct {
	ID     int    `json:"id"`
	Label  string `json:"label"`
	Degree int    `json:"degree"`
}

// Edge is an undirected connection between two participants.
type Edge struct {
	Source int `json:"source"`
	Target int `json:"target"`
}

// Graph holds participants ordered by id and the edges in insertion order.
type Graph struct {
	Participants []Participant `json:"participants"`
	Edges        []Edge        `json:"edges"`
}

// GraphStats summarizes the degree distribution of a graph.
type GraphStats struct {
	TotalNodes int     `json:"totalNodes"`
	TotalEdges int     `json:"totalEdges"`
	AvgDegree  float64 `json:"avgDegree"`
	MaxDegree  int     `json:"maxDegree"`
	MinDegree  int     `json:"minDegree"`
}

// GenerateGraph builds a Barabási–Albert graph of n participants: a complete
// seed graph of m0 nodes, then every new node attaches to m distinct existing
// nodes picked with probability proportional to their degree.
func GenerateGraph(rng *rand.Rand, n, m0, m int, labels []string) (*Graph, error) {
	if n < 2 || m0 < 1 || m0 >= n || m < 1 || m >= m0 {
		return nil, fmt.Errorf("%w: n=%d m0=%d m=%d", ErrInvalidParameters, n, m0, m)
	}

	g := &Graph{
		Participants: make([]Participant, n),
		Edges:        make([]Edge, 0, m0*(m0-1)/2+m*(n-m0)),
	}
	degree := make([]int, n)

	for i := 0; i < m0; i++ {
		for j := i + 1; j < m0; j++ {
			g.Edges = append(g.Edges, Edge{Source: i, Target: j})
			degree[i]++
			degree[j]++
		}
	}

	for i := m0; i < n; i++ {
		// draws for node i all see the degrees from before its edges exist
		snapshot := make([]float64, i)
		for j := 0; j < i; j++ {
			snapshot[j] = float64(degree[j])
		}
		for _, target := range sampleWithoutReplacement(rng, snapshot, m) {
			g.Edges = append(g.Edges, Edge{Source: i, Target: target})
			degree[i]++
			degree[target]++
		}
	}

	for i := range g.Participants {
		g.Participants[i] = Participant{ID: i, Label: labelAt(labels, i), Degree: degree[i]}
	}
	return g, nil
}

// sampleWithoutReplacement picks k distinct indexes weighted by weights.
// Chosen indexes drop out of the pool by having their weight zeroed.
func sampleWithoutReplacement(rng *rand.Rand, weights []float64, k int) []int {
	chosen := make([]int, 0, k)
	for len(chosen) < k {
		total := 0.0
		for _, w := range weights {
			total += w
		}
		if total == 0 {
			break
		}
		r := rng.Float64() * total
		cumulative := 0.0
		pick := -1
		for j, w := range weights {
			if w == 0 {
				continue
			}
			cumulative += w
			if r < cumulative {
				pick = j
				break
			}
		}
		if pick < 0 {
			// rounding left r past the last bucket; draw again
			continue
		}
		chosen = append(chosen, pick)
		weights[pick] = 0
	}
	return chosen
}

func labelAt(labels []string, i int) string {
	if i < len(labels) && labels[i] != "" {
		return labels[i]
	}
	return fmt.Sprintf("Person %d", i+1)
}

// Adjacency returns neighbor lists in edge insertion order.
func (g *Graph) Adjacency() [][]int {
	adj := make([][]int, len(g.Participants))
	for _, e := range g.Edges {
		adj[e.Source] = append(adj[e.Source], e.Target)
		adj[e.Target] = append(adj[e.Target], e.Source)
	}
	return adj
}

// Has reports whether id names a participant of the graph.
func (g *Graph) Has(id int) bool {
	return id >= 0 && id < len(g.Participants)
}

// Label returns the display name of a participant.
func (g *Graph) Label(id int) string {
	if !g.Has(id) {
		return ""
	}
	return g.Participants[id].Label
}

// Adjacent reports whether a and b share an edge.
func (g *Graph) Adjacent(a, b int) bool {
	for _, e := range g.Edges {
		if (e.Source == a && e.Target == b) || (e.Source == b && e.Target == a) {
			return true
		}
	}
	return false
}

// Connected reports whether every participant is reachable from node 0.
func (g *Graph) Connected() bool {
	if len(g.Participants) == 0 {
		return true
	}
	adj := g.Adjacency()
	seen := make([]bool, len(adj))
	seen[0] = true
	queue := []int{0}
	count := 1
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		for _, next := range adj[node] {
			if !seen[next] {
				seen[next] = true
				count++
				queue = append(queue, next)
			}
		}
	}
	return count == len(adj)
}

// Stats computes node/edge counts and the degree spread.
func (g *Graph) Stats() GraphStats {
	stats := GraphStats{TotalNodes: len(g.Participants), TotalEdges: len(g.Edges)}
	if stats.TotalNodes == 0 {
		return stats
	}
	stats.AvgDegree = float64(2*stats.TotalEdges) / float64(stats.TotalNodes)
	stats.MinDegree = g.Participants[0].Degree
	for _, p := range g.Participants {
		if p.Degree > stats.MaxDegree {
			stats.MaxDegree = p.Degree
		}
		if p.Degree < stats.MinDegree {
			stats.MinDegree = p.Degree
		}
	}
	return stats
}

// Clone returns a deep copy of the graph.
func (g *Graph) Clone() *Graph {
	if g == nil {
		return nil
	}
	return &Graph{
		Participants: append([]Participant(nil), g.Participants...),
		Edges:        append([]Edge(nil), g.Edges...),
	}
}

// DefaultShape derives the seed size and attach count for n participants.
func DefaultShape(n int) (m0, m int) {
	m0 = n / 3
	if m0 < 2 {
		m0 = 2
	}
	if m0 > 3 {
		m0 = 3
	}
	m = m0 - 1
	if m > 2 {
		m = 2
	}
	return m0, m
}
