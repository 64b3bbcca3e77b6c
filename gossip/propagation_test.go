package gossip

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lineGraph(n int) *Graph {
	g := &Graph{Participants: make([]Participant, n)}
	for i := 0; i < n; i++ {
		g.Participants[i] = Participant{ID: i, Label: labelAt(nil, i)}
		if i > 0 {
			g.Edges = append(g.Edges, Edge{Source: i - 1, Target: i})
		}
	}
	return g
}

func TestPropagateRejectsBlockerAtSource(t *testing.T) {
	_, _, err := Propagate(lineGraph(3), 1, 1)
	assert.True(t, errors.Is(err, ErrUnreachableBlocker))

	_, _, err = Propagate(lineGraph(3), 0, 5)
	assert.True(t, errors.Is(err, ErrInvalidParameters))
}

func TestPropagateBlockerCutsBranch(t *testing.T) {
	records, parentOf, err := Propagate(lineGraph(5), 0, 2)
	require.NoError(t, err)

	require.Len(t, records, 3)
	assert.Equal(t, 0, records[0].ParticipantID)
	assert.Nil(t, records[0].Predecessor)
	assert.Equal(t, 2, records[2].ParticipantID)
	assert.Equal(t, 2, records[2].Distance)
	assert.Equal(t, map[int]int{1: 0, 2: 1}, parentOf)
}

func TestPropagateParentFollowsEdgeOrder(t *testing.T) {
	// square 0-1-3-2-0: node 3 can be reached from 1 or 2 at distance 2.
	g := &Graph{
		Participants: []Participant{{ID: 0}, {ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}},
		Edges:        []Edge{{0, 1}, {0, 2}, {1, 3}, {2, 3}, {3, 4}},
	}
	_, parentOf, err := Propagate(g, 0, 4)
	require.NoError(t, err)
	assert.Equal(t, 1, parentOf[3])

	_, parentOf, err = Propagate(g, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, parentOf[3])
}

func TestPropagateProperties(t *testing.T) {
	for seed := int64(1); seed <= 40; seed++ {
		rng := rand.New(rand.NewSource(seed))
		n := 3 + rng.Intn(30)
		m0, m := DefaultShape(n)
		g, err := GenerateGraph(rng, n, m0, m, nil)
		require.NoError(t, err)

		source := rng.Intn(n)
		blocker := randomOther(rng, n, source)
		records, parentOf, err := Propagate(g, source, blocker)
		require.NoError(t, err)

		dist := make(map[int]int, len(records))
		roots := 0
		for _, rec := range records {
			_, dup := dist[rec.ParticipantID]
			require.False(t, dup, "participant recorded twice")
			dist[rec.ParticipantID] = rec.Distance
			if rec.Distance == 0 {
				roots++
				assert.Equal(t, source, rec.ParticipantID)
				assert.Nil(t, rec.Predecessor)
			}
		}
		assert.Equal(t, 1, roots)
		assert.Contains(t, dist, blocker)

		adj := g.Adjacency()
		for _, rec := range records {
			if rec.Predecessor != nil {
				pred := *rec.Predecessor
				assert.True(t, g.Adjacent(rec.ParticipantID, pred))
				assert.Equal(t, dist[pred]+1, rec.Distance)
				assert.Equal(t, pred, parentOf[rec.ParticipantID])
				assert.NotEqual(t, blocker, pred, "blocker never passes the rumor on")
			}
			if rec.ParticipantID == blocker {
				continue
			}
			for _, next := range adj[rec.ParticipantID] {
				d, ok := dist[next]
				require.True(t, ok, "neighbor of a spreader must be reached")
				assert.LessOrEqual(t, d, rec.Distance+1, "distances must be minimal")
			}
		}
	}
}
