package gossip

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateGraphRejectsInvalidParameters(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	cases := []struct {
		name     string
		n, m0, m int
	}{
		{"too few nodes", 1, 1, 1},
		{"empty seed", 5, 0, 1},
		{"seed covers all nodes", 4, 4, 2},
		{"no attachments", 6, 3, 0},
		{"attach count equals seed", 6, 3, 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g, err := GenerateGraph(rng, tc.n, tc.m0, tc.m, nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidParameters))
			assert.Nil(t, g)
		})
	}
}

func TestGenerateGraphShape(t *testing.T) {
	shapes := [][3]int{{3, 2, 1}, {10, 3, 2}, {20, 5, 4}, {40, 3, 1}, {64, 6, 3}}
	for seed := int64(1); seed <= 25; seed++ {
		for _, s := range shapes {
			n, m0, m := s[0], s[1], s[2]
			g, err := GenerateGraph(rand.New(rand.NewSource(seed)), n, m0, m, nil)
			require.NoError(t, err)

			require.Len(t, g.Participants, n)
			assert.Len(t, g.Edges, m0*(m0-1)/2+m*(n-m0), "n=%d m0=%d m=%d", n, m0, m)
			assert.True(t, g.Connected(), "graph must be connected (seed %d)", seed)

			seen := make(map[[2]int]bool)
			degreeSum := 0
			for _, e := range g.Edges {
				require.NotEqual(t, e.Source, e.Target, "self loop")
				key := [2]int{e.Source, e.Target}
				if key[0] > key[1] {
					key[0], key[1] = key[1], key[0]
				}
				require.False(t, seen[key], "duplicate edge %v", key)
				seen[key] = true
			}
			for i, p := range g.Participants {
				assert.Equal(t, i, p.ID)
				degreeSum += p.Degree
			}
			assert.Equal(t, 2*len(g.Edges), degreeSum)
		}
	}
}

func TestGenerateGraphLabels(t *testing.T) {
	g, err := GenerateGraph(rand.New(rand.NewSource(7)), 4, 2, 1, []string{"Ana", "", "Carlos"})
	require.NoError(t, err)

	assert.Equal(t, "Ana", g.Label(0))
	assert.Equal(t, "Person 2", g.Label(1))
	assert.Equal(t, "Carlos", g.Label(2))
	assert.Equal(t, "Person 4", g.Label(3))
	assert.Equal(t, "", g.Label(9))
}

func TestGenerateGraphPrefersPopularNodes(t *testing.T) {
	// 0 is the hub of the seed, so it should collect far more edges than a
	// late joiner over many runs.
	hub, late := 0, 0
	for seed := int64(0); seed < 200; seed++ {
		g, err := GenerateGraph(rand.New(rand.NewSource(seed)), 30, 3, 2, nil)
		require.NoError(t, err)
		hub += g.Participants[0].Degree
		late += g.Participants[25].Degree
	}
	assert.Greater(t, hub, late)
}

func TestGraphStats(t *testing.T) {
	g, err := GenerateGraph(rand.New(rand.NewSource(3)), 12, 3, 2, nil)
	require.NoError(t, err)

	stats := g.Stats()
	assert.Equal(t, 12, stats.TotalNodes)
	assert.Equal(t, 3+2*9, stats.TotalEdges)
	assert.InDelta(t, float64(2*stats.TotalEdges)/12, stats.AvgDegree, 1e-9)
	assert.GreaterOrEqual(t, stats.MinDegree, 2)
	assert.GreaterOrEqual(t, stats.MaxDegree, stats.MinDegree)
}

func TestDefaultShape(t *testing.T) {
	cases := []struct{ n, m0, m int }{
		{3, 2, 1},
		{5, 2, 1},
		{8, 2, 1},
		{9, 3, 2},
		{30, 3, 2},
	}
	for _, tc := range cases {
		m0, m := DefaultShape(tc.n)
		assert.Equal(t, tc.m0, m0, "n=%d", tc.n)
		assert.Equal(t, tc.m, m, "n=%d", tc.n)

		_, err := GenerateGraph(rand.New(rand.NewSource(1)), tc.n, m0, m, nil)
		assert.NoError(t, err)
	}
}

func TestSampleWithoutReplacementIsDistinct(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 100; i++ {
		picks := sampleWithoutReplacement(rng, []float64{5, 1, 1, 3}, 3)
		require.Len(t, picks, 3)
		assert.NotEqual(t, picks[0], picks[1])
		assert.NotEqual(t, picks[1], picks[2])
		assert.NotEqual(t, picks[0], picks[2])
	}
}
