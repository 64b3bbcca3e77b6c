package gossip

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynthesizeTestimonies(t *testing.T) {
	for seed := int64(1); seed <= 40; seed++ {
		rng := rand.New(rand.NewSource(seed))
		n := 3 + rng.Intn(25)
		m0, m := DefaultShape(n)
		g, err := GenerateGraph(rng, n, m0, m, nil)
		require.NoError(t, err)

		source := rng.Intn(n)
		blocker := randomOther(rng, n, source)
		records, parentOf, err := Propagate(g, source, blocker)
		require.NoError(t, err)

		testimonies := SynthesizeTestimonies(rng, g, records, source)
		require.Len(t, testimonies, len(records))

		falses := 0
		speakers := make(map[int]bool)
		for _, tm := range testimonies {
			speakers[tm.Speaker] = true
			if tm.False {
				falses++
				assert.Equal(t, source, tm.Speaker)
				assert.NotEqual(t, source, tm.ClaimedInformant)
				assert.True(t, g.Has(tm.ClaimedInformant))
				continue
			}
			assert.Equal(t, parentOf[tm.Speaker], tm.ClaimedInformant)
		}
		assert.Equal(t, 1, falses)
		for _, rec := range records {
			assert.True(t, speakers[rec.ParticipantID])
		}
	}
}

func TestSynthesizeTestimoniesSkipsUnreached(t *testing.T) {
	g := lineGraph(5)
	records, _, err := Propagate(g, 0, 1)
	require.NoError(t, err)

	testimonies := SynthesizeTestimonies(rand.New(rand.NewSource(2)), g, records, 0)
	require.Len(t, testimonies, 2)
	for _, tm := range testimonies {
		assert.Contains(t, []int{0, 1}, tm.Speaker)
	}
}

func TestTestimonyText(t *testing.T) {
	g := lineGraph(2)
	g.Participants[0].Label = "Ana"
	g.Participants[1].Label = "Bruno"

	assert.Equal(t, "Bruno: heard it from Ana", Testimony{Speaker: 1, ClaimedInformant: 0}.Text(g))
}

func TestRandomOtherNeverReturnsSkip(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	hits := make(map[int]int)
	for i := 0; i < 600; i++ {
		v := randomOther(rng, 4, 2)
		require.NotEqual(t, 2, v)
		require.True(t, v >= 0 && v < 4)
		hits[v]++
	}
	assert.Len(t, hits, 3)
}
