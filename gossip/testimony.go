package gossip

import (
	"fmt"
	"math/rand"
)

// Testimony is one participant's claim about who told them the rumor.
type Testimony struct {
	Speaker          int  `json:"speakerId"`
	ClaimedInformant int  `json:"claimedInformantId"`
	False            bool `json:"isFalse"`
}

// Text renders the testimony the way players read it.
func (t Testimony) Text(g *Graph) string {
	return fmt.Sprintf("%s: heard it from %s", g.Label(t.Speaker), g.Label(t.ClaimedInformant))
}

// SynthesizeTestimonies turns a propagation trace into one testimony per
// reached participant, in a random order. The source lies about a random
// other participant; everyone else names their real predecessor.
func SynthesizeTestimonies(rng *rand.Rand, g *Graph, records []PropagationRecord, source int) []Testimony {
	testimonies := make([]Testimony, 0, len(records))
	for _, rec := range records {
		if rec.Distance == 0 && rec.ParticipantID == source {
			testimonies = append(testimonies, Testimony{
				Speaker:          source,
				ClaimedInformant: randomOther(rng, len(g.Participants), source),
				False:            true,
			})
			continue
		}
		if rec.Predecessor == nil {
			continue
		}
		testimonies = append(testimonies, Testimony{
			Speaker:          rec.ParticipantID,
			ClaimedInformant: *rec.Predecessor,
		})
	}

	rng.Shuffle(len(testimonies), func(i, j int) {
		testimonies[i], testimonies[j] = testimonies[j], testimonies[i]
	})
	return testimonies
}

// randomOther draws uniformly from [0, n) excluding skip. n must be at least 2.
func randomOther(rng *rand.Rand, n, skip int) int {
	v := rng.Intn(n - 1)
	if v >= skip {
		v++
	}
	return v
}
