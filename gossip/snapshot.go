package gossip

// ParticipantView is what a player sees of a participant.
type ParticipantView struct {
	ID    int    `json:"id"`
	Label string `json:"label"`
}

// RoundSnapshot is the player-facing view of a session.
type RoundSnapshot struct {
	Round                  int               `json:"round"`
	Status                 Status            `json:"status"`
	Participants           []ParticipantView `json:"participants"`
	Testimonies            []string          `json:"testimonies"`
	LivesRemaining         int               `json:"livesRemaining"`
	Score                  int               `json:"score"`
	HintUsed               bool              `json:"hintUsed"`
	VerificationUsed       bool              `json:"verificationUsed"`
	VerifiedTestimonyIndex *int              `json:"verifiedTestimonyIndex"`
	VerifiedTestimonyFalse *bool             `json:"verifiedTestimonyFalse"`
	Graph                  *Graph            `json:"graph,omitempty"`
	Source                 *ParticipantView  `json:"source,omitempty"`
}

// Snapshot renders the state for the player. The graph is only included once
// the hint was used, and the source only once the game is over.
func (s *RoundState) Snapshot() RoundSnapshot {
	snap := RoundSnapshot{
		Round:            s.Round,
		Status:           s.Status,
		Participants:     make([]ParticipantView, 0, s.ParticipantCount()),
		Testimonies:      make([]string, 0, len(s.Testimonies)),
		LivesRemaining:   s.LivesRemaining,
		Score:            s.Score,
		HintUsed:         s.HintUsed,
		VerificationUsed: s.VerificationUsed,
	}
	if s.Graph != nil {
		for _, p := range s.Graph.Participants {
			snap.Participants = append(snap.Participants, ParticipantView{ID: p.ID, Label: p.Label})
		}
		for _, t := range s.Testimonies {
			snap.Testimonies = append(snap.Testimonies, t.Text(s.Graph))
		}
	}
	if idx := s.VerifiedTestimonyIndex; idx != nil && *idx >= 0 && *idx < len(s.Testimonies) {
		i, isFalse := *idx, s.Testimonies[*idx].False
		snap.VerifiedTestimonyIndex = &i
		snap.VerifiedTestimonyFalse = &isFalse
	}
	if s.HintUsed {
		snap.Graph = s.Graph.Clone()
	}
	if s.Status == StatusGameOver && s.Graph != nil {
		snap.Source = &ParticipantView{ID: s.Source, Label: s.Graph.Label(s.Source)}
	}
	return snap
}
