package gossip

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// Status is the lifecycle state of a session.
type Status string

const (
	StatusActive    Status = "active"
	StatusGameOver  Status = "game_over"
	StatusAbandoned Status = "abandoned"
)

// VerificationScope decides whether the single testimony verification is
// granted once per session or once per round.
type VerificationScope string

const (
	VerificationPerSession VerificationScope = "session"
	VerificationPerRound   VerificationScope = "round"
)

// Rules holds the tunable parameters of a session.
type Rules struct {
	InitialLives    int
	MinParticipants int
	MaxParticipants int
	PointsNoHint    int
	PointsWithHint  int
	Verification    VerificationScope
}

// DefaultRules returns three lives, two points per clean win, one point when
// the hint was used, and one verification per session. Rounds stop growing at
// 100 participants.
func DefaultRules() Rules {
	return Rules{
		InitialLives:    3,
		MinParticipants: 3,
		MaxParticipants: 100,
		PointsNoHint:    2,
		PointsWithHint:  1,
		Verification:    VerificationPerSession,
	}
}

// RoundState is the complete, serializable state of one session.
type RoundState struct {
	Round                  int                 `json:"round"`
	Status                 Status              `json:"status"`
	Labels                 []string            `json:"labels,omitempty"`
	Graph                  *Graph              `json:"graph"`
	Source                 int                 `json:"source"`
	Blocker                int                 `json:"blocker"`
	Propagation            []PropagationRecord `json:"propagation"`
	Testimonies            []Testimony         `json:"testimonies"`
	LivesRemaining         int                 `json:"livesRemaining"`
	Score                  int                 `json:"score"`
	HintUsed               bool                `json:"hintUsed"`
	VerificationUsed       bool                `json:"verificationUsed"`
	VerifiedTestimonyIndex *int                `json:"verifiedTestimonyIndex"`
}

// Clone returns a deep copy so that a failed action never leaks mutations.
func (s *RoundState) Clone() *RoundState {
	c := *s
	c.Labels = append([]string(nil), s.Labels...)
	c.Graph = s.Graph.Clone()
	c.Propagation = make([]PropagationRecord, len(s.Propagation))
	for i, rec := range s.Propagation {
		c.Propagation[i] = rec
		if rec.Predecessor != nil {
			p := *rec.Predecessor
			c.Propagation[i].Predecessor = &p
		}
	}
	c.Testimonies = append([]Testimony(nil), s.Testimonies...)
	if s.VerifiedTestimonyIndex != nil {
		idx := *s.VerifiedTestimonyIndex
		c.VerifiedTestimonyIndex = &idx
	}
	return &c
}

// ParticipantCount is the size of the current round's graph.
func (s *RoundState) ParticipantCount() int {
	if s.Graph == nil {
		return 0
	}
	return len(s.Graph.Participants)
}

// AccusationResult reports the outcome of an accusation.
type AccusationResult struct {
	Correct        bool   `json:"correct"`
	PointsAwarded  int    `json:"pointsAwarded"`
	GameOver       bool   `json:"gameOver"`
	Source         *int   `json:"sourceId,omitempty"`
	SourceLabel    string `json:"sourceLabel,omitempty"`
	LivesRemaining int    `json:"livesRemaining"`
	Score          int    `json:"score"`
}

// Engine runs the round pipeline and the per-round state machine. It keeps
// no session state: every operation takes a RoundState and returns a new one.
type Engine struct {
	rules Rules

	mu    sync.Mutex
	seeds *rand.Rand
}

// Option configures an Engine.
type Option func(*Engine)

// WithSeed makes every round drawn by the engine reproducible.
func WithSeed(seed int64) Option {
	return func(e *Engine) {
		e.seeds = rand.New(rand.NewSource(seed))
	}
}

// NewEngine creates an engine with the given rules.
func NewEngine(rules Rules, opts ...Option) *Engine {
	e := &Engine{
		rules: rules,
		seeds: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Rules returns the engine's rules.
func (e *Engine) Rules() Rules {
	return e.rules
}

// roundRand hands out an independent generator for each round.
func (e *Engine) roundRand() *rand.Rand {
	e.mu.Lock()
	seed := e.seeds.Int63()
	e.mu.Unlock()
	return rand.New(rand.NewSource(seed))
}

// Start creates a session in its first round.
func (e *Engine) Start(participantCount int, labels []string) (*RoundState, error) {
	if limit := e.rules.MaxParticipants; limit > 0 && len(labels) > limit {
		return nil, fmt.Errorf("%w: %d labels above %d", ErrInvalidParameters, len(labels), limit)
	}
	st := &RoundState{
		Status:         StatusActive,
		Labels:         append([]string(nil), labels...),
		LivesRemaining: e.rules.InitialLives,
	}
	if err := e.deal(st, participantCount); err != nil {
		return nil, err
	}
	return st, nil
}

// deal runs generation, propagation and testimony synthesis for a new round
// and resets the per-round flags.
func (e *Engine) deal(st *RoundState, participantCount int) error {
	if participantCount < e.rules.MinParticipants {
		return fmt.Errorf("%w: participant count %d below %d", ErrInvalidParameters, participantCount, e.rules.MinParticipants)
	}
	if limit := e.rules.MaxParticipants; limit > 0 && participantCount > limit {
		return fmt.Errorf("%w: participant count %d above %d", ErrInvalidParameters, participantCount, limit)
	}
	rng := e.roundRand()

	m0, m := DefaultShape(participantCount)
	g, err := GenerateGraph(rng, participantCount, m0, m, labelPool(rng, st.Labels))
	if err != nil {
		return err
	}

	source := rng.Intn(participantCount)
	blocker := randomOther(rng, participantCount, source)
	records, _, err := Propagate(g, source, blocker)
	if err != nil {
		return err
	}

	st.Round++
	st.Graph = g
	st.Source = source
	st.Blocker = blocker
	st.Propagation = records
	st.Testimonies = SynthesizeTestimonies(rng, g, records, source)
	st.HintUsed = false
	st.VerifiedTestimonyIndex = nil
	if e.rules.Verification == VerificationPerRound {
		st.VerificationUsed = false
	}
	return nil
}

// Accuse checks a guess against the source. A correct guess scores and deals
// the next round with one more participant; a wrong guess costs a life.
func (e *Engine) Accuse(st *RoundState, participantID int) (*RoundState, AccusationResult, error) {
	if st.Status != StatusActive {
		return nil, AccusationResult{}, fmt.Errorf("%w: session is %s", ErrInvalidState, st.Status)
	}
	if !st.Graph.Has(participantID) {
		return nil, AccusationResult{}, fmt.Errorf("%w: participant %d", ErrNotFound, participantID)
	}

	next := st.Clone()
	source := st.Source
	if participantID == source {
		points := e.rules.PointsNoHint
		if st.HintUsed {
			points = e.rules.PointsWithHint
		}
		next.Score += points
		if err := e.deal(next, e.nextSize(st.ParticipantCount())); err != nil {
			return nil, AccusationResult{}, err
		}
		return next, AccusationResult{
			Correct:        true,
			PointsAwarded:  points,
			Source:         &source,
			SourceLabel:    st.Graph.Label(source),
			LivesRemaining: next.LivesRemaining,
			Score:          next.Score,
		}, nil
	}

	next.LivesRemaining--
	res := AccusationResult{LivesRemaining: next.LivesRemaining, Score: next.Score}
	if next.LivesRemaining <= 0 {
		next.LivesRemaining = 0
		next.Status = StatusGameOver
		res.LivesRemaining = 0
		res.GameOver = true
		res.Source = &source
		res.SourceLabel = st.Graph.Label(source)
	}
	return next, res, nil
}

// nextSize grows the graph by one participant, up to the rules' maximum.
func (e *Engine) nextSize(n int) int {
	if limit := e.rules.MaxParticipants; limit > 0 && n >= limit {
		return limit
	}
	return n + 1
}

// RequestHint reveals the real graph. It caps the round's win value.
func (e *Engine) RequestHint(st *RoundState) (*RoundState, *Graph, error) {
	if st.Status != StatusActive {
		return nil, nil, fmt.Errorf("%w: session is %s", ErrInvalidState, st.Status)
	}
	if st.HintUsed {
		return nil, nil, fmt.Errorf("%w: hint", ErrAlreadyUsed)
	}
	next := st.Clone()
	next.HintUsed = true
	return next, next.Graph.Clone(), nil
}

// VerifyTestimony tells whether the testimony at index is the false one.
func (e *Engine) VerifyTestimony(st *RoundState, index int) (*RoundState, bool, error) {
	if st.Status != StatusActive {
		return nil, false, fmt.Errorf("%w: session is %s", ErrInvalidState, st.Status)
	}
	if st.VerificationUsed {
		return nil, false, fmt.Errorf("%w: verification", ErrAlreadyUsed)
	}
	if index < 0 || index >= len(st.Testimonies) {
		return nil, false, fmt.Errorf("%w: testimony %d", ErrNotFound, index)
	}
	next := st.Clone()
	next.VerificationUsed = true
	next.VerifiedTestimonyIndex = &index
	return next, next.Testimonies[index].False, nil
}

// Abandon ends an active session on the player's request.
func (e *Engine) Abandon(st *RoundState) (*RoundState, error) {
	if st.Status != StatusActive {
		return nil, fmt.Errorf("%w: session is %s", ErrInvalidState, st.Status)
	}
	next := st.Clone()
	next.Status = StatusAbandoned
	return next, nil
}
