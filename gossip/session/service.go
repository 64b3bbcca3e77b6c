package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gossipserver/gossip"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service exposes the game operations over stored sessions. Actions on the
// same session are serialized; different sessions run in parallel.
type Service struct {
	engine   *gossip.Engine
	store    Store
	notifier Notifier
	logger   *zap.Logger
	locks    namedLocker
	now      func() time.Time

	defaultParticipants int
}

// Option configures a Service.
type Option func(*Service)

// WithNotifier publishes snapshots after every successful action.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithDefaultParticipants sets the graph size used when a join does not ask
// for one.
func WithDefaultParticipants(n int) Option {
	return func(s *Service) { s.defaultParticipants = n }
}

// WithClock overrides the time source used for UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService wires the engine to a store.
func NewService(engine *gossip.Engine, store Store, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		engine:              engine,
		store:               store,
		logger:              logger,
		now:                 time.Now,
		defaultParticipants: 10,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// JoinResult is returned by Join.
type JoinResult struct {
	SessionID string               `json:"sessionId"`
	IsNew     bool                 `json:"isNew"`
	Snapshot  gossip.RoundSnapshot `json:"snapshot"`
}

// AccusationOutcome is the result of SubmitAccusation. NextRound is set when
// the accusation was correct.
type AccusationOutcome struct {
	gossip.AccusationResult
	NextRound *gossip.RoundSnapshot `json:"nextRound,omitempty"`
}

// HintResult carries the revealed graph.
type HintResult struct {
	Graph *gossip.Graph     `json:"graph"`
	Stats gossip.GraphStats `json:"stats"`
}

// Join resumes the player's active session, or starts a new one. Joins of
// the same player are serialized so at most one session is in play.
func (s *Service) Join(ctx context.Context, userID uint, participantCount int, labels []string) (*JoinResult, error) {
	userLock := "user:" + strconv.FormatUint(uint64(userID), 10)
	s.locks.Lock(userLock)
	defer s.locks.Unlock(userLock)

	rec, err := s.store.FindActive(ctx, userID)
	if err == nil {
		return &JoinResult{SessionID: rec.SessionID, Snapshot: rec.State.Snapshot()}, nil
	}
	if !errors.Is(err, gossip.ErrNotFound) {
		return nil, err
	}

	sessionID, snap, err := s.StartRound(ctx, userID, participantCount, labels)
	if err != nil {
		return nil, err
	}
	return &JoinResult{SessionID: sessionID, IsNew: true, Snapshot: snap}, nil
}

// StartRound creates a new session in its first round.
func (s *Service) StartRound(ctx context.Context, userID uint, participantCount int, labels []string) (string, gossip.RoundSnapshot, error) {
	if participantCount == 0 {
		participantCount = s.defaultParticipants
	}
	st, err := s.engine.Start(participantCount, labels)
	if err != nil {
		return "", gossip.RoundSnapshot{}, err
	}

	rec := &Record{
		SessionID: uuid.New().String(),
		UserID:    userID,
		State:     st,
		UpdatedAt: s.now(),
	}
	if err := s.store.Put(ctx, rec); err != nil {
		s.logger.Error("Failed to store new session", zap.Error(err))
		return "", gossip.RoundSnapshot{}, fmt.Errorf("storing session: %w", err)
	}

	snap := st.Snapshot()
	s.logger.Info("Session started",
		zap.String("sessionID", rec.SessionID),
		zap.Uint("userID", userID),
		zap.Int("participants", participantCount),
	)
	s.publish(rec.SessionID, snap)
	return rec.SessionID, snap, nil
}

// GetState returns the current snapshot of a session.
func (s *Service) GetState(ctx context.Context, sessionID string) (gossip.RoundSnapshot, error) {
	rec, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return gossip.RoundSnapshot{}, err
	}
	return rec.State.Snapshot(), nil
}

// ActiveSession looks up the id of the player's session in play.
func (s *Service) ActiveSession(ctx context.Context, userID uint) (string, error) {
	rec, err := s.store.FindActive(ctx, userID)
	if err != nil {
		return "", err
	}
	return rec.SessionID, nil
}

// Owner returns the id of the player a session belongs to.
func (s *Service) Owner(ctx context.Context, sessionID string) (uint, error) {
	rec, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	return rec.UserID, nil
}

// SubmitAccusation accuses a participant of being the gossiper.
func (s *Service) SubmitAccusation(ctx context.Context, sessionID string, participantID int) (*AccusationOutcome, error) {
	var out *AccusationOutcome
	err := s.mutate(ctx, sessionID, func(st *gossip.RoundState) (*gossip.RoundState, error) {
		next, res, err := s.engine.Accuse(st, participantID)
		if err != nil {
			return nil, err
		}
		out = &AccusationOutcome{AccusationResult: res}
		if res.Correct {
			snap := next.Snapshot()
			out.NextRound = &snap
			s.logger.Info("Round won",
				zap.String("sessionID", sessionID),
				zap.Int("points", res.PointsAwarded),
				zap.Int("score", res.Score),
				zap.Int("nextRound", next.Round),
			)
		} else if res.GameOver {
			s.logger.Info("Game over", zap.String("sessionID", sessionID), zap.Int("score", res.Score))
		}
		return next, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RequestHint reveals the round's graph.
func (s *Service) RequestHint(ctx context.Context, sessionID string) (*HintResult, error) {
	var out *HintResult
	err := s.mutate(ctx, sessionID, func(st *gossip.RoundState) (*gossip.RoundState, error) {
		next, g, err := s.engine.RequestHint(st)
		if err != nil {
			return nil, err
		}
		out = &HintResult{Graph: g, Stats: g.Stats()}
		return next, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// VerifyTestimony reports whether the testimony at index is false.
func (s *Service) VerifyTestimony(ctx context.Context, sessionID string, index int) (bool, error) {
	var isFalse bool
	err := s.mutate(ctx, sessionID, func(st *gossip.RoundState) (*gossip.RoundState, error) {
		next, f, err := s.engine.VerifyTestimony(st, index)
		if err != nil {
			return nil, err
		}
		isFalse = f
		return next, nil
	})
	return isFalse, err
}

// Abandon ends the session on the player's request.
func (s *Service) Abandon(ctx context.Context, sessionID string) error {
	err := s.mutate(ctx, sessionID, s.engine.Abandon)
	if err == nil {
		s.locks.Forget(sessionID)
	}
	return err
}

// Watch hands the current snapshot to fn while holding the session lock, so
// no action's snapshot can be published between the read and fn returning.
func (s *Service) Watch(ctx context.Context, sessionID string, fn func(gossip.RoundSnapshot)) error {
	s.locks.Lock(sessionID)
	defer s.locks.Unlock(sessionID)

	rec, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	fn(rec.State.Snapshot())
	return nil
}

// ReapIdle abandons the active sessions untouched since cutoff. Each session
// is re-checked under its lock, so one touched in the meantime is kept.
func (s *Service) ReapIdle(ctx context.Context, idle IdleLister, cutoff time.Time) ([]string, error) {
	ids, err := idle.IdleSessions(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	var reaped []string
	for _, id := range ids {
		ok, err := s.reap(ctx, id, cutoff)
		if err != nil {
			s.logger.Error("Failed to abandon idle session", zap.String("sessionID", id), zap.Error(err))
			continue
		}
		if ok {
			s.locks.Forget(id)
			reaped = append(reaped, id)
		}
	}
	return reaped, nil
}

func (s *Service) reap(ctx context.Context, sessionID string, cutoff time.Time) (bool, error) {
	s.locks.Lock(sessionID)
	defer s.locks.Unlock(sessionID)

	rec, err := s.store.Get(ctx, sessionID)
	if errors.Is(err, gossip.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if rec.State.Status != gossip.StatusActive || rec.UpdatedAt.After(cutoff) {
		return false, nil
	}

	next, err := s.engine.Abandon(rec.State)
	if err != nil {
		return false, err
	}
	updated := &Record{SessionID: rec.SessionID, UserID: rec.UserID, State: next, UpdatedAt: s.now()}
	if err := s.store.Put(ctx, updated); err != nil {
		return false, fmt.Errorf("storing session: %w", err)
	}
	s.logger.Info("Idle session abandoned", zap.String("sessionID", sessionID))
	s.publish(sessionID, next.Snapshot())
	return true, nil
}

// mutate loads, transforms and stores a session under its lock. Nothing is
// written when fn fails.
func (s *Service) mutate(ctx context.Context, sessionID string, fn func(*gossip.RoundState) (*gossip.RoundState, error)) error {
	s.locks.Lock(sessionID)
	defer s.locks.Unlock(sessionID)

	rec, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	next, err := fn(rec.State)
	if err != nil {
		s.logger.Warn("Action rejected", zap.String("sessionID", sessionID), zap.Error(err))
		return err
	}

	updated := &Record{SessionID: rec.SessionID, UserID: rec.UserID, State: next, UpdatedAt: s.now()}
	if err := s.store.Put(ctx, updated); err != nil {
		s.logger.Error("Failed to store session", zap.String("sessionID", sessionID), zap.Error(err))
		return fmt.Errorf("storing session: %w", err)
	}
	s.publish(sessionID, next.Snapshot())
	return nil
}

func (s *Service) publish(sessionID string, snap gossip.RoundSnapshot) {
	if s.notifier != nil {
		s.notifier.Publish(sessionID, snap)
	}
}
