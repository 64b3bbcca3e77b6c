package store

import (
	"context"
	"errors"
	"time"

	"gossipserver/gossip"
	"gossipserver/gossip/session"

	"go.uber.org/zap"
)

// Reaper is implemented by stores that can find idle sessions and purge
// ended ones. Abandoning goes through session.Service so it is serialized
// with player actions.
type Reaper interface {
	IdleSessions(ctx context.Context, cutoff time.Time) ([]string, error)
	PurgeFinished(ctx context.Context, cutoff time.Time) (int64, error)
}

// DurableStore is a session store that also supports cleanup jobs.
type DurableStore interface {
	session.Store
	Reaper
}

// TieredStore reads through a cache (Redis) in front of a durable store
// (PostgreSQL). Writes go to the durable store first; a failed cache write is
// logged and the stale entry dropped.
type TieredStore struct {
	cache   session.Store
	durable DurableStore
	logger  *zap.Logger
}

// NewTieredStore combines a cache and a durable store.
func NewTieredStore(cache session.Store, durable DurableStore, logger *zap.Logger) *TieredStore {
	return &TieredStore{cache: cache, durable: durable, logger: logger}
}

// Get serves from the cache and refills it on a miss.
func (s *TieredStore) Get(ctx context.Context, sessionID string) (*session.Record, error) {
	rec, err := s.cache.Get(ctx, sessionID)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, gossip.ErrNotFound) {
		s.logger.Warn("Cache read failed, falling back to database", zap.String("sessionID", sessionID), zap.Error(err))
	}

	rec, err = s.durable.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	s.refill(ctx, rec)
	return rec, nil
}

// FindActive asks the durable store, which indexes sessions by player.
func (s *TieredStore) FindActive(ctx context.Context, userID uint) (*session.Record, error) {
	rec, err := s.durable.FindActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.refill(ctx, rec)
	return rec, nil
}

// Put writes through both tiers.
func (s *TieredStore) Put(ctx context.Context, rec *session.Record) error {
	if err := s.durable.Put(ctx, rec); err != nil {
		return err
	}
	s.refill(ctx, rec)
	return nil
}

// Delete removes the session from both tiers.
func (s *TieredStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.durable.Delete(ctx, sessionID); err != nil {
		return err
	}
	return s.cache.Delete(ctx, sessionID)
}

// IdleSessions asks the durable store, which indexes sessions by status.
func (s *TieredStore) IdleSessions(ctx context.Context, cutoff time.Time) ([]string, error) {
	return s.durable.IdleSessions(ctx, cutoff)
}

// PurgeFinished deletes old ended sessions from the durable store.
func (s *TieredStore) PurgeFinished(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.durable.PurgeFinished(ctx, cutoff)
}

func (s *TieredStore) refill(ctx context.Context, rec *session.Record) {
	if err := s.cache.Put(ctx, rec); err != nil {
		s.logger.Warn("Failed to refresh session cache", zap.String("sessionID", rec.SessionID), zap.Error(err))
		_ = s.cache.Delete(ctx, rec.SessionID)
	}
}
