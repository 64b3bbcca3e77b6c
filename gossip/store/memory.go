package store

import (
	"context"
	"sort"
	"fmt"
	"sync"
	"time"

	"gossipserver/gossip"
	"gossipserver/gossip/session"
)

// MemoryStore keeps sessions in process memory. Records are copied on the
// way in and out so callers never share state with the store.
type MemoryStore struct {
	records map[string]*session.Record
	mu      sync.RWMutex
}

// NewMemoryStore creates an empty memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*session.Record),
	}
}

// Get retrieves a session by id.
func (s *MemoryStore) Get(ctx context.Context, sessionID string) (*session.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[sessionID]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", sessionID, gossip.ErrNotFound)
	}
	return copyRecord(rec), nil
}

// FindActive returns the most recently updated active session of a player.
func (s *MemoryStore) FindActive(ctx context.Context, userID uint) (*session.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var found *session.Record
	for _, rec := range s.records {
		if rec.UserID != userID || rec.State.Status != gossip.StatusActive {
			continue
		}
		if found == nil || rec.UpdatedAt.After(found.UpdatedAt) {
			found = rec
		}
	}
	if found == nil {
		return nil, fmt.Errorf("active session of user %d: %w", userID, gossip.ErrNotFound)
	}
	return copyRecord(found), nil
}

// Put stores a session.
func (s *MemoryStore) Put(ctx context.Context, rec *session.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.SessionID] = copyRecord(rec)
	return nil
}

// Delete removes a session.
func (s *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, sessionID)
	return nil
}

// IdleSessions lists active sessions untouched since cutoff, oldest first.
func (s *MemoryStore) IdleSessions(ctx context.Context, cutoff time.Time) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var idle []*session.Record
	for _, rec := range s.records {
		if rec.State.Status == gossip.StatusActive && !rec.UpdatedAt.After(cutoff) {
			idle = append(idle, rec)
		}
	}
	sort.Slice(idle, func(i, j int) bool { return idle[i].UpdatedAt.Before(idle[j].UpdatedAt) })
	ids := make([]string, 0, len(idle))
	for _, rec := range idle {
		ids = append(ids, rec.SessionID)
	}
	return ids, nil
}

// PurgeFinished drops ended sessions untouched since cutoff.
func (s *MemoryStore) PurgeFinished(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, rec := range s.records {
		if rec.State.Status != gossip.StatusActive && !rec.UpdatedAt.After(cutoff) {
			delete(s.records, id)
			n++
		}
	}
	return n, nil
}

func copyRecord(rec *session.Record) *session.Record {
	c := *rec
	if rec.State != nil {
		c.State = rec.State.Clone()
	}
	return &c
}
