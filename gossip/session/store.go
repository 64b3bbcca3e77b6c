package session

import (
	"context"
	"time"

	"gossipserver/gossip"
)

// Record is one persisted session: the owner and the full round state.
type Record struct {
	SessionID string             `json:"sessionId"`
	UserID    uint               `json:"userId"`
	State     *gossip.RoundState `json:"state"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// Store persists session records. Missing records are reported with an error
// wrapping gossip.ErrNotFound.
type Store interface {
	Get(ctx context.Context, sessionID string) (*Record, error)
	// FindActive returns the player's session that is still in play.
	FindActive(ctx context.Context, userID uint) (*Record, error)
	Put(ctx context.Context, rec *Record) error
	Delete(ctx context.Context, sessionID string) error
}

// IdleLister finds active sessions that have not been touched since cutoff.
type IdleLister interface {
	IdleSessions(ctx context.Context, cutoff time.Time) ([]string, error)
}

// Notifier receives every snapshot produced by a successful action.
type Notifier interface {
	Publish(sessionID string, snap gossip.RoundSnapshot)
}
