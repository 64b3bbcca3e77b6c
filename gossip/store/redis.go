package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gossipserver/gossip"
	"gossipserver/gossip/session"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RedisStore keeps each session as a JSON document under "session:<id>"
// with a sliding TTL, plus a "user:<id>:session" pointer to the player's
// latest session.
type RedisStore struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisStore creates a Redis-backed store. A zero ttl defaults to 24h.
func NewRedisStore(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStore{rdb: rdb, ttl: ttl, logger: logger}
}

func sessionKey(sessionID string) string {
	return "session:" + sessionID
}

func userKey(userID uint) string {
	return "user:" + strconv.FormatUint(uint64(userID), 10) + ":session"
}

// Get retrieves a session by id.
func (s *RedisStore) Get(ctx context.Context, sessionID string) (*session.Record, error) {
	raw, err := s.rdb.Get(ctx, sessionKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("session %s: %w", sessionID, gossip.ErrNotFound)
	}
	if err != nil {
		s.logger.Error("Failed to retrieve session info", zap.String("sessionID", sessionID), zap.Error(err))
		return nil, err
	}

	var rec session.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		s.logger.Error("Failed to decode session info", zap.String("sessionID", sessionID), zap.Error(err))
		return nil, fmt.Errorf("decoding session %s: %w", sessionID, err)
	}
	return &rec, nil
}

// FindActive follows the player's session pointer.
func (s *RedisStore) FindActive(ctx context.Context, userID uint) (*session.Record, error) {
	sessionID, err := s.rdb.Get(ctx, userKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("active session of user %d: %w", userID, gossip.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	rec, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if rec.State.Status != gossip.StatusActive {
		return nil, fmt.Errorf("active session of user %d: %w", userID, gossip.ErrNotFound)
	}
	return rec, nil
}

// Put stores the session and refreshes both keys' TTL.
func (s *RedisStore) Put(ctx context.Context, rec *session.Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		s.logger.Error("Error encoding session info", zap.Error(err))
		return err
	}

	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, sessionKey(rec.SessionID), raw, s.ttl)
		pipe.Set(ctx, userKey(rec.UserID), rec.SessionID, s.ttl)
		return nil
	})
	if err != nil {
		s.logger.Error("Error storing session info in Redis", zap.String("sessionID", rec.SessionID), zap.Error(err))
		return err
	}
	return nil
}

// Delete removes the session document. The user pointer is left to expire;
// FindActive treats a dangling pointer as no session.
func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx, sessionKey(sessionID)).Err()
}
