package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gossipserver/gossip"
	"gossipserver/gossip/session"
	"gossipserver/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostgresStore keeps one Match row per session. The full round state lives
// in StateJSON; the scalar columns mirror it for queries and cleanup jobs.
type PostgresStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewPostgresStore creates a gorm-backed store.
func NewPostgresStore(db *gorm.DB, logger *zap.Logger) *PostgresStore {
	return &PostgresStore{db: db, logger: logger}
}

// Get retrieves a session by id.
func (s *PostgresStore) Get(ctx context.Context, sessionID string) (*session.Record, error) {
	var match models.Match
	err := s.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&match).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("session %s: %w", sessionID, gossip.ErrNotFound)
	}
	if err != nil {
		s.logger.Error("Failed to retrieve match", zap.String("sessionID", sessionID), zap.Error(err))
		return nil, err
	}
	return matchToRecord(&match)
}

// FindActive returns the player's most recent active match.
func (s *PostgresStore) FindActive(ctx context.Context, userID uint) (*session.Record, error) {
	var match models.Match
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, string(gossip.StatusActive)).
		Order("updated_at desc").
		First(&match).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("active session of user %d: %w", userID, gossip.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return matchToRecord(&match)
}

// Put inserts or updates the match row of a session.
func (s *PostgresStore) Put(ctx context.Context, rec *session.Record) error {
	match, err := recordToMatch(rec)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"status", "rounds", "score", "lives_remaining",
			"verification_used", "verified_testimony_index", "state_json", "updated_at",
		}),
	}).Create(match).Error
	if err != nil {
		s.logger.Error("Failed to store match", zap.String("sessionID", rec.SessionID), zap.Error(err))
	}
	return err
}

// Delete removes the match row.
func (s *PostgresStore) Delete(ctx context.Context, sessionID string) error {
	return s.db.WithContext(ctx).Unscoped().Where("session_id = ?", sessionID).Delete(&models.Match{}).Error
}

// IdleSessions lists active matches not updated since cutoff, oldest first.
func (s *PostgresStore) IdleSessions(ctx context.Context, cutoff time.Time) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).Model(&models.Match{}).
		Where("status = ? AND updated_at <= ?", string(gossip.StatusActive), cutoff).
		Order("updated_at asc").
		Pluck("session_id", &ids).Error
	if err != nil {
		s.logger.Error("Failed to list idle matches", zap.Error(err))
		return nil, err
	}
	return ids, nil
}

// PurgeFinished deletes ended matches not updated since cutoff.
func (s *PostgresStore) PurgeFinished(ctx context.Context, cutoff time.Time) (int64, error) {
	result := s.db.WithContext(ctx).Unscoped().
		Where("status <> ? AND updated_at <= ?", string(gossip.StatusActive), cutoff).
		Delete(&models.Match{})
	return result.RowsAffected, result.Error
}

func recordToMatch(rec *session.Record) (*models.Match, error) {
	raw, err := json.Marshal(rec.State)
	if err != nil {
		return nil, fmt.Errorf("encoding session %s: %w", rec.SessionID, err)
	}
	match := &models.Match{
		SessionID:              rec.SessionID,
		UserID:                 rec.UserID,
		Status:                 string(rec.State.Status),
		Rounds:                 rec.State.Round,
		Score:                  rec.State.Score,
		LivesRemaining:         rec.State.LivesRemaining,
		VerificationUsed:       rec.State.VerificationUsed,
		VerifiedTestimonyIndex: rec.State.VerifiedTestimonyIndex,
		StateJSON:              string(raw),
	}
	match.UpdatedAt = rec.UpdatedAt
	return match, nil
}

func matchToRecord(match *models.Match) (*session.Record, error) {
	var st gossip.RoundState
	if err := json.Unmarshal([]byte(match.StateJSON), &st); err != nil {
		return nil, fmt.Errorf("decoding session %s: %w", match.SessionID, err)
	}
	return &session.Record{
		SessionID: match.SessionID,
		UserID:    match.UserID,
		State:     &st,
		UpdatedAt: match.UpdatedAt,
	}, nil
}
