package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/soma-studio/soma-approve-api/internal/models"
)

const sessionKeyPrefix = "session:"

// sessionCommands is the slice of redis commands the repository issues.
// *redis.Client satisfies it.
type sessionCommands interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// SessionRepository stores active sessions in Redis, keyed by subject id.
type SessionRepository struct {
	client sessionCommands
	logger *zap.Logger
}

// NewSessionRepository constructs the repository.
func NewSessionRepository(client *redis.Client, logger *zap.Logger) *SessionRepository {
	return &SessionRepository{client: client, logger: logger}
}

// Save stores the session with the given TTL, replacing any prior session for
// the same subject.
func (r *SessionRepository) Save(ctx context.Context, session *models.Session, ttl time.Duration) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", session.SubjectID, err)
	}
	if err := r.client.Set(ctx, sessionKeyPrefix+session.SubjectID, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set session %s: %w", session.SubjectID, err)
	}
	return nil
}

// Load returns the stored session for the subject, or nil when none exists.
// Load never fails the caller: a missing key, an unreachable store, or a
// payload that no longer parses all read as logged-out. Unreadable payloads
// are logged and deleted so they cannot shadow a future login.
func (r *SessionRepository) Load(ctx context.Context, subjectID string) *models.Session {
	raw, err := r.client.Get(ctx, sessionKeyPrefix+subjectID).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.logger.Warn("session store read failed", zap.String("subject_id", subjectID), zap.Error(err))
		}
		return nil
	}
	var session models.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		r.logger.Warn("discarding unreadable session payload", zap.String("subject_id", subjectID), zap.Error(err))
		r.Clear(ctx, subjectID)
		return nil
	}
	return &session
}

// Clear removes the subject's session. Clearing an absent session is a no-op.
func (r *SessionRepository) Clear(ctx context.Context, subjectID string) {
	if err := r.client.Del(ctx, sessionKeyPrefix+subjectID).Err(); err != nil {
		r.logger.Warn("session store delete failed", zap.String("subject_id", subjectID), zap.Error(err))
	}
}
