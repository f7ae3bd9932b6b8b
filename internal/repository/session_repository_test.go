package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/soma-studio/soma-approve-api/internal/models"
)

// sessionRedisStub keeps the stored payloads verbatim so Load exercises the
// real serialization and error handling paths.
type sessionRedisStub struct {
	data    map[string]string
	downErr error
}

func newSessionRedisStub() *sessionRedisStub {
	return &sessionRedisStub{data: map[string]string{}}
}

func (s *sessionRedisStub) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if s.downErr != nil {
		return redis.NewStatusResult("", s.downErr)
	}
	switch v := value.(type) {
	case []byte:
		s.data[key] = string(v)
	case string:
		s.data[key] = v
	}
	return redis.NewStatusResult("OK", nil)
}

func (s *sessionRedisStub) Get(ctx context.Context, key string) *redis.StringCmd {
	if s.downErr != nil {
		return redis.NewStringResult("", s.downErr)
	}
	raw, ok := s.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(raw, nil)
}

func (s *sessionRedisStub) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	if s.downErr != nil {
		return redis.NewIntResult(0, s.downErr)
	}
	var removed int64
	for _, key := range keys {
		if _, ok := s.data[key]; ok {
			delete(s.data, key)
			removed++
		}
	}
	return redis.NewIntResult(removed, nil)
}

func newSessionRepo(stub *sessionRedisStub) *SessionRepository {
	return &SessionRepository{client: stub, logger: zap.NewNop()}
}

func testSession() *models.Session {
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &models.Session{
		SubjectID:  "sub-1",
		Email:      "ana@acme.com",
		Name:       "Ana",
		Role:       models.RoleClient,
		Credential: "google-jwt",
		IssuedAt:   issued,
		ExpiresAt:  issued.Add(168 * time.Hour),
	}
}

func TestSessionRoundTrip(t *testing.T) {
	stub := newSessionRedisStub()
	repo := newSessionRepo(stub)
	session := testSession()

	require.NoError(t, repo.Save(context.Background(), session, time.Hour))

	loaded := repo.Load(context.Background(), "sub-1")
	require.NotNil(t, loaded)
	assert.Equal(t, session, loaded)
}

func TestSessionClearIdempotent(t *testing.T) {
	stub := newSessionRedisStub()
	repo := newSessionRepo(stub)

	require.NoError(t, repo.Save(context.Background(), testSession(), time.Hour))
	repo.Clear(context.Background(), "sub-1")
	assert.Nil(t, repo.Load(context.Background(), "sub-1"))

	// Clearing an already absent session changes nothing.
	repo.Clear(context.Background(), "sub-1")
	assert.Nil(t, repo.Load(context.Background(), "sub-1"))
}

func TestSessionLoadMissingReadsAsLoggedOut(t *testing.T) {
	repo := newSessionRepo(newSessionRedisStub())
	assert.Nil(t, repo.Load(context.Background(), "nobody"))
}

func TestSessionLoadCorruptPayloadDeleted(t *testing.T) {
	stub := newSessionRedisStub()
	repo := newSessionRepo(stub)
	stub.data[sessionKeyPrefix+"sub-1"] = "{not json"

	assert.Nil(t, repo.Load(context.Background(), "sub-1"))

	_, still := stub.data[sessionKeyPrefix+"sub-1"]
	assert.False(t, still, "unreadable payload must be dropped so it cannot shadow a future login")
}

func TestSessionLoadStoreUnreachableReadsAsLoggedOut(t *testing.T) {
	stub := newSessionRedisStub()
	repo := newSessionRepo(stub)
	require.NoError(t, repo.Save(context.Background(), testSession(), time.Hour))

	stub.downErr = errors.New("connection refused")
	assert.Nil(t, repo.Load(context.Background(), "sub-1"))
}
