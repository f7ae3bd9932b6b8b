package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/soma-studio/soma-approve-api/internal/models"
	appErrors "github.com/soma-studio/soma-approve-api/pkg/errors"
)

type mockClientStore struct {
	created  []*models.Client
	activity []models.ClientActivity
	calls    int
}

func (m *mockClientStore) Create(ctx context.Context, client *models.Client) error {
	m.created = append(m.created, client)
	return nil
}

func (m *mockClientStore) GetByID(ctx context.Context, id string) (*models.Client, error) {
	return &models.Client{ID: id}, nil
}

func (m *mockClientStore) ListActivity(ctx context.Context) ([]models.ClientActivity, error) {
	m.calls++
	return m.activity, nil
}

type memoryCache struct {
	values  map[string][]byte
	deletes int
}

func (c *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := c.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if c.values == nil {
		c.values = make(map[string][]byte)
	}
	c.values[key] = raw
	return nil
}

func (c *memoryCache) DeleteByPattern(ctx context.Context, pattern string) error {
	c.deletes++
	c.values = nil
	return nil
}

func TestClientActivityCaching(t *testing.T) {
	store := &mockClientStore{activity: []models.ClientActivity{
		{Client: models.Client{ID: "client-1", Name: "Acme"}, VideosPending: 2},
	}}
	cache := &memoryCache{}
	svc := NewClientService(store, cache, nil, nil, zap.NewNop(), time.Minute)

	first, err := svc.ListActivity(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, store.calls)

	second, err := svc.ListActivity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, store.calls, "second read must come from cache")

	svc.InvalidateActivity(context.Background())
	_, err = svc.ListActivity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, store.calls)
}

func TestClientCreateAdminOnly(t *testing.T) {
	store := &mockClientStore{}
	svc := NewClientService(store, nil, nil, nil, zap.NewNop(), time.Minute)

	err := svc.Create(context.Background(), &models.Client{Name: "Acme", Email: "a@b.c"}, clientActor())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	err = svc.Create(context.Background(), &models.Client{Name: "Acme", Email: "a@b.c"}, adminActor())
	require.NoError(t, err)
	require.Len(t, store.created, 1)
	assert.True(t, store.created[0].Active)

	err = svc.Create(context.Background(), &models.Client{}, adminActor())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
