package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/soma-studio/soma-approve-api/internal/models"
	appErrors "github.com/soma-studio/soma-approve-api/pkg/errors"
)

const clientActivityCacheKey = "clients:activity"

type clientStore interface {
	Create(ctx context.Context, client *models.Client) error
	GetByID(ctx context.Context, id string) (*models.Client, error)
	ListActivity(ctx context.Context) ([]models.ClientActivity, error)
}

type activityCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type cacheMetrics interface {
	RecordCacheOperation(hit bool)
}

// ClientService manages client accounts and the admin activity dashboard.
type ClientService struct {
	clients   clientStore
	cache     activityCache
	metrics   cacheMetrics
	validator *validator.Validate
	logger    *zap.Logger
	cacheTTL  time.Duration
}

// NewClientService constructs the service.
func NewClientService(clients clientStore, cache activityCache, metrics cacheMetrics, validate *validator.Validate, logger *zap.Logger, cacheTTL time.Duration) *ClientService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &ClientService{clients: clients, cache: cache, metrics: metrics, validator: validate, logger: logger, cacheTTL: cacheTTL}
}

// Create registers a new client account.
func (s *ClientService) Create(ctx context.Context, client *models.Client, actor *models.JWTClaims) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	if actor.Role != models.RoleAdmin {
		return appErrors.ErrForbidden
	}
	if client.Name == "" || client.Email == "" {
		return appErrors.Clone(appErrors.ErrValidation, "name and email are required")
	}
	client.Active = true
	if err := s.clients.Create(ctx, client); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create client")
	}
	s.invalidateActivity(ctx)
	return nil
}

// Get returns a client by id.
func (s *ClientService) Get(ctx context.Context, id string) (*models.Client, error) {
	client, err := s.clients.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "client not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load client")
	}
	return client, nil
}

// ListActivity returns per-client review progress, served from cache when
// fresh.
func (s *ClientService) ListActivity(ctx context.Context) ([]models.ClientActivity, error) {
	if s.cache != nil {
		var cached []models.ClientActivity
		if err := s.cache.Get(ctx, clientActivityCacheKey, &cached); err == nil {
			if s.metrics != nil {
				s.metrics.RecordCacheOperation(true)
			}
			return cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("client activity cache read failed", zap.Error(err))
		}
		if s.metrics != nil {
			s.metrics.RecordCacheOperation(false)
		}
	}

	activity, err := s.clients.ListActivity(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list client activity")
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, clientActivityCacheKey, activity, s.cacheTTL); err != nil {
			s.logger.Warn("client activity cache write failed", zap.Error(err))
		}
	}
	return activity, nil
}

// InvalidateActivity drops the cached dashboard after review decisions.
func (s *ClientService) InvalidateActivity(ctx context.Context) {
	s.invalidateActivity(ctx)
}

func (s *ClientService) invalidateActivity(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, clientActivityCacheKey); err != nil {
		s.logger.Warn("client activity cache invalidation failed", zap.Error(err))
	}
}
