package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/soma-studio/soma-approve-api/internal/dto"
	"github.com/soma-studio/soma-approve-api/internal/models"
	appErrors "github.com/soma-studio/soma-approve-api/pkg/errors"
)

type videoStore interface {
	Create(ctx context.Context, video *models.Video) error
	GetByID(ctx context.Context, id string) (*models.Video, error)
	List(ctx context.Context, filter models.VideoFilter) ([]models.Video, int, error)
	Delete(ctx context.Context, id string) error
}

// VideoService manages the video catalog around the review workflow.
type VideoService struct {
	videos    videoStore
	clients   clientResolver
	validator *validator.Validate
	logger    *zap.Logger
}

// NewVideoService constructs the service.
func NewVideoService(videos videoStore, clients clientResolver, validate *validator.Validate, logger *zap.Logger) *VideoService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &VideoService{videos: videos, clients: clients, validator: validate, logger: logger}
}

// Create registers a new video awaiting review. Only admins upload.
func (s *VideoService) Create(ctx context.Context, req dto.CreateVideoRequest, actor *models.JWTClaims) (*models.Video, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if actor.Role != models.RoleAdmin {
		return nil, appErrors.ErrForbidden
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid video payload")
	}

	var source models.VideoSource
	switch {
	case req.VideoURL != "" && req.GoogleDriveFileID != "":
		return nil, appErrors.Clone(appErrors.ErrValidation, "provide either videoUrl or googleDriveFileId, not both")
	case req.VideoURL != "":
		source = models.DirectURLSource(req.VideoURL)
	case req.GoogleDriveFileID != "":
		source = models.DriveFileSource(req.GoogleDriveFileID)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "videoUrl or googleDriveFileId is required")
	}
	if err := source.Validate(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}

	priority := req.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !priority.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "priority must be low, medium, or high")
	}

	video := &models.Video{
		ClientID:        req.ClientID,
		Title:           req.Title,
		Description:     req.Description,
		ThumbnailURL:    req.ThumbnailURL,
		Source:          source,
		DurationSeconds: req.Duration,
		Type:            req.Type,
		Status:          models.VideoStatusPending,
		Priority:        priority,
		Deadline:        req.Deadline.UTC(),
	}
	if err := s.videos.Create(ctx, video); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create video")
	}

	s.logger.Info("video registered",
		zap.String("video_id", video.ID),
		zap.String("client_id", video.ClientID),
		zap.String("provider", string(video.Source.Provider)),
	)
	return video, nil
}

// Get returns a single video, scoped to its owner for client accounts.
func (s *VideoService) Get(ctx context.Context, id string, actor *models.JWTClaims) (*models.Video, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	video, err := s.videos.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "video not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load video")
	}
	if err := s.authorizeRead(ctx, video.ClientID, actor); err != nil {
		return nil, err
	}
	return video, nil
}

// List returns videos matching the query. Client accounts only ever see their
// own catalog regardless of the filter they send.
func (s *VideoService) List(ctx context.Context, query dto.VideoQuery, actor *models.JWTClaims) ([]models.Video, *models.Pagination, error) {
	if actor == nil {
		return nil, nil, appErrors.ErrUnauthorized
	}
	filter := models.VideoFilter{
		ClientID: query.ClientID,
		Page:     query.Page,
		PageSize: query.PageSize,
	}
	if query.Status != "" {
		status := models.VideoStatus(query.Status)
		if !status.Valid() {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "status must be pending, approved, or rejected")
		}
		filter.Status = &status
	}
	if actor.Role == models.RoleClient {
		owner, err := s.resolveOwner(ctx, actor)
		if err != nil {
			return nil, nil, err
		}
		if filter.ClientID != "" && filter.ClientID != owner.ID {
			return nil, nil, appErrors.ErrForbidden
		}
		filter.ClientID = owner.ID
	}

	videos, total, err := s.videos.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list videos")
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return videos, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// Delete removes a video from the catalog. Admin only.
func (s *VideoService) Delete(ctx context.Context, id string, actor *models.JWTClaims) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	if actor.Role != models.RoleAdmin {
		return appErrors.ErrForbidden
	}
	if err := s.videos.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "video not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete video")
	}
	return nil
}

// Enrich converts videos into responses carrying the deadline countdown as
// seen at the provided instant.
func (s *VideoService) Enrich(videos []models.Video, now time.Time) []dto.VideoResponse {
	out := make([]dto.VideoResponse, 0, len(videos))
	for _, v := range videos {
		out = append(out, dto.VideoResponse{Video: v, TimeRemaining: TimeRemaining(v.Deadline, now)})
	}
	return out
}

func (s *VideoService) authorizeRead(ctx context.Context, ownerID string, actor *models.JWTClaims) error {
	if actor.Role == models.RoleAdmin {
		return nil
	}
	owner, err := s.resolveOwner(ctx, actor)
	if err != nil {
		return err
	}
	if owner.ID != ownerID {
		return appErrors.ErrForbidden
	}
	return nil
}

func (s *VideoService) resolveOwner(ctx context.Context, actor *models.JWTClaims) (*models.Client, error) {
	client, err := s.clients.GetByEmail(ctx, actor.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrForbidden
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve client account")
	}
	return client, nil
}
