package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/soma-studio/soma-approve-api/internal/dto"
	"github.com/soma-studio/soma-approve-api/internal/models"
	"github.com/soma-studio/soma-approve-api/internal/repository"
	"github.com/soma-studio/soma-approve-api/pkg/config"
	appErrors "github.com/soma-studio/soma-approve-api/pkg/errors"
)

type reviewVideoStore interface {
	GetByID(ctx context.Context, id string) (*models.Video, error)
	PendingByClient(ctx context.Context, clientID string) ([]models.Video, error)
	UpdateReview(ctx context.Context, params repository.ReviewVideoParams) error
}

type clientResolver interface {
	GetByEmail(ctx context.Context, email string) (*models.Client, error)
}

// DecisionSink receives committed review decisions for downstream processing.
type DecisionSink interface {
	Publish(ctx context.Context, decision models.ReviewDecision) error
}

// DecisionSinkFunc allows using plain functions.
type DecisionSinkFunc func(ctx context.Context, decision models.ReviewDecision) error

// Publish implements DecisionSink.
func (f DecisionSinkFunc) Publish(ctx context.Context, decision models.ReviewDecision) error {
	return f(ctx, decision)
}

type reviewMetrics interface {
	RecordReviewDecision(status models.VideoStatus)
	SetQueueDepth(clientID string, depth int)
}

// ReviewService drives the approval state machine: pending videos move to
// approved or rejected exactly once, only at the hand of the owning client.
type ReviewService struct {
	videos     reviewVideoStore
	clients    clientResolver
	sink       DecisionSink
	metrics    reviewMetrics
	logger     *zap.Logger
	categories map[string]struct{}
	maxLen     int
}

// ReviewServiceOption configures the service.
type ReviewServiceOption func(*ReviewService)

// WithDecisionSink sets the sink notified after each committed decision.
func WithDecisionSink(sink DecisionSink) ReviewServiceOption {
	return func(s *ReviewService) {
		if sink != nil {
			s.sink = sink
		}
	}
}

// WithReviewMetrics sets the metrics recorder.
func WithReviewMetrics(metrics reviewMetrics) ReviewServiceOption {
	return func(s *ReviewService) {
		if metrics != nil {
			s.metrics = metrics
		}
	}
}

// NewReviewService constructs the service with defaults.
func NewReviewService(videos reviewVideoStore, clients clientResolver, logger *zap.Logger, cfg config.ReviewConfig, opts ...ReviewServiceOption) *ReviewService {
	if logger == nil {
		logger = zap.NewNop()
	}
	categories := make(map[string]struct{}, len(cfg.FeedbackCategories))
	for _, c := range cfg.FeedbackCategories {
		if c = strings.TrimSpace(c); c != "" {
			categories[c] = struct{}{}
		}
	}
	maxLen := cfg.FeedbackMaxLen
	if maxLen <= 0 {
		maxLen = 500
	}
	svc := &ReviewService{
		videos:     videos,
		clients:    clients,
		logger:     logger,
		categories: categories,
		maxLen:     maxLen,
		sink: DecisionSinkFunc(func(context.Context, models.ReviewDecision) error {
			return nil
		}),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// Queue returns the actor's pending videos in arrival order. Clients only see
// their own queue; admins may read any client's queue.
func (s *ReviewService) Queue(ctx context.Context, clientID string, actor *models.JWTClaims) ([]models.Video, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	switch actor.Role {
	case models.RoleAdmin:
		if clientID == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "clientId is required")
		}
	case models.RoleClient:
		owner, err := s.resolveOwner(ctx, actor)
		if err != nil {
			return nil, err
		}
		if clientID == "" {
			clientID = owner.ID
		} else if clientID != owner.ID {
			return nil, appErrors.ErrForbidden
		}
	default:
		return nil, appErrors.ErrForbidden
	}

	videos, err := s.videos.PendingByClient(ctx, clientID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load review queue")
	}
	if s.metrics != nil {
		s.metrics.SetQueueDepth(clientID, len(videos))
	}
	return videos, nil
}

// NextAfter returns the queue entry immediately following currentVideoID, or
// nil when it is the last entry or no longer queued.
func (s *ReviewService) NextAfter(ctx context.Context, clientID, currentVideoID string, actor *models.JWTClaims) (*models.Video, error) {
	queue, err := s.Queue(ctx, clientID, actor)
	if err != nil {
		return nil, err
	}
	for i := range queue {
		if queue[i].ID == currentVideoID {
			if i+1 < len(queue) {
				next := queue[i+1]
				return &next, nil
			}
			return nil, nil
		}
	}
	return nil, nil
}

// Approve moves a pending video to approved.
func (s *ReviewService) Approve(ctx context.Context, videoID string, actor *models.JWTClaims) (*models.Video, error) {
	return s.decide(ctx, videoID, actor, models.VideoStatusApproved, nil, "")
}

// Reject moves a pending video to rejected with structured feedback. The
// decision must carry at least one category or a feedback note.
func (s *ReviewService) Reject(ctx context.Context, videoID string, req dto.RejectRequest, actor *models.JWTClaims) (*models.Video, error) {
	categories, err := s.normalizeCategories(req.Categories)
	if err != nil {
		return nil, err
	}
	feedback := strings.TrimSpace(req.Feedback)
	if len(categories) == 0 && feedback == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "rejection needs at least one category or a feedback note")
	}
	if utf8.RuneCountInString(feedback) > s.maxLen {
		return nil, appErrors.Clone(appErrors.ErrFeedbackTooLong,
			fmt.Sprintf("feedback exceeds the maximum of %d characters", s.maxLen))
	}
	return s.decide(ctx, videoID, actor, models.VideoStatusRejected, categories, feedback)
}

func (s *ReviewService) decide(ctx context.Context, videoID string, actor *models.JWTClaims, status models.VideoStatus, categories []string, feedback string) (*models.Video, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}

	video, err := s.videos.GetByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "video not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load video")
	}

	if err := s.authorizeDecision(ctx, video, actor); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	err = s.videos.UpdateReview(ctx, repository.ReviewVideoParams{
		ID:         video.ID,
		Status:     status,
		Feedback:   feedback,
		Categories: categories,
		ReviewedAt: now,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Lost the race or the state was already terminal. Either way the
			// stored outcome is whatever committed first.
			return nil, appErrors.ErrInvalidTransition
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist review decision")
	}

	video.Status = status
	video.Feedback = feedback
	video.FeedbackCategories = categories
	video.ReviewedAt = &now
	video.UpdatedAt = now

	decision := models.ReviewDecision{
		VideoID:    video.ID,
		ClientID:   video.ClientID,
		Status:     status,
		Feedback:   feedback,
		Categories: categories,
		DecidedAt:  now,
	}
	if err := s.sink.Publish(ctx, decision); err != nil {
		s.logger.Warn("failed to publish review decision", zap.String("video_id", video.ID), zap.Error(err))
	}
	if s.metrics != nil {
		s.metrics.RecordReviewDecision(status)
	}

	s.logger.Info("review decision committed",
		zap.String("video_id", video.ID),
		zap.String("client_id", video.ClientID),
		zap.String("status", string(status)),
	)
	return video, nil
}

// authorizeDecision enforces that only the owning client decides. Admin
// accounts manage the catalog but do not review on a client's behalf.
func (s *ReviewService) authorizeDecision(ctx context.Context, video *models.Video, actor *models.JWTClaims) error {
	if actor.Role != models.RoleClient {
		return appErrors.ErrForbidden
	}
	owner, err := s.resolveOwner(ctx, actor)
	if err != nil {
		return err
	}
	if owner.ID != video.ClientID {
		return appErrors.ErrForbidden
	}
	return nil
}

func (s *ReviewService) resolveOwner(ctx context.Context, actor *models.JWTClaims) (*models.Client, error) {
	client, err := s.clients.GetByEmail(ctx, actor.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrForbidden
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve client account")
	}
	return client, nil
}

// normalizeCategories validates against the configured vocabulary and drops
// duplicates while preserving submission order.
func (s *ReviewService) normalizeCategories(raw []string) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, c := range raw {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, ok := s.categories[c]; !ok {
			return nil, appErrors.Clone(appErrors.ErrUnknownCategory, fmt.Sprintf("unknown feedback category %q", c))
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out, nil
}
