package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soma-studio/soma-approve-api/internal/dto"
	"github.com/soma-studio/soma-approve-api/internal/middleware"
	"github.com/soma-studio/soma-approve-api/internal/models"
	appErrors "github.com/soma-studio/soma-approve-api/pkg/errors"
)

type videoServiceMock struct {
	videos []models.Video
}

func (m *videoServiceMock) Create(ctx context.Context, req dto.CreateVideoRequest, actor *models.JWTClaims) (*models.Video, error) {
	return &models.Video{ID: "vid-1", Title: req.Title, Status: models.VideoStatusPending}, nil
}

func (m *videoServiceMock) Get(ctx context.Context, id string, actor *models.JWTClaims) (*models.Video, error) {
	for i := range m.videos {
		if m.videos[i].ID == id {
			return &m.videos[i], nil
		}
	}
	return nil, appErrors.ErrNotFound
}

func (m *videoServiceMock) List(ctx context.Context, query dto.VideoQuery, actor *models.JWTClaims) ([]models.Video, *models.Pagination, error) {
	return m.videos, &models.Pagination{Page: 1, PageSize: 20, TotalCount: len(m.videos)}, nil
}

func (m *videoServiceMock) Delete(ctx context.Context, id string, actor *models.JWTClaims) error {
	return nil
}

func (m *videoServiceMock) Enrich(videos []models.Video, now time.Time) []dto.VideoResponse {
	out := make([]dto.VideoResponse, 0, len(videos))
	for _, v := range videos {
		out = append(out, dto.VideoResponse{Video: v, TimeRemaining: "2d remaining"})
	}
	return out
}

type reviewServiceMock struct {
	queue      []models.Video
	decideErr  error
	lastReject dto.RejectRequest
}

func (m *reviewServiceMock) Queue(ctx context.Context, clientID string, actor *models.JWTClaims) ([]models.Video, error) {
	return m.queue, nil
}

func (m *reviewServiceMock) NextAfter(ctx context.Context, clientID, currentVideoID string, actor *models.JWTClaims) (*models.Video, error) {
	for i := range m.queue {
		if m.queue[i].ID == currentVideoID && i+1 < len(m.queue) {
			return &m.queue[i+1], nil
		}
	}
	return nil, nil
}

func (m *reviewServiceMock) Approve(ctx context.Context, videoID string, actor *models.JWTClaims) (*models.Video, error) {
	if m.decideErr != nil {
		return nil, m.decideErr
	}
	return &models.Video{ID: videoID, Status: models.VideoStatusApproved}, nil
}

func (m *reviewServiceMock) Reject(ctx context.Context, videoID string, req dto.RejectRequest, actor *models.JWTClaims) (*models.Video, error) {
	if m.decideErr != nil {
		return nil, m.decideErr
	}
	m.lastReject = req
	return &models.Video{ID: videoID, Status: models.VideoStatusRejected, Feedback: req.Feedback}, nil
}

func clientClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "sub-1", Email: "ana@acme.com", Role: models.RoleClient}
}

func TestQueueReturnsTotalAndCountdowns(t *testing.T) {
	gin.SetMode(gin.TestMode)
	review := &reviewServiceMock{queue: []models.Video{
		{ID: "vid-1", Status: models.VideoStatusPending},
		{ID: "vid-2", Status: models.VideoStatusPending},
	}}
	handler := NewVideoHandler(&videoServiceMock{}, review)

	c, w := newGinContext(http.MethodGet, "/videos/queue", nil)
	c.Set(middleware.ContextUserKey, clientClaims())

	handler.Queue(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data dto.QueueResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, 2, envelope.Data.Total)
	require.Len(t, envelope.Data.Videos, 2)
	assert.Equal(t, "2d remaining", envelope.Data.Videos[0].TimeRemaining)
}

func TestQueueNextNavigation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	review := &reviewServiceMock{queue: []models.Video{
		{ID: "vid-1", Status: models.VideoStatusPending},
		{ID: "vid-2", Status: models.VideoStatusPending},
	}}
	handler := NewVideoHandler(&videoServiceMock{}, review)

	c, w := newGinContext(http.MethodGet, "/videos/queue?after=vid-1", nil)
	c.Set(middleware.ContextUserKey, clientClaims())

	handler.Queue(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data dto.NextVideoResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Data.Next)
	assert.Equal(t, "vid-2", envelope.Data.Next.ID)
}

func TestQueueNextExhausted(t *testing.T) {
	gin.SetMode(gin.TestMode)
	review := &reviewServiceMock{queue: []models.Video{
		{ID: "vid-1", Status: models.VideoStatusPending},
	}}
	handler := NewVideoHandler(&videoServiceMock{}, review)

	c, w := newGinContext(http.MethodGet, "/videos/queue?after=vid-1", nil)
	c.Set(middleware.ContextUserKey, clientClaims())

	handler.Queue(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data dto.NextVideoResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Nil(t, envelope.Data.Next)
}

func TestApprove(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewVideoHandler(&videoServiceMock{}, &reviewServiceMock{})

	c, w := newGinContext(http.MethodPost, "/videos/vid-1/approve", nil)
	c.Params = gin.Params{{Key: "id", Value: "vid-1"}}
	c.Set(middleware.ContextUserKey, clientClaims())

	handler.Approve(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data models.Video `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, models.VideoStatusApproved, envelope.Data.Status)
}

func TestApproveConflictWhenAlreadyReviewed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewVideoHandler(&videoServiceMock{}, &reviewServiceMock{decideErr: appErrors.ErrInvalidTransition})

	c, w := newGinContext(http.MethodPost, "/videos/vid-1/approve", nil)
	c.Params = gin.Params{{Key: "id", Value: "vid-1"}}
	c.Set(middleware.ContextUserKey, clientClaims())

	handler.Approve(c)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRejectForwardsFeedback(t *testing.T) {
	gin.SetMode(gin.TestMode)
	review := &reviewServiceMock{}
	handler := NewVideoHandler(&videoServiceMock{}, review)

	payload, _ := json.Marshal(dto.RejectRequest{
		Categories: []string{"Áudio"},
		Feedback:   "melhorar mixagem",
	})
	c, w := newGinContext(http.MethodPost, "/videos/vid-1/reject", payload)
	c.Params = gin.Params{{Key: "id", Value: "vid-1"}}
	c.Set(middleware.ContextUserKey, clientClaims())

	handler.Reject(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"Áudio"}, review.lastReject.Categories)
	assert.Equal(t, "melhorar mixagem", review.lastReject.Feedback)
}

func TestRejectInvalidPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewVideoHandler(&videoServiceMock{}, &reviewServiceMock{})

	c, w := newGinContext(http.MethodPost, "/videos/vid-1/reject", []byte(`{"feedback": 42}`))
	c.Params = gin.Params{{Key: "id", Value: "vid-1"}}
	c.Set(middleware.ContextUserKey, clientClaims())

	handler.Reject(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListEnrichesVideos(t *testing.T) {
	gin.SetMode(gin.TestMode)
	videos := &videoServiceMock{videos: []models.Video{{ID: "vid-1", Status: models.VideoStatusPending}}}
	handler := NewVideoHandler(videos, &reviewServiceMock{})

	c, w := newGinContext(http.MethodGet, "/videos?page=1", nil)
	c.Set(middleware.ContextUserKey, clientClaims())

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data       []dto.VideoResponse `json:"data"`
		Pagination *models.Pagination  `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, "2d remaining", envelope.Data[0].TimeRemaining)
	require.NotNil(t, envelope.Pagination)
	assert.Equal(t, 1, envelope.Pagination.TotalCount)
}
