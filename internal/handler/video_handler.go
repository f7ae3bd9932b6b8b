package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/soma-studio/soma-approve-api/internal/dto"
	"github.com/soma-studio/soma-approve-api/internal/models"
	appErrors "github.com/soma-studio/soma-approve-api/pkg/errors"
	"github.com/soma-studio/soma-approve-api/pkg/response"
)

type videoService interface {
	Create(ctx context.Context, req dto.CreateVideoRequest, actor *models.JWTClaims) (*models.Video, error)
	Get(ctx context.Context, id string, actor *models.JWTClaims) (*models.Video, error)
	List(ctx context.Context, query dto.VideoQuery, actor *models.JWTClaims) ([]models.Video, *models.Pagination, error)
	Delete(ctx context.Context, id string, actor *models.JWTClaims) error
	Enrich(videos []models.Video, now time.Time) []dto.VideoResponse
}

type reviewService interface {
	Queue(ctx context.Context, clientID string, actor *models.JWTClaims) ([]models.Video, error)
	NextAfter(ctx context.Context, clientID, currentVideoID string, actor *models.JWTClaims) (*models.Video, error)
	Approve(ctx context.Context, videoID string, actor *models.JWTClaims) (*models.Video, error)
	Reject(ctx context.Context, videoID string, req dto.RejectRequest, actor *models.JWTClaims) (*models.Video, error)
}

// VideoHandler exposes REST endpoints for the video catalog and review flow.
type VideoHandler struct {
	videos videoService
	review reviewService
}

// NewVideoHandler constructs the handler.
func NewVideoHandler(videos videoService, review reviewService) *VideoHandler {
	return &VideoHandler{videos: videos, review: review}
}

// Create godoc
// @Summary Register a video awaiting review
// @Tags Videos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateVideoRequest true "Video payload"
// @Success 201 {object} response.Envelope
// @Router /videos [post]
func (h *VideoHandler) Create(c *gin.Context) {
	var req dto.CreateVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid video payload"))
		return
	}
	video, err := h.videos.Create(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, video)
}

// List godoc
// @Summary List videos
// @Tags Videos
// @Produce json
// @Security BearerAuth
// @Param clientId query string false "Filter by client"
// @Param status query string false "Filter by review status"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /videos [get]
func (h *VideoHandler) List(c *gin.Context) {
	query := dto.VideoQuery{
		ClientID: c.Query("clientId"),
		Status:   c.Query("status"),
	}
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PageSize, _ = strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	videos, pagination, err := h.videos.List(c.Request.Context(), query, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, h.videos.Enrich(videos, time.Now()), pagination)
}

// Get godoc
// @Summary Fetch a single video
// @Tags Videos
// @Produce json
// @Security BearerAuth
// @Param id path string true "Video ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /videos/{id} [get]
func (h *VideoHandler) Get(c *gin.Context) {
	video, err := h.videos.Get(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	enriched := h.videos.Enrich([]models.Video{*video}, time.Now())
	response.JSON(c, http.StatusOK, enriched[0], nil)
}

// Delete godoc
// @Summary Remove a video from the catalog
// @Tags Videos
// @Security BearerAuth
// @Param id path string true "Video ID"
// @Success 204
// @Router /videos/{id} [delete]
func (h *VideoHandler) Delete(c *gin.Context) {
	if err := h.videos.Delete(c.Request.Context(), c.Param("id"), claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Queue godoc
// @Summary Pending videos in arrival order
// @Tags Review
// @Produce json
// @Security BearerAuth
// @Param clientId query string false "Client ID (admins only)"
// @Param after query string false "Return only the entry following this video"
// @Success 200 {object} response.Envelope
// @Router /videos/queue [get]
func (h *VideoHandler) Queue(c *gin.Context) {
	if after := c.Query("after"); after != "" {
		next, err := h.review.NextAfter(c.Request.Context(), c.Query("clientId"), after, claimsFromContext(c))
		if err != nil {
			response.Error(c, err)
			return
		}
		var resp dto.NextVideoResponse
		if next != nil {
			enriched := h.videos.Enrich([]models.Video{*next}, time.Now())
			resp.Next = &enriched[0]
		}
		response.JSON(c, http.StatusOK, resp, nil)
		return
	}

	videos, err := h.review.Queue(c.Request.Context(), c.Query("clientId"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	queue := dto.QueueResponse{
		Videos: h.videos.Enrich(videos, time.Now()),
		Total:  len(videos),
	}
	response.JSON(c, http.StatusOK, queue, nil)
}

// Approve godoc
// @Summary Approve a pending video
// @Tags Review
// @Produce json
// @Security BearerAuth
// @Param id path string true "Video ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /videos/{id}/approve [post]
func (h *VideoHandler) Approve(c *gin.Context) {
	video, err := h.review.Approve(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, video, nil)
}

// Reject godoc
// @Summary Reject a pending video with feedback
// @Tags Review
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Video ID"
// @Param payload body dto.RejectRequest true "Rejection feedback"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /videos/{id}/reject [post]
func (h *VideoHandler) Reject(c *gin.Context) {
	var req dto.RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid rejection payload"))
		return
	}
	video, err := h.review.Reject(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, video, nil)
}
