package dto

import (
	"time"

	"github.com/soma-studio/soma-approve-api/internal/models"
)

// CreateVideoRequest is the payload for registering a video awaiting review.
// Exactly one of VideoURL or GoogleDriveFileID must be set.
type CreateVideoRequest struct {
	ClientID          string               `json:"clientId" validate:"required"`
	Title             string               `json:"title" validate:"required"`
	Description       string               `json:"description"`
	ThumbnailURL      string               `json:"thumbnailUrl"`
	VideoURL          string               `json:"videoUrl"`
	GoogleDriveFileID string               `json:"googleDriveFileId"`
	Duration          int                  `json:"duration" validate:"gte=0"`
	Type              string               `json:"type"`
	Priority          models.VideoPriority `json:"priority"`
	Deadline          time.Time            `json:"deadline" validate:"required"`
}

// VideoQuery mirrors supported listing filters on GET /videos.
type VideoQuery struct {
	ClientID string
	Status   string
	Page     int
	PageSize int
}

// VideoResponse enriches the persisted record with deadline countdown text.
type VideoResponse struct {
	models.Video
	TimeRemaining string `json:"timeRemaining"`
}

// QueueResponse is the ordered list of videos awaiting a client's decision.
type QueueResponse struct {
	Videos []VideoResponse `json:"videos"`
	Total  int             `json:"total"`
}

// NextVideoResponse carries the queue entry following the one just reviewed.
// Next is null when the queue is exhausted.
type NextVideoResponse struct {
	Next *VideoResponse `json:"next"`
}
