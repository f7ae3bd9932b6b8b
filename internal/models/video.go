package models

import (
	"fmt"
	"time"

	"github.com/lib/pq"
)

// VideoStatus is the review lifecycle state of a video. Pending is the only
// non-terminal state; approved and rejected are never left again.
type VideoStatus string

const (
	VideoStatusPending  VideoStatus = "pending"
	VideoStatusApproved VideoStatus = "approved"
	VideoStatusRejected VideoStatus = "rejected"
)

// Valid reports whether the status is a known lifecycle state.
func (s VideoStatus) Valid() bool {
	switch s {
	case VideoStatusPending, VideoStatusApproved, VideoStatusRejected:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further transition may leave this state.
func (s VideoStatus) Terminal() bool {
	return s == VideoStatusApproved || s == VideoStatusRejected
}

// VideoPriority is set at creation and not mutated by the review workflow.
type VideoPriority string

const (
	PriorityLow    VideoPriority = "low"
	PriorityMedium VideoPriority = "medium"
	PriorityHigh   VideoPriority = "high"
)

// Valid reports whether the priority is a known level.
func (p VideoPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// StorageProvider tags the active content source of a video.
type StorageProvider string

const (
	ProviderDirectURL   StorageProvider = "direct-url"
	ProviderGoogleDrive StorageProvider = "google-drive"
)

// VideoSource is a tagged variant: exactly one retrieval method is active.
// Either URL (direct-url) or DriveFileID (google-drive) is set, never both.
type VideoSource struct {
	Provider    StorageProvider `db:"storage_provider" json:"storageProvider"`
	URL         string          `db:"video_url" json:"videoUrl,omitempty"`
	DriveFileID string          `db:"drive_file_id" json:"googleDriveFileId,omitempty"`
}

// DirectURLSource builds a direct-url source.
func DirectURLSource(url string) VideoSource {
	return VideoSource{Provider: ProviderDirectURL, URL: url}
}

// DriveFileSource builds a google-drive source.
func DriveFileSource(fileID string) VideoSource {
	return VideoSource{Provider: ProviderGoogleDrive, DriveFileID: fileID}
}

// Validate enforces the exactly-one-provider invariant.
func (s VideoSource) Validate() error {
	switch s.Provider {
	case ProviderDirectURL:
		if s.URL == "" {
			return fmt.Errorf("direct-url source requires videoUrl")
		}
		if s.DriveFileID != "" {
			return fmt.Errorf("direct-url source must not carry a drive file id")
		}
	case ProviderGoogleDrive:
		if s.DriveFileID == "" {
			return fmt.Errorf("google-drive source requires googleDriveFileId")
		}
		if s.URL != "" {
			return fmt.Errorf("google-drive source must not carry a direct url")
		}
	default:
		return fmt.Errorf("unknown storage provider %q", s.Provider)
	}
	return nil
}

// Video is the record under state-machine control. Feedback fields are empty
// unless the status is rejected.
type Video struct {
	ID                 string         `db:"id" json:"id"`
	ClientID           string         `db:"client_id" json:"clientId"`
	Title              string         `db:"title" json:"title"`
	Description        string         `db:"description" json:"description,omitempty"`
	ThumbnailURL       string         `db:"thumbnail_url" json:"thumbnailUrl,omitempty"`
	Source             VideoSource    `json:"source"`
	DurationSeconds    int            `db:"duration_seconds" json:"duration"`
	Type               string         `db:"video_type" json:"type,omitempty"`
	Status             VideoStatus    `db:"status" json:"status"`
	Priority           VideoPriority  `db:"priority" json:"priority"`
	UploadedAt         time.Time      `db:"uploaded_at" json:"uploadedAt"`
	Deadline           time.Time      `db:"deadline" json:"deadline"`
	Feedback           string         `db:"feedback" json:"feedback,omitempty"`
	FeedbackCategories pq.StringArray `db:"feedback_categories" json:"feedbackCategories,omitempty"`
	ReviewedAt         *time.Time     `db:"reviewed_at" json:"reviewedAt,omitempty"`
	CreatedAt          time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt          time.Time      `db:"updated_at" json:"updatedAt"`
}

// VideoFilter captures filtering criteria for listing videos.
type VideoFilter struct {
	ClientID string
	Status   *VideoStatus
	Page     int
	PageSize int
}

// ReviewDecision is emitted when a review transition commits.
type ReviewDecision struct {
	VideoID    string      `json:"video_id"`
	ClientID   string      `json:"client_id"`
	Status     VideoStatus `json:"status"`
	Feedback   string      `json:"feedback,omitempty"`
	Categories []string    `json:"categories,omitempty"`
	DecidedAt  time.Time   `json:"decided_at"`
}
