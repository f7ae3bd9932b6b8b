package models

import "time"

// Client is a reviewing customer whose videos flow through the approval queue.
type Client struct {
	ID                 string     `db:"id" json:"id"`
	Name               string     `db:"name" json:"name"`
	Email              string     `db:"email" json:"email"`
	Company            string     `db:"company" json:"company,omitempty"`
	AvatarURL          string     `db:"avatar_url" json:"avatarUrl,omitempty"`
	GoogleDriveFolder  string     `db:"drive_folder_id" json:"googleDriveFolderId,omitempty"`
	LastSyncAt         *time.Time `db:"last_sync_at" json:"lastSyncAt,omitempty"`
	Active             bool       `db:"active" json:"isActive"`
	CreatedAt          time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updatedAt"`
}

// ClientActivity aggregates per-client review progress for the admin dashboard.
type ClientActivity struct {
	Client
	VideosTotal    int        `db:"videos_total" json:"videosTotal"`
	VideosPending  int        `db:"videos_pending" json:"videosPending"`
	VideosApproved int        `db:"videos_approved" json:"videosApproved"`
	VideosRejected int        `db:"videos_rejected" json:"videosRejected"`
	LastActivity   *time.Time `db:"last_activity" json:"lastActivity,omitempty"`
}
