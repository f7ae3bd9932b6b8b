package dto

import "github.com/soma-studio/soma-approve-api/internal/models"

// DriveSyncResponse summarizes one folder sync run.
type DriveSyncResponse struct {
	ClientID   string                       `json:"clientId"`
	FolderID   string                       `json:"folderId"`
	Discovered int                          `json:"discovered"`
	Imported   int                          `json:"imported"`
	Skipped    int                          `json:"skipped"`
	Candidates []models.DriveVideoCandidate `json:"candidates,omitempty"`
}
