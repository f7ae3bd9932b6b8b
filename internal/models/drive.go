package models

import "time"

// ClientFolderMapping links a client to the Google Drive folder their vendor
// uploads videos into.
type ClientFolderMapping struct {
	ClientID      string     `json:"clientId"`
	ClientName    string     `json:"clientName"`
	DriveFolderID string     `json:"googleDriveFolderId"`
	LastSync      *time.Time `json:"lastSync,omitempty"`
}

// DriveVideoCandidate is a video file discovered in a mapped Drive folder.
type DriveVideoCandidate struct {
	FileID      string    `json:"fileId"`
	FileName    string    `json:"fileName"`
	MimeType    string    `json:"mimeType"`
	CreatedTime time.Time `json:"createdTime"`
	FolderID    string    `json:"folderId"`
}
