package drive

import (
	"context"
	"fmt"
	"time"

	googledrive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/soma-studio/soma-approve-api/internal/models"
	"github.com/soma-studio/soma-approve-api/pkg/config"
)

// Browser lists video files inside mapped Drive folders.
type Browser struct {
	service  *googledrive.Service
	pageSize int64
}

// NewBrowser builds a Drive v3 client from the configured credentials.
func NewBrowser(ctx context.Context, cfg config.DriveConfig) (*Browser, error) {
	opts := make([]option.ClientOption, 0, 1)
	switch {
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	case cfg.APIKey != "":
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	default:
		return nil, fmt.Errorf("drive browser requires a credentials file or api key")
	}
	service, err := googledrive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	pageSize := int64(cfg.PageSize)
	if pageSize <= 0 {
		pageSize = 100
	}
	return &Browser{service: service, pageSize: pageSize}, nil
}

// ListVideos returns the video files found directly inside the folder.
func (b *Browser) ListVideos(ctx context.Context, folderID string) ([]models.DriveVideoCandidate, error) {
	query := fmt.Sprintf("'%s' in parents and mimeType contains 'video/' and trashed = false", folderID)
	var candidates []models.DriveVideoCandidate
	pageToken := ""
	for {
		call := b.service.Files.List().
			Context(ctx).
			Q(query).
			PageSize(b.pageSize).
			Fields("nextPageToken, files(id, name, mimeType, createdTime)")
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		list, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("list drive folder %s: %w", folderID, err)
		}
		for _, file := range list.Files {
			created, err := time.Parse(time.RFC3339, file.CreatedTime)
			if err != nil {
				created = time.Time{}
			}
			candidates = append(candidates, models.DriveVideoCandidate{
				FileID:      file.Id,
				FileName:    file.Name,
				MimeType:    file.MimeType,
				CreatedTime: created,
				FolderID:    folderID,
			})
		}
		if list.NextPageToken == "" {
			return candidates, nil
		}
		pageToken = list.NextPageToken
	}
}
