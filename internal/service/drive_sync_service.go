package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/soma-studio/soma-approve-api/internal/drive"
	"github.com/soma-studio/soma-approve-api/internal/dto"
	"github.com/soma-studio/soma-approve-api/internal/models"
	appErrors "github.com/soma-studio/soma-approve-api/pkg/errors"
)

// Imported videos get a week to be reviewed unless an admin adjusts it.
const defaultImportDeadline = 7 * 24 * time.Hour

// FolderBrowser lists video files inside a Drive folder.
type FolderBrowser interface {
	ListVideos(ctx context.Context, folderID string) ([]models.DriveVideoCandidate, error)
}

type driveVideoStore interface {
	Create(ctx context.Context, video *models.Video) error
	ExistsByDriveFileID(ctx context.Context, fileID string) (bool, error)
}

type driveClientStore interface {
	GetByID(ctx context.Context, id string) (*models.Client, error)
	ListFolderMappings(ctx context.Context) ([]models.ClientFolderMapping, error)
	UpdateLastSync(ctx context.Context, clientID string, at time.Time) error
}

// DriveSyncService imports videos from clients' mapped Drive folders into the
// review queue.
type DriveSyncService struct {
	browser FolderBrowser
	videos  driveVideoStore
	clients driveClientStore
	logger  *zap.Logger
}

// NewDriveSyncService constructs the service.
func NewDriveSyncService(browser FolderBrowser, videos driveVideoStore, clients driveClientStore, logger *zap.Logger) *DriveSyncService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DriveSyncService{browser: browser, videos: videos, clients: clients, logger: logger}
}

// Mappings returns the configured client folder mappings. Admin only.
func (s *DriveSyncService) Mappings(ctx context.Context, actor *models.JWTClaims) ([]models.ClientFolderMapping, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if actor.Role != models.RoleAdmin {
		return nil, appErrors.ErrForbidden
	}
	mappings, err := s.clients.ListFolderMappings(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list folder mappings")
	}
	return mappings, nil
}

// SyncClient imports new videos from a single client's folder. Files already
// in the catalog are skipped, so repeated syncs are safe.
func (s *DriveSyncService) SyncClient(ctx context.Context, clientID string, actor *models.JWTClaims) (*dto.DriveSyncResponse, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if actor.Role != models.RoleAdmin {
		return nil, appErrors.ErrForbidden
	}
	client, err := s.clients.GetByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "client not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load client")
	}
	if client.GoogleDriveFolder == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "client has no drive folder mapped")
	}

	candidates, err := s.browser.ListVideos(ctx, client.GoogleDriveFolder)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to browse drive folder")
	}

	now := time.Now().UTC()
	resp := &dto.DriveSyncResponse{
		ClientID:   client.ID,
		FolderID:   client.GoogleDriveFolder,
		Discovered: len(candidates),
		Candidates: candidates,
	}
	for _, candidate := range candidates {
		exists, err := s.videos.ExistsByDriveFileID(ctx, candidate.FileID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check imported files")
		}
		if exists {
			resp.Skipped++
			continue
		}
		video := &models.Video{
			ClientID:     client.ID,
			Title:        candidate.FileName,
			ThumbnailURL: drive.ThumbnailURL(candidate.FileID),
			Source:       models.DriveFileSource(candidate.FileID),
			Status:       models.VideoStatusPending,
			Priority:     models.PriorityMedium,
			UploadedAt:   candidate.CreatedTime,
			Deadline:     now.Add(defaultImportDeadline),
		}
		if video.UploadedAt.IsZero() {
			video.UploadedAt = now
		}
		if err := s.videos.Create(ctx, video); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to import drive video")
		}
		resp.Imported++
	}

	if err := s.clients.UpdateLastSync(ctx, client.ID, now); err != nil {
		s.logger.Warn("failed to record drive sync time", zap.String("client_id", client.ID), zap.Error(err))
	}

	s.logger.Info("drive folder synced",
		zap.String("client_id", client.ID),
		zap.Int("discovered", resp.Discovered),
		zap.Int("imported", resp.Imported),
		zap.Int("skipped", resp.Skipped),
	)
	return resp, nil
}
