package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/soma-studio/soma-approve-api/internal/models"
	appErrors "github.com/soma-studio/soma-approve-api/pkg/errors"
)

type mockBrowser struct {
	candidates []models.DriveVideoCandidate
}

func (m *mockBrowser) ListVideos(ctx context.Context, folderID string) ([]models.DriveVideoCandidate, error) {
	return m.candidates, nil
}

type mockDriveVideoStore struct {
	existing map[string]bool
	created  []*models.Video
}

func (m *mockDriveVideoStore) Create(ctx context.Context, video *models.Video) error {
	video.ID = "vid-imported"
	m.created = append(m.created, video)
	return nil
}

func (m *mockDriveVideoStore) ExistsByDriveFileID(ctx context.Context, fileID string) (bool, error) {
	return m.existing[fileID], nil
}

type mockDriveClientStore struct {
	client   *models.Client
	mappings []models.ClientFolderMapping
	synced   []string
}

func (m *mockDriveClientStore) GetByID(ctx context.Context, id string) (*models.Client, error) {
	if m.client == nil || m.client.ID != id {
		return nil, sql.ErrNoRows
	}
	return m.client, nil
}

func (m *mockDriveClientStore) ListFolderMappings(ctx context.Context) ([]models.ClientFolderMapping, error) {
	return m.mappings, nil
}

func (m *mockDriveClientStore) UpdateLastSync(ctx context.Context, clientID string, at time.Time) error {
	m.synced = append(m.synced, clientID)
	return nil
}

func TestSyncClientImportsNewFilesOnly(t *testing.T) {
	browser := &mockBrowser{candidates: []models.DriveVideoCandidate{
		{FileID: "file-1", FileName: "spot-30s.mp4", MimeType: "video/mp4", CreatedTime: time.Now().Add(-time.Hour)},
		{FileID: "file-2", FileName: "spot-60s.mp4", MimeType: "video/mp4"},
	}}
	videos := &mockDriveVideoStore{existing: map[string]bool{"file-1": true}}
	clients := &mockDriveClientStore{client: &models.Client{ID: "client-1", GoogleDriveFolder: "folder-1"}}
	svc := NewDriveSyncService(browser, videos, clients, zap.NewNop())

	resp, err := svc.SyncClient(context.Background(), "client-1", adminActor())
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Discovered)
	assert.Equal(t, 1, resp.Imported)
	assert.Equal(t, 1, resp.Skipped)

	require.Len(t, videos.created, 1)
	imported := videos.created[0]
	assert.Equal(t, models.ProviderGoogleDrive, imported.Source.Provider)
	assert.Equal(t, "file-2", imported.Source.DriveFileID)
	assert.Equal(t, models.VideoStatusPending, imported.Status)
	assert.False(t, imported.UploadedAt.IsZero())
	assert.Equal(t, []string{"client-1"}, clients.synced)
}

func TestSyncClientRequiresAdmin(t *testing.T) {
	svc := NewDriveSyncService(&mockBrowser{}, &mockDriveVideoStore{}, &mockDriveClientStore{}, zap.NewNop())

	_, err := svc.SyncClient(context.Background(), "client-1", clientActor())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestSyncClientWithoutFolderMapping(t *testing.T) {
	clients := &mockDriveClientStore{client: &models.Client{ID: "client-1"}}
	svc := NewDriveSyncService(&mockBrowser{}, &mockDriveVideoStore{}, clients, zap.NewNop())

	_, err := svc.SyncClient(context.Background(), "client-1", adminActor())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
