package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/soma-studio/soma-approve-api/internal/models"
	"github.com/soma-studio/soma-approve-api/pkg/storage"
)

type mockActivitySource struct {
	activity []models.ClientActivity
}

func (m *mockActivitySource) ListActivity(ctx context.Context) ([]models.ClientActivity, error) {
	return m.activity, nil
}

type mockHistorySource struct {
	videos []models.Video
}

func (m *mockHistorySource) ReviewHistory(ctx context.Context, clientID string) ([]models.Video, error) {
	return m.videos, nil
}

func newExportFixture(t *testing.T) *ExportService {
	t.Helper()
	local, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("export-secret", time.Hour)
	activity := &mockActivitySource{activity: []models.ClientActivity{
		{Client: models.Client{ID: "client-1", Name: "Acme", Email: "a@acme.com"}, VideosTotal: 3, VideosApproved: 2, VideosRejected: 1},
		{Client: models.Client{ID: "client-2", Name: "Globex", Email: "g@globex.com"}, VideosTotal: 1, VideosPending: 1},
	}}
	reviewed := time.Now().Add(-time.Hour)
	history := &mockHistorySource{videos: []models.Video{
		{ID: "vid-1", ClientID: "client-1", Title: "Teaser", Status: models.VideoStatusRejected,
			Feedback: "melhorar mixagem", FeedbackCategories: []string{"Áudio"}, ReviewedAt: &reviewed},
	}}
	return NewExportService(activity, history, local, signer, ExportConfig{APIPrefix: "/api"}, zap.NewNop(), nil, nil)
}

func TestGenerateClientActivityCSV(t *testing.T) {
	svc := newExportFixture(t)
	job := &models.ReportJob{
		ID:     "job-1",
		Type:   models.ReportTypeClientActivity,
		Params: models.ReportJobParams{Format: models.ReportFormatCSV},
	}

	result, err := svc.Generate(context.Background(), job)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.URL, "/api/reports/download/"))

	file, err := svc.Open(result.RelativePath)
	require.NoError(t, err)
	defer file.Close()

	buf := make([]byte, 4096)
	n, _ := file.Read(buf)
	content := string(buf[:n])
	assert.Contains(t, content, "Acme")
	assert.Contains(t, content, "Globex")
}

func TestGenerateFiltersByClient(t *testing.T) {
	svc := newExportFixture(t)
	clientID := "client-1"
	job := &models.ReportJob{
		ID:     "job-2",
		Type:   models.ReportTypeClientActivity,
		Params: models.ReportJobParams{ClientID: &clientID, Format: models.ReportFormatCSV},
	}

	result, err := svc.Generate(context.Background(), job)
	require.NoError(t, err)

	file, err := svc.Open(result.RelativePath)
	require.NoError(t, err)
	defer file.Close()

	buf := make([]byte, 4096)
	n, _ := file.Read(buf)
	content := string(buf[:n])
	assert.Contains(t, content, "Acme")
	assert.NotContains(t, content, "Globex")
}

func TestGenerateReviewHistoryPDF(t *testing.T) {
	svc := newExportFixture(t)
	job := &models.ReportJob{
		ID:     "job-3",
		Type:   models.ReportTypeReviewHistory,
		Params: models.ReportJobParams{Format: models.ReportFormatPDF},
	}

	result, err := svc.Generate(context.Background(), job)
	require.NoError(t, err)
	assert.Equal(t, models.ReportFormatPDF, result.Format)

	jobID, relPath, _, err := svc.ParseToken(result.Token, false)
	require.NoError(t, err)
	assert.Equal(t, "job-3", jobID)
	assert.Equal(t, result.RelativePath, relPath)
}

func TestGenerateRejectsUnknownType(t *testing.T) {
	svc := newExportFixture(t)
	_, err := svc.Generate(context.Background(), &models.ReportJob{
		ID:     "job-4",
		Type:   "monthly",
		Params: models.ReportJobParams{Format: models.ReportFormatCSV},
	})
	require.Error(t, err)
}
