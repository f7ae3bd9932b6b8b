package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/soma-studio/soma-approve-api/internal/models"
	"github.com/soma-studio/soma-approve-api/pkg/export"
	"github.com/soma-studio/soma-approve-api/pkg/storage"
)

type activitySource interface {
	ListActivity(ctx context.Context) ([]models.ClientActivity, error)
}

type historySource interface {
	ReviewHistory(ctx context.Context, clientID string) ([]models.Video, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ReportFormat
	ExpiresAt    time.Time
}

// ExportService builds report datasets and persists rendered files.
type ExportService struct {
	activity activitySource
	history  historySource
	storage  fileStorage
	csv      csvRenderer
	pdf      pdfRenderer
	signer   *storage.SignedURLSigner
	logger   *zap.Logger
	cfg      ExportConfig
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// NewExportService constructs an ExportService.
func NewExportService(activity activitySource, history historySource, storage fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		activity: activity,
		history:  history,
		storage:  storage,
		csv:      csv,
		pdf:      pdf,
		signer:   signer,
		logger:   logger,
		cfg:      cfg,
	}
}

// Generate builds the dataset for the job and stores the rendered export.
func (s *ExportService) Generate(ctx context.Context, job *models.ReportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	dataset, title, err := s.buildDataset(ctx, job)
	if err != nil {
		return nil, err
	}

	var payload []byte
	switch job.Params.Format {
	case models.ReportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ReportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	default:
		err = fmt.Errorf("unsupported format %s", job.Params.Format)
	}
	if err != nil {
		return nil, err
	}

	filename := s.buildFilename(job)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	signedURL := strings.TrimRight(s.cfg.APIPrefix, "/")
	if signedURL == "" {
		signedURL = "/api"
	}
	signedURL = fmt.Sprintf("%s/reports/download/%s", signedURL, token)

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          signedURL,
		Format:       job.Params.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) buildFilename(job *models.ReportJob) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	clientPart := sanitizeFilename(deref(job.Params.ClientID))
	return fmt.Sprintf("%s_%s_%s.%s", strings.ToLower(string(job.Type)), clientPart, timestamp, job.Params.Format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "all"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

func (s *ExportService) buildDataset(ctx context.Context, job *models.ReportJob) (export.Dataset, string, error) {
	switch job.Type {
	case models.ReportTypeClientActivity:
		return s.buildActivityDataset(ctx, job.Params)
	case models.ReportTypeReviewHistory:
		return s.buildHistoryDataset(ctx, job.Params)
	default:
		return export.Dataset{}, "", fmt.Errorf("unsupported report type %s", job.Type)
	}
}

func (s *ExportService) buildActivityDataset(ctx context.Context, params models.ReportJobParams) (export.Dataset, string, error) {
	rows, err := s.activity.ListActivity(ctx)
	if err != nil {
		return export.Dataset{}, "", err
	}
	clientID := deref(params.ClientID)
	dataRows := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		if clientID != "" && row.ID != clientID {
			continue
		}
		dataRows = append(dataRows, map[string]string{
			"Client":        row.Name,
			"Email":         row.Email,
			"Total Videos":  fmt.Sprintf("%d", row.VideosTotal),
			"Pending":       fmt.Sprintf("%d", row.VideosPending),
			"Approved":      fmt.Sprintf("%d", row.VideosApproved),
			"Rejected":      fmt.Sprintf("%d", row.VideosRejected),
			"Last Activity": formatReportTime(row.LastActivity),
		})
	}
	dataset := export.Dataset{
		Headers: []string{"Client", "Email", "Total Videos", "Pending", "Approved", "Rejected", "Last Activity"},
		Rows:    dataRows,
	}
	return dataset, "Client Activity Report", nil
}

func (s *ExportService) buildHistoryDataset(ctx context.Context, params models.ReportJobParams) (export.Dataset, string, error) {
	videos, err := s.history.ReviewHistory(ctx, deref(params.ClientID))
	if err != nil {
		return export.Dataset{}, "", err
	}
	dataRows := make([]map[string]string, 0, len(videos))
	for _, video := range videos {
		dataRows = append(dataRows, map[string]string{
			"Video":       video.Title,
			"Client ID":   video.ClientID,
			"Status":      string(video.Status),
			"Categories":  strings.Join(video.FeedbackCategories, "; "),
			"Feedback":    video.Feedback,
			"Reviewed At": formatReportTime(video.ReviewedAt),
		})
	}
	dataset := export.Dataset{
		Headers: []string{"Video", "Client ID", "Status", "Categories", "Feedback", "Reviewed At"},
		Rows:    dataRows,
	}
	return dataset, "Review History Report", nil
}

func deref(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}

func formatReportTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
