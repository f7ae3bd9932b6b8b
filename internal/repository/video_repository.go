package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/soma-studio/soma-approve-api/internal/models"
)

const videoColumns = `id, client_id, title, description, thumbnail_url,
       storage_provider AS "source.storage_provider",
       video_url AS "source.video_url",
       drive_file_id AS "source.drive_file_id",
       duration_seconds, video_type, status, priority, uploaded_at, deadline,
       feedback, feedback_categories, reviewed_at, created_at, updated_at`

// VideoRepository persists videos and their review lifecycle.
type VideoRepository struct {
	db *sqlx.DB
}

// NewVideoRepository constructs the repository.
func NewVideoRepository(db *sqlx.DB) *VideoRepository {
	return &VideoRepository{db: db}
}

// Create inserts a new video row with generated defaults.
func (r *VideoRepository) Create(ctx context.Context, video *models.Video) error {
	if video.ID == "" {
		video.ID = uuid.NewString()
	}
	if video.Status == "" {
		video.Status = models.VideoStatusPending
	}
	if video.Priority == "" {
		video.Priority = models.PriorityMedium
	}
	now := time.Now().UTC()
	if video.UploadedAt.IsZero() {
		video.UploadedAt = now
	}
	if video.CreatedAt.IsZero() {
		video.CreatedAt = now
	}
	video.UpdatedAt = now
	const query = `INSERT INTO videos
	(id, client_id, title, description, thumbnail_url, storage_provider, video_url, drive_file_id,
	 duration_seconds, video_type, status, priority, uploaded_at, deadline,
	 feedback, feedback_categories, reviewed_at, created_at, updated_at)
	VALUES (:id, :client_id, :title, :description, :thumbnail_url, :source.storage_provider, :source.video_url, :source.drive_file_id,
	 :duration_seconds, :video_type, :status, :priority, :uploaded_at, :deadline,
	 :feedback, :feedback_categories, :reviewed_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, video); err != nil {
		return fmt.Errorf("create video: %w", err)
	}
	return nil
}

// GetByID fetches a video by identifier.
func (r *VideoRepository) GetByID(ctx context.Context, id string) (*models.Video, error) {
	query := fmt.Sprintf(`SELECT %s FROM videos WHERE id = $1`, videoColumns)
	var video models.Video
	if err := r.db.GetContext(ctx, &video, query, id); err != nil {
		return nil, err
	}
	return &video, nil
}

// ExistsByDriveFileID reports whether a Drive file has already been imported.
func (r *VideoRepository) ExistsByDriveFileID(ctx context.Context, fileID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM videos WHERE drive_file_id = $1)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, fileID); err != nil {
		return false, fmt.Errorf("check drive file id: %w", err)
	}
	return exists, nil
}

// List returns videos matching the filter plus the unpaginated total.
func (r *VideoRepository) List(ctx context.Context, filter models.VideoFilter) ([]models.Video, int, error) {
	conditions := make([]string, 0, 2)
	args := make([]interface{}, 0, 2)
	if filter.ClientID != "" {
		args = append(args, filter.ClientID)
		conditions = append(conditions, fmt.Sprintf("client_id = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM videos"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count videos: %w", err)
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	query := fmt.Sprintf("SELECT %s FROM videos%s ORDER BY uploaded_at DESC, id ASC LIMIT %d OFFSET %d",
		videoColumns, where, pageSize, (page-1)*pageSize)

	var videos []models.Video
	if err := r.db.SelectContext(ctx, &videos, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list videos: %w", err)
	}
	return videos, total, nil
}

// PendingByClient returns a client's review queue in arrival order. Ties on
// uploaded_at break on id so the ordering is stable across reads.
func (r *VideoRepository) PendingByClient(ctx context.Context, clientID string) ([]models.Video, error) {
	query := fmt.Sprintf(`SELECT %s FROM videos WHERE client_id = $1 AND status = 'pending'
ORDER BY uploaded_at ASC, id ASC`, videoColumns)
	var videos []models.Video
	if err := r.db.SelectContext(ctx, &videos, query, clientID); err != nil {
		return nil, fmt.Errorf("list pending videos: %w", err)
	}
	return videos, nil
}

// ReviewHistory returns reviewed videos, newest decision first. An empty
// clientID spans all clients.
func (r *VideoRepository) ReviewHistory(ctx context.Context, clientID string) ([]models.Video, error) {
	query := fmt.Sprintf(`SELECT %s FROM videos WHERE reviewed_at IS NOT NULL`, videoColumns)
	args := []interface{}{}
	if clientID != "" {
		query += " AND client_id = $1"
		args = append(args, clientID)
	}
	query += " ORDER BY reviewed_at DESC"
	var videos []models.Video
	if err := r.db.SelectContext(ctx, &videos, query, args...); err != nil {
		return nil, fmt.Errorf("list review history: %w", err)
	}
	return videos, nil
}

// Delete removes a video row.
func (r *VideoRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete video: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check video delete rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ReviewVideoParams groups the columns written by a review decision.
type ReviewVideoParams struct {
	ID         string
	Status     models.VideoStatus
	Feedback   string
	Categories []string
	ReviewedAt time.Time
}

// UpdateReview persists the review outcome. The status predicate makes this a
// compare-and-set: a row already reviewed matches nothing and the caller gets
// sql.ErrNoRows, never a second transition.
func (r *VideoRepository) UpdateReview(ctx context.Context, params ReviewVideoParams) error {
	query := fmt.Sprintf(`UPDATE videos
SET status = :status, feedback = :feedback, feedback_categories = :feedback_categories,
    reviewed_at = :reviewed_at, updated_at = :reviewed_at
WHERE id = :id AND status = '%s'`, models.VideoStatusPending)
	result, err := r.db.NamedExecContext(ctx, query, map[string]interface{}{
		"id":                  params.ID,
		"status":              params.Status,
		"feedback":            params.Feedback,
		"feedback_categories": pq.StringArray(params.Categories),
		"reviewed_at":         params.ReviewedAt,
	})
	if err != nil {
		return fmt.Errorf("update video review: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check video review rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
