package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/soma-studio/soma-approve-api/internal/models"
)

func newVideoRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func videoRows(ids ...string) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "client_id", "title", "description", "thumbnail_url",
		"source.storage_provider", "source.video_url", "source.drive_file_id",
		"duration_seconds", "video_type", "status", "priority", "uploaded_at", "deadline",
		"feedback", "feedback_categories", "reviewed_at", "created_at", "updated_at",
	})
	now := time.Now()
	for _, id := range ids {
		rows.AddRow(id, "client-1", "Teaser", "", "",
			"direct-url", "https://cdn.example.com/"+id+".mp4", "",
			90, "teaser", "pending", "medium", now, now.Add(48*time.Hour),
			"", "{}", nil, now, now)
	}
	return rows
}

func TestVideoRepositoryCreateAndGet(t *testing.T) {
	db, mock, cleanup := newVideoRepoMock(t)
	defer cleanup()

	repo := NewVideoRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO videos")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	video := &models.Video{
		ClientID: "client-1",
		Title:    "Teaser",
		Source:   models.DirectURLSource("https://cdn.example.com/teaser.mp4"),
		Deadline: time.Now().Add(48 * time.Hour),
	}
	require.NoError(t, repo.Create(context.Background(), video))
	require.NotEmpty(t, video.ID)
	require.Equal(t, models.VideoStatusPending, video.Status)
	require.Equal(t, models.PriorityMedium, video.Priority)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, client_id, title")).
		WithArgs(video.ID).
		WillReturnRows(videoRows(video.ID))

	found, err := repo.GetByID(context.Background(), video.ID)
	require.NoError(t, err)
	require.Equal(t, video.ID, found.ID)
	require.Equal(t, models.ProviderDirectURL, found.Source.Provider)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVideoRepositoryListCountsAndFilters(t *testing.T) {
	db, mock, cleanup := newVideoRepoMock(t)
	defer cleanup()

	repo := NewVideoRepository(db)
	status := models.VideoStatusPending
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM videos")).
		WithArgs("client-1", status).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, client_id, title")).
		WithArgs("client-1", status).
		WillReturnRows(videoRows("vid-1", "vid-2"))

	videos, total, err := repo.List(context.Background(), models.VideoFilter{
		ClientID: "client-1",
		Status:   &status,
	})
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Len(t, videos, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVideoRepositoryPendingByClientOrdersByArrival(t *testing.T) {
	db, mock, cleanup := newVideoRepoMock(t)
	defer cleanup()

	repo := NewVideoRepository(db)
	mock.ExpectQuery("ORDER BY uploaded_at ASC, id ASC").
		WithArgs("client-1").
		WillReturnRows(videoRows("vid-1", "vid-2", "vid-3"))

	videos, err := repo.PendingByClient(context.Background(), "client-1")
	require.NoError(t, err)
	require.Len(t, videos, 3)
	require.Equal(t, "vid-1", videos[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVideoRepositoryUpdateReviewCompareAndSet(t *testing.T) {
	db, mock, cleanup := newVideoRepoMock(t)
	defer cleanup()

	repo := NewVideoRepository(db)
	now := time.Now()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE videos")).WillReturnResult(sqlmock.NewResult(0, 1))
	err := repo.UpdateReview(context.Background(), ReviewVideoParams{
		ID:         "vid-1",
		Status:     models.VideoStatusRejected,
		Feedback:   "melhorar mixagem",
		Categories: []string{"Áudio"},
		ReviewedAt: now,
	})
	require.NoError(t, err)

	// A row already out of pending matches nothing.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE videos")).WillReturnResult(sqlmock.NewResult(0, 0))
	err = repo.UpdateReview(context.Background(), ReviewVideoParams{
		ID:         "vid-1",
		Status:     models.VideoStatusApproved,
		ReviewedAt: now,
	})
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}
