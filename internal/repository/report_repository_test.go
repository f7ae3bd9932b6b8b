package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/soma-studio/soma-approve-api/internal/models"
)

func newReportRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestReportRepositoryCreateDefaults(t *testing.T) {
	db, mock, cleanup := newReportRepoMock(t)
	defer cleanup()

	repo := NewReportRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO report_jobs")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	clientID := "client-1"
	job := &models.ReportJob{
		Type:      models.ReportTypeClientActivity,
		Params:    models.ReportJobParams{ClientID: &clientID, Format: models.ReportFormatCSV},
		CreatedBy: "admin-1",
	}
	require.NoError(t, repo.Create(context.Background(), job))
	require.NotEmpty(t, job.ID)
	require.Equal(t, models.ReportStatusQueued, job.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepositoryUpdatePartial(t *testing.T) {
	db, mock, cleanup := newReportRepoMock(t)
	defer cleanup()

	repo := NewReportRepository(db)
	status := models.ReportStatusProcessing
	progress := 40
	mock.ExpectExec(regexp.QuoteMeta("UPDATE report_jobs SET")).
		WithArgs(status, progress, "job-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), "job-1", UpdateReportJobParams{
		Status:   &status,
		Progress: &progress,
	})
	require.NoError(t, err)

	// No fields set: nothing touches the database.
	require.NoError(t, repo.Update(context.Background(), "job-1", UpdateReportJobParams{}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepositoryListQueued(t *testing.T) {
	db, mock, cleanup := newReportRepoMock(t)
	defer cleanup()

	repo := NewReportRepository(db)
	rows := sqlmock.NewRows([]string{"id", "type", "params", "status", "progress", "result_url", "created_by", "created_at", "finished_at", "error_message"}).
		AddRow("job-1", "client-activity", `{"format":"csv"}`, "QUEUED", 0, nil, "admin-1", time.Now(), nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE status = 'QUEUED'")).
		WithArgs(20).
		WillReturnRows(rows)

	jobs, err := repo.ListQueued(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	require.Equal(t, models.ReportFormatCSV, jobs[0].Params.Format)
	require.NoError(t, mock.ExpectationsWereMet())
}
