package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/soma-studio/soma-approve-api/internal/models"
)

const clientColumns = `id, name, email, company, avatar_url, drive_folder_id, last_sync_at, active, created_at, updated_at`

// ClientRepository persists clients and their Drive folder mappings.
type ClientRepository struct {
	db *sqlx.DB
}

// NewClientRepository constructs the repository.
func NewClientRepository(db *sqlx.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

// Create inserts a new client row.
func (r *ClientRepository) Create(ctx context.Context, client *models.Client) error {
	if client.ID == "" {
		client.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if client.CreatedAt.IsZero() {
		client.CreatedAt = now
	}
	client.UpdatedAt = now
	const query = `INSERT INTO clients (id, name, email, company, avatar_url, drive_folder_id, last_sync_at, active, created_at, updated_at)
VALUES (:id, :name, :email, :company, :avatar_url, :drive_folder_id, :last_sync_at, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, client); err != nil {
		return fmt.Errorf("create client: %w", err)
	}
	return nil
}

// GetByID fetches a client by identifier.
func (r *ClientRepository) GetByID(ctx context.Context, id string) (*models.Client, error) {
	query := fmt.Sprintf(`SELECT %s FROM clients WHERE id = $1`, clientColumns)
	var client models.Client
	if err := r.db.GetContext(ctx, &client, query, id); err != nil {
		return nil, err
	}
	return &client, nil
}

// GetByEmail resolves the client record behind a signed-in account.
func (r *ClientRepository) GetByEmail(ctx context.Context, email string) (*models.Client, error) {
	query := fmt.Sprintf(`SELECT %s FROM clients WHERE LOWER(email) = LOWER($1)`, clientColumns)
	var client models.Client
	if err := r.db.GetContext(ctx, &client, query, email); err != nil {
		return nil, err
	}
	return &client, nil
}

// ListActivity returns active clients with per-status video counts.
func (r *ClientRepository) ListActivity(ctx context.Context) ([]models.ClientActivity, error) {
	const query = `SELECT c.id, c.name, c.email, c.company, c.avatar_url, c.drive_folder_id, c.last_sync_at, c.active, c.created_at, c.updated_at,
       COUNT(v.id) AS videos_total,
       COUNT(v.id) FILTER (WHERE v.status = 'pending') AS videos_pending,
       COUNT(v.id) FILTER (WHERE v.status = 'approved') AS videos_approved,
       COUNT(v.id) FILTER (WHERE v.status = 'rejected') AS videos_rejected,
       MAX(v.reviewed_at) AS last_activity
FROM clients c
LEFT JOIN videos v ON v.client_id = c.id
WHERE c.active
GROUP BY c.id
ORDER BY c.name ASC`
	var activity []models.ClientActivity
	if err := r.db.SelectContext(ctx, &activity, query); err != nil {
		return nil, fmt.Errorf("list client activity: %w", err)
	}
	return activity, nil
}

// ListFolderMappings returns clients with a configured Drive folder.
func (r *ClientRepository) ListFolderMappings(ctx context.Context) ([]models.ClientFolderMapping, error) {
	const query = `SELECT id, name, drive_folder_id, last_sync_at
FROM clients WHERE active AND drive_folder_id <> '' ORDER BY name ASC`
	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list folder mappings: %w", err)
	}
	defer rows.Close()

	var mappings []models.ClientFolderMapping
	for rows.Next() {
		var m models.ClientFolderMapping
		if err := rows.Scan(&m.ClientID, &m.ClientName, &m.DriveFolderID, &m.LastSync); err != nil {
			return nil, fmt.Errorf("scan folder mapping: %w", err)
		}
		mappings = append(mappings, m)
	}
	return mappings, rows.Err()
}

// UpdateLastSync records the completion time of a Drive folder sync.
func (r *ClientRepository) UpdateLastSync(ctx context.Context, clientID string, at time.Time) error {
	const query = `UPDATE clients SET last_sync_at = $1, updated_at = $1 WHERE id = $2`
	if _, err := r.db.ExecContext(ctx, query, at, clientID); err != nil {
		return fmt.Errorf("update client last sync: %w", err)
	}
	return nil
}
