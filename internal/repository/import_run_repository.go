package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/piscine-hq/piscine-admin-api/internal/models"
)

// ImportRunRepository records import invocations for auditing.
type ImportRunRepository struct {
	db *sqlx.DB
}

// NewImportRunRepository constructs an ImportRunRepository.
func NewImportRunRepository(db *sqlx.DB) *ImportRunRepository {
	return &ImportRunRepository{db: db}
}

// Create persists an import run audit row.
func (r *ImportRunRepository) Create(ctx context.Context, run *models.ImportRun) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO import_runs (id, file_name, stored_path, user_id, success, detected_tables, total_rows, created, updated, errors, duration_ms, created_at)
        VALUES (:id, :file_name, :stored_path, :user_id, :success, :detected_tables, :total_rows, :created, :updated, :errors, :duration_ms, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, run); err != nil {
		return fmt.Errorf("create import run: %w", err)
	}
	return nil
}

// List returns the most recent import runs.
func (r *ImportRunRepository) List(ctx context.Context, limit int) ([]models.ImportRun, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query := fmt.Sprintf(`SELECT id, file_name, stored_path, user_id, success, detected_tables, total_rows, created, updated, errors, duration_ms, created_at
        FROM import_runs ORDER BY created_at DESC LIMIT %d`, limit)
	var runs []models.ImportRun
	if err := r.db.SelectContext(ctx, &runs, query); err != nil {
		return nil, fmt.Errorf("list import runs: %w", err)
	}
	return runs, nil
}

// FindByID loads a single import run.
func (r *ImportRunRepository) FindByID(ctx context.Context, id string) (*models.ImportRun, error) {
	const query = `SELECT id, file_name, stored_path, user_id, success, detected_tables, total_rows, created, updated, errors, duration_ms, created_at
        FROM import_runs WHERE id = $1`
	var run models.ImportRun
	if err := r.db.GetContext(ctx, &run, query, id); err != nil {
		return nil, err
	}
	return &run, nil
}
