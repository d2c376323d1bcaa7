package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/piscine-hq/piscine-admin-api/internal/models"
)

// RushScoreRepository handles rush score persistence. It satisfies the
// importer's RushScoreStore contract.
type RushScoreRepository struct {
	db *sqlx.DB
}

// NewRushScoreRepository creates a new rush score repository.
func NewRushScoreRepository(db *sqlx.DB) *RushScoreRepository {
	return &RushScoreRepository{db: db}
}

// ListByStudent returns every rush score recorded for a student.
func (r *RushScoreRepository) ListByStudent(ctx context.Context, studentUUID string) ([]models.RushScore, error) {
	const query = `SELECT id, student_uuid, project_name, score, created_at, updated_at
        FROM rush_scores WHERE student_uuid = $1 ORDER BY project_name`
	var scores []models.RushScore
	if err := r.db.SelectContext(ctx, &scores, query, studentUUID); err != nil {
		return nil, fmt.Errorf("list rush scores: %w", err)
	}
	return scores, nil
}

// Exists checks whether a score is recorded for the (student, project) pair.
func (r *RushScoreRepository) Exists(ctx context.Context, studentUUID, projectName string) (bool, error) {
	var one int
	err := r.db.GetContext(ctx, &one, "SELECT 1 FROM rush_scores WHERE student_uuid = $1 AND project_name = $2 LIMIT 1", studentUUID, projectName)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check rush score: %w", err)
	}
	return true, nil
}

// Insert writes a new score record.
func (r *RushScoreRepository) Insert(ctx context.Context, score *models.RushScore) error {
	if score.ID == "" {
		score.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	score.CreatedAt = now
	score.UpdatedAt = now
	const query = `INSERT INTO rush_scores (id, student_uuid, project_name, score, created_at, updated_at)
        VALUES (:id, :student_uuid, :project_name, :score, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, score); err != nil {
		return fmt.Errorf("insert rush score: %w", err)
	}
	return nil
}

// Update rewrites the score for an existing (student, project) pair.
func (r *RushScoreRepository) Update(ctx context.Context, score *models.RushScore) error {
	score.UpdatedAt = time.Now().UTC()
	const query = `UPDATE rush_scores SET score = :score, updated_at = :updated_at
        WHERE student_uuid = :student_uuid AND project_name = :project_name`
	if _, err := r.db.NamedExecContext(ctx, query, score); err != nil {
		return fmt.Errorf("update rush score: %w", err)
	}
	return nil
}
