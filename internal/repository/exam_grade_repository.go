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

// ExamGradeRepository handles exam grade persistence. It satisfies the
// importer's ExamGradeStore contract.
type ExamGradeRepository struct {
	db *sqlx.DB
}

// NewExamGradeRepository creates a new exam grade repository.
func NewExamGradeRepository(db *sqlx.DB) *ExamGradeRepository {
	return &ExamGradeRepository{db: db}
}

// ListByStudent returns every grade recorded for a student.
func (r *ExamGradeRepository) ListByStudent(ctx context.Context, studentUUID string) ([]models.ExamGrade, error) {
	const query = `SELECT id, student_uuid, exam_name, grade, validated, max_grade, created_at, updated_at
        FROM exam_grades WHERE student_uuid = $1 ORDER BY exam_name`
	var grades []models.ExamGrade
	if err := r.db.SelectContext(ctx, &grades, query, studentUUID); err != nil {
		return nil, fmt.Errorf("list exam grades: %w", err)
	}
	return grades, nil
}

// Exists checks whether a grade is recorded for the (student, exam) pair.
func (r *ExamGradeRepository) Exists(ctx context.Context, studentUUID, examName string) (bool, error) {
	var one int
	err := r.db.GetContext(ctx, &one, "SELECT 1 FROM exam_grades WHERE student_uuid = $1 AND exam_name = $2 LIMIT 1", studentUUID, examName)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check exam grade: %w", err)
	}
	return true, nil
}

// Insert writes a new grade record.
func (r *ExamGradeRepository) Insert(ctx context.Context, grade *models.ExamGrade) error {
	if grade.ID == "" {
		grade.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	grade.CreatedAt = now
	grade.UpdatedAt = now
	const query = `INSERT INTO exam_grades (id, student_uuid, exam_name, grade, validated, max_grade, created_at, updated_at)
        VALUES (:id, :student_uuid, :exam_name, :grade, :validated, :max_grade, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, grade); err != nil {
		return fmt.Errorf("insert exam grade: %w", err)
	}
	return nil
}

// Update rewrites the grade for an existing (student, exam) pair.
func (r *ExamGradeRepository) Update(ctx context.Context, grade *models.ExamGrade) error {
	grade.UpdatedAt = time.Now().UTC()
	const query = `UPDATE exam_grades SET grade = :grade, validated = :validated, max_grade = :max_grade, updated_at = :updated_at
        WHERE student_uuid = :student_uuid AND exam_name = :exam_name`
	if _, err := r.db.NamedExecContext(ctx, query, grade); err != nil {
		return fmt.Errorf("update exam grade: %w", err)
	}
	return nil
}
