package importer

import (
	"context"

	"github.com/piscine-hq/piscine-admin-api/internal/models"
)

// StudentStore is the narrow persistence contract the participant importer
// consumes. The username snapshot is read once per import invocation so
// rows can be classified insert-vs-update without per-row lookups.
type StudentStore interface {
	// UsernameSnapshot returns every stored username mapped to its uuid.
	UsernameSnapshot(ctx context.Context) (map[string]string, error)
	// BulkInsert writes all new students in one call.
	BulkInsert(ctx context.Context, students []models.Student) error
	// UpdateFields applies a partial patch to one student by username.
	UpdateFields(ctx context.Context, username string, fields map[string]interface{}) error
}

// ExamGradeStore persists per-exam grade units.
type ExamGradeStore interface {
	Exists(ctx context.Context, studentUUID, examName string) (bool, error)
	Insert(ctx context.Context, grade *models.ExamGrade) error
	Update(ctx context.Context, grade *models.ExamGrade) error
}

// RushScoreStore persists per-project rush score units.
type RushScoreStore interface {
	Exists(ctx context.Context, studentUUID, projectName string) (bool, error)
	Insert(ctx context.Context, score *models.RushScore) error
	Update(ctx context.Context, score *models.RushScore) error
}
