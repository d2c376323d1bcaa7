package importer

import (
	"context"

	"github.com/piscine-hq/piscine-admin-api/internal/models"
)

var examFields = []string{models.Exam00, models.Exam01, models.Exam02, models.FinalExam}

// examGradeImporter upserts one grade record per (student, exam) unit.
type examGradeImporter struct {
	students StudentStore
	grades   ExamGradeStore
}

func (im *examGradeImporter) run(ctx context.Context, grid [][]string, cols map[string]int) (Stats, []string) {
	usernames, err := im.students.UsernameSnapshot(ctx)
	if err != nil {
		return Stats{Errors: 1}, []string{"exam grades: failed to read existing usernames: " + err.Error()}
	}

	return runUnitImport(ctx, grid, cols, examFields, usernames, "exam grade", func(ctx context.Context, studentUUID, examName string, grade float64) (bool, error) {
		exists, err := im.grades.Exists(ctx, studentUUID, examName)
		if err != nil {
			return false, err
		}
		record := &models.ExamGrade{
			StudentUUID: studentUUID,
			ExamName:    examName,
			Grade:       grade,
			Validated:   grade >= models.ExamPassingGrade,
			MaxGrade:    models.ExamMaxGrade,
		}
		if exists {
			return false, im.grades.Update(ctx, record)
		}
		return true, im.grades.Insert(ctx, record)
	})
}
