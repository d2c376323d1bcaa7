package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piscine-hq/piscine-admin-api/internal/models"
)

func newGradeMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestExamGradeRepositoryExists(t *testing.T) {
	db, mock, cleanup := newGradeMock(t)
	defer cleanup()
	repo := NewExamGradeRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM exam_grades WHERE student_uuid = $1 AND exam_name = $2 LIMIT 1")).
		WithArgs("u-1", models.Exam00).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	found, err := repo.Exists(context.Background(), "u-1", models.Exam00)
	require.NoError(t, err)
	assert.True(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExamGradeRepositoryExistsNoRows(t *testing.T) {
	db, mock, cleanup := newGradeMock(t)
	defer cleanup()
	repo := NewExamGradeRepository(db)

	mock.ExpectQuery("SELECT 1 FROM exam_grades").
		WithArgs("u-1", models.FinalExam).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	found, err := repo.Exists(context.Background(), "u-1", models.FinalExam)
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExamGradeRepositoryInsertAssignsID(t *testing.T) {
	db, mock, cleanup := newGradeMock(t)
	defer cleanup()
	repo := NewExamGradeRepository(db)

	mock.ExpectExec("INSERT INTO exam_grades").
		WillReturnResult(sqlmock.NewResult(0, 1))

	grade := &models.ExamGrade{StudentUUID: "u-1", ExamName: models.Exam01, Grade: 85, Validated: true, MaxGrade: models.ExamMaxGrade}
	err := repo.Insert(context.Background(), grade)
	require.NoError(t, err)
	assert.NotEmpty(t, grade.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExamGradeRepositoryUpdate(t *testing.T) {
	db, mock, cleanup := newGradeMock(t)
	defer cleanup()
	repo := NewExamGradeRepository(db)

	mock.ExpectExec("UPDATE exam_grades SET").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), &models.ExamGrade{StudentUUID: "u-1", ExamName: models.Exam01, Grade: 42})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
