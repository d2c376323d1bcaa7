package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/piscine-hq/piscine-admin-api/internal/models"
	appErrors "github.com/piscine-hq/piscine-admin-api/pkg/errors"
)

type mockStudentRepo struct {
	byUsername map[string]*models.Student
	listed     []models.Student
	patches    map[string]map[string]interface{}
	deleted    []string
}

func (m *mockStudentRepo) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	return m.listed, len(m.listed), nil
}

func (m *mockStudentRepo) FindByUsername(ctx context.Context, username string) (*models.Student, error) {
	st, ok := m.byUsername[username]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return st, nil
}

func (m *mockStudentRepo) Create(ctx context.Context, student *models.Student) error {
	if m.byUsername == nil {
		m.byUsername = make(map[string]*models.Student)
	}
	m.byUsername[student.Username] = student
	return nil
}

func (m *mockStudentRepo) UpdateFields(ctx context.Context, username string, fields map[string]interface{}) error {
	if m.patches == nil {
		m.patches = make(map[string]map[string]interface{})
	}
	m.patches[username] = fields
	return nil
}

func (m *mockStudentRepo) Delete(ctx context.Context, username string) error {
	m.deleted = append(m.deleted, username)
	return nil
}

type mockGradeLister struct{ grades []models.ExamGrade }

func (m *mockGradeLister) ListByStudent(ctx context.Context, studentUUID string) ([]models.ExamGrade, error) {
	return m.grades, nil
}

type mockRushLister struct{ rushes []models.RushScore }

func (m *mockRushLister) ListByStudent(ctx context.Context, studentUUID string) ([]models.RushScore, error) {
	return m.rushes, nil
}

func newStudentService(repo *mockStudentRepo) *StudentService {
	return NewStudentService(repo,
		&mockGradeLister{grades: []models.ExamGrade{{ExamName: models.Exam00, Grade: 72}}},
		&mockRushLister{rushes: []models.RushScore{{ProjectName: models.RushSquare, Score: 88}}},
		validator.New(), zap.NewNop())
}

func TestStudentServiceGetAggregatesResults(t *testing.T) {
	repo := &mockStudentRepo{byUsername: map[string]*models.Student{
		"jdoe": {UUID: "u-1", Username: "jdoe", Name: "Jane Doe"},
	}}
	svc := newStudentService(repo)

	detail, err := svc.Get(context.Background(), "jdoe")
	require.NoError(t, err)
	assert.Equal(t, "jdoe", detail.Student.Username)
	assert.Len(t, detail.Grades, 1)
	assert.Len(t, detail.Rushes, 1)
}

func TestStudentServiceGetNotFound(t *testing.T) {
	svc := newStudentService(&mockStudentRepo{})

	_, err := svc.Get(context.Background(), "ghost")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceCreateRejectsDuplicateUsername(t *testing.T) {
	repo := &mockStudentRepo{byUsername: map[string]*models.Student{
		"jdoe": {UUID: "u-1", Username: "jdoe"},
	}}
	svc := newStudentService(repo)

	_, err := svc.Create(context.Background(), CreateStudentRequest{Username: "jdoe", Name: "Jane Doe"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceUpdateBuildsPartialPatch(t *testing.T) {
	repo := &mockStudentRepo{byUsername: map[string]*models.Student{
		"jdoe": {UUID: "u-1", Username: "jdoe", Name: "Jane Doe"},
	}}
	svc := newStudentService(repo)

	name := "Jane D."
	level := 9.5
	_, err := svc.Update(context.Background(), "jdoe", UpdateStudentRequest{Name: &name, Level: &level})
	require.NoError(t, err)

	patch := repo.patches["jdoe"]
	require.NotNil(t, patch)
	assert.Equal(t, "Jane D.", patch["name"])
	assert.Equal(t, 9.5, patch["level"])
	assert.NotContains(t, patch, "email", "absent fields must not be touched")
}

func TestStudentServiceUpdateEmptyPatchRejected(t *testing.T) {
	repo := &mockStudentRepo{byUsername: map[string]*models.Student{
		"jdoe": {UUID: "u-1", Username: "jdoe"},
	}}
	svc := newStudentService(repo)

	_, err := svc.Update(context.Background(), "jdoe", UpdateStudentRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceDelete(t *testing.T) {
	repo := &mockStudentRepo{byUsername: map[string]*models.Student{
		"jdoe": {UUID: "u-1", Username: "jdoe"},
	}}
	svc := newStudentService(repo)

	require.NoError(t, svc.Delete(context.Background(), "jdoe"))
	assert.Equal(t, []string{"jdoe"}, repo.deleted)
}
