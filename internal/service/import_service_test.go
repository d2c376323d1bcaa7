package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/piscine-hq/piscine-admin-api/internal/importer"
	"github.com/piscine-hq/piscine-admin-api/internal/models"
	"github.com/piscine-hq/piscine-admin-api/pkg/jobs"
	"github.com/piscine-hq/piscine-admin-api/pkg/storage"
)

type memStudentStore struct {
	students map[string]string
	inserted []models.Student
	patched  map[string]map[string]interface{}
}

func (m *memStudentStore) UsernameSnapshot(ctx context.Context) (map[string]string, error) {
	out := make(map[string]string, len(m.students))
	for k, v := range m.students {
		out[k] = v
	}
	return out, nil
}

func (m *memStudentStore) BulkInsert(ctx context.Context, students []models.Student) error {
	m.inserted = append(m.inserted, students...)
	if m.students == nil {
		m.students = make(map[string]string)
	}
	for _, st := range students {
		m.students[st.Username] = st.UUID
	}
	return nil
}

func (m *memStudentStore) UpdateFields(ctx context.Context, username string, fields map[string]interface{}) error {
	if m.patched == nil {
		m.patched = make(map[string]map[string]interface{})
	}
	m.patched[username] = fields
	return nil
}

type memGradeStore struct{ grades map[string]float64 }

func (m *memGradeStore) Exists(ctx context.Context, studentUUID, examName string) (bool, error) {
	_, ok := m.grades[studentUUID+"/"+examName]
	return ok, nil
}

func (m *memGradeStore) Insert(ctx context.Context, grade *models.ExamGrade) error {
	if m.grades == nil {
		m.grades = make(map[string]float64)
	}
	m.grades[grade.StudentUUID+"/"+grade.ExamName] = grade.Grade
	return nil
}

func (m *memGradeStore) Update(ctx context.Context, grade *models.ExamGrade) error {
	m.grades[grade.StudentUUID+"/"+grade.ExamName] = grade.Grade
	return nil
}

type memRushStore struct{ scores map[string]float64 }

func (m *memRushStore) Exists(ctx context.Context, studentUUID, projectName string) (bool, error) {
	_, ok := m.scores[studentUUID+"/"+projectName]
	return ok, nil
}

func (m *memRushStore) Insert(ctx context.Context, score *models.RushScore) error {
	if m.scores == nil {
		m.scores = make(map[string]float64)
	}
	m.scores[score.StudentUUID+"/"+score.ProjectName] = score.Score
	return nil
}

func (m *memRushStore) Update(ctx context.Context, score *models.RushScore) error {
	m.scores[score.StudentUUID+"/"+score.ProjectName] = score.Score
	return nil
}

type memRunRepo struct {
	created []*models.ImportRun
}

func (m *memRunRepo) Create(ctx context.Context, run *models.ImportRun) error {
	m.created = append(m.created, run)
	return nil
}

func (m *memRunRepo) List(ctx context.Context, limit int) ([]models.ImportRun, error) {
	out := make([]models.ImportRun, 0, len(m.created))
	for _, run := range m.created {
		out = append(out, *run)
	}
	return out, nil
}

func (m *memRunRepo) FindByID(ctx context.Context, id string) (*models.ImportRun, error) {
	for _, run := range m.created {
		if run.ID == id {
			return run, nil
		}
	}
	return nil, assert.AnError
}

type memUploads struct{ saved map[string][]byte }

func (m *memUploads) Save(filename string, data []byte) (string, error) {
	if m.saved == nil {
		m.saved = make(map[string][]byte)
	}
	m.saved[filename] = data
	return filename, nil
}

type memQueue struct{ jobs []jobs.Job }

func (m *memQueue) Enqueue(job jobs.Job) error {
	m.jobs = append(m.jobs, job)
	return nil
}

func newImportServiceForTest(t *testing.T) (*ImportService, *memRunRepo, *memUploads, *memQueue) {
	t.Helper()
	imp := importer.New(&memStudentStore{}, &memGradeStore{}, &memRushStore{}, importer.Config{}, zap.NewNop())
	runs := &memRunRepo{}
	uploads := &memUploads{}
	queue := &memQueue{}
	signer := storage.NewSignedURLSigner("test-secret", 0)
	return NewImportService(imp, runs, uploads, signer, queue, zap.NewNop()), runs, uploads, queue
}

func TestImportServiceRunRecordsAudit(t *testing.T) {
	svc, runs, uploads, queue := newImportServiceForTest(t)

	data := []byte("username,name,email\njdoe,Jane Doe,jdoe@piscine.dev\n")
	summary, err := svc.Run(context.Background(), "roster.csv", data, "user-1")
	require.NoError(t, err)
	require.NotNil(t, summary.Run)
	assert.True(t, summary.Run.Success)
	assert.Equal(t, 1, summary.Run.TotalRows)
	assert.Equal(t, 1, summary.Run.Created)
	assert.Equal(t, "students", summary.Run.DetectedTables)
	assert.Equal(t, "user-1", summary.Run.UserID)

	require.Len(t, runs.created, 1)
	assert.NotEmpty(t, summary.Run.StoredPath)
	assert.Contains(t, uploads.saved, summary.Run.StoredPath)

	require.Len(t, queue.jobs, 1)
	assert.Equal(t, JobTypeLeaderboardInvalidate, queue.jobs[0].Type)
}

func TestImportServiceStructuralRejectionSkipsAudit(t *testing.T) {
	svc, runs, uploads, queue := newImportServiceForTest(t)

	_, err := svc.Run(context.Background(), "roster.txt", []byte("whatever"), "user-1")
	require.Error(t, err)
	assert.Empty(t, runs.created)
	assert.Empty(t, uploads.saved)
	assert.Empty(t, queue.jobs)
}

func TestImportServiceDownloadTokenRoundTrip(t *testing.T) {
	svc, _, _, _ := newImportServiceForTest(t)

	data := []byte("username,name\njdoe,Jane Doe\n")
	summary, err := svc.Run(context.Background(), "roster.csv", data, "user-1")
	require.NoError(t, err)

	token, expiresAt, err := svc.DownloadToken(context.Background(), summary.Run.ID)
	require.NoError(t, err)
	assert.False(t, expiresAt.IsZero())

	path, err := svc.ResolveDownload(token)
	require.NoError(t, err)
	assert.Equal(t, summary.Run.StoredPath, path)
}

func TestImportServiceNoInvalidationWhenNothingChanged(t *testing.T) {
	svc, runs, _, queue := newImportServiceForTest(t)

	// An exam sheet for unknown students produces only errors, so the
	// leaderboard cache does not need to be dropped.
	data := []byte("username,exam00\nghost,50\n")
	summary, err := svc.Run(context.Background(), "grades.csv", data, "user-1")
	require.NoError(t, err)
	assert.False(t, summary.Run.Success)
	require.Len(t, runs.created, 1)
	assert.Empty(t, queue.jobs)
}
