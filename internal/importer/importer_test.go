package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piscine-hq/piscine-admin-api/internal/models"
	appErrors "github.com/piscine-hq/piscine-admin-api/pkg/errors"
)

type fakeStudentStore struct {
	mu       sync.Mutex
	students map[string]models.Student
	patches  map[string][]map[string]interface{}

	snapshotCalls int
	insertCalls   int
	updateCalls   int

	insertErr error
	updateErr error
	stall     bool
}

func newFakeStudentStore() *fakeStudentStore {
	return &fakeStudentStore{
		students: make(map[string]models.Student),
		patches:  make(map[string][]map[string]interface{}),
	}
}

func (f *fakeStudentStore) UsernameSnapshot(ctx context.Context) (map[string]string, error) {
	if f.stall {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshotCalls++
	snapshot := make(map[string]string, len(f.students))
	for username, s := range f.students {
		snapshot[username] = s.UUID
	}
	return snapshot, nil
}

func (f *fakeStudentStore) BulkInsert(ctx context.Context, students []models.Student) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.insertCalls++
	if f.insertErr != nil {
		return f.insertErr
	}
	for _, s := range students {
		f.students[s.Username] = s
	}
	return nil
}

func (f *fakeStudentStore) UpdateFields(ctx context.Context, username string, fields map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	if f.updateErr != nil {
		return f.updateErr
	}
	f.patches[username] = append(f.patches[username], fields)
	return nil
}

type fakeUnitStore struct {
	mu      sync.Mutex
	records map[string]float64

	existsCalls int
	insertCalls int
	updateCalls int

	insertErr error
}

func newFakeUnitStore() *fakeUnitStore {
	return &fakeUnitStore{records: make(map[string]float64)}
}

func (f *fakeUnitStore) key(studentUUID, field string) string {
	return studentUUID + "/" + field
}

func (f *fakeUnitStore) Exists(ctx context.Context, studentUUID, field string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.existsCalls++
	_, ok := f.records[f.key(studentUUID, field)]
	return ok, nil
}

func (f *fakeUnitStore) Insert(ctx context.Context, grade *models.ExamGrade) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.insertCalls++
	if f.insertErr != nil {
		return f.insertErr
	}
	f.records[f.key(grade.StudentUUID, grade.ExamName)] = grade.Grade
	return nil
}

func (f *fakeUnitStore) Update(ctx context.Context, grade *models.ExamGrade) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	f.records[f.key(grade.StudentUUID, grade.ExamName)] = grade.Grade
	return nil
}

type fakeRushStore struct {
	fakeUnitStore
}

func (f *fakeRushStore) Insert(ctx context.Context, score *models.RushScore) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.insertCalls++
	f.records[f.key(score.StudentUUID, score.ProjectName)] = score.Score
	return nil
}

func (f *fakeRushStore) Update(ctx context.Context, score *models.RushScore) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	f.records[f.key(score.StudentUUID, score.ProjectName)] = score.Score
	return nil
}

func newTestImporter(students *fakeStudentStore, grades *fakeUnitStore, rushes *fakeRushStore) *Importer {
	return New(students, grades, rushes, Config{}, nil)
}

func TestImportRejectsWrongExtension(t *testing.T) {
	students := newFakeStudentStore()
	imp := newTestImporter(students, newFakeUnitStore(), &fakeRushStore{})

	_, err := imp.ImportCSV(context.Background(), "roster.xlsx", []byte("username,name\njoe,Joe"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnsupportedFile, err)
	assert.Zero(t, students.snapshotCalls)
}

func TestImportRejectsHeaderOnly(t *testing.T) {
	imp := newTestImporter(newFakeStudentStore(), newFakeUnitStore(), &fakeRushStore{})

	_, err := imp.ImportCSV(context.Background(), "roster.csv", []byte("username,name\n"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrEmptyFile, err)
}

func TestImportRejectsTooManyRowsBeforeAnyStoreCall(t *testing.T) {
	students := newFakeStudentStore()
	grades := newFakeUnitStore()
	rushes := &fakeRushStore{fakeUnitStore: *newFakeUnitStore()}
	imp := newTestImporter(students, grades, rushes)

	var sb strings.Builder
	sb.WriteString("username,name\n")
	for i := 0; i < 1001; i++ {
		fmt.Fprintf(&sb, "user%d,User %d\n", i, i)
	}

	_, err := imp.ImportCSV(context.Background(), "big.csv", []byte(sb.String()))
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrTooManyRows.Code, appErr.Code)

	assert.Zero(t, students.snapshotCalls)
	assert.Zero(t, students.insertCalls)
	assert.Zero(t, grades.existsCalls)
	assert.Zero(t, rushes.existsCalls)
}

func TestImportRejectsUnrecognizedHeader(t *testing.T) {
	imp := newTestImporter(newFakeStudentStore(), newFakeUnitStore(), &fakeRushStore{})

	_, err := imp.ImportCSV(context.Background(), "data.csv", []byte("foo,bar\n1,2"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNoRecognizedColumns, err)
}

func TestImportDetectsMultipleKindsInOneFile(t *testing.T) {
	students := newFakeStudentStore()
	students.students["jane"] = models.Student{Username: "jane", UUID: "uuid-jane"}
	grades := newFakeUnitStore()
	imp := newTestImporter(students, grades, &fakeRushStore{fakeUnitStore: *newFakeUnitStore()})

	csv := "username,name,exam00\njane,Jane Doe,75\n"
	result, err := imp.ImportCSV(context.Background(), "mixed.csv", []byte(csv))
	require.NoError(t, err)

	assert.Equal(t, []RecordKind{KindStudents, KindExamGrades}, result.DetectedTables)
	assert.True(t, result.Success)
	// one participant update plus one exam grade unit
	assert.Equal(t, 2, result.Stats.TotalRows)
	assert.Equal(t, 1, result.Stats.Created)
	assert.Equal(t, 1, result.Stats.Updated)
	assert.Equal(t, 75.0, grades.records["uuid-jane/exam00"])
}

func TestImportTimeoutIsDistinguished(t *testing.T) {
	students := newFakeStudentStore()
	students.stall = true
	imp := New(students, newFakeUnitStore(), &fakeRushStore{}, Config{Timeout: 30 * time.Millisecond}, nil)

	result, err := imp.ImportCSV(context.Background(), "slow.csv", []byte("username,name\njoe,Joe\n"))
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrImportTimeout.Code, appErr.Code)

	require.NotNil(t, result)
	assert.False(t, result.Success)
	assert.Equal(t, []RecordKind{KindStudents}, result.DetectedTables)
}

func TestImportPartialFailureStillReportsStats(t *testing.T) {
	students := newFakeStudentStore()
	students.students["jane"] = models.Student{Username: "jane", UUID: "uuid-jane"}
	grades := newFakeUnitStore()
	imp := newTestImporter(students, grades, &fakeRushStore{})

	// ghost is unknown to the store, so the grade row is an error while
	// jane's grade still lands.
	csv := "username,exam00\njane,80\nghost,90\n"
	result, err := imp.ImportCSV(context.Background(), "grades.csv", []byte(csv))
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, 1, result.Stats.Errors)
	assert.Equal(t, 1, result.Stats.Created)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "ghost")
	assert.Equal(t, []RecordKind{KindExamGrades}, result.DetectedTables)
}
