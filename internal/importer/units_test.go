package importer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piscine-hq/piscine-admin-api/internal/models"
)

var errStoreDown = errors.New("store unavailable")

func runGradeImport(t *testing.T, students *fakeStudentStore, grades *fakeUnitStore, csv string) (Stats, []string) {
	t.Helper()
	grid := Tokenize(csv)
	cols := ResolveColumns(KindExamGrades, grid[0])
	gi := &examGradeImporter{students: students, grades: grades}
	return gi.run(context.Background(), grid, cols)
}

func knownStudent(store *fakeStudentStore, username, uuid string) {
	store.students[username] = models.Student{Username: username, UUID: uuid}
}

func TestGradeImportCountsPerSubField(t *testing.T) {
	students := newFakeStudentStore()
	knownStudent(students, "jdoe", "uuid-1")
	grades := newFakeUnitStore()

	// exam01 is zero and final_exam is blank: both are silent skips
	csv := "username,exam00,exam01,exam02,final_exam\njdoe,45,0,67,\n"
	stats, errs := runGradeImport(t, students, grades, csv)
	require.Empty(t, errs)

	assert.Equal(t, Stats{TotalRows: 2, Created: 2}, stats)
	assert.Equal(t, 2, grades.insertCalls)
	assert.Equal(t, 45.0, grades.records["uuid-1/exam00"])
	assert.Equal(t, 67.0, grades.records["uuid-1/exam02"])
}

func TestGradeImportValidationThreshold(t *testing.T) {
	students := newFakeStudentStore()
	knownStudent(students, "a", "uuid-a")
	knownStudent(students, "b", "uuid-b")
	grades := newFakeUnitStore()

	var captured []models.ExamGrade
	grid := Tokenize("username,exam00\na,59\nb,60\n")
	cols := ResolveColumns(KindExamGrades, grid[0])
	gi := &examGradeImporter{students: students, grades: &capturingGradeStore{fakeUnitStore: grades, captured: &captured}}
	_, errs := gi.run(context.Background(), grid, cols)
	require.Empty(t, errs)

	require.Len(t, captured, 2)
	byUUID := map[string]models.ExamGrade{}
	for _, g := range captured {
		byUUID[g.StudentUUID] = g
	}
	assert.False(t, byUUID["uuid-a"].Validated)
	assert.True(t, byUUID["uuid-b"].Validated)
	assert.Equal(t, float64(models.ExamMaxGrade), byUUID["uuid-a"].MaxGrade)
}

type capturingGradeStore struct {
	fakeUnitStore *fakeUnitStore
	captured      *[]models.ExamGrade
}

func (c *capturingGradeStore) Exists(ctx context.Context, studentUUID, examName string) (bool, error) {
	return c.fakeUnitStore.Exists(ctx, studentUUID, examName)
}

func (c *capturingGradeStore) Insert(ctx context.Context, grade *models.ExamGrade) error {
	*c.captured = append(*c.captured, *grade)
	return c.fakeUnitStore.Insert(ctx, grade)
}

func (c *capturingGradeStore) Update(ctx context.Context, grade *models.ExamGrade) error {
	*c.captured = append(*c.captured, *grade)
	return c.fakeUnitStore.Update(ctx, grade)
}

func TestGradeImportUnknownStudentIsError(t *testing.T) {
	students := newFakeStudentStore()
	grades := newFakeUnitStore()

	stats, errs := runGradeImport(t, students, grades, "username,exam00\nghost,50\n")
	assert.Equal(t, Stats{Errors: 1}, stats)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "ghost")
	assert.Zero(t, grades.insertCalls)
}

func TestGradeImportBlankUsernameSilentlySkipped(t *testing.T) {
	students := newFakeStudentStore()
	grades := newFakeUnitStore()

	stats, errs := runGradeImport(t, students, grades, "username,exam00\n,50\n")
	require.Empty(t, errs)
	assert.Equal(t, Stats{}, stats)
}

func TestGradeImportUpdatesExistingUnit(t *testing.T) {
	students := newFakeStudentStore()
	knownStudent(students, "jdoe", "uuid-1")
	grades := newFakeUnitStore()
	grades.records["uuid-1/exam00"] = 40

	stats, errs := runGradeImport(t, students, grades, "username,exam00\njdoe,80\n")
	require.Empty(t, errs)
	assert.Equal(t, Stats{TotalRows: 1, Updated: 1}, stats)
	assert.Equal(t, 80.0, grades.records["uuid-1/exam00"])
}

func TestGradeImportNullAndNegativeSkipped(t *testing.T) {
	students := newFakeStudentStore()
	knownStudent(students, "jdoe", "uuid-1")
	grades := newFakeUnitStore()

	stats, errs := runGradeImport(t, students, grades, "username,exam00,exam01,exam02\njdoe,null,-5,abc\n")
	require.Empty(t, errs)
	assert.Equal(t, Stats{}, stats)
	assert.Zero(t, grades.insertCalls)
}

func TestGradeImportStoreFailureDoesNotAbortSiblings(t *testing.T) {
	students := newFakeStudentStore()
	knownStudent(students, "jdoe", "uuid-1")
	grades := newFakeUnitStore()
	grades.insertErr = errStoreDown

	stats, errs := runGradeImport(t, students, grades, "username,exam00,exam02\njdoe,45,67\n")
	assert.Equal(t, Stats{TotalRows: 2, Errors: 2}, stats)
	assert.Len(t, errs, 2)
}

func TestRushImportProjects(t *testing.T) {
	students := newFakeStudentStore()
	knownStudent(students, "jdoe", "uuid-1")
	rushes := &fakeRushStore{fakeUnitStore: *newFakeUnitStore()}

	grid := Tokenize("username,square,sky_scraper,rosetta_stone\njdoe,70,0,85\n")
	cols := ResolveColumns(KindRushScores, grid[0])
	ri := &rushScoreImporter{students: students, rushes: rushes}
	stats, errs := ri.run(context.Background(), grid, cols)
	require.Empty(t, errs)

	assert.Equal(t, Stats{TotalRows: 2, Created: 2}, stats)
	assert.Equal(t, 70.0, rushes.records["uuid-1/square"])
	assert.Equal(t, 85.0, rushes.records["uuid-1/rosetta_stone"])
}
