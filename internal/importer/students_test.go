package importer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func runStudentImport(t *testing.T, store *fakeStudentStore, csv string) (Stats, []string) {
	t.Helper()
	grid := Tokenize(csv)
	cols := ResolveColumns(KindStudents, grid[0])
	si := &studentImporter{store: store, emailDomain: "learner.piscine.dev", chunkSize: 10, logger: zap.NewNop()}
	return si.run(context.Background(), grid, cols)
}

func TestStudentImportIdempotentUpsert(t *testing.T) {
	store := newFakeStudentStore()
	csv := "username,name,age,level\njdoe,John Doe,23,4.2"

	stats, errs := runStudentImport(t, store, csv)
	require.Empty(t, errs)
	assert.Equal(t, Stats{TotalRows: 1, Created: 1}, stats)

	created := store.students["jdoe"]
	assert.Equal(t, "John Doe", created.Name)
	assert.Equal(t, "jdoe@learner.piscine.dev", created.Email)
	require.NotNil(t, created.Age)
	assert.Equal(t, 23.0, *created.Age)

	stats, errs = runStudentImport(t, store, csv)
	require.Empty(t, errs)
	assert.Equal(t, Stats{TotalRows: 1, Updated: 1}, stats)
}

func TestStudentImportPartialUpdateNeverNulls(t *testing.T) {
	store := newFakeStudentStore()

	_, errs := runStudentImport(t, store, "username,name,age\njdoe,John Doe,23")
	require.Empty(t, errs)

	// second file has no age column; the patch must not mention age at all
	stats, errs := runStudentImport(t, store, "username,name,level\njdoe,John Doe,5")
	require.Empty(t, errs)
	assert.Equal(t, 1, stats.Updated)

	patches := store.patches["jdoe"]
	require.Len(t, patches, 1)
	_, hasAge := patches[0]["age"]
	assert.False(t, hasAge)
	assert.Equal(t, 5.0, patches[0]["level"])
}

func TestStudentImportMissingUsername(t *testing.T) {
	store := newFakeStudentStore()

	stats, errs := runStudentImport(t, store, "username,name\n,John Doe\njdoe,Jane")
	assert.Equal(t, Stats{TotalRows: 2, Created: 1, Errors: 1}, stats)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "username")
	_, stored := store.students[""]
	assert.False(t, stored)
}

func TestStudentImportMissingBothRequiredFields(t *testing.T) {
	store := newFakeStudentStore()

	stats, errs := runStudentImport(t, store, "username,name,level\n,,3")
	assert.Equal(t, Stats{TotalRows: 1, Errors: 1}, stats)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "username")
	assert.Contains(t, errs[0], "name")
}

func TestStudentImportSkipsBlankRows(t *testing.T) {
	store := newFakeStudentStore()

	stats, errs := runStudentImport(t, store, "username,name\njdoe,John\n,\n")
	require.Empty(t, errs)
	assert.Equal(t, Stats{TotalRows: 1, Created: 1}, stats)
}

func TestStudentImportHTMLNameCell(t *testing.T) {
	store := newFakeStudentStore()

	csv := `username,name` + "\n" + `jdoe,"<a href=""https://x.test/p.png"">John Doe</a>"`
	_, errs := runStudentImport(t, store, csv)
	require.Empty(t, errs)

	student := store.students["jdoe"]
	assert.Equal(t, "John Doe", student.Name)
	require.NotNil(t, student.ProfileImageURL)
	assert.Equal(t, "https://x.test/p.png", *student.ProfileImageURL)
}

func TestStudentImportProvidedEmailWins(t *testing.T) {
	store := newFakeStudentStore()

	_, errs := runStudentImport(t, store, "username,name,email\njdoe,John, John.Doe@Example.Com ")
	require.Empty(t, errs)
	assert.Equal(t, "john.doe@example.com", store.students["jdoe"].Email)
}

func TestStudentImportBulkInsertFailureCountsEveryRow(t *testing.T) {
	store := newFakeStudentStore()
	store.insertErr = errors.New("constraint violation")

	stats, errs := runStudentImport(t, store, "username,name\na,Ann\nb,Ben")
	assert.Equal(t, 2, stats.Errors)
	assert.Zero(t, stats.Created)
	require.Len(t, errs, 1)
}

func TestStudentImportDeterministicUUIDFallback(t *testing.T) {
	store := newFakeStudentStore()

	_, errs := runStudentImport(t, store, "username,name\njdoe,John")
	require.Empty(t, errs)
	assert.Equal(t, DeterministicUUID("jdoe"), store.students["jdoe"].UUID)
}

func TestStudentImportUsesProvidedUUID(t *testing.T) {
	store := newFakeStudentStore()

	_, errs := runStudentImport(t, store, "uuid,username,name\nabc-123,jdoe,John")
	require.Empty(t, errs)
	assert.Equal(t, "abc-123", store.students["jdoe"].UUID)
}
