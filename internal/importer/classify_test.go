package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectKinds(t *testing.T) {
	cases := []struct {
		name   string
		header []string
		want   []RecordKind
	}{
		{
			name:   "students only",
			header: []string{"username", "name", "level"},
			want:   []RecordKind{KindStudents},
		},
		{
			name:   "exam grades only",
			header: []string{"login", "exam00", "final_exam"},
			want:   []RecordKind{KindExamGrades},
		},
		{
			name:   "rush scores only",
			header: []string{"username", "square", "sky_scraper"},
			want:   []RecordKind{KindRushScores},
		},
		{
			name:   "students and exams in one file",
			header: []string{"username", "name", "exam00"},
			want:   []RecordKind{KindStudents, KindExamGrades},
		},
		{
			name:   "all three kinds",
			header: []string{"Username", "NAME", "exam01", "rosetta_stone"},
			want:   []RecordKind{KindStudents, KindExamGrades, KindRushScores},
		},
		{
			name:   "nothing recognizable",
			header: []string{"foo", "bar"},
			want:   nil,
		},
		{
			name:   "username alone identifies nothing",
			header: []string{"username"},
			want:   nil,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DetectKinds(tc.header))
		})
	}
}

func TestResolveColumnsPriorityOrder(t *testing.T) {
	// username is preferred over login when both are present
	cols := ResolveColumns(KindStudents, []string{"login", "username", "name"})
	assert.Equal(t, 1, cols["username"])
	assert.Equal(t, 2, cols["name"])
}

func TestResolveColumnsSynonyms(t *testing.T) {
	cols := ResolveColumns(KindStudents, []string{"Login", "Full_Name", "E-Mail", "blocks_completed"})
	assert.Equal(t, 0, cols["username"])
	assert.Equal(t, 1, cols["name"])
	assert.Equal(t, 2, cols["email"])
	assert.Equal(t, 3, cols["blocks"])
}

func TestResolveColumnsAbsentFieldMissingFromMap(t *testing.T) {
	cols := ResolveColumns(KindExamGrades, []string{"username", "exam00"})
	_, hasFinal := cols["final_exam"]
	assert.False(t, hasFinal)
	assert.Equal(t, 1, cols["exam00"])
}
