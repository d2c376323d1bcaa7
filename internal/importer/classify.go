package importer

import "strings"

// RecordKind identifies one of the semantic record types a CSV file can
// carry. A single file may match several kinds at once.
type RecordKind string

const (
	KindStudents   RecordKind = "students"
	KindExamGrades RecordKind = "exam_grades"
	KindRushScores RecordKind = "rush_scores"
)

// kindPriority fixes the order in which matched kinds are processed.
var kindPriority = []RecordKind{KindStudents, KindExamGrades, KindRushScores}

// fieldSpellings maps each kind's canonical fields to the accepted header
// spellings, in priority order. The first spelling present in the header
// wins; adding a synonym is a data change, not a code change.
var fieldSpellings = map[RecordKind]map[string][]string{
	KindStudents: {
		"uuid":               {"uuid", "id"},
		"username":           {"username", "login"},
		"name":               {"name", "full_name", "student_name", "student"},
		"email":              {"email", "e-mail", "mail"},
		"blocks":             {"blocks", "blocks_completed"},
		"level":              {"level", "final_level"},
		"votes_given":        {"votes_given", "votes given"},
		"votes_received":     {"votes_received", "votes received"},
		"performance":        {"performance", "performance_score"},
		"communication":      {"communication", "communication_score"},
		"professionalism":    {"professionalism", "professionalism_score"},
		"validated_projects": {"validated_projects", "projects_validated"},
		"age":                {"age"},
		"gender":             {"gender", "sex"},
		"coding_level":       {"coding_level", "coding level", "coding_experience"},
		"context":            {"context", "background"},
	},
	KindExamGrades: {
		"username":   {"username", "login"},
		"exam00":     {"exam00", "exam_00", "exam 00"},
		"exam01":     {"exam01", "exam_01", "exam 01"},
		"exam02":     {"exam02", "exam_02", "exam 02"},
		"final_exam": {"final_exam", "finalexam", "final exam", "final"},
	},
	KindRushScores: {
		"username":      {"username", "login"},
		"square":        {"square", "rush00"},
		"sky_scraper":   {"sky_scraper", "skyscraper", "sky scraper", "rush01"},
		"rosetta_stone": {"rosetta_stone", "rosettastone", "rosetta stone", "rush02"},
	},
}

// detectionSpellings lists, per kind, the header spellings whose presence
// identifies the kind. The username column is shared by all three kinds and
// identifies none of them on its own.
var detectionSpellings = map[RecordKind][]string{
	KindStudents: {
		"name", "full_name", "student_name", "student",
		"email", "e-mail", "mail",
	},
	KindExamGrades: {
		"exam00", "exam_00", "exam 00",
		"exam01", "exam_01", "exam 01",
		"exam02", "exam_02", "exam 02",
		"final_exam", "finalexam", "final exam", "final",
	},
	KindRushScores: {
		"square", "rush00",
		"sky_scraper", "skyscraper", "sky scraper", "rush01",
		"rosetta_stone", "rosettastone", "rosetta stone", "rush02",
	},
}

// normalizeHeader is the single normalization step shared by detection and
// column resolution.
func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

// DetectKinds reports which record kinds the header row targets, in fixed
// priority order. Matching is exact (after normalization), not substring.
func DetectKinds(header []string) []RecordKind {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[normalizeHeader(h)] = true
	}

	var kinds []RecordKind
	for _, kind := range kindPriority {
		for _, spelling := range detectionSpellings[kind] {
			if present[spelling] {
				kinds = append(kinds, kind)
				break
			}
		}
	}
	return kinds
}

// ResolveColumns maps each canonical field of the kind to a header index.
// Fields with no accepted spelling in the header are absent from the map;
// downstream importers treat absent optional fields as null and absent
// required fields as per-row errors.
func ResolveColumns(kind RecordKind, header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, h := range header {
		normalized := normalizeHeader(h)
		if _, seen := index[normalized]; !seen {
			index[normalized] = i
		}
	}

	cols := make(map[string]int)
	for field, spellings := range fieldSpellings[kind] {
		for _, spelling := range spellings {
			if i, ok := index[spelling]; ok {
				cols[field] = i
				break
			}
		}
	}
	return cols
}
