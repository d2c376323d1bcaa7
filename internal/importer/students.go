package importer

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/piscine-hq/piscine-admin-api/internal/models"
)

var studentNumericFields = []string{
	"blocks", "level", "votes_given", "votes_received",
	"performance", "communication", "professionalism",
	"validated_projects", "age",
}

var studentTextFields = []string{"gender", "coding_level", "context"}

// studentImporter turns participant rows into creates and partial updates.
type studentImporter struct {
	store       StudentStore
	emailDomain string
	chunkSize   int
	logger      *zap.Logger
}

func (im *studentImporter) run(ctx context.Context, grid [][]string, cols map[string]int) (Stats, []string) {
	var stats Stats
	var errs []string

	existing, err := im.store.UsernameSnapshot(ctx)
	if err != nil {
		errs = append(errs, fmt.Sprintf("students: failed to read existing usernames: %v", err))
		stats.Errors++
		return stats, errs
	}

	var inserts []models.Student
	var updates []models.StudentPatch

	for i := 1; i < len(grid); i++ {
		if ctx.Err() != nil {
			return stats, errs
		}
		row := grid[i]
		if rowIsBlank(row) {
			continue
		}
		stats.TotalRows++

		username := strings.ToLower(strings.TrimSpace(cellValue(row, cols, "username")))
		rawName := cellValue(row, cols, "name")

		var missing []string
		if username == "" {
			missing = append(missing, "username")
		}
		if strings.TrimSpace(rawName) == "" {
			missing = append(missing, "name")
		}
		if len(missing) > 0 {
			errs = append(errs, fmt.Sprintf("row %d: missing required field(s): %s", i, strings.Join(missing, ", ")))
			stats.Errors++
			continue
		}

		name, imageURL := ExtractNameAndImage(rawName)
		email := im.resolveEmail(cellValue(row, cols, "email"), username)
		attrs, patch := collectStudentAttributes(row, cols)

		if _, ok := existing[username]; ok {
			patch["name"] = name
			patch["email"] = email
			if imageURL != nil {
				patch["profile_image_url"] = *imageURL
			}
			updates = append(updates, models.StudentPatch{Username: username, Fields: patch})
			continue
		}

		uuid := strings.TrimSpace(cellValue(row, cols, "uuid"))
		if uuid == "" {
			key := username
			if key == "" {
				key = fmt.Sprintf("student_%d", i)
			}
			uuid = DeterministicUUID(key)
		}
		inserts = append(inserts, models.Student{
			UUID:              uuid,
			Username:          username,
			Name:              name,
			Email:             email,
			ProfileImageURL:   imageURL,
			StudentAttributes: attrs,
		})
	}

	if len(inserts) > 0 && ctx.Err() == nil {
		if err := im.store.BulkInsert(ctx, inserts); err != nil {
			errs = append(errs, fmt.Sprintf("students: bulk insert of %d rows failed: %v", len(inserts), err))
			stats.Errors += len(inserts)
		} else {
			stats.Created += len(inserts)
		}
	}

	for start := 0; start < len(updates); start += im.chunkSize {
		if ctx.Err() != nil {
			return stats, errs
		}
		end := start + im.chunkSize
		if end > len(updates) {
			end = len(updates)
		}
		for _, patch := range updates[start:end] {
			if err := im.store.UpdateFields(ctx, patch.Username, patch.Fields); err != nil {
				errs = append(errs, fmt.Sprintf("students: update of %q failed: %v", patch.Username, err))
				stats.Errors++
				continue
			}
			stats.Updated++
		}
	}

	im.logger.Debug("student import finished",
		zap.Int("total_rows", stats.TotalRows),
		zap.Int("created", stats.Created),
		zap.Int("updated", stats.Updated),
		zap.Int("errors", stats.Errors))
	return stats, errs
}

// resolveEmail lowercases a provided address, or synthesizes one from the
// sanitized username when the cell does not look like an email.
func (im *studentImporter) resolveEmail(raw, username string) string {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if strings.Contains(trimmed, "@") {
		return trimmed
	}
	return sanitizeUsername(username) + "@" + im.emailDomain
}

// sanitizeUsername strips every character outside [a-z0-9.-].
func sanitizeUsername(username string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(username) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// collectStudentAttributes coerces the optional attribute columns. The patch
// map carries only the fields the row actually provided; nil coercions are
// dropped so updates never overwrite a stored value with null.
func collectStudentAttributes(row []string, cols map[string]int) (models.StudentAttributes, map[string]interface{}) {
	var attrs models.StudentAttributes
	patch := make(map[string]interface{})

	numeric := map[string]**float64{
		"blocks":             &attrs.Blocks,
		"level":              &attrs.Level,
		"votes_given":        &attrs.VotesGiven,
		"votes_received":     &attrs.VotesReceived,
		"performance":        &attrs.Performance,
		"communication":      &attrs.Communication,
		"professionalism":    &attrs.Professionalism,
		"validated_projects": &attrs.ValidatedProjects,
		"age":                &attrs.Age,
	}
	for _, field := range studentNumericFields {
		if v := CoerceFloat(cellValue(row, cols, field)); v != nil {
			*numeric[field] = v
			patch[field] = *v
		}
	}

	text := map[string]**string{
		"gender":       &attrs.Gender,
		"coding_level": &attrs.CodingLevel,
		"context":      &attrs.Context,
	}
	for _, field := range studentTextFields {
		if v := CoerceString(cellValue(row, cols, field)); v != nil {
			*text[field] = v
			patch[field] = *v
		}
	}

	return attrs, patch
}

// cellValue reads the cell backing a canonical field, or "" when the column
// is absent from the map or the row is ragged.
func cellValue(row []string, cols map[string]int, field string) string {
	idx, ok := cols[field]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// rowIsBlank reports whether every cell in the row is empty after trimming.
func rowIsBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
