package importer

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// upsertUnit writes one (student, sub-field, value) unit and reports whether
// it created a new record.
type upsertUnit func(ctx context.Context, studentUUID, field string, value float64) (created bool, err error)

// runUnitImport is the shared row loop for the exam grade and rush score
// importers. Each surviving sub-field value is one independent upsert unit
// and contributes one to TotalRows; rows with a blank username are silently
// skipped, rows naming an unknown student are errors.
func runUnitImport(ctx context.Context, grid [][]string, cols map[string]int, fields []string, usernames map[string]string, label string, upsert upsertUnit) (Stats, []string) {
	var stats Stats
	var errs []string

	for i := 1; i < len(grid); i++ {
		if ctx.Err() != nil {
			return stats, errs
		}
		row := grid[i]
		if rowIsBlank(row) {
			continue
		}

		username := strings.ToLower(strings.TrimSpace(cellValue(row, cols, "username")))
		if username == "" {
			continue
		}
		studentUUID, ok := usernames[username]
		if !ok {
			errs = append(errs, fmt.Sprintf("row %d: student %q not found", i, username))
			stats.Errors++
			continue
		}

		for _, field := range fields {
			if ctx.Err() != nil {
				return stats, errs
			}
			if _, present := cols[field]; !present {
				continue
			}
			raw := strings.TrimSpace(cellValue(row, cols, field))
			if raw == "" || raw == "0" || strings.EqualFold(raw, "null") {
				continue
			}
			value, err := strconv.ParseFloat(raw, 64)
			if err != nil || value <= 0 {
				continue
			}

			stats.TotalRows++
			created, err := upsert(ctx, studentUUID, field, value)
			if err != nil {
				errs = append(errs, fmt.Sprintf("row %d: %s %s for %q failed: %v", i, label, field, username, err))
				stats.Errors++
				continue
			}
			if created {
				stats.Created++
			} else {
				stats.Updated++
			}
		}
	}

	return stats, errs
}
