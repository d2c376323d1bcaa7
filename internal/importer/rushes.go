package importer

import (
	"context"

	"github.com/piscine-hq/piscine-admin-api/internal/models"
)

var rushFields = []string{models.RushSquare, models.RushSkyScraper, models.RushRosettaStone}

// rushScoreImporter upserts one score record per (student, project) unit.
type rushScoreImporter struct {
	students StudentStore
	rushes   RushScoreStore
}

func (im *rushScoreImporter) run(ctx context.Context, grid [][]string, cols map[string]int) (Stats, []string) {
	usernames, err := im.students.UsernameSnapshot(ctx)
	if err != nil {
		return Stats{Errors: 1}, []string{"rush scores: failed to read existing usernames: " + err.Error()}
	}

	return runUnitImport(ctx, grid, cols, rushFields, usernames, "rush score", func(ctx context.Context, studentUUID, projectName string, score float64) (bool, error) {
		exists, err := im.rushes.Exists(ctx, studentUUID, projectName)
		if err != nil {
			return false, err
		}
		record := &models.RushScore{
			StudentUUID: studentUUID,
			ProjectName: projectName,
			Score:       score,
		}
		if exists {
			return false, im.rushes.Update(ctx, record)
		}
		return true, im.rushes.Insert(ctx, record)
	})
}
