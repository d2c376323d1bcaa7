package models

import "time"

// Rush project names accepted by the import pipeline.
const (
	RushSquare       = "square"
	RushSkyScraper   = "sky_scraper"
	RushRosettaStone = "rosetta_stone"
)

// RushScore stores one score for a (student, project) pair.
type RushScore struct {
	ID          string    `db:"id" json:"id"`
	StudentUUID string    `db:"student_uuid" json:"student_uuid"`
	ProjectName string    `db:"project_name" json:"project_name"`
	Score       float64   `db:"score" json:"score"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
