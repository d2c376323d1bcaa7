package models

import "time"

// ImportRun records one invocation of the CSV smart import for auditing.
type ImportRun struct {
	ID             string    `db:"id" json:"id"`
	FileName       string    `db:"file_name" json:"file_name"`
	StoredPath     string    `db:"stored_path" json:"stored_path"`
	UserID         string    `db:"user_id" json:"user_id"`
	Success        bool      `db:"success" json:"success"`
	DetectedTables string    `db:"detected_tables" json:"detected_tables"`
	TotalRows      int       `db:"total_rows" json:"total_rows"`
	Created        int       `db:"created" json:"created"`
	Updated        int       `db:"updated" json:"updated"`
	Errors         int       `db:"errors" json:"errors"`
	DurationMS     int64     `db:"duration_ms" json:"duration_ms"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
