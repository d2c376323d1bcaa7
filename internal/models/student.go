package models

import "time"

// Student represents a piscine participant.
// Username is the identity key: lowercased, trimmed and unique across the store.
type Student struct {
	UUID            string    `db:"uuid" json:"uuid"`
	Username        string    `db:"username" json:"username"`
	Name            string    `db:"name" json:"name"`
	Email           string    `db:"email" json:"email"`
	ProfileImageURL *string   `db:"profile_image_url" json:"profile_image_url,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`

	StudentAttributes
}

// StudentAttributes holds the optional performance and demographic fields.
// Every field is a pointer so a patch can carry only the values a CSV row
// actually provided; nil fields are never written to the store.
type StudentAttributes struct {
	Blocks            *float64 `db:"blocks" json:"blocks,omitempty"`
	Level             *float64 `db:"level" json:"level,omitempty"`
	VotesGiven        *float64 `db:"votes_given" json:"votes_given,omitempty"`
	VotesReceived     *float64 `db:"votes_received" json:"votes_received,omitempty"`
	Performance       *float64 `db:"performance" json:"performance,omitempty"`
	Communication     *float64 `db:"communication" json:"communication,omitempty"`
	Professionalism   *float64 `db:"professionalism" json:"professionalism,omitempty"`
	ValidatedProjects *float64 `db:"validated_projects" json:"validated_projects,omitempty"`
	Age               *float64 `db:"age" json:"age,omitempty"`
	Gender            *string  `db:"gender" json:"gender,omitempty"`
	CodingLevel       *string  `db:"coding_level" json:"coding_level,omitempty"`
	Context           *string  `db:"context" json:"context,omitempty"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// StudentPatch is the compacted update payload for one student: only the
// attributes present in the source row, keyed by column name.
type StudentPatch struct {
	Username string
	Fields   map[string]interface{}
}

// LeaderboardEntry is one row of the level/blocks ranking.
type LeaderboardEntry struct {
	Username string   `db:"username" json:"username"`
	Name     string   `db:"name" json:"name"`
	Level    *float64 `db:"level" json:"level,omitempty"`
	Blocks   *float64 `db:"blocks" json:"blocks,omitempty"`
	Rank     int      `db:"rank" json:"rank"`
}
