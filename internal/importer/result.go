package importer

// Stats accumulates per-kind import outcomes. TotalRows counts processed
// data units, not raw CSV rows: the grade and rush importers count one unit
// per surviving sub-field value.
type Stats struct {
	TotalRows int `json:"total_rows"`
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Errors    int `json:"errors"`
}

// Merge adds the other stats field-wise.
func (s *Stats) Merge(other Stats) {
	s.TotalRows += other.TotalRows
	s.Created += other.Created
	s.Updated += other.Updated
	s.Errors += other.Errors
}

// Result is the final payload returned to the caller of an import.
type Result struct {
	Success        bool         `json:"success"`
	Message        string       `json:"message"`
	Stats          Stats        `json:"stats"`
	DetectedTables []RecordKind `json:"detected_tables"`
	Errors         []string     `json:"errors"`
}
