package models

import "time"

// Note is a free-form staff note attached to a student.
type Note struct {
	ID          string    `db:"id" json:"id"`
	StudentUUID string    `db:"student_uuid" json:"student_uuid"`
	AuthorID    string    `db:"author_id" json:"author_id"`
	Body        string    `db:"body" json:"body"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
