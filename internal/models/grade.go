package models

import "time"

// Exam names accepted by the import pipeline and the manual grade endpoints.
const (
	Exam00    = "exam00"
	Exam01    = "exam01"
	Exam02    = "exam02"
	FinalExam = "final_exam"
)

// ExamMaxGrade is the fixed maximum for every piscine exam.
const ExamMaxGrade = 100

// ExamPassingGrade is the threshold at or above which a grade validates.
const ExamPassingGrade = 60

// ExamGrade stores one grade for a (student, exam) pair.
type ExamGrade struct {
	ID          string    `db:"id" json:"id"`
	StudentUUID string    `db:"student_uuid" json:"student_uuid"`
	ExamName    string    `db:"exam_name" json:"exam_name"`
	Grade       float64   `db:"grade" json:"grade"`
	Validated   bool      `db:"validated" json:"validated"`
	MaxGrade    float64   `db:"max_grade" json:"max_grade"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
