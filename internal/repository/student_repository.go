package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/piscine-hq/piscine-admin-api/internal/models"
)

// StudentRepository manages persistence for piscine participants. It also
// satisfies the importer's StudentStore contract.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

const studentColumns = `uuid, username, name, email, profile_image_url, blocks, level, votes_given, votes_received,
        performance, communication, professionalism, validated_projects, age, gender, coding_level, context, created_at, updated_at`

// List returns students matching the provided filters.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	base := "FROM students"
	var args []interface{}
	conditions := []string{"1=1"}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) LIKE $%d OR username LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	allowedSorts := map[string]string{
		"username":   "username",
		"name":       "name",
		"level":      "level",
		"created_at": "created_at",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", studentColumns, base, column, order, size, offset)

	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// FindByUsername fetches a student by its identity key.
func (r *StudentRepository) FindByUsername(ctx context.Context, username string) (*models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE username = $1", studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, strings.ToLower(strings.TrimSpace(username))); err != nil {
		return nil, err
	}
	return &student, nil
}

// UsernameSnapshot returns every stored username mapped to its uuid. The
// import pipeline reads this once per invocation to classify rows as
// insert-vs-update without per-row lookups.
func (r *StudentRepository) UsernameSnapshot(ctx context.Context) (map[string]string, error) {
	rows := []struct {
		Username string `db:"username"`
		UUID     string `db:"uuid"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, "SELECT username, uuid FROM students"); err != nil {
		return nil, fmt.Errorf("snapshot usernames: %w", err)
	}
	snapshot := make(map[string]string, len(rows))
	for _, row := range rows {
		snapshot[row.Username] = row.UUID
	}
	return snapshot, nil
}

// BulkInsert writes all new students in one call.
func (r *StudentRepository) BulkInsert(ctx context.Context, students []models.Student) error {
	if len(students) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for i := range students {
		if students[i].CreatedAt.IsZero() {
			students[i].CreatedAt = now
		}
		students[i].UpdatedAt = now
	}
	const query = `INSERT INTO students (uuid, username, name, email, profile_image_url, blocks, level, votes_given, votes_received,
        performance, communication, professionalism, validated_projects, age, gender, coding_level, context, created_at, updated_at)
        VALUES (:uuid, :username, :name, :email, :profile_image_url, :blocks, :level, :votes_given, :votes_received,
        :performance, :communication, :professionalism, :validated_projects, :age, :gender, :coding_level, :context, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, students); err != nil {
		return fmt.Errorf("bulk insert students: %w", err)
	}
	return nil
}

// UpdateFields applies a partial patch to one student by username. Field
// names are sorted so the generated SQL is deterministic.
func (r *StudentRepository) UpdateFields(ctx context.Context, username string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	assignments := make([]string, 0, len(names)+1)
	args := make([]interface{}, 0, len(names)+2)
	for _, name := range names {
		assignments = append(assignments, fmt.Sprintf("%s = $%d", name, len(args)+1))
		args = append(args, fields[name])
	}
	assignments = append(assignments, fmt.Sprintf("updated_at = $%d", len(args)+1))
	args = append(args, time.Now().UTC())
	args = append(args, username)

	query := fmt.Sprintf("UPDATE students SET %s WHERE username = $%d", strings.Join(assignments, ", "), len(args))
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update student %q: %w", username, err)
	}
	return nil
}

// Create inserts a single student record.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	return r.BulkInsert(ctx, []models.Student{*student})
}

// Delete removes a student and its dependent records.
func (r *StudentRepository) Delete(ctx context.Context, username string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM students WHERE username = $1", username); err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	return nil
}

// Leaderboard returns students ranked by level then blocks.
func (r *StudentRepository) Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	query := fmt.Sprintf(`SELECT username, name, level, blocks,
        RANK() OVER (ORDER BY level DESC NULLS LAST, blocks DESC NULLS LAST) AS rank
        FROM students ORDER BY rank LIMIT %d`, limit)
	var entries []models.LeaderboardEntry
	if err := r.db.SelectContext(ctx, &entries, query); err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	return entries, nil
}
