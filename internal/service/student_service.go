package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/piscine-hq/piscine-admin-api/internal/models"
	appErrors "github.com/piscine-hq/piscine-admin-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByUsername(ctx context.Context, username string) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	UpdateFields(ctx context.Context, username string, fields map[string]interface{}) error
	Delete(ctx context.Context, username string) error
}

type studentGradeRepository interface {
	ListByStudent(ctx context.Context, studentUUID string) ([]models.ExamGrade, error)
}

type studentRushRepository interface {
	ListByStudent(ctx context.Context, studentUUID string) ([]models.RushScore, error)
}

// StudentService provides read and write use cases over piscine participants.
type StudentService struct {
	repo      studentRepository
	grades    studentGradeRepository
	rushes    studentRushRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs a StudentService.
func NewStudentService(repo studentRepository, grades studentGradeRepository, rushes studentRushRepository, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &StudentService{repo: repo, grades: grades, rushes: rushes, validator: validate, logger: logger}
}

// StudentDetail aggregates a student with its recorded results.
type StudentDetail struct {
	Student models.Student     `json:"student"`
	Grades  []models.ExamGrade `json:"grades"`
	Rushes  []models.RushScore `json:"rushes"`
}

// List returns students with pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return students, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get loads one student with grades and rush scores attached.
func (s *StudentService) Get(ctx context.Context, username string) (*StudentDetail, error) {
	student, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	grades, err := s.grades.ListByStudent(ctx, student.UUID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam grades")
	}
	rushes, err := s.rushes.ListByStudent(ctx, student.UUID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rush scores")
	}

	return &StudentDetail{Student: *student, Grades: grades, Rushes: rushes}, nil
}

// CreateStudentRequest carries the payload for manually adding a student.
type CreateStudentRequest struct {
	UUID     string `json:"uuid"`
	Username string `json:"username" validate:"required,min=2,max=64"`
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"omitempty,email"`
}

// Create registers a single student outside the import flow.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	if existing, err := s.repo.FindByUsername(ctx, req.Username); err == nil && existing != nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "username already registered")
	} else if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check username")
	}

	student := &models.Student{
		UUID:     req.UUID,
		Username: req.Username,
		Name:     req.Name,
		Email:    req.Email,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	s.logger.Info("student created", zap.String("username", student.Username))
	return student, nil
}

// UpdateStudentRequest carries a partial patch applied by staff.
type UpdateStudentRequest struct {
	Name            *string  `json:"name"`
	Email           *string  `json:"email" validate:"omitempty,email"`
	ProfileImageURL *string  `json:"profile_image_url"`
	Level           *float64 `json:"level"`
	Blocks          *float64 `json:"blocks"`
	Context         *string  `json:"context"`
}

// Update applies the non-nil fields of the patch to an existing student.
// Like the import flow, absent fields never overwrite stored values.
func (s *StudentService) Update(ctx context.Context, username string, req UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student patch")
	}

	if _, err := s.repo.FindByUsername(ctx, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	fields := make(map[string]interface{})
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Email != nil {
		fields["email"] = *req.Email
	}
	if req.ProfileImageURL != nil {
		fields["profile_image_url"] = *req.ProfileImageURL
	}
	if req.Level != nil {
		fields["level"] = *req.Level
	}
	if req.Blocks != nil {
		fields["blocks"] = *req.Blocks
	}
	if req.Context != nil {
		fields["context"] = *req.Context
	}
	if len(fields) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "patch contains no fields")
	}

	if err := s.repo.UpdateFields(ctx, username, fields); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}

	updated, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload student")
	}
	return updated, nil
}

// Delete removes a student and its dependent records.
func (s *StudentService) Delete(ctx context.Context, username string) error {
	if _, err := s.repo.FindByUsername(ctx, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if err := s.repo.Delete(ctx, username); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	s.logger.Info("student deleted", zap.String("username", username))
	return nil
}
