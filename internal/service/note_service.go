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

type noteRepository interface {
	ListByStudent(ctx context.Context, studentUUID string) ([]models.Note, error)
	FindByID(ctx context.Context, id string) (*models.Note, error)
	Create(ctx context.Context, note *models.Note) error
	Update(ctx context.Context, note *models.Note) error
	Delete(ctx context.Context, id string) error
}

// NoteService manages free-form staff notes attached to students.
type NoteService struct {
	repo      noteRepository
	students  scoreStudentLookup
	validator *validator.Validate
	logger    *zap.Logger
}

// NewNoteService constructs a NoteService.
func NewNoteService(repo noteRepository, students scoreStudentLookup, validate *validator.Validate, logger *zap.Logger) *NoteService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &NoteService{repo: repo, students: students, validator: validate, logger: logger}
}

// ListForStudent returns every note attached to the given student.
func (s *NoteService) ListForStudent(ctx context.Context, username string) ([]models.Note, error) {
	student, err := s.students.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	notes, err := s.repo.ListByStudent(ctx, student.UUID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notes")
	}
	return notes, nil
}

// CreateNoteRequest carries a new note payload.
type CreateNoteRequest struct {
	Username string `json:"username" validate:"required"`
	Body     string `json:"body" validate:"required,max=4000"`
}

// Create attaches a note to a student, stamped with its author.
func (s *NoteService) Create(ctx context.Context, authorID string, req CreateNoteRequest) (*models.Note, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid note payload")
	}

	student, err := s.students.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	note := &models.Note{
		StudentUUID: student.UUID,
		AuthorID:    authorID,
		Body:        req.Body,
	}
	if err := s.repo.Create(ctx, note); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create note")
	}
	return note, nil
}

// UpdateNoteRequest carries an edited note body.
type UpdateNoteRequest struct {
	Body string `json:"body" validate:"required,max=4000"`
}

// Update edits a note. Only the author may change it.
func (s *NoteService) Update(ctx context.Context, id, authorID string, req UpdateNoteRequest) (*models.Note, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid note payload")
	}

	note, err := s.loadNote(ctx, id)
	if err != nil {
		return nil, err
	}
	if note.AuthorID != authorID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the author may edit a note")
	}

	note.Body = req.Body
	if err := s.repo.Update(ctx, note); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update note")
	}
	return note, nil
}

// Delete removes a note. Admins may delete any note, staff only their own.
func (s *NoteService) Delete(ctx context.Context, id, requesterID string, requesterRole models.UserRole) error {
	note, err := s.loadNote(ctx, id)
	if err != nil {
		return err
	}
	if requesterRole != models.RoleAdmin && note.AuthorID != requesterID {
		return appErrors.Clone(appErrors.ErrForbidden, "only the author or an admin may delete a note")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete note")
	}
	return nil
}

func (s *NoteService) loadNote(ctx context.Context, id string) (*models.Note, error) {
	note, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "note not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load note")
	}
	return note, nil
}
