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

type examGradeRepository interface {
	ListByStudent(ctx context.Context, studentUUID string) ([]models.ExamGrade, error)
	Exists(ctx context.Context, studentUUID, examName string) (bool, error)
	Insert(ctx context.Context, grade *models.ExamGrade) error
	Update(ctx context.Context, grade *models.ExamGrade) error
}

type rushScoreRepository interface {
	ListByStudent(ctx context.Context, studentUUID string) ([]models.RushScore, error)
	Exists(ctx context.Context, studentUUID, projectName string) (bool, error)
	Insert(ctx context.Context, score *models.RushScore) error
	Update(ctx context.Context, score *models.RushScore) error
}

type scoreStudentLookup interface {
	FindByUsername(ctx context.Context, username string) (*models.Student, error)
}

var knownExams = map[string]bool{
	models.Exam00:    true,
	models.Exam01:    true,
	models.Exam02:    true,
	models.FinalExam: true,
}

var knownRushProjects = map[string]bool{
	models.RushSquare:       true,
	models.RushSkyScraper:   true,
	models.RushRosettaStone: true,
}

// ScoreService lets staff record or correct exam grades and rush scores
// manually, with the same upsert semantics as the import pipeline.
type ScoreService struct {
	students  scoreStudentLookup
	grades    examGradeRepository
	rushes    rushScoreRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewScoreService constructs a ScoreService.
func NewScoreService(students scoreStudentLookup, grades examGradeRepository, rushes rushScoreRepository, validate *validator.Validate, logger *zap.Logger) *ScoreService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ScoreService{students: students, grades: grades, rushes: rushes, validator: validate, logger: logger}
}

// UpsertGradeRequest carries a manual exam grade submission.
type UpsertGradeRequest struct {
	Username string  `json:"username" validate:"required"`
	ExamName string  `json:"exam_name" validate:"required"`
	Grade    float64 `json:"grade" validate:"gte=0,lte=100"`
}

// UpsertGrade records or replaces the grade for a (student, exam) pair.
func (s *ScoreService) UpsertGrade(ctx context.Context, req UpsertGradeRequest) (*models.ExamGrade, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}
	if !knownExams[req.ExamName] {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown exam name")
	}

	student, err := s.resolveStudent(ctx, req.Username)
	if err != nil {
		return nil, err
	}

	grade := &models.ExamGrade{
		StudentUUID: student.UUID,
		ExamName:    req.ExamName,
		Grade:       req.Grade,
		Validated:   req.Grade >= models.ExamPassingGrade,
		MaxGrade:    models.ExamMaxGrade,
	}

	exists, err := s.grades.Exists(ctx, student.UUID, req.ExamName)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check grade")
	}
	if exists {
		if err := s.grades.Update(ctx, grade); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update grade")
		}
	} else {
		if err := s.grades.Insert(ctx, grade); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record grade")
		}
	}
	s.logger.Info("exam grade recorded", zap.String("username", req.Username), zap.String("exam", req.ExamName), zap.Float64("grade", req.Grade))
	return grade, nil
}

// UpsertRushRequest carries a manual rush score submission.
type UpsertRushRequest struct {
	Username    string  `json:"username" validate:"required"`
	ProjectName string  `json:"project_name" validate:"required"`
	Score       float64 `json:"score" validate:"gt=0"`
}

// UpsertRush records or replaces the score for a (student, project) pair.
func (s *ScoreService) UpsertRush(ctx context.Context, req UpsertRushRequest) (*models.RushScore, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid rush payload")
	}
	if !knownRushProjects[req.ProjectName] {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown rush project")
	}

	student, err := s.resolveStudent(ctx, req.Username)
	if err != nil {
		return nil, err
	}

	score := &models.RushScore{
		StudentUUID: student.UUID,
		ProjectName: req.ProjectName,
		Score:       req.Score,
	}

	exists, err := s.rushes.Exists(ctx, student.UUID, req.ProjectName)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check rush score")
	}
	if exists {
		if err := s.rushes.Update(ctx, score); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update rush score")
		}
	} else {
		if err := s.rushes.Insert(ctx, score); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record rush score")
		}
	}
	s.logger.Info("rush score recorded", zap.String("username", req.Username), zap.String("project", req.ProjectName), zap.Float64("score", req.Score))
	return score, nil
}

func (s *ScoreService) resolveStudent(ctx context.Context, username string) (*models.Student, error) {
	student, err := s.students.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}
