package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/piscine-hq/piscine-admin-api/internal/importer"
	"github.com/piscine-hq/piscine-admin-api/internal/models"
	appErrors "github.com/piscine-hq/piscine-admin-api/pkg/errors"
	"github.com/piscine-hq/piscine-admin-api/pkg/jobs"
	"github.com/piscine-hq/piscine-admin-api/pkg/storage"
)

// JobTypeLeaderboardInvalidate asks the background queue to drop cached
// leaderboard payloads after an import changed student data.
const JobTypeLeaderboardInvalidate = "leaderboard.invalidate"

type importRunRepository interface {
	Create(ctx context.Context, run *models.ImportRun) error
	List(ctx context.Context, limit int) ([]models.ImportRun, error)
	FindByID(ctx context.Context, id string) (*models.ImportRun, error)
}

type uploadStorage interface {
	Save(filename string, data []byte) (string, error)
}

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

// ImportService runs the CSV smart import and records an audit trail of
// every invocation.
type ImportService struct {
	importer *importer.Importer
	runs     importRunRepository
	uploads  uploadStorage
	signer   *storage.SignedURLSigner
	queue    jobEnqueuer
	logger   *zap.Logger
}

// NewImportService constructs an ImportService.
func NewImportService(imp *importer.Importer, runs importRunRepository, uploads uploadStorage, signer *storage.SignedURLSigner, queue jobEnqueuer, logger *zap.Logger) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{importer: imp, runs: runs, uploads: uploads, signer: signer, queue: queue, logger: logger}
}

// ImportSummary combines the pipeline result with its audit record.
type ImportSummary struct {
	Run    *models.ImportRun `json:"run"`
	Result *importer.Result  `json:"result"`
}

// Run executes the import pipeline for an uploaded file, keeps the raw
// bytes for auditing and records the outcome. Structural rejections
// (wrong extension, oversized or empty file, unrecognized header) return
// an error without recording a run; a timed-out import records a partial
// run alongside the timeout error.
func (s *ImportService) Run(ctx context.Context, fileName string, data []byte, userID string) (*ImportSummary, error) {
	start := time.Now()
	result, importErr := s.importer.ImportCSV(ctx, fileName, data)
	if result == nil {
		return nil, importErr
	}

	runID := uuid.NewString()
	storedPath := ""
	if s.uploads != nil {
		rel := filepath.Join("imports", runID, filepath.Base(fileName))
		if saved, err := s.uploads.Save(rel, data); err != nil {
			s.logger.Warn("failed to keep raw import file", zap.String("file", fileName), zap.Error(err))
		} else {
			storedPath = saved
		}
	}

	tables := make([]string, 0, len(result.DetectedTables))
	for _, kind := range result.DetectedTables {
		tables = append(tables, string(kind))
	}

	run := &models.ImportRun{
		ID:             runID,
		FileName:       filepath.Base(fileName),
		StoredPath:     storedPath,
		UserID:         userID,
		Success:        result.Success,
		DetectedTables: strings.Join(tables, ","),
		TotalRows:      result.Stats.TotalRows,
		Created:        result.Stats.Created,
		Updated:        result.Stats.Updated,
		Errors:         result.Stats.Errors,
		DurationMS:     time.Since(start).Milliseconds(),
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.runs.Create(ctx, run); err != nil {
		s.logger.Error("failed to record import run", zap.String("file", fileName), zap.Error(err))
	}

	if s.queue != nil && result.Stats.Created+result.Stats.Updated > 0 {
		if err := s.queue.Enqueue(jobs.Job{
			ID:      uuid.NewString(),
			Type:    JobTypeLeaderboardInvalidate,
			Payload: run.ID,
		}); err != nil {
			s.logger.Warn("failed to enqueue leaderboard invalidation", zap.Error(err))
		}
	}

	return &ImportSummary{Run: run, Result: result}, importErr
}

// History returns the most recent import runs.
func (s *ImportService) History(ctx context.Context, limit int) ([]models.ImportRun, error) {
	runs, err := s.runs.List(ctx, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list import runs")
	}
	return runs, nil
}

// Get loads a single import run by ID.
func (s *ImportService) Get(ctx context.Context, id string) (*models.ImportRun, error) {
	run, err := s.runs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "import run not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load import run")
	}
	return run, nil
}

// DownloadToken issues a signed token for fetching the raw uploaded file.
func (s *ImportService) DownloadToken(ctx context.Context, id string) (string, time.Time, error) {
	run, err := s.Get(ctx, id)
	if err != nil {
		return "", time.Time{}, err
	}
	if run.StoredPath == "" {
		return "", time.Time{}, appErrors.Clone(appErrors.ErrNotFound, "raw file was not kept for this run")
	}
	token, expiresAt, err := s.signer.Generate(run.ID, run.StoredPath)
	if err != nil {
		return "", time.Time{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download token")
	}
	return token, expiresAt, nil
}

// ResolveDownload validates a signed token and returns the stored path.
func (s *ImportService) ResolveDownload(token string) (string, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, fmt.Sprintf("invalid download token: %v", err))
	}
	return relPath, nil
}
