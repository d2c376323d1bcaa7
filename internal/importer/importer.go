// Package importer implements the CSV smart-import pipeline: header-driven
// classification of an uploaded spreadsheet into participant, exam grade and
// rush score records, with upsert semantics against the relational store and
// a hard wall-clock budget for the whole run.
package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/piscine-hq/piscine-admin-api/pkg/errors"
)

const (
	defaultMaxRows     = 1000
	defaultMaxFileSize = 10 * 1024 * 1024
	defaultTimeout     = 25 * time.Second
	defaultChunkSize   = 10
	defaultEmailDomain = "learner.piscine.dev"
)

// Config bounds a single import invocation.
type Config struct {
	MaxRows         int
	MaxFileSize     int64
	Timeout         time.Duration
	UpdateChunkSize int
	EmailDomain     string
}

// MetricsRecorder receives per-kind import outcomes. Implementations must
// tolerate being called from the import goroutine.
type MetricsRecorder interface {
	ObserveImport(kind RecordKind, stats Stats)
	ObserveImportDuration(d time.Duration, success bool)
}

// Importer orchestrates classification and the per-kind importers.
type Importer struct {
	students StudentStore
	grades   ExamGradeStore
	rushes   RushScoreStore
	cfg      Config
	logger   *zap.Logger
	metrics  MetricsRecorder
}

// New constructs an Importer, applying defaults for zero config values.
func New(students StudentStore, grades ExamGradeStore, rushes RushScoreStore, cfg Config, logger *zap.Logger) *Importer {
	if cfg.MaxRows <= 0 {
		cfg.MaxRows = defaultMaxRows
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = defaultMaxFileSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.UpdateChunkSize <= 0 {
		cfg.UpdateChunkSize = defaultChunkSize
	}
	if cfg.EmailDomain == "" {
		cfg.EmailDomain = defaultEmailDomain
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{students: students, grades: grades, rushes: rushes, cfg: cfg, logger: logger}
}

// WithMetrics attaches an optional metrics recorder.
func (imp *Importer) WithMetrics(m MetricsRecorder) *Importer {
	imp.metrics = m
	return imp
}

// ImportCSV runs the full pipeline for one uploaded file. Structural
// rejections and the timeout return a typed error; row-level problems are
// reported inside the Result only. On timeout the returned Result is
// partial: writes already issued to the store are not rolled back.
func (imp *Importer) ImportCSV(ctx context.Context, fileName string, data []byte) (*Result, error) {
	start := time.Now()

	if !strings.HasSuffix(strings.ToLower(strings.TrimSpace(fileName)), ".csv") {
		return nil, appErrors.ErrUnsupportedFile
	}
	if int64(len(data)) > imp.cfg.MaxFileSize {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file exceeds the size limit")
	}

	grid := Tokenize(string(data))
	for len(grid) > 0 && rowIsBlank(grid[len(grid)-1]) {
		grid = grid[:len(grid)-1]
	}
	if len(grid) < 2 {
		return nil, appErrors.ErrEmptyFile
	}
	if len(grid)-1 > imp.cfg.MaxRows {
		return nil, appErrors.Clone(appErrors.ErrTooManyRows, fmt.Sprintf("file has %d data rows, limit is %d", len(grid)-1, imp.cfg.MaxRows))
	}

	kinds := DetectKinds(grid[0])
	if len(kinds) == 0 {
		return nil, appErrors.ErrNoRecognizedColumns
	}

	runCtx, cancel := context.WithTimeout(ctx, imp.cfg.Timeout)
	defer cancel()

	done := make(chan *Result, 1)
	go func() {
		done <- imp.runKinds(runCtx, grid, kinds)
	}()

	select {
	case result := <-done:
		imp.observeDuration(time.Since(start), result.Success)
		imp.logger.Info("csv import finished",
			zap.String("file", fileName),
			zap.Bool("success", result.Success),
			zap.Int("total_rows", result.Stats.TotalRows),
			zap.Int("errors", result.Stats.Errors),
			zap.Duration("elapsed", time.Since(start)))
		return result, nil
	case <-runCtx.Done():
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			imp.observeDuration(time.Since(start), false)
			imp.logger.Warn("csv import timed out", zap.String("file", fileName), zap.Duration("budget", imp.cfg.Timeout))
			result := &Result{
				Success:        false,
				Message:        "import exceeded the time budget; already issued writes were kept",
				DetectedTables: kinds,
			}
			return result, appErrors.ErrImportTimeout
		}
		return nil, appErrors.Wrap(runCtx.Err(), appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "import canceled")
	}
}

// runKinds executes every matched importer sequentially and merges their
// stats. Importers check the context between rows, so cancellation stops
// further writes promptly instead of running to completion unobserved.
func (imp *Importer) runKinds(ctx context.Context, grid [][]string, kinds []RecordKind) *Result {
	result := &Result{DetectedTables: kinds}

	for _, kind := range kinds {
		if ctx.Err() != nil {
			break
		}
		cols := ResolveColumns(kind, grid[0])

		var stats Stats
		var errs []string
		switch kind {
		case KindStudents:
			si := &studentImporter{
				store:       imp.students,
				emailDomain: imp.cfg.EmailDomain,
				chunkSize:   imp.cfg.UpdateChunkSize,
				logger:      imp.logger,
			}
			stats, errs = si.run(ctx, grid, cols)
		case KindExamGrades:
			gi := &examGradeImporter{students: imp.students, grades: imp.grades}
			stats, errs = gi.run(ctx, grid, cols)
		case KindRushScores:
			ri := &rushScoreImporter{students: imp.students, rushes: imp.rushes}
			stats, errs = ri.run(ctx, grid, cols)
		}

		result.Stats.Merge(stats)
		result.Errors = append(result.Errors, errs...)
		if imp.metrics != nil {
			imp.metrics.ObserveImport(kind, stats)
		}
	}

	result.Success = result.Stats.Errors == 0
	if result.Success {
		result.Message = fmt.Sprintf("import completed: %d created, %d updated", result.Stats.Created, result.Stats.Updated)
	} else {
		result.Message = fmt.Sprintf("import completed with %d error(s)", result.Stats.Errors)
	}
	return result
}

func (imp *Importer) observeDuration(d time.Duration, success bool) {
	if imp.metrics != nil {
		imp.metrics.ObserveImportDuration(d, success)
	}
}
