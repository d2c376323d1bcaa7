package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/piscine-hq/piscine-admin-api/internal/models"
	appErrors "github.com/piscine-hq/piscine-admin-api/pkg/errors"
)

const leaderboardKeyPrefix = "leaderboard"

type leaderboardRepository interface {
	Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
}

type leaderboardCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// LeaderboardService serves the level/blocks ranking with a Redis cache
// in front of the database query.
type LeaderboardService struct {
	repo    leaderboardRepository
	cache   leaderboardCache
	metrics *MetricsService
	ttl     time.Duration
	logger  *zap.Logger
}

// NewLeaderboardService constructs a LeaderboardService.
func NewLeaderboardService(repo leaderboardRepository, cache leaderboardCache, metrics *MetricsService, ttl time.Duration, logger *zap.Logger) *LeaderboardService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeaderboardService{repo: repo, cache: cache, metrics: metrics, ttl: ttl, logger: logger}
}

// Top returns the highest ranked students, cache-first.
func (s *LeaderboardService) Top(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	key := fmt.Sprintf("%s:top:%d", leaderboardKeyPrefix, limit)

	if s.cache != nil {
		var cached []models.LeaderboardEntry
		err := s.cache.Get(ctx, key, &cached)
		if err == nil {
			s.metrics.RecordCacheOperation(true)
			return cached, nil
		}
		s.metrics.RecordCacheOperation(false)
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("leaderboard cache read failed", zap.Error(err))
		}
	}

	entries, err := s.repo.Leaderboard(ctx, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute leaderboard")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, entries, s.ttl); err != nil {
			s.logger.Warn("leaderboard cache write failed", zap.Error(err))
		}
	}
	return entries, nil
}

// Invalidate drops every cached leaderboard payload. The import flow
// calls this through the background queue after student data changed.
func (s *LeaderboardService) Invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.DeleteByPattern(ctx, leaderboardKeyPrefix+":*"); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to invalidate leaderboard cache")
	}
	return nil
}
