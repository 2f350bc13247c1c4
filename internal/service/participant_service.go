package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/socialflow-api/pkg/errors"
)

type participantRepository interface {
	Find(ctx context.Context, courseID int64) (int64, bool, error)
	Count(ctx context.Context, courseID int64, roles []string, now time.Time) (int64, error)
	Insert(ctx context.Context, courseID, nbpa int64) error
	Update(ctx context.Context, courseID, nbpa int64) error
	ListCourseIDs(ctx context.Context) ([]int64, error)
}

// ParticipantConfig tunes participant count caching.
type ParticipantConfig struct {
	TrackingRoles []string
	CacheTTL      time.Duration
}

// ParticipantService provides the per-course participant counts (nbpa) used to normalise hits.
type ParticipantService struct {
	repo    participantRepository
	cache   *CacheService
	metrics *MetricsService
	cfg     ParticipantConfig
	logger  *zap.Logger
	now     func() time.Time
}

// NewParticipantService constructs a ParticipantService.
func NewParticipantService(repo participantRepository, cache *CacheService, metrics *MetricsService, cfg ParticipantConfig, logger *zap.Logger) *ParticipantService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(cfg.TrackingRoles) == 0 {
		cfg.TrackingRoles = []string{"student"}
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Hour
	}
	return &ParticipantService{repo: repo, cache: cache, metrics: metrics, cfg: cfg, logger: logger, now: time.Now}
}

func nbpaCacheKey(courseID int64) string {
	return "nbpa:" + strconv.FormatInt(courseID, 10)
}

// Count returns the participant count of a course, never less than 1. Counts missing from
// the store are computed and stored.
func (s *ParticipantService) Count(ctx context.Context, courseID int64) (int64, error) {
	key := nbpaCacheKey(courseID)
	var cached int64
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return clampNbpa(cached), nil
	}

	start := time.Now()
	nbpa, found, err := s.repo.Find(ctx, courseID)
	s.metrics.ObserveDBQuery("nbpa_find", time.Since(start))
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load participant count")
	}

	if !found {
		nbpa, err = s.compute(ctx, courseID)
		if err != nil {
			return 0, err
		}
		if err := s.repo.Insert(ctx, courseID, nbpa); err != nil {
			// A concurrent request may have stored it first; the computed value is still usable.
			s.logger.Warn("failed to store participant count", zap.Int64("course_id", courseID), zap.Error(err))
		}
	}

	_ = s.cache.Set(ctx, key, nbpa, s.cfg.CacheTTL)
	return clampNbpa(nbpa), nil
}

// CountAll returns participant counts keyed by course.
func (s *ParticipantService) CountAll(ctx context.Context, courseIDs []int64) (map[int64]int64, error) {
	counts := make(map[int64]int64, len(courseIDs))
	for _, id := range courseIDs {
		nbpa, err := s.Count(ctx, id)
		if err != nil {
			return nil, err
		}
		counts[id] = nbpa
	}
	return counts, nil
}

// Refresh recomputes and stores the participant count of a course and drops its cache entry.
func (s *ParticipantService) Refresh(ctx context.Context, courseID int64) error {
	nbpa, err := s.compute(ctx, courseID)
	if err != nil {
		s.metrics.RecordNbpaRefresh(false)
		return err
	}
	if err := s.repo.Update(ctx, courseID, nbpa); err != nil {
		s.metrics.RecordNbpaRefresh(false)
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update participant count")
	}
	if err := s.cache.Delete(ctx, nbpaCacheKey(courseID)); err != nil {
		s.logger.Warn("failed to invalidate participant count", zap.Int64("course_id", courseID), zap.Error(err))
	}
	s.metrics.RecordNbpaRefresh(true)
	s.logger.Debug("participant count refreshed", zap.Int64("course_id", courseID), zap.Int64("nbpa", nbpa))
	return nil
}

// StoredCourses lists the courses holding a stored count.
func (s *ParticipantService) StoredCourses(ctx context.Context) ([]int64, error) {
	ids, err := s.repo.ListCourseIDs(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list participant counts")
	}
	return ids, nil
}

func (s *ParticipantService) compute(ctx context.Context, courseID int64) (int64, error) {
	start := time.Now()
	nbpa, err := s.repo.Count(ctx, courseID, s.cfg.TrackingRoles, s.now())
	s.metrics.ObserveDBQuery("nbpa_count", time.Since(start))
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status,
			fmt.Sprintf("failed to count participants of course %d", courseID))
	}
	return nbpa, nil
}

func clampNbpa(n int64) int64 {
	if n <= 0 {
		return 1
	}
	return n
}
