package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/socialflow-api/internal/dto"
	"github.com/noah-isme/socialflow-api/internal/models"
	appErrors "github.com/noah-isme/socialflow-api/pkg/errors"
)

const (
	secondsPerDay = 86400
	// Activities leave the flow this long after closing.
	closedGrace = 172800
)

type flowRepository interface {
	Ranked(ctx context.Context, q models.RankQuery) ([]models.RankedHit, error)
	ClosingDate(ctx context.Context, hitID int64) (int64, bool, error)
	RecentActionCount(ctx context.Context, since, courseID, contextID, eventID, userID int64) (int, error)
	HitsTask(ctx context.Context) (*models.ScheduledTask, error)
}

type courseRepository interface {
	ListEnrolled(ctx context.Context, userID int64, now time.Time) ([]models.Course, error)
	ModuleTitle(ctx context.Context, module string, instanceID int64) (string, bool, error)
	LateDate(ctx context.Context, table, field string, instanceID int64) (int64, bool, error)
}

type filterResolver interface {
	Resolve(ctx context.Context, userID int64, req dto.FlowRequest, sesskeyValid bool, enrolled []models.Course) (models.Filter, error)
}

type participantCounter interface {
	CountAll(ctx context.Context, courseIDs []int64) (map[int64]int64, error)
}

type moduleLabeler interface {
	ModuleName(module string) string
}

// FlowConfig tunes flow computation.
type FlowConfig struct {
	SiteURL  string
	CacheTTL time.Duration
	Location *time.Location
}

// FlowService computes the social flow of a user.
type FlowService struct {
	flows        flowRepository
	courses      courseRepository
	preferences  filterResolver
	participants participantCounter
	access       *AccessService
	cache        *CacheService
	metrics      *MetricsService
	labels       moduleLabeler
	cfg          FlowConfig
	logger       *zap.Logger
	now          func() time.Time
}

// NewFlowService constructs a FlowService. cache may be nil to disable ranked row caching.
func NewFlowService(flows flowRepository, courses courseRepository, preferences filterResolver, participants participantCounter,
	access *AccessService, cache *CacheService, metrics *MetricsService, labels moduleLabeler, cfg FlowConfig, logger *zap.Logger) *FlowService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	cfg.SiteURL = strings.TrimRight(cfg.SiteURL, "/")
	return &FlowService{
		flows:        flows,
		courses:      courses,
		preferences:  preferences,
		participants: participants,
		access:       access,
		cache:        cache,
		metrics:      metrics,
		labels:       labels,
		cfg:          cfg,
		logger:       logger,
		now:          time.Now,
	}
}

// Build resolves the user's filter and evaluates the ranked hits into flow entries.
// It returns ErrNoData when the user has no usable course.
func (s *FlowService) Build(ctx context.Context, userID int64, req dto.FlowRequest, sesskeyValid bool) (*models.Flow, error) {
	now := s.now().In(s.cfg.Location)

	enrolled, err := s.courses.ListEnrolled(ctx, userID, now)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrolled courses")
	}
	if len(enrolled) == 0 {
		return nil, appErrors.ErrNoData
	}

	filter, err := s.preferences.Resolve(ctx, userID, req, sesskeyValid, enrolled)
	if err != nil {
		return nil, err
	}
	flow := &models.Flow{Filter: filter, Courses: enrolled}

	nbpa, err := s.participants.CountAll(ctx, filter.CourseIDs)
	if err != nil {
		return nil, err
	}

	window := filter.WindowDays
	if window <= 0 {
		window = models.DefaultWindowDays
	}
	query := models.RankQuery{
		CourseIDs:  filter.CourseIDs,
		Nbpa:       nbpa,
		Since:      now.Unix() - int64(window)*secondsPerDay,
		Cutoff:     now.Unix() - closedGrace,
		ActionType: filter.ActionType,
		Limit:      filter.ItemCount,
	}
	hits, cacheHit, err := s.rankedHits(ctx, query)
	if err != nil {
		return nil, err
	}
	flow.CacheHit = cacheHit

	task, err := s.flows.HitsTask(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load hits task")
	}
	if task != nil && task.NextRunTime > 0 {
		next := time.Unix(task.NextRunTime, 0).In(s.cfg.Location)
		flow.NextUpdate = &next
	}

	shortnames := make(map[int64]string, len(enrolled))
	for _, course := range enrolled {
		shortnames[course.ID] = course.ShortName
	}

	scope := s.access.Scope(userID)
	flow.Entries = make([]models.FlowEntry, 0, len(hits))
	for _, hit := range hits {
		entry, ok, err := s.buildEntry(ctx, scope, userID, hit, task, now)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		entry.CourseShortName = shortnames[hit.CourseID]
		flow.Entries = append(flow.Entries, entry)
	}

	s.metrics.ObserveFlowEntries(len(flow.Entries))
	return flow, nil
}

func (s *FlowService) rankedHits(ctx context.Context, q models.RankQuery) ([]models.RankedHit, bool, error) {
	key := rankedCacheKey(q)
	var cached []models.RankedHit
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return cached, true, nil
	}

	start := time.Now()
	hits, err := s.flows.Ranked(ctx, q)
	s.metrics.ObserveDBQuery("flow_ranked", time.Since(start))
	if err != nil {
		if appErr := appErrors.FromError(err); appErr.Code == appErrors.ErrUnsupportedDialect.Code {
			return nil, false, appErr
		}
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to rank hits")
	}
	_ = s.cache.Set(ctx, key, hits, s.cfg.CacheTTL)
	return hits, false, nil
}

// InvalidateRanked drops every cached ranking.
func (s *FlowService) InvalidateRanked(ctx context.Context) error {
	return s.cache.Invalidate(ctx, rankedCachePrefix+"*")
}

const rankedCachePrefix = "flow:ranked:"

// rankedCacheKey identifies a ranking by its courses with their participant counts, so a
// recomputed count never reuses frequencies normalised by the previous one.
func rankedCacheKey(q models.RankQuery) string {
	var b strings.Builder
	b.WriteString(rankedCachePrefix)
	for i, id := range q.CourseIDs {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%d=%d", id, q.Nbpa[id])
	}
	days := (q.Cutoff + closedGrace - q.Since) / secondsPerDay
	fmt.Fprintf(&b, ":%d:%s:%d", days, q.ActionType, q.Limit)
	return b.String()
}

func (s *FlowService) buildEntry(ctx context.Context, scope *AccessScope, userID int64, hit models.RankedHit, task *models.ScheduledTask, now time.Time) (models.FlowEntry, bool, error) {
	title, found, err := s.courses.ModuleTitle(ctx, hit.ModuleName, hit.Instance)
	if err != nil {
		s.logger.Warn("skipping flow row", zap.Int64("hit_id", hit.HitID), zap.Error(err))
		return models.FlowEntry{}, false, nil
	}
	if !found {
		return models.FlowEntry{}, false, nil
	}

	entry := models.FlowEntry{
		CourseID:    hit.CourseID,
		CMID:        hit.CMID,
		ModuleName:  hit.ModuleName,
		ModuleLabel: s.labels.ModuleName(hit.ModuleTable),
		Title:       title,
		URL:         fmt.Sprintf("%s/mod/%s/view.php?id=%d", s.cfg.SiteURL, hit.ModuleName, hit.CMID),
		IconURL:     fmt.Sprintf("%s/theme/image.php/_s/boost/%s/1/monologo", s.cfg.SiteURL, hit.ModuleName),
		ActionType:  hit.ActionType,
		Frequency:   hit.Freq,
		Percent:     FrequencyPercent(hit.Freq),
	}
	if entry.ActionType != models.ActionContrib {
		entry.ActionType = models.ActionConsult
	}

	entry.Available, err = scope.UserVisible(ctx, hit.CourseID, hit.Availability)
	if err != nil {
		return models.FlowEntry{}, false, err
	}
	if !entry.Available {
		entry.Status = models.StatusRestricted
		return entry, true, nil
	}

	if scope.SiteAdmin() {
		return entry, true, nil
	}
	canSubmit, err := scope.CanSubmit(ctx, hit.CourseID)
	if err != nil {
		return models.FlowEntry{}, false, err
	}
	if !canSubmit {
		return entry, true, nil
	}

	done, err := s.isDone(ctx, userID, hit, task)
	if err != nil {
		return models.FlowEntry{}, false, err
	}
	if done {
		entry.Status = models.StatusDone
		return entry, true, nil
	}

	entry.Status = models.StatusTodo
	if hit.HasClosingDate > 0 {
		entry.Deadline, err = s.deadline(ctx, hit, now)
		if err != nil {
			return models.FlowEntry{}, false, err
		}
	}
	return entry, true, nil
}

func (s *FlowService) isDone(ctx context.Context, userID int64, hit models.RankedHit, task *models.ScheduledTask) (bool, error) {
	if userListed(hit.UserIDs, userID) {
		return true, nil
	}
	if task == nil {
		return false, nil
	}
	start := time.Now()
	count, err := s.flows.RecentActionCount(ctx, task.LastRunTime, hit.CourseID, hit.ContextID, hit.EventID, userID)
	s.metrics.ObserveDBQuery("flow_recent_actions", time.Since(start))
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check recent actions")
	}
	return count > 0, nil
}

func (s *FlowService) deadline(ctx context.Context, hit models.RankedHit, now time.Time) (models.Deadline, error) {
	var closing, late *time.Time

	ts, found, err := s.flows.ClosingDate(ctx, hit.HitID)
	if err != nil {
		return models.Deadline{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load closing date")
	}
	if found {
		closing = closingTime(ts, s.cfg.Location)
	}

	if hit.HasLateSubmit > 0 && hit.LateDateField != nil && *hit.LateDateField != "" {
		ts, found, err := s.courses.LateDate(ctx, hit.ModuleTable, *hit.LateDateField, hit.Instance)
		if err != nil {
			s.logger.Warn("ignoring unreadable late date", zap.Int64("hit_id", hit.HitID), zap.Error(err))
		} else if found {
			t := time.Unix(ts, 0).In(s.cfg.Location)
			late = &t
		}
	}

	return DeadlineFor(now, closing, late), nil
}
