package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/socialflow-api/internal/dto"
	"github.com/noah-isme/socialflow-api/internal/models"
	appErrors "github.com/noah-isme/socialflow-api/pkg/errors"
)

type preferenceRepository interface {
	Get(ctx context.Context, userID int64, name string) (string, bool, error)
	Set(ctx context.Context, userID int64, name, value string) error
}

// PreferenceService resolves the flow filter from request values, stored preferences and defaults.
type PreferenceService struct {
	repo      preferenceRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPreferenceService constructs a PreferenceService.
func NewPreferenceService(repo preferenceRepository, validate *validator.Validate, logger *zap.Logger) *PreferenceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &PreferenceService{repo: repo, validator: validate, logger: logger}
}

// Resolve builds the filter for a user. A submitted value is stored and used only when the
// sesskey verified; otherwise the stored preference applies, then the default.
func (s *PreferenceService) Resolve(ctx context.Context, userID int64, req dto.FlowRequest, sesskeyValid bool, enrolled []models.Course) (models.Filter, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.Filter{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid filter choice")
	}
	if req.HasChoices() && !sesskeyValid {
		s.logger.Info("ignoring filter choices without a valid sesskey", zap.Int64("user_id", userID))
	}

	filter := models.Filter{}
	var err error

	if filter.WindowDays, err = s.resolveInt(ctx, userID, models.PrefWindow, req.Window, sesskeyValid, models.WindowChoices, models.DefaultWindowDays); err != nil {
		return models.Filter{}, err
	}
	if filter.ItemCount, err = s.resolveInt(ctx, userID, models.PrefItemCount, req.ItemCount, sesskeyValid, models.ItemCountChoices, models.DefaultItemCount); err != nil {
		return models.Filter{}, err
	}
	if filter.ActionType, err = s.resolveType(ctx, userID, req.Type, sesskeyValid); err != nil {
		return models.Filter{}, err
	}
	if filter.CourseIDs, filter.AllCourses, err = s.resolveCourses(ctx, userID, req.Courses, sesskeyValid, enrolled); err != nil {
		return models.Filter{}, err
	}

	return filter, nil
}

func (s *PreferenceService) resolveInt(ctx context.Context, userID int64, name string, requested *int, sesskeyValid bool, choices []int, fallback int) (int, error) {
	if requested != nil && sesskeyValid {
		if err := s.store(ctx, userID, name, strconv.Itoa(*requested)); err != nil {
			return 0, err
		}
		return *requested, nil
	}
	raw, ok, err := s.load(ctx, userID, name)
	if err != nil || !ok {
		return fallback, err
	}
	value, convErr := strconv.Atoi(strings.TrimSpace(raw))
	if convErr != nil || !containsInt(choices, value) {
		return fallback, nil
	}
	return value, nil
}

func (s *PreferenceService) resolveType(ctx context.Context, userID int64, requested *string, sesskeyValid bool) (models.ActionType, error) {
	if requested != nil && sesskeyValid {
		if err := s.store(ctx, userID, models.PrefType, *requested); err != nil {
			return "", err
		}
		return models.ActionType(*requested), nil
	}
	raw, ok, err := s.load(ctx, userID, models.PrefType)
	if err != nil || !ok {
		return models.DefaultActionType, err
	}
	for _, choice := range models.ActionChoices {
		if string(choice) == raw {
			return choice, nil
		}
	}
	return models.DefaultActionType, nil
}

func (s *PreferenceService) resolveCourses(ctx context.Context, userID int64, requested []int64, sesskeyValid bool, enrolled []models.Course) ([]int64, bool, error) {
	var chosen []int64
	if len(requested) > 0 && sesskeyValid {
		if err := s.store(ctx, userID, models.PrefCourses, joinIDs(requested)); err != nil {
			return nil, false, err
		}
		chosen = requested
	} else {
		raw, ok, err := s.load(ctx, userID, models.PrefCourses)
		if err != nil {
			return nil, false, err
		}
		if ok {
			chosen = parseIDList(raw)
		}
	}

	if len(chosen) == 0 {
		all := make([]int64, 0, len(enrolled))
		for _, course := range enrolled {
			all = append(all, course.ID)
		}
		if len(all) == 0 {
			return nil, true, appErrors.ErrNoData
		}
		return all, true, nil
	}

	visible := make(map[int64]bool, len(enrolled))
	for _, course := range enrolled {
		visible[course.ID] = course.Visible
	}
	kept := make([]int64, 0, len(chosen))
	seen := make(map[int64]struct{}, len(chosen))
	for _, id := range chosen {
		if _, dup := seen[id]; dup || !visible[id] {
			continue
		}
		seen[id] = struct{}{}
		kept = append(kept, id)
	}
	if len(kept) == 0 {
		return nil, false, appErrors.ErrNoData
	}
	return kept, false, nil
}

func (s *PreferenceService) load(ctx context.Context, userID int64, name string) (string, bool, error) {
	value, ok, err := s.repo.Get(ctx, userID, name)
	if err != nil {
		return "", false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load preference")
	}
	return value, ok, nil
}

func (s *PreferenceService) store(ctx context.Context, userID int64, name, value string) error {
	if err := s.repo.Set(ctx, userID, name, value); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save preference")
	}
	return nil
}

func containsInt(values []int, v int) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

func parseIDList(raw string) []int64 {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil || id <= 0 {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
