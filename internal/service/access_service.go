package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/socialflow-api/pkg/errors"
)

type courseRoleChecker interface {
	HasCourseRole(ctx context.Context, userID, courseID int64, roles []string) (bool, error)
}

// AccessService answers the capability questions the flow needs about the current user.
type AccessService struct {
	repo   courseRoleChecker
	admins map[int64]struct{}
	roles  []string
	logger *zap.Logger
	now    func() time.Time
}

// NewAccessService constructs an AccessService. Users holding one of trackingRoles in a course
// are the ones expected to submit work there.
func NewAccessService(repo courseRoleChecker, siteAdmins []int64, trackingRoles []string, logger *zap.Logger) *AccessService {
	if logger == nil {
		logger = zap.NewNop()
	}
	admins := make(map[int64]struct{}, len(siteAdmins))
	for _, id := range siteAdmins {
		admins[id] = struct{}{}
	}
	if len(trackingRoles) == 0 {
		trackingRoles = []string{"student"}
	}
	return &AccessService{repo: repo, admins: admins, roles: trackingRoles, logger: logger, now: time.Now}
}

// IsSiteAdmin reports whether the user is a configured site administrator.
func (s *AccessService) IsSiteAdmin(userID int64) bool {
	_, ok := s.admins[userID]
	return ok
}

// CanSubmit reports whether the user holds a tracked role in the course.
func (s *AccessService) CanSubmit(ctx context.Context, userID, courseID int64) (bool, error) {
	ok, err := s.repo.HasCourseRole(ctx, userID, courseID, s.roles)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check course role")
	}
	return ok, nil
}

// Scope returns a per-request view of the user's access, memoising course role checks.
func (s *AccessService) Scope(userID int64) *AccessScope {
	return &AccessScope{service: s, userID: userID, admin: s.IsSiteAdmin(userID), submit: make(map[int64]bool)}
}

// AccessScope caches access answers for one user within one request. It is not safe for concurrent use.
type AccessScope struct {
	service *AccessService
	userID  int64
	admin   bool
	submit  map[int64]bool
}

// SiteAdmin reports whether the scoped user is a site administrator.
func (a *AccessScope) SiteAdmin() bool {
	return a.admin
}

// CanSubmit reports whether the scoped user holds a tracked role in the course.
func (a *AccessScope) CanSubmit(ctx context.Context, courseID int64) (bool, error) {
	if ok, seen := a.submit[courseID]; seen {
		return ok, nil
	}
	ok, err := a.service.CanSubmit(ctx, a.userID, courseID)
	if err != nil {
		return false, err
	}
	a.submit[courseID] = ok
	return ok, nil
}

// UserVisible reports whether a visible course module may be opened by the scoped user.
// Site administrators and users who cannot submit in the course ignore availability restrictions.
func (a *AccessScope) UserVisible(ctx context.Context, courseID int64, availability *string) (bool, error) {
	if a.admin || availability == nil || *availability == "" {
		return true, nil
	}
	canSubmit, err := a.CanSubmit(ctx, courseID)
	if err != nil {
		return false, err
	}
	if !canSubmit {
		return true, nil
	}
	ok, err := EvaluateAvailability(*availability, a.service.now())
	if err != nil {
		a.service.logger.Warn("treating undecodable availability as restricted", zap.Int64("course_id", courseID), zap.Error(err))
		return false, nil
	}
	return ok, nil
}
