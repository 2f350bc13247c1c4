package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// AccessRepository answers role questions against the host role assignments.
type AccessRepository struct {
	db     *sqlx.DB
	tables Tables
}

// NewAccessRepository constructs the repository.
func NewAccessRepository(db *sqlx.DB, tables Tables) *AccessRepository {
	return &AccessRepository{db: db, tables: tables}
}

// HasCourseRole reports whether the user holds one of the roles in the course context.
func (r *AccessRepository) HasCourseRole(ctx context.Context, userID, courseID int64, roles []string) (bool, error) {
	if len(roles) == 0 {
		return false, nil
	}
	const query = `SELECT COUNT(ra.id)
FROM {role_assignments} ra
INNER JOIN {context} ct ON ct.id = ra.contextid AND ct.contextlevel = 50
INNER JOIN {role} r ON r.id = ra.roleid
WHERE ra.userid = :userid AND ct.instanceid = :courseid AND r.shortname IN (:roles)`
	bound, args, err := bindNamed(r.db, r.tables.Expand(query), map[string]interface{}{
		"userid":   userID,
		"courseid": courseID,
		"roles":    roles,
	})
	if err != nil {
		return false, err
	}
	var count int
	if err := r.db.GetContext(ctx, &count, bound, args...); err != nil {
		return false, fmt.Errorf("check course role: %w", err)
	}
	return count > 0, nil
}
