package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// ParticipantRepository stores per-course participant counts (nbpa).
type ParticipantRepository struct {
	db     *sqlx.DB
	tables Tables
}

// NewParticipantRepository constructs the repository.
func NewParticipantRepository(db *sqlx.DB, tables Tables) *ParticipantRepository {
	return &ParticipantRepository{db: db, tables: tables}
}

// Find returns the stored participant count of a course.
func (r *ParticipantRepository) Find(ctx context.Context, courseID int64) (int64, bool, error) {
	query := r.db.Rebind(r.tables.Expand(`SELECT nbpa FROM {logstore_socialflow_nbpa} WHERE courseid = ?`))
	var nbpa int64
	if err := r.db.GetContext(ctx, &nbpa, query, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("get nbpa for course %d: %w", courseID, err)
	}
	return nbpa, true, nil
}

// Count computes the number of distinct active participants of a course holding one of the roles.
func (r *ParticipantRepository) Count(ctx context.Context, courseID int64, roles []string, now time.Time) (int64, error) {
	if len(roles) == 0 {
		return 0, nil
	}
	const query = `SELECT COUNT(DISTINCT u.id)
FROM {user} u
INNER JOIN {user_enrolments} ue ON ue.userid = u.id
INNER JOIN {enrol} e ON e.id = ue.enrolid
INNER JOIN {role_assignments} ra ON ra.userid = u.id
INNER JOIN {context} ct ON ct.id = ra.contextid AND ct.contextlevel = 50
INNER JOIN {course} c ON c.id = ct.instanceid AND e.courseid = c.id
INNER JOIN {role} r ON r.id = ra.roleid AND r.shortname IN (:roles)
WHERE e.status = 0 AND u.suspended = 0 AND u.deleted = 0
  AND (ue.timeend = 0 OR ue.timeend > :now)
  AND ue.status = 0 AND c.id = :courseid`
	bound, args, err := bindNamed(r.db, r.tables.Expand(query), map[string]interface{}{
		"roles":    roles,
		"now":      now.Unix(),
		"courseid": courseID,
	})
	if err != nil {
		return 0, err
	}
	var nbpa int64
	if err := r.db.GetContext(ctx, &nbpa, bound, args...); err != nil {
		return 0, fmt.Errorf("count participants for course %d: %w", courseID, err)
	}
	return nbpa, nil
}

// Insert stores the participant count of a course.
func (r *ParticipantRepository) Insert(ctx context.Context, courseID, nbpa int64) error {
	query := r.db.Rebind(r.tables.Expand(`INSERT INTO {logstore_socialflow_nbpa} (courseid, nbpa) VALUES (?, ?)`))
	if _, err := r.db.ExecContext(ctx, query, courseID, nbpa); err != nil {
		return fmt.Errorf("insert nbpa for course %d: %w", courseID, err)
	}
	return nil
}

// Update replaces the stored participant count of a course.
func (r *ParticipantRepository) Update(ctx context.Context, courseID, nbpa int64) error {
	query := r.db.Rebind(r.tables.Expand(`UPDATE {logstore_socialflow_nbpa} SET nbpa = ? WHERE courseid = ?`))
	if _, err := r.db.ExecContext(ctx, query, nbpa, courseID); err != nil {
		return fmt.Errorf("update nbpa for course %d: %w", courseID, err)
	}
	return nil
}

// ListCourseIDs returns every course holding a stored participant count.
func (r *ParticipantRepository) ListCourseIDs(ctx context.Context) ([]int64, error) {
	query := r.tables.Expand(`SELECT courseid FROM {logstore_socialflow_nbpa} ORDER BY courseid`)
	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query); err != nil {
		return nil, fmt.Errorf("list nbpa courses: %w", err)
	}
	return ids, nil
}
