package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/socialflow-api/internal/models"
)

// CourseRepository reads courses and module instances from the host platform.
type CourseRepository struct {
	db     *sqlx.DB
	tables Tables
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB, tables Tables) *CourseRepository {
	return &CourseRepository{db: db, tables: tables}
}

// ListEnrolled returns the courses in which the user holds an active enrolment.
func (r *CourseRepository) ListEnrolled(ctx context.Context, userID int64, now time.Time) ([]models.Course, error) {
	query := r.db.Rebind(r.tables.Expand(`SELECT DISTINCT c.id, c.shortname, c.visible, c.sortorder
FROM {course} c
INNER JOIN {enrol} e ON e.courseid = c.id
INNER JOIN {user_enrolments} ue ON ue.enrolid = e.id
WHERE ue.userid = ?
  AND ue.status = 0
  AND e.status = 0
  AND ue.timestart <= ?
  AND (ue.timeend = 0 OR ue.timeend > ?)
ORDER BY c.sortorder, c.id`))
	ts := now.Unix()
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, userID, ts, ts); err != nil {
		return nil, fmt.Errorf("list enrolled courses: %w", err)
	}
	return courses, nil
}

// ModuleTitle returns the name of a module instance.
func (r *CourseRepository) ModuleTitle(ctx context.Context, module string, instanceID int64) (string, bool, error) {
	if !validIdentifier(module) {
		return "", false, fmt.Errorf("invalid module table %q", module)
	}
	query := r.db.Rebind(r.tables.Expand(fmt.Sprintf(`SELECT name FROM {%s} WHERE id = ?`, module)))
	var title string
	if err := r.db.GetContext(ctx, &title, query, instanceID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get %s title: %w", module, err)
	}
	return title, true, nil
}

// LateDate returns the late submission date stored on a module instance.
// NULL and 0 both mean no late date.
func (r *CourseRepository) LateDate(ctx context.Context, table, field string, instanceID int64) (int64, bool, error) {
	if !validIdentifier(table) || !validIdentifier(field) {
		return 0, false, fmt.Errorf("invalid late date column %q.%q", table, field)
	}
	query := r.db.Rebind(r.tables.Expand(fmt.Sprintf(`SELECT %s FROM {%s} WHERE id = ?`, field, table)))
	var late sql.NullInt64
	if err := r.db.GetContext(ctx, &late, query, instanceID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("get %s.%s: %w", table, field, err)
	}
	if !late.Valid || late.Int64 == 0 {
		return 0, false, nil
	}
	return late.Int64, true, nil
}
