package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/socialflow-api/internal/models"
	"github.com/noah-isme/socialflow-api/pkg/database"
)

// FlowRepository reads the hit tables maintained by the host log store.
type FlowRepository struct {
	db        *sqlx.DB
	tables    Tables
	dialect   database.Dialect
	component string
}

// NewFlowRepository constructs the repository. component is the log store plugin whose
// scheduled task refreshes the hit counts.
func NewFlowRepository(db *sqlx.DB, tables Tables, dialect database.Dialect, component string) *FlowRepository {
	return &FlowRepository{db: db, tables: tables, dialect: dialect, component: component}
}

// Ranked returns hits ordered by normalised frequency, highest first.
func (r *FlowRepository) Ranked(ctx context.Context, q models.RankQuery) ([]models.RankedHit, error) {
	query, args, err := BuildRankedQuery(r.dialect, q)
	if err != nil {
		return nil, err
	}
	bound, values, err := bindNamed(r.db, r.tables.Expand(query), args)
	if err != nil {
		return nil, err
	}
	var hits []models.RankedHit
	if err := r.db.SelectContext(ctx, &hits, bound, values...); err != nil {
		return nil, fmt.Errorf("select ranked hits: %w", err)
	}
	return hits, nil
}

// ClosingDate returns the stored closing date of a hit.
func (r *FlowRepository) ClosingDate(ctx context.Context, hitID int64) (int64, bool, error) {
	query := r.db.Rebind(r.tables.Expand(`SELECT closingdate FROM {logstore_socialflow_closing} WHERE hitid = ?`))
	var closing int64
	if err := r.db.GetContext(ctx, &closing, query, hitID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("get closing date for hit %d: %w", hitID, err)
	}
	return closing, true, nil
}

// RecentActionCount counts log entries recorded for the user since the given time
// that match the course, context and event of a hit.
func (r *FlowRepository) RecentActionCount(ctx context.Context, since, courseID, contextID, eventID, userID int64) (int, error) {
	query := r.db.Rebind(r.tables.Expand(`SELECT COUNT(id) FROM {logstore_socialflow_log}
WHERE timecreated > ? AND courseid = ? AND contextid = ? AND eventid = ? AND userid = ?`))
	var count int
	if err := r.db.GetContext(ctx, &count, query, since, courseID, contextID, eventID, userID); err != nil {
		return 0, fmt.Errorf("count recent actions: %w", err)
	}
	return count, nil
}

// HitsTask returns the scheduling state of the task that refreshes hit counts, nil when not installed.
func (r *FlowRepository) HitsTask(ctx context.Context) (*models.ScheduledTask, error) {
	query := r.db.Rebind(r.tables.Expand(`SELECT lastruntime, nextruntime FROM {task_scheduled}
WHERE component LIKE ? AND classname LIKE ?`))
	var task models.ScheduledTask
	if err := r.db.GetContext(ctx, &task, query, r.component, "%hits%"); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get hits task: %w", err)
	}
	return &task, nil
}
