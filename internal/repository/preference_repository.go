package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// PreferenceRepository stores user preferences in the host preference table.
type PreferenceRepository struct {
	db     *sqlx.DB
	tables Tables
}

// NewPreferenceRepository constructs the repository.
func NewPreferenceRepository(db *sqlx.DB, tables Tables) *PreferenceRepository {
	return &PreferenceRepository{db: db, tables: tables}
}

// Get returns the stored value of a preference.
func (r *PreferenceRepository) Get(ctx context.Context, userID int64, name string) (string, bool, error) {
	query := r.db.Rebind(r.tables.Expand(`SELECT value FROM {user_preferences} WHERE userid = ? AND name = ?`))
	var value string
	if err := r.db.GetContext(ctx, &value, query, userID, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get preference %s: %w", name, err)
	}
	return value, true, nil
}

// Set stores a preference, inserting it when the user has none yet.
func (r *PreferenceRepository) Set(ctx context.Context, userID int64, name, value string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin preference tx: %w", err)
	}

	update := tx.Rebind(r.tables.Expand(`UPDATE {user_preferences} SET value = ? WHERE userid = ? AND name = ?`))
	res, err := tx.ExecContext(ctx, update, value, userID, name)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("update preference %s: %w", name, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("update preference %s: %w", name, err)
	}
	if affected == 0 {
		insert := tx.Rebind(r.tables.Expand(`INSERT INTO {user_preferences} (userid, name, value) VALUES (?, ?, ?)`))
		if _, err := tx.ExecContext(ctx, insert, userID, name, value); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert preference %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit preference tx: %w", err)
	}
	return nil
}
