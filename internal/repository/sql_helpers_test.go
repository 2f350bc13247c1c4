package repository

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() {
		require.NoError(t, mock.ExpectationsWereMet())
		sqlxDB.Close()
	}
}

func TestTablesExpand(t *testing.T) {
	tables := Tables("mdl_")
	got := tables.Expand("SELECT * FROM {course} c JOIN {user_enrolments} ue ON ue.id = c.id")
	assert.Equal(t, "SELECT * FROM mdl_course c JOIN mdl_user_enrolments ue ON ue.id = c.id", got)

	assert.Equal(t, "SELECT '{Not A Table}'", tables.Expand("SELECT '{Not A Table}'"))
}

func TestValidIdentifier(t *testing.T) {
	assert.True(t, validIdentifier("assign"))
	assert.True(t, validIdentifier("cutoffdate"))
	assert.True(t, validIdentifier("mod_2"))
	assert.False(t, validIdentifier(""))
	assert.False(t, validIdentifier("2mod"))
	assert.False(t, validIdentifier("assign; DROP TABLE x"))
	assert.False(t, validIdentifier("Assign"))
}

func TestBindNamedExpandsSlicesAndRebinds(t *testing.T) {
	db, _, cleanup := newRepoMock(t)
	defer cleanup()

	query, args, err := bindNamed(db, "SELECT 1 FROM t WHERE id IN (:ids) AND a = :a AND b = :a", map[string]interface{}{
		"ids": []int64{4, 5},
		"a":   "x",
	})
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1 FROM t WHERE id IN ($1, $2) AND a = $3 AND b = $4", query)
	assert.Equal(t, []interface{}{int64(4), int64(5), "x", "x"}, args)
}
