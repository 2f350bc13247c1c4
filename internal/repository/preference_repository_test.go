package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreferenceRepositoryGet(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewPreferenceRepository(db, Tables("mdl_"))
	mock.ExpectQuery(`SELECT value FROM mdl_user_preferences WHERE userid = \$1 AND name = \$2`).
		WithArgs(int64(3), "socialflow_optionchoice").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("7"))
	mock.ExpectQuery(`SELECT value FROM mdl_user_preferences`).
		WithArgs(int64(3), "socialflow_typechoice").
		WillReturnRows(sqlmock.NewRows([]string{"value"}))

	value, ok, err := repo.Get(context.Background(), 3, "socialflow_optionchoice")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "7", value)

	_, ok, err = repo.Get(context.Background(), 3, "socialflow_typechoice")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPreferenceRepositorySetUpdatesExisting(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewPreferenceRepository(db, Tables("mdl_"))
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE mdl_user_preferences SET value = \$1 WHERE userid = \$2 AND name = \$3`).
		WithArgs("3", int64(3), "socialflow_optionchoice").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Set(context.Background(), 3, "socialflow_optionchoice", "3"))
}

func TestPreferenceRepositorySetInsertsMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewPreferenceRepository(db, Tables("mdl_"))
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE mdl_user_preferences`).
		WithArgs("consult", int64(3), "socialflow_typechoice").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO mdl_user_preferences \(userid, name, value\) VALUES \(\$1, \$2, \$3\)`).
		WithArgs(int64(3), "socialflow_typechoice", "consult").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Set(context.Background(), 3, "socialflow_typechoice", "consult"))
}

func TestPreferenceRepositorySetRollsBackOnError(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewPreferenceRepository(db, Tables("mdl_"))
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE mdl_user_preferences`).
		WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	assert.Error(t, repo.Set(context.Background(), 3, "socialflow_typechoice", "consult"))
}
