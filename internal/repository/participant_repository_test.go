package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParticipantRepositoryFind(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewParticipantRepository(db, Tables("mdl_"))
	mock.ExpectQuery(`SELECT nbpa FROM mdl_logstore_socialflow_nbpa WHERE courseid = \$1`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"nbpa"}).AddRow(25))
	mock.ExpectQuery(`SELECT nbpa FROM mdl_logstore_socialflow_nbpa`).
		WithArgs(int64(8)).
		WillReturnRows(sqlmock.NewRows([]string{"nbpa"}))

	nbpa, ok, err := repo.Find(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(25), nbpa)

	_, ok, err = repo.Find(context.Background(), 8)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestParticipantRepositoryCount(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewParticipantRepository(db, Tables("mdl_"))
	mock.ExpectQuery(`SELECT COUNT\(DISTINCT u.id\)\s+FROM mdl_user u.*r.shortname IN \(\$1, \$2\).*ue.timeend > \$3.*c.id = \$4`).
		WithArgs("student", "guest", int64(1700000000), int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	nbpa, err := repo.Count(context.Background(), 7, []string{"student", "guest"}, time.Unix(1700000000, 0))
	require.NoError(t, err)
	assert.Equal(t, int64(12), nbpa)

	nbpa, err = repo.Count(context.Background(), 7, nil, time.Unix(1700000000, 0))
	require.NoError(t, err)
	assert.Zero(t, nbpa)
}

func TestParticipantRepositoryInsertAndUpdate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewParticipantRepository(db, Tables("mdl_"))
	mock.ExpectExec(`INSERT INTO mdl_logstore_socialflow_nbpa \(courseid, nbpa\) VALUES \(\$1, \$2\)`).
		WithArgs(int64(7), int64(12)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`UPDATE mdl_logstore_socialflow_nbpa SET nbpa = \$1 WHERE courseid = \$2`).
		WithArgs(int64(13), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Insert(context.Background(), 7, 12))
	require.NoError(t, repo.Update(context.Background(), 7, 13))
}

func TestParticipantRepositoryListCourseIDs(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewParticipantRepository(db, Tables("mdl_"))
	mock.ExpectQuery(`SELECT courseid FROM mdl_logstore_socialflow_nbpa ORDER BY courseid`).
		WillReturnRows(sqlmock.NewRows([]string{"courseid"}).AddRow(7).AddRow(9))

	ids, err := repo.ListCourseIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{7, 9}, ids)
}
