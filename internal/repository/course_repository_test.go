package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCourseRepositoryListEnrolled(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	now := time.Unix(1700000000, 0)
	repo := NewCourseRepository(db, Tables("mdl_"))
	mock.ExpectQuery(`SELECT DISTINCT c.id, c.shortname, c.visible, c.sortorder\s+FROM mdl_course c`).
		WithArgs(int64(3), int64(1700000000), int64(1700000000)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "shortname", "visible", "sortorder"}).
			AddRow(7, "MATH101", 1, 10).
			AddRow(9, "HIST", 0, 20))

	courses, err := repo.ListEnrolled(context.Background(), 3, now)
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, "MATH101", courses[0].ShortName)
	assert.True(t, courses[0].Visible)
	assert.False(t, courses[1].Visible)
}

func TestCourseRepositoryModuleTitle(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewCourseRepository(db, Tables("mdl_"))
	mock.ExpectQuery(`SELECT name FROM mdl_assign WHERE id = \$1`).
		WithArgs(int64(12)).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Essay"))
	mock.ExpectQuery(`SELECT name FROM mdl_forum WHERE id = \$1`).
		WithArgs(int64(13)).
		WillReturnRows(sqlmock.NewRows([]string{"name"}))

	title, ok, err := repo.ModuleTitle(context.Background(), "assign", 12)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Essay", title)

	_, ok, err = repo.ModuleTitle(context.Background(), "forum", 13)
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = repo.ModuleTitle(context.Background(), "forum WHERE 1=1 --", 13)
	assert.Error(t, err)
}

func TestCourseRepositoryLateDate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewCourseRepository(db, Tables("mdl_"))
	mock.ExpectQuery(`SELECT cutoffdate FROM mdl_assign WHERE id = \$1`).
		WithArgs(int64(12)).
		WillReturnRows(sqlmock.NewRows([]string{"cutoffdate"}).AddRow(1700000500))
	mock.ExpectQuery(`SELECT cutoffdate FROM mdl_assign WHERE id = \$1`).
		WithArgs(int64(13)).
		WillReturnRows(sqlmock.NewRows([]string{"cutoffdate"}).AddRow(0))
	mock.ExpectQuery(`SELECT cutoffdate FROM mdl_assign WHERE id = \$1`).
		WithArgs(int64(14)).
		WillReturnRows(sqlmock.NewRows([]string{"cutoffdate"}).AddRow(nil))

	late, ok, err := repo.LateDate(context.Background(), "assign", "cutoffdate", 12)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(1700000500), late)

	_, ok, err = repo.LateDate(context.Background(), "assign", "cutoffdate", 13)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = repo.LateDate(context.Background(), "assign", "cutoffdate", 14)
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = repo.LateDate(context.Background(), "assign", "cutoff date", 14)
	assert.Error(t, err)
}
