package repository

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/socialflow-api/internal/models"
	"github.com/noah-isme/socialflow-api/pkg/database"
	appErrors "github.com/noah-isme/socialflow-api/pkg/errors"
)

func sampleRankQuery() models.RankQuery {
	return models.RankQuery{
		CourseIDs:  []int64{7, 9},
		Nbpa:       map[int64]int64{7: 20, 9: 0},
		Since:      1000,
		Cutoff:     2000,
		ActionType: models.ActionBoth,
		Limit:      10,
	}
}

func TestBuildRankedQueryLimitDialects(t *testing.T) {
	for _, dialect := range []database.Dialect{database.DialectPostgres, database.DialectMySQL, database.DialectMariaDB, database.DialectSQLite} {
		query, args, err := BuildRankedQuery(dialect, sampleRankQuery())
		require.NoError(t, err, dialect)

		assert.True(t, strings.HasPrefix(query, "WITH event_hits AS ("), dialect)
		assert.True(t, strings.HasSuffix(query, "ORDER BY freq DESC LIMIT 10"), dialect)
		assert.Contains(t, query, "h.courseid IN (:courses)")
		assert.Contains(t, query, "c.closingdate > :cutoff")
		assert.Contains(t, query, "WHEN ei.courseid = :courseid0 THEN ei.nbhits * 1.0 / :nbpa0")
		assert.Contains(t, query, "WHEN ei.courseid = :courseid1 THEN ei.nbhits * 1.0 / :nbpa1")
		assert.Contains(t, query, "cm.visible = 1 AND cs.visible = 1")
		assert.Contains(t, query, "cm.availability AS availability")
		assert.NotContains(t, query, "evts.actiontype = :actiontype")
		assert.NotContains(t, args, "limit")
	}
}

func TestBuildRankedQueryArguments(t *testing.T) {
	_, args, err := BuildRankedQuery(database.DialectPostgres, sampleRankQuery())
	require.NoError(t, err)

	assert.Equal(t, []int64{7, 9}, args["courses"])
	assert.Equal(t, int64(1000), args["since"])
	assert.Equal(t, int64(2000), args["cutoff"])
	assert.Equal(t, int64(7), args["courseid0"])
	assert.Equal(t, int64(20), args["nbpa0"])
	assert.Equal(t, int64(9), args["courseid1"])
	assert.Equal(t, int64(1), args["nbpa1"], "zero participant counts are clamped")
}

func TestBuildRankedQueryActionFilter(t *testing.T) {
	q := sampleRankQuery()
	q.ActionType = models.ActionContrib

	query, args, err := BuildRankedQuery(database.DialectPostgres, q)
	require.NoError(t, err)
	assert.Contains(t, query, "AND evts.actiontype = :actiontype")
	assert.Equal(t, "contrib", args["actiontype"])
}

func TestBuildRankedQuerySQLServer(t *testing.T) {
	query, args, err := BuildRankedQuery(database.DialectSQLServer, sampleRankQuery())
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(query, "ORDER BY freq DESC OFFSET 0 ROWS FETCH NEXT :limit ROWS ONLY"))
	assert.NotContains(t, query, "LIMIT 10")
	assert.Equal(t, 10, args["limit"])
}

func TestBuildRankedQueryOracle(t *testing.T) {
	q := sampleRankQuery()
	q.ActionType = models.ActionConsult

	query, args, err := BuildRankedQuery(database.DialectOracle, q)
	require.NoError(t, err)

	assert.NotContains(t, query, "WITH event_hits")
	assert.Contains(t, query, `ROW_NUMBER() OVER (ORDER BY CASE WHEN ei.courseid = :courseid0`)
	assert.Contains(t, query, `ei.id AS "hitid"`)
	assert.Contains(t, query, `AS "freq"`)
	assert.Contains(t, query, "ccl.closingdate > :cutoff")
	assert.Contains(t, query, "AND evts.actiontype = :actiontype")
	assert.True(t, strings.HasSuffix(query, `WHERE "rn" <= :limit`+"\n ORDER BY \"rn\""))
	assert.Equal(t, 2, strings.Count(query, ":nbpa1"), "the frequency case is used for ordering too")
	assert.Equal(t, 10, args["limit"])
}

func TestBuildRankedQueryUnsupportedDialect(t *testing.T) {
	_, _, err := BuildRankedQuery(database.Dialect("access"), sampleRankQuery())
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrUnsupportedDialect.Code, appErr.Code)
}

func TestBuildRankedQueryRejectsEmptyInput(t *testing.T) {
	q := sampleRankQuery()
	q.CourseIDs = nil
	_, _, err := BuildRankedQuery(database.DialectPostgres, q)
	assert.Error(t, err)

	q = sampleRankQuery()
	q.Limit = 0
	_, _, err = BuildRankedQuery(database.DialectPostgres, q)
	assert.Error(t, err)
}
