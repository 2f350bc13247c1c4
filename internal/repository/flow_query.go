package repository

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/noah-isme/socialflow-api/internal/models"
	"github.com/noah-isme/socialflow-api/pkg/database"
	appErrors "github.com/noah-isme/socialflow-api/pkg/errors"
)

// rankedColumns lists the ranked query output, alias first.
var rankedColumns = [][2]string{
	{"hitid", "ei.id"},
	{"contextid", "ei.contextid"},
	{"eventid", "ei.eventid"},
	{"courseid", "ei.courseid"},
	{"actiontype", "evts.actiontype"},
	{"moduletable", "evts.moduletable"},
	{"hasclosingdate", "evts.hasclosingdate"},
	{"haslatesubmit", "evts.haslatesubmit"},
	{"latedatefield", "evts.latedatefield"},
	{"instanceid", "ctx.instanceid"},
	{"instance", "cm.instance"},
	{"name", "m.name"},
	{"availability", "cm.availability"},
	{"userids", "ei.userids"},
}

const rankedJoins = `
  INNER JOIN {logstore_socialflow_evts} evts ON ei.eventid = evts.id
  INNER JOIN {context} ctx ON ei.contextid = ctx.id
  INNER JOIN {course_modules} cm ON ctx.instanceid = cm.id
  INNER JOIN {course_sections} cs ON cm.section = cs.id
  INNER JOIN {modules} m ON cm.module = m.id`

// BuildRankedQuery returns the named-parameter query ranking hits by frequency for the dialect.
// Table names are left as {name} placeholders.
func BuildRankedQuery(dialect database.Dialect, q models.RankQuery) (string, map[string]interface{}, error) {
	if !dialect.Supported() {
		return "", nil, appErrors.Clone(appErrors.ErrUnsupportedDialect, fmt.Sprintf("unsupported database type: %s", dialect))
	}
	if len(q.CourseIDs) == 0 {
		return "", nil, fmt.Errorf("ranked query requires at least one course")
	}
	if q.Limit <= 0 {
		return "", nil, fmt.Errorf("ranked query requires a positive limit")
	}

	args := map[string]interface{}{
		"courses": q.CourseIDs,
		"since":   q.Since,
		"cutoff":  q.Cutoff,
	}
	freq := frequencyCase(q, args)
	typeFilter := ""
	if q.ActionType != "" && q.ActionType != models.ActionBoth {
		typeFilter = "\n    AND evts.actiontype = :actiontype"
		args["actiontype"] = string(q.ActionType)
	}

	if dialect == database.DialectOracle {
		args["limit"] = q.Limit
		return oracleRankedQuery(freq, typeFilter), args, nil
	}

	var b strings.Builder
	b.WriteString(`WITH event_hits AS (
  SELECT h.id, h.courseid, h.contextid, h.eventid, h.nbhits, h.userids
    FROM {logstore_socialflow_hits} h
   INNER JOIN {logstore_socialflow_closing} c ON h.id = c.hitid
   WHERE h.courseid IN (:courses)
     AND h.lasttime > :since
     AND c.closingdate > :cutoff
)
SELECT `)
	for _, col := range rankedColumns {
		b.WriteString(col[1])
		b.WriteString(" AS ")
		b.WriteString(col[0])
		b.WriteString(",\n       ")
	}
	b.WriteString(freq)
	b.WriteString(" AS freq\n  FROM event_hits ei")
	b.WriteString(rankedJoins)
	b.WriteString("\n  WHERE cm.visible = 1 AND cs.visible = 1")
	b.WriteString(typeFilter)

	switch dialect {
	case database.DialectSQLServer:
		b.WriteString("\n  ORDER BY freq DESC OFFSET 0 ROWS FETCH NEXT :limit ROWS ONLY")
		args["limit"] = q.Limit
	default:
		b.WriteString("\n  ORDER BY freq DESC LIMIT ")
		b.WriteString(strconv.Itoa(q.Limit))
	}
	return b.String(), args, nil
}

// frequencyCase builds the per-course CASE normalising hit counts by participant count.
func frequencyCase(q models.RankQuery, args map[string]interface{}) string {
	var b strings.Builder
	b.WriteString("CASE")
	for i, id := range q.CourseIDs {
		nbpa := q.Nbpa[id]
		if nbpa <= 0 {
			nbpa = 1
		}
		courseParam := "courseid" + strconv.Itoa(i)
		nbpaParam := "nbpa" + strconv.Itoa(i)
		args[courseParam] = id
		args[nbpaParam] = nbpa
		fmt.Fprintf(&b, " WHEN ei.courseid = :%s THEN ei.nbhits * 1.0 / :%s", courseParam, nbpaParam)
	}
	b.WriteString(" END")
	return b.String()
}

func oracleRankedQuery(freq, typeFilter string) string {
	inner := make([]string, 0, len(rankedColumns)+2)
	outer := make([]string, 0, len(rankedColumns)+1)
	for _, col := range rankedColumns {
		inner = append(inner, fmt.Sprintf(`%s AS "%s"`, col[1], col[0]))
		outer = append(outer, `"`+col[0]+`"`)
	}
	inner = append(inner, freq+` AS "freq"`, `ROW_NUMBER() OVER (ORDER BY `+freq+` DESC) AS "rn"`)
	outer = append(outer, `"freq"`)

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(outer, ", "))
	b.WriteString("\n  FROM (\n  SELECT ")
	b.WriteString(strings.Join(inner, ",\n         "))
	b.WriteString(`
    FROM {logstore_socialflow_hits} ei
   INNER JOIN {logstore_socialflow_closing} ccl ON ei.id = ccl.hitid`)
	b.WriteString(rankedJoins)
	b.WriteString(`
   WHERE ei.courseid IN (:courses)
     AND ei.lasttime > :since
     AND ccl.closingdate > :cutoff
     AND cm.visible = 1
     AND cs.visible = 1`)
	b.WriteString(typeFilter)
	b.WriteString("\n  ) ranked\n WHERE \"rn\" <= :limit\n ORDER BY \"rn\"")
	return b.String()
}
