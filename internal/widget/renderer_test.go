package widget

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/socialflow-api/internal/models"
	"github.com/noah-isme/socialflow-api/pkg/i18n"
)

func sampleFlow() *models.Flow {
	late := time.Date(2024, time.March, 4, 9, 5, 0, 0, time.UTC)
	next := time.Date(2024, time.March, 5, 2, 0, 0, 0, time.UTC)
	return &models.Flow{
		Filter: models.Filter{WindowDays: 7, ActionType: models.ActionContrib, ItemCount: 20, CourseIDs: []int64{7}},
		Courses: []models.Course{
			{ID: 7, ShortName: "MATH101", Visible: true},
			{ID: 9, ShortName: "HIST<1>", Visible: true},
		},
		Entries: []models.FlowEntry{
			{
				CourseID: 7, CourseShortName: "MATH101", CMID: 55, ModuleName: "assign", ModuleLabel: "Assignment",
				Title: "Essay", URL: "http://lms/mod/assign/view.php?id=55", IconURL: "http://lms/icon",
				ActionType: models.ActionContrib, Percent: 25, Available: true, Status: models.StatusTodo,
				Deadline: models.Deadline{Kind: models.DeadlineLate, Date: &late},
			},
			{
				CourseID: 7, CourseShortName: "MATH101", CMID: 56, ModuleName: "quiz", ModuleLabel: "Quiz",
				Title: "Hidden quiz", URL: "http://lms/mod/quiz/view.php?id=56", ActionType: models.ActionConsult,
				Percent: 10, Status: models.StatusRestricted,
			},
			{
				CourseID: 7, CourseShortName: "MATH101", CMID: 57, ModuleName: "page", ModuleLabel: "Page",
				Title: "Intro", URL: "http://lms/mod/page/view.php?id=57", ActionType: models.ActionConsult,
				Percent: 3, Available: true, Status: models.StatusDone,
			},
		},
		NextUpdate: &next,
	}
}

func newTestRenderer(t *testing.T, survey string) *Renderer {
	t.Helper()
	r, err := NewRenderer(i18n.MustEnglish(), survey, time.UTC)
	require.NoError(t, err)
	return r
}

func TestRendererRenderFilterPanels(t *testing.T) {
	r := newTestRenderer(t, "")
	out, err := r.Render(sampleFlow(), "123.abc")
	require.NoError(t, err)
	html := string(out)

	for _, id := range []string{"optionselect", "courseselect", "typeselect", "itemnumselect", "help"} {
		assert.Contains(t, html, `id="socialflow_`+id+`opener"`)
		assert.Contains(t, html, `id="socialflow_`+id+`block"`)
	}
	assert.Equal(t, 4, strings.Count(html, `<input type="hidden" name="sesskey" value="123.abc"/>`))
	assert.Contains(t, html, `name="socialflow_optionchoice" value="7" checked/>`)
	assert.Contains(t, html, `name="socialflow_optionchoice" value="14"/>`)
	assert.Contains(t, html, `name="socialflow_typechoice" value="contrib" checked/>`)
	assert.Contains(t, html, `name="socialflow_itemnumchoice" value="20" checked/>`)
	assert.Contains(t, html, `name="socialflow_courseschoice[]" value="7" id="socialflow_course_7" checked/>`)
	assert.Contains(t, html, `name="socialflow_courseschoice[]" value="9" id="socialflow_course_9"/>`)
	assert.Contains(t, html, "HIST&lt;1&gt;")
	assert.NotContains(t, html, "surveytextlink")
	assert.NotContains(t, html, "give us your opinion")
}

func TestRendererRenderRows(t *testing.T) {
	r := newTestRenderer(t, "https://survey.example")
	out, err := r.Render(sampleFlow(), "key")
	require.NoError(t, err)
	html := string(out)

	assert.Contains(t, html, `<table id="socialflow_table" class="generaltable">`)
	assert.Contains(t, html, `<a href="http://lms/mod/assign/view.php?id=55">Essay</a>`)
	assert.Contains(t, html, `<span class="socialflow_todo">To do</span><br/><span class="socialflow_comment socialflow_critical">Late ! Closing : <br/>Mon 04 March 09:05</span>`)
	assert.Contains(t, html, `<tr class="no_access">`)
	assert.Contains(t, html, "<td>Hidden quiz</td>")
	assert.NotContains(t, html, "view.php?id=56")
	assert.Contains(t, html, `<span class="socialflow_restricted">No access</span>`)
	assert.Contains(t, html, `<span class="socialflow_done">Done</span>`)
	assert.Contains(t, html, "<td>25%</td>")
	assert.Contains(t, html, "<td>Contribution</td>")
	assert.Contains(t, html, `<div class="block_socialflow_update">Next update : Tuesday 05 March 2024 02:00</div>`)
	assert.Contains(t, html, `<a href="https://survey.example" target="_blank">`)
}

func TestRendererRenderWithoutNextUpdate(t *testing.T) {
	r := newTestRenderer(t, "")
	flow := sampleFlow()
	flow.NextUpdate = nil
	flow.Entries = nil

	out, err := r.Render(flow, "key")
	require.NoError(t, err)
	assert.NotContains(t, string(out), "block_socialflow_update")
	assert.Contains(t, string(out), `id="socialflow_table"`)
}

func TestRendererRenderError(t *testing.T) {
	r := newTestRenderer(t, "")

	out, err := r.RenderError("")
	require.NoError(t, err)
	assert.Equal(t, `<div class="socialflow_error">No data available, come back later or modify selection options</div>`, strings.TrimSpace(string(out)))

	out, err = r.RenderError("<b>oops</b>")
	require.NoError(t, err)
	assert.Contains(t, string(out), "&lt;b&gt;oops&lt;/b&gt;")
}

func TestPresenter(t *testing.T) {
	p := NewPresenter(i18n.MustEnglish())
	date := time.Date(2024, time.March, 4, 9, 5, 0, 0, time.UTC)

	assert.Equal(t, "Contribution", p.Action(models.ActionContrib))
	assert.Equal(t, "Consultation", p.Action(models.ActionBoth))
	assert.Equal(t, "", p.Status(models.StatusNone))
	assert.Equal(t, "Deadline : Mon 04 March 09:05", p.Deadline(models.Deadline{Kind: models.DeadlineLimit, Date: &date}))
	assert.Equal(t, "Closed ! ", p.Deadline(models.Deadline{Kind: models.DeadlineClosed}))
	assert.Equal(t, "1 week", p.WindowLabel(7))
}
