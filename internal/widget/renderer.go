// Package widget renders the social flow block as an HTML fragment.
package widget

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strconv"
	"time"

	"github.com/noah-isme/socialflow-api/internal/models"
	"github.com/noah-isme/socialflow-api/pkg/i18n"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"opener": func(id, label string) map[string]string {
		return map[string]string{"ID": id, "Label": label}
	},
	"radios": func(name string, choices []choice) map[string]interface{} {
		return map[string]interface{}{"Name": name, "Choices": choices}
	},
}

// choice is a radio button or checkbox of a filter form.
type choice struct {
	Value   string
	Label   string
	Checked bool
}

type row struct {
	Restricted  bool
	ShortName   string
	IconURL     string
	ModuleLabel string
	Title       string
	URL         string
	Action      string
	Percent     int
	StatusClass string
	Status      string
	Comment     string
	CommentDate string
	Critical    bool
}

type view struct {
	Presenter
	Sesskey    string
	Windows    []choice
	Courses    []choice
	Types      []choice
	Items      []choice
	HelpText   template.HTML
	SurveyLink string
	Rows       []row
	NextUpdate string
	Message    string
}

// Renderer renders flows with the embedded templates.
type Renderer struct {
	tmpl       *template.Template
	presenter  Presenter
	catalog    *i18n.Catalog
	surveyLink string
	location   *time.Location
}

// NewRenderer parses the embedded templates.
func NewRenderer(catalog *i18n.Catalog, surveyLink string, location *time.Location) (*Renderer, error) {
	tmpl, err := template.New("socialflow").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse widget templates: %w", err)
	}
	if location == nil {
		location = time.UTC
	}
	return &Renderer{
		tmpl:       tmpl,
		presenter:  NewPresenter(catalog),
		catalog:    catalog,
		surveyLink: surveyLink,
		location:   location,
	}, nil
}

// Render produces the widget for a flow. sesskey is embedded in every filter form.
func (r *Renderer) Render(flow *models.Flow, sesskey string) ([]byte, error) {
	v := view{
		Presenter:  r.presenter,
		Sesskey:    sesskey,
		HelpText:   template.HTML(r.catalog.T("helptext")),
		SurveyLink: r.surveyLink,
	}

	for _, days := range models.WindowChoices {
		v.Windows = append(v.Windows, choice{Value: itoa(days), Label: r.presenter.WindowLabel(days), Checked: days == flow.Filter.WindowDays})
	}
	selected := make(map[int64]bool, len(flow.Filter.CourseIDs))
	for _, id := range flow.Filter.CourseIDs {
		selected[id] = true
	}
	for _, course := range flow.Courses {
		v.Courses = append(v.Courses, choice{Value: strconv.FormatInt(course.ID, 10), Label: course.ShortName, Checked: selected[course.ID]})
	}
	for _, action := range models.ActionChoices {
		v.Types = append(v.Types, choice{Value: string(action), Label: r.catalog.T("type_" + string(action)), Checked: action == flow.Filter.ActionType})
	}
	for _, n := range models.ItemCountChoices {
		v.Items = append(v.Items, choice{Value: itoa(n), Label: itoa(n), Checked: n == flow.Filter.ItemCount})
	}

	for _, entry := range flow.Entries {
		v.Rows = append(v.Rows, r.row(entry))
	}
	if flow.NextUpdate != nil {
		v.NextUpdate = i18n.LongDate(flow.NextUpdate.In(r.location))
	}

	return r.execute("widget", v)
}

// RenderError produces the error fragment shown instead of the flow.
func (r *Renderer) RenderError(message string) ([]byte, error) {
	if message == "" {
		message = r.catalog.T("nodata")
	}
	return r.execute("error", view{Presenter: r.presenter, Message: message})
}

func (r *Renderer) row(entry models.FlowEntry) row {
	out := row{
		Restricted:  entry.Status == models.StatusRestricted,
		ShortName:   entry.CourseShortName,
		IconURL:     entry.IconURL,
		ModuleLabel: entry.ModuleLabel,
		Title:       entry.Title,
		URL:         entry.URL,
		Action:      r.presenter.Action(entry.ActionType),
		Percent:     entry.Percent,
		Status:      r.presenter.Status(entry.Status),
	}
	if entry.Status != models.StatusNone {
		out.StatusClass = "socialflow_" + string(entry.Status)
	}
	if entry.Status == models.StatusTodo && entry.Deadline.Kind != models.DeadlineNone {
		out.Comment = r.presenter.DeadlineLabel(entry.Deadline)
		if entry.Deadline.Date != nil {
			out.CommentDate = i18n.ShortDate(entry.Deadline.Date.In(r.location))
		}
		out.Critical = entry.Deadline.Critical()
	}
	return out
}

func (r *Renderer) execute(name string, data view) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
