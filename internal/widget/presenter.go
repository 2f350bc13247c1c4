package widget

import (
	"github.com/noah-isme/socialflow-api/internal/models"
	"github.com/noah-isme/socialflow-api/pkg/i18n"
)

// Presenter turns flow values into localised text.
type Presenter struct {
	catalog *i18n.Catalog
}

// NewPresenter constructs a presenter around a catalogue.
func NewPresenter(catalog *i18n.Catalog) Presenter {
	return Presenter{catalog: catalog}
}

// T resolves a catalogue key.
func (p Presenter) T(key string) string {
	return p.catalog.T(key)
}

// Action returns the label of an action type.
func (p Presenter) Action(action models.ActionType) string {
	if action == models.ActionContrib {
		return p.catalog.T("contrib")
	}
	return p.catalog.T("consult")
}

// Status returns the label of an entry status, empty when none applies.
func (p Presenter) Status(status models.EntryStatus) string {
	switch status {
	case models.StatusDone:
		return p.catalog.T("done")
	case models.StatusTodo:
		return p.catalog.T("todo")
	case models.StatusRestricted:
		return p.catalog.T("restricted")
	}
	return ""
}

// DeadlineLabel returns the deadline prefix without its date.
func (p Presenter) DeadlineLabel(d models.Deadline) string {
	switch d.Kind {
	case models.DeadlineLimit:
		return p.catalog.T("limitdate")
	case models.DeadlineLate:
		return p.catalog.T("latedate")
	case models.DeadlineClosed:
		return p.catalog.T("closed")
	}
	return ""
}

// DeadlineDate formats the deadline date, empty when the deadline has none.
func (p Presenter) DeadlineDate(d models.Deadline) string {
	if d.Date == nil {
		return ""
	}
	return i18n.ShortDate(*d.Date)
}

// Deadline returns the full one-line deadline comment.
func (p Presenter) Deadline(d models.Deadline) string {
	label := p.DeadlineLabel(d)
	if date := p.DeadlineDate(d); date != "" {
		return label + date
	}
	return label
}

// WindowLabel returns the label of a reference period choice.
func (p Presenter) WindowLabel(days int) string {
	switch days {
	case 14, 7, 3, 1:
		return p.catalog.T("window_" + itoa(days))
	}
	return itoa(days)
}
