package models

import "time"

// ActionType classifies logged events.
type ActionType string

const (
	ActionConsult ActionType = "consult"
	ActionContrib ActionType = "contrib"
	ActionBoth    ActionType = "both"
)

// Allowed filter values, in display order.
var (
	WindowChoices    = []int{14, 7, 3, 1}
	ActionChoices    = []ActionType{ActionConsult, ActionContrib, ActionBoth}
	ItemCountChoices = []int{5, 10, 15, 20, 30, 50, 100}
)

// Filter defaults.
const (
	DefaultWindowDays = 14
	DefaultItemCount  = 10
	DefaultActionType = ActionBoth
)

// UndefinedClosingDate marks hits whose activity has no closing date.
const UndefinedClosingDate int64 = 9999999999

// Filter is the resolved set of user choices driving one flow computation.
type Filter struct {
	WindowDays int        `json:"window_days"`
	ActionType ActionType `json:"action_type"`
	ItemCount  int        `json:"item_count"`
	CourseIDs  []int64    `json:"course_ids"`
	// AllCourses is set when no explicit course choice is stored.
	AllCourses bool `json:"all_courses"`
}

// RankQuery holds the inputs of the ranked hits query.
type RankQuery struct {
	CourseIDs  []int64
	Nbpa       map[int64]int64
	Since      int64
	Cutoff     int64
	ActionType ActionType
	Limit      int
}

// RankedHit is one row of the ranked hits query.
type RankedHit struct {
	HitID          int64      `db:"hitid" json:"hit_id"`
	ContextID      int64      `db:"contextid" json:"context_id"`
	EventID        int64      `db:"eventid" json:"event_id"`
	CourseID       int64      `db:"courseid" json:"course_id"`
	ActionType     ActionType `db:"actiontype" json:"action_type"`
	ModuleTable    string     `db:"moduletable" json:"module_table"`
	HasClosingDate int        `db:"hasclosingdate" json:"has_closing_date"`
	HasLateSubmit  int        `db:"haslatesubmit" json:"has_late_submit"`
	LateDateField  *string    `db:"latedatefield" json:"late_date_field,omitempty"`
	CMID           int64      `db:"instanceid" json:"cm_id"`
	Instance       int64      `db:"instance" json:"instance"`
	ModuleName     string     `db:"name" json:"module_name"`
	Availability   *string    `db:"availability" json:"availability,omitempty"`
	UserIDs        *string    `db:"userids" json:"user_ids,omitempty"`
	Freq           float64    `db:"freq" json:"freq"`
}

// EntryStatus is the per-user status shown next to a flow entry.
type EntryStatus string

const (
	StatusNone       EntryStatus = ""
	StatusDone       EntryStatus = "done"
	StatusTodo       EntryStatus = "todo"
	StatusRestricted EntryStatus = "restricted"
)

// DeadlineKind qualifies the comment attached to a to-do entry.
type DeadlineKind string

const (
	DeadlineNone   DeadlineKind = ""
	DeadlineLimit  DeadlineKind = "limit"
	DeadlineLate   DeadlineKind = "late"
	DeadlineClosed DeadlineKind = "closed"
)

// Deadline annotates a to-do entry with its next relevant date.
type Deadline struct {
	Kind DeadlineKind `json:"kind"`
	Date *time.Time   `json:"date,omitempty"`
}

// Critical reports whether the deadline should be highlighted.
func (d Deadline) Critical() bool {
	return d.Kind == DeadlineLate || d.Kind == DeadlineClosed
}

// FlowEntry is a fully evaluated row of the social flow for the current user.
type FlowEntry struct {
	CourseID        int64       `json:"course_id"`
	CourseShortName string      `json:"course_shortname"`
	CMID            int64       `json:"cm_id"`
	ModuleName      string      `json:"module_name"`
	ModuleLabel     string      `json:"module_label"`
	Title           string      `json:"title"`
	URL             string      `json:"url"`
	IconURL         string      `json:"icon_url"`
	ActionType      ActionType  `json:"action_type"`
	Frequency       float64     `json:"frequency"`
	Percent         int         `json:"percent"`
	Available       bool        `json:"available"`
	Status          EntryStatus `json:"status"`
	Deadline        Deadline    `json:"deadline"`
}

// Flow is the complete social flow for one request.
type Flow struct {
	Filter     Filter      `json:"filter"`
	Courses    []Course    `json:"courses"`
	Entries    []FlowEntry `json:"entries"`
	NextUpdate *time.Time  `json:"next_update,omitempty"`
	CacheHit   bool        `json:"-"`
}
