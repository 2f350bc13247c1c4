package models

// Preference names stored in the host user preference table.
const (
	PrefWindow    = "socialflow_optionchoice"
	PrefType      = "socialflow_typechoice"
	PrefItemCount = "socialflow_itemnumchoice"
	PrefCourses   = "socialflow_courseschoice"
)

// Preference is a single stored user preference.
type Preference struct {
	UserID int64  `db:"userid"`
	Name   string `db:"name"`
	Value  string `db:"value"`
}
