package models

// Course is a course the current user is enrolled in.
type Course struct {
	ID        int64  `db:"id" json:"id"`
	ShortName string `db:"shortname" json:"shortname"`
	Visible   bool   `db:"visible" json:"visible"`
	SortOrder int64  `db:"sortorder" json:"-"`
}

// ScheduledTask carries the run times of the host task that refreshes hit counts.
type ScheduledTask struct {
	LastRunTime int64 `db:"lastruntime" json:"last_run_time"`
	NextRunTime int64 `db:"nextruntime" json:"next_run_time"`
}
