package dto

// FlowRequest carries the filter choices a user may submit with the widget forms or the query string.
// Nil fields were not submitted.
type FlowRequest struct {
	Window    *int    `form:"socialflow_optionchoice" json:"socialflow_optionchoice" validate:"omitempty,oneof=14 7 3 1"`
	Type      *string `form:"socialflow_typechoice" json:"socialflow_typechoice" validate:"omitempty,oneof=consult contrib both"`
	ItemCount *int    `form:"socialflow_itemnumchoice" json:"socialflow_itemnumchoice" validate:"omitempty,oneof=5 10 15 20 30 50 100"`
	Courses   []int64 `form:"socialflow_courseschoice[]" json:"socialflow_courseschoice" validate:"omitempty,dive,gt=0"`
	Sesskey   string  `form:"sesskey" json:"sesskey"`
}

// HasChoices reports whether any filter value was submitted.
func (r FlowRequest) HasChoices() bool {
	return r.Window != nil || r.Type != nil || r.ItemCount != nil || len(r.Courses) > 0
}

// ExportQuery selects the format of a flow export.
type ExportQuery struct {
	Format string `form:"format" validate:"required,oneof=csv pdf"`
}
