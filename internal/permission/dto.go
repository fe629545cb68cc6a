package permission

// PairDTO keeps the ids as pointers so a missing id can be told apart from
// department 0.
type PairDTO struct {
	FromDeptID *int64 `json:"from_dept_id" validate:"required"`
	ToDeptID   *int64 `json:"to_dept_id" validate:"required"`
}

func (d PairDTO) Pair() Pair {
	var p Pair
	if d.FromDeptID != nil {
		p.FromDeptID = *d.FromDeptID
	}
	if d.ToDeptID != nil {
		p.ToDeptID = *d.ToDeptID
	}
	return p
}

type SaveRequest struct {
	AllowedPairs []PairDTO `json:"allowed_pairs" validate:"dive"`
}

type MailAlertRequest struct {
	AllowedPairs []PairDTO `json:"allowed_pairs" validate:"required,min=1,dive"`
	StartDate    string    `json:"start_date" validate:"required,isodate"`
	EndDate      string    `json:"end_date" validate:"required,isodate"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type MailAlertResponse struct {
	Message      string   `json:"message"`
	AlertDetails []string `json:"alert_details,omitempty"`
}
