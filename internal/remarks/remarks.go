// Package remarks models the remarks and response page: feedback other
// departments left about yours, feedback you left about theirs, and the
// form used to answer incoming feedback.
package remarks

import (
	"strings"
	"sync"

	"github.com/frahmantamala/insight-pulse/internal/core/common/validation"
	"github.com/frahmantamala/insight-pulse/internal/notify"
)

type Feedback struct {
	FromDepartment string
	RatingGiven    int
	Remark         string
}

type Response struct {
	Explanation       string
	ActionPlan        string
	ResponsiblePerson string
}

type OutFeedback struct {
	Department    string
	Rating        int
	YourRemark    string
	TheirResponse Response
}

func DefaultIncoming() []Feedback {
	return []Feedback{
		{FromDepartment: "Production", RatingGiven: 2, Remark: "Slow response to inventory requests"},
		{FromDepartment: "Procurement", RatingGiven: 1, Remark: "Parts delivery was delayed"},
		{FromDepartment: "Marketing", RatingGiven: 3, Remark: "Better communication needed for campaign launches"},
	}
}

func DefaultOutgoing() []OutFeedback {
	return []OutFeedback{
		{
			Department: "QA Department",
			Rating:     2,
			YourRemark: "Delayed reports submission",
			TheirResponse: Response{
				Explanation:       "We were understaffed due to resignations",
				ActionPlan:        "Hiring 2 more analysts by next month",
				ResponsiblePerson: "Mr. Arjun",
			},
		},
		{
			Department: "Finance Department",
			Rating:     1,
			YourRemark: "Slow invoice processing",
			TheirResponse: Response{
				Explanation:       "Workflow tool was under maintenance",
				ActionPlan:        "Tool updated and live now",
				ResponsiblePerson: "Ms. Kavitha",
			},
		},
		{
			Department: "HR Department",
			Rating:     2,
			YourRemark: "Improved onboarding process",
			TheirResponse: Response{
				Explanation:       "Introduced new training modules",
				ActionPlan:        "Ongoing evaluation next quarter",
				ResponsiblePerson: "Ms. Priya",
			},
		},
	}
}

// ResponseForm is the answer to the incoming feedback under the cursor.
type ResponseForm struct {
	Explanation       string `json:"your_response" validate:"notblank"`
	ActionPlan        string `json:"action_plan" validate:"notblank"`
	ResponsiblePerson string `json:"responsible_person" validate:"notblank"`
}

func (f *ResponseForm) Clear() {
	*f = ResponseForm{}
}

func (f ResponseForm) trimmed() ResponseForm {
	return ResponseForm{
		Explanation:       strings.TrimSpace(f.Explanation),
		ActionPlan:        strings.TrimSpace(f.ActionPlan),
		ResponsiblePerson: strings.TrimSpace(f.ResponsiblePerson),
	}
}

type Model struct {
	notifier notify.Notifier

	mu       sync.Mutex
	incoming *Pager[Feedback]
	outgoing *Pager[OutFeedback]
	form     ResponseForm
}

func NewModel(incoming []Feedback, outgoing []OutFeedback, notifier notify.Notifier) *Model {
	return &Model{
		notifier: notifier,
		incoming: NewPager(incoming),
		outgoing: NewPager(outgoing),
	}
}

// NewDefaultModel seeds the model with the built-in feedback lists.
func NewDefaultModel(notifier notify.Notifier) *Model {
	return NewModel(DefaultIncoming(), DefaultOutgoing(), notifier)
}

func (m *Model) Incoming() (Feedback, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.incoming.Current()
}

func (m *Model) Outgoing() (OutFeedback, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.outgoing.Current()
}

func (m *Model) IncomingPosition() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.incoming.Position()
}

func (m *Model) OutgoingPosition() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.outgoing.Position()
}

// PrevIncoming and NextIncoming discard the draft response whenever the
// cursor actually moves.
func (m *Model) PrevIncoming() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.incoming.Prev() {
		return false
	}
	m.form.Clear()
	return true
}

func (m *Model) NextIncoming() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.incoming.Next() {
		return false
	}
	m.form.Clear()
	return true
}

func (m *Model) PrevOutgoing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.outgoing.Prev()
}

func (m *Model) NextOutgoing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.outgoing.Next()
}

func (m *Model) SetForm(f ResponseForm) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.form = f
}

func (m *Model) Form() ResponseForm {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.form
}

// Submit validates the draft response. Accepted responses are not stored
// anywhere; the form is cleared and a confirmation raised.
func (m *Model) Submit() (Response, error) {
	m.mu.Lock()
	form := m.form.trimmed()
	m.mu.Unlock()

	if verr := validation.Struct(form); verr != nil {
		m.notifier.Notify(notify.Error("Validation Error", "All fields are required to submit your response."))
		return Response{}, verr
	}

	m.mu.Lock()
	m.form.Clear()
	m.mu.Unlock()

	m.notifier.Notify(notify.Info("Response Submitted", "Your response has been recorded successfully."))
	return Response{
		Explanation:       form.Explanation,
		ActionPlan:        form.ActionPlan,
		ResponsiblePerson: form.ResponsiblePerson,
	}, nil
}
