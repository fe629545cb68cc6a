package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypePermissionsSaved   = "permission.saved"
	EventTypeMailAlertRequested = "permission.mail_alert_requested"
)

type PermissionsSavedEvent struct {
	BaseEvent
	PairCount int `json:"pair_count"`
}

func NewPermissionsSavedEvent(pairCount int) *PermissionsSavedEvent {
	return &PermissionsSavedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypePermissionsSaved,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"pair_count": pairCount,
			},
		},
		PairCount: pairCount,
	}
}

// MailAlertRequestedEvent asks for one user to be told which departments
// they may survey during the period.
type MailAlertRequestedEvent struct {
	BaseEvent
	Username        string    `json:"username"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Department      string    `json:"department"`
	SurveyableDepts []string  `json:"surveyable_departments"`
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
}

func NewMailAlertRequestedEvent(username, name, email, department string, surveyable []string, start, end time.Time) *MailAlertRequestedEvent {
	return &MailAlertRequestedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeMailAlertRequested,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"username":               username,
				"email":                  email,
				"department":             department,
				"surveyable_departments": surveyable,
			},
		},
		Username:        username,
		Name:            name,
		Email:           email,
		Department:      department,
		SurveyableDepts: surveyable,
		StartDate:       start,
		EndDate:         end,
	}
}
