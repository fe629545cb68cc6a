// Package mailer delivers outgoing email. Permission mail alerts arrive as
// events and are handed to a small worker pool that sends them through the
// configured Mailer.
package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/frahmantamala/insight-pulse/internal/core/events"
)

type Message struct {
	ToName  string
	ToEmail string
	Subject string
	Text    string
	HTML    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer only logs what it would have sent.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	m.logger.InfoContext(ctx, "simulated email",
		"to", msg.ToEmail,
		"subject", msg.Subject,
		"body", msg.Text)
	return nil
}

const alertSubject = "Your survey permissions have been updated"

// AlertMessage renders the mail for one user named in a mail alert.
func AlertMessage(e *events.MailAlertRequestedEvent) Message {
	targets := "no departments"
	if len(e.SurveyableDepts) > 0 {
		targets = strings.Join(e.SurveyableDepts, ", ")
	}
	start := e.StartDate.Format(time.DateOnly)
	end := e.EndDate.Format(time.DateOnly)

	name := e.Name
	if name == "" {
		name = e.Username
	}

	text := fmt.Sprintf("Hello %s,\n\nAs a member of %s you can now survey: %s.\nSurvey period: %s to %s.\n",
		name, e.Department, targets, start, end)
	html := fmt.Sprintf("<p>Hello %s,</p><p>As a member of <strong>%s</strong> you can now survey: %s.</p><p>Survey period: %s to %s.</p>",
		name, e.Department, targets, start, end)

	return Message{
		ToName:  name,
		ToEmail: e.Email,
		Subject: alertSubject,
		Text:    text,
		HTML:    html,
	}
}
