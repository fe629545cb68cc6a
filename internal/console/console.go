// Package console is the terminal front end. Each command is one shot:
// the session is restored from the store, the command talks to the
// backend and prints its result, then the process exits.
package console

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/frahmantamala/insight-pulse/internal/department"
	"github.com/frahmantamala/insight-pulse/internal/notify"
	"github.com/frahmantamala/insight-pulse/internal/permission"
	"github.com/frahmantamala/insight-pulse/internal/remarks"
	"github.com/frahmantamala/insight-pulse/internal/session"
	"github.com/frahmantamala/insight-pulse/internal/survey"
)

// Backend is everything the console asks of the server.
type Backend interface {
	permission.RemoteAPI
	session.Authenticator
	CreateDepartment(ctx context.Context, name string) (department.Department, error)
	GetSurvey(ctx context.Context, id int64) (survey.SurveyResponse, error)
	SubmitSurveyResponse(ctx context.Context, id int64, dto survey.SubmitResponseDTO) (survey.SubmitResult, error)
	SetActor(username string)
}

type Deps struct {
	Out       io.Writer
	Backend   Backend
	Store     session.Store
	Passwords PasswordReader
	Notifier  notify.Notifier
	Logger    *slog.Logger
	Now       func() time.Time
}

type App struct {
	out       io.Writer
	backend   Backend
	session   *session.Session
	sync      *permission.SyncClient
	remarks   *remarks.Model
	passwords PasswordReader
	logger    *slog.Logger
	now       func() time.Time
}

// New builds the console and restores any saved session.
func New(d Deps) *App {
	if d.Notifier == nil {
		d.Notifier = notify.NewTerminal(d.Out)
	}
	if d.Now == nil {
		d.Now = time.Now
	}

	a := &App{
		out:       d.Out,
		backend:   d.Backend,
		sync:      permission.NewSyncClient(d.Backend, d.Notifier, d.Logger),
		remarks:   remarks.NewDefaultModel(d.Notifier),
		passwords: d.Passwords,
		logger:    d.Logger,
		now:       d.Now,
	}
	a.session = session.New(d.Store, d.Backend, d.Notifier, session.NavigatorFunc(a.navigate), d.Logger)
	a.session.Restore()
	if u, ok := a.session.Current(); ok {
		a.backend.SetActor(u.Username)
	}
	return a
}

func (a *App) Session() *session.Session {
	return a.session
}

func (a *App) navigate(to session.Destination) {
	a.logger.Debug("navigate", "to", to)
}
