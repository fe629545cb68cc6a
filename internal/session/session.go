// Package session tracks who is logged in on the client side. The
// session is either anonymous or authenticated as one user, and the
// authenticated user is cached in a Store so it survives a restart.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"

	apperrors "github.com/frahmantamala/insight-pulse/internal"
	"github.com/frahmantamala/insight-pulse/internal/notify"
	"github.com/frahmantamala/insight-pulse/internal/user"
)

// StorageKey is where the logged-in user is cached.
const StorageKey = "insightPulseUser"

type User struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department"`
	Role       string `json:"role"`
}

// valid reports whether the record carries enough to be trusted.
func (u User) valid() bool {
	return u.ID != 0 && u.Username != "" && u.Role != ""
}

func (u User) IsAdmin() bool {
	return u.Role == user.RoleAdmin
}

type Destination string

const (
	DestinationLogin          Destination = "/login"
	DestinationAdminDashboard Destination = "/admin/dashboard"
	DestinationUserDashboard  Destination = "/dashboard"
)

// DestinationFor maps a role to the page it lands on after login.
func DestinationFor(role string) (Destination, bool) {
	switch role {
	case user.RoleAdmin:
		return DestinationAdminDashboard, true
	case user.RoleUser:
		return DestinationUserDashboard, true
	default:
		return "", false
	}
}

type Authenticator interface {
	Login(ctx context.Context, username, password string) (User, error)
}

type Navigator interface {
	Navigate(to Destination)
}

type NavigatorFunc func(to Destination)

func (f NavigatorFunc) Navigate(to Destination) { f(to) }

type Session struct {
	store     Store
	auth      Authenticator
	notifier  notify.Notifier
	navigator Navigator
	logger    *slog.Logger

	mu   sync.RWMutex
	user *User
}

func New(store Store, auth Authenticator, notifier notify.Notifier, navigator Navigator, logger *slog.Logger) *Session {
	return &Session{
		store:     store,
		auth:      auth,
		notifier:  notifier,
		navigator: navigator,
		logger:    logger,
	}
}

// Restore loads the cached user. A missing entry leaves the session
// anonymous; a malformed one is also deleted. Neither is reported to the
// user.
func (s *Session) Restore() {
	raw, ok, err := s.store.Get(StorageKey)
	if err != nil {
		s.logger.Warn("failed to read session store", "error", err)
		return
	}
	if !ok {
		return
	}

	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil || !u.valid() {
		s.logger.Warn("discarding stored user", "error", err)
		if err := s.store.Delete(StorageKey); err != nil {
			s.logger.Warn("failed to clear session store", "error", err)
		}
		return
	}

	s.mu.Lock()
	s.user = &u
	s.mu.Unlock()
	s.logger.Debug("session restored", "username", u.Username)
}

// Login authenticates against the backend and returns where the user
// should go next. On any failure the session is left anonymous.
func (s *Session) Login(ctx context.Context, username, password string) (Destination, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return "", apperrors.NewValidationError("Username and password are required.", apperrors.ErrCodeValidationFailed)
	}

	u, err := s.auth.Login(ctx, username, password)
	if err != nil {
		return "", s.loginFailed(err)
	}

	if !u.valid() {
		s.notifier.Notify(notify.Error("Login failed", apperrors.ErrInvalidUserData.Message))
		return "", apperrors.ErrInvalidUserData
	}

	dest, ok := DestinationFor(u.Role)
	if !ok {
		s.logger.Warn("login refused for unknown role", "username", u.Username, "role", u.Role)
		s.notifier.Notify(notify.Error("Login failed", apperrors.ErrUnknownRole.Message))
		return "", apperrors.ErrUnknownRole
	}

	data, err := json.Marshal(u)
	if err != nil {
		return "", apperrors.NewInternalError("failed to encode user", err)
	}
	if err := s.store.Set(StorageKey, string(data)); err != nil {
		s.logger.Warn("failed to persist session", "error", err)
	}

	s.mu.Lock()
	s.user = &u
	s.mu.Unlock()

	s.logger.Info("logged in", "username", u.Username, "role", u.Role)
	s.notifier.Notify(notify.Info("Login successful", "Welcome back, "+u.Name))
	return dest, nil
}

func (s *Session) loginFailed(err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Code == apperrors.ErrCodeBackendRejected {
		msg := appErr.Message
		if msg == "" {
			msg = apperrors.ErrInvalidCredentials.Message
		}
		s.notifier.Notify(notify.Error("Login failed", msg))
		return apperrors.ErrInvalidCredentials.WithMessage(msg).WithCause(err)
	}

	s.logger.Error("login request failed", "error", err)
	s.notifier.Notify(notify.Error("Login failed", apperrors.ErrBackendUnavailable.Message))
	if errors.Is(err, apperrors.ErrBackendUnavailable) {
		return err
	}
	return apperrors.ErrBackendUnavailable.WithCause(err)
}

func (s *Session) Logout() {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()

	if err := s.store.Delete(StorageKey); err != nil {
		s.logger.Warn("failed to clear session store", "error", err)
	}
	s.navigator.Navigate(DestinationLogin)
	s.notifier.Notify(notify.Info("Logged out", "You have been successfully logged out"))
}

// Current returns the logged-in user, or false when anonymous.
func (s *Session) Current() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

func (s *Session) IsAuthenticated() bool {
	_, ok := s.Current()
	return ok
}

func (s *Session) RequireAuthenticated() (User, error) {
	u, ok := s.Current()
	if !ok {
		return User{}, apperrors.ErrNotAuthenticated
	}
	return u, nil
}

func (s *Session) RequireRole(role string) (User, error) {
	u, err := s.RequireAuthenticated()
	if err != nil {
		return User{}, err
	}
	if u.Role != role {
		return User{}, apperrors.ErrRoleNotAllowed
	}
	return u, nil
}
