package permission

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	apperrors "github.com/frahmantamala/insight-pulse/internal"
	"github.com/frahmantamala/insight-pulse/internal/core/inflight"
	"github.com/frahmantamala/insight-pulse/internal/daterange"
	"github.com/frahmantamala/insight-pulse/internal/department"
	"github.com/frahmantamala/insight-pulse/internal/notify"
)

// RemoteAPI is the slice of the backend the sync client talks to.
type RemoteAPI interface {
	ListDepartments(ctx context.Context) ([]department.Department, error)
	ListPermissions(ctx context.Context) ([]Pair, error)
	SavePermissions(ctx context.Context, pairs []Pair) error
	SendMailAlert(ctx context.Context, pairs []Pair, start, end time.Time) (MailAlertResponse, error)
}

// SyncClient keeps a local Matrix in step with the backend. Local edits
// stay local until Save. Loading, saving and alerting each have their own
// in-flight flag; a second call while one is running is refused rather
// than queued.
type SyncClient struct {
	remote   RemoteAPI
	notifier notify.Notifier
	logger   *slog.Logger

	mu          sync.Mutex
	matrix      *Matrix
	departments []department.Department
	loadErr     error

	loading  inflight.Flag
	saving   inflight.Flag
	alerting inflight.Flag
}

func NewSyncClient(remote RemoteAPI, notifier notify.Notifier, logger *slog.Logger) *SyncClient {
	return &SyncClient{
		remote:   remote,
		notifier: notifier,
		logger:   logger,
		matrix:   NewMatrix(),
	}
}

// SetDepartments re-initializes the matrix when the department set
// changes. An unchanged set leaves local edits alone.
func (c *SyncClient) SetDepartments(depts []department.Department) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.departments = append([]department.Department(nil), depts...)
	ids := department.IDs(depts)
	if c.matrix.Len() > 0 && c.matrix.SameDepartments(ids) {
		return
	}
	c.matrix.Initialize(ids)
	c.logger.Debug("permission matrix initialized", "departments", len(ids))
}

// Refresh fetches the department list and then the stored permissions.
func (c *SyncClient) Refresh(ctx context.Context) error {
	if !c.loading.TryStart() {
		return apperrors.ErrOperationInFlight
	}
	defer c.loading.Done()

	depts, err := c.remote.ListDepartments(ctx)
	if err != nil {
		c.setLoadErr(err)
		c.logger.Error("failed to load departments", "error", err)
		c.notifier.Notify(notify.Error("Error", "Failed to load departments. Please check backend connection."))
		return err
	}
	c.SetDepartments(depts)
	return c.load(ctx)
}

// Load replaces the matrix with the backend's stored pairs. On failure the
// matrix is left as it was and Save stays available.
func (c *SyncClient) Load(ctx context.Context) error {
	if !c.loading.TryStart() {
		return apperrors.ErrOperationInFlight
	}
	defer c.loading.Done()
	return c.load(ctx)
}

func (c *SyncClient) load(ctx context.Context) error {
	pairs, err := c.remote.ListPermissions(ctx)
	if err != nil {
		c.logger.Error("failed to load permissions", "error", err)
		c.notifier.Notify(notify.Error("Error", "Failed to load permissions. Please check backend connection."))
		return err
	}

	c.mu.Lock()
	c.matrix.Reconcile(pairs, c.matrix.DepartmentIDs())
	c.loadErr = nil
	c.mu.Unlock()

	c.logger.Debug("permissions loaded", "pairs", len(pairs))
	return nil
}

func (c *SyncClient) Save(ctx context.Context) error {
	if c.loading.Busy() || !c.saving.TryStart() {
		c.notifier.Notify(notify.Info("Please wait", "Data is still loading or saving."))
		return apperrors.ErrOperationInFlight
	}
	defer c.saving.Done()

	if c.LoadError() != nil {
		c.notifier.Notify(notify.Error("Error", "Cannot save: there was an error loading data."))
		return apperrors.ErrDataNotLoaded
	}

	pairs := c.allowedPairs()
	if err := c.remote.SavePermissions(ctx, pairs); err != nil {
		c.logger.Error("failed to save permissions", "error", err)
		c.notifier.Notify(notify.Error("Error", backendMessage(err, "Failed to save permissions. Please try again.")))
		return err
	}

	c.notifier.Notify(notify.Info("Permissions Saved", "Your permission changes have been saved successfully"))
	return nil
}

// SendAlert asks the backend to mail every affected user about the current
// allowed pairs for the period r. Both ends of r must be set.
func (c *SyncClient) SendAlert(ctx context.Context, r daterange.Range) (MailAlertResponse, error) {
	if c.loading.Busy() || !c.alerting.TryStart() {
		c.notifier.Notify(notify.Info("Please wait", "Data is still loading or alert is in progress."))
		return MailAlertResponse{}, apperrors.ErrOperationInFlight
	}
	defer c.alerting.Done()

	if c.LoadError() != nil {
		c.notifier.Notify(notify.Error("Error", "Cannot send alert: there was an error loading data."))
		return MailAlertResponse{}, apperrors.ErrDataNotLoaded
	}

	if !r.Complete() {
		c.notifier.Notify(notify.Error("Validation Error", "Please select a start and end date for the mail alert."))
		return MailAlertResponse{}, apperrors.NewValidationError("start and end date are required", apperrors.ErrCodeInvalidDateRange)
	}

	resp, err := c.remote.SendMailAlert(ctx, c.allowedPairs(), *r.From, *r.To)
	if err != nil {
		c.logger.Error("failed to send mail alert", "error", err)
		c.notifier.Notify(notify.Error("Error", backendMessage(err, "Failed to send mail alert. Please try again.")))
		return MailAlertResponse{}, err
	}

	c.notifier.Notify(notify.Info("Mail Alert Sent", "Permission alerts have been sent to all relevant users."))
	return resp, nil
}

// AllowAll lets the named department survey every other department.
func (c *SyncClient) AllowAll(name string) error {
	return c.setAll(name, true)
}

// RevokeAll stops the named department from surveying anyone.
func (c *SyncClient) RevokeAll(name string) error {
	return c.setAll(name, false)
}

func (c *SyncClient) setAll(name string, allowed bool) error {
	c.mu.Lock()
	d, ok := department.FindByName(c.departments, name)
	var err error
	if ok {
		err = c.matrix.SetAll(d.ID, allowed)
	}
	c.mu.Unlock()

	if !ok || err != nil {
		c.notifier.Notify(notify.Error("Error", "Selected department not found."))
		return apperrors.ErrUnknownDepartment
	}

	verb := "revoked"
	if allowed {
		verb = "granted"
	}
	c.notifier.Notify(notify.Info("Permissions Updated", "All permissions "+verb+" for "+d.Name))
	return nil
}

func (c *SyncClient) Toggle(from, to int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.matrix.Toggle(from, to)
}

// Matrix returns a snapshot; edits to it do not reach the client.
func (c *SyncClient) Matrix() *Matrix {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.matrix.Clone()
}

func (c *SyncClient) Departments() []department.Department {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]department.Department(nil), c.departments...)
}

func (c *SyncClient) LoadError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadErr
}

func (c *SyncClient) allowedPairs() []Pair {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.matrix.ToAllowedPairs()
}

func (c *SyncClient) setLoadErr(err error) {
	c.mu.Lock()
	c.loadErr = err
	c.mu.Unlock()
}

// backendMessage prefers the message the backend answered with.
func backendMessage(err error, fallback string) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Code == apperrors.ErrCodeBackendRejected && appErr.Message != "" {
		return appErr.Message
	}
	return fallback
}
