package permission

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	apperrors "github.com/frahmantamala/insight-pulse/internal"
	"github.com/frahmantamala/insight-pulse/internal/core/common/validation"
	permissionDatamodel "github.com/frahmantamala/insight-pulse/internal/core/datamodel/permission"
	"github.com/frahmantamala/insight-pulse/internal/core/events"
	"github.com/frahmantamala/insight-pulse/internal/department"
	"github.com/frahmantamala/insight-pulse/internal/user"
)

const (
	msgInvalidPair       = "Invalid pair format: 'from_dept_id' and 'to_dept_id' are required."
	msgMissingAlertInput = "Missing allowed_pairs or date range for mail alert"
	msgInvalidDate       = "Invalid date format. Expected ISO string."
	msgNoUsers           = "No relevant users found for mail alert."
	msgAlertInitiated    = "Mail alert process initiated. Check backend logs for details."
	msgSaved             = "Permissions saved successfully"
)

type RepositoryAPI interface {
	GetAll() ([]*permissionDatamodel.Permission, error)
	ReplaceAll(rows []*permissionDatamodel.Permission) error
}

type DepartmentDirectory interface {
	GetAll() ([]department.Department, error)
}

type UserDirectory interface {
	InDepartments(ctx context.Context, names []string) ([]user.User, error)
}

type Service struct {
	repo        RepositoryAPI
	departments DepartmentDirectory
	users       UserDirectory
	publisher   events.Publisher
	logger      *slog.Logger
}

func NewService(repo RepositoryAPI, departments DepartmentDirectory, users UserDirectory, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		departments: departments,
		users:       users,
		publisher:   publisher,
		logger:      logger,
	}
}

func (s *Service) GetAll() ([]Pair, error) {
	rows, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to load permissions", "error", err)
		return nil, apperrors.NewInternalError("failed to load permissions", err)
	}

	pairs := make([]Pair, 0, len(rows))
	for _, row := range rows {
		pairs = append(pairs, FromDataModel(row))
	}
	return pairs, nil
}

// Save wipes the stored relation and replaces it with req's pairs. Self
// pairs and duplicates are dropped; a pair missing either id rejects the
// whole batch before anything is written.
func (s *Service) Save(ctx context.Context, req SaveRequest) (int, error) {
	pairs, err := pairsFromDTOs(req.AllowedPairs)
	if err != nil {
		return 0, err
	}

	rows := make([]*permissionDatamodel.Permission, 0, len(pairs))
	for _, p := range pairs {
		rows = append(rows, ToDataModel(p))
	}

	if err := s.repo.ReplaceAll(rows); err != nil {
		s.logger.Error("failed to save permissions", "count", len(rows), "error", err)
		return 0, apperrors.NewInternalError("An internal server error occurred while saving permissions.", err)
	}

	s.logger.Info("permissions saved", "count", len(rows))
	s.publish(ctx, events.NewPermissionsSavedEvent(len(rows)))
	return len(rows), nil
}

// MailAlert tells every user of a "from" department which departments they
// may survey during the period. One event is published per user; delivery
// happens asynchronously.
func (s *Service) MailAlert(ctx context.Context, req MailAlertRequest) (MailAlertResponse, error) {
	if verr := validation.Struct(req); verr != nil {
		switch {
		case failed(verr, "", "allowed_pairs"), failed(verr, "REQUIRED", "start_date", "end_date"):
			return MailAlertResponse{}, apperrors.NewValidationError(msgMissingAlertInput, apperrors.ErrCodeValidationFailed)
		case failed(verr, "ISODATE"):
			return MailAlertResponse{}, apperrors.NewValidationError(msgInvalidDate, apperrors.ErrCodeInvalidDate)
		default:
			return MailAlertResponse{}, apperrors.NewValidationError(msgInvalidPair, apperrors.ErrCodeInvalidPair)
		}
	}

	start, _ := validation.ParseISOTime(req.StartDate)
	end, _ := validation.ParseISOTime(req.EndDate)
	if end.Before(start) {
		return MailAlertResponse{}, apperrors.NewValidationError("end_date must not be before start_date", apperrors.ErrCodeInvalidDateRange)
	}

	pairs, err := pairsFromDTOs(req.AllowedPairs)
	if err != nil {
		return MailAlertResponse{}, err
	}

	departments, err := s.departments.GetAll()
	if err != nil {
		return MailAlertResponse{}, err
	}
	names := department.NameMap(departments)

	surveyable := map[string][]string{}
	var fromNames []string
	for _, p := range pairs {
		from, ok := names[p.FromDeptID]
		if !ok {
			continue
		}
		if _, seen := surveyable[from]; !seen {
			fromNames = append(fromNames, from)
			surveyable[from] = []string{}
		}
		if to, ok := names[p.ToDeptID]; ok {
			surveyable[from] = append(surveyable[from], to)
		}
	}

	users, err := s.users.InDepartments(ctx, fromNames)
	if err != nil {
		return MailAlertResponse{}, err
	}
	if len(users) == 0 {
		s.logger.Info("no users found in the relevant departments for mail alert")
		return MailAlertResponse{Message: msgNoUsers}, nil
	}

	details := make([]string, 0, len(users))
	for _, u := range users {
		targets := surveyable[u.Department]
		if len(targets) == 0 {
			continue
		}
		summary := AlertSummary(u, targets, start, end)
		s.logger.Info("mail alert queued", "username", u.Username, "summary", summary)
		details = append(details, summary)
		s.publish(ctx, events.NewMailAlertRequestedEvent(u.Username, u.Name, u.Email, u.Department, targets, start, end))
	}

	return MailAlertResponse{Message: msgAlertInitiated, AlertDetails: details}, nil
}

// AlertSummary is the one-line description of a single user's alert.
func AlertSummary(u user.User, targets []string, start, end time.Time) string {
	return fmt.Sprintf("Email to user '%s' (%s) from department '%s'. Can now survey: %s. Survey period: %s to %s.",
		u.Username, u.Email, u.Department, strings.Join(targets, ", "),
		start.Format(time.DateOnly), end.Format(time.DateOnly))
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish event", "event_type", event.EventType(), "error", err)
	}
}

func pairsFromDTOs(dtos []PairDTO) ([]Pair, error) {
	seen := make(map[Pair]struct{}, len(dtos))
	pairs := make([]Pair, 0, len(dtos))
	for _, d := range dtos {
		if d.FromDeptID == nil || d.ToDeptID == nil {
			return nil, apperrors.NewValidationError(msgInvalidPair, apperrors.ErrCodeInvalidPair)
		}
		p := d.Pair()
		if p.IsSelf() {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		pairs = append(pairs, p)
	}
	return pairs, nil
}

// failed reports whether verr holds a field failure with the given tag on
// one of fields. An empty tag or field list matches anything.
func failed(verr *apperrors.AppError, tag string, fields ...string) bool {
	details, ok := verr.Details.(apperrors.ValidationErrors)
	if !ok {
		return false
	}
	for _, d := range details.Errors {
		if tag != "" && d.Code != tag {
			continue
		}
		if len(fields) == 0 {
			return true
		}
		for _, f := range fields {
			if d.Field == f {
				return true
			}
		}
	}
	return false
}
