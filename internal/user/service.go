package user

import (
	"context"
	"log/slog"

	apperrors "github.com/frahmantamala/insight-pulse/internal"
	userDatamodel "github.com/frahmantamala/insight-pulse/internal/core/datamodel/user"
)

type Repository interface {
	List(ctx context.Context) ([]userDatamodel.User, error)
	ListByDepartments(ctx context.Context, departments []string) ([]userDatamodel.User, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, apperrors.NewInternalError("failed to list users", err)
	}
	return fromRows(rows), nil
}

// InDepartments returns the users whose department name is one of names.
// An empty names slice matches nobody.
func (s *Service) InDepartments(ctx context.Context, names []string) ([]User, error) {
	if len(names) == 0 {
		return []User{}, nil
	}

	rows, err := s.repo.ListByDepartments(ctx, names)
	if err != nil {
		s.logger.Error("failed to list users by department", "departments", names, "error", err)
		return nil, apperrors.NewInternalError("failed to list users", err)
	}
	return fromRows(rows), nil
}

func fromRows(rows []userDatamodel.User) []User {
	users := make([]User, 0, len(rows))
	for i := range rows {
		users = append(users, *FromDataModel(&rows[i]))
	}
	return users
}
