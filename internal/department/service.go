package department

import (
	"log/slog"

	apperrors "github.com/frahmantamala/insight-pulse/internal"
	"github.com/frahmantamala/insight-pulse/internal/core/common/validation"
	departmentDatamodel "github.com/frahmantamala/insight-pulse/internal/core/datamodel/department"
)

type RepositoryAPI interface {
	GetAll() ([]*departmentDatamodel.Department, error)
	GetByID(id int64) (*departmentDatamodel.Department, error)
	GetByName(name string) (*departmentDatamodel.Department, error)
	Create(department *departmentDatamodel.Department) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// GetAll returns departments ordered by name.
func (s *Service) GetAll() ([]Department, error) {
	rows, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to get departments from repository", "error", err)
		return nil, apperrors.NewInternalError("failed to load departments", err)
	}

	departments := make([]Department, 0, len(rows))
	for _, row := range rows {
		departments = append(departments, *FromDataModel(row))
	}

	s.logger.Debug("retrieved departments", "count", len(departments))
	return departments, nil
}

func (s *Service) Create(dto CreateDepartmentDTO) (*Department, error) {
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}

	d := NewDepartment(dto.Name)

	existing, err := s.repo.GetByName(d.Name)
	if err != nil {
		s.logger.Error("failed to look up department", "name", d.Name, "error", err)
		return nil, apperrors.NewInternalError("failed to create department", err)
	}
	if existing != nil {
		return nil, apperrors.ErrDepartmentExists.WithMessage("Department '" + d.Name + "' already exists")
	}

	row := ToDataModel(d)
	if err := s.repo.Create(row); err != nil {
		s.logger.Error("failed to create department", "name", d.Name, "error", err)
		return nil, apperrors.NewInternalError("failed to create department", err)
	}

	s.logger.Info("department created", "id", row.ID, "name", row.Name)
	return FromDataModel(row), nil
}
