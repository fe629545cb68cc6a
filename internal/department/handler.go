package department

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/frahmantamala/insight-pulse/internal"
	"github.com/frahmantamala/insight-pulse/internal/transport"
)

type ServiceAPI interface {
	GetAll() ([]Department, error)
	Create(dto CreateDepartmentDTO) (*Department, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

// GetDepartments handles GET /api/departments
func (h *Handler) GetDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := h.Service.GetAll()
	if err != nil {
		h.Logger.Error("GetDepartments: failed to get departments", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to get departments")
		return
	}

	resp := make([]DepartmentResponse, 0, len(departments))
	for i := range departments {
		resp = append(resp, departments[i].ToResponse())
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

// CreateDepartment handles POST /api/departments
func (h *Handler) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	var dto CreateDepartmentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.Service.Create(dto)
	if err != nil {
		if appErr, ok := apperrors.IsAppError(err); ok && appErr.Type != apperrors.ErrorTypeInternal {
			h.WriteError(w, appErr.StatusCode, appErr.GetDetailedMessage())
			return
		}
		h.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.WriteJSON(w, http.StatusCreated, created.ToResponse())
}
