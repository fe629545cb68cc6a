package survey

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/frahmantamala/insight-pulse/internal"
	"github.com/frahmantamala/insight-pulse/internal/transport"
)

type ServiceAPI interface {
	Get(id int64) (*Survey, error)
	Submit(surveyID int64, dto SubmitResponseDTO) (*SubmitResult, error)
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

// GetSurvey handles GET /api/surveys/{id}
func (h *Handler) GetSurvey(w http.ResponseWriter, r *http.Request) {
	id, ok := h.PathInt64(r, "id")
	if !ok {
		h.WriteDetail(w, http.StatusNotFound, "Survey not found")
		return
	}

	sv, err := h.Service.Get(id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, sv.ToResponse())
}

// SubmitResponse handles POST /api/surveys/{id}/submit_response
func (h *Handler) SubmitResponse(w http.ResponseWriter, r *http.Request) {
	id, ok := h.PathInt64(r, "id")
	if !ok {
		h.WriteDetail(w, http.StatusNotFound, "Survey not found")
		return
	}

	var dto SubmitResponseDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.Service.Submit(id, dto)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, result)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, apperrors.ErrSurveyNotFound) {
		h.WriteDetail(w, http.StatusNotFound, "Survey not found")
		return
	}
	if appErr, ok := apperrors.IsAppError(err); ok {
		if appErr.Type == apperrors.ErrorTypeInternal {
			h.Logger.Error("survey request failed", "error", err)
		}
		h.WriteDetail(w, appErr.StatusCode, appErr.GetDetailedMessage())
		return
	}
	h.Logger.Error("survey request failed", "error", err)
	h.WriteDetail(w, http.StatusInternalServerError, "Internal server error")
}
