package permission

import (
	"context"
	"encoding/json"
	"net/http"

	apperrors "github.com/frahmantamala/insight-pulse/internal"
	"github.com/frahmantamala/insight-pulse/internal/transport"
)

type ServiceAPI interface {
	GetAll() ([]Pair, error)
	Save(ctx context.Context, req SaveRequest) (int, error)
	MailAlert(ctx context.Context, req MailAlertRequest) (MailAlertResponse, error)
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

// GetPermissions handles GET /api/permissions
func (h *Handler) GetPermissions(w http.ResponseWriter, r *http.Request) {
	pairs, err := h.Service.GetAll()
	if err != nil {
		h.Logger.Error("GetPermissions: failed to get permissions", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to get permissions")
		return
	}
	h.WriteJSON(w, http.StatusOK, pairs)
}

// SavePermissions handles POST /api/permissions/save
func (h *Handler) SavePermissions(w http.ResponseWriter, r *http.Request) {
	var req SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, "Invalid data format. 'allowed_pairs' must be a list.")
		return
	}

	if _, err := h.Service.Save(r.Context(), req); err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, MessageResponse{Message: msgSaved})
}

// MailAlert handles POST /api/permissions/mail-alert
func (h *Handler) MailAlert(w http.ResponseWriter, r *http.Request) {
	var req MailAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, msgMissingAlertInput)
		return
	}

	resp, err := h.Service.MailAlert(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	if appErr, ok := apperrors.IsAppError(err); ok {
		if appErr.Type == apperrors.ErrorTypeInternal {
			h.Logger.Error("permission request failed", "error", err)
		}
		h.WriteError(w, appErr.StatusCode, appErr.GetDetailedMessage())
		return
	}
	h.Logger.Error("permission request failed", "error", err)
	h.WriteError(w, http.StatusInternalServerError, "Internal server error")
}
