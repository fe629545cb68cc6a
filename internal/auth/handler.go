package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/frahmantamala/insight-pulse/internal/transport"
)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, svc ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     svc,
	}
}

// Login handles POST /login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteDetail(w, http.StatusBadRequest, "Missing username or password")
		return
	}

	resp, err := h.Service.Authenticate(dto)
	if err != nil {
		var verr ValidationError
		switch {
		case errors.As(err, &verr):
			h.WriteDetail(w, http.StatusBadRequest, verr.Msg)
		case errors.Is(err, ErrInvalidCredentials):
			h.WriteDetail(w, http.StatusUnauthorized, "Invalid username or password")
		default:
			h.Logger.Error("authentication failed", "error", err)
			h.WriteDetail(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}
