package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Recurse-ML/logfire-example/internal/application/auth"
	"github.com/Recurse-ML/logfire-example/internal/domain"
	"github.com/Recurse-ML/logfire-example/internal/pkg/validate"
)

// PasswordRecoveryHandler handles recovery-token issuance and consumption.
type PasswordRecoveryHandler struct {
	svc auth.Service
}

func NewPasswordRecoveryHandler(svc auth.Service) *PasswordRecoveryHandler {
	return &PasswordRecoveryHandler{svc: svc}
}

// Request implements POST /password-recovery/{email}. Unknown addresses get
// the same response as known ones so the endpoint cannot be used to probe
// which emails are registered.
func (h *PasswordRecoveryHandler) Request(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	if err := h.svc.RequestPasswordRecovery(r.Context(), email); err != nil && !errors.Is(err, domain.ErrNotFound) {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "password recovery email sent"})
}

// Reset implements POST /reset-password.
func (h *PasswordRecoveryHandler) Reset(w http.ResponseWriter, r *http.Request) {
	var req domain.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "password updated"})
}
