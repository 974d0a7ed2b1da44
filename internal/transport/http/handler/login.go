package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Recurse-ML/logfire-example/internal/application/auth"
	"github.com/Recurse-ML/logfire-example/internal/application/user"
	"github.com/Recurse-ML/logfire-example/internal/pkg/validate"
	"github.com/Recurse-ML/logfire-example/internal/transport/http/middleware"
)

// LoginHandler handles the UI login form and token introspection.
type LoginHandler struct {
	authSvc auth.Service
	userSvc user.Service
}

func NewLoginHandler(authSvc auth.Service, userSvc user.Service) *LoginHandler {
	return &LoginHandler{authSvc: authSvc, userSvc: userSvc}
}

// AccessToken implements POST /login/access-token. The web UI submits a
// form-encoded body with `username` (the email) and `password` fields.
func (h *LoginHandler) AccessToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form body")
		return
	}
	req := auth.LoginRequest{
		Email:    r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
		RemoteIP: r.RemoteAddr,
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.authSvc.Login(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, TokenEnvelope{AccessToken: result.AccessToken, TokenType: "bearer"})
}

// History implements GET /login-events/{email} (superuser only): the recorded
// login attempts for one address, newest first. Fault-outcome entries line up
// with the alerts the login defect produced.
func (h *LoginHandler) History(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	events, err := h.authSvc.LoginHistory(r.Context(), email, 50)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, LoginEventsEnvelope{Data: events})
}

// TestToken implements POST /login/test-token: returns the user behind the
// presented access token.
func (h *LoginHandler) TestToken(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	u, err := h.userSvc.Get(r.Context(), claims.UserID())
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
