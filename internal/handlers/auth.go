package handlers

import (
	"net/http"
	"strings"

	"github.com/diewo77/seize-billing/internal/auth"
	"github.com/diewo77/seize-billing/internal/httpx"
	"github.com/diewo77/seize-billing/internal/services"
)

type AuthHandler struct {
	users    *services.UserService
	sessions *auth.Sessions
}

func NewAuthHandler(users *services.UserService, sessions *auth.Sessions) *AuthHandler {
	return &AuthHandler{users: users, sessions: sessions}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login accepts a JSON body or a username/password form.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.Error(w, err)
			return
		}
	} else {
		req.Username = r.FormValue("username")
		req.Password = r.FormValue("password")
	}

	user, err := h.users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	h.sessions.CreateSession(w, user.ID)
	logger.Infof("user %q logged in", user.Username)
	httpx.JSON(w, http.StatusOK, auth.Actor{UserID: user.ID, Username: user.Username, Role: user.Role})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.ClearSession(w)
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the logged in actor.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFromContext(r.Context())
	httpx.JSON(w, http.StatusOK, actor)
}
