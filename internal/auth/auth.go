// Package auth signs session cookies and carries the acting user through
// request contexts.
package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/juju/clock"

	"github.com/diewo77/seize-billing/internal/httpx"
	"github.com/diewo77/seize-billing/internal/models"
)

type ctxKey string

const (
	sessionCookieName = "session"
	actorCtxKey       = ctxKey("actor")
	sessionLifetime   = 14 * 24 * time.Hour
)

// Actor is the user on whose behalf an operation runs.
type Actor struct {
	UserID   uint   `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool { return a.Role == models.RoleAdmin }

// ActorResolver loads the actor for a session's user id. It returns false
// when the user no longer exists.
type ActorResolver func(ctx context.Context, uid uint) (Actor, bool)

// Sessions issues and verifies HMAC signed session cookies.
type Sessions struct {
	secret  []byte
	resolve ActorResolver
	clock   clock.Clock
}

// NewSessions returns a session manager. resolve may be nil, in which case
// sessions authenticate nobody.
func NewSessions(secret string, resolve ActorResolver) *Sessions {
	return &Sessions{secret: []byte(secret), resolve: resolve, clock: clock.WallClock}
}

func (s *Sessions) sign(uidStr string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(uidStr))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// CreateSession sets a signed cookie with the user id.
func (s *Sessions) CreateSession(w http.ResponseWriter, userID uint) {
	uidStr := strconv.FormatUint(uint64(userID), 10)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    uidStr + "." + s.sign(uidStr),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  s.clock.Now().Add(sessionLifetime),
	})
}

// ClearSession deletes the session cookie.
func (s *Sessions) ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: sessionCookieName, Value: "", Path: "/", Expires: time.Unix(0, 0), HttpOnly: true, SameSite: http.SameSiteLaxMode})
}

// ParseSession validates the cookie and returns the user id.
func (s *Sessions) ParseSession(r *http.Request) (uint, bool) {
	c, err := r.Cookie(sessionCookieName)
	if err != nil || c.Value == "" {
		return 0, false
	}
	uidStr, sig, ok := strings.Cut(c.Value, ".")
	if !ok {
		return 0, false
	}
	if !hmac.Equal([]byte(sig), []byte(s.sign(uidStr))) {
		return 0, false
	}
	id64, err := strconv.ParseUint(uidStr, 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(id64), true
}

// Middleware attaches the actor to the request context when the session
// cookie is valid and the user still exists.
func (s *Sessions) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if uid, ok := s.ParseSession(r); ok && s.resolve != nil {
			if actor, found := s.resolve(r.Context(), uid); found {
				r = r.WithContext(WithActor(r.Context(), actor))
			} else {
				s.ClearSession(w)
			}
		}
		next.ServeHTTP(w, r)
	})
}

// WithActor stores the actor in ctx.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorCtxKey, a)
}

// ActorFromContext extracts the actor.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorCtxKey).(Actor)
	return a, ok
}

// RequireAuth answers 401 when no actor is attached.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := ActorFromContext(r.Context()); !ok {
			httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin answers 401 without an actor and 403 for non-admins.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ActorFromContext(r.Context())
		if !ok {
			httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
			return
		}
		if !actor.IsAdmin() {
			httpx.JSONError(w, http.StatusForbidden, "forbidden", "admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
