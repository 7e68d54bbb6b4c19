package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/diewo77/seize-billing/internal/models"
)

func staticResolver(users map[uint]Actor) ActorResolver {
	return func(_ context.Context, uid uint) (Actor, bool) {
		a, ok := users[uid]
		return a, ok
	}
}

func sessionCookie(t *testing.T, s *Sessions, uid uint) *http.Cookie {
	t.Helper()
	w := httptest.NewRecorder()
	s.CreateSession(w, uid)
	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one cookie, got %d", len(cookies))
	}
	return cookies[0]
}

func TestSessionRoundTrip(t *testing.T) {
	s := NewSessions("secret", nil)
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(sessionCookie(t, s, 42))
	uid, ok := s.ParseSession(r)
	if !ok || uid != 42 {
		t.Fatalf("expected uid 42, got %d ok=%v", uid, ok)
	}
}

func TestSessionRejectsTampering(t *testing.T) {
	s := NewSessions("secret", nil)
	c := sessionCookie(t, s, 1)

	for name, value := range map[string]string{
		"changed id":   "2" + c.Value[1:],
		"no signature": "1",
		"empty":        "",
		"other secret": sessionCookie(t, NewSessions("other", nil), 1).Value,
	} {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: sessionCookieName, Value: value})
		if _, ok := s.ParseSession(r); ok {
			t.Errorf("%s: session accepted", name)
		}
	}
}

func TestMiddlewareAttachesActor(t *testing.T) {
	s := NewSessions("secret", staticResolver(map[uint]Actor{7: {UserID: 7, Username: "asha", Role: models.RoleUser}}))
	var got Actor
	var found bool
	h := s.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, found = ActorFromContext(r.Context())
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(sessionCookie(t, s, 7))
	h.ServeHTTP(httptest.NewRecorder(), r)
	if !found || got.Username != "asha" {
		t.Fatalf("actor not attached: %+v found=%v", got, found)
	}
}

func TestMiddlewareClearsUnknownUser(t *testing.T) {
	s := NewSessions("secret", staticResolver(nil))
	h := s.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := ActorFromContext(r.Context()); ok {
			t.Fatal("deleted user must not be authenticated")
		}
	}))
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(sessionCookie(t, s, 99))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Value != "" {
		t.Fatalf("expected cleared session cookie, got %+v", cookies)
	}
}

func TestRequireAuthAndAdmin(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	tests := []struct {
		name    string
		handler http.Handler
		actor   *Actor
		want    int
	}{
		{"auth anonymous", RequireAuth(ok), nil, http.StatusUnauthorized},
		{"auth user", RequireAuth(ok), &Actor{Username: "u", Role: models.RoleUser}, http.StatusNoContent},
		{"admin anonymous", RequireAdmin(ok), nil, http.StatusUnauthorized},
		{"admin as user", RequireAdmin(ok), &Actor{Username: "u", Role: models.RoleSalesman}, http.StatusForbidden},
		{"admin as admin", RequireAdmin(ok), &Actor{Username: "admin", Role: models.RoleAdmin}, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.actor != nil {
				r = r.WithContext(WithActor(r.Context(), *tt.actor))
			}
			w := httptest.NewRecorder()
			tt.handler.ServeHTTP(w, r)
			if w.Code != tt.want {
				t.Fatalf("expected %d got %d", tt.want, w.Code)
			}
		})
	}
}
