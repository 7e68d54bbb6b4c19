package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/diewo77/seize-billing/internal/models"
)

func TestCompanySettings(t *testing.T) {
	e := setupTestEnv(t)

	w := httptest.NewRecorder()
	e.company.Edit(w, httptest.NewRequest(http.MethodGet, "/settings", nil))
	var c models.Company
	decodeBody(t, w, &c)
	if c.Name != models.DefaultCompanyName {
		t.Fatalf("expected seeded company, got %+v", c)
	}

	w = httptest.NewRecorder()
	e.company.Update(w, asClerk(jsonRequest(http.MethodPost, "/settings", `{"name":"Other"}`)))
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", w.Code)
	}

	w = httptest.NewRecorder()
	e.company.Update(w, asAdmin(jsonRequest(http.MethodPost, "/settings", `{"name":"Seize Retail","gstin":"27aaaaa0000a1z5"}`)))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	decodeBody(t, w, &c)
	if c.Name != "Seize Retail" || c.GSTIN != "27AAAAA0000A1Z5" {
		t.Fatalf("unexpected company %+v", c)
	}
}

func TestUserCreateAndList(t *testing.T) {
	e := setupTestEnv(t)
	w := httptest.NewRecorder()
	e.users.Create(w, asAdmin(jsonRequest(http.MethodPost, "/users", `{"username":"priya","password":"pw","role":"salesman"}`)))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", w.Code, w.Body.String())
	}
	var created map[string]any
	decodeBody(t, w, &created)
	if _, leaked := created["password"]; leaked {
		t.Fatal("password hash must not be serialized")
	}

	w = httptest.NewRecorder()
	e.users.List(w, asAdmin(httptest.NewRequest(http.MethodGet, "/users", nil)))
	var list struct {
		Items []models.User `json:"items"`
	}
	decodeBody(t, w, &list)
	if len(list.Items) != 2 {
		t.Fatalf("expected admin and priya, got %+v", list.Items)
	}
}
