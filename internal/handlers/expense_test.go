package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/diewo77/seize-billing/internal/models"
)

func TestExpenseCreateAndList(t *testing.T) {
	e := setupTestEnv(t)

	w := httptest.NewRecorder()
	e.expenses.Create(w, asClerk(jsonRequest(http.MethodPost, "/expenses", `{"category":"Rent","amount":"1500","description":"March"}`)))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	e.expenses.Create(w, asClerk(jsonRequest(http.MethodPost, "/expenses", `{"category":"Transport","amount":"0"}`)))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", w.Code)
	}

	w = httptest.NewRecorder()
	e.expenses.List(w, httptest.NewRequest(http.MethodGet, "/expenses?category=Rent", nil))
	var body struct {
		Items      []models.Expense `json:"items"`
		Categories []string         `json:"categories"`
	}
	decodeBody(t, w, &body)
	if len(body.Items) != 1 || body.Items[0].CreatedBy != "priya" || body.Items[0].Date != "2026-03-14" {
		t.Fatalf("unexpected expenses %+v", body.Items)
	}
	if len(body.Categories) != len(models.ExpenseCategories) {
		t.Fatalf("unexpected categories %v", body.Categories)
	}
}
