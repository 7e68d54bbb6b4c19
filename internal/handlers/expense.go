package handlers

import (
	"net/http"

	"github.com/diewo77/seize-billing/internal/httpx"
	"github.com/diewo77/seize-billing/internal/models"
	"github.com/diewo77/seize-billing/internal/services"
)

type ExpenseHandler struct {
	svc *services.ExpenseService
}

func NewExpenseHandler(svc *services.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{svc: svc}
}

// List: GET /expenses?from=&to=&category=
func (h *ExpenseHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	expenses, err := h.svc.List(r.Context(), services.ExpenseFilter{
		From:     q.Get("from"),
		To:       q.Get("to"),
		Category: models.ExpenseCategory(q.Get("category")),
	})
	if err != nil {
		httpx.Error(w, err)
		return
	}
	if expenses == nil {
		expenses = []models.Expense{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": expenses, "categories": models.ExpenseCategories})
}

// Create: POST /expenses
func (h *ExpenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.ExpenseInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Error(w, err)
		return
	}
	e, err := h.svc.Create(r.Context(), in)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, e)
}
