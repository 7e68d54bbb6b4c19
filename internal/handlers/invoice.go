package handlers

import (
	"net/http"
	"strconv"

	"github.com/diewo77/seize-billing/internal/httpx"
	"github.com/diewo77/seize-billing/internal/models"
	"github.com/diewo77/seize-billing/internal/services"
)

type InvoiceHandler struct {
	svc *services.InvoiceService
}

func NewInvoiceHandler(svc *services.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{svc: svc}
}

type invoiceRequest struct {
	services.InvoiceHeader
	Items []services.ItemInput `json:"items"`
}

// NextNumber: GET /invoices/next-number
func (h *InvoiceHandler) NextNumber(w http.ResponseWriter, r *http.Request) {
	number, err := h.svc.NextNumber(r.Context())
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"invoice_no": number})
}

// Calculate: POST /invoices/calculate, totals for the posted items
func (h *InvoiceHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req invoiceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	totals, err := h.svc.Calculate(req.Items)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, totals)
}

// List: GET /invoices?from=&to=&q=&limit=
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := services.InvoiceFilter{From: q.Get("from"), To: q.Get("to"), Query: q.Get("q")}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			f.Limit = n
		}
	}
	invoices, err := h.svc.List(r.Context(), f)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	if invoices == nil {
		invoices = []models.Invoice{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": invoices, "total": len(invoices)})
}

// Create: POST /invoices
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req invoiceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	number, err := h.svc.Create(r.Context(), req.InvoiceHeader, req.Items)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	inv, err := h.svc.LoadForEdit(r.Context(), number)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

// View: GET /invoices/{number}
func (h *InvoiceHandler) View(w http.ResponseWriter, r *http.Request) {
	inv, err := h.svc.LoadForEdit(r.Context(), r.PathValue("number"))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

// Update: POST /invoices/{number}
func (h *InvoiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req invoiceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	number := r.PathValue("number")
	if err := h.svc.Update(r.Context(), number, req.InvoiceHeader, req.Items); err != nil {
		httpx.Error(w, err)
		return
	}
	h.View(w, r)
}

// SetStatus: POST /invoices/{number}/status
func (h *InvoiceHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status models.InvoiceStatus `json:"status"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	if err := h.svc.SetStatus(r.Context(), r.PathValue("number"), req.Status); err != nil {
		httpx.Error(w, err)
		return
	}
	h.View(w, r)
}

// Delete: POST /invoices/{number}/delete
func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), r.PathValue("number")); err != nil {
		httpx.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
