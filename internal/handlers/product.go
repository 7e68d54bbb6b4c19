package handlers

import (
	"net/http"

	"github.com/diewo77/seize-billing/internal/httpx"
	"github.com/diewo77/seize-billing/internal/models"
	"github.com/diewo77/seize-billing/internal/services"
)

type ProductHandler struct {
	svc *services.CatalogService
}

func NewProductHandler(svc *services.CatalogService) *ProductHandler {
	return &ProductHandler{svc: svc}
}

// List: GET /products?q=&low=1
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	var products []models.Product
	var err error
	if low := r.URL.Query().Get("low"); low == "1" || low == "true" {
		products, err = h.svc.LowStock(r.Context())
	} else {
		products, err = h.svc.List(r.Context(), r.URL.Query().Get("q"))
	}
	if err != nil {
		httpx.Error(w, err)
		return
	}
	if products == nil {
		products = []models.Product{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": products, "total": len(products)})
}

// Create: POST /products
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.ProductInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Error(w, err)
		return
	}
	p, err := h.svc.Create(r.Context(), in)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

// View: GET /products/{id}
func (h *ProductHandler) View(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	p, err := h.svc.Get(r.Context(), id)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

// Update: POST /products/{id}
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	var in services.ProductInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Error(w, err)
		return
	}
	p, err := h.svc.Update(r.Context(), id, in)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}
