package handlers

import (
	"net/http"

	"github.com/diewo77/seize-billing/internal/httpx"
	"github.com/diewo77/seize-billing/internal/services"
)

type CompanyHandler struct {
	svc *services.CompanyService
}

func NewCompanyHandler(svc *services.CompanyService) *CompanyHandler {
	return &CompanyHandler{svc: svc}
}

// Edit returns the company settings.
func (h *CompanyHandler) Edit(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.Get(r.Context())
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

// Update saves the company settings.
func (h *CompanyHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in services.CompanyInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Error(w, err)
		return
	}
	c, err := h.svc.Update(r.Context(), in)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}
