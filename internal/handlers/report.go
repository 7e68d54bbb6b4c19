package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"

	"github.com/diewo77/seize-billing/internal/httpx"
	"github.com/diewo77/seize-billing/internal/models"
	"github.com/diewo77/seize-billing/internal/services"
)

const recentInvoices = 10

type ReportHandler struct {
	reports  *services.ReportService
	invoices *services.InvoiceService
}

func NewReportHandler(reports *services.ReportService, invoices *services.InvoiceService) *ReportHandler {
	return &ReportHandler{reports: reports, invoices: invoices}
}

// Report: GET /reports/{kind}?from=&to=&category=&low=&format=csv
func (h *ReportHandler) Report(w http.ResponseWriter, r *http.Request) {
	kind := services.ReportKind(r.PathValue("kind"))
	table, err := h.reports.Run(r.Context(), kind, reportFilter(r))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	if r.URL.Query().Get("format") == "csv" {
		writeCSV(w, string(kind), table)
		return
	}
	httpx.JSON(w, http.StatusOK, table)
}

// Dashboard: GET /dashboard, headline figures plus the latest invoices
func (h *ReportHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.reports.Dashboard(r.Context())
	if err != nil {
		httpx.Error(w, err)
		return
	}
	recent, err := h.invoices.Recent(r.Context(), recentInvoices)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	if recent == nil {
		recent = []models.Invoice{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"stats": d, "recent_invoices": recent})
}

func writeCSV(w http.ResponseWriter, name string, t *services.Table) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.csv"`, name))
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		logger.Warningf("writing %s csv: %v", name, err)
		return
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		logger.Warningf("writing %s csv: %v", name, err)
	}
}
