// Package handlers exposes the ledger services as a JSON API.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/juju/errors"
	"github.com/juju/loggo"

	"github.com/diewo77/seize-billing/internal/models"
	"github.com/diewo77/seize-billing/internal/services"
)

var logger = loggo.GetLogger("seize.handlers")

func pathID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.NotValidf("id %q", r.PathValue("id"))
	}
	return uint(id), nil
}

func reportFilter(r *http.Request) services.ReportFilter {
	q := r.URL.Query()
	low := q.Get("low")
	return services.ReportFilter{
		From:     q.Get("from"),
		To:       q.Get("to"),
		Category: models.ExpenseCategory(q.Get("category")),
		LowOnly:  low == "1" || low == "true",
	}
}
