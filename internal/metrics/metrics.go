// Package metrics exposes ledger activity to prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "seize"

// Collector is a prometheus.Collector for invoice, stock and HTTP activity.
// A nil *Collector is valid and records nothing.
type Collector struct {
	invoicesCreated prometheus.Counter
	invoicesDeleted prometheus.Counter
	statusChanges   *prometheus.CounterVec
	stockMovements  *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewCollector returns a new Collector.
func NewCollector() *Collector {
	return &Collector{
		invoicesCreated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "invoices_created_total",
				Help:      "The number of invoices saved.",
			},
		),
		invoicesDeleted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "invoices_deleted_total",
				Help:      "The number of invoices hard deleted.",
			},
		),
		statusChanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "invoice_status_changes_total",
				Help:      "The number of invoice status changes by target status.",
			}, []string{"status"},
		),
		stockMovements: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "stock_units_total",
				Help:      "Units of catalog stock moved by invoices.",
			}, []string{"direction"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "http_request_duration_seconds",
				Help:      "The time taken to serve HTTP requests.",
				Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			}, []string{"method", "status"},
		),
	}
}

// Describe is part of the prometheus.Collector interface.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.invoicesCreated.Describe(ch)
	c.invoicesDeleted.Describe(ch)
	c.statusChanges.Describe(ch)
	c.stockMovements.Describe(ch)
	c.requestDuration.Describe(ch)
}

// Collect is part of the prometheus.Collector interface.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.invoicesCreated.Collect(ch)
	c.invoicesDeleted.Collect(ch)
	c.statusChanges.Collect(ch)
	c.stockMovements.Collect(ch)
	c.requestDuration.Collect(ch)
}

func (c *Collector) InvoiceCreated() {
	if c == nil {
		return
	}
	c.invoicesCreated.Inc()
}

func (c *Collector) InvoiceDeleted() {
	if c == nil {
		return
	}
	c.invoicesDeleted.Inc()
}

func (c *Collector) StatusChanged(status string) {
	if c == nil {
		return
	}
	c.statusChanges.WithLabelValues(status).Inc()
}

// StockMoved records units returned to stock and units taken out of it.
func (c *Collector) StockMoved(in, out int) {
	if c == nil {
		return
	}
	if in > 0 {
		c.stockMovements.WithLabelValues("in").Add(float64(in))
	}
	if out > 0 {
		c.stockMovements.WithLabelValues("out").Add(float64(out))
	}
}

func (c *Collector) ObserveRequest(method string, status int, d time.Duration) {
	if c == nil {
		return
	}
	c.requestDuration.WithLabelValues(method, statusClass(status)).Observe(d.Seconds())
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	}
	return "2xx"
}
