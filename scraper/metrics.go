package scraper

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the crawler.
type Metrics struct {
	Registry        *prometheus.Registry
	PagesTotal      *prometheus.CounterVec
	FetchDuration   prometheus.Histogram
	ItemsTotal      prometheus.Counter
	ItemErrorsTotal prometheus.Counter
	PageErrorsTotal *prometheus.CounterVec
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	pages := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crawler_pages_total",
			Help: "Total page fetch attempts by outcome.",
		},
		[]string{"status"},
	)
	fetchDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "crawler_fetch_duration_seconds",
			Help:    "HTTP fetch latency for search pages.",
			Buckets: prometheus.DefBuckets,
		},
	)
	items := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "crawler_items_extracted_total",
			Help: "Total number of product records extracted.",
		},
	)
	itemErrors := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "crawler_item_errors_total",
			Help: "Total number of item fragments dropped for parse failures.",
		},
	)
	pageErrors := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crawler_page_errors_total",
			Help: "Total number of page fetch errors by type.",
		},
		[]string{"error_type"},
	)

	registry.MustRegister(pages, fetchDuration, items, itemErrors, pageErrors)

	return &Metrics{
		Registry:        registry,
		PagesTotal:      pages,
		FetchDuration:   fetchDuration,
		ItemsTotal:      items,
		ItemErrorsTotal: itemErrors,
		PageErrorsTotal: pageErrors,
	}
}

// IncPage increments the page attempts counter for an outcome label.
func (m *Metrics) IncPage(status string) {
	if m == nil {
		return
	}
	m.PagesTotal.WithLabelValues(status).Inc()
}

// ObserveFetchDuration records one page fetch latency.
func (m *Metrics) ObserveFetchDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.FetchDuration.Observe(d.Seconds())
}

// IncItems increments the extracted records counter.
func (m *Metrics) IncItems() {
	if m == nil {
		return
	}
	m.ItemsTotal.Inc()
}

// IncItemError increments the dropped fragments counter.
func (m *Metrics) IncItemError() {
	if m == nil {
		return
	}
	m.ItemErrorsTotal.Inc()
}

// IncPageError increments the page errors counter for a type label.
func (m *Metrics) IncPageError(errorType string) {
	if m == nil {
		return
	}
	m.PageErrorsTotal.WithLabelValues(errorType).Inc()
}
