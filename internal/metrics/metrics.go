// Package metrics registers the Prometheus instruments exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RowsSkipped counts sheet rows dropped during listing because they
	// failed validation. Partial data is expected in a human-edited
	// sheet, but a growing count deserves a look.
	RowsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "furugi_rows_skipped_total",
		Help: "Rows excluded from listings because they failed validation.",
	})

	// UpdateConflicts counts updates rejected because the row changed
	// between the caller's read and write.
	UpdateConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "furugi_update_conflicts_total",
		Help: "Updates rejected due to a stale revision token.",
	})

	ProductsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "furugi_products_created_total",
		Help: "Products created.",
	})

	ProductsUpdated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "furugi_products_updated_total",
		Help: "Products updated.",
	})
)
