package store

import (
	"context"

	"github.com/mtakeda/furugi/internal/model"
)

// Repository is the read/write contract over the product store,
// consumed by the presentation layer.
type Repository interface {
	// ListProducts returns products in store order. Archived products
	// are excluded unless includeArchived is set.
	ListProducts(ctx context.Context, includeArchived bool) ([]model.Product, error)
	// CreateProduct validates the payload, assigns a product number and
	// returns the stored product with its revision.
	CreateProduct(ctx context.Context, payload model.Row) (*model.Product, error)
	// UpdateProduct merges the partial updates over the current record
	// and writes it back. It fails with ErrNotFound or, when
	// expectedRevision is stale, with ErrConflict.
	UpdateProduct(ctx context.Context, productNo string, updates model.Row, expectedRevision string) (*model.Product, error)
	// ListSalesChannels returns the permitted sales channel values.
	// A missing lookup sheet yields an empty list, not an error.
	ListSalesChannels(ctx context.Context) ([]string, error)
}
