package store

import (
	"context"
	"fmt"
	"maps"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mtakeda/furugi/internal/model"
)

// MemoryRepository keeps products in a map. It backs tests and -dev
// mode, where no spreadsheet credentials are available. Revisions are
// opaque write stamps rather than content fingerprints; the conflict
// contract is the same.
type MemoryRepository struct {
	mu       sync.Mutex
	products map[string]model.Product
	order    []string
	writes   int

	// Channels is returned by ListSalesChannels.
	Channels []string
}

// NewMemoryRepository returns an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{products: map[string]model.Product{}}
}

func (r *MemoryRepository) ListProducts(_ context.Context, includeArchived bool) ([]model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var products []model.Product
	for _, no := range r.order {
		p := r.products[no]
		if !includeArchived && p.IsArchived {
			continue
		}
		products = append(products, p)
	}
	return products, nil
}

func (r *MemoryRepository) CreateProduct(_ context.Context, payload model.Row) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := model.Row{}
	maps.Copy(data, payload)
	if strings.TrimSpace(data["product_no"]) == "" {
		data["product_no"] = r.nextProductNo()
	}
	data["revision"] = r.stamp()
	data["updated_at"] = time.Now().UTC().Format(time.RFC3339)

	p, err := model.FromRow(data)
	if err != nil {
		return nil, err
	}
	if _, exists := r.products[p.ProductNo]; exists {
		return nil, &model.ValidationError{Field: "product_no", Reason: "already exists"}
	}

	r.products[p.ProductNo] = *p
	r.order = append(r.order, p.ProductNo)
	return p, nil
}

func (r *MemoryRepository) UpdateProduct(_ context.Context, productNo string, updates model.Row, expectedRevision string) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.products[productNo]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, productNo)
	}
	if current.Revision != expectedRevision {
		return nil, fmt.Errorf("%w: %s", ErrConflict, productNo)
	}

	merged := current.ToRow()
	maps.Copy(merged, updates)
	merged["product_no"] = productNo
	merged["revision"] = r.stamp()
	merged["updated_at"] = time.Now().UTC().Format(time.RFC3339)

	updated, err := model.FromRow(merged)
	if err != nil {
		return nil, err
	}
	r.products[productNo] = *updated
	return updated, nil
}

func (r *MemoryRepository) ListSalesChannels(_ context.Context) ([]string, error) {
	return r.Channels, nil
}

func (r *MemoryRepository) nextProductNo() string {
	maxSeq := 0
	for no := range r.products {
		if seq, ok := productSeq(no); ok && seq > maxSeq {
			maxSeq = seq
		}
	}
	return fmt.Sprintf("P%05d", maxSeq+1)
}

func (r *MemoryRepository) stamp() string {
	r.writes++
	return "mem-" + strconv.Itoa(r.writes)
}
