package model

import (
	"strconv"
	"strings"
	"time"
)

// SaleStatus is the listing/sale state of a product.
type SaleStatus string

// Sale statuses.
const (
	StatusNotListed SaleStatus = "not_listed"
	StatusListed    SaleStatus = "listed"
	StatusSold      SaleStatus = "sold"
)

// ValidStatus reports whether s is one of the three known statuses.
func ValidStatus(s SaleStatus) bool {
	return s == StatusNotListed || s == StatusListed || s == StatusSold
}

// dateFormat is the canonical date representation used in rows.
const dateFormat = "2006-01-02"

// Row is the flat serialized form of a product. Dates are ISO strings,
// absent optional values are empty strings. It is the contract between
// the model and the repositories and round-trips through FromRow/ToRow.
type Row map[string]string

// Product is one secondhand inventory item.
type Product struct {
	ProductNo     string     `json:"product_no"`
	Name          string     `json:"name"`
	StoreName     string     `json:"store_name"`
	PurchaseDate  time.Time  `json:"purchase_date"`
	PurchasePrice int        `json:"purchase_price"`
	SaleStatus    SaleStatus `json:"sale_status"`
	ListedDate    *time.Time `json:"listed_date,omitempty"`
	SaleDate      *time.Time `json:"sale_date,omitempty"`
	SalePrice     *int       `json:"sale_price,omitempty"`
	SalesChannel  string     `json:"sales_channel,omitempty"`
	ShippingCost  *int       `json:"shipping_cost,omitempty"`
	HandlingFee   *int       `json:"handling_fee,omitempty"`
	IsArchived    bool       `json:"is_archived"`
	Revision      string     `json:"revision"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

// Profit returns salePrice - purchasePrice - shippingCost. The second
// return value is false when the product has not been sold yet.
func (p *Product) Profit() (int, bool) {
	if p.SalePrice == nil {
		return 0, false
	}
	ship := 0
	if p.ShippingCost != nil {
		ship = *p.ShippingCost
	}
	return *p.SalePrice - p.PurchasePrice - ship, true
}

// FromRow validates a flat row and builds a Product from it. It returns
// a *ValidationError naming the first offending field. Only canonical
// values are accepted here; legacy sheet formats are normalized by the
// repository before this point.
func FromRow(row Row) (*Product, error) {
	p := &Product{
		ProductNo:    strings.TrimSpace(row["product_no"]),
		Name:         strings.TrimSpace(row["name"]),
		StoreName:    strings.TrimSpace(row["store_name"]),
		SalesChannel: strings.TrimSpace(row["sales_channel"]),
		Revision:     strings.TrimSpace(row["revision"]),
	}

	if p.ProductNo == "" {
		return nil, &ValidationError{Field: "product_no", Reason: "required"}
	}
	if p.Name == "" {
		return nil, &ValidationError{Field: "name", Reason: "required"}
	}
	if p.StoreName == "" {
		return nil, &ValidationError{Field: "store_name", Reason: "required"}
	}

	status := SaleStatus(strings.TrimSpace(row["sale_status"]))
	if status == "" {
		status = StatusNotListed
	}
	if !ValidStatus(status) {
		return nil, &ValidationError{Field: "sale_status", Reason: "must be one of not_listed, listed, sold"}
	}
	p.SaleStatus = status

	purchaseDate, err := parseDate("purchase_date", row["purchase_date"])
	if err != nil {
		return nil, err
	}
	if purchaseDate == nil {
		return nil, &ValidationError{Field: "purchase_date", Reason: "required"}
	}
	p.PurchaseDate = *purchaseDate

	if p.ListedDate, err = parseDate("listed_date", row["listed_date"]); err != nil {
		return nil, err
	}
	if p.SaleDate, err = parseDate("sale_date", row["sale_date"]); err != nil {
		return nil, err
	}

	purchasePrice, err := parseMoney("purchase_price", row["purchase_price"])
	if err != nil {
		return nil, err
	}
	if purchasePrice == nil {
		return nil, &ValidationError{Field: "purchase_price", Reason: "required"}
	}
	p.PurchasePrice = *purchasePrice

	if p.SalePrice, err = parseMoney("sale_price", row["sale_price"]); err != nil {
		return nil, err
	}
	if p.ShippingCost, err = parseMoney("shipping_cost", row["shipping_cost"]); err != nil {
		return nil, err
	}
	if p.HandlingFee, err = parseMoney("handling_fee", row["handling_fee"]); err != nil {
		return nil, err
	}

	switch strings.ToLower(strings.TrimSpace(row["is_archived"])) {
	case "true", "1", "yes":
		p.IsArchived = true
	}

	if s := strings.TrimSpace(row["updated_at"]); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, &ValidationError{Field: "updated_at", Reason: "must be an RFC 3339 timestamp"}
		}
		p.UpdatedAt = &t
	}

	return p, nil
}

// ToRow serializes the product into its flat row form, the dual of FromRow.
func (p *Product) ToRow() Row {
	row := Row{
		"product_no":     p.ProductNo,
		"name":           p.Name,
		"store_name":     p.StoreName,
		"purchase_date":  p.PurchaseDate.Format(dateFormat),
		"purchase_price": strconv.Itoa(p.PurchasePrice),
		"sale_status":    string(p.SaleStatus),
		"listed_date":    formatDate(p.ListedDate),
		"sale_date":      formatDate(p.SaleDate),
		"sale_price":     formatInt(p.SalePrice),
		"sales_channel":  p.SalesChannel,
		"shipping_cost":  formatInt(p.ShippingCost),
		"handling_fee":   formatInt(p.HandlingFee),
		"is_archived":    strconv.FormatBool(p.IsArchived),
		"revision":       p.Revision,
		"updated_at":     "",
	}
	if p.UpdatedAt != nil {
		row["updated_at"] = p.UpdatedAt.Format(time.RFC3339)
	}
	return row
}

// parseDate accepts an ISO YYYY-MM-DD string, returning nil for empty input.
func parseDate(field, value string) (*time.Time, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateFormat, s)
	if err != nil {
		return nil, &ValidationError{Field: field, Reason: "must be YYYY-MM-DD"}
	}
	return &t, nil
}

// parseMoney accepts a base-10 integer string, returning nil for empty
// input. Negative amounts are rejected.
func parseMoney(field, value string) (*int, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, &ValidationError{Field: field, Reason: "must be an integer"}
	}
	if n < 0 {
		return nil, &ValidationError{Field: field, Reason: "must be >= 0"}
	}
	return &n, nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateFormat)
}

func formatInt(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}
