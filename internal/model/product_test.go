package model

import (
	"errors"
	"testing"
)

func validRow() Row {
	return Row{
		"product_no":     "P00001",
		"name":           "Levi's 501",
		"store_name":     "Shimokitazawa",
		"purchase_date":  "2024-05-01",
		"purchase_price": "5000",
	}
}

func TestFromRowDefaults(t *testing.T) {
	p, err := FromRow(validRow())
	if err != nil {
		t.Fatalf("FromRow: %v", err)
	}
	if p.SaleStatus != StatusNotListed {
		t.Errorf("expected default status %q, got %q", StatusNotListed, p.SaleStatus)
	}
	if p.IsArchived {
		t.Error("expected is_archived to default to false")
	}
	if _, ok := p.Profit(); ok {
		t.Error("expected profit to be undefined without a sale price")
	}
}

func TestFromRowRejectsBadFields(t *testing.T) {
	tests := []struct {
		field string
		value string
	}{
		{"product_no", ""},
		{"name", ""},
		{"name", "   "},
		{"store_name", ""},
		{"purchase_date", ""},
		{"purchase_date", "2024/05/01"},
		{"purchase_price", ""},
		{"purchase_price", "abc"},
		{"purchase_price", "-1"},
		{"sale_status", "gone"},
		{"sale_price", "-500"},
		{"shipping_cost", "free"},
		{"handling_fee", "-1"},
		{"listed_date", "May 1"},
	}

	for _, tt := range tests {
		row := validRow()
		row[tt.field] = tt.value
		_, err := FromRow(row)
		if err == nil {
			t.Errorf("FromRow with %s=%q: expected error", tt.field, tt.value)
			continue
		}
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("FromRow with %s=%q: expected *ValidationError, got %T", tt.field, tt.value, err)
			continue
		}
		if verr.Field != tt.field {
			t.Errorf("FromRow with %s=%q: error names field %q", tt.field, tt.value, verr.Field)
		}
	}
}

func TestProfit(t *testing.T) {
	row := validRow()
	row["sale_price"] = "9000"
	row["shipping_cost"] = "700"
	p, err := FromRow(row)
	if err != nil {
		t.Fatalf("FromRow: %v", err)
	}
	profit, ok := p.Profit()
	if !ok {
		t.Fatal("expected profit to be defined")
	}
	if profit != 9000-5000-700 {
		t.Errorf("expected profit 3300, got %d", profit)
	}

	// Shipping cost defaults to zero when absent.
	row = validRow()
	row["sale_price"] = "9000"
	p, _ = FromRow(row)
	if profit, _ := p.Profit(); profit != 4000 {
		t.Errorf("expected profit 4000, got %d", profit)
	}
}

func TestRowRoundTrip(t *testing.T) {
	row := validRow()
	row["sale_status"] = string(StatusSold)
	row["listed_date"] = "2024-05-10"
	row["sale_date"] = "2024-06-02"
	row["sale_price"] = "9000"
	row["sales_channel"] = "メルカリ"
	row["shipping_cost"] = "700"
	row["handling_fee"] = "900"
	row["is_archived"] = "true"
	row["revision"] = "deadbeefdeadbeef"

	p, err := FromRow(row)
	if err != nil {
		t.Fatalf("FromRow: %v", err)
	}
	back, err := FromRow(p.ToRow())
	if err != nil {
		t.Fatalf("FromRow(ToRow): %v", err)
	}

	if back.ProductNo != p.ProductNo || back.Name != p.Name || back.StoreName != p.StoreName {
		t.Error("identity fields did not round-trip")
	}
	if !back.PurchaseDate.Equal(p.PurchaseDate) || back.PurchasePrice != p.PurchasePrice {
		t.Error("purchase fields did not round-trip")
	}
	if back.SaleStatus != p.SaleStatus || back.IsArchived != p.IsArchived {
		t.Error("status fields did not round-trip")
	}
	if *back.SalePrice != *p.SalePrice || *back.ShippingCost != *p.ShippingCost || *back.HandlingFee != *p.HandlingFee {
		t.Error("money fields did not round-trip")
	}
	if !back.ListedDate.Equal(*p.ListedDate) || !back.SaleDate.Equal(*p.SaleDate) {
		t.Error("optional dates did not round-trip")
	}
	if back.SalesChannel != p.SalesChannel {
		t.Error("sales channel did not round-trip")
	}
}

func TestValidStatus(t *testing.T) {
	tests := []struct {
		status SaleStatus
		want   bool
	}{
		{StatusNotListed, true},
		{StatusListed, true},
		{StatusSold, true},
		{"", false},
		{"archived", false},
		{"Sold", false},
	}
	for _, tt := range tests {
		if got := ValidStatus(tt.status); got != tt.want {
			t.Errorf("ValidStatus(%q) = %v, want %v", tt.status, got, tt.want)
		}
	}
}
