package store

import (
	"testing"

	"github.com/mtakeda/furugi/internal/model"
)

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		name       string
		saleDate   string
		salePrice  string
		listedFlag string
		want       model.SaleStatus
	}{
		{"sale date wins over flag", "2024-06-02", "", "false", model.StatusSold},
		{"positive sale price means sold", "", "9000", "", model.StatusSold},
		{"zero sale price is not a sale", "", "0", "", model.StatusNotListed},
		{"affirmative flag means listed", "", "", "出品済", model.StatusListed},
		{"ascii flag", "", "", "TRUE", model.StatusListed},
		{"everything empty", "", "", "", model.StatusNotListed},
		{"negative flag", "", "", "no", model.StatusNotListed},
		{"sale date beats listed flag", "2024-06-02", "", "出品済", model.StatusSold},
	}
	for _, tt := range tests {
		if got := deriveStatus(tt.saleDate, tt.salePrice, tt.listedFlag); got != tt.want {
			t.Errorf("%s: deriveStatus(%q, %q, %q) = %q, want %q",
				tt.name, tt.saleDate, tt.salePrice, tt.listedFlag, got, tt.want)
		}
	}
}
