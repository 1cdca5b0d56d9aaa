package store

import (
	"strconv"

	"github.com/mtakeda/furugi/internal/model"
)

// deriveStatus infers the sale status from legacy row signals, since
// the sheet has no explicit status column. Precedence: a sale date or a
// positive sale price means sold; otherwise an affirmative listed flag
// means listed; otherwise not listed. saleDate and salePrice must
// already be normalized.
func deriveStatus(saleDate, salePrice, listedFlag string) model.SaleStatus {
	if saleDate != "" {
		return model.StatusSold
	}
	if n, err := strconv.Atoi(salePrice); err == nil && n > 0 {
		return model.StatusSold
	}
	if truthy(listedFlag) {
		return model.StatusListed
	}
	return model.StatusNotListed
}
