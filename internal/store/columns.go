package store

import (
	"slices"
	"strings"
)

// Sheet layout convention: row 3 holds the header labels, rows 1-4 are
// reserved for title material, data starts at row 5.
const (
	headerRow    = 3
	dataStartRow = 5
)

// fieldAlias binds a logical field to the header labels it may appear
// under. Several spellings exist because the sheet predates this
// program. Order matters only within one header cell comparison; across
// the header the leftmost matching column wins.
type fieldAlias struct {
	field   string
	headers []string
}

// fieldAliases is the declarative alias table. New layouts are handled
// by extending this table, not the resolver.
var fieldAliases = []fieldAlias{
	{"product_no", []string{"商品No"}},
	{"name", []string{"商品名"}},
	{"store_name", []string{"店舗名"}},
	{"purchase_date", []string{"仕入れ日付", "仕入日付"}},
	{"purchase_price", []string{"仕入額", "仕入れ額"}},
	{"listed_date", []string{"出品日"}},
	{"sale_date", []string{"売却日"}},
	{"sale_price", []string{"売上金"}},
	{"sales_channel", []string{"販売先"}},
	{"shipping_cost", []string{"送料"}},
	{"handling_fee", []string{"手数料"}},
	{"listed_flag", []string{"出品済"}},
	{"archived", []string{"アーカイブ"}},
}

// columnMap maps a logical field to its 1-based column index. Fields
// with no matching header are absent: reads yield empty values and
// writes are skipped.
type columnMap map[string]int

// resolveColumns matches the header row against the alias table. Header
// text is compared after stripping embedded newlines and surrounding
// whitespace. A field bound to a column is never rebound by a later
// column that also matches.
func resolveColumns(header []string) columnMap {
	cols := columnMap{}
	for idx, raw := range header {
		h := strings.TrimSpace(strings.ReplaceAll(raw, "\n", ""))
		if h == "" {
			continue
		}
		for _, fa := range fieldAliases {
			if _, bound := cols[fa.field]; bound {
				continue
			}
			if slices.Contains(fa.headers, h) {
				cols[fa.field] = idx + 1
				break
			}
		}
	}
	return cols
}

// maxColumn returns the highest bound column index.
func (c columnMap) maxColumn() int {
	max := 0
	for _, idx := range c {
		if idx > max {
			max = idx
		}
	}
	return max
}
