package store

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mtakeda/furugi/internal/logger"
	"github.com/mtakeda/furugi/internal/metrics"
	"github.com/mtakeda/furugi/internal/model"
	"github.com/mtakeda/furugi/internal/sheet"
)

// feeListSheet is the fixed name of the lookup sheet holding permitted
// sales channel values in its first column.
const feeListSheet = "手数料リスト"

// SheetRepository maps the row-oriented, human-edited worksheet into
// validated products. The sheet is shared with other editors, so the
// only write-safety mechanism is the per-row revision token; the
// repository never assumes exclusive access.
type SheetRepository struct {
	doc  sheet.Spreadsheet
	name string

	// Bound worksheet and its column map, resolved lazily on first use
	// and held for the repository's lifetime. Header rows are structure,
	// not data, so there is no need to re-resolve mid-session.
	ws   sheet.Worksheet
	cols columnMap
}

// NewSheetRepository binds a repository to one worksheet of a document.
func NewSheetRepository(doc sheet.Spreadsheet, worksheetName string) *SheetRepository {
	return &SheetRepository{doc: doc, name: worksheetName}
}

func (r *SheetRepository) worksheet(ctx context.Context) (sheet.Worksheet, columnMap, error) {
	if r.ws != nil {
		return r.ws, r.cols, nil
	}
	ws := r.doc.Worksheet(r.name)
	header, err := ws.Row(ctx, headerRow)
	if err != nil {
		return nil, nil, fmt.Errorf("reading header row: %w", err)
	}
	r.ws = ws
	r.cols = resolveColumns(header)
	return r.ws, r.cols, nil
}

// ListProducts reads every data row and reconstructs products in sheet
// order. Rows that fail validation are excluded rather than failing the
// whole listing: the sheet is human-edited and partially-invalid rows
// must not block visibility of the rest.
func (r *SheetRepository) ListProducts(ctx context.Context, includeArchived bool) ([]model.Product, error) {
	ws, cols, err := r.worksheet(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := ws.Rows(ctx)
	if err != nil {
		return nil, err
	}

	var products []model.Product
	for i := dataStartRow - 1; i < len(rows); i++ {
		rec := recordFromRow(cols, rows[i])
		if rec["product_no"] == "" {
			continue
		}
		p, err := model.FromRow(rec)
		if err != nil {
			metrics.RowsSkipped.Inc()
			logger.Logger.Warn().Int("row", i+1).Err(err).Msg("skipping invalid sheet row")
			continue
		}
		if !includeArchived && p.IsArchived {
			continue
		}
		products = append(products, *p)
	}
	return products, nil
}

// CreateProduct stores a new product. An insertable slot (a row with a
// pre-assigned product number but no name) is reused first, taking over
// its number; otherwise the next number in sequence is assigned and a
// fresh row appended. Slot discovery and the write are separate round
// trips, so two concurrent creations can race for the same slot; the
// store offers no compare-and-set to close that window.
func (r *SheetRepository) CreateProduct(ctx context.Context, payload model.Row) (*model.Product, error) {
	ws, cols, err := r.worksheet(ctx)
	if err != nil {
		return nil, err
	}

	slotRow, slotNo, hasSlot, err := r.findSlot(ctx, ws, cols)
	if err != nil {
		return nil, err
	}

	productNo := strings.TrimSpace(payload["product_no"])
	if hasSlot {
		productNo = slotNo
	} else if productNo == "" {
		productNo, err = r.nextProductNo(ctx)
		if err != nil {
			return nil, err
		}
	}

	data := model.Row{}
	maps.Copy(data, payload)
	data["product_no"] = productNo
	p, err := model.FromRow(data)
	if err != nil {
		return nil, err
	}

	var listedDate *time.Time
	if p.SaleStatus == model.StatusListed {
		listedDate = p.ListedDate
	}
	values := cellValues(cols, p, listedDate)

	var targetRow int
	if hasSlot {
		// The slot's product number cell already holds the right value;
		// only the remaining bound columns are filled in.
		if err := writeCells(ctx, ws, slotRow, values); err != nil {
			return nil, err
		}
		targetRow = slotRow
	} else {
		rowData := make([]string, cols.maxColumn())
		if c, ok := cols["product_no"]; ok {
			rowData[c-1] = productNo
		}
		for c, v := range values {
			rowData[c-1] = v
		}
		if err := ws.AppendRow(ctx, rowData); err != nil {
			return nil, err
		}
		rows, err := ws.Rows(ctx)
		if err != nil {
			return nil, err
		}
		targetRow = len(rows)
	}

	cells, err := ws.Row(ctx, targetRow)
	if err != nil {
		return nil, err
	}
	p.Revision = revisionOf(cells)
	metrics.ProductsCreated.Inc()
	return p, nil
}

// UpdateProduct applies a partial update to the product with the given
// number. The caller must present the revision observed at read time; a
// mismatch means the row changed underneath and nothing is written.
// Every bound field is written back, not just the changed ones: the
// full-row re-sync keeps stale legacy columns (such as the listed flag)
// consistent with the merged record.
func (r *SheetRepository) UpdateProduct(ctx context.Context, productNo string, updates model.Row, expectedRevision string) (*model.Product, error) {
	ws, cols, err := r.worksheet(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := ws.Rows(ctx)
	if err != nil {
		return nil, err
	}

	noCol, ok := cols["product_no"]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, productNo)
	}

	targetRow := 0
	for i := dataStartRow - 1; i < len(rows); i++ {
		if cellAt(rows[i], noCol) == productNo {
			targetRow = i + 1
			break
		}
	}
	if targetRow == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, productNo)
	}

	cells := rows[targetRow-1]
	if revisionOf(cells) != expectedRevision {
		metrics.UpdateConflicts.Inc()
		logger.Logger.Warn().Str("product_no", productNo).Msg("update rejected: row changed since read")
		return nil, fmt.Errorf("%w: %s", ErrConflict, productNo)
	}

	current, err := model.FromRow(recordFromRow(cols, cells))
	if err != nil {
		return nil, fmt.Errorf("reconstructing row %d: %w", targetRow, err)
	}

	merged := current.ToRow()
	maps.Copy(merged, updates)
	merged["product_no"] = productNo
	updated, err := model.FromRow(merged)
	if err != nil {
		// Validation failed, nothing was written.
		return nil, err
	}

	if err := writeCells(ctx, ws, targetRow, cellValues(cols, updated, updated.ListedDate)); err != nil {
		return nil, err
	}

	cells, err = ws.Row(ctx, targetRow)
	if err != nil {
		return nil, err
	}
	updated.Revision = revisionOf(cells)
	metrics.ProductsUpdated.Inc()
	return updated, nil
}

// ListSalesChannels reads the lookup sheet's first column, skipping the
// header row and deduplicating while preserving order. A missing lookup
// sheet is not an error.
func (r *SheetRepository) ListSalesChannels(ctx context.Context) ([]string, error) {
	rows, err := r.doc.Worksheet(feeListSheet).Rows(ctx)
	if err != nil {
		if sheet.IsMissingSheet(err) {
			return nil, nil
		}
		return nil, err
	}

	var channels []string
	seen := map[string]bool{}
	for i := 1; i < len(rows); i++ {
		ch := cellAt(rows[i], 1)
		if ch == "" || seen[ch] {
			continue
		}
		seen[ch] = true
		channels = append(channels, ch)
	}
	return channels, nil
}

// findSlot scans for the first data row whose product number cell is
// filled but whose name cell is empty: a pre-allocated row number with
// no data yet, eligible for reuse.
func (r *SheetRepository) findSlot(ctx context.Context, ws sheet.Worksheet, cols columnMap) (row int, productNo string, found bool, err error) {
	noCol, hasNo := cols["product_no"]
	nameCol, hasName := cols["name"]
	if !hasNo || !hasName {
		return 0, "", false, nil
	}

	rows, err := ws.Rows(ctx)
	if err != nil {
		return 0, "", false, err
	}
	for i := dataStartRow - 1; i < len(rows); i++ {
		no := cellAt(rows[i], noCol)
		name := cellAt(rows[i], nameCol)
		if no != "" && name == "" {
			return i + 1, no, true, nil
		}
	}
	return 0, "", false, nil
}

// nextProductNo computes one past the highest numeric suffix among all
// existing product numbers, archived included, formatted P + 5 digits.
func (r *SheetRepository) nextProductNo(ctx context.Context) (string, error) {
	products, err := r.ListProducts(ctx, true)
	if err != nil {
		return "", err
	}
	maxSeq := 0
	for _, p := range products {
		if seq, ok := productSeq(p.ProductNo); ok && seq > maxSeq {
			maxSeq = seq
		}
	}
	return fmt.Sprintf("P%05d", maxSeq+1), nil
}

// productSeq extracts the numeric suffix of a P-number.
func productSeq(no string) (int, bool) {
	rest, ok := strings.CutPrefix(no, "P")
	if !ok || rest == "" {
		return 0, false
	}
	seq, err := strconv.Atoi(rest)
	if err != nil || seq < 0 {
		return 0, false
	}
	return seq, true
}

// recordFromRow builds the flat record for one sheet row, normalizing
// legacy cell formats and deriving the sale status. The row's raw cells
// also produce its revision token.
func recordFromRow(cols columnMap, cells []string) model.Row {
	cell := func(field string) string {
		return cellAt(cells, cols[field])
	}

	purchasePrice := normalizeInt(cell("purchase_price"))
	if purchasePrice == "" {
		// Legacy rows sometimes leave the purchase price blank; they are
		// still worth listing.
		purchasePrice = "0"
	}
	saleDate := normalizeDate(cell("sale_date"))
	salePrice := normalizeInt(cell("sale_price"))

	archived := "false"
	if truthy(cell("archived")) {
		archived = "true"
	}

	return model.Row{
		"product_no":     cell("product_no"),
		"name":           cell("name"),
		"store_name":     cell("store_name"),
		"purchase_date":  normalizeDate(cell("purchase_date")),
		"purchase_price": purchasePrice,
		"sale_status":    string(deriveStatus(saleDate, salePrice, cell("listed_flag"))),
		"listed_date":    normalizeDate(cell("listed_date")),
		"sale_date":      saleDate,
		"sale_price":     salePrice,
		"sales_channel":  cell("sales_channel"),
		"shipping_cost":  normalizeInt(cell("shipping_cost")),
		"handling_fee":   normalizeInt(cell("handling_fee")),
		"is_archived":    archived,
		"revision":       revisionOf(cells),
	}
}

// cellValues maps bound columns to the values a product writes back.
// The product number is deliberately absent: slot rows already carry
// theirs and appends handle it separately. listedDate is passed in
// because creation only records it for listed products.
func cellValues(cols columnMap, p *model.Product, listedDate *time.Time) map[int]string {
	row := p.ToRow()
	values := map[int]string{}

	set := func(field, value string) {
		if c, ok := cols[field]; ok {
			values[c] = value
		}
	}

	set("name", p.Name)
	set("store_name", p.StoreName)
	set("purchase_date", row["purchase_date"])
	set("purchase_price", row["purchase_price"])
	listed := ""
	if listedDate != nil {
		listed = listedDate.Format("2006-01-02")
	}
	set("listed_date", listed)
	set("sale_date", row["sale_date"])
	set("sale_price", row["sale_price"])
	set("sales_channel", p.SalesChannel)
	set("shipping_cost", row["shipping_cost"])
	set("handling_fee", row["handling_fee"])

	flag := "FALSE"
	if p.SaleStatus == model.StatusListed || p.SaleStatus == model.StatusSold {
		flag = "TRUE"
	}
	set("listed_flag", flag)

	archived := "FALSE"
	if p.IsArchived {
		archived = "TRUE"
	}
	set("archived", archived)

	return values
}

// writeCells writes values cell by cell in column order.
func writeCells(ctx context.Context, ws sheet.Worksheet, row int, values map[int]string) error {
	cols := make([]int, 0, len(values))
	for c := range values {
		cols = append(cols, c)
	}
	sort.Ints(cols)
	for _, c := range cols {
		if err := ws.UpdateCell(ctx, row, c, values[c]); err != nil {
			return err
		}
	}
	return nil
}

// cellAt returns the trimmed cell at a 1-based column, tolerating short
// rows and unbound (zero) columns.
func cellAt(cells []string, col int) string {
	if col < 1 || col > len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[col-1])
}
