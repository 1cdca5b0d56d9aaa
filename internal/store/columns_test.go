package store

import "testing"

func TestResolveColumns(t *testing.T) {
	header := []string{"商品No", "商品名", "店舗名", "仕入れ日付", "仕入額", "出品日", "売却日", "売上金", "販売先", "送料", "手数料", "出品済"}
	cols := resolveColumns(header)

	want := map[string]int{
		"product_no":     1,
		"name":           2,
		"store_name":     3,
		"purchase_date":  4,
		"purchase_price": 5,
		"listed_date":    6,
		"sale_date":      7,
		"sale_price":     8,
		"sales_channel":  9,
		"shipping_cost":  10,
		"handling_fee":   11,
		"listed_flag":    12,
	}
	for field, idx := range want {
		if cols[field] != idx {
			t.Errorf("field %s bound to column %d, want %d", field, cols[field], idx)
		}
	}
	if _, ok := cols["archived"]; ok {
		t.Error("archived should be unbound without a matching header")
	}
}

func TestResolveColumnsNormalizesHeaders(t *testing.T) {
	cols := resolveColumns([]string{" 商品No ", "商品\n名", "店舗名\n"})
	if cols["product_no"] != 1 || cols["name"] != 2 || cols["store_name"] != 3 {
		t.Errorf("headers with whitespace/newlines not resolved: %v", cols)
	}
}

func TestResolveColumnsFirstMatchWins(t *testing.T) {
	// Both spellings of the purchase date header present: the leftmost
	// binds and the field is never rebound.
	cols := resolveColumns([]string{"仕入日付", "仕入れ日付"})
	if cols["purchase_date"] != 1 {
		t.Errorf("purchase_date bound to column %d, want 1", cols["purchase_date"])
	}
}

func TestResolveColumnsUnknownHeaders(t *testing.T) {
	cols := resolveColumns([]string{"メモ", "", "担当者"})
	if len(cols) != 0 {
		t.Errorf("expected no bindings, got %v", cols)
	}
}

func TestMaxColumn(t *testing.T) {
	if got := (columnMap{"a": 3, "b": 12, "c": 7}).maxColumn(); got != 12 {
		t.Errorf("maxColumn = %d, want 12", got)
	}
	if got := (columnMap{}).maxColumn(); got != 0 {
		t.Errorf("maxColumn of empty map = %d, want 0", got)
	}
}
