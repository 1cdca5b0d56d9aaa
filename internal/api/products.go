package api

import (
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/mtakeda/furugi/internal/logger"
	"github.com/mtakeda/furugi/internal/model"
	"github.com/mtakeda/furugi/internal/store"
)

// ProductsHandler handles product endpoints over the repository contract.
type ProductsHandler struct {
	Repo store.Repository
}

// Importance labels shown in listings.
const (
	importanceHigh   = "high"
	importanceMedium = "medium"
	importanceLow    = "low"
)

type createProductRequest struct {
	Name          string `json:"name"`
	StoreName     string `json:"store_name"`
	PurchaseDate  string `json:"purchase_date"`
	PurchasePrice *int   `json:"purchase_price"`
	SaleStatus    string `json:"sale_status"`
	ListedDate    string `json:"listed_date"`
	SaleDate      string `json:"sale_date"`
	SalePrice     *int   `json:"sale_price"`
	SalesChannel  string `json:"sales_channel"`
	ShippingCost  *int   `json:"shipping_cost"`
	HandlingFee   *int   `json:"handling_fee"`
}

func (req *createProductRequest) toRow() model.Row {
	row := model.Row{
		"name":          req.Name,
		"store_name":    req.StoreName,
		"purchase_date": req.PurchaseDate,
		"sale_status":   req.SaleStatus,
		"listed_date":   req.ListedDate,
		"sale_date":     req.SaleDate,
		"sales_channel": req.SalesChannel,
	}
	setInt(row, "purchase_price", req.PurchasePrice)
	setInt(row, "sale_price", req.SalePrice)
	setInt(row, "shipping_cost", req.ShippingCost)
	setInt(row, "handling_fee", req.HandlingFee)
	return row
}

type updateProductRequest struct {
	ExpectedRevision string `json:"expected_revision"`

	Name          *string `json:"name"`
	StoreName     *string `json:"store_name"`
	PurchaseDate  *string `json:"purchase_date"`
	PurchasePrice *int    `json:"purchase_price"`
	SaleStatus    *string `json:"sale_status"`
	ListedDate    *string `json:"listed_date"`
	SaleDate      *string `json:"sale_date"`
	SalePrice     *int    `json:"sale_price"`
	SalesChannel  *string `json:"sales_channel"`
	ShippingCost  *int    `json:"shipping_cost"`
	HandlingFee   *int    `json:"handling_fee"`
	IsArchived    *bool   `json:"is_archived"`
}

// toRow keeps only the fields the caller actually sent, so untouched
// fields survive the repository's merge.
func (req *updateProductRequest) toRow() model.Row {
	row := model.Row{}
	setStr := func(key string, v *string) {
		if v != nil {
			row[key] = *v
		}
	}
	setStr("name", req.Name)
	setStr("store_name", req.StoreName)
	setStr("purchase_date", req.PurchaseDate)
	setStr("sale_status", req.SaleStatus)
	setStr("listed_date", req.ListedDate)
	setStr("sale_date", req.SaleDate)
	setStr("sales_channel", req.SalesChannel)
	setInt(row, "purchase_price", req.PurchasePrice)
	setInt(row, "sale_price", req.SalePrice)
	setInt(row, "shipping_cost", req.ShippingCost)
	setInt(row, "handling_fee", req.HandlingFee)
	if req.IsArchived != nil {
		row["is_archived"] = strconv.FormatBool(*req.IsArchived)
	}
	return row
}

func setInt(row model.Row, key string, v *int) {
	if v != nil {
		row[key] = strconv.Itoa(*v)
	}
}

type productResponse struct {
	ProductNo     string `json:"product_no"`
	Name          string `json:"name"`
	StoreName     string `json:"store_name"`
	PurchaseDate  string `json:"purchase_date"`
	PurchasePrice int    `json:"purchase_price"`
	SaleStatus    string `json:"sale_status"`
	ListedDate    string `json:"listed_date,omitempty"`
	SaleDate      string `json:"sale_date,omitempty"`
	SalePrice     *int   `json:"sale_price,omitempty"`
	SalesChannel  string `json:"sales_channel,omitempty"`
	ShippingCost  *int   `json:"shipping_cost,omitempty"`
	HandlingFee   *int   `json:"handling_fee,omitempty"`
	Profit        *int   `json:"profit,omitempty"`
	Importance    string `json:"importance"`
	IsArchived    bool   `json:"is_archived"`
	Revision      string `json:"revision"`
	UpdatedAt     string `json:"updated_at,omitempty"`
}

func toProductResponse(p model.Product) productResponse {
	row := p.ToRow()
	resp := productResponse{
		ProductNo:     p.ProductNo,
		Name:          p.Name,
		StoreName:     p.StoreName,
		PurchaseDate:  row["purchase_date"],
		PurchasePrice: p.PurchasePrice,
		SaleStatus:    string(p.SaleStatus),
		ListedDate:    row["listed_date"],
		SaleDate:      row["sale_date"],
		SalePrice:     p.SalePrice,
		SalesChannel:  p.SalesChannel,
		ShippingCost:  p.ShippingCost,
		HandlingFee:   p.HandlingFee,
		Importance:    importanceOf(p),
		IsArchived:    p.IsArchived,
		Revision:      p.Revision,
		UpdatedAt:     row["updated_at"],
	}
	if profit, ok := p.Profit(); ok {
		resp.Profit = &profit
	}
	return resp
}

// importanceOf labels a product for triage: expensive purchases first,
// then whatever is currently listed.
func importanceOf(p model.Product) string {
	if p.PurchasePrice >= 10000 {
		return importanceHigh
	}
	if p.SaleStatus == model.StatusListed {
		return importanceMedium
	}
	return importanceLow
}

// List handles GET /api/products.
func (h *ProductsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	includeArchived := q.Get("include_archived") == "true"

	products, err := h.Repo.ListProducts(r.Context(), includeArchived)
	if err != nil {
		logger.Logger.Error().Err(err).Msg("listing products")
		jsonError(w, http.StatusBadGateway, "failed to list products")
		return
	}

	products = filterProducts(products, listFilters{
		keyword:    q.Get("q"),
		saleStatus: q.Get("sale_status"),
		storeName:  q.Get("store_name"),
		channel:    q.Get("sales_channel"),
		importance: q.Get("importance"),
	})
	sortProducts(products, q.Get("sort"))

	resp := make([]productResponse, 0, len(products))
	for _, p := range products {
		resp = append(resp, toProductResponse(p))
	}
	jsonResponse(w, http.StatusOK, resp)
}

// Create handles POST /api/products.
func (h *ProductsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.Repo.CreateProduct(r.Context(), req.toRow())
	if err != nil {
		writeRepoError(w, err, "creating product")
		return
	}

	audit := logger.Audit()
	audit.Info().
		Str("request_id", RequestID(r.Context())).
		Str("product_no", p.ProductNo).
		Str("name", p.Name).
		Msg("product created")
	jsonResponse(w, http.StatusCreated, toProductResponse(*p))
}

// Update handles PUT /api/products/{product_no}.
func (h *ProductsHandler) Update(w http.ResponseWriter, r *http.Request) {
	productNo := r.PathValue("product_no")
	if productNo == "" {
		jsonError(w, http.StatusBadRequest, "product number required")
		return
	}

	var req updateProductRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ExpectedRevision == "" {
		jsonError(w, http.StatusBadRequest, "expected_revision required")
		return
	}

	p, err := h.Repo.UpdateProduct(r.Context(), productNo, req.toRow(), req.ExpectedRevision)
	if err != nil {
		writeRepoError(w, err, "updating product")
		return
	}

	audit := logger.Audit()
	audit.Info().
		Str("request_id", RequestID(r.Context())).
		Str("product_no", p.ProductNo).
		Msg("product updated")
	jsonResponse(w, http.StatusOK, toProductResponse(*p))
}

// writeRepoError maps repository failures onto HTTP statuses. Conflicts
// get their own status so clients can prompt a reload-and-retry instead
// of treating them as hard failures.
func writeRepoError(w http.ResponseWriter, err error, action string) {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		jsonError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, store.ErrNotFound):
		jsonError(w, http.StatusNotFound, "product not found")
	case errors.Is(err, store.ErrConflict):
		jsonError(w, http.StatusConflict, "external update detected, reload and retry")
	default:
		logger.Logger.Error().Err(err).Msg(action)
		jsonError(w, http.StatusBadGateway, "store request failed")
	}
}

type listFilters struct {
	keyword    string
	saleStatus string
	storeName  string
	channel    string
	importance string
}

func filterProducts(products []model.Product, f listFilters) []model.Product {
	keyword := strings.ToLower(strings.TrimSpace(f.keyword))

	filtered := products[:0]
	for _, p := range products {
		if f.saleStatus != "" && string(p.SaleStatus) != f.saleStatus {
			continue
		}
		if f.storeName != "" && p.StoreName != f.storeName {
			continue
		}
		if f.channel != "" && p.SalesChannel != f.channel {
			continue
		}
		if f.importance != "" && importanceOf(p) != f.importance {
			continue
		}
		if keyword != "" {
			haystack := strings.ToLower(strings.Join([]string{
				p.ProductNo, p.Name, p.StoreName, p.SalesChannel,
			}, " "))
			if !strings.Contains(haystack, keyword) {
				continue
			}
		}
		filtered = append(filtered, p)
	}
	return filtered
}

// statusRank orders statuses through the product lifecycle.
func statusRank(s model.SaleStatus) int {
	switch s {
	case model.StatusNotListed:
		return 0
	case model.StatusListed:
		return 1
	case model.StatusSold:
		return 2
	}
	return 99
}

func sortProducts(products []model.Product, rule string) {
	switch rule {
	case "purchase_date_desc":
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].PurchaseDate.After(products[j].PurchaseDate)
		})
	case "purchase_date_asc":
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].PurchaseDate.Before(products[j].PurchaseDate)
		})
	case "purchase_price_desc":
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].PurchasePrice > products[j].PurchasePrice
		})
	case "purchase_price_asc":
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].PurchasePrice < products[j].PurchasePrice
		})
	case "sale_status":
		sort.SliceStable(products, func(i, j int) bool {
			return statusRank(products[i].SaleStatus) < statusRank(products[j].SaleStatus)
		})
	case "", "product_no":
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].ProductNo < products[j].ProductNo
		})
	}
}
