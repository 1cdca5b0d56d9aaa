package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/mtakeda/furugi/internal/store"
)

const testJWTSecret = "test-secret"

func setupTestServer(t *testing.T) (*httptest.Server, string, *store.MemoryRepository) {
	t.Helper()

	repo := store.NewMemoryRepository()
	repo.Channels = []string{"メルカリ", "ヤフオク"}

	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	router := NewRouter(repo, Config{
		Username:     "operator",
		PasswordHash: string(hash),
		JWTSecret:    testJWTSecret,
	})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	body, _ := json.Marshal(map[string]string{"username": "operator", "password": "password"})
	resp, err := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed: %d", resp.StatusCode)
	}

	var loginResp map[string]string
	json.NewDecoder(resp.Body).Decode(&loginResp)
	token := loginResp["token"]
	if token == "" {
		t.Fatal("empty token from login")
	}

	return server, token, repo
}

func authRequest(method, url, token string, body any) (*http.Request, error) {
	var bodyReader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(data)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func TestLoginEndpoint(t *testing.T) {
	server, _, _ := setupTestServer(t)

	body, _ := json.Marshal(map[string]string{"username": "operator", "password": "wrong"})
	resp, _ := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad password, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestUnauthorizedRequests(t *testing.T) {
	server, _, _ := setupTestServer(t)

	resp, _ := http.Get(server.URL + "/api/products")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	req, _ := authRequest("GET", server.URL+"/api/products", "not-a-token", nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 with bad token, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestProductsAPIFlow(t *testing.T) {
	server, token, _ := setupTestServer(t)

	// Create product.
	req, _ := authRequest("POST", server.URL+"/api/products", token, map[string]any{
		"name":           "デニムジャケット",
		"store_name":     "セカンドストリート",
		"purchase_date":  "2025-04-01",
		"purchase_price": 3000,
	})
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var created productResponse
	json.NewDecoder(resp.Body).Decode(&created)
	resp.Body.Close()

	if created.ProductNo != "P00001" {
		t.Errorf("expected P00001, got %q", created.ProductNo)
	}
	if created.SaleStatus != "not_listed" {
		t.Errorf("expected not_listed, got %q", created.SaleStatus)
	}
	if created.Revision == "" {
		t.Error("expected a revision token")
	}

	// List products.
	req, _ = authRequest("GET", server.URL+"/api/products", token, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var products []productResponse
	json.NewDecoder(resp.Body).Decode(&products)
	resp.Body.Close()
	if len(products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(products))
	}

	// Mark it sold.
	req, _ = authRequest("PUT", server.URL+"/api/products/"+created.ProductNo, token, map[string]any{
		"expected_revision": created.Revision,
		"sale_status":       "sold",
		"sale_date":         "2025-05-10",
		"sale_price":        9000,
		"sales_channel":     "メルカリ",
		"shipping_cost":     700,
		"handling_fee":      900,
	})
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var updated productResponse
	json.NewDecoder(resp.Body).Decode(&updated)
	resp.Body.Close()

	if updated.SaleStatus != "sold" {
		t.Errorf("expected sold, got %q", updated.SaleStatus)
	}
	if updated.Profit == nil || *updated.Profit != 5300 {
		t.Errorf("expected profit 5300, got %v", updated.Profit)
	}
	if updated.Revision == created.Revision {
		t.Error("revision should change after update")
	}

	// Update with the stale revision must conflict.
	req, _ = authRequest("PUT", server.URL+"/api/products/"+created.ProductNo, token, map[string]any{
		"expected_revision": created.Revision,
		"name":              "別の名前",
	})
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 for stale revision, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestProductValidationErrors(t *testing.T) {
	server, token, _ := setupTestServer(t)

	req, _ := authRequest("POST", server.URL+"/api/products", token, map[string]any{
		"store_name":     "ブックオフ",
		"purchase_date":  "2025-04-01",
		"purchase_price": 1200,
	})
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for missing name, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	req, _ = authRequest("POST", server.URL+"/api/products", token, map[string]any{
		"name":           "シャツ",
		"store_name":     "ブックオフ",
		"purchase_date":  "04/01/2025",
		"purchase_price": 1200,
	})
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for bad date, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestUpdateMissingProduct(t *testing.T) {
	server, token, _ := setupTestServer(t)

	req, _ := authRequest("PUT", server.URL+"/api/products/P09999", token, map[string]any{
		"expected_revision": "whatever",
		"name":              "nothing",
	})
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestSalesChannelsEndpoint(t *testing.T) {
	server, token, _ := setupTestServer(t)

	req, _ := authRequest("GET", server.URL+"/api/sales-channels", token, nil)
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var channels []string
	json.NewDecoder(resp.Body).Decode(&channels)
	resp.Body.Close()

	if len(channels) != 2 || channels[0] != "メルカリ" {
		t.Errorf("unexpected channels: %v", channels)
	}
}

func TestListFiltersAndSorting(t *testing.T) {
	server, token, _ := setupTestServer(t)

	seed := []map[string]any{
		{"name": "コート", "store_name": "A", "purchase_date": "2025-01-10", "purchase_price": 12000},
		{"name": "シャツ", "store_name": "B", "purchase_date": "2025-03-05", "purchase_price": 800,
			"sale_status": "listed", "listed_date": "2025-03-06"},
		{"name": "帽子", "store_name": "A", "purchase_date": "2025-02-01", "purchase_price": 500},
	}
	for _, payload := range seed {
		req, _ := authRequest("POST", server.URL+"/api/products", token, payload)
		resp, _ := http.DefaultClient.Do(req)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("seed create failed: %d", resp.StatusCode)
		}
		resp.Body.Close()
	}

	get := func(query string) []productResponse {
		t.Helper()
		req, _ := authRequest("GET", server.URL+"/api/products"+query, token, nil)
		resp, _ := http.DefaultClient.Do(req)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("list failed: %d", resp.StatusCode)
		}
		var products []productResponse
		json.NewDecoder(resp.Body).Decode(&products)
		resp.Body.Close()
		return products
	}

	byStore := get("?store_name=A")
	if len(byStore) != 2 {
		t.Errorf("expected 2 products from store A, got %d", len(byStore))
	}

	byKeyword := get("?q=シャツ")
	if len(byKeyword) != 1 || byKeyword[0].Name != "シャツ" {
		t.Errorf("unexpected keyword result: %v", byKeyword)
	}

	highOnly := get("?importance=high")
	if len(highOnly) != 1 || highOnly[0].Name != "コート" {
		t.Errorf("unexpected high-importance result: %v", highOnly)
	}

	byPrice := get("?sort=purchase_price_desc")
	if len(byPrice) != 3 || byPrice[0].Name != "コート" || byPrice[2].Name != "帽子" {
		t.Errorf("unexpected price ordering: %v", byPrice)
	}

	byDate := get("?sort=purchase_date_asc")
	if len(byDate) != 3 || byDate[0].Name != "コート" || byDate[1].Name != "帽子" {
		t.Errorf("unexpected date ordering: %v", byDate)
	}
}
