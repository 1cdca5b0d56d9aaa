package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mtakeda/furugi/internal/store"
)

// Config carries the settings the API surface needs.
type Config struct {
	Username     string
	PasswordHash string
	JWTSecret    string
}

// NewRouter wires up all API routes.
func NewRouter(repo store.Repository, cfg Config) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{
		Username:     cfg.Username,
		PasswordHash: cfg.PasswordHash,
		JWTSecret:    cfg.JWTSecret,
	}
	products := &ProductsHandler{Repo: repo}
	channels := &ChannelsHandler{Repo: repo}

	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.Handle("GET /metrics", promhttp.Handler())

	requireAuth := AuthMiddleware(cfg.JWTSecret)
	mux.Handle("GET /api/products", requireAuth(http.HandlerFunc(products.List)))
	mux.Handle("POST /api/products", requireAuth(http.HandlerFunc(products.Create)))
	mux.Handle("PUT /api/products/{product_no}", requireAuth(http.HandlerFunc(products.Update)))
	mux.Handle("GET /api/sales-channels", requireAuth(http.HandlerFunc(channels.List)))

	return LoggingMiddleware(mux)
}
