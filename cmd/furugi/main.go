package main

import (
	"context"
	"crypto/rand"
	"flag"
	"fmt"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/mtakeda/furugi/internal/api"
	"github.com/mtakeda/furugi/internal/logger"
	"github.com/mtakeda/furugi/internal/sheet"
	"github.com/mtakeda/furugi/internal/store"
)

const defaultWorksheet = "商品管理シート"

func main() {
	fs := flag.NewFlagSet("furugi", flag.ContinueOnError)

	var addr string
	fs.StringVar(&addr, "addr", ":8080", "")
	fs.StringVar(&addr, "a", ":8080", "")

	var envFile string
	fs.StringVar(&envFile, "env", ".env", "")
	fs.StringVar(&envFile, "e", ".env", "")

	var logLevel string
	fs.StringVar(&logLevel, "log-level", "info", "")
	fs.StringVar(&logLevel, "l", "info", "")

	var dev bool
	fs.BoolVar(&dev, "dev", false, "")

	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: furugi [flags]

Flags:
  -a, -addr <host:port>   listen address (default: :8080)
  -e, -env <path>         env file to load (default: .env)
  -l, -log-level <level>  log level: debug, info, warn, error (default: info)
  -dev                    in-memory repository, pretty logs, no spreadsheet
  -h, -help               show this help and exit

Environment:
  SPREADSHEET_ID                  id of the shared spreadsheet (required unless -dev)
  WORKSHEET_NAME                  product worksheet name (default: 商品管理シート)
  GOOGLE_APPLICATION_CREDENTIALS  service account credentials file
  ADMIN_USER                      operator username (default: admin)
  ADMIN_PASSWORD_HASH             bcrypt hash of the operator password
  JWT_SECRET                      token signing secret
  ADDR, LOG_LEVEL                 fallbacks for -addr and -log-level
`)
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected argument: %s\n", fs.Arg(0))
		fs.Usage()
		os.Exit(1)
	}

	// Missing env file is fine, environment variables still apply.
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "error: loading %s: %v\n", envFile, err)
		os.Exit(1)
	}

	// Flags win over env; env applies when a flag was left at its default.
	if addr == ":8080" {
		if v := os.Getenv("ADDR"); v != "" {
			addr = v
		}
	}
	if logLevel == "info" {
		if v := os.Getenv("LOG_LEVEL"); v != "" {
			logLevel = v
		}
	}

	logger.Init("furugi", dev)
	logger.SetLevel(logLevel)

	repo, err := buildRepository(dev)
	if err != nil {
		logger.Logger.Error().Err(err).Msg("failed to open spreadsheet")
		os.Exit(1)
	}

	cfg, err := buildAPIConfig()
	if err != nil {
		logger.Logger.Error().Err(err).Msg("failed to build config")
		os.Exit(1)
	}

	server := &http.Server{
		Addr:              addr,
		Handler:           api.NewRouter(repo, cfg),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		logger.Logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Logger.Error().Err(err).Msg("server forced to shutdown")
		}
	}()

	logger.Logger.Info().Str("addr", addr).Bool("dev", dev).Msg("server started")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Logger.Error().Err(err).Msg("server error")
		os.Exit(1)
	}

	logger.Logger.Info().Msg("server stopped")
}

func buildRepository(dev bool) (store.Repository, error) {
	if dev {
		logger.Logger.Warn().Msg("dev mode: using in-memory repository")
		repo := store.NewMemoryRepository()
		repo.Channels = []string{"メルカリ", "ヤフオク", "ラクマ"}
		return repo, nil
	}

	spreadsheetID := os.Getenv("SPREADSHEET_ID")
	if spreadsheetID == "" {
		return nil, fmt.Errorf("SPREADSHEET_ID is not set")
	}

	worksheet := os.Getenv("WORKSHEET_NAME")
	if worksheet == "" {
		worksheet = defaultWorksheet
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	doc, err := sheet.OpenGoogle(ctx, spreadsheetID, os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	if err != nil {
		return nil, fmt.Errorf("opening spreadsheet: %w", err)
	}

	logger.Logger.Info().Str("spreadsheet", spreadsheetID).Str("worksheet", worksheet).Msg("spreadsheet ready")
	return store.NewSheetRepository(doc, worksheet), nil
}

// buildAPIConfig reads the operator account and token secret from the
// environment. When the password hash or secret is missing, one-off
// values are generated and printed so a fresh checkout still starts.
func buildAPIConfig() (api.Config, error) {
	cfg := api.Config{
		Username:     os.Getenv("ADMIN_USER"),
		PasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
	}
	if cfg.Username == "" {
		cfg.Username = "admin"
	}

	if cfg.PasswordHash == "" {
		password, err := generatePassword(16)
		if err != nil {
			return api.Config{}, fmt.Errorf("generating password: %w", err)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return api.Config{}, fmt.Errorf("hashing password: %w", err)
		}
		cfg.PasswordHash = string(hash)

		fmt.Printf("Operator account for this run:\n")
		fmt.Printf("  Username: %s\n", cfg.Username)
		fmt.Printf("  Password: %s\n", password)
		fmt.Println("Set ADMIN_PASSWORD_HASH to keep a fixed password.")
	}

	if cfg.JWTSecret == "" {
		secret, err := generatePassword(32)
		if err != nil {
			return api.Config{}, fmt.Errorf("generating token secret: %w", err)
		}
		cfg.JWTSecret = secret
		logger.Logger.Warn().Msg("JWT_SECRET not set, tokens will not survive a restart")
	}

	return cfg, nil
}

// generatePassword creates a random password of the given length.
func generatePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}
