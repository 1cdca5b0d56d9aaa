package api

import (
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/mtakeda/furugi/internal/auth"
	"github.com/mtakeda/furugi/internal/logger"
)

// AuthHandler handles authentication endpoints. There is a single
// operator account whose bcrypt hash comes from configuration; user
// management has no storage of its own.
type AuthHandler struct {
	Username     string
	PasswordHash string
	JWTSecret    string
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Username == "" || req.Password == "" {
		jsonError(w, http.StatusBadRequest, "username and password required")
		return
	}

	if req.Username != h.Username ||
		bcrypt.CompareHashAndPassword([]byte(h.PasswordHash), []byte(req.Password)) != nil {
		logger.Logger.Warn().Str("username", req.Username).Str("remote", r.RemoteAddr).Msg("login failed")
		jsonError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := auth.GenerateToken(h.JWTSecret, req.Username)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	logger.Logger.Info().Str("username", req.Username).Msg("operator logged in")
	jsonResponse(w, http.StatusOK, loginResponse{Token: token})
}
