// Package auth handles the single admin login that unlocks the admin API.
package auth

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"tourdesk/middleware"
	"tourdesk/utils"
)

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Handler checks the configured admin account and issues tokens.
type Handler struct {
	user string
	hash []byte
	auth *middleware.Auth
	log  *zap.Logger
}

// NewHandler takes the admin username and its bcrypt hash. An empty hash
// disables login entirely.
func NewHandler(user, passwordHash string, a *middleware.Auth, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{user: user, hash: []byte(passwordHash), auth: a, log: log.Named("auth")}
}

// HashPassword is used by the CLI to produce ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(h), err
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var creds Credentials
	if err := utils.DecodeJSON(r, &creds); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if len(h.hash) == 0 {
		utils.RespondWithError(w, http.StatusServiceUnavailable, "Admin login is not configured")
		return
	}

	userOK := subtle.ConstantTimeCompare([]byte(creds.Username), []byte(h.user)) == 1
	// bcrypt runs even when the username is wrong.
	passErr := bcrypt.CompareHashAndPassword(h.hash, []byte(creds.Password))
	if !userOK || passErr != nil {
		h.log.Warn("admin login rejected", zap.String("username", creds.Username), zap.String("remote", utils.ClientIP(r, nil)))
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	token, exp, err := h.auth.IssueToken(h.user)
	if err != nil {
		h.log.Error("sign token", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}
	h.log.Info("admin login", zap.String("username", h.user))
	utils.RespondWithJSON(w, http.StatusOK, TokenResponse{Token: token, ExpiresAt: exp})
}
