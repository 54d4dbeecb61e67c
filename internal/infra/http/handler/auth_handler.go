package handler

import (
	"crypto/subtle"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/folioworks/api/internal/config"
	"github.com/folioworks/api/internal/infra/http/middleware"
	"github.com/folioworks/api/pkg/apierror"
	"github.com/folioworks/api/pkg/jwt"
	"github.com/folioworks/api/pkg/logger"
	"github.com/folioworks/api/pkg/validator"
)

// AuthHandler handles dashboard login and logout.
type AuthHandler struct {
	cfg       config.AuthConfig
	generator *jwt.Generator
	validator *validator.Validator
	logger    *logger.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(cfg config.AuthConfig, gen *jwt.Generator, v *validator.Validator, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		cfg:       cfg,
		generator: gen,
		validator: v,
		logger:    log,
	}
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Username string `json:"username" validate:"required,min=1,max=100"`
	Password string `json:"password" validate:"required,min=1,max=200"`
}

// LoginResponse is the successful login payload.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Login verifies the admin credentials and issues a session token. The token
// is returned in the body and set as an httpOnly cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if apiErr := decodeJSON(w, r, 4096, &req); apiErr != nil {
		apiErr.WriteJSON(w)
		return
	}
	if err := h.validator.Validate(req); err != nil {
		apierror.ValidationFailed("Invalid login request", err).WriteJSON(w)
		return
	}

	if !h.checkCredentials(req.Username, req.Password) {
		h.logger.Warn("failed login attempt",
			"username", req.Username,
			"ip", middleware.GetClientIP(r),
			"request_id", middleware.GetRequestID(r.Context()),
		)
		apierror.Unauthorized("Invalid credentials").WriteJSON(w)
		return
	}

	token, expiresAt, err := h.generator.Generate(req.Username, "admin")
	if err != nil {
		h.logger.Error("failed to generate session token", "error", err)
		apierror.InternalError(err).WriteJSON(w)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		Secure:   h.cfg.CookieSecure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSONResponse(w, http.StatusOK, LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
	})
}

// Logout clears the session cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		Secure:   h.cfg.CookieSecure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSONResponse(w, http.StatusOK, map[string]any{"success": true})
}

// checkCredentials compares the submitted credentials against the configured
// admin account. The username check is constant-time; the password is a
// bcrypt hash.
func (h *AuthHandler) checkCredentials(username, password string) bool {
	if h.cfg.AdminPasswordHash == "" {
		return false
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(h.cfg.AdminUser)) == 1

	err := bcrypt.CompareHashAndPassword([]byte(h.cfg.AdminPasswordHash), []byte(password))

	return userOK && err == nil
}
