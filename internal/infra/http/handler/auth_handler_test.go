package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/folioworks/api/internal/config"
	"github.com/folioworks/api/pkg/jwt"
	"github.com/folioworks/api/pkg/logger"
	"github.com/folioworks/api/pkg/validator"
)

func newAuthFixture(t *testing.T) *AuthHandler {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := config.AuthConfig{
		AdminUser:         "admin",
		AdminPasswordHash: string(hash),
		CookieName:        "folio_session",
	}
	gen := jwt.NewGenerator(jwt.Config{Secret: "test-secret", TokenDuration: time.Hour})

	return NewAuthHandler(cfg, gen, validator.New(), logger.NewNop())
}

func doLogin(h *AuthHandler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Login(rec, req)
	return rec
}

func TestAuthHandler_Login(t *testing.T) {
	h := newAuthFixture(t)

	rec := doLogin(h, `{"username":"admin","password":"correct horse"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.True(t, resp.ExpiresAt.After(time.Now()))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "folio_session", cookies[0].Name)
	assert.Equal(t, resp.Token, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestAuthHandler_Login_WrongPassword(t *testing.T) {
	h := newAuthFixture(t)

	rec := doLogin(h, `{"username":"admin","password":"wrong"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Result().Cookies())
}

func TestAuthHandler_Login_WrongUsername(t *testing.T) {
	h := newAuthFixture(t)

	rec := doLogin(h, `{"username":"root","password":"correct horse"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandler_Login_MissingFields(t *testing.T) {
	h := newAuthFixture(t)

	rec := doLogin(h, `{"username":"admin"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthHandler_Login_EmptyBody(t *testing.T) {
	h := newAuthFixture(t)

	rec := doLogin(h, "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthHandler_Login_NoHashConfigured(t *testing.T) {
	cfg := config.AuthConfig{AdminUser: "admin", CookieName: "folio_session"}
	gen := jwt.NewGenerator(jwt.Config{Secret: "test-secret", TokenDuration: time.Hour})
	h := NewAuthHandler(cfg, gen, validator.New(), logger.NewNop())

	rec := doLogin(h, `{"username":"admin","password":"anything"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandler_Logout(t *testing.T) {
	h := newAuthFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	rec := httptest.NewRecorder()

	h.Logout(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "folio_session", cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Equal(t, -1, cookies[0].MaxAge)
}
