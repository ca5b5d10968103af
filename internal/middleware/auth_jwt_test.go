package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tiendamontana/internal/config"
	"tiendamontana/internal/middleware"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(secret))
	assert.NoError(t, err)
	return signed
}

func doRequest(mw echo.MiddlewareFunc, authz string) (*httptest.ResponseRecorder, echo.Context) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	_ = handler(c)
	return rec, c
}

func TestAuthJWT_ValidToken(t *testing.T) {
	cfg := config.Config{JWTSecret: testSecret}
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub":  "7",
		"role": "USER",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	rec, c := doRequest(middleware.AuthJWT(cfg), "Bearer "+token)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(7), c.Get(middleware.CtxUserIDKey))
	assert.Equal(t, "USER", c.Get(middleware.CtxUserRoleKey))
}

// subが数値claimでも通る
func TestAuthJWT_NumericSub(t *testing.T) {
	cfg := config.Config{JWTSecret: testSecret}
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub":  7,
		"role": "ADMIN",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	rec, c := doRequest(middleware.AuthJWT(cfg), "Bearer "+token)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(7), c.Get(middleware.CtxUserIDKey))
}

func TestAuthJWT_MissingHeader(t *testing.T) {
	cfg := config.Config{JWTSecret: testSecret}

	rec, _ := doRequest(middleware.AuthJWT(cfg), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_WrongSecret(t *testing.T) {
	cfg := config.Config{JWTSecret: testSecret}
	token := signToken(t, "other-secret", jwt.MapClaims{
		"sub":  "7",
		"role": "USER",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	rec, _ := doRequest(middleware.AuthJWT(cfg), "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_ExpiredToken(t *testing.T) {
	cfg := config.Config{JWTSecret: testSecret}
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub":  "7",
		"role": "USER",
		"exp":  time.Now().Add(-time.Hour).Unix(),
	})

	rec, _ := doRequest(middleware.AuthJWT(cfg), "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_MissingRole(t *testing.T) {
	cfg := config.Config{JWTSecret: testSecret}
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub": "7",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	rec, _ := doRequest(middleware.AuthJWT(cfg), "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// ゲストはトークンなしで通る
func TestOptionalAuthJWT_GuestPassthrough(t *testing.T) {
	cfg := config.Config{JWTSecret: testSecret}

	rec, c := doRequest(middleware.OptionalAuthJWT(cfg), "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, c.Get(middleware.CtxUserIDKey))
}

// トークンが付いているのに壊れていたら401
func TestOptionalAuthJWT_BrokenTokenRejected(t *testing.T) {
	cfg := config.Config{JWTSecret: testSecret}

	rec, _ := doRequest(middleware.OptionalAuthJWT(cfg), "Bearer not.a.token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRoleGuard_AllowsAdmin(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.CtxUserRoleKey, "ADMIN")

	handler := middleware.AdminRoleGuard()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	_ = handler(c)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminRoleGuard_RejectsUser(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.CtxUserRoleKey, "USER")

	handler := middleware.AdminRoleGuard()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	_ = handler(c)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminRoleGuard_RejectsMissingRole(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := middleware.AdminRoleGuard()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	_ = handler(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
