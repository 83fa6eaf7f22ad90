package middleware

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	userModel "scrap-collect/models/user"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func hmacToken(t *testing.T, sub, role string, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  sub,
		"role": role,
		"exp":  exp.Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func newTestApp(verifier *TokenVerifier, roles ...userModel.Role) *fiber.App {
	app := fiber.New()
	app.Get("/me", IsAuthenticated(verifier), RequireRoles(roles...), func(c *fiber.Ctx) error {
		caller, _ := CallerFromContext(c)
		return c.JSON(caller)
	})
	return app
}

func doGet(t *testing.T, app *fiber.App, token string) *http.Response {
	t.Helper()
	req := httptest.NewRequest("GET", "/me", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestIsAuthenticated_HMAC(t *testing.T) {
	app := newTestApp(NewTokenVerifier(testSecret, ""), userModel.RoleSeller, userModel.RoleStaff)

	resp := doGet(t, app, hmacToken(t, "seller-1", "seller", time.Now().Add(time.Hour)))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var caller userModel.Caller
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&caller))
	assert.Equal(t, "seller-1", caller.ID)
	assert.Equal(t, userModel.RoleSeller, caller.Role)
}

func TestIsAuthenticated_Rejections(t *testing.T) {
	app := newTestApp(NewTokenVerifier(testSecret, ""), userModel.RoleSeller)

	assert.Equal(t, fiber.StatusUnauthorized, doGet(t, app, "").StatusCode)
	assert.Equal(t, fiber.StatusUnauthorized, doGet(t, app, "garbage").StatusCode)
	assert.Equal(t, fiber.StatusUnauthorized,
		doGet(t, app, hmacToken(t, "seller-1", "SELLER", time.Now().Add(-time.Minute))).StatusCode)
	assert.Equal(t, fiber.StatusUnauthorized,
		doGet(t, app, hmacToken(t, "", "SELLER", time.Now().Add(time.Hour))).StatusCode)
	assert.Equal(t, fiber.StatusUnauthorized,
		doGet(t, app, hmacToken(t, "x", "GUEST", time.Now().Add(time.Hour))).StatusCode)
}

func TestRequireRoles_Forbidden(t *testing.T) {
	app := newTestApp(NewTokenVerifier(testSecret, ""), userModel.RoleStaff, userModel.RoleAdmin)

	resp := doGet(t, app, hmacToken(t, "seller-1", "SELLER", time.Now().Add(time.Hour)))
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestIsAuthenticated_RSAFromPublicKeyURL(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pemKey := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})

	fetches := 0
	keyServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches++
		_ = json.NewEncoder(w).Encode(map[string]string{"key": string(pemKey)})
	}))
	defer keyServer.Close()

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"sub":  "staff-1",
		"role": "STAFF",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString(key)
	require.NoError(t, err)

	app := newTestApp(NewTokenVerifier("", keyServer.URL), userModel.RoleStaff)
	assert.Equal(t, fiber.StatusOK, doGet(t, app, signed).StatusCode)
	assert.Equal(t, fiber.StatusOK, doGet(t, app, signed).StatusCode)
	assert.Equal(t, 1, fetches)

	// HMAC is refused when no secret is configured
	assert.Equal(t, fiber.StatusUnauthorized,
		doGet(t, app, hmacToken(t, "staff-1", "STAFF", time.Now().Add(time.Hour))).StatusCode)
}
