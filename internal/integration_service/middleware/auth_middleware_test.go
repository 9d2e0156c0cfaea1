package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAccessSecret = "test-access-secret"

func signTestToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func runAuthRequest(t *testing.T, authHeader string) (*httptest.ResponseRecorder, *AuthenticatedUser) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	var captured *AuthenticatedUser
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user, ok := r.Context().Value(AuthenticatedUserContextKey).(AuthenticatedUser); ok {
			captured = &user
		}
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rr := httptest.NewRecorder()
	AuthMiddleware(testAccessSecret, logger)(next).ServeHTTP(rr, req)
	return rr, captured
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	token := signTestToken(t, testAccessSecret, jwt.MapClaims{
		"sub":   "user-1",
		"email": "ops@fleetease.example",
		"role":  "admin",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	rr, user := runAuthRequest(t, "Bearer "+token)
	assert.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, user)
	assert.Equal(t, "user-1", user.ID)
	assert.Equal(t, "ops@fleetease.example", user.Email)
	assert.Equal(t, "admin", user.Role)
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	rr, user := runAuthRequest(t, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Nil(t, user)
}

func TestAuthMiddleware_MalformedHeader(t *testing.T) {
	rr, user := runAuthRequest(t, "Token abc123")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Nil(t, user)
}

func TestAuthMiddleware_WrongSecret(t *testing.T) {
	token := signTestToken(t, "some-other-secret", jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	rr, user := runAuthRequest(t, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Nil(t, user)
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	token := signTestToken(t, testAccessSecret, jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	rr, user := runAuthRequest(t, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Nil(t, user)
}
