package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, key string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return token
}

func TestJwtAuthenticate(t *testing.T) {
	a, err := NewJwtAuthenticator("secret")
	require.NoError(t, err)

	user, err := a.Authenticate(signToken(t, "secret", jwt.MapClaims{"sub": "asha@example.com", "role": "customer"}))
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", user.ID)
	assert.Equal(t, RoleCustomer, user.Role)
}

func TestJwtAuthenticateFailures(t *testing.T) {
	a, err := NewJwtAuthenticator("secret")
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"wrong key", signToken(t, "other", jwt.MapClaims{"sub": "asha@example.com", "role": "customer"})},
		{"missing subject", signToken(t, "secret", jwt.MapClaims{"role": "customer"})},
		{"unknown role", signToken(t, "secret", jwt.MapClaims{"sub": "asha@example.com", "role": "admin"})},
		{"garbage", "not-a-token"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := a.Authenticate(test.token)
			assert.Error(t, err)
		})
	}
}

func TestJwtMiddleware(t *testing.T) {
	a, err := NewJwtAuthenticator("secret")
	require.NoError(t, err)

	var captured User
	handler := a.Authenticator(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = MustHaveUser(r.Context())
	}))

	// no token
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// valid bearer token
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "secret", jwt.MapClaims{"sub": "tailor-1", "role": "tailor"}))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "tailor-1", captured.ID)
	assert.Equal(t, RoleTailor, captured.Role)
}

func TestNewAuthenticatorRequiresKeyForJwt(t *testing.T) {
	_, err := NewJwtAuthenticator("")
	assert.Error(t, err)
}
