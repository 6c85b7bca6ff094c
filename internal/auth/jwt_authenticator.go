package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// JwtAuthenticator validates HS256 bearer tokens issued by the identity
// service and extracts the actor identity and role from the claims.
type JwtAuthenticator struct {
	signingKey []byte
}

func NewJwtAuthenticator(signingKey string) (*JwtAuthenticator, error) {
	if signingKey == "" {
		return nil, errors.New("jwt authentication requires a signing key")
	}
	return &JwtAuthenticator{signingKey: []byte(signingKey)}, nil
}

func (a *JwtAuthenticator) Authenticate(token string) (User, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.signingKey, nil
	})
	if err != nil {
		return User{}, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return User{}, errors.New("failed to parse claims")
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return User{}, errors.New("token has no subject")
	}

	roleClaim, _ := claims["role"].(string)
	role, ok := StringToRole(roleClaim)
	if !ok {
		return User{}, fmt.Errorf("token has unknown role %q", roleClaim)
	}

	return User{ID: sub, Role: role}, nil
}

func (a *JwtAuthenticator) Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accessToken := r.Header.Get("Authorization")
		if accessToken == "" {
			http.Error(w, "no token provided", http.StatusUnauthorized)
			return
		}
		accessToken = strings.TrimPrefix(accessToken, "Bearer ")

		user, err := a.Authenticate(accessToken)
		if err != nil {
			zap.S().Named("auth").Errorw("failed to authenticate token", "error", err)
			http.Error(w, "authentication failed", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(NewUserContext(r.Context(), user)))
	})
}
