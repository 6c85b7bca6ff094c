package auth

import (
	"net/http"
)

// NoneAuthenticator trusts the X-Stitchup-Actor and X-Stitchup-Role headers.
// Used in dev and tests only.
type NoneAuthenticator struct{}

func NewNoneAuthenticator() (*NoneAuthenticator, error) {
	return &NoneAuthenticator{}, nil
}

func (n *NoneAuthenticator) Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := User{
			ID:   r.Header.Get("X-Stitchup-Actor"),
			Role: RoleCustomer,
		}
		if user.ID == "" {
			user.ID = "dev-user"
		}
		if role, ok := StringToRole(r.Header.Get("X-Stitchup-Role")); ok {
			user.Role = role
		}

		ctx := NewUserContext(r.Context(), user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
