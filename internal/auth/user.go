package auth

import (
	"context"
)

// Role is the actor role driving transition authorization.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleTailor   Role = "tailor"
	RoleRider    Role = "rider"
	RoleSystem   Role = "system"
)

func StringToRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleCustomer, RoleTailor, RoleRider, RoleSystem:
		return Role(s), true
	}
	return "", false
}

// User is the opaque actor identity the engine trusts. The identity provider
// (jwt or none authenticator) is the only code that constructs it.
type User struct {
	ID   string
	Role Role
}

type userKeyType struct{}

var userKey userKeyType

func UserFromContext(ctx context.Context) (User, bool) {
	val := ctx.Value(userKey)
	if val == nil {
		return User{}, false
	}
	return val.(User), true
}

// MustHaveUser returns the authenticated user, panicking if the
// authenticator middleware did not run. Handlers are always mounted behind
// it, so a missing user is a programming error.
func MustHaveUser(ctx context.Context) User {
	user, found := UserFromContext(ctx)
	if !found {
		panic("no user found in context")
	}
	return user
}

func NewUserContext(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, userKey, u)
}
