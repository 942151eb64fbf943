package auth

import (
	"context"

	"github.com/google/uuid"

	"schoolhub/internal/model"
)

// Principal is the verified identity of the caller, valid for one request.
type Principal struct {
	AccountID uuid.UUID
	FirstName string
	LastName  string
	Email     string
	Role      model.Role
}

// PrincipalFromClaims projects verified claims into a Principal.
func PrincipalFromClaims(c *Claims) Principal {
	return Principal{
		AccountID: c.AccountID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Role:      c.Role,
	}
}

// IsAdmin reports whether the principal holds the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == model.RoleAdmin
}

type principalKey struct{}

// WithPrincipal returns a context carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal attached by authentication, if any.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
