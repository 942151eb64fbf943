package middleware

import (
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"schoolhub/internal/auth"
	apperrors "schoolhub/internal/errors"
	"schoolhub/internal/model"
)

// Gate decides whether an authenticated principal may proceed. Gates are
// pure given the request and the principal.
type Gate func(c echo.Context, p auth.Principal) error

// Guard runs gates in order and stops at the first rejection. Without a
// Principal in the request context every route fails closed.
func Guard(gates ...Gate) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := CurrentPrincipal(c)
			if !ok {
				return apperrors.Unauthenticated(msgNoToken)
			}
			for _, gate := range gates {
				if err := gate(c, p); err != nil {
					return err
				}
			}
			return next(c)
		}
	}
}

// RequireRole admits principals whose role is in allowed.
func RequireRole(allowed ...model.Role) Gate {
	names := make([]string, len(allowed))
	for i, r := range allowed {
		names[i] = r.String()
	}
	list := strings.Join(names, ", ")

	return func(_ echo.Context, p auth.Principal) error {
		if slices.Contains(allowed, p.Role) {
			return nil
		}
		return apperrors.Forbidden("User role %s is not authorized to access this route. Allowed roles: %s", p.Role, list)
	}
}

// RequireAdmin admits admins only.
func RequireAdmin() Gate {
	return RequireRole(model.RoleAdmin)
}

// RequireTeacherOrAdmin admits teachers and admins.
func RequireTeacherOrAdmin() Gate {
	return RequireRole(model.RoleTeacher, model.RoleAdmin)
}

// RequireStudentOrAdmin admits students and admins.
func RequireStudentOrAdmin() Gate {
	return RequireRole(model.RoleStudent, model.RoleAdmin)
}

// OwnerResolver yields the account that owns the resource a request targets.
type OwnerResolver interface {
	ResolveOwner(c echo.Context) (uuid.UUID, error)
}

// OwnerResolverFunc adapts a function to OwnerResolver.
type OwnerResolverFunc func(c echo.Context) (uuid.UUID, error)

func (f OwnerResolverFunc) ResolveOwner(c echo.Context) (uuid.UUID, error) {
	return f(c)
}

// ParamOwner resolves the owner from a path parameter holding an account id.
func ParamOwner(name string) OwnerResolver {
	return OwnerResolverFunc(func(c echo.Context) (uuid.UUID, error) {
		id, err := uuid.Parse(c.Param(name))
		if err != nil {
			return uuid.Nil, apperrors.Validation("Invalid %s", name)
		}
		return id, nil
	})
}

// RequireOwnerOrAdmin admits admins, and otherwise only the principal that
// owns the resource.
func RequireOwnerOrAdmin(owner OwnerResolver) Gate {
	return func(c echo.Context, p auth.Principal) error {
		if p.IsAdmin() {
			return nil
		}
		id, err := owner.ResolveOwner(c)
		if err != nil {
			return err
		}
		if id != p.AccountID {
			return apperrors.Forbidden("Not authorized to access this resource")
		}
		return nil
	}
}
