package middleware

import (
	"errors"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"schoolhub/internal/auth"
	apperrors "schoolhub/internal/errors"
)

const claimsContextKey = "claims"

const (
	msgNoToken      = "Authentication invalid - No token provided"
	msgExpiredToken = "Authentication invalid - Token expired"
	msgInvalidToken = "Authentication invalid - Invalid token"
)

// Authenticate verifies the bearer token and attaches the caller's
// Principal to the request context. It never touches storage: the claims
// are trusted until the token expires.
func Authenticate(tokens auth.TokenService) echo.MiddlewareFunc {
	verify := echojwt.WithConfig(echojwt.Config{
		ContextKey:  claimsContextKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(_ echo.Context, token string) (interface{}, error) {
			return tokens.Verify(token)
		},
		ErrorHandler: func(_ echo.Context, err error) error {
			return authenticationError(err)
		},
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return verify(attachPrincipal(next))
	}
}

func authenticationError(err error) error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return apperrors.Unauthenticated(msgExpiredToken)
	case errors.Is(err, auth.ErrMalformedToken), errors.Is(err, auth.ErrInvalidToken):
		return apperrors.Unauthenticated(msgInvalidToken)
	default:
		return apperrors.Unauthenticated(msgNoToken)
	}
}

func attachPrincipal(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, ok := c.Get(claimsContextKey).(*auth.Claims)
		if !ok || claims == nil {
			return apperrors.Unauthenticated(msgInvalidToken)
		}

		req := c.Request()
		c.SetRequest(req.WithContext(auth.WithPrincipal(req.Context(), auth.PrincipalFromClaims(claims))))
		return next(c)
	}
}

// CurrentPrincipal returns the authenticated caller, if authentication ran.
func CurrentPrincipal(c echo.Context) (auth.Principal, bool) {
	return auth.PrincipalFromContext(c.Request().Context())
}
