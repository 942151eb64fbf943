package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "schoolhub/internal/errors"
	"schoolhub/internal/middleware"
	"schoolhub/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	identity service.IdentityService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(identity service.IdentityService) *AuthHandler {
	return &AuthHandler{identity: identity}
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	*service.AuthResult
}

// SelfResponse is returned by /auth/me.
type SelfResponse struct {
	Success bool `json:"success"`
	*service.SelfView
}

// Register godoc
// @Summary Register a new user
// @Description Creates the account and, for students and teachers, its profile. Returns a bearer token.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.Fields true "Registration data"
// @Success 201 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	f, err := bindFields(c)
	if err != nil {
		return err
	}

	res, err := h.identity.Register(c.Request().Context(), f)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, AuthResponse{
		Success:    true,
		Message:    "User registered successfully",
		AuthResult: res,
	})
}

// Login godoc
// @Summary Login user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.LoginInput true "Login credentials"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req service.LoginInput
	if err := c.Bind(&req); err != nil {
		return apperrors.Validation("Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return apperrors.Validation("Please provide an email and password")
	}

	res, err := h.identity.Login(c.Request().Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, AuthResponse{Success: true, AuthResult: res})
}

// Me godoc
// @Summary Current user
// @Description Returns the caller's account with its profile, or aggregate counts for admins.
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} SelfResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return apperrors.Unauthenticated("Authentication invalid - No token provided")
	}

	view, err := h.identity.GetSelf(c.Request().Context(), p.AccountID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, SelfResponse{Success: true, SelfView: view})
}
