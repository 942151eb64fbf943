package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "schoolhub/internal/errors"
	"schoolhub/internal/middleware"
	"schoolhub/internal/model"
	"schoolhub/internal/service"
)

// UserHandler serves account-level endpoints shared by every role.
type UserHandler struct {
	identity  service.IdentityService
	directory service.DirectoryService
}

// NewUserHandler creates a user handler.
func NewUserHandler(identity service.IdentityService, directory service.DirectoryService) *UserHandler {
	return &UserHandler{identity: identity, directory: directory}
}

// AccountResponse wraps an account and its profile.
type AccountResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	*service.AccountView
}

// SearchResponse lists peer search matches.
type SearchResponse struct {
	Success bool            `json:"success"`
	Count   int             `json:"count"`
	Data    []model.Account `json:"data"`
}

// ListUsers godoc
// @Summary List users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Param role query string false "Role filter" Enums(admin, teacher, student)
// @Success 200 {object} listResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /users [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	page, err := h.directory.ListAccounts(c.Request().Context(), c.QueryParam("role"), parsePage(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pageResponse(page))
}

// SearchUsers godoc
// @Summary Search peers
// @Description Students find teachers, teachers find students, admins find both.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param searchQuery query string true "Substring of first name, last name, full name or email"
// @Param excludeCurrentUser query bool false "Leave the caller out" default(true)
// @Success 200 {object} SearchResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /users/search [get]
func (h *UserHandler) SearchUsers(c echo.Context) error {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return apperrors.Unauthenticated("Authentication invalid - No token provided")
	}
	excludeSelf := c.QueryParam("excludeCurrentUser") != "false"

	accounts, err := h.directory.SearchPeers(c.Request().Context(), p, c.QueryParam("searchQuery"), excludeSelf)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, SearchResponse{Success: true, Count: len(accounts), Data: accounts})
}

// GetUser godoc
// @Summary Get user by id
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "Account ID"
// @Success 200 {object} AccountResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	view, err := h.directory.GetAccount(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, AccountResponse{Success: true, AccountView: view})
}

// UpdateUser godoc
// @Summary Update user
// @Description Account fields go to the account, everything else to the role profile. Role and password cannot be changed here. Owners who are not admins may only change their name, email and personal details.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Account ID"
// @Param request body service.Fields true "Fields to change"
// @Success 200 {object} AccountResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /users/{id} [put]
func (h *UserHandler) UpdateUser(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	f, err := bindFields(c)
	if err != nil {
		return err
	}
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return apperrors.Unauthenticated("Authentication invalid - No token provided")
	}
	if p.Role != model.RoleAdmin {
		if err := f.RestrictToSelfService(); err != nil {
			return err
		}
	}

	view, err := h.identity.AdminUpdate(c.Request().Context(), id, f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, AccountResponse{Success: true, Message: "User updated successfully", AccountView: view})
}

// DeleteUser godoc
// @Summary Delete user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "Account ID"
// @Success 200 {object} messageResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /users/{id} [delete]
func (h *UserHandler) DeleteUser(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.identity.AdminDelete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Success: true, Message: "User deleted successfully"})
}
