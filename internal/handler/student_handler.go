package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"schoolhub/internal/model"
	"schoolhub/internal/repository"
	"schoolhub/internal/service"
)

// StudentHandler serves the admin student directory.
type StudentHandler struct {
	identity  service.IdentityService
	directory service.DirectoryService
}

// NewStudentHandler creates a student handler.
func NewStudentHandler(identity service.IdentityService, directory service.DirectoryService) *StudentHandler {
	return &StudentHandler{identity: identity, directory: directory}
}

// CreateResponse is returned when an admin creates an account.
type CreateResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	*service.CreateResult
}

// CreateStudent godoc
// @Summary Create student
// @Description A password is generated and returned once when none is supplied.
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.Fields true "Student data"
// @Success 201 {object} CreateResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /admin/students [post]
func (h *StudentHandler) CreateStudent(c echo.Context) error {
	f, err := bindFields(c)
	if err != nil {
		return err
	}
	res, err := h.identity.AdminCreate(c.Request().Context(), model.RoleStudent, f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, CreateResponse{Success: true, Message: "Student created successfully", CreateResult: res})
}

// ListStudents godoc
// @Summary List students
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Param search query string false "Name or email substring"
// @Param class query string false "Class"
// @Param status query string false "Status" Enums(active, inactive, graduated, suspended)
// @Success 200 {object} listResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/students [get]
func (h *StudentHandler) ListStudents(c echo.Context) error {
	page, err := h.directory.ListStudents(c.Request().Context(), repository.StudentFilter{
		Search: c.QueryParam("search"),
		Class:  c.QueryParam("class"),
		Status: model.StudentStatus(c.QueryParam("status")),
		Page:   parsePage(c),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pageResponse(page))
}

// GetStudent godoc
// @Summary Get student
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path string true "Account ID"
// @Success 200 {object} dataResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/students/{id} [get]
func (h *StudentHandler) GetStudent(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	student, err := h.directory.GetStudent(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dataResponse{Success: true, Data: student})
}

// UpdateStudent godoc
// @Summary Update student
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Account ID"
// @Param request body service.Fields true "Fields to change"
// @Success 200 {object} AccountResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /admin/students/{id} [put]
func (h *StudentHandler) UpdateStudent(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	f, err := bindFields(c)
	if err != nil {
		return err
	}
	if _, err := h.directory.GetStudent(c.Request().Context(), id); err != nil {
		return err
	}

	view, err := h.identity.AdminUpdate(c.Request().Context(), id, f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, AccountResponse{Success: true, Message: "Student updated successfully", AccountView: view})
}

// DeleteStudent godoc
// @Summary Delete student
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path string true "Account ID"
// @Success 200 {object} messageResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/students/{id} [delete]
func (h *StudentHandler) DeleteStudent(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if _, err := h.directory.GetStudent(c.Request().Context(), id); err != nil {
		return err
	}
	if err := h.identity.AdminDelete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Success: true, Message: "Student deleted successfully"})
}
