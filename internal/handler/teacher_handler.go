package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"schoolhub/internal/model"
	"schoolhub/internal/repository"
	"schoolhub/internal/service"
)

// TeacherHandler serves the admin teacher directory.
type TeacherHandler struct {
	identity  service.IdentityService
	directory service.DirectoryService
}

// NewTeacherHandler creates a teacher handler.
func NewTeacherHandler(identity service.IdentityService, directory service.DirectoryService) *TeacherHandler {
	return &TeacherHandler{identity: identity, directory: directory}
}

// CreateTeacher godoc
// @Summary Create teacher
// @Description Employee ID is generated when omitted. A password is generated and returned once when none is supplied.
// @Tags teachers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.Fields true "Teacher data"
// @Success 201 {object} CreateResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /admin/teachers [post]
func (h *TeacherHandler) CreateTeacher(c echo.Context) error {
	f, err := bindFields(c)
	if err != nil {
		return err
	}
	res, err := h.identity.AdminCreate(c.Request().Context(), model.RoleTeacher, f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, CreateResponse{Success: true, Message: "Teacher created successfully", CreateResult: res})
}

// ListTeachers godoc
// @Summary List teachers
// @Tags teachers
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Param search query string false "Name, email, employee ID, qualification or specialization substring"
// @Param specialization query string false "Specialization substring"
// @Param status query string false "Status" Enums(active, inactive, on-leave, resigned)
// @Success 200 {object} listResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/teachers [get]
func (h *TeacherHandler) ListTeachers(c echo.Context) error {
	page, err := h.directory.ListTeachers(c.Request().Context(), repository.TeacherFilter{
		Search:         c.QueryParam("search"),
		Specialization: c.QueryParam("specialization"),
		Status:         model.TeacherStatus(c.QueryParam("status")),
		Page:           parsePage(c),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pageResponse(page))
}

// TeacherStats godoc
// @Summary Teacher statistics
// @Tags teachers
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dataResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/teachers/stats [get]
func (h *TeacherHandler) TeacherStats(c echo.Context) error {
	stats, err := h.directory.TeacherStats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dataResponse{Success: true, Data: stats})
}

// GetTeacher godoc
// @Summary Get teacher
// @Tags teachers
// @Produce json
// @Security BearerAuth
// @Param id path string true "Account ID"
// @Success 200 {object} dataResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/teachers/{id} [get]
func (h *TeacherHandler) GetTeacher(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	teacher, err := h.directory.GetTeacher(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dataResponse{Success: true, Data: teacher})
}

// UpdateTeacher godoc
// @Summary Update teacher
// @Tags teachers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Account ID"
// @Param request body service.Fields true "Fields to change"
// @Success 200 {object} AccountResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /admin/teachers/{id} [put]
func (h *TeacherHandler) UpdateTeacher(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	f, err := bindFields(c)
	if err != nil {
		return err
	}
	if _, err := h.directory.GetTeacher(c.Request().Context(), id); err != nil {
		return err
	}

	view, err := h.identity.AdminUpdate(c.Request().Context(), id, f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, AccountResponse{Success: true, Message: "Teacher updated successfully", AccountView: view})
}

// DeleteTeacher godoc
// @Summary Delete teacher
// @Description Fails with 409 while the teacher still instructs a course.
// @Tags teachers
// @Produce json
// @Security BearerAuth
// @Param id path string true "Account ID"
// @Success 200 {object} messageResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /admin/teachers/{id} [delete]
func (h *TeacherHandler) DeleteTeacher(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if _, err := h.directory.GetTeacher(c.Request().Context(), id); err != nil {
		return err
	}
	if err := h.identity.AdminDelete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Success: true, Message: "Teacher deleted successfully"})
}
