package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"schoolhub/internal/auth"
	"schoolhub/internal/handler"
	"schoolhub/internal/middleware"
)

// Handlers groups the HTTP handlers the router mounts.
type Handlers struct {
	Auth    *handler.AuthHandler
	User    *handler.UserHandler
	Student *handler.StudentHandler
	Teacher *handler.TeacherHandler
}

// Register wires routes and middleware. Every route's gate pipeline is
// declared here, always behind Authenticate.
func Register(e *echo.Echo, tokens auth.TokenService, h Handlers) {
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	e.HTTPErrorHandler = handler.ErrorHandler
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/register", h.Auth.Register)
	api.POST("/auth/login", h.Auth.Login)

	// Secured routes (require a bearer token)
	secured := api.Group("", middleware.Authenticate(tokens))

	secured.GET("/auth/me", h.Auth.Me)

	users := secured.Group("/users")
	users.GET("", h.User.ListUsers, middleware.Guard(middleware.RequireAdmin()))
	users.GET("/search", h.User.SearchUsers, middleware.Guard())
	users.GET("/:id", h.User.GetUser, middleware.Guard())
	users.PUT("/:id", h.User.UpdateUser, middleware.Guard(middleware.RequireOwnerOrAdmin(middleware.ParamOwner("id"))))
	users.DELETE("/:id", h.User.DeleteUser, middleware.Guard(middleware.RequireAdmin()))

	admin := secured.Group("/admin", middleware.Guard(middleware.RequireAdmin()))

	admin.POST("/students", h.Student.CreateStudent)
	admin.GET("/students", h.Student.ListStudents)
	admin.GET("/students/:id", h.Student.GetStudent)
	admin.PUT("/students/:id", h.Student.UpdateStudent)
	admin.DELETE("/students/:id", h.Student.DeleteStudent)

	admin.POST("/teachers", h.Teacher.CreateTeacher)
	admin.GET("/teachers", h.Teacher.ListTeachers)
	admin.GET("/teachers/stats", h.Teacher.TeacherStats)
	admin.GET("/teachers/:id", h.Teacher.GetTeacher)
	admin.PUT("/teachers/:id", h.Teacher.UpdateTeacher)
	admin.DELETE("/teachers/:id", h.Teacher.DeleteTeacher)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
