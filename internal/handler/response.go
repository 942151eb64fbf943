package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	apperrors "schoolhub/internal/errors"
	"schoolhub/internal/repository"
	"schoolhub/internal/service"
)

// ErrorHandler renders every failure as {success:false, msg}. Unexpected
// failures are logged in full and reach the caller as a generic message.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var resp *apperrors.HTTPError
	var he *echo.HTTPError
	if errors.As(err, &he) {
		resp = apperrors.NewHTTPError(he.Code, fmt.Sprint(he.Message), "HTTP_ERROR")
		if he.Code >= http.StatusInternalServerError {
			resp = apperrors.MapErrorToHTTP(err)
		}
	} else {
		resp = apperrors.MapErrorToHTTP(err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		c.Logger().Errorf("request_id=%s %s %s: %v",
			c.Response().Header().Get(echo.HeaderXRequestID),
			c.Request().Method, c.Request().URL.Path, err)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(resp.StatusCode)
	} else {
		err = c.JSON(resp.StatusCode, resp.ToErrorResponse())
	}
	if err != nil {
		c.Logger().Error(err)
	}
}

// messageResponse acknowledges a write that returns no body.
type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// dataResponse wraps a single resource.
type dataResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// listResponse wraps one page of a listing.
type listResponse struct {
	Success bool  `json:"success"`
	Count   int   `json:"count"`
	Total   int64 `json:"total"`
	Page    int   `json:"page"`
	Pages   int   `json:"pages"`
	Data    any   `json:"data"`
}

func pageResponse[T any](p *service.Page[T]) listResponse {
	return listResponse{
		Success: true,
		Count:   len(p.Items),
		Total:   p.Total,
		Page:    p.Page,
		Pages:   p.Pages(),
		Data:    p.Items,
	}
}

// parsePage reads ?page and ?limit. Missing or malformed values fall back
// to the defaults.
func parsePage(c echo.Context) repository.Page {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	return repository.Page{Number: page, Limit: limit}.Normalize()
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperrors.Validation("Invalid id")
	}
	return id, nil
}

func bindFields(c echo.Context) (service.Fields, error) {
	var f service.Fields
	if err := c.Bind(&f); err != nil {
		return f, apperrors.Validation("Invalid request body")
	}
	return f, nil
}
