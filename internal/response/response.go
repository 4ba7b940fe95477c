// Package response renders the API envelope shared by every endpoint:
// {status_code, success, message, data?, errors?, pagination?}. The HTTP
// status always mirrors status_code.
package response

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Ivan-Lazz/thePayRoll/internal/pagination"
)

type Envelope struct {
	StatusCode int         `json:"status_code"`
	Success    bool        `json:"success"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data,omitempty"`
	Errors     interface{} `json:"errors,omitempty"`
	Pagination *PageMeta   `json:"pagination,omitempty"`
}

type PageMeta struct {
	CurrentPage  int   `json:"current_page"`
	PerPage      int   `json:"per_page"`
	TotalRecords int64 `json:"total_records"`
	TotalPages   int64 `json:"total_pages"`
}

func JSON(c echo.Context, statusCode int, success bool, message string, data interface{}) error {
	return c.JSON(statusCode, Envelope{
		StatusCode: statusCode,
		Success:    success,
		Message:    message,
		Data:       data,
	})
}

func Success(c echo.Context, message string, data interface{}) error {
	return JSON(c, http.StatusOK, true, message, data)
}

func Created(c echo.Context, message string, data interface{}) error {
	return JSON(c, http.StatusCreated, true, message, data)
}

func BadRequest(c echo.Context, message string, errs interface{}) error {
	return c.JSON(http.StatusBadRequest, Envelope{
		StatusCode: http.StatusBadRequest,
		Success:    false,
		Message:    message,
		Errors:     errs,
	})
}

func Unauthorized(c echo.Context, message string) error {
	if message == "" {
		message = "Unauthorized access"
	}
	return JSON(c, http.StatusUnauthorized, false, message, nil)
}

func Forbidden(c echo.Context, message string) error {
	if message == "" {
		message = "Access forbidden"
	}
	return JSON(c, http.StatusForbidden, false, message, nil)
}

func NotFound(c echo.Context, message string) error {
	if message == "" {
		message = "Resource not found"
	}
	return JSON(c, http.StatusNotFound, false, message, nil)
}

func ServerError(c echo.Context, message string) error {
	if message == "" {
		message = "Internal server error"
	}
	return JSON(c, http.StatusInternalServerError, false, message, nil)
}

func Paginated(c echo.Context, data interface{}, p pagination.Params, totalRecords int64) error {
	return c.JSON(http.StatusOK, Envelope{
		StatusCode: http.StatusOK,
		Success:    true,
		Message:    "Data retrieved successfully",
		Data:       data,
		Pagination: &PageMeta{
			CurrentPage:  p.Page,
			PerPage:      p.PerPage,
			TotalRecords: totalRecords,
			TotalPages:   pagination.TotalPages(totalRecords, p.PerPage),
		},
	})
}
