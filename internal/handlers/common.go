// Package handlers contains the HTTP handlers for the payroll API. Each
// handler is a struct holding its dependencies (database handle, auth gate,
// side-channel services) and exposes echo.HandlerFunc methods.
package handlers

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Ivan-Lazz/thePayRoll/internal/pagination"
)

func itoa(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}

func pathID(c echo.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func pageParams(c echo.Context) pagination.Params {
	return pagination.Parse(c.QueryParam("page"), c.QueryParam("per_page"))
}

// likePattern wraps a search term for a case-insensitive LIKE match.
func likePattern(term string) string {
	return "%" + term + "%"
}
