// Package httpserver wires handlers, middleware and routes onto an echo
// instance. All API routes live under /api/v1.
package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"github.com/Ivan-Lazz/thePayRoll/internal/auth"
	"github.com/Ivan-Lazz/thePayRoll/internal/handlers"
	"github.com/Ivan-Lazz/thePayRoll/internal/middleware/csrf"
	"github.com/Ivan-Lazz/thePayRoll/internal/response"
	"github.com/Ivan-Lazz/thePayRoll/internal/session"
	"github.com/Ivan-Lazz/thePayRoll/internal/token"
)

type Deps struct {
	DB    *gorm.DB
	Gate  *auth.Gate
	Store *session.Store
	CSRF  *token.CSRFIssuer

	Auth      *handlers.AuthHandler
	Users     *handlers.UserHandler
	Employees *handlers.EmployeeHandler
	Accounts  *handlers.AccountHandler
	Banking   *handlers.BankingHandler
	Payslips  *handlers.PayslipHandler

	AllowedOrigins []string
}

func Register(e *echo.Echo, deps Deps) {
	if len(deps.AllowedOrigins) > 0 {
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins:     deps.AllowedOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization, "X-CSRF-Token"},
			AllowCredentials: true,
		}))
	}

	e.GET("/health/live", func(c echo.Context) error {
		return response.Success(c, "OK", nil)
	})
	e.GET("/health/ready", func(c echo.Context) error {
		sqlDB, err := deps.DB.DB()
		if err != nil || sqlDB.PingContext(c.Request().Context()) != nil {
			return response.ServerError(c, "Database unavailable")
		}
		return response.Success(c, "OK", nil)
	})

	api := e.Group("/api/v1")

	// Auth endpoints sit outside both gates: login has no credentials yet,
	// and refresh/check enforce authentication themselves.
	api.POST("/auth/login", deps.Auth.Login)
	api.POST("/auth/logout", deps.Auth.Logout)
	api.POST("/auth/refresh", deps.Auth.Refresh)
	api.GET("/auth/check", deps.Auth.Check)

	authed := api.Group("", csrf.Middleware(csrf.Config{
		Store:  deps.Store,
		Issuer: deps.CSRF,
	}), deps.Gate.RequireAuth)

	users := authed.Group("/users", deps.Gate.RequireRole("admin"))
	users.GET("", deps.Users.List)
	users.POST("", deps.Users.Create)
	users.GET("/:id", deps.Users.Get)
	users.PUT("/:id", deps.Users.Update)
	users.DELETE("/:id", deps.Users.Delete)

	employees := authed.Group("/employees")
	employees.GET("", deps.Employees.List)
	employees.POST("", deps.Employees.Create)
	employees.GET("/:id", deps.Employees.Get)
	employees.PUT("/:id", deps.Employees.Update)
	employees.DELETE("/:id", deps.Employees.Delete, deps.Gate.RequireRole("admin"))
	employees.GET("/:id/accounts", deps.Employees.Accounts)
	employees.GET("/:id/banking", deps.Employees.Banking)
	employees.GET("/:id/payslips", deps.Payslips.ByEmployee)

	accounts := authed.Group("/accounts")
	accounts.GET("", deps.Accounts.List)
	accounts.POST("", deps.Accounts.Create)
	accounts.GET("/meta/types", deps.Accounts.Types)
	accounts.GET("/meta/statuses", deps.Accounts.Statuses)
	accounts.GET("/:id", deps.Accounts.Get)
	accounts.PUT("/:id", deps.Accounts.Update)
	accounts.DELETE("/:id", deps.Accounts.Delete)

	banking := authed.Group("/banking")
	banking.GET("", deps.Banking.List)
	banking.POST("", deps.Banking.Create)
	banking.GET("/employee/:id", deps.Banking.ByEmployee)
	banking.GET("/:id", deps.Banking.Get)
	banking.PUT("/:id", deps.Banking.Update)
	banking.DELETE("/:id", deps.Banking.Delete)

	payslips := authed.Group("/payslips")
	payslips.GET("", deps.Payslips.List)
	payslips.POST("", deps.Payslips.Create)
	payslips.GET("/meta/statuses", deps.Payslips.Statuses)
	payslips.GET("/employee/:id", deps.Payslips.ByEmployee)
	payslips.GET("/:id", deps.Payslips.Get)
	payslips.PUT("/:id", deps.Payslips.Update)
	payslips.DELETE("/:id", deps.Payslips.Delete)
	payslips.POST("/:id/generate-pdf", deps.Payslips.GeneratePDF)
}
