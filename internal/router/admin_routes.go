package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/coin-rewards/internal/handler"    // dashboard handlers
	"github.com/iliyamo/coin-rewards/internal/middleware" // JWT + role middlewares
	"github.com/iliyamo/coin-rewards/internal/model"
)

// RegisterDashboard registers the dashboard of every role plus the admin
// endpoints under /v1/admin, which need the admin or superadmin role.
func RegisterDashboard(e *echo.Echo, d *handler.DashboardHandler, jwtSecret string) {
	e.GET("/v1/dashboard", d.Dashboard, middleware.JWTAuth(jwtSecret), middleware.RequireRole())

	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin, model.RoleSuperAdmin),
	)
	g.GET("/users", d.ListUsers)
	g.GET("/transactions", d.ListTransactions)
	g.POST("/users/:id/credit", d.CreditUser)
}
