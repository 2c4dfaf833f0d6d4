package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/coin-rewards/internal/handler"
	"github.com/iliyamo/coin-rewards/internal/middleware"
	"github.com/iliyamo/coin-rewards/internal/model"
)

// RegisterUser registers the endpoints of regular users under /v1.  All
// routes require a valid JWT and the user role; purchases are also rate
// limited.
func RegisterUser(e *echo.Echo, h *handler.PurchaseHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleUser),
	)
	g.POST("/purchases", h.Purchase, limit)
	g.POST("/coupons/:code/redeem", h.RedeemCoupon)
}
