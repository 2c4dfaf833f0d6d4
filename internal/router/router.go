package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/coin-rewards/internal/handler"    // handlers that implement the endpoints
	"github.com/iliyamo/coin-rewards/internal/middleware" // JWT, role, cache and rate limit middleware
)

// RegisterRoutes registers routes that do not belong to any feature group.
// Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication routes.  Login and register are
// rate limited by limit; logout and /v1/me need a valid access token, and
// /v1/view accepts one optionally.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register, limit)
	g.POST("/login", a.Login, limit)
	g.POST("/logout", a.Logout, middleware.JWTAuth(jwtSecret))

	e.GET("/v1/me", a.Me, middleware.JWTAuth(jwtSecret))
	e.GET("/v1/view", a.View, middleware.OptionalJWT(jwtSecret))
}

// RegisterPublic registers the unauthenticated landing page endpoints.  The
// catalog and the chart are wrapped by cache; the live chart never is.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, cache echo.MiddlewareFunc) {
	e.GET("/v1/packages", p.ListPackages, cache)
	e.GET("/v1/packages/:id/quote", p.Quote)
	e.GET("/v1/packages/:id/upi-qr", p.UPIQRCode)
	e.GET("/v1/market/chart", p.MarketChart, cache)
	e.GET("/v1/market/chart/live", p.LiveMarketChart)
}
