package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/club-space-reservation/internal/handler"
	"github.com/iliyamo/club-space-reservation/internal/middleware"
	"github.com/iliyamo/club-space-reservation/internal/utils"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the login endpoints under /v1/auth behind the
// login rate limit, and the identity endpoint /v1/me, which accepts both
// roles.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, loginLimit echo.MiddlewareFunc) {
	g := e.Group("/v1/auth", loginLimit)
	g.POST("/club/login", a.ClubLogin)
	g.POST("/admin/login", a.AdminLogin)

	e.GET("/v1/me", a.Me,
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(utils.RoleClub, utils.RoleAdmin),
	)
}

// RegisterPublic registers unauthenticated browse endpoints.  The space
// list is served through the response cache.
func RegisterPublic(e *echo.Echo, s *handler.SpaceHandler, cache echo.MiddlewareFunc) {
	e.GET("/v1/spaces", s.List, cache)
}
