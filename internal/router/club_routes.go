package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/club-space-reservation/internal/handler"
	"github.com/iliyamo/club-space-reservation/internal/middleware"
	"github.com/iliyamo/club-space-reservation/internal/utils"
)

// RegisterClub registers club-scoped endpoints.  All routes require a
// valid JWT and the CLUB role; ownership of individual reservations is
// checked in the handlers.
func RegisterClub(e *echo.Echo, r *handler.ReservationHandler, d *handler.DashboardHandler, jwtSecret string) {
	auth := []echo.MiddlewareFunc{
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(utils.RoleClub),
	}

	e.POST("/v1/reservations", r.Create, auth...)

	g := e.Group("/v1/my", auth...)
	g.GET("/reservations", r.ListMine)
	g.PATCH("/reservations/:id", r.EditMine)
	g.DELETE("/reservations/:id", r.DeleteMine)
	g.GET("/dashboard", d.Club)
}
