package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/club-space-reservation/internal/handler"
	"github.com/iliyamo/club-space-reservation/internal/middleware"
	"github.com/iliyamo/club-space-reservation/internal/utils"
)

// AdminHandlers groups the handlers mounted under /v1/admin.
type AdminHandlers struct {
	Reservations *handler.ReservationHandler
	Spaces       *handler.SpaceHandler
	Clubs        *handler.ClubHandler
	Dashboards   *handler.DashboardHandler
}

// RegisterAdmin registers ADMIN-scoped endpoints under /v1/admin.  The
// dashboard is served through the response cache.
func RegisterAdmin(e *echo.Echo, h AdminHandlers, cache echo.MiddlewareFunc, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(utils.RoleAdmin),
	)

	// ---- Reservations ----
	g.GET("/reservations", h.Reservations.List)
	g.DELETE("/reservations", h.Reservations.BulkDelete) // ?status=rejected
	g.GET("/reservations/:id", h.Reservations.Get)
	g.PATCH("/reservations/:id/status", h.Reservations.SetStatus)
	g.DELETE("/reservations/:id", h.Reservations.Delete)
	g.GET("/calendar", h.Reservations.Calendar)

	// ---- Analytics ----
	g.GET("/dashboard", h.Dashboards.Admin, cache)

	// ---- Spaces ----
	g.POST("/spaces", h.Spaces.Create)
	g.PUT("/spaces/:id", h.Spaces.Update)
	g.PATCH("/spaces/:id", h.Spaces.Update)
	g.DELETE("/spaces/:id", h.Spaces.Delete)

	// ---- Clubs ----
	g.GET("/clubs", h.Clubs.List)
	g.POST("/clubs", h.Clubs.Create)
	g.PATCH("/clubs/:id/status", h.Clubs.SetStatus)
}
