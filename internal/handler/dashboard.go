package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/club-space-reservation/internal/service"
)

// DashboardHandler exposes the analytics dashboards.
type DashboardHandler struct {
    Svc *service.DashboardService
}

func NewDashboardHandler(svc *service.DashboardService) *DashboardHandler {
    return &DashboardHandler{Svc: svc}
}

// Admin returns analytics over all reservations.
func (h *DashboardHandler) Admin(c echo.Context) error {
    ctx, cancel := withTimeout(c)
    defer cancel()
    d, err := h.Svc.Admin(ctx)
    if err != nil {
        return respondError(c, err, "build dashboard failed")
    }
    return c.JSON(http.StatusOK, d)
}

// Club returns analytics over the caller's reservations.
func (h *DashboardHandler) Club(c echo.Context) error {
    clubID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    ctx, cancel := withTimeout(c)
    defer cancel()
    d, err := h.Svc.Club(ctx, clubID)
    if err != nil {
        return respondError(c, err, "build dashboard failed")
    }
    return c.JSON(http.StatusOK, d)
}
