package handler

import (
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/club-space-reservation/internal/model"
    "github.com/iliyamo/club-space-reservation/internal/service"
)

// SpaceHandler serves the public space list and the admin space CRUD.
type SpaceHandler struct {
    Spaces service.SpaceStore
    Cache  cacheInvalidator
}

func NewSpaceHandler(spaces service.SpaceStore, cache cacheInvalidator) *SpaceHandler {
    return &SpaceHandler{Spaces: spaces, Cache: cache}
}

type spaceReq struct {
    Name     string   `json:"name" validate:"required,max=100"`
    Capacity *int     `json:"capacity" validate:"omitempty,gte=0"`
    Features []string `json:"features" validate:"dive,max=64"`
    Image    string   `json:"image" validate:"omitempty,max=255"`
}

// toSpace trims and validates the request.
func (r spaceReq) toSpace() (model.Space, error) {
    r.Name = strings.TrimSpace(r.Name)
    if err := service.Validate(r); err != nil {
        return model.Space{}, err
    }
    capacity := 0
    if r.Capacity != nil {
        capacity = *r.Capacity
    }
    features := make([]string, 0, len(r.Features))
    for _, f := range r.Features {
        if f = strings.TrimSpace(f); f != "" {
            features = append(features, f)
        }
    }
    return model.Space{
        Name:     r.Name,
        Capacity: uint32(capacity),
        Features: features,
        Image:    strings.TrimSpace(r.Image),
    }, nil
}

func (h *SpaceHandler) invalidate(c echo.Context) {
    if h.Cache == nil {
        return
    }
    _ = h.Cache.Invalidate(c.Request().Context())
}

// List returns all spaces.
func (h *SpaceHandler) List(c echo.Context) error {
    ctx, cancel := withTimeout(c)
    defer cancel()
    spaces, err := h.Spaces.List(ctx)
    if err != nil {
        return respondError(c, err, "list spaces failed")
    }
    return c.JSON(http.StatusOK, echo.Map{"items": spaces})
}

// Create adds a space.
func (h *SpaceHandler) Create(c echo.Context) error {
    var req spaceReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    sp, err := req.toSpace()
    if err != nil {
        return respondError(c, err, "")
    }
    ctx, cancel := withTimeout(c)
    defer cancel()
    if err := h.Spaces.Create(ctx, &sp); err != nil {
        return respondError(c, err, "create space failed")
    }
    h.invalidate(c)
    return c.JSON(http.StatusCreated, sp)
}

// Update replaces a space's attributes.  The default space keeps its name.
func (h *SpaceHandler) Update(c echo.Context) error {
    id, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    var req spaceReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    sp, err := req.toSpace()
    if err != nil {
        return respondError(c, err, "")
    }
    sp.ID = id
    ctx, cancel := withTimeout(c)
    defer cancel()
    if err := h.Spaces.Update(ctx, &sp); err != nil {
        return respondError(c, err, "update space failed")
    }
    h.invalidate(c)
    return c.JSON(http.StatusOK, sp)
}

// Delete removes a space that has no reservations.  The default space can
// never be deleted.
func (h *SpaceHandler) Delete(c echo.Context) error {
    id, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    ctx, cancel := withTimeout(c)
    defer cancel()
    if err := h.Spaces.Delete(ctx, id); err != nil {
        return respondError(c, err, "delete space failed")
    }
    h.invalidate(c)
    return c.NoContent(http.StatusNoContent)
}
