package handler

import (
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/club-space-reservation/internal/model"
    "github.com/iliyamo/club-space-reservation/internal/service"
    "github.com/iliyamo/club-space-reservation/internal/utils"
)

// ClubHandler serves the admin club management endpoints.
type ClubHandler struct {
    Clubs      service.ClubStore
    BcryptCost int
    Cache      cacheInvalidator
}

func NewClubHandler(clubs service.ClubStore, bcryptCost int, cache cacheInvalidator) *ClubHandler {
    return &ClubHandler{Clubs: clubs, BcryptCost: bcryptCost, Cache: cache}
}

type createClubReq struct {
    Name        string  `json:"name" validate:"required"`
    Description string  `json:"description"`
    Email       string  `json:"email" validate:"required,email"`
    Password    string  `json:"password" validate:"required,min=8"`
    Logo        *string `json:"logo" validate:"omitempty,max=255"`
    Members     int     `json:"members" validate:"gte=0"`
}

type clubStatusReq struct {
    Status string `json:"status" validate:"required,oneof=active inactive"`
}

// List returns all clubs ordered by id.
func (h *ClubHandler) List(c echo.Context) error {
    ctx, cancel := withTimeout(c)
    defer cancel()
    clubs, err := h.Clubs.List(ctx)
    if err != nil {
        return respondError(c, err, "list clubs failed")
    }
    return c.JSON(http.StatusOK, echo.Map{"items": clubs})
}

// Create registers a club with a bcrypt-hashed password.
func (h *ClubHandler) Create(c echo.Context) error {
    var req createClubReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Name = strings.TrimSpace(req.Name)
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    if err := service.Validate(req); err != nil {
        return respondError(c, err, "")
    }

    hash, err := utils.HashPassword(req.Password, h.BcryptCost)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash password failed"})
    }
    club := model.Club{
        Name:         req.Name,
        Description:  strings.TrimSpace(req.Description),
        Email:        req.Email,
        Logo:         req.Logo,
        Status:       model.ClubActive,
        Members:      uint32(req.Members),
        PasswordHash: hash,
    }

    ctx, cancel := withTimeout(c)
    defer cancel()
    if err := h.Clubs.Create(ctx, &club); err != nil {
        return respondError(c, err, "create club failed")
    }
    if h.Cache != nil {
        _ = h.Cache.Invalidate(ctx)
    }
    return c.JSON(http.StatusCreated, club)
}

// SetStatus activates or deactivates a club.  Inactive clubs cannot log
// in; their reservations are kept.
func (h *ClubHandler) SetStatus(c echo.Context) error {
    id, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    var req clubStatusReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if err := service.Validate(req); err != nil {
        return respondError(c, err, "")
    }
    ctx, cancel := withTimeout(c)
    defer cancel()
    club, err := h.Clubs.UpdateStatus(ctx, id, req.Status)
    if err != nil {
        return respondError(c, err, "update club failed")
    }
    if h.Cache != nil {
        _ = h.Cache.Invalidate(ctx)
    }
    return c.JSON(http.StatusOK, club)
}
