package handler

import (
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/club-space-reservation/internal/analytics"
    "github.com/iliyamo/club-space-reservation/internal/display"
    "github.com/iliyamo/club-space-reservation/internal/middleware"
    "github.com/iliyamo/club-space-reservation/internal/model"
    "github.com/iliyamo/club-space-reservation/internal/service"
)

// ReservationHandler serves the club and admin reservation endpoints.
// Every reservation leaves the API as a display.FormattedReservation.
type ReservationHandler struct {
    Svc    *service.ReservationService
    Spaces service.SpaceStore
    Clubs  service.ClubStore
    Loc    *time.Location
}

func NewReservationHandler(svc *service.ReservationService, spaces service.SpaceStore, clubs service.ClubStore, loc *time.Location) *ReservationHandler {
    if svc == nil || spaces == nil || clubs == nil {
        panic("nil dependency passed to NewReservationHandler")
    }
    return &ReservationHandler{Svc: svc, Spaces: spaces, Clubs: clubs, Loc: loc}
}

type createReservationReq struct {
    SpaceID     uint64     `json:"space_id"`
    Title       string     `json:"title"`
    Description string     `json:"description"`
    StartTime   *time.Time `json:"start_time"`
    EndTime     *time.Time `json:"end_time"`
    IsFullDay   bool       `json:"is_full_day"`
}

type statusReq struct {
    Status string `json:"status"`
}

// format resolves the names of r's space and club.  Missing references
// leave the names empty rather than failing the request; broken
// timestamps fail it with *model.MalformedRecordError.
func (h *ReservationHandler) format(c echo.Context, r model.Reservation) (display.FormattedReservation, error) {
    ctx, cancel := withTimeout(c)
    defer cancel()
    var sp *model.Space
    if s, err := h.Spaces.GetByID(ctx, r.SpaceID); err == nil {
        sp = &s
    }
    var cl *model.Club
    if cb, err := h.Clubs.GetByID(ctx, r.ClubID); err == nil {
        cl = &cb
    }
    return display.Format(r, sp, cl, h.Loc)
}

// formatList loads the snapshot for f and formats it.  Records with broken
// timestamps cannot be labelled; each is logged and dropped.
func (h *ReservationHandler) formatList(c echo.Context, f model.ReservationFilter) ([]display.FormattedReservation, error) {
    ctx, cancel := withTimeout(c)
    defer cancel()
    rs, err := h.Svc.List(ctx, f)
    if err != nil {
        return nil, err
    }
    spaces, err := h.Spaces.List(ctx)
    if err != nil {
        return nil, err
    }
    clubs, err := h.Clubs.List(ctx)
    if err != nil {
        return nil, err
    }
    usable, bad := analytics.Sanitize(rs)
    log := middleware.Logger(c)
    for _, e := range bad {
        log.Warn("API", e.Error())
    }
    return display.FormatAll(usable, spaces, clubs, h.Loc)
}

// respondFormatted formats res and writes it with status.
func (h *ReservationHandler) respondFormatted(c echo.Context, status int, res model.Reservation) error {
    f, err := h.format(c, res)
    if err != nil {
        return respondError(c, err, "format reservation failed")
    }
    return c.JSON(status, f)
}

// ----- club endpoints -----

// Create books a space for the calling club.  The new reservation is
// always pending.
func (h *ReservationHandler) Create(c echo.Context) error {
    clubID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req createReservationReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }

    ctx, cancel := withTimeout(c)
    defer cancel()
    res, err := h.Svc.Create(ctx, service.CreateReservationInput{
        SpaceID:     req.SpaceID,
        ClubID:      clubID,
        Title:       req.Title,
        Description: req.Description,
        StartTime:   req.StartTime,
        EndTime:     req.EndTime,
        IsFullDay:   req.IsFullDay,
    })
    if err != nil {
        return respondError(c, err, "create reservation failed")
    }
    return h.respondFormatted(c, http.StatusCreated, res)
}

// ListMine lists the calling club's reservations with search, filter and
// sort applied.
func (h *ReservationHandler) ListMine(c echo.Context) error {
    clubID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    q, err := parseListQuery(c)
    if err != nil {
        return respondError(c, err, "")
    }
    q.ClubID = clubID
    list, err := h.formatList(c, model.ReservationFilter{ClubID: clubID})
    if err != nil {
        return respondError(c, err, "list reservations failed")
    }
    out := display.Apply(list, q)
    return c.JSON(http.StatusOK, echo.Map{"items": out, "total": len(out)})
}

// EditMine changes title and/or description of a reservation the caller
// owns.
func (h *ReservationHandler) EditMine(c echo.Context) error {
    clubID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    var req service.EditDetailsInput
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }

    ctx, cancel := withTimeout(c)
    defer cancel()
    if _, err := h.Svc.GetOwned(ctx, id, clubID); err != nil {
        return respondError(c, err, "load reservation failed")
    }
    res, err := h.Svc.EditDetails(ctx, id, req)
    if err != nil {
        return respondError(c, err, "update reservation failed")
    }
    return h.respondFormatted(c, http.StatusOK, res)
}

// DeleteMine cancels a reservation the caller owns.
func (h *ReservationHandler) DeleteMine(c echo.Context) error {
    clubID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }

    ctx, cancel := withTimeout(c)
    defer cancel()
    if _, err := h.Svc.GetOwned(ctx, id, clubID); err != nil {
        return respondError(c, err, "load reservation failed")
    }
    if err := h.Svc.Delete(ctx, id); err != nil {
        return respondError(c, err, "delete reservation failed")
    }
    return c.NoContent(http.StatusNoContent)
}

// ----- admin endpoints -----

// List returns every reservation with search, filter and sort applied.
func (h *ReservationHandler) List(c echo.Context) error {
    q, err := parseListQuery(c)
    if err != nil {
        return respondError(c, err, "")
    }
    list, err := h.formatList(c, model.ReservationFilter{})
    if err != nil {
        return respondError(c, err, "list reservations failed")
    }
    out := display.Apply(list, q)
    return c.JSON(http.StatusOK, echo.Map{"items": out, "total": len(out)})
}

// Get returns one reservation.
func (h *ReservationHandler) Get(c echo.Context) error {
    id, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    ctx, cancel := withTimeout(c)
    defer cancel()
    res, err := h.Svc.Get(ctx, id)
    if err != nil {
        return respondError(c, err, "load reservation failed")
    }
    return h.respondFormatted(c, http.StatusOK, res)
}

// SetStatus approves, rejects or reopens a reservation.
func (h *ReservationHandler) SetStatus(c echo.Context) error {
    id, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    var req statusReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    ctx, cancel := withTimeout(c)
    defer cancel()
    res, err := h.Svc.SetStatus(ctx, id, req.Status)
    if err != nil {
        return respondError(c, err, "update status failed")
    }
    return h.respondFormatted(c, http.StatusOK, res)
}

// Delete removes any reservation.
func (h *ReservationHandler) Delete(c echo.Context) error {
    id, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    ctx, cancel := withTimeout(c)
    defer cancel()
    if err := h.Svc.Delete(ctx, id); err != nil {
        return respondError(c, err, "delete reservation failed")
    }
    return c.NoContent(http.StatusNoContent)
}

// BulkDelete removes every reservation with ?status= (typically
// rejected) and reports how many were deleted.
func (h *ReservationHandler) BulkDelete(c echo.Context) error {
    status := c.QueryParam("status")
    if status == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "status is required", "field": "status"})
    }
    ctx, cancel := withTimeout(c)
    defer cancel()
    n, err := h.Svc.BulkDeleteByStatus(ctx, status)
    if err != nil {
        return respondError(c, err, "bulk delete failed")
    }
    return c.JSON(http.StatusOK, echo.Map{"deleted": n})
}

// Calendar groups the month's reservations per day.  year and month
// default to the current month in the campus time zone.
func (h *ReservationHandler) Calendar(c echo.Context) error {
    now := time.Now().In(h.location())
    year, month := now.Year(), now.Month()
    if v := c.QueryParam("year"); v != "" {
        y, err := strconv.Atoi(v)
        if err != nil || y < 1970 || y > 9999 {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid year", "field": "year"})
        }
        year = y
    }
    if v := c.QueryParam("month"); v != "" {
        m, err := strconv.Atoi(v)
        if err != nil || m < 1 || m > 12 {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid month", "field": "month"})
        }
        month = time.Month(m)
    }
    q, err := parseListQuery(c)
    if err != nil {
        return respondError(c, err, "")
    }
    list, err := h.formatList(c, model.ReservationFilter{})
    if err != nil {
        return respondError(c, err, "load calendar failed")
    }
    days := display.CalendarMonth(display.Apply(list, q), year, month, h.location())
    return c.JSON(http.StatusOK, echo.Map{"year": year, "month": int(month), "days": days})
}

func (h *ReservationHandler) location() *time.Location {
    if h.Loc == nil {
        return time.UTC
    }
    return h.Loc
}
