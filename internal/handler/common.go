package handler // handler defines http handlers

import (
    "context"
    "errors"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/club-space-reservation/internal/display"
    "github.com/iliyamo/club-space-reservation/internal/middleware"
    "github.com/iliyamo/club-space-reservation/internal/model"
    "github.com/iliyamo/club-space-reservation/internal/repository"
    "github.com/iliyamo/club-space-reservation/internal/service"
)

// requestTimeout bounds every store round trip made by a handler.
const requestTimeout = 5 * time.Second

func withTimeout(c echo.Context) (context.Context, context.CancelFunc) {
    return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// cacheInvalidator is satisfied by *middleware.CacheInvalidator; a nil
// pointer is a valid no-op value.
type cacheInvalidator interface {
    Invalidate(ctx context.Context) error
}

// getUserID returns the authenticated subject stored by JWTAuth.
func getUserID(c echo.Context) (uint64, error) {
    id, ok := middleware.UserID(c)
    if !ok {
        return 0, errors.New("invalid user_id in context")
    }
    return id, nil
}

// parseID reads a positive numeric path parameter.
func parseID(c echo.Context, name string) (uint64, bool) {
    id, err := strconv.ParseUint(c.Param(name), 10, 64)
    return id, err == nil && id > 0
}

// respondError maps service and repository errors to HTTP responses.  A
// stored record that cannot be formatted is answered with 422.  Unknown
// errors are logged and answered with 500 and the fallback message.
func respondError(c echo.Context, err error, fallback string) error {
    if ve, ok := service.IsValidation(err); ok {
        body := echo.Map{"error": ve.Message}
        if ve.Field != "" {
            body["field"] = ve.Field
        }
        return c.JSON(http.StatusBadRequest, body)
    }
    switch {
    case service.IsNotFound(err),
        errors.Is(err, repository.ErrReservationNotFound),
        errors.Is(err, repository.ErrSpaceNotFound),
        errors.Is(err, repository.ErrClubNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
    case errors.Is(err, repository.ErrForbidden):
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    case errors.Is(err, repository.ErrConflict):
        return c.JSON(http.StatusConflict, echo.Map{"error": "conflict"})
    case errors.Is(err, repository.ErrEmailExists):
        return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
    case errors.Is(err, repository.ErrReservedName):
        return c.JSON(http.StatusConflict, echo.Map{"error": err.Error(), "field": "name"})
    case errors.Is(err, context.DeadlineExceeded):
        return c.JSON(http.StatusGatewayTimeout, echo.Map{"error": "timeout"})
    }
    var me *model.MalformedRecordError
    if errors.As(err, &me) {
        middleware.Logger(c).Warn("API", me.Error())
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "reservation has unusable timestamps", "id": me.ID})
    }
    req := c.Request()
    middleware.Logger(c).Errorf("API", "%s %s: %s: %v", req.Method, req.URL.Path, fallback, err)
    return c.JSON(http.StatusInternalServerError, echo.Map{"error": fallback})
}

// parseListQuery reads search, status, space_id, club_id, sort and order.
// Unknown status values are rejected so a typo does not look like an empty
// result.
func parseListQuery(c echo.Context) (display.Query, error) {
    q := display.Query{
        Search: strings.TrimSpace(c.QueryParam("search")),
        Status: strings.TrimSpace(c.QueryParam("status")),
        Sort:   strings.TrimSpace(c.QueryParam("sort")),
        Desc:   strings.EqualFold(c.QueryParam("order"), "desc"),
    }
    if q.Status != "" && q.Status != "all" && !model.ValidStatus(q.Status) {
        return q, &service.ValidationError{Field: "status", Message: "unknown status"}
    }
    if q.Status == "all" {
        q.Status = ""
    }
    for name, dst := range map[string]*uint64{"space_id": &q.SpaceID, "club_id": &q.ClubID} {
        if v := c.QueryParam(name); v != "" {
            n, err := strconv.ParseUint(v, 10, 64)
            if err != nil {
                return q, &service.ValidationError{Field: name, Message: "must be a positive integer"}
            }
            *dst = n
        }
    }
    return q, nil
}
