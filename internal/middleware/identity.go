package middleware

// identity.go holds the context keys JWTAuth fills in and the accessors
// handlers and the other middleware use to read them.

import (
    "strconv"

    "github.com/labstack/echo/v4"
)

const (
    ctxUserID = "user_id"
    ctxRole   = "role"
)

// UserID returns the authenticated subject.  ok is false on public routes.
func UserID(c echo.Context) (id uint64, ok bool) {
    id, ok = c.Get(ctxUserID).(uint64)
    return id, ok
}

// Role returns the authenticated role or "" when there is none.
func Role(c echo.Context) string {
    r, _ := c.Get(ctxRole).(string)
    return r
}

// SetIdentity stores an identity the way JWTAuth does; used by tests
// that call handlers directly.
func SetIdentity(c echo.Context, id uint64, role string) {
    c.Set(ctxUserID, id)
    c.Set(ctxRole, role)
}

// subjectKey is the identity part of rate limit keys.
func subjectKey(c echo.Context) string {
    id, ok := UserID(c)
    if !ok {
        return "anon"
    }
    return Role(c) + "-" + strconv.FormatUint(id, 10)
}
