package middleware

import (
    "time"

    "github.com/google/uuid"
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/club-space-reservation/internal/logger"
)

const ctxLogger = "logger"

// RequestLog tags each request with an X-Request-ID (kept when the client
// sends one), exposes log to handlers through Logger and writes one API
// log line when the handler returns.
func RequestLog(log *logger.Logger) echo.MiddlewareFunc {
    if log == nil {
        log = logger.Nop()
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            c.Set(ctxLogger, log)
            req := c.Request()
            rid := req.Header.Get(echo.HeaderXRequestID)
            if rid == "" {
                rid = uuid.NewString()
            }
            c.Response().Header().Set(echo.HeaderXRequestID, rid)

            start := time.Now()
            err := next(c)
            if err != nil {
                c.Error(err)
            }
            log.LogAPI(req.Method, req.URL.Path, c.Response().Status, time.Since(start))
            return nil
        }
    }
}

// Logger returns the logger installed by RequestLog, or a no-op logger
// when the middleware did not run.
func Logger(c echo.Context) *logger.Logger {
    if l, ok := c.Get(ctxLogger).(*logger.Logger); ok && l != nil {
        return l
    }
    return logger.Nop()
}
