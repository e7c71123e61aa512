package middleware

import (
    "bytes"
    "context"
    "crypto/sha1"
    "encoding/binary"
    "encoding/json"
    "fmt"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/club-space-reservation/internal/config"
    "github.com/iliyamo/club-space-reservation/internal/logger"
    "github.com/iliyamo/club-space-reservation/internal/queue"
)

// captureWriter forwards the response to the client and keeps a copy of
// up to limit bytes.  overflow is set once the body grows past limit.
type captureWriter struct {
    http.ResponseWriter
    status   int
    buf      bytes.Buffer
    limit    int64
    overflow bool
}

func (cw *captureWriter) WriteHeader(code int) {
    cw.status = code
    cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
    if !cw.overflow {
        if cw.limit > 0 && int64(cw.buf.Len()+len(b)) > cw.limit {
            cw.overflow = true
            cw.buf.Reset()
        } else {
            cw.buf.Write(b)
        }
    }
    return cw.ResponseWriter.Write(b)
}

// cacheKeyFrom builds a stable key under cfg.Prefix.  The variable part is
// hashed so long query strings stay within sane key lengths.
func cacheKeyFrom(cfg config.CacheConfig, c echo.Context) string {
    r := c.Request()
    var parts []string
    switch strings.ToLower(cfg.KeyStrategy) {
    case "route":
        parts = []string{"route", c.Path()}
    case "method_route":
        parts = []string{"method", r.Method, "route", c.Path()}
    case "method_route_query":
        parts = []string{"method", r.Method, "route", c.Path(), "q", r.URL.RawQuery}
    default: // "route_query"
        parts = []string{"route", c.Path(), "q", r.URL.RawQuery}
    }
    sum := sha1.Sum([]byte(strings.Join(parts, ":")))
    return fmt.Sprintf("%s:%x", cfg.Prefix, sum[:])
}

// encodePayload packs [4 bytes status][4 bytes headerLen][headerJSON][body].
func encodePayload(status int, header http.Header, body []byte) ([]byte, error) {
    hdrJSON, err := json.Marshal(header)
    if err != nil {
        return nil, err
    }
    out := make([]byte, 8+len(hdrJSON)+len(body))
    binary.BigEndian.PutUint32(out[0:4], uint32(status))
    binary.BigEndian.PutUint32(out[4:8], uint32(len(hdrJSON)))
    copy(out[8:], hdrJSON)
    copy(out[8+len(hdrJSON):], body)
    return out, nil
}

func decodePayload(bs []byte) (status int, header http.Header, body []byte, ok bool) {
    if len(bs) < 8 {
        return 0, nil, nil, false
    }
    status = int(binary.BigEndian.Uint32(bs[0:4]))
    hlen := int(binary.BigEndian.Uint32(bs[4:8]))
    if 8+hlen > len(bs) {
        return 0, nil, nil, false
    }
    header = make(http.Header)
    if hlen > 0 {
        if err := json.Unmarshal(bs[8:8+hlen], &header); err != nil {
            return 0, nil, nil, false
        }
    }
    return status, header, bs[8+hlen:], true
}

// NewRedisCache serves cached 200 responses of the wrapped routes from
// Redis and stores misses for ttl.  Headers are stored with the body so
// hits are byte-identical to the original response.  Without Redis it is
// a passthrough.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client, ttl time.Duration) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    if ttl <= 0 {
        ttl = time.Minute
    }

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if !cfg.Methods[strings.ToUpper(c.Request().Method)] {
                return next(c)
            }
            key := cacheKeyFrom(cfg, c)
            resp := c.Response()

            if bs, err := rdb.Get(c.Request().Context(), key).Bytes(); err == nil {
                if status, hdr, body, ok := decodePayload(bs); ok {
                    for k, vals := range hdr {
                        if strings.EqualFold(k, "Content-Length") || strings.EqualFold(k, "X-Cache") {
                            continue
                        }
                        for _, v := range vals {
                            resp.Header().Add(k, v)
                        }
                    }
                    resp.Header().Set("X-Cache", "HIT")
                    resp.WriteHeader(status)
                    _, _ = resp.Write(body)
                    return nil
                }
            }

            cw := &captureWriter{ResponseWriter: resp.Writer, status: http.StatusOK, limit: int64(cfg.MaxBodyBytes)}
            resp.Writer = cw
            resp.Header().Set("X-Cache", "MISS")
            if err := next(c); err != nil {
                return err
            }
            if cw.status != http.StatusOK || cw.overflow {
                return nil
            }
            if payload, err := encodePayload(cw.status, resp.Header().Clone(), cw.buf.Bytes()); err == nil {
                _ = rdb.Set(context.Background(), key, payload, ttl).Err()
            }
            return nil
        }
    }
}

// CacheInvalidator drops every cached response under the cache prefix.
// It is registered as an event sink so any reservation change clears the
// dashboards, and called directly after space and club changes.
type CacheInvalidator struct {
    rdb    *redis.Client
    prefix string
    log    *logger.Logger
}

// NewCacheInvalidator returns nil when caching is off; a nil invalidator
// is safe to use.
func NewCacheInvalidator(cfg config.CacheConfig, rdb *redis.Client, log *logger.Logger) *CacheInvalidator {
    if !cfg.Enabled || rdb == nil {
        return nil
    }
    if log == nil {
        log = logger.Nop()
    }
    return &CacheInvalidator{rdb: rdb, prefix: cfg.Prefix, log: log}
}

// Invalidate deletes all keys under the prefix using SCAN.
func (ci *CacheInvalidator) Invalidate(ctx context.Context) error {
    if ci == nil {
        return nil
    }
    iter := ci.rdb.Scan(ctx, 0, ci.prefix+":*", 100).Iterator()
    var keys []string
    for iter.Next(ctx) {
        keys = append(keys, iter.Val())
    }
    if err := iter.Err(); err != nil {
        ci.log.Warnf("CACHE", "scan %s failed: %v", ci.prefix, err)
        return err
    }
    if len(keys) == 0 {
        return nil
    }
    if err := ci.rdb.Del(ctx, keys...).Err(); err != nil {
        ci.log.Warnf("CACHE", "invalidate failed: %v", err)
        return err
    }
    ci.log.Debugf("CACHE", "invalidated %d keys", len(keys))
    return nil
}

// Publish implements the service event sink.
func (ci *CacheInvalidator) Publish(ctx context.Context, _ queue.ReservationEvent) error {
    return ci.Invalidate(ctx)
}
