package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/club-space-reservation/internal/config"
	"github.com/iliyamo/club-space-reservation/internal/utils"
)

func TestParseDecision(t *testing.T) {
	d, ok := parseDecision([]interface{}{int64(0), int64(0), int64(1500)})
	assert.True(t, ok)
	assert.False(t, d.allowed)
	assert.Equal(t, 1500*time.Millisecond, d.retry)

	d, ok = parseDecision([]interface{}{int64(1), "4", int64(0)})
	assert.True(t, ok)
	assert.True(t, d.allowed)
	assert.Equal(t, int64(4), d.remaining)

	_, ok = parseDecision([]interface{}{int64(1)})
	assert.False(t, ok)
	_, ok = parseDecision("nope")
	assert.False(t, ok)
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/my/reservations", nil)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.5")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/my/reservations")
	SetIdentity(c, 3, utils.RoleClub)

	cases := map[string]string{
		"ip":         "rl:ip:10.0.0.5",
		"user":       "rl:user:CLUB-3",
		"route":      "rl:route:GET /v1/my/reservations",
		"user_route": "rl:user:CLUB-3:route:GET /v1/my/reservations",
		"":           "rl:ip:10.0.0.5:user:CLUB-3:route:GET /v1/my/reservations",
	}
	for strategy, want := range cases {
		cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: strategy}
		assert.Equal(t, want, buildRateKey(cfg, c), strategy)
	}
}

func TestNewTokenBucket_PassthroughWithoutRedis(t *testing.T) {
	e := echo.New()
	mw := NewTokenBucket(config.RateLimitConfig{Enabled: true, Capacity: 1}, nil, nil)
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }, mw)

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
	}
}
