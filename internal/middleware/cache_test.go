package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/club-space-reservation/internal/config"
	"github.com/iliyamo/club-space-reservation/internal/queue"
)

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{}
	hdr.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	bs, err := encodePayload(http.StatusOK, hdr, []byte(`{"items":[]}`))
	require.NoError(t, err)

	status, got, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, echo.MIMEApplicationJSON, got.Get(echo.HeaderContentType))
	assert.Equal(t, `{"items":[]}`, string(body))

	_, _, _, ok = decodePayload(bs[:5])
	assert.False(t, ok)
	_, _, _, ok = decodePayload(bs[:10])
	assert.False(t, ok)
}

func TestCacheKeyFrom(t *testing.T) {
	e := echo.New()
	ctx := func(query string) echo.Context {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/v1/spaces"+query, nil), httptest.NewRecorder())
		c.SetPath("/v1/spaces")
		return c
	}
	cfg := config.CacheConfig{Prefix: "csr:cache", KeyStrategy: "route_query"}

	a := cacheKeyFrom(cfg, ctx("?page=1"))
	assert.Equal(t, a, cacheKeyFrom(cfg, ctx("?page=1")))
	assert.NotEqual(t, a, cacheKeyFrom(cfg, ctx("?page=2")))
	assert.Regexp(t, `^csr:cache:[0-9a-f]{40}$`, a)

	cfg.KeyStrategy = "route"
	assert.Equal(t, cacheKeyFrom(cfg, ctx("?page=1")), cacheKeyFrom(cfg, ctx("?page=2")))
}

func TestCaptureWriterOverflow(t *testing.T) {
	rec := httptest.NewRecorder()
	cw := &captureWriter{ResponseWriter: rec, status: http.StatusOK, limit: 4}

	_, _ = cw.Write([]byte("ab"))
	assert.False(t, cw.overflow)
	_, _ = cw.Write([]byte("cde"))
	assert.True(t, cw.overflow)
	assert.Zero(t, cw.buf.Len())
	assert.Equal(t, "abcde", rec.Body.String())
}

func TestCacheInvalidator_Disabled(t *testing.T) {
	ci := NewCacheInvalidator(config.CacheConfig{Enabled: true}, nil, nil)
	assert.Nil(t, ci)
	assert.NoError(t, ci.Invalidate(context.Background()))
	assert.NoError(t, ci.Publish(context.Background(), queue.ReservationEvent{}))
}
