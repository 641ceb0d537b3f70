package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/flight-seat-booking/internal/config"
	"github.com/iliyamo/flight-seat-booking/internal/logger"
)

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	b, err := encodePayload(http.StatusOK, hdr, []byte(`{"ok":true}`))
	require.NoError(t, err)

	status, got, body, ok := decodePayload(b)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.JSONEq(t, `{"ok":true}`, string(body))

	_, _, _, ok = decodePayload([]byte{0, 1})
	assert.False(t, ok)
	_, _, _, ok = decodePayload([]byte{0, 0, 0, 200, 0, 0, 0, 99})
	assert.False(t, ok)
}

func TestCacheKey_QuerySensitive(t *testing.T) {
	e := echo.New()
	cfg := config.CacheConfig{Prefix: "fsb:cache", KeyStrategy: "route_query"}

	key := func(target string) string {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), httptest.NewRecorder())
		c.SetPath("/api/flight/search-flights")
		return cacheKeyFrom(cfg, c)
	}
	a := key("/api/flight/search-flights?origin=DEL")
	b := key("/api/flight/search-flights?origin=BOM")
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, key("/api/flight/search-flights?origin=DEL"))
	assert.True(t, strings.HasPrefix(a, "fsb:cache:"))
}

func TestCapturedWriter_Limit(t *testing.T) {
	rec := httptest.NewRecorder()
	cw := &captureWriter{ResponseWriter: rec, status: http.StatusOK, limit: 4}
	_, _ = cw.Write([]byte("abc"))
	_, _ = cw.Write([]byte("defg"))
	assert.Equal(t, "abcd", cw.buf.String())
	assert.Equal(t, int64(7), cw.size)
	assert.Equal(t, "abcdefg", rec.Body.String())
}

func TestDisabledMiddlewarePassesThrough(t *testing.T) {
	e := echo.New()
	e.Use(NewRedisCache(config.CacheConfig{Enabled: true}, nil))
	e.Use(NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil, logger.Nop()))
	e.GET("/ping", func(c echo.Context) error { return c.String(http.StatusOK, "pong") })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
	assert.Empty(t, rec.Header().Get("X-Cache"))
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/booking", nil)
	req.Header.Set(HeaderUserID, "u-42")
	req.RemoteAddr = "10.0.0.1:5555"
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/api/booking")

	cfg := config.RateLimitConfig{Prefix: "fsb:rl"}
	assert.Equal(t, "fsb:rl:ip:10.0.0.1:user:u-42:route:POST /api/booking", buildRateKey(cfg, c))
	cfg.KeyStrategy = "user"
	assert.Equal(t, "fsb:rl:user:u-42", buildRateKey(cfg, c))
}

func TestUserID(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	assert.Equal(t, "guest", userID(c))

	c.Request().Header.Set(HeaderUserID, " u-1 ")
	assert.Equal(t, "u-1", userID(c))

	c.Set("user_id", "u-2")
	assert.Equal(t, "u-2", userID(c))
}

func TestAsInt64(t *testing.T) {
	assert.Equal(t, int64(3), asInt64(int64(3)))
	assert.Equal(t, int64(4), asInt64("4"))
	assert.Equal(t, int64(2), asInt64(2.9))
	assert.Zero(t, asInt64(nil))
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "info", "json")

	e := echo.New()
	e.Use(echomw.RequestID())
	e.Use(RequestLogger(log))
	var scoped *logger.Logger
	e.GET("/missing", func(c echo.Context) error {
		scoped = logger.FromContext(c.Request().Context(), nil)
		return c.JSON(http.StatusNotFound, echo.Map{"error": "nope"})
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))

	require.NotNil(t, scoped)
	assert.NotSame(t, log, scoped)
	out := buf.String()
	assert.Contains(t, out, `"status":404`)
	assert.Contains(t, out, `"level":"WARN"`)
	assert.Contains(t, out, `"uri":"/missing"`)
}
