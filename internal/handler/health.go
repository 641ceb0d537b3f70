package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// Health is the liveness probe. It returns a plain text "ok" as long as the
// process is serving requests.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// ReadyHandler reports whether the service's dependencies answer.
type ReadyHandler struct {
	DB    Pinger
	Redis *redis.Client // nil when the service runs without Redis
}

// Ready handles GET /readyz. MySQL is required; Redis is reported but
// optional because the service degrades without it.
func (h *ReadyHandler) Ready(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	checks := echo.Map{"database": "ok", "redis": "disabled"}
	status := http.StatusOK
	if err := h.DB.PingContext(ctx); err != nil {
		checks["database"] = err.Error()
		status = http.StatusServiceUnavailable
	}
	if h.Redis != nil {
		checks["redis"] = "ok"
		if err := h.Redis.Ping(ctx).Err(); err != nil {
			checks["redis"] = err.Error()
		}
	}
	return c.JSON(status, echo.Map{"ready": status == http.StatusOK, "checks": checks})
}
