package middleware

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// probePaths are logged once on success; failures are always logged.
var probePaths = map[string]struct{}{
	"/healthz": {},
	"/readyz":  {},
}

// RequestLog returns Echo middleware that logs each request with a request
// ID, taking it from X-Request-ID or generating one. The ID is echoed in the
// response header and stored on the echo context. Repeated successful probe
// requests are not logged.
func RequestLog(log *slog.Logger) echo.MiddlewareFunc {
	var seenProbe sync.Map

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			reqID := c.Request().Header.Get(requestIDHeader)
			if reqID == "" {
				reqID = uuid.NewString()
			}
			c.Set(requestIDKey, reqID)
			c.Response().Header().Set(requestIDHeader, reqID)

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			path := c.Request().URL.Path
			status := c.Response().Status

			_, probe := probePaths[path]
			if probe && status < http.StatusBadRequest {
				if _, logged := seenProbe.LoadOrStore(path, true); logged {
					return nil
				}
			}

			level := slog.LevelInfo
			if status >= http.StatusInternalServerError || (probe && status >= http.StatusBadRequest) {
				level = slog.LevelWarn
			}

			log.Log(c.Request().Context(), level, "request",
				"method", c.Request().Method,
				"path", path,
				"route", c.Path(),
				"status", status,
				"duration_ms", time.Since(start).Milliseconds(),
				requestIDKey, reqID,
			)

			return nil
		}
	}
}

// RequestID returns the request ID stored by RequestLog, if any.
func RequestID(c echo.Context) string {
	id, _ := c.Get(requestIDKey).(string)
	return id
}
