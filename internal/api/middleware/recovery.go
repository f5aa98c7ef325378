package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/labstack/echo/v4"

	"github.com/donaldgifford/watchlist/pkg/logger"
)

// Recovery returns Echo middleware that turns a handler panic into a 500
// response and logs it with the stack trace and request ID.
func Recovery(log *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				if r == http.ErrAbortHandler {
					panic(r)
				}

				log.Error("panic recovered",
					logger.KeyError, fmt.Sprint(r),
					"method", c.Request().Method,
					"path", c.Request().URL.Path,
					requestIDKey, RequestID(c),
					"stack", string(debug.Stack()),
				)

				err = c.JSON(http.StatusInternalServerError, map[string]string{
					"error": "internal server error",
				})
			}()
			return next(c)
		}
	}
}
