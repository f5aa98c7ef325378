// Package middleware provides Echo middleware for the watchlist HTTP service.
package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/donaldgifford/watchlist/internal/metrics"
)

// probeGauges maps probe paths to the gauge tracking their last outcome.
// Probe and scrape paths are kept out of the request histogram.
var probeGauges = map[string]prometheus.Gauge{
	"/healthz": metrics.HealthcheckStatus,
	"/readyz":  metrics.ReadinessStatus,
}

const scrapePath = "/metrics"

// Metrics returns Echo middleware that records request duration and count
// by method, route and status.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			route := c.Path()
			if route == "" {
				route = c.Request().URL.Path
			}

			if gauge, ok := probeGauges[route]; ok {
				err := next(c)
				gauge.Set(boolGauge(c.Response().Status < http.StatusBadRequest))
				return err
			}
			if route == scrapePath {
				return next(c)
			}

			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok && !c.Response().Committed {
				status = he.Code
			}
			labels := []string{c.Request().Method, route, strconv.Itoa(status)}

			metrics.HTTPRequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
			metrics.HTTPRequestsTotal.WithLabelValues(labels...).Inc()

			return err
		}
	}
}

func boolGauge(ok bool) float64 {
	if ok {
		return 1
	}
	return 0
}
