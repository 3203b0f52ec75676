package middleware

import (
	"time"

	"p2p-lending/internal/infrastructure/metrics"

	"github.com/labstack/echo/v4"
)

// RequestMetrics observes every request under its route template, so
// /loans/:loan_id stays one series.
func RequestMetrics(m *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			m.ObserveHTTP(c.Request().Method, path, c.Response().Status, time.Since(start))
			return nil
		}
	}
}
