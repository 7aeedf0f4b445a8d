package middleware

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// TimeoutConfig returns timeout middleware configuration
func TimeoutConfig(timeout time.Duration) echo.MiddlewareFunc {
	return middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: timeout,
	})
}

// SelectiveTimeoutConfig applies a longer timeout to posting test
// requests, which may scrape application pages, and the default
// everywhere else
func SelectiveTimeoutConfig(defaultTimeout, scrapeTimeout time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			timeout := defaultTimeout
			if strings.HasPrefix(c.Path(), "/api/v1/postings") {
				timeout = scrapeTimeout
			}
			handler := middleware.TimeoutWithConfig(middleware.TimeoutConfig{
				Timeout: timeout,
			})(next)
			return handler(c)
		}
	}
}
