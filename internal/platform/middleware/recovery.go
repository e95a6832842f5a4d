package middleware

import (
	"fmt"
	"net/http"
	"runtime"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Recovery converts a handler panic into a 500. The response carries the
// request id as an incident reference the front desk can report, while the
// panic value and stack go only to the log.
func Recovery(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					rid, _ := c.Get("request_id").(string)

					var stack [8192]byte
					n := runtime.Stack(stack[:], false)

					logger.Error().
						Str("request_id", rid).
						Str("method", c.Request().Method).
						Str("path", c.Request().URL.Path).
						Str("panic", fmt.Sprintf("%v", r)).
						Str("stack", string(stack[:n])).
						Msg("panic recovered")

					msg := "internal server error"
					if rid != "" {
						msg = fmt.Sprintf("internal server error, reference %s", rid)
					}
					err = echo.NewHTTPError(http.StatusInternalServerError, msg)
				}
			}()
			return next(c)
		}
	}
}
