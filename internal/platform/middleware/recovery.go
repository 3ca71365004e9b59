package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const panicStackSize = 4 << 10

// Recovery turns a handler panic into a 500 and logs it with the request ID
// and a trimmed stack. http.ErrAbortHandler is re-raised so net/http can drop
// the connection quietly.
func Recovery(logger zerolog.Logger) echo.MiddlewareFunc {
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
				logPanic(logger, c, r)
				err = echo.NewHTTPError(http.StatusInternalServerError, map[string]string{
					"error": "internal server error",
				})
			}()
			return next(c)
		}
	}
}

func logPanic(logger zerolog.Logger, c echo.Context, r interface{}) {
	stack := make([]byte, panicStackSize)
	stack = stack[:runtime.Stack(stack, false)]

	perr, ok := r.(error)
	if !ok {
		perr = errors.New(fmt.Sprint(r))
	}

	rid, _ := c.Get("request_id").(string)
	logger.Error().
		Err(perr).
		Str("request_id", rid).
		Str("method", c.Request().Method).
		Str("path", c.Request().URL.Path).
		Bytes("stack", stack).
		Msg("panic recovered")
}
