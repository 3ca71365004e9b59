package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

const timeoutMessage = "request processing exceeded the allowed time limit"

// RequestTimeout sets a context deadline on each incoming request. The
// completion call inherits it, so a stalled model cannot hold a request
// open. If the deadline passes before the handler has written anything, a
// 504 is sent at once and later writes from the handler are discarded. The
// middleware still waits for the handler to return before releasing the
// context.
func RequestTimeout(timeout time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
			defer cancel()

			c.SetRequest(c.Request().WithContext(ctx))

			resp := c.Response()
			orig := resp.Writer
			tw := newTimeoutWriter(orig)
			resp.Writer = tw
			defer func() { resp.Writer = orig }()

			done := make(chan error, 1)
			go func() {
				done <- next(c)
			}()

			select {
			case err := <-done:
				return err
			case <-ctx.Done():
			}

			expired := ctx.Err() == context.DeadlineExceeded && tw.expire()
			err := <-done
			if !expired {
				// Client went away, or the handler had already started its response.
				return err
			}
			resp.Status = http.StatusGatewayTimeout
			resp.Size = tw.size
			resp.Committed = true
			return nil
		}
	}
}

// timeoutWriter guards the response between the handler goroutine and the
// deadline. The handler works on its own header map, which is copied out
// when it writes the status line.
type timeoutWriter struct {
	w http.ResponseWriter
	h http.Header

	mu          sync.Mutex
	wroteHeader bool
	timedOut    bool
	size        int64
}

func newTimeoutWriter(w http.ResponseWriter) *timeoutWriter {
	return &timeoutWriter{w: w, h: w.Header().Clone()}
}

func (tw *timeoutWriter) Header() http.Header {
	return tw.h
}

func (tw *timeoutWriter) WriteHeader(code int) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	tw.writeHeaderLocked(code)
}

func (tw *timeoutWriter) writeHeaderLocked(code int) {
	if tw.timedOut || tw.wroteHeader {
		return
	}
	tw.wroteHeader = true
	dst := tw.w.Header()
	for k := range dst {
		if _, ok := tw.h[k]; !ok {
			dst.Del(k)
		}
	}
	for k, v := range tw.h {
		dst[k] = v
	}
	tw.w.WriteHeader(code)
}

func (tw *timeoutWriter) Write(b []byte) (int, error) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut {
		return 0, http.ErrHandlerTimeout
	}
	tw.writeHeaderLocked(http.StatusOK)
	return tw.w.Write(b)
}

func (tw *timeoutWriter) Flush() {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut {
		return
	}
	if f, ok := tw.w.(http.Flusher); ok {
		f.Flush()
	}
}

// expire writes the 504 unless the handler has already begun its response.
// It reports whether the 504 was written.
func (tw *timeoutWriter) expire() bool {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.wroteHeader {
		return false
	}
	tw.timedOut = true

	body, _ := json.Marshal(map[string]string{"error": timeoutMessage})
	body = append(body, '\n')
	tw.w.Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	tw.w.WriteHeader(http.StatusGatewayTimeout)
	n, _ := tw.w.Write(body)
	tw.size = int64(n)
	if f, ok := tw.w.(http.Flusher); ok {
		f.Flush()
	}
	return true
}
