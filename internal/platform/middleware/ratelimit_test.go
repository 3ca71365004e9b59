package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func requestFrom(e *echo.Echo, path, remoteAddr string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, path, nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestRateLimit_RequestsWithinLimit(t *testing.T) {
	e := echo.New()
	handler := RateLimit(RateLimitConfig{RequestsPerSecond: 10, BurstSize: 5})(okHandler)

	// Send 5 requests (within burst size), all should pass
	for i := 0; i < 5; i++ {
		c, rec := requestFrom(e, "/api/v1/soap-notes/generate", "10.0.0.1:1000")
		if err := handler(c); err != nil {
			t.Fatalf("request %d: expected no error, got %v", i+1, err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, rec.Code)
		}
		if got := rec.Header().Get("X-RateLimit-Limit"); got != "10" {
			t.Errorf("request %d: expected X-RateLimit-Limit '10', got %q", i+1, got)
		}
	}
}

func TestRateLimit_ExceedsLimit(t *testing.T) {
	e := echo.New()
	handler := RateLimit(RateLimitConfig{RequestsPerSecond: 1, BurstSize: 2})(okHandler)

	for i := 0; i < 2; i++ {
		c, _ := requestFrom(e, "/", "10.0.0.1:1000")
		if err := handler(c); err != nil {
			t.Fatalf("request %d: expected no error, got %v", i+1, err)
		}
	}

	c, rec := requestFrom(e, "/", "10.0.0.1:1000")
	err := handler(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", httpErr.Code)
	}

	retryVal, parseErr := strconv.Atoi(rec.Header().Get("Retry-After"))
	if parseErr != nil || retryVal < 1 {
		t.Errorf("expected Retry-After >= 1, got %q", rec.Header().Get("Retry-After"))
	}
	if got := rec.Header().Get("X-RateLimit-Remaining"); got != "0" {
		t.Errorf("expected X-RateLimit-Remaining '0', got %q", got)
	}
}

func TestRateLimit_PerClientIsolation(t *testing.T) {
	e := echo.New()
	handler := RateLimit(RateLimitConfig{RequestsPerSecond: 1, BurstSize: 1})(okHandler)

	c1, _ := requestFrom(e, "/", "10.0.0.1:1000")
	if err := handler(c1); err != nil {
		t.Fatalf("client a first request: expected no error, got %v", err)
	}
	c2, _ := requestFrom(e, "/", "10.0.0.1:1001")
	if err := handler(c2); err == nil {
		t.Fatal("client a second request: expected rate limit error")
	}
	c3, _ := requestFrom(e, "/", "10.0.0.2:1000")
	if err := handler(c3); err != nil {
		t.Fatalf("client b first request: expected no error, got %v", err)
	}
}

func TestRateLimit_Skip(t *testing.T) {
	e := echo.New()
	cfg := RateLimitConfig{
		RequestsPerSecond: 1,
		BurstSize:         1,
		Skip:              func(c echo.Context) bool { return c.Request().URL.Path == "/health" },
	}
	handler := RateLimit(cfg)(okHandler)

	for i := 0; i < 5; i++ {
		c, _ := requestFrom(e, "/health", "10.0.0.1:1000")
		if err := handler(c); err != nil {
			t.Fatalf("health request %d: expected no error, got %v", i+1, err)
		}
	}
	c, _ := requestFrom(e, "/api/v1/soap-notes/pdf", "10.0.0.1:1000")
	if err := handler(c); err != nil {
		t.Fatalf("expected skipped requests not to consume tokens, got %v", err)
	}
}

func TestRateLimit_DefaultConfig(t *testing.T) {
	cfg := DefaultRateLimitConfig()
	if cfg.RequestsPerSecond != 10 {
		t.Errorf("expected RequestsPerSecond 10, got %f", cfg.RequestsPerSecond)
	}
	if cfg.BurstSize != 20 {
		t.Errorf("expected BurstSize 20, got %d", cfg.BurstSize)
	}
	if cfg.IdleTTL <= 0 {
		t.Error("expected a positive idle TTL")
	}
}

func TestTokenBucket_Refill(t *testing.T) {
	now := time.Unix(1000, 0)
	b := newTokenBucket(2, 1, now)

	if ok, _ := b.take(now); !ok {
		t.Fatal("expected first token")
	}
	if ok, ra := b.take(now); ok || ra != 1 {
		t.Fatalf("expected empty bucket with retry 1, got %v %d", ok, ra)
	}
	if ok, _ := b.take(now.Add(600 * time.Millisecond)); !ok {
		t.Error("expected a token after refill")
	}
}

func TestTokenBucket_RetryAfterWithZeroRate(t *testing.T) {
	now := time.Unix(1000, 0)
	b := newTokenBucket(0, 1, now)
	b.take(now)
	if _, ra := b.take(now); ra != 1 {
		t.Errorf("expected retryAfter 1 for zero rate, got %d", ra)
	}
}

func TestRateLimiterStore_EvictsIdleBuckets(t *testing.T) {
	start := time.Unix(1000, 0)
	store := newRateLimiterStore(RateLimitConfig{RequestsPerSecond: 1, BurstSize: 1, IdleTTL: time.Minute})
	store.lastSweep = start

	b1 := store.getBucket("a", start)
	if b2 := store.getBucket("a", start); b1 != b2 {
		t.Error("expected same bucket instance for same key")
	}
	store.getBucket("b", start.Add(30*time.Second))
	if store.size() != 2 {
		t.Fatalf("expected 2 buckets, got %d", store.size())
	}

	store.getBucket("c", start.Add(80*time.Second))
	if store.size() != 2 {
		t.Errorf("expected idle bucket evicted, got %d buckets", store.size())
	}
	if _, ok := store.buckets["a"]; ok {
		t.Error("expected bucket a to be evicted")
	}
}
