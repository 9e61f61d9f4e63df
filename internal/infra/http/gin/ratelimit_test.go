package ginserver

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gin "github.com/gin-gonic/gin"
)

func newLimitedRouter(rl *RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func hit(r http.Handler, remote string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = remote
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiterPerIP(t *testing.T) {
	r := newLimitedRouter(NewRateLimiter(0.01, 2))

	for i := 0; i < 2; i++ {
		if rec := hit(r, "10.0.0.1:1000"); rec.Code != http.StatusNoContent {
			t.Fatalf("request %d: status = %d", i, rec.Code)
		}
	}
	rec := hit(r, "10.0.0.1:1000")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("missing Retry-After")
	}
	if rec := hit(r, "10.0.0.2:1000"); rec.Code != http.StatusNoContent {
		t.Fatalf("other client limited: status = %d", rec.Code)
	}
}

func TestRateLimiterDisabled(t *testing.T) {
	r := newLimitedRouter(NewRateLimiter(0, 1))
	for i := 0; i < 20; i++ {
		if rec := hit(r, "10.0.0.1:1000"); rec.Code != http.StatusNoContent {
			t.Fatalf("request %d: status = %d", i, rec.Code)
		}
	}
}

func TestRateLimiterSweepsIdleVisitors(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	now := time.Date(2025, time.January, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.getLimiter("10.0.0.1")
	now = now.Add(visitorIdleTTL + time.Second)
	rl.getLimiter("10.0.0.2")

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if _, ok := rl.visitors["10.0.0.1"]; ok {
		t.Fatal("idle visitor was not swept")
	}
	if _, ok := rl.visitors["10.0.0.2"]; !ok {
		t.Fatal("active visitor missing")
	}
}
