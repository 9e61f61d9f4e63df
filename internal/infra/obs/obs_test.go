package obs

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{"debug": slog.LevelDebug, "WARN": slog.LevelWarn, "error": slog.LevelError, "": slog.LevelInfo, "noise": slog.LevelInfo}
	for raw, want := range cases {
		if got := ParseLevel(raw); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", raw, got, want)
		}
	}
}

func TestRequestIDAndAccessLog(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	m := Middleware{Logger: newLogger(&buf, "prod", "info")}
	r := gin.New()
	r.Use(m.RequestID(), m.LoggerMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		if RequestIDFromContext(c.Request.Context()) == "" {
			t.Error("request id missing from context")
		}
		c.Status(http.StatusTeapot)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if got := rec.Header().Get(RequestIDHeader); got != "req-42" {
		t.Fatalf("expected echoed request id, got %q", got)
	}
	line := buf.String()
	if !strings.Contains(line, `"request_id":"req-42"`) || !strings.Contains(line, `"level":"WARN"`) {
		t.Fatalf("unexpected access log: %s", line)
	}
}

func TestReadyzReportsFailures(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := HealthHandlers{Checks: map[string]Check{
		"store": func(context.Context) error { return nil },
		"locks": func(context.Context) error { return errors.New("redis down") },
	}}
	r := gin.New()
	r.GET("/readyz", h.Readyz)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable || !strings.Contains(rec.Body.String(), "redis down") {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
}
