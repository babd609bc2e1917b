package logger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name string
		cfg  LogConfig
	}{
		{"development", LogConfig{Level: "debug", Environment: "development", ServiceName: "gymhub"}},
		{"production", LogConfig{Level: "warn", Environment: "production", ServiceName: "gymhub"}},
		{"unknown level", LogConfig{Level: "loud"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.cfg)
			if err != nil || l == nil {
				t.Fatalf("New() = %v, %v", l, err)
			}
		})
	}
}

func TestFromContextFallsBack(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Fatal("FromContext() returned nil without a logger")
	}
	l := zap.NewNop()
	if FromContext(WithContext(context.Background(), l)) != l {
		t.Error("FromContext() did not return the stored logger")
	}
}

func TestMiddlewareLogsRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)

	router := gin.New()
	router.Use(Middleware(zap.New(core)))
	router.GET("/ping", func(c *gin.Context) {
		FromContext(c.Request.Context()).Info("inside")
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "req-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Header().Get("X-Request-ID") != "req-1" {
		t.Errorf("X-Request-ID = %q", w.Header().Get("X-Request-ID"))
	}
	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("log entries = %d, want 2", len(entries))
	}
	for _, e := range entries {
		if e.ContextMap()["request_id"] != "req-1" {
			t.Errorf("entry %q missing request_id: %v", e.Message, e.ContextMap())
		}
	}
}
