package httpserver

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/yndnr/rehashkv/internal/storage/memory"
	"github.com/yndnr/rehashkv/internal/telemetry/metric"
)

func TestNew(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	s := New(":8080", handler)
	if s == nil {
		t.Fatal("New returned nil")
	}
	if s.httpServer == nil {
		t.Error("httpServer is nil")
	}
	if s.handler == nil {
		t.Error("handler is nil")
	}
}

func TestServer_StartShutdown(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pong"))
	})

	s := New("127.0.0.1:0", handler)
	if err := s.Start(); err != nil {
		t.Fatalf("Start error: %v", err)
	}

	resp, err := http.Get("http://" + s.Addr().String() + "/")
	if err != nil {
		t.Fatalf("GET error: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "pong" {
		t.Errorf("body = %q, want pong", body)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown error: %v", err)
	}
}

func TestServer_ShutdownWithoutStart(t *testing.T) {
	s := New("127.0.0.1:0", http.NotFoundHandler())
	if err := s.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown error: %v", err)
	}
}

// ============================================================
// Router
// ============================================================

func newTestRouter() (http.Handler, *memory.Store) {
	store := memory.New()
	reg := metric.NewRegistry()
	reg.Register(metric.NewDictCollector(store))
	return NewRouter(&RouterConfig{Stats: store, Metrics: reg.Handler()}), store
}

func TestRouter_Routes(t *testing.T) {
	router, store := newTestRouter()
	store.Set("a", "1")

	tests := []struct {
		method   string
		path     string
		wantCode int
		contains string
	}{
		{http.MethodGet, "/healthz", http.StatusOK, "ok"},
		{http.MethodGet, "/metrics", http.StatusOK, "rehashkv_dict_keys 1"},
		{http.MethodGet, "/debug/dict", http.StatusOK, `"size":1`},
		{http.MethodPost, "/healthz", http.StatusMethodNotAllowed, ""},
		{http.MethodGet, "/nope", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.contains != "" && !strings.Contains(rec.Body.String(), tt.contains) {
				t.Errorf("body does not contain %q:\n%s", tt.contains, rec.Body.String())
			}
			if rec.Header().Get("X-Request-ID") == "" {
				t.Error("missing X-Request-ID header")
			}
		})
	}
}

func TestRouter_DictStatsEnvelope(t *testing.T) {
	router, store := newTestRouter()
	for _, k := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i"} {
		store.Set(k, k)
	}

	req := httptest.NewRequest(http.MethodGet, "/debug/dict", nil)
	req.Header.Set("X-Request-ID", "req-test")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var body struct {
		Code      string `json:"code"`
		RequestID string `json:"request_id"`
		Data      struct {
			Size      int  `json:"size"`
			Migrating bool `json:"migrating"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Code != "OK" || body.RequestID != "req-test" {
		t.Errorf("envelope = %+v", body)
	}
	if body.Data.Size != 9 {
		t.Errorf("size = %d, want 9", body.Data.Size)
	}
	if body.Data.Migrating != store.Stats().Migrating {
		t.Errorf("migrating = %v, want %v", body.Data.Migrating, store.Stats().Migrating)
	}
}

func TestRouter_NoMetrics(t *testing.T) {
	router := NewRouter(&RouterConfig{Stats: memory.New()})
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
