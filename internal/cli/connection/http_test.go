package connection

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNewAdminClient(t *testing.T) {
	tests := []struct {
		server string
		want   string
	}{
		{"localhost:9380", "http://localhost:9380"},
		{"http://localhost:9380/", "http://localhost:9380"},
		{"https://admin.example", "https://admin.example"},
	}
	for _, tt := range tests {
		if got := NewAdminClient(tt.server, time.Second).BaseURL(); got != tt.want {
			t.Errorf("BaseURL(%q) = %q, want %q", tt.server, got, tt.want)
		}
	}
}

func TestAdminClient_GetAndParse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("User-Agent"), "rehashkv-cli/") {
			t.Errorf("User-Agent = %q", r.Header.Get("User-Agent"))
		}
		switch r.URL.Path {
		case "/debug/dict":
			json.NewEncoder(w).Encode(map[string]any{
				"code": "OK",
				"data": map[string]any{"size": 3, "migrating": true},
			})
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"code": "UNAVAILABLE", "message": "no store attached"})
		}
	}))
	defer srv.Close()

	c := NewAdminClient(srv.URL, time.Second)

	resp, err := c.Get(context.Background(), "/debug/dict")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	var data struct {
		Size      int  `json:"size"`
		Migrating bool `json:"migrating"`
	}
	if err := ParseResponse(resp, &data); err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}
	if data.Size != 3 || !data.Migrating {
		t.Errorf("data = %+v", data)
	}

	resp, err = c.Get(context.Background(), "/other")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	err = ParseResponse(resp, nil)
	if err == nil || !strings.Contains(err.Error(), "no store attached") {
		t.Errorf("ParseResponse error = %v", err)
	}
}
