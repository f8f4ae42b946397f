package command

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/yndnr/rehashkv/internal/server/httpserver"
	"github.com/yndnr/rehashkv/internal/server/kvserver"
	"github.com/yndnr/rehashkv/internal/storage/memory"
)

// ============================================================
// Test Helpers
// ============================================================

// testEnv is a running KV server plus an admin endpoint sharing one store.
type testEnv struct {
	store *memory.Store
	kv    *kvserver.Server
	admin *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memory.New()
	cfg := kvserver.DefaultConfig()
	cfg.Addr = "127.0.0.1:0"

	srv, err := kvserver.New(cfg, store)
	if err != nil {
		t.Fatalf("kvserver.New() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	if err := srv.Start(ctx); err != nil {
		cancel()
		if errors.Is(err, kvserver.ErrUnsupportedPlatform) {
			t.Skip("reactor not supported on this platform")
		}
		t.Fatalf("Start() error = %v", err)
	}

	admin := httptest.NewServer(httpserver.NewRouter(&httpserver.RouterConfig{Stats: store}))

	t.Cleanup(func() {
		admin.Close()
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		srv.Shutdown(shutdownCtx)
		cancel()
	})

	return &testEnv{store: store, kv: srv, admin: admin}
}

// run executes the CLI against env and returns what it printed.
func (e *testEnv) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	var out bytes.Buffer
	app := App()
	app.Writer = &out
	app.ErrWriter = &out
	app.Reader = strings.NewReader(stdin)

	argv := []string{
		"rehashkv-cli",
		"--server", e.kv.Addr().String(),
		"--admin", strings.TrimPrefix(e.admin.URL, "http://"),
		"--timeout", "2s",
	}
	err := app.Run(append(argv, args...))
	return out.String(), err
}
