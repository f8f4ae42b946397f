package httpserver

import (
	"net/http"

	"github.com/yndnr/rehashkv/internal/server/httpserver/handler"
	"github.com/yndnr/rehashkv/internal/telemetry/logger"
)

// RouterConfig holds configuration for the admin router.
type RouterConfig struct {
	// Stats supplies /debug/dict.
	Stats handler.StatsSource

	// Metrics serves /metrics. Nil disables the endpoint.
	Metrics http.Handler

	// Logger for request logging.
	Logger logger.Logger
}

// NewRouter creates the admin router with all routes and middleware.
func NewRouter(cfg *RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = logger.Default()
	}
	h := handler.New(cfg.Stats, log)

	mux := http.NewServeMux()
	mux.Handle("GET /healthz", h)
	mux.Handle("GET /debug/dict", h)
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics)
	}

	// Order: Recover -> RequestID -> AccessLog -> mux
	return Chain(mux, Recover(log), RequestID(), AccessLog(log))
}
