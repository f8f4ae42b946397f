package kvserver

import (
	"github.com/yndnr/rehashkv/internal/protocol"
	"github.com/yndnr/rehashkv/internal/storage/memory"
	"github.com/yndnr/rehashkv/internal/telemetry/metric"
)

// Handler executes commands against a store. It is shared by every
// connection of a server and is safe for concurrent use.
type Handler struct {
	store   *memory.Store
	strict  bool
	metrics *metric.Registry
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithStrictCommands answers unknown commands with ERR instead of an
// empty OK.
func WithStrictCommands(strict bool) HandlerOption {
	return func(h *Handler) {
		h.strict = strict
	}
}

// WithHandlerMetrics records command and traffic metrics in r.
func WithHandlerMetrics(r *metric.Registry) HandlerOption {
	return func(h *Handler) {
		h.metrics = r
	}
}

// NewHandler creates a handler over store.
func NewHandler(store *memory.Store, opts ...HandlerOption) *Handler {
	h := &Handler{store: store}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Execute runs one request and appends its response frame to dst. Only
// the exact verbs get, set and del are commands; any other verb, including
// "GET", is answered like an unknown command.
func (h *Handler) Execute(dst []byte, args []string) []byte {
	name := "unknown"
	if len(args) > 0 {
		name = args[0]
	}

	var (
		status  protocol.Status
		payload string
	)
	switch {
	case name == "get" && len(args) == 2:
		status, payload = h.handleGet(args[1])
	case name == "set" && len(args) == 3:
		status, payload = h.handleSet(args[1], args[2])
	case name == "del" && len(args) == 2:
		status, payload = h.handleDel(args[1])
	case !h.strict:
		status = protocol.StatusOK
	case name == "get" || name == "set" || name == "del":
		status, payload = protocol.StatusErr, "wrong number of arguments for '"+name+"'"
	default:
		name = "unknown"
		status, payload = protocol.StatusErr, "unknown command"
	}

	switch name {
	case "get", "set", "del":
	default:
		name = "unknown"
	}
	if h.metrics != nil {
		h.metrics.RecordCommand(name, status.String())
	}
	return protocol.AppendResponse(dst, status, []byte(payload))
}

func (h *Handler) handleGet(key string) (protocol.Status, string) {
	v, ok := h.store.Get(key)
	if !ok {
		return protocol.StatusNotFound, ""
	}
	return protocol.StatusOK, v
}

func (h *Handler) handleSet(key, value string) (protocol.Status, string) {
	h.store.Set(key, value)
	return protocol.StatusOK, value
}

func (h *Handler) handleDel(key string) (protocol.Status, string) {
	v, ok := h.store.Delete(key)
	if !ok {
		return protocol.StatusNotFound, ""
	}
	return protocol.StatusOK, v
}

func (h *Handler) noteRead(n int) {
	if h.metrics != nil {
		h.metrics.AddBytesRead(n)
	}
}

func (h *Handler) noteWritten(n int) {
	if h.metrics != nil {
		h.metrics.AddBytesWritten(n)
	}
}

func (h *Handler) noteProtocolError() {
	if h.metrics != nil {
		h.metrics.IncProtocolError()
	}
}
