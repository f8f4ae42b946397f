// Package httpserver provides the admin HTTP server for rehashkv.
//
// Endpoints:
//
//   - GET /healthz: liveness check
//   - GET /metrics: Prometheus exposition
//   - GET /debug/dict: dictionary statistics as JSON
//
// The server is optional and never touches the KV wire protocol.
package httpserver
