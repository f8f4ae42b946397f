// Package metric provides Prometheus metrics for rehashkv.
//
// This package implements metrics collection and exposition:
//
//   - prometheus.go: Registry with connection, command and traffic metrics
//   - collector.go: DictCollector, read from the store on every scrape
//
// Metrics are exposed at /metrics on the admin HTTP server.
package metric
