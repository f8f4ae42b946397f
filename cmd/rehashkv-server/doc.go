// Package main provides the entry point for rehashkv-server.
//
// The server holds one incrementally-rehashing dictionary in memory and
// serves it over a length-prefixed TCP protocol. It optionally exposes an
// admin HTTP endpoint with health, Prometheus metrics and dictionary
// statistics.
//
// Usage:
//
//	rehashkv-server [flags]
//	rehashkv-server --config /path/to/config.yaml
//	rehashkv-server --listen 0.0.0.0:6380 --engine gnet
package main
