// Package handler provides the admin HTTP handlers for rehashkv.
//
//   - health.go: liveness
//   - dict.go: dictionary statistics
package handler
