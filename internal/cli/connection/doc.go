// Package connection provides server connections for rehashkv-cli.
//
//   - client.go: KV wire protocol client over TCP
//   - manager.go: lazily dialed connection shared by commands and the REPL
//   - http.go: admin HTTP client
package connection
