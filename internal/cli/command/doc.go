// Package command defines the rehashkv-cli commands using urfave/cli/v2.
//
//   - root.go: application, global flags, REPL as default action
//   - kv.go: get, set, del and exec
//   - stats.go: dictionary statistics from the admin endpoint
//   - version.go: build information
package command
