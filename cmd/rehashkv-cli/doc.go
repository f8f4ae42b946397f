// Package main provides the entry point for rehashkv-cli.
//
// rehashkv-cli talks to rehashkv-server over the key-value protocol and
// reads dictionary statistics from the admin endpoint. Without a command
// it starts an interactive REPL.
package main
