// Package repl provides the interactive mode of rehashkv-cli.
//
// Each input line is split shell-style into arguments and handed to an
// Executor, which sends it to the server as one request.
package repl
