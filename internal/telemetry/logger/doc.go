// Package logger provides structured logging for rehashkv.
//
// This package wraps zap for structured logging:
//
//   - logger.go: Logger interface, configuration and runtime level
//   - zap.go: zap core construction and lumberjack file rotation
//   - context.go: Context-aware logging with connection IDs
//
// Features:
//
//   - JSON and console output formats
//   - Log level filtering, adjustable at runtime
//   - Optional rotating log file
package logger
