// Package config provides server configuration for rehashkv.
//
// This package defines the server configuration structure and validation:
//
//   - spec.go: ServerConfig struct definition
//   - default.go: Default configuration values
//   - verify.go: Validation of addresses, engine names and dictionary tuning
//   - kvserver.go: Conversion into kvserver, dict and logger settings
//
// Configuration is loaded via internal/infra/confloader and supports
// multiple sources: files, environment variables, and flags.
package config
