// Package confloader provides configuration loading mechanism.
//
// This package implements a configuration loader on top of koanf that
// merges several sources into one typed struct.
//
// Priority (highest to lowest):
//
//  1. Overrides, usually command-line flags (WithOverrides)
//  2. Environment variables (REHASHKV_SECTION_KEY)
//  3. Configuration file (YAML)
//  4. Default values already present in the target struct
//
// Watcher reports changes to a configuration file through fsnotify so
// that runtime-adjustable settings, such as the log level, can be
// re-applied without a restart.
package confloader
