// Package config reads and writes the rehashkv-cli configuration file
// (~/.rehashkv/cli.yaml). Values in the file are defaults; command-line
// flags and environment variables override them.
package config
