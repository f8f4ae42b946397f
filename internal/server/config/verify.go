package config

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/yndnr/rehashkv/pkg/dict"
)

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	if err := verifyServer(&cfg.Server); err != nil {
		return err
	}
	if err := verifyAdmin(&cfg.Admin, &cfg.Server); err != nil {
		return err
	}
	if err := verifyStorage(&cfg.Storage); err != nil {
		return err
	}
	return verifyLog(&cfg.Log)
}

func verifyServer(cfg *ServerSection) error {
	if cfg.Listen == "" {
		return errors.New("server.listen is required")
	}
	if _, _, err := net.SplitHostPort(cfg.Listen); err != nil {
		return fmt.Errorf("server.listen: %w", err)
	}

	switch strings.ToLower(cfg.Engine) {
	case "reactor", "gnet":
	default:
		return fmt.Errorf("server.engine must be reactor or gnet, got %q", cfg.Engine)
	}

	if cfg.AcceptRate < 0 {
		return errors.New("server.accept_rate must not be negative")
	}
	if cfg.AcceptRate > 0 && cfg.AcceptBurst < 1 {
		return errors.New("server.accept_burst must be at least 1 when accept_rate is set")
	}
	if cfg.ReadChunk < 512 {
		return errors.New("server.read_chunk must be at least 512")
	}
	return nil
}

func verifyAdmin(cfg *AdminSection, srv *ServerSection) error {
	if !cfg.Enabled {
		return nil
	}
	if _, _, err := net.SplitHostPort(cfg.Addr); err != nil {
		return fmt.Errorf("admin.addr: %w", err)
	}
	if cfg.Addr == srv.Listen {
		return errors.New("admin.addr must differ from server.listen")
	}
	return nil
}

func verifyStorage(cfg *StorageSection) error {
	n := cfg.InitialBuckets
	if n < 1 || n&(n-1) != 0 {
		return fmt.Errorf("storage.initial_buckets must be a power of two, got %d", n)
	}
	if cfg.LoadFactor < 1 {
		return errors.New("storage.load_factor must be at least 1")
	}
	if cfg.MigrateBudget < 1 {
		return errors.New("storage.migrate_budget must be at least 1")
	}
	if dict.HashByName(cfg.Hash) == nil {
		return fmt.Errorf("storage.hash must be murmur3 or xxhash, got %q", cfg.Hash)
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	switch strings.ToLower(cfg.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level %q is not recognized", cfg.Level)
	}
	switch strings.ToLower(cfg.Format) {
	case "json", "text", "console":
	default:
		return fmt.Errorf("log.format %q is not recognized", cfg.Format)
	}
	return nil
}
