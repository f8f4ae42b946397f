package config

import (
	"strings"

	"github.com/yndnr/rehashkv/internal/server/kvserver"
	"github.com/yndnr/rehashkv/internal/telemetry/logger"
	"github.com/yndnr/rehashkv/pkg/dict"
)

// ToKVServerConfig converts the server section into kvserver.Config.
func ToKVServerConfig(cfg *ServerConfig) kvserver.Config {
	out := kvserver.DefaultConfig()
	out.Addr = cfg.Server.Listen
	out.Engine = strings.ToLower(cfg.Server.Engine)
	out.StrictCommands = cfg.Server.StrictCommands
	out.AcceptRate = cfg.Server.AcceptRate
	out.AcceptBurst = cfg.Server.AcceptBurst
	out.Multicore = cfg.Server.Multicore
	if cfg.Server.ReadChunk > 0 {
		out.ReadChunk = cfg.Server.ReadChunk
	}
	return out
}

// DictOptions converts the storage section into dictionary options.
func DictOptions(cfg *ServerConfig) []dict.Option {
	opts := []dict.Option{
		dict.WithInitialBuckets(cfg.Storage.InitialBuckets),
		dict.WithLoadFactor(cfg.Storage.LoadFactor),
		dict.WithMigrateBudget(cfg.Storage.MigrateBudget),
	}
	if h := dict.HashByName(cfg.Storage.Hash); h != nil {
		opts = append(opts, dict.WithHashFunc(h))
	}
	return opts
}

// ToLoggerConfig converts the log section into logger.Config.
func ToLoggerConfig(cfg *ServerConfig) logger.Config {
	out := logger.DefaultConfig()
	out.Level = cfg.Log.Level
	out.Format = cfg.Log.Format
	out.File = cfg.Log.File
	out.MaxSizeMB = cfg.Log.MaxSizeMB
	out.MaxBackups = cfg.Log.MaxBackups
	out.MaxAgeDays = cfg.Log.MaxAgeDays
	out.Compress = cfg.Log.Compress
	return out
}
