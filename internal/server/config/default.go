package config

// Default configuration values.
const (
	DefaultListen      = "127.0.0.1:6380"
	DefaultEngine      = "reactor"
	DefaultAcceptBurst = 64
	DefaultReadChunk   = 64 << 10

	DefaultAdminAddr = "127.0.0.1:9380"

	DefaultInitialBuckets = 4
	DefaultLoadFactor     = 2
	DefaultMigrateBudget  = 2
	DefaultHash           = "murmur3"

	DefaultLogLevel      = "info"
	DefaultLogFormat     = "json"
	DefaultLogMaxSizeMB  = 100
	DefaultLogMaxBackups = 3
	DefaultLogMaxAgeDays = 28
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			Listen:      DefaultListen,
			Engine:      DefaultEngine,
			AcceptBurst: DefaultAcceptBurst,
			ReadChunk:   DefaultReadChunk,
		},
		Admin: AdminSection{
			Enabled: false,
			Addr:    DefaultAdminAddr,
		},
		Storage: StorageSection{
			InitialBuckets: DefaultInitialBuckets,
			LoadFactor:     DefaultLoadFactor,
			MigrateBudget:  DefaultMigrateBudget,
			Hash:           DefaultHash,
		},
		Log: LogSection{
			Level:      DefaultLogLevel,
			Format:     DefaultLogFormat,
			MaxSizeMB:  DefaultLogMaxSizeMB,
			MaxBackups: DefaultLogMaxBackups,
			MaxAgeDays: DefaultLogMaxAgeDays,
		},
	}
}
