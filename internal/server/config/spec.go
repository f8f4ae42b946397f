package config

// ServerConfig is the root configuration for rehashkv-server.
type ServerConfig struct {
	Server  ServerSection  `koanf:"server"`
	Admin   AdminSection   `koanf:"admin"`
	Storage StorageSection `koanf:"storage"`
	Log     LogSection     `koanf:"log"`
}

// ServerSection configures the key-value listener.
type ServerSection struct {
	// Listen is the TCP address of the key-value protocol.
	Listen string `koanf:"listen"`

	// Engine selects the event loop: "reactor" (built-in epoll/kqueue) or
	// "gnet".
	Engine string `koanf:"engine"`

	// StrictCommands answers unknown commands with ERR instead of an empty
	// OK.
	StrictCommands bool `koanf:"strict_commands"`

	// AcceptRate limits new connections per second. 0 disables the limit.
	AcceptRate float64 `koanf:"accept_rate"`

	// AcceptBurst is the burst allowed by the accept limiter.
	AcceptBurst int `koanf:"accept_burst"`

	// ReadChunk is the size of a single socket read.
	ReadChunk int `koanf:"read_chunk"`

	// Multicore runs one gnet event loop per CPU. Ignored by the reactor
	// engine.
	Multicore bool `koanf:"multicore"`
}

// AdminSection configures the admin HTTP endpoint (metrics, health,
// dictionary stats).
type AdminSection struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

// StorageSection configures the dictionary.
type StorageSection struct {
	InitialBuckets int    `koanf:"initial_buckets"`
	LoadFactor     int    `koanf:"load_factor"`
	MigrateBudget  int    `koanf:"migrate_budget"`
	Hash           string `koanf:"hash"`
}

// LogSection configures logging.
type LogSection struct {
	Level      string `koanf:"level"`
	Format     string `koanf:"format"`
	File       string `koanf:"file"`
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
	MaxAgeDays int    `koanf:"max_age_days"`
	Compress   bool   `koanf:"compress"`
}
