package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/rehashkv/internal/infra/buildinfo"
	"github.com/yndnr/rehashkv/internal/infra/confloader"
	"github.com/yndnr/rehashkv/internal/infra/shutdown"
	"github.com/yndnr/rehashkv/internal/server/config"
	"github.com/yndnr/rehashkv/internal/server/httpserver"
	"github.com/yndnr/rehashkv/internal/server/kvserver"
	"github.com/yndnr/rehashkv/internal/storage/memory"
	"github.com/yndnr/rehashkv/internal/telemetry/logger"
	"github.com/yndnr/rehashkv/internal/telemetry/metric"
)

const shutdownTimeout = 30 * time.Second

var errServerStopped = errors.New("kv server stopped unexpectedly")

func main() {
	app := &cli.App{
		Name:    "rehashkv-server",
		Usage:   "in-memory key-value server",
		Version: buildinfo.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to configuration file",
				EnvVars: []string{"REHASHKV_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "listen",
				Usage: "KV listen address (overrides server.listen)",
			},
			&cli.StringFlag{
				Name:  "engine",
				Usage: "event loop: reactor or gnet (overrides server.engine)",
			},
			&cli.StringFlag{
				Name:  "admin",
				Usage: "enable the admin endpoint on this address",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	configFile := c.String("config")

	cfg, sources, err := loadConfig(configFile, flagOverrides(c))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(config.ToLoggerConfig(cfg))
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.SetDefault(log)
	defer log.Sync()

	log.Info("starting rehashkv-server",
		"version", buildinfo.Version,
		"commit", buildinfo.Commit,
		"config", configFile,
		"sources", sources)

	store := memory.New(config.DictOptions(cfg)...)

	metrics := metric.Global()
	if err := metrics.Register(metric.NewDictCollector(store)); err != nil {
		return fmt.Errorf("register dict collector: %w", err)
	}

	kv, err := kvserver.New(config.ToKVServerConfig(cfg), store,
		kvserver.WithLogger(log),
		kvserver.WithMetrics(metrics))
	if err != nil {
		return fmt.Errorf("init kv server: %w", err)
	}

	shutdownHandler := shutdown.NewHandler(shutdownTimeout, shutdown.WithLogger(log))

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	if err := kv.Start(ctx); err != nil {
		return fmt.Errorf("start kv server: %w", err)
	}
	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down kv server")
		return kv.Shutdown(ctx)
	})

	if cfg.Admin.Enabled {
		admin := httpserver.New(cfg.Admin.Addr, httpserver.NewRouter(&httpserver.RouterConfig{
			Stats:   store,
			Metrics: metric.Handler(),
			Logger:  log,
		}))
		if err := admin.Start(); err != nil {
			return fmt.Errorf("start admin server: %w", err)
		}
		log.Info("admin server listening", "addr", admin.Addr().String())
		shutdownHandler.OnShutdown(func(ctx context.Context) error {
			log.Info("shutting down admin server")
			return admin.Shutdown(ctx)
		})
	}

	if configFile != "" {
		watcher, err := watchConfig(configFile, flagOverrides(c), log)
		if err != nil {
			log.Warn("config watcher disabled", "error", err)
		} else {
			shutdownHandler.OnShutdown(func(context.Context) error {
				return watcher.Stop()
			})
		}
	}

	go func() {
		select {
		case <-kv.Done():
			if err := kv.Err(); err != nil {
				shutdownHandler.Trigger(fmt.Errorf("%w: %v", errServerStopped, err))
				return
			}
			shutdownHandler.Trigger(errServerStopped)
		case <-shutdownHandler.Done():
		}
	}()

	log.Info("server started, press Ctrl+C to stop")
	if err := shutdownHandler.Wait(); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// flagOverrides maps command-line flags onto configuration keys. They take
// precedence over the file and the environment.
func flagOverrides(c *cli.Context) map[string]any {
	overrides := map[string]any{}
	if v := c.String("listen"); v != "" {
		overrides["server.listen"] = v
	}
	if v := c.String("engine"); v != "" {
		overrides["server.engine"] = v
	}
	if v := c.String("admin"); v != "" {
		overrides["admin.enabled"] = true
		overrides["admin.addr"] = v
	}
	return overrides
}

// loadConfig loads configuration from defaults, file, environment and flags.
func loadConfig(configFile string, overrides map[string]any) (*config.ServerConfig, []string, error) {
	cfg := config.Default()

	loader := confloader.NewLoader(
		confloader.WithConfigFile(configFile),
		confloader.WithOverrides(overrides),
	)
	if err := loader.Load(cfg); err != nil {
		return nil, nil, err
	}

	if err := config.Verify(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, loader.Sources(), nil
}

// watchConfig reloads the configuration file on change. Only log.level is
// applied at runtime; everything else needs a restart.
func watchConfig(configFile string, overrides map[string]any, log logger.Logger) (*confloader.Watcher, error) {
	watcher, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return nil, err
	}
	if err := watcher.Watch(configFile); err != nil {
		watcher.Stop()
		return nil, err
	}

	watcher.OnChange(func(string) {
		cfg, _, err := loadConfig(configFile, overrides)
		if err != nil {
			log.Warn("config reload rejected", "error", err)
			return
		}
		if cfg.Log.Level != logger.GetLevel() {
			logger.SetLevel(cfg.Log.Level)
			log.Info("log level changed", "level", cfg.Log.Level)
		}
	})
	watcher.StartAsync()
	return watcher, nil
}
