package command

import (
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/rehashkv/internal/cli/config"
	"github.com/yndnr/rehashkv/internal/cli/connection"
	"github.com/yndnr/rehashkv/internal/cli/output"
	"github.com/yndnr/rehashkv/internal/infra/buildinfo"
)

const connMgrKey = "connMgr"

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "rehashkv-cli",
		Usage:   "rehashkv command-line client",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			GetCommand(),
			SetCommand(),
			DelCommand(),
			ExecCommand(),
			StatsCommand(),
			ReplCommand(),
			VersionCommand(),
		},
		Before: func(c *cli.Context) error {
			if err := applyConfigFile(c); err != nil {
				return err
			}
			if _, err := output.ParseFormat(c.String("output")); err != nil {
				return err
			}
			c.App.Metadata[connMgrKey] = connection.NewManager(c.String("server"))
			return nil
		},
		After: func(c *cli.Context) error {
			if mgr := GetConnectionManager(c); mgr != nil {
				return mgr.Close()
			}
			return nil
		},
		Action: replAction,
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Usage:   "CLI config file",
			EnvVars: []string{"REHASHKV_CLI_CONFIG"},
			Value:   config.DefaultConfigPath(),
		},
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "KV server address",
			EnvVars: []string{"REHASHKV_SERVER"},
			Value:   "127.0.0.1:6380",
		},
		&cli.StringFlag{
			Name:    "admin",
			Aliases: []string{"a"},
			Usage:   "admin HTTP address (for stats)",
			EnvVars: []string{"REHASHKV_ADMIN"},
			Value:   "127.0.0.1:9380",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
			Value:   "table",
		},
		&cli.DurationFlag{
			Name:    "timeout",
			Aliases: []string{"t"},
			Usage:   "per-request timeout",
			Value:   5 * time.Second,
		},
	}
}

// applyConfigFile fills flags that were not given on the command line or
// through the environment from the CLI config file.
func applyConfigFile(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	defaults := map[string]string{
		"server":  cfg.Server,
		"admin":   cfg.Admin,
		"output":  cfg.Output,
		"timeout": cfg.Timeout.String(),
	}
	for name, value := range defaults {
		if c.IsSet(name) || value == "" || value == "0s" {
			continue
		}
		if err := c.Set(name, value); err != nil {
			return fmt.Errorf("config %s: %w", name, err)
		}
	}
	return nil
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	Server  string
	Admin   string
	Output  output.Format
	Timeout time.Duration
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	format, err := output.ParseFormat(c.String("output"))
	if err != nil {
		format = output.FormatTable
	}
	return &GlobalFlags{
		Server:  c.String("server"),
		Admin:   c.String("admin"),
		Output:  format,
		Timeout: c.Duration("timeout"),
	}
}

// GetConnectionManager retrieves the connection manager from context.
func GetConnectionManager(c *cli.Context) *connection.Manager {
	if mgr, ok := c.App.Metadata[connMgrKey].(*connection.Manager); ok {
		return mgr
	}
	return nil
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
