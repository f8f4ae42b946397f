package command

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/rehashkv/internal/cli/connection"
	"github.com/yndnr/rehashkv/internal/cli/output"
	"github.com/yndnr/rehashkv/pkg/dict"
)

// StatsCommand returns the stats command.
func StatsCommand() *cli.Command {
	return &cli.Command{
		Name:   "stats",
		Usage:  "Show dictionary statistics from the admin endpoint",
		Action: statsAction,
	}
}

func statsAction(c *cli.Context) error {
	flags := ParseGlobalFlags(c)
	client := connection.NewAdminClient(flags.Admin, flags.Timeout)

	ctx, cancel := context.WithTimeout(c.Context, flags.Timeout)
	defer cancel()

	resp, err := client.Get(ctx, "/debug/dict")
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	var stats dict.Stats
	if err := connection.ParseResponse(resp, &stats); err != nil {
		return err
	}
	return output.NewFormatter(flags.Output).Format(c.App.Writer, stats)
}
