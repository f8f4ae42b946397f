package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/rehashkv/internal/cli/output"
	"github.com/yndnr/rehashkv/internal/infra/buildinfo"
)

// VersionCommand returns the version command.
func VersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print build information",
		Action: func(c *cli.Context) error {
			return output.NewFormatter(ParseGlobalFlags(c).Output).Format(c.App.Writer, buildinfo.Get())
		},
	}
}
