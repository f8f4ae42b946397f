package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/rehashkv/internal/cli/repl"
)

// ReplCommand returns the interactive mode command.
func ReplCommand() *cli.Command {
	return &cli.Command{
		Name:   "repl",
		Usage:  "Start interactive mode (default without a command)",
		Action: replAction,
	}
}

func replAction(c *cli.Context) error {
	if c.NArg() > 0 {
		return cli.ShowAppHelp(c)
	}

	history := repl.NewHistory(repl.DefaultHistoryFile())
	if err := history.Load(); err != nil {
		PrintError("load history: %v", err)
	}

	r := repl.New(func(args []string) error {
		if len(args) == 0 {
			return nil
		}
		return runRequest(c, args...)
	},
		repl.WithIO(c.App.Reader, c.App.Writer),
		repl.WithHistory(history),
	)
	runErr := r.Run()

	if err := history.Save(); err != nil {
		PrintError("save history: %v", err)
	}
	return runErr
}
