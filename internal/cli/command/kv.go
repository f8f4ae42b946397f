package command

import (
	"context"
	"fmt"
	"io"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/rehashkv/internal/cli/output"
	"github.com/yndnr/rehashkv/internal/protocol"
)

// Result is the printable form of a response.
type Result struct {
	Status string  `json:"status" yaml:"status"`
	Value  *string `json:"value,omitempty" yaml:"value,omitempty"`
}

// GetCommand returns the get command.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Get the value of a key",
		ArgsUsage: "<key>",
		Action:    fixedArity("get", 1),
	}
}

// SetCommand returns the set command.
func SetCommand() *cli.Command {
	return &cli.Command{
		Name:      "set",
		Usage:     "Set a key to a value",
		ArgsUsage: "<key> <value>",
		Action:    fixedArity("set", 2),
	}
}

// DelCommand returns the del command.
func DelCommand() *cli.Command {
	return &cli.Command{
		Name:      "del",
		Aliases:   []string{"delete"},
		Usage:     "Delete a key and print its old value",
		ArgsUsage: "<key>",
		Action:    fixedArity("del", 1),
	}
}

// ExecCommand returns the exec command, which sends its arguments as one
// raw request.
func ExecCommand() *cli.Command {
	return &cli.Command{
		Name:      "exec",
		Usage:     "Send a raw request",
		ArgsUsage: "<command> [args...]",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return fmt.Errorf("exec: missing command")
			}
			return runRequest(c, c.Args().Slice()...)
		},
	}
}

func fixedArity(name string, n int) cli.ActionFunc {
	return func(c *cli.Context) error {
		if c.NArg() != n {
			return fmt.Errorf("%s: expected %d argument(s), got %d", name, n, c.NArg())
		}
		return runRequest(c, append([]string{name}, c.Args().Slice()...)...)
	}
}

// runRequest sends args to the server and prints the response.
func runRequest(c *cli.Context, args ...string) error {
	flags := ParseGlobalFlags(c)
	mgr := GetConnectionManager(c)
	if mgr == nil {
		return fmt.Errorf("not initialized")
	}

	ctx, cancel := context.WithTimeout(c.Context, flags.Timeout)
	defer cancel()

	client, err := mgr.Client(ctx)
	if err != nil {
		return fmt.Errorf("connect %s: %w", mgr.Addr(), err)
	}
	resp, err := client.Do(ctx, args...)
	if err != nil {
		mgr.Reset()
		return fmt.Errorf("request failed: %w", err)
	}
	return printResponse(c.App.Writer, flags.Output, resp)
}

func printResponse(w io.Writer, format output.Format, resp protocol.Response) error {
	if resp.Status == protocol.StatusErr {
		return fmt.Errorf("server error: %s", resp.Payload)
	}

	if format == output.FormatTable {
		switch resp.Status {
		case protocol.StatusOK:
			_, err := fmt.Fprintln(w, string(resp.Payload))
			return err
		case protocol.StatusNotFound:
			_, err := fmt.Fprintln(w, "(nil)")
			return err
		}
	}

	res := Result{Status: resp.Status.String()}
	if resp.Status == protocol.StatusOK {
		v := string(resp.Payload)
		res.Value = &v
	}
	return output.NewFormatter(format).Format(w, res)
}
