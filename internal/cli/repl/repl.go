package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Executor runs one command line split into arguments.
type Executor func(args []string) error

// REPL represents the Read-Eval-Print Loop.
type REPL struct {
	input     io.Reader
	output    io.Writer
	prompt    string
	exec      Executor
	completer *Completer
	history   *History
}

// Option configures a REPL.
type Option func(*REPL)

// WithIO overrides stdin and stdout.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(r *REPL) {
		r.input = in
		r.output = out
	}
}

// WithPrompt sets the prompt.
func WithPrompt(p string) Option {
	return func(r *REPL) {
		r.prompt = p
	}
}

// WithHistory sets the history store.
func WithHistory(h *History) Option {
	return func(r *REPL) {
		r.history = h
	}
}

// New creates a new REPL instance.
func New(exec Executor, opts ...Option) *REPL {
	r := &REPL{
		input:     os.Stdin,
		output:    os.Stdout,
		prompt:    "rehashkv> ",
		exec:      exec,
		completer: NewCompleter(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.history == nil {
		r.history = NewHistory("")
	}
	return r
}

// Run starts the REPL loop. It returns nil on EOF, exit or quit.
func (r *REPL) Run() error {
	reader := bufio.NewReader(r.input)

	for {
		fmt.Fprint(r.output, r.prompt)

		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		eof := errors.Is(err, io.EOF)

		line = strings.TrimSpace(line)
		if line == "" {
			if eof {
				fmt.Fprintln(r.output)
				return nil
			}
			continue
		}

		r.history.Add(line)

		switch strings.ToLower(line) {
		case "exit", "quit":
			return nil
		case "help":
			r.printHelp()
		default:
			if err := r.execute(line); err != nil {
				fmt.Fprintf(r.output, "(error) %v\n", err)
			}
		}
		if eof {
			fmt.Fprintln(r.output)
			return nil
		}
	}
}

func (r *REPL) execute(line string) error {
	args, err := SplitArgs(line)
	if err != nil {
		return err
	}
	return r.exec(args)
}

func (r *REPL) printHelp() {
	fmt.Fprintln(r.output, "commands:")
	for _, c := range r.completer.Commands() {
		fmt.Fprintf(r.output, "  %s\n", c)
	}
}

// History returns the REPL's history.
func (r *REPL) History() *History {
	return r.history
}

// SplitArgs splits a line into arguments. Whitespace separates arguments;
// single quotes preserve text literally; double quotes allow \" and \\
// escapes.
func SplitArgs(line string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		inArg   bool
		quote   rune
		escaped bool
	)
	for _, ch := range line {
		switch {
		case escaped:
			cur.WriteRune(ch)
			escaped = false
		case quote == '"' && ch == '\\':
			escaped = true
		case quote != 0:
			if ch == quote {
				quote = 0
			} else {
				cur.WriteRune(ch)
			}
		case ch == '"' || ch == '\'':
			quote = ch
			inArg = true
		case ch == ' ' || ch == '\t':
			if inArg {
				args = append(args, cur.String())
				cur.Reset()
				inArg = false
			}
		default:
			cur.WriteRune(ch)
			inArg = true
		}
	}
	if quote != 0 || escaped {
		return nil, fmt.Errorf("unterminated quote in %q", line)
	}
	if inArg {
		args = append(args, cur.String())
	}
	return args, nil
}
