package repl

import "strings"

// Completer provides command completion for the REPL.
type Completer struct {
	commands []string
}

// NewCompleter creates a new Completer.
func NewCompleter() *Completer {
	return &Completer{
		commands: []string{
			"get <key>",
			"set <key> <value>",
			"del <key>",
			"help",
			"exit",
			"quit",
		},
	}
}

// Commands returns the known command synopses.
func (c *Completer) Commands() []string {
	return c.commands
}

// Complete returns the command names starting with prefix.
func (c *Completer) Complete(prefix string) []string {
	prefix = strings.ToLower(prefix)
	var suggestions []string
	for _, cmd := range c.commands {
		name, _, _ := strings.Cut(cmd, " ")
		if strings.HasPrefix(name, prefix) {
			suggestions = append(suggestions, name)
		}
	}
	return suggestions
}
