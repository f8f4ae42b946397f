package repl

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"
)

type recorder struct {
	calls [][]string
	err   error
}

func (r *recorder) exec(args []string) error {
	r.calls = append(r.calls, args)
	return r.err
}

func run(t *testing.T, input string, rec *recorder) string {
	t.Helper()
	var out bytes.Buffer
	r := New(rec.exec, WithIO(strings.NewReader(input), &out), WithPrompt("> "))
	if err := r.Run(); err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}
	return out.String()
}

func TestREPL_Run_Exit(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"exit command", "exit\nget a\n"},
		{"quit command", "QUIT\nget a\n"},
		{"EOF", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			run(t, tt.input, rec)
			if len(rec.calls) != 0 {
				t.Errorf("executed %v after exit", rec.calls)
			}
		})
	}
}

func TestREPL_Run_Executes(t *testing.T) {
	rec := &recorder{}
	run(t, "\n\nset a \"hello world\"\n  get a  \ndel a", rec)

	want := [][]string{
		{"set", "a", "hello world"},
		{"get", "a"},
		{"del", "a"},
	}
	if !reflect.DeepEqual(rec.calls, want) {
		t.Errorf("calls = %q, want %q", rec.calls, want)
	}
}

func TestREPL_Run_Errors(t *testing.T) {
	rec := &recorder{err: errors.New("connection refused")}
	out := run(t, "get a\nset 'broken\n", rec)

	if !strings.Contains(out, "(error) connection refused") {
		t.Errorf("output missing executor error:\n%s", out)
	}
	if !strings.Contains(out, "(error) unterminated quote") {
		t.Errorf("output missing parse error:\n%s", out)
	}
	if len(rec.calls) != 1 {
		t.Errorf("calls = %d, want 1", len(rec.calls))
	}
}

func TestREPL_Help(t *testing.T) {
	out := run(t, "help\n", &recorder{})
	if !strings.Contains(out, "set <key> <value>") {
		t.Errorf("help output:\n%s", out)
	}
}

func TestREPL_History(t *testing.T) {
	var out bytes.Buffer
	rec := &recorder{}
	r := New(rec.exec, WithIO(strings.NewReader("get a\nget b\n"), &out))
	if err := r.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if r.History().Len() != 2 || r.History().Get(0) != "get b" {
		t.Errorf("history = %d entries, latest %q", r.History().Len(), r.History().Get(0))
	}
}

// ============================================================
// SplitArgs
// ============================================================

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		line    string
		want    []string
		wantErr bool
	}{
		{"get a", []string{"get", "a"}, false},
		{"  set\tk   v ", []string{"set", "k", "v"}, false},
		{`set k "two words"`, []string{"set", "k", "two words"}, false},
		{`set k 'it''s'`, []string{"set", "k", "its"}, false},
		{`set k "say \"hi\""`, []string{"set", "k", `say "hi"`}, false},
		{`set k ''`, []string{"set", "k", ""}, false},
		{`set k 'a\b'`, []string{"set", "k", `a\b`}, false},
		{"", nil, false},
		{`get "open`, nil, true},
		{`get "trailing\`, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := SplitArgs(tt.line)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SplitArgs(%q) error = %v, wantErr %v", tt.line, err, tt.wantErr)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitArgs(%q) = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}
