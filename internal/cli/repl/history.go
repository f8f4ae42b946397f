package repl

import (
	"bufio"
	"os"
	"path/filepath"
)

const defaultHistorySize = 1000

// History manages command history for the REPL.
type History struct {
	entries []string
	maxSize int
	file    string
}

// DefaultHistoryFile returns ~/.rehashkv/history.
func DefaultHistoryFile() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".rehashkv", "history")
}

// NewHistory creates a history persisted to file. An empty file keeps the
// history in memory only.
func NewHistory(file string) *History {
	return &History{
		entries: make([]string, 0),
		maxSize: defaultHistorySize,
		file:    file,
	}
}

// Add adds a command to history.
func (h *History) Add(cmd string) {
	h.entries = append(h.entries, cmd)
	if len(h.entries) > h.maxSize {
		h.entries = h.entries[len(h.entries)-h.maxSize:]
	}
}

// Len returns the number of entries.
func (h *History) Len() int {
	return len(h.entries)
}

// Get returns the history entry at index (0 = most recent).
func (h *History) Get(index int) string {
	if index < 0 || index >= len(h.entries) {
		return ""
	}
	return h.entries[len(h.entries)-1-index]
}

// Load loads history from file.
func (h *History) Load() error {
	if h.file == "" {
		return nil
	}
	file, err := os.Open(h.file)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		h.Add(scanner.Text())
	}
	return scanner.Err()
}

// Save saves history to file.
func (h *History) Save() error {
	if h.file == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(h.file), 0700); err != nil {
		return err
	}

	file, err := os.OpenFile(h.file, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(file)
	for _, entry := range h.entries {
		w.WriteString(entry)
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
