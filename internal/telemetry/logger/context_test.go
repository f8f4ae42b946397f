package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
)

func TestWithLogger_FromContext(t *testing.T) {
	var buf bytes.Buffer
	cfg := Config{
		Level:  "info",
		Format: "json",
		Output: &buf,
	}

	l, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := WithLogger(context.Background(), l)

	retrieved := FromContext(ctx)
	if retrieved == nil {
		t.Fatal("FromContext returned nil")
	}

	retrieved.Info("test message")

	if buf.Len() == 0 {
		t.Error("Logger from context should produce output")
	}
}

func TestFromContext_Default(t *testing.T) {
	l := FromContext(context.Background())
	if l == nil {
		t.Error("FromContext should return default logger, got nil")
	}
}

func TestWithConnID(t *testing.T) {
	ctx := WithConnID(context.Background(), "01J0000000000000000000000")

	if got := ConnIDFromContext(ctx); got != "01J0000000000000000000000" {
		t.Errorf("ConnIDFromContext() = %q, want %q", got, "01J0000000000000000000000")
	}
}

func TestConnIDFromContext_Empty(t *testing.T) {
	if got := ConnIDFromContext(context.Background()); got != "" {
		t.Errorf("ConnIDFromContext() = %q, want empty string", got)
	}
}

func TestL_WithConnID(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "info", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := WithLogger(context.Background(), l)
	ctx = WithConnID(ctx, "c-1")

	L(ctx).Info("test message")

	var logEntry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("Failed to parse JSON log: %v", err)
	}
	if id, ok := logEntry["conn"].(string); !ok || id != "c-1" {
		t.Errorf("Expected conn='c-1', got %v", logEntry["conn"])
	}
}

func TestL_NoConnID(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "info", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := WithLogger(context.Background(), l)
	L(ctx).Info("test message")

	var logEntry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("Failed to parse JSON log: %v", err)
	}
	if _, ok := logEntry["conn"]; ok {
		t.Error("Should not have conn when not set")
	}
}
