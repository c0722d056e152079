package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
)

func TestWithLogger_FromContext(t *testing.T) {
	var buf bytes.Buffer
	l, _ := New(Config{Level: "info", Format: "json", Output: &buf})

	ctx := WithLogger(context.Background(), l)
	FromContext(ctx).Info("from ctx")

	if buf.Len() == 0 {
		t.Error("expected logger from context to be used")
	}
}

func TestFromContext_Default(t *testing.T) {
	if FromContext(context.Background()) != Default() {
		t.Error("FromContext() without logger should return Default()")
	}
}

func TestRunIDAndStage(t *testing.T) {
	ctx := context.Background()
	if RunIDFromContext(ctx) != "" || StageFromContext(ctx) != "" {
		t.Fatal("empty context should carry no run id or stage")
	}

	ctx = WithStage(WithRunID(ctx, "01HZX"), "merge")
	if got := RunIDFromContext(ctx); got != "01HZX" {
		t.Errorf("RunIDFromContext() = %q", got)
	}
	if got := StageFromContext(ctx); got != "merge" {
		t.Errorf("StageFromContext() = %q", got)
	}
}

func TestL_Enriches(t *testing.T) {
	var buf bytes.Buffer
	l, _ := New(Config{Level: "info", Format: "json", Output: &buf})

	ctx := WithLogger(context.Background(), l)
	ctx = WithRunID(ctx, "run-1")
	ctx = WithStage(ctx, "write")
	L(ctx).Info("tagged")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if entry["run_id"] != "run-1" {
		t.Errorf("run_id = %v", entry["run_id"])
	}
	if entry["stage"] != "write" {
		t.Errorf("stage = %v", entry["stage"])
	}
}

func TestL_NoIDs(t *testing.T) {
	var buf bytes.Buffer
	l, _ := New(Config{Level: "info", Format: "json", Output: &buf})

	L(WithLogger(context.Background(), l)).Info("plain")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if _, ok := entry["run_id"]; ok {
		t.Error("run_id should be absent")
	}
}
