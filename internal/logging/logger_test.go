package logging_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vidqueue/internal/config"
	"vidqueue/internal/logging"
	"vidqueue/internal/services"
)

func TestNewFromConfigWritesJSONLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("server ready", logging.String("bind", "127.0.0.1:5000"))

	content, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, logging.LogFileName))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(content))), &payload); err != nil {
		t.Fatalf("expected JSON log line, got %q: %v", content, err)
	}
	if payload["msg"] != "server ready" || payload["bind"] != "127.0.0.1:5000" {
		t.Fatalf("unexpected payload: %v", payload)
	}
	if payload["level"] != "info" {
		t.Fatalf("expected lowercase level, got %v", payload["level"])
	}
}

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-info.log")

	logger, err := logging.New(logging.Options{
		Format:           "console",
		Level:            "info",
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message without caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if strings.Contains(string(content), ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", content)
	}
}

func TestConsoleLoggerRendersSubject(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console.log")
	logger, err := logging.New(logging.Options{
		Format:      "console",
		Level:       "info",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := services.WithJobID(context.Background(), "0123456789abcdef")
	ctx = services.WithTaskIndex(ctx, 2)
	component := logging.NewComponentLogger(logger, "download")
	logging.WithContext(ctx, component).Info("getting info", logging.String("url", "https://example.com/v"))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(content)
	for _, fragment := range []string{"INFO", "download · job 01234567 · task #2: getting info", "url=https://example.com/v"} {
		if !strings.Contains(line, fragment) {
			t.Fatalf("expected %q in console line %q", fragment, line)
		}
	}
	if strings.Contains(line, "job_id=") {
		t.Fatalf("expected job id folded into subject, got %q", line)
	}
}

func TestDebugLevelFiltersInfoWhenWarn(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "warn.log")
	logger, err := logging.New(logging.Options{Format: "json", Level: "warn", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("hidden")
	logging.WarnWithContext(logger, "shown", "rename_fallback")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	text := string(content)
	if strings.Contains(text, "hidden") {
		t.Fatalf("expected info line filtered, got %q", text)
	}
	for _, fragment := range []string{`"event_type":"rename_fallback"`, `"error_hint"`, `"impact"`} {
		if !strings.Contains(text, fragment) {
			t.Fatalf("expected %s in %q", fragment, text)
		}
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	if logger.Enabled(context.Background(), 0) {
		t.Fatal("expected nop logger to be disabled")
	}
}

func TestWarnWithContextKeepsCallerFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "warn.log")
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.WarnWithContext(logger, "rename failed", "ai_rename_failure",
		logging.String(logging.FieldErrorHint, "check api_keys.txt"),
	)

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(content))), &payload); err != nil {
		t.Fatalf("decode %q: %v", content, err)
	}
	if payload["error_hint"] != "check api_keys.txt" {
		t.Fatalf("expected caller hint kept, got %v", payload["error_hint"])
	}
	if payload["event_type"] != "ai_rename_failure" || payload["impact"] == nil {
		t.Fatalf("expected defaults injected, got %v", payload)
	}
}

func TestFileLogKeepsDebugOutOfInfoLevel(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Logging.Level = "info"

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	component := logging.NewComponentLogger(logger, "naming")
	component.Debug("probe pair failed")
	component.Info("model selected", logging.String("model", "gemma-3-27b-it"))

	content, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, logging.LogFileName))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	text := string(content)
	if strings.Contains(text, "probe pair failed") {
		t.Fatalf("expected debug record filtered, got %q", text)
	}
	if !strings.Contains(text, `"component":"naming"`) || !strings.Contains(text, "model selected") {
		t.Fatalf("expected component record in file, got %q", text)
	}
}
