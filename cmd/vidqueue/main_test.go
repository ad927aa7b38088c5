package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vidqueue/internal/api"
	"vidqueue/internal/auth"
	"vidqueue/internal/credentials"
	"vidqueue/internal/device"
	"vidqueue/internal/jobs"
)

type cliTestEnv struct {
	configPath string
	dataDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()
	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	dataDir := filepath.Join(base, "data")
	configPath := filepath.Join(base, "vidqueue.toml")
	content := "[paths]\ndata_dir = \"" + dataDir + "\"\n\n[server]\nbind = \"127.0.0.1:5999\"\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return &cliTestEnv{configPath: configPath, dataDir: dataDir}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, text, fragment string) {
	t.Helper()
	if !strings.Contains(text, fragment) {
		t.Fatalf("expected %q in output:\n%s", fragment, text)
	}
}

func TestDeviceIDCommand(t *testing.T) {
	out, _, err := runCLI(t, []string{"device-id"}, "")
	if err != nil {
		t.Fatalf("device-id: %v", err)
	}
	if strings.TrimSpace(out) != device.ID() {
		t.Fatalf("expected %q, got %q", device.ID(), out)
	}
}

func TestHashPasswordCommand(t *testing.T) {
	out, _, err := runCLI(t, []string{"hash-password", "--user", "alice", "--device", "42", "--expiry", "2030-01-01", "s3cret"}, "")
	if err != nil {
		t.Fatalf("hash-password: %v", err)
	}
	records, err := credentials.ParseRecords(strings.NewReader(out))
	if err != nil || len(records) != 1 {
		t.Fatalf("expected one parsable record, got %v (%v)", records, err)
	}
	rec := records[0]
	if rec.DeviceID != "42" || rec.Username != "alice" || rec.Expiry != "2030-01-01" {
		t.Fatalf("unexpected record %+v", rec)
	}
	if rec.PasswordHash != auth.HashPassword("s3cret") {
		t.Fatalf("unexpected hash %q", rec.PasswordHash)
	}
}

func TestHashPasswordRejectsBadInput(t *testing.T) {
	if _, _, err := runCLI(t, []string{"hash-password", "pw"}, ""); err == nil {
		t.Fatal("expected error without --user")
	}
	if _, _, err := runCLI(t, []string{"hash-password", "--user", "a", "--expiry", "soon", "pw"}, ""); err == nil {
		t.Fatal("expected error for bad expiry")
	}
}

func TestStatusCommandAgainstServer(t *testing.T) {
	env := setupCLITestEnv(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/get_status" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(api.StatusResponse{
			Log:      jobs.InitialMessage,
			State:    jobs.StateCompleted,
			Current:  2,
			Total:    2,
			Failures: 1,
			JobID:    "job-9",
		})
	}))
	defer server.Close()

	out, _, err := runCLI(t, []string{"--server", server.URL, "status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	for _, fragment := range []string{"Download job", "[WARN] completed", jobs.InitialMessage, "2/2", "job-9"} {
		requireContains(t, out, fragment)
	}
}

func TestStatusWatchReturnsWhenIdle(t *testing.T) {
	env := setupCLITestEnv(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(api.StatusResponse{Log: jobs.InitialMessage, State: jobs.StateIdle})
	}))
	defer server.Close()

	out, _, err := runCLI(t, []string{"--server", server.URL, "status", "--watch"}, env.configPath)
	if err != nil {
		t.Fatalf("status --watch: %v", err)
	}
	requireContains(t, out, "[INFO] idle")
}

func TestStartCommandBusy(t *testing.T) {
	env := setupCLITestEnv(t)
	var got api.StartDownloadRequest
	busy := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		if busy {
			w.WriteHeader(http.StatusConflict)
			_ = json.NewEncoder(w).Encode(api.StartDownloadResponse{Status: api.StatusBusy})
			return
		}
		_ = json.NewEncoder(w).Encode(api.StartDownloadResponse{Status: api.StatusStarted, JobID: "job-1"})
	}))
	defer server.Close()

	out, _, err := runCLI(t, []string{"--server", server.URL, "start", "--mode", "audio", "--quality", "audio_320"}, env.configPath)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	requireContains(t, out, "Started job job-1")
	if got.Mode != "audio" || got.Quality != "audio_320" {
		t.Fatalf("unexpected request %+v", got)
	}

	busy = true
	_, _, err = runCLI(t, []string{"--server", server.URL, "start"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "already in progress") {
		t.Fatalf("expected busy error, got %v", err)
	}
}

func TestStatusCommandServerDown(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"--server", "http://127.0.0.1:1", "status"}, env.configPath); err == nil {
		t.Fatal("expected error when server is unreachable")
	}
}

func TestTestNotifyCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"test-notify"}, env.configPath); err == nil {
		t.Fatal("expected error without a topic")
	}

	var title string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		title = r.Header.Get("Title")
	}))
	defer server.Close()
	t.Setenv("VIDQUEUE_NTFY_TOPIC", server.URL)

	out, _, err := runCLI(t, []string{"test-notify"}, env.configPath)
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	requireContains(t, out, "Test notification sent")
	if title != "vidqueue - Test" {
		t.Fatalf("unexpected title %q", title)
	}
}

func TestLogsCommandFormatsAndFilters(t *testing.T) {
	env := setupCLITestEnv(t)
	logDir := filepath.Join(env.dataDir, "logs")
	content := "[paths]\ndata_dir = \"" + env.dataDir + "\"\nlog_dir = \"" + logDir + "\"\n"
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		t.Fatalf("mkdir logs: %v", err)
	}
	records := strings.Join([]string{
		`{"ts":"2026-01-02T03:04:05Z","level":"info","msg":"run started","component":"jobs","job_id":"aaaaaaaa11112222"}`,
		`{"ts":"2026-01-02T03:04:09Z","level":"error","msg":"download failed","component":"download","job_id":"bbbbbbbb33334444","task_index":1}`,
	}, "\n") + "\n"
	if err := os.WriteFile(filepath.Join(logDir, "vidqueue.log"), []byte(records), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	stdout, _, err := runCLI(t, []string{"logs"}, env.configPath)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	requireContains(t, stdout, "jobs · job aaaaaaaa: run started")
	requireContains(t, stdout, "download · job bbbbbbbb · task #1: download failed")

	stdout, _, err = runCLI(t, []string{"logs", "--level", "error"}, env.configPath)
	if err != nil {
		t.Fatalf("logs --level: %v", err)
	}
	if strings.Contains(stdout, "run started") {
		t.Fatalf("expected info record filtered, got %q", stdout)
	}

	stdout, _, err = runCLI(t, []string{"logs", "--raw", "-n", "1"}, env.configPath)
	if err != nil {
		t.Fatalf("logs --raw: %v", err)
	}
	requireContains(t, stdout, `"msg":"download failed"`)
}

func TestLogsCommandEmpty(t *testing.T) {
	env := setupCLITestEnv(t)
	stdout, _, err := runCLI(t, []string{"logs"}, env.configPath)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	requireContains(t, stdout, "No log entries available")
}
