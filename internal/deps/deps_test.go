package deps

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func writeStub(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
}

func TestCheckBinaries(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell stubs require a POSIX shell")
	}
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	writeStub(t, present, "echo '2025.01.15'\necho 'extra line'")
	reqs := []Requirement{
		{Name: "Present", Command: present, VersionArg: "--version"},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Blank", Command: "  "},
	}

	results := CheckBinaries(context.Background(), reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}

	if !results[0].Available {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[0].Version != "2025.01.15" {
		t.Fatalf("expected first version line, got %q", results[0].Version)
	}
	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for available dependency: %s", results[0].Detail)
	}

	if results[1].Available {
		t.Fatalf("expected missing binary to be unavailable")
	}
	if results[1].Detail == "" {
		t.Fatalf("expected detail message for missing binary")
	}
	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}

	if results[2].Available || results[2].Detail != "command not configured" {
		t.Fatalf("unexpected blank command result: %#v", results[2])
	}
}

func TestVersionFailureLeavesBinaryAvailable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell stubs require a POSIX shell")
	}
	stub := filepath.Join(t.TempDir(), "broken")
	writeStub(t, stub, "exit 3")

	results := CheckBinaries(context.Background(), []Requirement{{Name: "Broken", Command: stub, VersionArg: "--version"}})
	if !results[0].Available || results[0].Version != "" {
		t.Fatalf("unexpected result: %#v", results[0])
	}
}

func TestResolveFFmpegToolPrefersConfiguredDir(t *testing.T) {
	tmp := t.TempDir()
	ffmpegPath := filepath.Join(tmp, executableName("ffmpeg"))
	writeStub(t, ffmpegPath, "exit 0")

	status := ResolveFFmpegTool("ffmpeg", tmp)
	if !status.Available {
		t.Fatalf("expected ffmpeg in configured dir to be available, got detail %q", status.Detail)
	}
	if status.Command != ffmpegPath {
		t.Fatalf("expected ffmpeg command %q, got %q", ffmpegPath, status.Command)
	}
}

func TestResolveFFmpegToolPathFallback(t *testing.T) {
	tmp := t.TempDir()
	binDir := filepath.Join(tmp, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatalf("mkdir bin: %v", err)
	}
	ffprobePath := filepath.Join(binDir, executableName("ffprobe"))
	writeStub(t, ffprobePath, "exit 0")
	t.Setenv("PATH", binDir)

	status := ResolveFFmpegTool("ffprobe", filepath.Join(tmp, "empty"))
	if !status.Available {
		t.Fatalf("expected ffprobe fallback to be available, got detail %q", status.Detail)
	}
	if status.Command != ffprobePath {
		t.Fatalf("expected ffprobe command %q, got %q", ffprobePath, status.Command)
	}
}

func TestResolveFFmpegToolNotFound(t *testing.T) {
	t.Setenv("PATH", "")
	status := ResolveFFmpegTool("ffmpeg", "")
	if status.Available {
		t.Fatal("expected ffmpeg resolution to fail")
	}
	if status.Detail == "" {
		t.Fatal("expected detail message when ffmpeg is unavailable")
	}
}
