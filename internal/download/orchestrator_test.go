package download_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"vidqueue/internal/download"
	"vidqueue/internal/listfile"
	"vidqueue/internal/services/ytdlp"
	"vidqueue/internal/settings"
)

type recordingReporter struct {
	mu       sync.Mutex
	messages []string
	current  int
	total    int
	failures []error
}

func (r *recordingReporter) SetMessage(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
}

func (r *recordingReporter) SetProgress(current, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current, r.total = current, total
}

func (r *recordingReporter) RecordFailure(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, err)
}

func (r *recordingReporter) last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.messages) == 0 {
		return ""
	}
	return r.messages[len(r.messages)-1]
}

type fakeEngine struct {
	titles      map[string]string
	metaErr     map[string]error
	downloadErr map[string]error
	metaCalls   []string
	downloads   []downloadCall
}

type downloadCall struct {
	url  string
	opts ytdlp.DownloadOptions
}

func (f *fakeEngine) Metadata(_ context.Context, url string) (ytdlp.Info, error) {
	f.metaCalls = append(f.metaCalls, url)
	if err := f.metaErr[url]; err != nil {
		return ytdlp.Info{}, err
	}
	return ytdlp.Info{Title: f.titles[url]}, nil
}

func (f *fakeEngine) Download(_ context.Context, url string, opts ytdlp.DownloadOptions) error {
	f.downloads = append(f.downloads, downloadCall{url: url, opts: opts})
	return f.downloadErr[url]
}

type fakeNamer struct {
	names map[string]string
}

func (f fakeNamer) SuggestFilename(_ context.Context, title string) (string, bool) {
	name, ok := f.names[title]
	return name, ok
}

type fixture struct {
	saveDir  string
	links    *listfile.File
	settings *settings.Store
}

func newFixture(t *testing.T, links string, write bool) fixture {
	t.Helper()
	dir := t.TempDir()
	f := fixture{
		saveDir:  filepath.Join(dir, "Downloads"),
		links:    listfile.New(filepath.Join(dir, "links.txt")),
		settings: settings.NewStore(filepath.Join(dir, "settings.json"), filepath.Join(dir, "Downloads")),
	}
	if write {
		if err := f.links.Write(links); err != nil {
			t.Fatalf("write links: %v", err)
		}
	}
	return f
}

func TestRunMissingListAttemptsNothing(t *testing.T) {
	fx := newFixture(t, "", false)
	engine := &fakeEngine{}
	reporter := &recordingReporter{}
	orch := download.NewOrchestrator(engine, nil, fx.links, fx.settings)

	err := orch.Run(context.Background(), download.Request{Mode: "video", Quality: "best"}, reporter)
	if !errors.Is(err, download.ErrListEmptyOrMissing) {
		t.Fatalf("expected ErrListEmptyOrMissing, got %v", err)
	}
	if reporter.last() != download.MessageNoLinks {
		t.Fatalf("unexpected status %q", reporter.last())
	}
	if len(engine.metaCalls) != 0 || len(engine.downloads) != 0 {
		t.Fatalf("expected no engine calls, got %d/%d", len(engine.metaCalls), len(engine.downloads))
	}
}

func TestRunEmptyListAttemptsNothing(t *testing.T) {
	fx := newFixture(t, "\n   \n\n", true)
	engine := &fakeEngine{}
	reporter := &recordingReporter{}
	orch := download.NewOrchestrator(engine, nil, fx.links, fx.settings)

	err := orch.Run(context.Background(), download.Request{Mode: "video", Quality: "best"}, reporter)
	if !errors.Is(err, download.ErrListEmptyOrMissing) {
		t.Fatalf("expected ErrListEmptyOrMissing, got %v", err)
	}
	if reporter.last() != download.MessageEmptyList {
		t.Fatalf("unexpected status %q", reporter.last())
	}
	if len(engine.metaCalls) != 0 {
		t.Fatalf("expected no engine calls, got %d", len(engine.metaCalls))
	}
}

func TestRunFallbackNamesWithPositionalSuffix(t *testing.T) {
	fx := newFixture(t, "https://a.example/1\n\nhttps://b.example/2\n", true)
	engine := &fakeEngine{titles: map[string]string{
		"https://a.example/1": "Café: Best? Of",
		"https://b.example/2": "Café: Best? Of",
	}}
	reporter := &recordingReporter{}
	orch := download.NewOrchestrator(engine, fakeNamer{}, fx.links, fx.settings)

	if err := orch.Run(context.Background(), download.Request{Mode: "video", Quality: "1080p"}, reporter); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(engine.downloads) != 2 {
		t.Fatalf("expected 2 downloads, got %d", len(engine.downloads))
	}
	wantNames := []string{"Caf Best Of [1]", "Caf Best Of [2]"}
	for i, call := range engine.downloads {
		if call.opts.Format != "bestvideo[height<=1080]+bestaudio/best" {
			t.Fatalf("unexpected selector %q", call.opts.Format)
		}
		want := filepath.Join(fx.saveDir, wantNames[i]) + ".%(ext)s"
		if call.opts.OutputTemplate != want {
			t.Fatalf("download %d template = %q, want %q", i+1, call.opts.OutputTemplate, want)
		}
		if call.opts.ExtractAudio {
			t.Fatal("expected no audio extraction in video mode")
		}
	}
	if engine.downloads[0].opts.OutputTemplate == engine.downloads[1].opts.OutputTemplate {
		t.Fatal("expected distinct targets for identical titles")
	}
	if reporter.last() != download.MessageAllCompleted {
		t.Fatalf("unexpected final status %q", reporter.last())
	}
	if reporter.current != 2 || reporter.total != 2 {
		t.Fatalf("unexpected progress %d/%d", reporter.current, reporter.total)
	}
	if info, err := os.Stat(fx.saveDir); err != nil || !info.IsDir() {
		t.Fatalf("expected save dir created: %v", err)
	}
}

func TestRunStatusSequence(t *testing.T) {
	fx := newFixture(t, "https://a.example/1\n", true)
	engine := &fakeEngine{titles: map[string]string{"https://a.example/1": "Raw Title"}}
	reporter := &recordingReporter{}
	namer := fakeNamer{names: map[string]string{"Raw Title": "Nice Name"}}
	orch := download.NewOrchestrator(engine, namer, fx.links, fx.settings)

	if err := orch.Run(context.Background(), download.Request{Mode: "video", Quality: "best"}, reporter); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	want := []string{
		"Starting 1 downloads...",
		"Processing (1/1): Getting Info...",
		"Processing (1/1): AI Renaming...",
		"Downloading: Nice Name [1]...",
		download.MessageAllCompleted,
	}
	if strings.Join(reporter.messages, "|") != strings.Join(want, "|") {
		t.Fatalf("status sequence = %q, want %q", reporter.messages, want)
	}
}

func TestRunContinuesAfterTaskFailure(t *testing.T) {
	fx := newFixture(t, "https://a.example/1\nhttps://b.example/2\nhttps://c.example/3\n", true)
	boom := errors.New("metadata exploded")
	engine := &fakeEngine{
		titles:  map[string]string{"https://a.example/1": "One", "https://c.example/3": "Three"},
		metaErr: map[string]error{"https://b.example/2": boom},
	}
	reporter := &recordingReporter{}
	orch := download.NewOrchestrator(engine, nil, fx.links, fx.settings)

	if err := orch.Run(context.Background(), download.Request{Mode: "video", Quality: "best"}, reporter); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(engine.downloads) != 2 {
		t.Fatalf("expected 2 downloads, got %d", len(engine.downloads))
	}
	if engine.downloads[1].url != "https://c.example/3" {
		t.Fatalf("expected third task to run, got %q", engine.downloads[1].url)
	}
	if len(reporter.failures) != 1 {
		t.Fatalf("expected one failure, got %d", len(reporter.failures))
	}
	var taskErr *download.TaskError
	if !errors.As(reporter.failures[0], &taskErr) || taskErr.Index != 2 {
		t.Fatalf("unexpected failure %v", reporter.failures[0])
	}
	if !errors.Is(reporter.failures[0], download.ErrTaskFailure) || !errors.Is(reporter.failures[0], boom) {
		t.Fatalf("expected failure to match ErrTaskFailure and cause, got %v", reporter.failures[0])
	}
	found := false
	for _, msg := range reporter.messages {
		if msg == "Error on 2: metadata exploded" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected per-task error status, got %q", reporter.messages)
	}
	if reporter.last() != download.MessageAllCompleted {
		t.Fatalf("expected overall completion, got %q", reporter.last())
	}
}

func TestRunAudioModeExtracts(t *testing.T) {
	fx := newFixture(t, "https://a.example/1\n", true)
	engine := &fakeEngine{titles: map[string]string{"https://a.example/1": "Song"}}
	orch := download.NewOrchestrator(engine, nil, fx.links, fx.settings, download.WithAudioCodec("opus"))

	if err := orch.Run(context.Background(), download.Request{Mode: "audio", Quality: "best"}, &recordingReporter{}); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	opts := engine.downloads[0].opts
	if opts.Format != "bestaudio/best" || !opts.ExtractAudio || opts.AudioFormat != "opus" {
		t.Fatalf("unexpected audio options %+v", opts)
	}
}

func TestRunAudioBitrateTier(t *testing.T) {
	fx := newFixture(t, "https://a.example/1\n", true)
	engine := &fakeEngine{titles: map[string]string{"https://a.example/1": "Song"}}
	orch := download.NewOrchestrator(engine, nil, fx.links, fx.settings)

	if err := orch.Run(context.Background(), download.Request{Mode: "video", Quality: "audio_128"}, &recordingReporter{}); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	opts := engine.downloads[0].opts
	if !opts.ExtractAudio || opts.AudioFormat != "mp3" || opts.AudioQuality != "128K" {
		t.Fatalf("unexpected audio options %+v", opts)
	}
}

func TestRunMissingTitleUsesDefault(t *testing.T) {
	fx := newFixture(t, "https://a.example/1\n", true)
	engine := &fakeEngine{}
	orch := download.NewOrchestrator(engine, nil, fx.links, fx.settings)

	if err := orch.Run(context.Background(), download.Request{Mode: "video", Quality: "best"}, &recordingReporter{}); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	want := filepath.Join(fx.saveDir, "Video [1]") + ".%(ext)s"
	if got := engine.downloads[0].opts.OutputTemplate; got != want {
		t.Fatalf("template = %q, want %q", got, want)
	}
}

func TestRunEscapesTemplatePercent(t *testing.T) {
	fx := newFixture(t, "https://a.example/1\n", true)
	engine := &fakeEngine{titles: map[string]string{"https://a.example/1": "100%(id)s"}}
	orch := download.NewOrchestrator(engine, nil, fx.links, fx.settings)

	if err := orch.Run(context.Background(), download.Request{Mode: "video", Quality: "best"}, &recordingReporter{}); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	want := filepath.Join(fx.saveDir, "100%%(id)s [1]") + ".%(ext)s"
	if got := engine.downloads[0].opts.OutputTemplate; got != want {
		t.Fatalf("template = %q, want %q", got, want)
	}
}

func TestRunStopsWhenCanceled(t *testing.T) {
	fx := newFixture(t, "https://a.example/1\nhttps://b.example/2\n", true)
	engine := &fakeEngine{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	orch := download.NewOrchestrator(engine, nil, fx.links, fx.settings)

	err := orch.Run(ctx, download.Request{Mode: "video", Quality: "best"}, &recordingReporter{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(engine.metaCalls) != 0 {
		t.Fatalf("expected no tasks after cancellation, got %d", len(engine.metaCalls))
	}
}

func TestRunUsesSavedPath(t *testing.T) {
	fx := newFixture(t, "https://a.example/1\n", true)
	custom := filepath.Join(t.TempDir(), "custom")
	if err := fx.settings.SetSavePath(custom); err != nil {
		t.Fatalf("SetSavePath: %v", err)
	}
	engine := &fakeEngine{titles: map[string]string{"https://a.example/1": "Clip"}}
	orch := download.NewOrchestrator(engine, nil, fx.links, fx.settings)

	if err := orch.Run(context.Background(), download.Request{Mode: "video", Quality: "best"}, &recordingReporter{}); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if got := engine.downloads[0].opts.OutputTemplate; !strings.HasPrefix(got, custom+string(filepath.Separator)) {
		t.Fatalf("expected template under %q, got %q", custom, got)
	}
}
