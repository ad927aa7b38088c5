package download

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"vidqueue/internal/config"
	"vidqueue/internal/listfile"
	"vidqueue/internal/logging"
	"vidqueue/internal/services"
	"vidqueue/internal/services/ytdlp"
	"vidqueue/internal/settings"
	"vidqueue/internal/textutil"
)

// Status messages shown on the page.
const (
	MessageNoLinks      = "Error: No Links Found!"
	MessageEmptyList    = "Error: Link list is empty!"
	MessageAllCompleted = "ALL TASKS COMPLETED SUCCESSFULLY!"
	fallbackTitle       = "Video"
	defaultAudioCodec   = "mp3"
	progressLogInterval = 10 * time.Second
)

// Request selects the output of a run.
type Request struct {
	Mode         string `json:"mode"`
	Quality      string `json:"quality"`
	ManualFormat string `json:"manual_fmt,omitempty"`
}

// Reporter receives run progress.
type Reporter interface {
	SetMessage(message string)
	SetProgress(current, total int)
	RecordFailure(err error)
}

// Engine resolves metadata and downloads media.
type Engine interface {
	Metadata(ctx context.Context, url string) (ytdlp.Info, error)
	Download(ctx context.Context, url string, opts ytdlp.DownloadOptions) error
}

// Namer suggests filenames for titles.
type Namer interface {
	SuggestFilename(ctx context.Context, title string) (string, bool)
}

// LinkSource yields the URLs to process.
type LinkSource interface {
	Read() ([]string, error)
}

// SettingsSource yields the current save directory.
type SettingsSource interface {
	Load() (settings.Settings, error)
}

// Orchestrator runs download batches.
type Orchestrator struct {
	engine     Engine
	namer      Namer
	links      LinkSource
	settings   SettingsSource
	audioCodec string
	logger     *slog.Logger
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithAudioCodec sets the codec used when extracting audio.
func WithAudioCodec(codec string) Option {
	return func(o *Orchestrator) {
		if codec = strings.TrimSpace(codec); codec != "" {
			o.audioCodec = codec
		}
	}
}

// NewOrchestrator wires the collaborators of a run. namer may be nil, in
// which case every task uses the sanitized title.
func NewOrchestrator(engine Engine, namer Namer, links LinkSource, store SettingsSource, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		engine:     engine,
		namer:      namer,
		links:      links,
		settings:   store,
		audioCodec: defaultAudioCodec,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = logging.NewComponentLogger(o.logger, "download")
	return o
}

// Run processes every URL in the link list in order. Task failures are
// reported and counted but do not stop the run. It returns
// ErrListEmptyOrMissing when there is nothing to do and the context error
// when canceled between tasks.
func (o *Orchestrator) Run(ctx context.Context, req Request, reporter Reporter) error {
	logger := logging.WithContext(ctx, o.logger)

	current, err := o.settings.Load()
	if err != nil {
		reporter.SetMessage("Error: " + err.Error())
		return fmt.Errorf("load settings: %w", err)
	}
	saveDir, err := config.ExpandPath(current.SavePath)
	if err != nil {
		reporter.SetMessage("Error: " + err.Error())
		return fmt.Errorf("expand save path: %w", err)
	}

	urls, err := o.links.Read()
	switch {
	case errors.Is(err, listfile.ErrMissing):
		reporter.SetMessage(MessageNoLinks)
		return fmt.Errorf("%w: %w", ErrListEmptyOrMissing, err)
	case err != nil:
		reporter.SetMessage("Error: " + err.Error())
		return fmt.Errorf("read links: %w", err)
	case len(urls) == 0:
		reporter.SetMessage(MessageEmptyList)
		return ErrListEmptyOrMissing
	}

	if err := os.MkdirAll(saveDir, 0o755); err != nil {
		reporter.SetMessage("Error: " + err.Error())
		return fmt.Errorf("create save directory: %w", err)
	}

	total := len(urls)
	format := ResolveFormat(req.Mode, req.Quality, req.ManualFormat)
	reporter.SetProgress(0, total)
	reporter.SetMessage(fmt.Sprintf("Starting %d downloads...", total))
	logger.Info("download run started",
		logging.String(logging.FieldEventType, "run_started"),
		logging.Int("tasks", total),
		logging.String("mode", req.Mode),
		logging.String("format", format),
		logging.String("save_dir", saveDir),
	)

	failures := 0
	for i, url := range urls {
		if err := ctx.Err(); err != nil {
			logger.Info("download run canceled",
				logging.String(logging.FieldEventType, "run_canceled"),
				logging.Int("completed", i),
				logging.Int("tasks", total),
			)
			return err
		}
		index := i + 1
		reporter.SetProgress(index, total)
		taskCtx := services.WithTaskIndex(ctx, index)
		if err := o.runTask(taskCtx, req, format, saveDir, url, index, total, reporter); err != nil {
			if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
				return ctx.Err()
			}
			failures++
			taskErr := &TaskError{Index: index, URL: url, Err: err}
			reporter.RecordFailure(taskErr)
			reporter.SetMessage(fmt.Sprintf("Error on %d: %v", index, err))
			logging.WarnWithContext(logging.WithContext(taskCtx, o.logger), "download task failed", "task_failed",
				logging.String("url", url),
				logging.String(logging.FieldErrorKind, services.ErrorKind(err)),
				logging.String(logging.FieldErrorHint, "check the URL and the yt-dlp output"),
				logging.String(logging.FieldImpact, "continuing with the next link"),
				logging.Error(err),
			)
		}
	}

	reporter.SetMessage(MessageAllCompleted)
	logger.Info("download run finished",
		logging.String(logging.FieldEventType, "run_finished"),
		logging.Int("tasks", total),
		logging.Int("failures", failures),
	)
	return nil
}

func (o *Orchestrator) runTask(ctx context.Context, req Request, format, saveDir, url string, index, total int, reporter Reporter) error {
	logger := logging.WithContext(ctx, o.logger)

	reporter.SetMessage(fmt.Sprintf("Processing (%d/%d): Getting Info...", index, total))
	info, err := o.engine.Metadata(ctx, url)
	if err != nil {
		return err
	}
	title := strings.TrimSpace(info.Title)
	if title == "" {
		title = fallbackTitle
	}

	reporter.SetMessage(fmt.Sprintf("Processing (%d/%d): AI Renaming...", index, total))
	name, source := o.chooseName(ctx, title)
	final := FinalName(name, index)

	target, err := SafeJoin(saveDir, final)
	if err != nil {
		return err
	}
	logger.Info("filename chosen",
		logging.String(logging.FieldEventType, "filename_chosen"),
		logging.String("title", title),
		logging.String("filename", final),
		logging.String("source", source),
	)

	reporter.SetMessage(fmt.Sprintf("Downloading: %s...", final))
	opts := ytdlp.DownloadOptions{
		Format:         format,
		OutputTemplate: outputTemplate(target),
		Progress:       progressLogger(logger),
	}
	bitrate := AudioBitrate(req.Quality)
	if strings.EqualFold(strings.TrimSpace(req.Mode), ModeAudio) || bitrate != "" {
		opts.ExtractAudio = true
		opts.AudioFormat = o.audioCodec
		opts.AudioQuality = bitrate
	}
	if err := o.engine.Download(ctx, url, opts); err != nil {
		return err
	}
	logger.Info("download complete",
		logging.String(logging.FieldEventType, "task_completed"),
		logging.String("filename", final),
	)
	return nil
}

func (o *Orchestrator) chooseName(ctx context.Context, title string) (string, string) {
	if o.namer != nil {
		if name, ok := o.namer.SuggestFilename(ctx, title); ok && name != "" {
			return name, "ai"
		}
	}
	if name := textutil.FallbackFileName(title); name != "" {
		return name, "fallback"
	}
	return fallbackTitle, "default"
}

func progressLogger(logger *slog.Logger) func(ytdlp.Progress) {
	var last time.Time
	return func(p ytdlp.Progress) {
		if time.Since(last) < progressLogInterval {
			return
		}
		last = time.Now()
		logger.Debug("download progress",
			logging.String(logging.FieldEventType, "task_progress"),
			logging.String("downloaded", humanize.IBytes(uint64(max(p.Downloaded, 0)))),
			logging.String("total", humanize.IBytes(uint64(max(p.Total, 0)))),
			logging.Float64("percent", p.Percent),
			logging.Duration("eta", p.ETA),
		)
	}
}
