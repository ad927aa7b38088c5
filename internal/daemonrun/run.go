package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"vidqueue/internal/api"
	"vidqueue/internal/auth"
	"vidqueue/internal/config"
	"vidqueue/internal/credentials"
	"vidqueue/internal/daemon"
	"vidqueue/internal/device"
	"vidqueue/internal/download"
	"vidqueue/internal/jobs"
	"vidqueue/internal/listfile"
	"vidqueue/internal/logging"
	"vidqueue/internal/naming"
	"vidqueue/internal/notifications"
	"vidqueue/internal/preflight"
	"vidqueue/internal/services/ytdlp"
	"vidqueue/internal/settings"
	"vidqueue/internal/webui"
)

// browserDelay gives the listener time to come up before the page is opened.
const browserDelay = 1500 * time.Millisecond

// Options configures server process runtime behavior.
type Options struct {
	LogLevel    string
	OpenBrowser bool
}

// Run starts the vidqueue server and blocks until the context is canceled or
// the process receives SIGINT/SIGTERM.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}
	if level := strings.TrimSpace(opts.LogLevel); level != "" {
		cfg.Logging.Level = level
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	logDependencySnapshot(signalCtx, logger, cfg)

	services, err := buildServices(signalCtx, cfg, logger)
	if err != nil {
		return err
	}

	d, err := daemon.New(cfg, services, logger)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	if err := d.Start(signalCtx); err != nil {
		logging.ErrorWithContext(logger, "server start failed", "daemon_start_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check server.bind and that no other vidqueue instance is running"),
		)
		return err
	}
	defer d.Stop()

	if opts.OpenBrowser {
		go openBrowserAfter(signalCtx, logger, api.BaseURLForBind(d.Address()), browserDelay)
	}

	<-signalCtx.Done()
	logger.Info("vidqueue server shutting down", logging.String(logging.FieldEventType, "daemon_shutdown"))
	return nil
}

// buildServices wires the stores, the naming assistant, the media engine and
// the job registry. The registry's run context is base, so an in-flight run
// is canceled when the process is asked to stop.
func buildServices(base context.Context, cfg *config.Config, logger *slog.Logger) (daemon.Services, error) {
	source, err := credentials.NewFromConfig(cfg)
	if err != nil {
		return daemon.Services{}, fmt.Errorf("credential store: %w", err)
	}
	renderer, err := webui.NewRenderer()
	if err != nil {
		return daemon.Services{}, err
	}

	keys := listfile.New(cfg.Paths.APIKeysFile)
	links := listfile.New(cfg.Paths.LinksFile)
	store := settings.NewStore(cfg.Paths.SettingsFile, cfg.Downloader.DefaultSaveDir)

	llmCfg := cfg.GetLLM()
	assistant := naming.NewAssistant(keys, llmCfg.Models, naming.LLMFactory(llmCfg),
		naming.WithLogger(logger),
		naming.WithTokenLimits(llmCfg.ProbeTokens, llmCfg.RenameTokens),
	)

	engine := ytdlp.New(cfg.DownloaderBinary(),
		ytdlp.WithFFmpegDir(cfg.Paths.FFmpegDir),
		ytdlp.WithNoCheckCertificate(cfg.Downloader.NoCheckCertificate),
		ytdlp.WithRestrictFilenames(cfg.Downloader.RestrictFilenames),
	)
	orchestrator := download.NewOrchestrator(engine, assistant, links, store,
		download.WithLogger(logger),
		download.WithAudioCodec(cfg.Downloader.AudioCodec),
	)
	registry := jobs.NewRegistry(base, orchestrator,
		jobs.WithLogger(logger),
		jobs.WithNotifier(notifications.NewService(cfg)),
	)

	return daemon.Services{
		Gate:        auth.NewGate(source, auth.WithLogger(logger)),
		Assistant:   assistant,
		Keys:        keys,
		Links:       links,
		Settings:    store,
		Jobs:        registry,
		Credentials: source,
		Renderer:    renderer,
		DeviceID:    device.ID,
	}, nil
}

func logDependencySnapshot(ctx context.Context, logger *slog.Logger, cfg *config.Config) {
	attrs := []logging.Attr{
		logging.String(logging.FieldEventType, "dependency_snapshot"),
		logging.String("credential_backend", cfg.Credentials.Backend),
		logging.Int("llm_models", len(cfg.GetLLM().Models)),
	}
	missing := 0
	for _, status := range preflight.CheckSystemDeps(ctx, cfg) {
		key := strings.ReplaceAll(status.Name, "-", "_")
		attrs = append(attrs,
			logging.Bool(key+"_available", status.Available),
			logging.String(key+"_binary", status.Command),
		)
		if status.Version != "" {
			attrs = append(attrs, logging.String(key+"_version", status.Version))
		}
		if !status.Available && !status.Optional {
			missing++
		}
	}
	logger.Info("dependency snapshot", logging.Args(attrs...)...)
	if missing > 0 {
		logging.WarnWithContext(logger, "required tools missing", "dependency_missing",
			logging.Int("missing", missing),
			logging.String(logging.FieldErrorHint, "install yt-dlp and ffmpeg or set downloader.binary and paths.ffmpeg_dir"),
			logging.String(logging.FieldImpact, "downloads will fail until the tools are available"),
		)
	}
}

func openBrowserAfter(ctx context.Context, logger *slog.Logger, url string, delay time.Duration) {
	select {
	case <-ctx.Done():
		return
	case <-time.After(delay):
	}
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		logging.WarnWithContext(logger, "could not open browser", "browser_open_failed",
			logging.Error(err),
			logging.String("url", url),
			logging.String(logging.FieldImpact, "open the page manually"),
		)
		return
	}
	go func() { _ = cmd.Wait() }()
}
