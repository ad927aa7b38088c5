package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/gofrs/flock"

	"vidqueue/internal/auth"
	"vidqueue/internal/config"
	"vidqueue/internal/credentials"
	"vidqueue/internal/download"
	"vidqueue/internal/jobs"
	"vidqueue/internal/logging"
	"vidqueue/internal/naming"
	"vidqueue/internal/settings"
	"vidqueue/internal/webui"
)

// Authenticator checks a login attempt.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password, deviceID string) (auth.Outcome, error)
}

// Assistant exposes the AI naming probe and its cached result.
type Assistant interface {
	Probe(ctx context.Context) naming.Status
	Status() naming.Status
}

// TextStore persists a list document verbatim.
type TextStore interface {
	Write(content string) error
}

// SettingsStore reads and updates the settings document.
type SettingsStore interface {
	Load() (settings.Settings, error)
	SetSavePath(path string) error
}

// JobRegistry owns the single download slot.
type JobRegistry interface {
	Start(ctx context.Context, req download.Request) (jobs.Handle, error)
	Status() jobs.State
	Wait()
}

// Services bundles the collaborators the HTTP handlers use.
type Services struct {
	Gate        Authenticator
	Assistant   Assistant
	Keys        TextStore
	Links       TextStore
	Settings    SettingsStore
	Jobs        JobRegistry
	Credentials credentials.Source
	Renderer    *webui.Renderer
	DeviceID    func() string
}

// Daemon runs the HTTP surface and enforces single-instance execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	services Services
	api      *apiServer

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	Bind         string
	LockFilePath string
	Job          jobs.State
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, services Services, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || logger == nil {
		return nil, errors.New("daemon requires config and logger")
	}
	if services.Gate == nil || services.Assistant == nil || services.Jobs == nil || services.Settings == nil {
		return nil, errors.New("daemon requires gate, assistant, job registry and settings store")
	}
	if services.Keys == nil || services.Links == nil || services.Renderer == nil {
		return nil, errors.New("daemon requires key list, link list and page renderer")
	}
	if services.DeviceID == nil {
		return nil, errors.New("daemon requires a device id source")
	}
	lockPath := strings.TrimSpace(cfg.Paths.LockFile)
	if lockPath == "" {
		return nil, errors.New("daemon requires paths.lock_file")
	}
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		services: services,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	d.api = newAPIServer(cfg, services, logger)
	return d, nil
}

// Start acquires the lock and begins serving HTTP.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("another vidqueue instance is already using %s", d.cfg.Paths.DataDir)
	}

	serveCtx, cancel := context.WithCancel(ctx)
	if err := d.api.start(serveCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return fmt.Errorf("start api server: %w", err)
	}
	d.cancel = cancel
	d.running.Store(true)
	d.logger.Info("vidqueue server started",
		logging.String(logging.FieldEventType, "daemon_started"),
		logging.String("lock", d.lockPath),
		logging.String("address", d.api.address()),
	)
	return nil
}

// Stop stops serving, waits for an in-flight run to notice cancellation, and
// releases the lock. The caller cancels the registry's base context.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	d.services.Jobs.Wait()
	if err := d.lock.Unlock(); err != nil {
		logging.WarnWithContext(d.logger, "failed to release daemon lock", "lock_release_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "remove the lock file if no vidqueue process is running"),
		)
	}
	d.running.Store(false)
	d.logger.Info("vidqueue server stopped", logging.String(logging.FieldEventType, "daemon_stopped"))
}

// Address returns the bound listen address once started.
func (d *Daemon) Address() string {
	return d.api.address()
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	return Status{
		Running:      d.running.Load(),
		Bind:         d.api.address(),
		LockFilePath: d.lockPath,
		Job:          d.services.Jobs.Status(),
	}
}
