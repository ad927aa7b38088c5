// Package jobs owns the single download slot and the observable job state.
//
// At most one run is in flight at a time. Start refuses a second run with
// ErrAlreadyRunning; Status returns a copy of the state the page polls.
package jobs

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"vidqueue/internal/download"
	"vidqueue/internal/logging"
	"vidqueue/internal/services"
)

// ErrAlreadyRunning is returned by Start while a run is in flight.
var ErrAlreadyRunning = errors.New("a download run is already in progress")

// Job states.
const (
	StateIdle      = "idle"
	StateRunning   = "running"
	StateCompleted = "completed"
	StateFailed    = "failed"
	StateCanceled  = "canceled"
)

// InitialMessage is reported before the first run.
const InitialMessage = "System Ready..."

// Runner executes one download run.
type Runner interface {
	Run(ctx context.Context, req download.Request, reporter download.Reporter) error
}

// Notifier receives the result of a finished run.
type Notifier interface {
	NotifyRunCompleted(ctx context.Context, total, failed int, duration time.Duration) error
	NotifyRunFailed(ctx context.Context, err error) error
}

// State is a snapshot of the current or most recent run.
type State struct {
	ID         string           `json:"job_id"`
	State      string           `json:"state"`
	Message    string           `json:"log"`
	Current    int              `json:"current"`
	Total      int              `json:"total"`
	Failures   int              `json:"failures"`
	Request    download.Request `json:"request"`
	StartedAt  time.Time        `json:"started_at,omitzero"`
	FinishedAt time.Time        `json:"finished_at,omitzero"`
}

// Running reports whether the snapshot belongs to an in-flight run.
func (s State) Running() bool {
	return s.State == StateRunning
}

// Handle identifies a started run.
type Handle struct {
	ID        string
	StartedAt time.Time
}

// Registry is the single-slot job owner. It implements download.Reporter for
// the run it launched.
type Registry struct {
	base     context.Context
	runner   Runner
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time

	mu    sync.Mutex
	state State
	done  chan struct{}
}

// Option customizes a Registry.
type Option func(*Registry)

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// WithNotifier publishes completed and failed runs. Canceled runs are not
// announced.
func WithNotifier(n Notifier) Option {
	return func(r *Registry) {
		r.notifier = n
	}
}

// NewRegistry returns an idle registry. Runs derive their context from base,
// so canceling base stops a run before its next task.
func NewRegistry(base context.Context, runner Runner, opts ...Option) *Registry {
	if base == nil {
		base = context.Background()
	}
	r := &Registry{
		base:   base,
		runner: runner,
		logger: logging.NewNop(),
		now:    time.Now,
		state:  State{State: StateIdle, Message: InitialMessage},
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.NewComponentLogger(r.logger, "jobs")
	return r
}

// Start launches a run on its own goroutine and returns immediately. The
// caller's ctx only contributes log fields; the run outlives the request.
func (r *Registry) Start(ctx context.Context, req download.Request) (Handle, error) {
	r.mu.Lock()
	if r.state.State == StateRunning {
		id := r.state.ID
		r.mu.Unlock()
		logging.WithContext(ctx, r.logger).Info("start refused",
			logging.String(logging.FieldEventType, "job_busy"),
			logging.String("active_job", id),
		)
		return Handle{}, ErrAlreadyRunning
	}
	handle := Handle{ID: uuid.NewString(), StartedAt: r.now()}
	r.state = State{
		ID:        handle.ID,
		State:     StateRunning,
		Message:   "Starting...",
		Request:   req,
		StartedAt: handle.StartedAt,
	}
	done := make(chan struct{})
	r.done = done
	r.mu.Unlock()

	runCtx := services.WithJobID(r.base, handle.ID)
	logging.WithContext(runCtx, r.logger).Info("job started",
		logging.String(logging.FieldEventType, "job_started"),
		logging.String("mode", req.Mode),
		logging.String("quality", req.Quality),
	)
	go r.run(runCtx, req, done)
	return handle, nil
}

func (r *Registry) run(ctx context.Context, req download.Request, done chan struct{}) {
	defer close(done)
	var err error
	func() {
		defer func() {
			if p := recover(); p != nil {
				err = errors.New("download run panicked")
				logging.ErrorWithContext(logging.WithContext(ctx, r.logger), "download run panicked", "job_panic",
					logging.Any("panic", p),
				)
			}
		}()
		err = r.runner.Run(ctx, req, r)
	}()
	r.finish(ctx, err)
}

func (r *Registry) finish(ctx context.Context, err error) {
	r.mu.Lock()
	r.state.FinishedAt = r.now()
	switch {
	case err == nil:
		r.state.State = StateCompleted
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		r.state.State = StateCanceled
	default:
		r.state.State = StateFailed
		if r.state.Message == "" {
			r.state.Message = "Error: " + err.Error()
		}
	}
	snapshot := r.state
	r.mu.Unlock()

	logger := logging.WithContext(ctx, r.logger)
	attrs := []logging.Attr{
		logging.String(logging.FieldEventType, "job_finished"),
		logging.String("state", snapshot.State),
		logging.Int("total", snapshot.Total),
		logging.Int("failures", snapshot.Failures),
		logging.Duration("elapsed", snapshot.FinishedAt.Sub(snapshot.StartedAt)),
	}
	if err != nil {
		attrs = append(attrs, logging.String(logging.FieldErrorKind, services.ErrorKind(err)), logging.Error(err))
	}
	logger.Info("job finished", logging.Args(attrs...)...)
	r.notify(context.WithoutCancel(ctx), snapshot, err)
}

func (r *Registry) notify(ctx context.Context, snapshot State, runErr error) {
	if r.notifier == nil {
		return
	}
	var err error
	switch snapshot.State {
	case StateCompleted:
		err = r.notifier.NotifyRunCompleted(ctx, snapshot.Total, snapshot.Failures, snapshot.FinishedAt.Sub(snapshot.StartedAt))
	case StateFailed:
		err = r.notifier.NotifyRunFailed(ctx, runErr)
	default:
		return
	}
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, r.logger), "notification failed", "notification_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run result was not announced"),
		)
	}
}

// Status returns a copy of the current state.
func (r *Registry) Status() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Wait blocks until the in-flight run, if any, has finished.
func (r *Registry) Wait() {
	r.mu.Lock()
	done := r.done
	r.mu.Unlock()
	if done != nil {
		<-done
	}
}

// SetMessage replaces the status message.
func (r *Registry) SetMessage(message string) {
	r.mu.Lock()
	r.state.Message = message
	r.mu.Unlock()
}

// SetProgress records the task position.
func (r *Registry) SetProgress(current, total int) {
	r.mu.Lock()
	r.state.Current = current
	r.state.Total = total
	r.mu.Unlock()
}

// RecordFailure counts a failed task.
func (r *Registry) RecordFailure(error) {
	r.mu.Lock()
	r.state.Failures++
	r.mu.Unlock()
}
