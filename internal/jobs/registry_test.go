package jobs_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"vidqueue/internal/download"
	"vidqueue/internal/jobs"
	"vidqueue/internal/services"
)

type runnerFunc func(ctx context.Context, req download.Request, reporter download.Reporter) error

func (f runnerFunc) Run(ctx context.Context, req download.Request, reporter download.Reporter) error {
	return f(ctx, req, reporter)
}

func TestInitialStatus(t *testing.T) {
	reg := jobs.NewRegistry(context.Background(), runnerFunc(func(context.Context, download.Request, download.Reporter) error { return nil }))
	status := reg.Status()
	if status.State != jobs.StateIdle || status.Message != jobs.InitialMessage {
		t.Fatalf("unexpected initial status %+v", status)
	}
	reg.Wait()
}

func TestStartRefusesSecondRun(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	reg := jobs.NewRegistry(context.Background(), runnerFunc(func(ctx context.Context, _ download.Request, reporter download.Reporter) error {
		reporter.SetMessage("working")
		close(started)
		<-release
		return nil
	}))

	handle, err := reg.Start(context.Background(), download.Request{Mode: "video", Quality: "best"})
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if handle.ID == "" {
		t.Fatal("expected job id")
	}
	<-started

	if _, err := reg.Start(context.Background(), download.Request{}); !errors.Is(err, jobs.ErrAlreadyRunning) {
		t.Fatalf("expected ErrAlreadyRunning, got %v", err)
	}
	status := reg.Status()
	if !status.Running() || status.ID != handle.ID || status.Message != "working" {
		t.Fatalf("unexpected running status %+v", status)
	}

	close(release)
	reg.Wait()
	if got := reg.Status().State; got != jobs.StateCompleted {
		t.Fatalf("expected completed, got %q", got)
	}

	second, err := reg.Start(context.Background(), download.Request{})
	if err != nil {
		t.Fatalf("expected restart after completion, got %v", err)
	}
	if second.ID == handle.ID {
		t.Fatal("expected a fresh job id")
	}
	reg.Wait()
}

func TestReporterUpdatesState(t *testing.T) {
	boom := errors.New("bad link")
	var seenJobID string
	reg := jobs.NewRegistry(context.Background(), runnerFunc(func(ctx context.Context, _ download.Request, reporter download.Reporter) error {
		seenJobID, _ = services.JobIDFromContext(ctx)
		reporter.SetProgress(3, 3)
		reporter.RecordFailure(boom)
		reporter.RecordFailure(boom)
		reporter.SetMessage(download.MessageAllCompleted)
		return nil
	}))

	handle, err := reg.Start(context.Background(), download.Request{})
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	reg.Wait()
	status := reg.Status()
	if status.Current != 3 || status.Total != 3 || status.Failures != 2 {
		t.Fatalf("unexpected counters %+v", status)
	}
	if status.Message != download.MessageAllCompleted {
		t.Fatalf("unexpected message %q", status.Message)
	}
	if seenJobID != handle.ID {
		t.Fatalf("expected job id %q in run context, got %q", handle.ID, seenJobID)
	}
	if status.FinishedAt.IsZero() {
		t.Fatal("expected finish time")
	}
}

func TestFailedAndCanceledStates(t *testing.T) {
	failing := jobs.NewRegistry(context.Background(), runnerFunc(func(_ context.Context, _ download.Request, reporter download.Reporter) error {
		reporter.SetMessage(download.MessageEmptyList)
		return download.ErrListEmptyOrMissing
	}))
	if _, err := failing.Start(context.Background(), download.Request{}); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	failing.Wait()
	if status := failing.Status(); status.State != jobs.StateFailed || status.Message != download.MessageEmptyList {
		t.Fatalf("unexpected failed status %+v", status)
	}

	base, cancel := context.WithCancel(context.Background())
	canceled := jobs.NewRegistry(base, runnerFunc(func(ctx context.Context, _ download.Request, _ download.Reporter) error {
		<-ctx.Done()
		return ctx.Err()
	}))
	if _, err := canceled.Start(context.Background(), download.Request{}); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	cancel()
	canceled.Wait()
	if got := canceled.Status().State; got != jobs.StateCanceled {
		t.Fatalf("expected canceled, got %q", got)
	}
}

func TestRunOutlivesRequestContext(t *testing.T) {
	reqCtx, cancel := context.WithCancel(context.Background())
	reg := jobs.NewRegistry(context.Background(), runnerFunc(func(ctx context.Context, _ download.Request, _ download.Reporter) error {
		cancel()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(20 * time.Millisecond):
			return nil
		}
	}))
	if _, err := reg.Start(reqCtx, download.Request{}); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	reg.Wait()
	if got := reg.Status().State; got != jobs.StateCompleted {
		t.Fatalf("expected run to ignore request cancellation, got %q", got)
	}
}

func TestPanicMarksFailed(t *testing.T) {
	reg := jobs.NewRegistry(context.Background(), runnerFunc(func(context.Context, download.Request, download.Reporter) error {
		panic("boom")
	}))
	if _, err := reg.Start(context.Background(), download.Request{}); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	reg.Wait()
	if got := reg.Status().State; got != jobs.StateFailed {
		t.Fatalf("expected failed after panic, got %q", got)
	}
}

type recordingNotifier struct {
	completed []int
	failed    []error
}

func (n *recordingNotifier) NotifyRunCompleted(_ context.Context, total, failed int, _ time.Duration) error {
	n.completed = append(n.completed, total, failed)
	return nil
}

func (n *recordingNotifier) NotifyRunFailed(_ context.Context, err error) error {
	n.failed = append(n.failed, err)
	return errors.New("ntfy down")
}

func TestNotifierReceivesResults(t *testing.T) {
	notifier := &recordingNotifier{}
	listErr := download.ErrListEmptyOrMissing
	var next error
	reg := jobs.NewRegistry(context.Background(), runnerFunc(func(_ context.Context, _ download.Request, reporter download.Reporter) error {
		reporter.SetProgress(2, 2)
		reporter.RecordFailure(errors.New("bad"))
		return next
	}), jobs.WithNotifier(notifier))

	if _, err := reg.Start(context.Background(), download.Request{}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	reg.Wait()
	if len(notifier.completed) != 2 || notifier.completed[0] != 2 || notifier.completed[1] != 1 {
		t.Fatalf("unexpected completion notification %v", notifier.completed)
	}

	next = listErr
	if _, err := reg.Start(context.Background(), download.Request{}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	reg.Wait()
	if len(notifier.failed) != 1 || !errors.Is(notifier.failed[0], listErr) {
		t.Fatalf("unexpected failure notification %v", notifier.failed)
	}

	ctx, cancel := context.WithCancel(context.Background())
	canceled := jobs.NewRegistry(ctx, runnerFunc(func(ctx context.Context, _ download.Request, _ download.Reporter) error {
		cancel()
		return ctx.Err()
	}), jobs.WithNotifier(notifier))
	if _, err := canceled.Start(context.Background(), download.Request{}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	canceled.Wait()
	if len(notifier.completed) != 2 || len(notifier.failed) != 1 {
		t.Fatal("expected canceled run to stay silent")
	}
}
