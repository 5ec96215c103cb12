package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Jomes01/Kioku/internal/reminder"
	"github.com/robfig/cron/v3"
)

// DefaultSpec runs the reconcile pass daily at 00:15.
const DefaultSpec = "15 0 * * *"

const defaultRunTimeout = 2 * time.Minute

// Reconciler rebuilds the registered reminders from the stored events.
type Reconciler interface {
	Reconcile(ctx context.Context) (reminder.ReconcileReport, error)
}

// Job re-runs the reconcile pass on a cron schedule so yearly reminders that
// already fired are registered again for the next year.
type Job struct {
	reconciler Reconciler
	spec       string
	schedule   cron.Schedule
	location   *time.Location
	runOnStart bool
	runTimeout time.Duration

	// mu keeps a startup pass and a scheduled pass from overlapping.
	mu sync.Mutex
}

// NewJob parses spec as a standard five-field cron expression or a
// descriptor such as "@daily". A nil location uses local time.
func NewJob(reconciler Reconciler, spec string, runOnStart bool, location *time.Location) (*Job, error) {
	if reconciler == nil {
		panic("reconcile: reconciler is required")
	}
	if spec == "" {
		spec = DefaultSpec
	}
	if location == nil {
		location = time.Local
	}

	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid reconcile schedule %q: %w", spec, err)
	}

	return &Job{
		reconciler: reconciler,
		spec:       spec,
		schedule:   schedule,
		location:   location,
		runOnStart: runOnStart,
		runTimeout: defaultRunTimeout,
	}, nil
}

// Next returns the first scheduled run after t.
func (j *Job) Next(t time.Time) time.Time {
	return j.schedule.Next(t.In(j.location))
}

// RunOnce performs one reconcile pass.
func (j *Job) RunOnce(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	runCtx, cancel := context.WithTimeout(ctx, j.runTimeout)
	defer cancel()

	start := time.Now()
	report, err := j.reconciler.Reconcile(runCtx)
	if err != nil {
		slog.Error("[ReconcileJob] Reconcile pass failed",
			"error", err,
			"failures", report.Failures,
			"duration", time.Since(start))
		return err
	}

	slog.Info("[ReconcileJob] Reconcile pass complete",
		"cancelled", report.Cancelled,
		"scheduled", report.Scheduled,
		"events_updated", report.EventsUpdated,
		"duration", time.Since(start))
	return nil
}

// Startup runs the startup pass when enabled and returns once it finished.
// Call it before serving requests.
func (j *Job) Startup(ctx context.Context) error {
	if !j.runOnStart {
		slog.Info("[ReconcileJob] Startup pass disabled by config")
		return nil
	}
	return j.RunOnce(ctx)
}

// Start runs on the schedule until context is cancelled and waits for an
// in-flight pass.
func (j *Job) Start(ctx context.Context) error {

	c := cron.New(
		cron.WithLocation(j.location),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	c.Schedule(j.schedule, cron.FuncJob(func() {
		_ = j.RunOnce(ctx)
	}))
	c.Start()

	slog.Info("[ReconcileJob] Started",
		"schedule", j.spec,
		"location", j.location.String(),
		"next_run", j.Next(time.Now()))

	<-ctx.Done()
	slog.Info("[ReconcileJob] Stopping (context cancelled)")
	<-c.Stop().Done()
	return nil
}
