// Package service holds the job registry. A registry is created in main and
// passed to whoever needs it; there is no package-level scheduler.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"storefront/internal/platform/metrics"
	"storefront/internal/scheduler/models"
	dErrors "storefront/pkg/domain-errors"
	"storefront/pkg/requestcontext"
)

type entry struct {
	name     string
	spec     string
	schedule cron.Schedule
	job      models.Job

	entryID  cron.EntryID
	active   bool
	running  bool
	runs     int
	failures int
	lastRun  *time.Time
	lastDur  time.Duration
	lastErr  string
}

type Registry struct {
	cron    *cron.Cron
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time

	// base is the parent of scheduled runs; Shutdown cancels it.
	base   context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	jobs    map[string]*entry
	started bool
	wg      sync.WaitGroup
}

type Option func(*Registry)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Registry) {
		r.metrics = m
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

func New(opts ...Option) *Registry {
	r := &Registry{
		logger: slog.Default(),
		now:    time.Now,
		jobs:   make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.base, r.cancel = context.WithCancel(context.Background())
	r.cron = cron.New(
		cron.WithParser(parser),
		cron.WithLocation(time.UTC),
		cron.WithLogger(cronLogger{r.logger}),
	)
	return r
}

// Register adds an inactive job. The schedule is a five-field cron
// expression or a descriptor such as "@every 15m" or "@daily".
func (r *Registry) Register(name, schedule string, job models.Job) error {
	sched, err := parser.Parse(schedule)
	if err != nil {
		return fmt.Errorf("parse schedule for %s: %w", name, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.jobs[name]; ok {
		return fmt.Errorf("job %s already registered", name)
	}
	r.jobs[name] = &entry{name: name, spec: schedule, schedule: sched, job: job}
	return nil
}

// Start activates the job's schedule. Starting an active job is a no-op.
func (r *Registry) Start(name string) (*models.JobStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, err := r.lookup(name)
	if err != nil {
		return nil, err
	}
	if !e.active {
		e.entryID = r.cron.Schedule(e.schedule, cron.FuncJob(func() { r.execute(r.base, name) }))
		e.active = true
		if !r.started {
			r.cron.Start()
			r.started = true
		}
		r.logger.Info("scheduled job started", "job", name, "schedule", e.spec)
	}
	return r.status(e), nil
}

// Stop deactivates the schedule. A run in progress is not interrupted.
func (r *Registry) Stop(name string) (*models.JobStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, err := r.lookup(name)
	if err != nil {
		return nil, err
	}
	if e.active {
		r.cron.Remove(e.entryID)
		e.entryID = 0
		e.active = false
		r.logger.Info("scheduled job stopped", "job", name)
	}
	return r.status(e), nil
}

// RunNow runs the job synchronously on ctx, outside its schedule.
func (r *Registry) RunNow(ctx context.Context, name string) (*models.JobStatus, error) {
	r.mu.Lock()
	_, err := r.lookup(name)
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if !r.execute(ctx, name) {
		return nil, dErrors.New(dErrors.CodeConflict, fmt.Sprintf("Job %s is already running", name))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status(r.jobs[name]), nil
}

// Status lists every job ordered by name.
func (r *Registry) Status() []models.JobStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.JobStatus, 0, len(r.jobs))
	for _, e := range r.jobs {
		out = append(out, *r.status(e))
	}
	slices.SortFunc(out, func(a, b models.JobStatus) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// Shutdown stops scheduling, cancels running jobs and waits for them to
// return or for ctx to expire.
func (r *Registry) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	stopped := r.cron.Stop()
	r.mu.Unlock()
	r.cancel()

	done := make(chan struct{})
	go func() {
		<-stopped.Done()
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler shutdown: %w", ctx.Err())
	}
}

// execute runs the job unless it is already running. It reports whether
// the job ran.
func (r *Registry) execute(ctx context.Context, name string) bool {
	r.mu.Lock()
	e := r.jobs[name]
	if e.running {
		r.mu.Unlock()
		r.logger.Warn("job skipped, previous run still in progress", "job", name)
		return false
	}
	e.running = true
	r.wg.Add(1)
	r.mu.Unlock()
	defer r.wg.Done()

	started := r.now()
	err := r.safeRun(requestcontext.WithTime(ctx, started), e)
	elapsed := r.now().Sub(started)
	r.metrics.ObserveJobRun(name, err, elapsed)

	r.mu.Lock()
	e.running = false
	e.runs++
	e.lastRun = &started
	e.lastDur = elapsed
	e.lastErr = ""
	if err != nil {
		e.failures++
		e.lastErr = err.Error()
	}
	r.mu.Unlock()

	if err != nil {
		r.logger.Error("job failed", "job", name, "duration", elapsed, "error", err)
	} else {
		r.logger.Info("job completed", "job", name, "duration", elapsed)
	}
	return true
}

func (r *Registry) safeRun(ctx context.Context, e *entry) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("job %s panicked: %v", e.name, p)
		}
	}()
	return e.job(ctx)
}

// lookup expects r.mu to be held.
func (r *Registry) lookup(name string) (*entry, error) {
	e, ok := r.jobs[name]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("Job %s not found", name))
	}
	return e, nil
}

// status expects r.mu to be held.
func (r *Registry) status(e *entry) *models.JobStatus {
	s := &models.JobStatus{
		Name:         e.name,
		Schedule:     e.spec,
		Active:       e.active,
		Running:      e.running,
		Runs:         e.runs,
		Failures:     e.failures,
		LastDuration: e.lastDur,
		LastError:    e.lastErr,
	}
	if e.lastRun != nil {
		at := *e.lastRun
		s.LastRunAt = &at
	}
	if e.active {
		next := e.schedule.Next(r.now().UTC())
		s.NextRunAt = &next
	}
	return s
}

// cronLogger routes cron's internal logging to slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
