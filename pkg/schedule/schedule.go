// Package schedule regenerates the chart on a fixed interval.
package schedule

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	cerrors "github.com/r3d91ll/tempchart/pkg/errors"
	"github.com/r3d91ll/tempchart/pkg/pipeline"
)

// Runner is the part of *pipeline.Pipeline the scheduler drives.
type Runner interface {
	Run(ctx context.Context) pipeline.Result
}

// Options configures a Scheduler.
type Options struct {
	Every time.Duration

	// WaitForSchedule delays the first run by one interval instead of
	// running immediately on Start.
	WaitForSchedule bool

	// Location is the scheduler's time zone; nil means UTC.
	Location *time.Location
}

// Scheduler periodically runs the chart pipeline.
type Scheduler struct {
	scheduler *gocron.Scheduler
	runner    Runner
	opts      Options

	mu       sync.Mutex
	job      *gocron.Job
	runs     int
	failures int
	cancel   context.CancelFunc
}

// New creates a Scheduler. A non-positive interval is a SCHEDULE_FAILED error.
func New(runner Runner, opts Options) (*Scheduler, error) {
	if opts.Every <= 0 {
		return nil, cerrors.AttachSuggestions(
			cerrors.New(cerrors.ErrScheduleFailed, cerrors.CategoryConfig, "schedule interval must be positive").
				WithContext("every", opts.Every.String()))
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(loc),
		runner:    runner,
		opts:      opts,
	}, nil
}

// Start registers the job and starts the scheduler in the background. Runs
// use a context derived from ctx; canceling ctx stops the scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.job != nil {
		return cerrors.New(cerrors.ErrScheduleFailed, cerrors.CategoryInternal, "scheduler already started")
	}

	runCtx, cancel := context.WithCancel(ctx)

	chain := s.scheduler.Every(s.opts.Every).SingletonMode()
	if s.opts.WaitForSchedule {
		chain = chain.WaitForSchedule()
	}
	job, err := chain.Do(func() { s.tick(runCtx) })
	if err != nil {
		cancel()
		return cerrors.Wrap(err, cerrors.ErrScheduleFailed, cerrors.CategoryInternal, "failed to schedule chart job").
			WithContext("every", s.opts.Every.String())
	}
	s.job = job
	s.cancel = cancel

	s.scheduler.StartAsync()
	log.Printf("[schedule] regenerating every %v", s.opts.Every)

	go func() {
		<-runCtx.Done()
		s.Stop()
	}()
	return nil
}

func (s *Scheduler) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	res := s.runner.Run(ctx)

	s.mu.Lock()
	s.runs++
	if res.Err != nil {
		s.failures++
	}
	runs, failures := s.runs, s.failures
	s.mu.Unlock()

	if res.Err != nil {
		log.Printf("[schedule] run %d failed (%d failures so far)", runs, failures)
		return
	}
	log.Printf("[schedule] run %d complete, next at %s", runs, s.NextRun().Format(time.RFC3339))
}

// Stop stops the scheduler and cancels any run in progress. It is safe to
// call more than once.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	s.scheduler.Stop()
	log.Printf("[schedule] stopped")
}

// IsRunning reports whether the scheduler is started.
func (s *Scheduler) IsRunning() bool {
	return s.scheduler.IsRunning()
}

// NextRun returns the next scheduled run, or the zero time before Start.
func (s *Scheduler) NextRun() time.Time {
	s.mu.Lock()
	job := s.job
	s.mu.Unlock()
	if job == nil {
		return time.Time{}
	}
	return job.NextRun()
}

// Runs returns the number of completed runs and how many of them failed.
func (s *Scheduler) Runs() (total, failed int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs, s.failures
}
