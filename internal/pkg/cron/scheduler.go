// Package cron runs the periodic background jobs of the API process.
package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"
)

// Func is the body of a job. It should return promptly once ctx ends.
type Func func(ctx context.Context) error

type job struct {
	name     string
	interval time.Duration
	fn       Func
}

// Scheduler runs each registered job once at Start and then on its own
// interval until Stop. Runs of one job never overlap.
type Scheduler struct {
	mu   sync.Mutex
	jobs []job

	stop    context.CancelFunc
	running sync.WaitGroup
}

func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// AddJob registers fn under name. Jobs added after Start are not scheduled.
func (s *Scheduler) AddJob(name string, interval time.Duration, fn Func) {
	s.mu.Lock()
	s.jobs = append(s.jobs, job{name: name, interval: interval, fn: fn})
	s.mu.Unlock()
	slog.Info("Cron job registered", "name", name, "interval", interval)
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.stop = cancel
	for _, j := range s.jobs {
		s.running.Add(1)
		go s.loop(ctx, j)
	}
	slog.Info("Cron scheduler started", "jobs", len(s.jobs))
}

// Stop cancels running jobs and waits for them to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.stop
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	s.running.Wait()
	slog.Info("Cron scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context, j job) {
	defer s.running.Done()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		run(ctx, j)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func run(ctx context.Context, j job) error {
	started := time.Now()
	err := j.fn(ctx)
	if err != nil {
		slog.Error("Cron job failed", "name", j.name, "duration", time.Since(started), "error", err)
		return fmt.Errorf("%s: %w", j.name, err)
	}
	slog.Debug("Cron job finished", "name", j.name, "duration", time.Since(started))
	return nil
}

func (s *Scheduler) snapshot() []job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.jobs)
}

// RunOnce runs every job once, in registration order, and joins their errors.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	var errs []error
	for _, j := range s.snapshot() {
		if err := run(ctx, j); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RunJob runs the job registered as name.
func (s *Scheduler) RunJob(ctx context.Context, name string) error {
	jobs := s.snapshot()
	i := slices.IndexFunc(jobs, func(j job) bool { return j.name == name })
	if i < 0 {
		return fmt.Errorf("unknown cron job %q", name)
	}
	return jobs[i].fn(ctx)
}

// JobNames lists registered jobs in registration order.
func (s *Scheduler) JobNames() []string {
	jobs := s.snapshot()
	names := make([]string, len(jobs))
	for i, j := range jobs {
		names[i] = j.name
	}
	return names
}
