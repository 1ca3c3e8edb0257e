// Package scheduler runs periodic jobs. Each tick takes a distributed lock
// named after the job so only one replica runs it.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/syshair/backend/internal/metrics"
	"github.com/syshair/backend/pkg/logger"
)

const lockPrefix = "syshair:job:"

// Job is a named periodic task.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

type Scheduler struct {
	jobs    []Job
	locker  Locker
	lockTTL time.Duration
	metrics metrics.JobMetrics
	log     *logger.Logger

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// New creates a scheduler. A nil locker runs every tick unlocked.
func New(locker Locker, lockTTL time.Duration, m metrics.JobMetrics, log *logger.Logger) *Scheduler {
	if lockTTL <= 0 {
		lockTTL = 10 * time.Minute
	}
	return &Scheduler{locker: locker, lockTTL: lockTTL, metrics: m, log: log}
}

// Register adds a job. Must be called before Start.
func (s *Scheduler) Register(job Job) {
	s.jobs = append(s.jobs, job)
}

// Start launches one ticker goroutine per job.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	for _, job := range s.jobs {
		if job.Interval <= 0 {
			s.log.Warnw("Job disabled, non-positive interval", "job", job.Name)
			continue
		}
		s.wg.Add(1)
		go s.loop(ctx, job)
	}
	s.log.Infow("Scheduler started", "jobs", len(s.jobs))
}

// Stop cancels running loops and waits for in-flight ticks.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.log.Infow("Scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context, job Job) {
	defer s.wg.Done()
	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.RunOnce(ctx, job); err != nil {
				s.log.Errorw("Job run failed", "job", job.Name, "error", err)
			}
		}
	}
}

// RunOnce runs job under its lock. It reports false when the lock was held
// elsewhere and the run was skipped.
func (s *Scheduler) RunOnce(ctx context.Context, job Job) (bool, error) {
	if s.locker != nil {
		lock, err := s.locker.Obtain(ctx, lockPrefix+job.Name, s.lockTTL)
		if errors.Is(err, ErrNotObtained) {
			s.metrics.IncJobSkipped(job.Name)
			s.log.Debugw("Job lock held elsewhere, skipping tick", "job", job.Name)
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("obtain lock for %s: %w", job.Name, err)
		}
		defer func() {
			if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
				s.log.Warnw("Failed to release job lock", "job", job.Name, "error", err)
			}
		}()
	}

	start := time.Now()
	err := job.Run(ctx)
	s.metrics.ObserveJobRun(job.Name, time.Since(start), err)
	return true, err
}
