package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/syshair/backend/internal/metrics"
	"github.com/syshair/backend/pkg/logger"
)

// memLocker is a process-local Locker.
type memLocker struct {
	mu   sync.Mutex
	held map[string]bool
	err  error
}

type memLock struct {
	l   *memLocker
	key string
}

func (m *memLock) Release(context.Context) error {
	m.l.mu.Lock()
	defer m.l.mu.Unlock()
	delete(m.l.held, m.key)
	return nil
}

func (l *memLocker) Obtain(_ context.Context, key string, _ time.Duration) (Lock, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	if l.held[key] {
		return nil, ErrNotObtained
	}
	l.held[key] = true
	return &memLock{l: l, key: key}, nil
}

func newTestScheduler(locker Locker) *Scheduler {
	m := metrics.NewJobMetrics(prometheus.NewRegistry(), logger.NewNop())
	return New(locker, time.Minute, m, logger.NewNop())
}

func TestRunOnceSkipsWhenLocked(t *testing.T) {
	locker := &memLocker{held: map[string]bool{lockPrefix + "dispatch": true}}
	s := newTestScheduler(locker)
	var runs int32
	job := Job{Name: "dispatch", Interval: time.Hour, Run: func(context.Context) error {
		atomic.AddInt32(&runs, 1)
		return nil
	}}

	ran, err := s.RunOnce(context.Background(), job)

	require.NoError(t, err)
	assert.False(t, ran)
	assert.EqualValues(t, 0, runs)
}

func TestRunOnceReleasesLock(t *testing.T) {
	locker := &memLocker{held: map[string]bool{}}
	s := newTestScheduler(locker)
	job := Job{Name: "goals", Interval: time.Hour, Run: func(context.Context) error { return errors.New("boom") }}

	ran, err := s.RunOnce(context.Background(), job)

	assert.True(t, ran)
	assert.EqualError(t, err, "boom")
	assert.Empty(t, locker.held)
}

func TestRunOnceLockerError(t *testing.T) {
	s := newTestScheduler(&memLocker{err: errors.New("redis down")})
	job := Job{Name: "goals", Run: func(context.Context) error { return nil }}

	ran, err := s.RunOnce(context.Background(), job)

	assert.False(t, ran)
	assert.Error(t, err)
}

func TestConcurrentReplicasRunOnce(t *testing.T) {
	locker := &memLocker{held: map[string]bool{}}
	release := make(chan struct{})
	var runs int32
	job := Job{Name: "dispatch", Run: func(context.Context) error {
		atomic.AddInt32(&runs, 1)
		<-release
		return nil
	}}

	a := newTestScheduler(locker)
	b := newTestScheduler(locker)

	done := make(chan struct{})
	go func() {
		_, _ = a.RunOnce(context.Background(), job)
		close(done)
	}()
	require.Eventually(t, func() bool { return atomic.LoadInt32(&runs) == 1 }, time.Second, time.Millisecond)

	ran, err := b.RunOnce(context.Background(), job)
	require.NoError(t, err)
	assert.False(t, ran)

	close(release)
	<-done
	assert.EqualValues(t, 1, atomic.LoadInt32(&runs))
}

func TestStartRunsWithoutLocker(t *testing.T) {
	s := newTestScheduler(nil)
	var runs int32
	s.Register(Job{Name: "tick", Interval: 5 * time.Millisecond, Run: func(context.Context) error {
		atomic.AddInt32(&runs, 1)
		return nil
	}})

	s.Start(context.Background())
	require.Eventually(t, func() bool { return atomic.LoadInt32(&runs) >= 2 }, time.Second, time.Millisecond)
	s.Stop()
}
