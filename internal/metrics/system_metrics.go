package metrics

import (
	"runtime"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/syshair/backend/pkg/logger"
)

// SystemMetrics periodically samples the Go runtime of the backend process.
type SystemMetrics interface {
	StartRecording(interval time.Duration)
	Stop()
}

type runtimeSampler struct {
	log        *logger.Logger
	startedAt  time.Time
	goroutines prometheus.Gauge
	memory     *prometheus.GaugeVec
	gcCycles   prometheus.Gauge
	uptime     prometheus.Gauge
	stopCh     chan struct{}
	stopOnce   sync.Once
}

// NewSystemMetrics registers the runtime gauges on registry.
func NewSystemMetrics(registry *prometheus.Registry, log *logger.Logger) SystemMetrics {
	factory := promauto.With(registry)
	return &runtimeSampler{
		log:       log,
		startedAt: time.Now(),
		goroutines: factory.NewGauge(prometheus.GaugeOpts{
			Name: "runtime_goroutines",
			Help: "Goroutines in the backend process, including scheduler job loops",
		}),
		memory: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "runtime_memory_bytes",
			Help: "Go runtime memory by kind (heap_alloc, total_alloc, sys)",
		}, []string{"kind"}),
		gcCycles: factory.NewGauge(prometheus.GaugeOpts{
			Name: "runtime_gc_cycles",
			Help: "Completed garbage collection cycles since start",
		}),
		uptime: factory.NewGauge(prometheus.GaugeOpts{
			Name: "process_uptime_seconds",
			Help: "Seconds since the backend process started",
		}),
		stopCh: make(chan struct{}),
	}
}

func (s *runtimeSampler) sample() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	s.goroutines.Set(float64(runtime.NumGoroutine()))
	s.memory.WithLabelValues("heap_alloc").Set(float64(ms.HeapAlloc))
	s.memory.WithLabelValues("total_alloc").Set(float64(ms.TotalAlloc))
	s.memory.WithLabelValues("sys").Set(float64(ms.Sys))
	s.gcCycles.Set(float64(ms.NumGC))
	s.uptime.Set(time.Since(s.startedAt).Seconds())
}

// StartRecording samples once immediately, then every interval until Stop.
func (s *runtimeSampler) StartRecording(interval time.Duration) {
	s.sample()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.sample()
			case <-s.stopCh:
				return
			}
		}
	}()
	s.log.Infow("Runtime metrics sampling started", "interval", interval)
}

// Stop is safe to call more than once.
func (s *runtimeSampler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		s.log.Infow("Runtime metrics sampling stopped")
	})
}
