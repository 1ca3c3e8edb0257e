package services

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/syshair/backend/internal/mercadopago"
	"github.com/syshair/backend/internal/metrics"
	"github.com/syshair/backend/pkg/logger"
)

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func newBillingMetrics() metrics.BillingMetrics {
	return metrics.NewBillingMetrics(prometheus.NewRegistry(), logger.NewNop())
}

func newJobMetrics() metrics.JobMetrics {
	return metrics.NewJobMetrics(prometheus.NewRegistry(), logger.NewNop())
}

// fakeProvider serves canned provider objects.
type fakeProvider struct {
	preapprovals map[string]*mercadopago.Preapproval
	payments     map[string]*mercadopago.Payment
	err          error
	calls        int
}

func (f *fakeProvider) GetPreapproval(_ context.Context, id string) (*mercadopago.Preapproval, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	pre, ok := f.preapprovals[id]
	if !ok {
		return nil, &mercadopago.APIError{StatusCode: 404}
	}
	return pre, nil
}

func (f *fakeProvider) GetPayment(_ context.Context, id string) (*mercadopago.Payment, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.payments[id]
	if !ok {
		return nil, &mercadopago.APIError{StatusCode: 404}
	}
	return p, nil
}

type publishedEvent struct {
	topic   string
	key     string
	payload any
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (r *recordingPublisher) Publish(_ context.Context, topic, key string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, publishedEvent{topic: topic, key: key, payload: payload})
	return nil
}

func (r *recordingPublisher) topics() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.topic)
	}
	return out
}

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }
