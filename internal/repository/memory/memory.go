// Package memory holds in-memory repositories used by service and handler tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/syshair/backend/internal/models"
	"github.com/syshair/backend/internal/repository"
)

// SubscriptionStore implements repository.SubscriptionRepository.
type SubscriptionStore struct {
	mu      sync.RWMutex
	subs    map[uuid.UUID]*models.Subscription
	Updates int
}

func NewSubscriptionStore(subs ...*models.Subscription) *SubscriptionStore {
	s := &SubscriptionStore{subs: make(map[uuid.UUID]*models.Subscription)}
	for _, sub := range subs {
		s.Put(sub)
	}
	return s
}

// Put inserts or replaces sub.
func (s *SubscriptionStore) Put(sub *models.Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	s.subs[sub.ID] = sub.Clone()
}

func (s *SubscriptionStore) find(match func(*models.Subscription) bool) (*models.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sub := range s.subs {
		if match(sub) {
			return sub.Clone(), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *SubscriptionStore) GetBySalonID(_ context.Context, salonID uuid.UUID) (*models.Subscription, error) {
	return s.find(func(sub *models.Subscription) bool { return sub.SalonID == salonID })
}

func (s *SubscriptionStore) GetByPreapprovalID(_ context.Context, id string) (*models.Subscription, error) {
	return s.find(func(sub *models.Subscription) bool {
		return sub.ExternalPreapprovalID != nil && *sub.ExternalPreapprovalID == id
	})
}

func (s *SubscriptionStore) GetByExternalReference(_ context.Context, ref string) (*models.Subscription, error) {
	return s.find(func(sub *models.Subscription) bool {
		return sub.ExternalReference != nil && *sub.ExternalReference == ref
	})
}

func (s *SubscriptionStore) Update(_ context.Context, sub *models.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subs[sub.ID]; !ok {
		return repository.ErrNotFound
	}
	sub.UpdatedAt = time.Now().UTC()
	s.subs[sub.ID] = sub.Clone()
	s.Updates++
	return nil
}

// PaymentStore implements repository.PaymentRepository.
type PaymentStore struct {
	mu      sync.RWMutex
	Records []models.PaymentRecord
}

func NewPaymentStore() *PaymentStore {
	return &PaymentStore{}
}

func (s *PaymentStore) Exists(_ context.Context, externalPaymentID, status string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.Records {
		if r.ExternalPaymentID == externalPaymentID && r.ExternalStatus == status {
			return true, nil
		}
	}
	return false, nil
}

func (s *PaymentStore) Create(ctx context.Context, p *models.PaymentRecord) error {
	if ok, _ := s.Exists(ctx, p.ExternalPaymentID, p.ExternalStatus); ok {
		return repository.ErrDuplicate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now().UTC()
	s.Records = append(s.Records, *p)
	return nil
}

// NotificationStore implements repository.NotificationRepository.
// FailMark makes MarkSent/MarkFailed return the given error for a row.
type NotificationStore struct {
	mu       sync.RWMutex
	rows     map[uuid.UUID]*models.Notification
	FailMark map[uuid.UUID]error
}

func NewNotificationStore(rows ...models.Notification) *NotificationStore {
	s := &NotificationStore{
		rows:     make(map[uuid.UUID]*models.Notification),
		FailMark: make(map[uuid.UUID]error),
	}
	for i := range rows {
		n := rows[i]
		if n.ID == uuid.Nil {
			n.ID = uuid.New()
		}
		if n.CreatedAt.IsZero() {
			n.CreatedAt = time.Now().UTC()
		}
		s.rows[n.ID] = &n
	}
	return s
}

// Get returns a copy of a row.
func (s *NotificationStore) Get(id uuid.UUID) (models.Notification, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.rows[id]
	if !ok {
		return models.Notification{}, false
	}
	return *n, true
}

// All returns every row ordered by creation time.
func (s *NotificationStore) All() []models.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Notification, 0, len(s.rows))
	for _, n := range s.rows {
		out = append(out, *n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (s *NotificationStore) list(limit int, match func(*models.Notification) bool) []models.Notification {
	var out []models.Notification
	for _, n := range s.All() {
		n := n
		if match(&n) {
			out = append(out, n)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (s *NotificationStore) ListDueScheduled(_ context.Context, now time.Time, limit int) ([]models.Notification, error) {
	return s.list(limit, func(n *models.Notification) bool {
		return n.Status == models.NotificationScheduled && n.ScheduledFor != nil && !n.ScheduledFor.After(now)
	}), nil
}

func (s *NotificationStore) ListPending(_ context.Context, limit int) ([]models.Notification, error) {
	return s.list(limit, func(n *models.Notification) bool {
		return n.Status == models.NotificationPending
	}), nil
}

func (s *NotificationStore) Create(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	n.CreatedAt = time.Now().UTC()
	row := *n
	s.rows[n.ID] = &row
	return nil
}

func (s *NotificationStore) transition(id uuid.UUID, apply func(*models.Notification)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.FailMark[id]; err != nil {
		return err
	}
	n, ok := s.rows[id]
	if !ok || (n.Status != models.NotificationPending && n.Status != models.NotificationScheduled) {
		return repository.ErrNotFound
	}
	apply(n)
	return nil
}

func (s *NotificationStore) MarkSent(_ context.Context, id uuid.UUID, sentAt time.Time) error {
	return s.transition(id, func(n *models.Notification) {
		n.Status = models.NotificationSent
		n.SentAt = &sentAt
		n.ErrorMessage = nil
	})
}

func (s *NotificationStore) MarkFailed(_ context.Context, id uuid.UUID, reason string) error {
	return s.transition(id, func(n *models.Notification) {
		n.Status = models.NotificationFailed
		n.ErrorMessage = &reason
	})
}

// ClientStore implements repository.ClientRepository.
type ClientStore struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]models.Client
}

func NewClientStore(clients ...models.Client) *ClientStore {
	s := &ClientStore{clients: make(map[uuid.UUID]models.Client)}
	for _, c := range clients {
		s.clients[c.ID] = c
	}
	return s
}

func (s *ClientStore) GetByIDs(_ context.Context, salonID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]models.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[uuid.UUID]models.Client)
	for _, id := range ids {
		if c, ok := s.clients[id]; ok && c.SalonID == salonID {
			out[id] = c
		}
	}
	return out, nil
}

// PushStore implements repository.PushSubscriptionRepository.
type PushStore struct {
	mu   sync.RWMutex
	Subs []models.PushSubscription
}

func NewPushStore(subs ...models.PushSubscription) *PushStore {
	return &PushStore{Subs: subs}
}

func (s *PushStore) Upsert(_ context.Context, p *models.PushSubscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.Subs {
		sameEndpoint := p.IsWebPush() && existing.Endpoint != nil && *existing.Endpoint == *p.Endpoint
		sameToken := !p.IsWebPush() && p.FCMToken != nil && existing.FCMToken != nil && *existing.FCMToken == *p.FCMToken
		if sameEndpoint || sameToken {
			p.ID = existing.ID
			s.Subs[i] = *p
			return nil
		}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now().UTC()
	s.Subs = append(s.Subs, *p)
	return nil
}

func (s *PushStore) ClientsWithPush(_ context.Context, salonID uuid.UUID, clientIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wanted := make(map[uuid.UUID]bool, len(clientIDs))
	for _, id := range clientIDs {
		wanted[id] = true
	}
	out := make(map[uuid.UUID]bool)
	for i := range s.Subs {
		p := &s.Subs[i]
		if p.SalonID == salonID && p.ClientID != nil && wanted[*p.ClientID] && p.IsUsable() {
			out[*p.ClientID] = true
		}
	}
	return out, nil
}

// GoalStore implements repository.GoalRepository.
type GoalStore struct {
	mu      sync.RWMutex
	goals   map[uuid.UUID]*models.Goal
	Updates int
}

func NewGoalStore(goals ...models.Goal) *GoalStore {
	s := &GoalStore{goals: make(map[uuid.UUID]*models.Goal)}
	for i := range goals {
		g := goals[i]
		if g.ID == uuid.Nil {
			g.ID = uuid.New()
		}
		s.goals[g.ID] = &g
	}
	return s
}

// Get returns a copy of a goal.
func (s *GoalStore) Get(id uuid.UUID) (models.Goal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.goals[id]
	if !ok {
		return models.Goal{}, false
	}
	return *g, true
}

func (s *GoalStore) ListActive(_ context.Context) ([]models.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Goal
	for _, g := range s.goals {
		if g.Status == models.GoalActive {
			out = append(out, *g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EndDate.Before(out[j].EndDate) })
	return out, nil
}

func (s *GoalStore) UpdateProgress(_ context.Context, id uuid.UUID, current decimal.Decimal, status models.GoalStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.goals[id]
	if !ok {
		return repository.ErrNotFound
	}
	g.CurrentValue = current
	g.Status = status
	g.UpdatedAt = time.Now().UTC()
	s.Updates++
	return nil
}

// Appointment and Review are the raw rows the stats store aggregates.
type Appointment struct {
	SalonID        uuid.UUID
	ProfessionalID *uuid.UUID
	Status         string
	TotalPrice     decimal.Decimal
	StartTime      time.Time
}

type Review struct {
	SalonID        uuid.UUID
	ProfessionalID *uuid.UUID
	Rating         int
	CreatedAt      time.Time
}

// StatsStore implements repository.StatsRepository over in-memory rows.
type StatsStore struct {
	Appointments []Appointment
	Clients      []models.Client
	Reviews      []Review
}

func inWindow(t time.Time, w models.GoalWindow) bool {
	return !t.Before(w.From) && !t.After(w.To)
}

func sameProfessional(p *uuid.UUID, w models.GoalWindow) bool {
	return w.ProfessionalID == nil || (p != nil && *p == *w.ProfessionalID)
}

func (s *StatsStore) completed(w models.GoalWindow) []Appointment {
	var out []Appointment
	for _, a := range s.Appointments {
		if a.SalonID == w.SalonID && a.Status == "completed" && inWindow(a.StartTime, w) && sameProfessional(a.ProfessionalID, w) {
			out = append(out, a)
		}
	}
	return out
}

func (s *StatsStore) SumCompletedRevenue(_ context.Context, w models.GoalWindow) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, a := range s.completed(w) {
		sum = sum.Add(a.TotalPrice)
	}
	return sum, nil
}

func (s *StatsStore) CountCompletedAppointments(_ context.Context, w models.GoalWindow) (int64, error) {
	return int64(len(s.completed(w))), nil
}

func (s *StatsStore) CountNewClients(_ context.Context, w models.GoalWindow) (int64, error) {
	var n int64
	for _, c := range s.Clients {
		if c.SalonID == w.SalonID && inWindow(c.CreatedAt, w) {
			n++
		}
	}
	return n, nil
}

func (s *StatsStore) AverageRating(_ context.Context, w models.GoalWindow) (decimal.Decimal, error) {
	sum, n := 0, 0
	for _, r := range s.Reviews {
		if r.SalonID == w.SalonID && inWindow(r.CreatedAt, w) && sameProfessional(r.ProfessionalID, w) {
			sum += r.Rating
			n++
		}
	}
	if n == 0 {
		return decimal.Zero, nil
	}
	return decimal.NewFromInt(int64(sum)).DivRound(decimal.NewFromInt(int64(n)), 2), nil
}

// SubscriptionCache implements repository.SubscriptionCache in memory.
type SubscriptionCache struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*models.Subscription
	Hits    int
}

func NewSubscriptionCache() *SubscriptionCache {
	return &SubscriptionCache{entries: make(map[uuid.UUID]*models.Subscription)}
}

func (c *SubscriptionCache) CacheSubscription(_ context.Context, sub *models.Subscription) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[sub.SalonID] = sub.Clone()
	return nil
}

func (c *SubscriptionCache) GetCachedSubscription(_ context.Context, salonID uuid.UUID) (*models.Subscription, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	sub, ok := c.entries[salonID]
	if !ok {
		return nil, nil
	}
	c.Hits++
	return sub.Clone(), nil
}

func (c *SubscriptionCache) DeleteCachedSubscription(_ context.Context, salonID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, salonID)
	return nil
}

var (
	_ repository.SubscriptionRepository     = (*SubscriptionStore)(nil)
	_ repository.PaymentRepository          = (*PaymentStore)(nil)
	_ repository.NotificationRepository     = (*NotificationStore)(nil)
	_ repository.ClientRepository           = (*ClientStore)(nil)
	_ repository.PushSubscriptionRepository = (*PushStore)(nil)
	_ repository.GoalRepository             = (*GoalStore)(nil)
	_ repository.StatsRepository            = (*StatsStore)(nil)
	_ repository.SubscriptionCache          = (*SubscriptionCache)(nil)
)
