//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"wathaci-webhooks/internal/domain"
	"wathaci-webhooks/internal/domain/model"
	"wathaci-webhooks/internal/domain/ports/adapter"
	"wathaci-webhooks/internal/domain/ports/repository"
)

// =============================
// Adapters
// =============================

// ---- Mock RealtimePublisher ----

type publishedEvent struct {
	Channel string
	Event   string
	Payload any
}

type MockPublisher struct {
	mu        sync.Mutex
	Published []publishedEvent

	PublishFunc func(ctx context.Context, channel, event string, payload any) error
}

var _ adapter.RealtimePublisher = (*MockPublisher)(nil)

func (m *MockPublisher) Publish(ctx context.Context, channel, event string, payload any) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, channel, event, payload)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Published = append(m.Published, publishedEvent{Channel: channel, Event: event, Payload: payload})
	return nil
}

func (m *MockPublisher) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Published)
}

// =============================
// Repositories
// =============================

// ---- Mock PaymentRepository ----

type MockPaymentRepo struct {
	mu    sync.Mutex
	byRef map[string]*model.Payment

	UpdateByReferenceFunc     func(ctx context.Context, tx repository.Tx, u repository.PaymentLedgerUpdate) (bool, error)
	CountPendingOlderThanFunc func(ctx context.Context, tx repository.Tx, olderThan time.Time) (int, error)
}

var _ repository.PaymentRepository = (*MockPaymentRepo)(nil)

func NewMockPaymentRepo(seed ...*model.Payment) *MockPaymentRepo {
	r := &MockPaymentRepo{byRef: map[string]*model.Payment{}}
	for _, p := range seed {
		cp := *p
		r.byRef[p.Reference] = &cp
	}
	return r
}

func strPtrOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func sameStr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// UpdateByReference mirrors the SQL overwrite: paid_at is kept when absent, and the
// update applies only when some field changes.
func (r *MockPaymentRepo) UpdateByReference(ctx context.Context, tx repository.Tx, u repository.PaymentLedgerUpdate) (bool, error) {
	if r.UpdateByReferenceFunc != nil {
		return r.UpdateByReferenceFunc(ctx, tx, u)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byRef[u.Reference]
	if !ok {
		return false, nil
	}
	gid, resp := strPtrOrNil(u.GatewayTransactionID), strPtrOrNil(u.GatewayResponse)
	paidAt := u.PaidAt
	if paidAt == nil {
		paidAt = p.PaidAt
	}
	if p.Status == u.Status && sameStr(p.GatewayTransactionID, gid) && sameStr(p.GatewayResponse, resp) && sameTime(p.PaidAt, paidAt) {
		return false, nil
	}
	p.Status = u.Status
	p.GatewayTransactionID = gid
	p.GatewayResponse = resp
	p.PaidAt = paidAt
	p.UpdatedAt = time.Now()
	return true, nil
}

func (r *MockPaymentRepo) FindByReference(ctx context.Context, tx repository.Tx, reference string) (*model.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.byRef[reference]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockPaymentRepo) CountPendingOlderThan(ctx context.Context, tx repository.Tx, olderThan time.Time) (int, error) {
	if r.CountPendingOlderThanFunc != nil {
		return r.CountPendingOlderThanFunc(ctx, tx, olderThan)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, p := range r.byRef {
		if p.Status == model.PaymentStatusPending && p.CreatedAt.Before(olderThan) {
			n++
		}
	}
	return n, nil
}

// ---- Mock TransactionRepository ----

type MockTransactionRepo struct {
	mu    sync.Mutex
	byRef map[string]model.PaymentStatus
	Calls int

	UpdateStatusByReferenceFunc func(ctx context.Context, tx repository.Tx, reference string, status model.PaymentStatus) error
}

var _ repository.TransactionRepository = (*MockTransactionRepo)(nil)

func NewMockTransactionRepo() *MockTransactionRepo {
	return &MockTransactionRepo{byRef: map[string]model.PaymentStatus{}}
}

func (r *MockTransactionRepo) UpdateStatusByReference(ctx context.Context, tx repository.Tx, reference string, status model.PaymentStatus) error {
	r.mu.Lock()
	r.Calls++
	r.mu.Unlock()
	if r.UpdateStatusByReferenceFunc != nil {
		return r.UpdateStatusByReferenceFunc(ctx, tx, reference, status)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byRef[reference] = status
	return nil
}

func (r *MockTransactionRepo) Status(reference string) (model.PaymentStatus, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byRef[reference]
	return s, ok
}

// ---- Mock SubscriptionRepository ----

type MockSubscriptionRepo struct {
	mu   sync.Mutex
	data map[string]*model.Subscription

	UpdatePaymentStateFunc func(ctx context.Context, tx repository.Tx, id string, status model.SubscriptionStatus, paymentStatus model.BillingStatus) error
}

var _ repository.SubscriptionRepository = (*MockSubscriptionRepo)(nil)

func NewMockSubscriptionRepo(seed ...*model.Subscription) *MockSubscriptionRepo {
	r := &MockSubscriptionRepo{data: map[string]*model.Subscription{}}
	for _, s := range seed {
		cp := *s
		r.data[s.ID] = &cp
	}
	return r
}

func (r *MockSubscriptionRepo) UpdatePaymentState(ctx context.Context, tx repository.Tx, id string, status model.SubscriptionStatus, paymentStatus model.BillingStatus) error {
	if r.UpdatePaymentStateFunc != nil {
		return r.UpdatePaymentStateFunc(ctx, tx, id, status, paymentStatus)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.data[id]; ok {
		s.Status = status
		s.PaymentStatus = paymentStatus
		s.UpdatedAt = time.Now()
	}
	return nil
}

func (r *MockSubscriptionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.data[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

// ---- Mock BookingRepository ----

type MockBookingRepo struct {
	mu    sync.Mutex
	data  map[string]*model.ServiceBooking
	Calls int

	UpdatePaymentStateFunc func(ctx context.Context, tx repository.Tx, id string, status model.BookingStatus, paymentStatus model.BillingStatus) error
}

var _ repository.BookingRepository = (*MockBookingRepo)(nil)

func NewMockBookingRepo(seed ...*model.ServiceBooking) *MockBookingRepo {
	r := &MockBookingRepo{data: map[string]*model.ServiceBooking{}}
	for _, b := range seed {
		cp := *b
		r.data[b.ID] = &cp
	}
	return r
}

func (r *MockBookingRepo) UpdatePaymentState(ctx context.Context, tx repository.Tx, id string, status model.BookingStatus, paymentStatus model.BillingStatus) error {
	r.mu.Lock()
	r.Calls++
	r.mu.Unlock()
	if r.UpdatePaymentStateFunc != nil {
		return r.UpdatePaymentStateFunc(ctx, tx, id, status, paymentStatus)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.data[id]; ok {
		b.Status = status
		b.PaymentStatus = paymentStatus
		b.UpdatedAt = time.Now()
	}
	return nil
}

func (r *MockBookingRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.ServiceBooking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.data[id]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

// ---- Mock NotificationRepository ----

type MockNotificationRepo struct {
	mu    sync.Mutex
	Saved []*model.Notification

	SaveFunc func(ctx context.Context, tx repository.Tx, n *model.Notification) error
}

var _ repository.NotificationRepository = (*MockNotificationRepo)(nil)

func (r *MockNotificationRepo) Save(ctx context.Context, tx repository.Tx, n *model.Notification) error {
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, tx, n)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *n
	r.Saved = append(r.Saved, &cp)
	return nil
}

func (r *MockNotificationRepo) All() []*model.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*model.Notification(nil), r.Saved...)
}

// ---- Mock WebhookLogRepository ----

type MockWebhookLogRepo struct {
	mu   sync.Mutex
	data map[string]*model.WebhookLog

	SaveFunc func(ctx context.Context, tx repository.Tx, l *model.WebhookLog) error
}

var _ repository.WebhookLogRepository = (*MockWebhookLogRepo)(nil)

func NewMockWebhookLogRepo() *MockWebhookLogRepo {
	return &MockWebhookLogRepo{data: map[string]*model.WebhookLog{}}
}

func (r *MockWebhookLogRepo) Save(ctx context.Context, tx repository.Tx, l *model.WebhookLog) error {
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, tx, l)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.data[l.ID]; dup {
		return domain.ErrAlreadyExists
	}
	cp := *l
	r.data[l.ID] = &cp
	return nil
}

func (r *MockWebhookLogRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.WebhookLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.data[id]; ok {
		cp := *l
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockWebhookLogRepo) List(ctx context.Context, tx repository.Tx, f repository.WebhookLogFilter) ([]*model.WebhookLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.WebhookLog, 0, len(r.data))
	for _, l := range r.data {
		if f.Status != "" && l.Status != f.Status {
			continue
		}
		cp := *l
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *MockWebhookLogRepo) All() []*model.WebhookLog {
	out, _ := r.List(context.Background(), nil, repository.WebhookLogFilter{})
	return out
}

// =============================
// Helpers
// =============================

var errBoom = errors.New("boom")

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}
