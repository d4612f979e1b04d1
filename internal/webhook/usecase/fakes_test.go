package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	orderDomain "github.com/getachewzemene/minalesh-amplify-sub001/internal/order/domain"
	webhookDomain "github.com/getachewzemene/minalesh-amplify-sub001/internal/webhook/domain"
)

// fakeEventRepository is an in-memory ledger that enforces the (provider, event_id)
// unique constraint and the attempts compare-and-swap the SQL repositories rely on.
type fakeEventRepository struct {
	mu    sync.Mutex
	rows  map[uuid.UUID]*webhookDomain.Event
	byKey map[string]uuid.UUID
}

func newFakeEventRepository() *fakeEventRepository {
	return &fakeEventRepository{
		rows:  make(map[uuid.UUID]*webhookDomain.Event),
		byKey: make(map[string]uuid.UUID),
	}
}

func eventKey(provider, eventID string) string {
	return provider + "\x00" + eventID
}

func (f *fakeEventRepository) Insert(_ context.Context, event *webhookDomain.Event) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if event.EventID != nil {
		key := eventKey(event.Provider, *event.EventID)
		if _, exists := f.byKey[key]; exists {
			return false, nil
		}
		f.byKey[key] = event.ID
	}
	row := *event
	f.rows[event.ID] = &row
	return true, nil
}

func (f *fakeEventRepository) GetByID(_ context.Context, id uuid.UUID) (*webhookDomain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	row, ok := f.rows[id]
	if !ok {
		return nil, webhookDomain.ErrEventNotFound
	}
	out := *row
	return &out, nil
}

func (f *fakeEventRepository) GetByProviderEventID(
	_ context.Context,
	provider, eventID string,
) (*webhookDomain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id, ok := f.byKey[eventKey(provider, eventID)]
	if !ok {
		return nil, webhookDomain.ErrEventNotFound
	}
	out := *f.rows[id]
	return &out, nil
}

func (f *fakeEventRepository) RecordDelivery(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	row, ok := f.rows[id]
	if !ok {
		return webhookDomain.ErrEventNotFound
	}
	row.Deliveries++
	row.LastDeliveryAt = time.Now().UTC()
	return nil
}

func (f *fakeEventRepository) Reclaim(
	_ context.Context,
	event *webhookDomain.Event,
	expectedAttempts int,
) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	row, ok := f.rows[event.ID]
	if !ok || row.Attempts != expectedAttempts {
		return false, nil
	}
	row.Status = webhookDomain.EventStatusReceived
	row.Payload = event.Payload
	row.Signature = event.Signature
	row.SignatureHash = event.SignatureHash
	row.AuthMethod = event.AuthMethod
	row.SourceIP = event.SourceIP
	row.ErrorMessage = nil
	row.LatencyMs = nil
	row.ProcessedAt = nil
	row.Attempts++
	row.Deliveries++
	row.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (f *fakeEventRepository) MarkProcessing(_ context.Context, id uuid.UUID, attempts int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	row, ok := f.rows[id]
	if !ok || row.Attempts != attempts || row.Status != webhookDomain.EventStatusReceived {
		return false, nil
	}
	row.Status = webhookDomain.EventStatusProcessing
	row.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (f *fakeEventRepository) Finalize(
	_ context.Context,
	id uuid.UUID,
	attempts int,
	input webhookDomain.FinalizeInput,
) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	row, ok := f.rows[id]
	if !ok || row.Attempts != attempts {
		return false, nil
	}
	if row.Status != webhookDomain.EventStatusReceived && row.Status != webhookDomain.EventStatusProcessing {
		return false, nil
	}
	row.Status = input.Status
	row.OrderID = input.OrderID
	latency := input.LatencyMs
	row.LatencyMs = &latency
	if input.ErrorMessage != "" {
		msg := input.ErrorMessage
		row.ErrorMessage = &msg
	}
	row.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (f *fakeEventRepository) List(
	_ context.Context,
	_ webhookDomain.ListFilter,
	_, _ int,
) ([]*webhookDomain.Event, error) {
	return f.all(), nil
}

func (f *fakeEventRepository) ListStuck(_ context.Context, _ time.Time, _ int) ([]*webhookDomain.Event, error) {
	return f.all(), nil
}

func (f *fakeEventRepository) CountArchivable(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

func (f *fakeEventRepository) Archive(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

func (f *fakeEventRepository) all() []*webhookDomain.Event {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]*webhookDomain.Event, 0, len(f.rows))
	for _, row := range f.rows {
		copied := *row
		out = append(out, &copied)
	}
	return out
}

// only returns the single ledger row of the repository.
func (f *fakeEventRepository) only() *webhookDomain.Event {
	rows := f.all()
	if len(rows) != 1 {
		return nil
	}
	return rows[0]
}

// put stores a row directly, bypassing Insert.
func (f *fakeEventRepository) put(event *webhookDomain.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()

	row := *event
	f.rows[event.ID] = &row
	if event.EventID != nil {
		f.byKey[eventKey(event.Provider, *event.EventID)] = event.ID
	}
}

// fakeOrderRepository keeps orders and their history in memory.
type fakeOrderRepository struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*orderDomain.Order
	events []*orderDomain.OrderEvent
}

func newFakeOrderRepository(orders ...*orderDomain.Order) *fakeOrderRepository {
	f := &fakeOrderRepository{orders: make(map[uuid.UUID]*orderDomain.Order)}
	for _, o := range orders {
		copied := *o
		f.orders[o.ID] = &copied
	}
	return f
}

func (f *fakeOrderRepository) find(match func(*orderDomain.Order) bool) (*orderDomain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, o := range f.orders {
		if match(o) {
			copied := *o
			return &copied, nil
		}
	}
	return nil, orderDomain.ErrOrderNotFound
}

func (f *fakeOrderRepository) GetByID(_ context.Context, id uuid.UUID) (*orderDomain.Order, error) {
	return f.find(func(o *orderDomain.Order) bool { return o.ID == id })
}

func (f *fakeOrderRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*orderDomain.Order, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeOrderRepository) GetByOrderNumber(_ context.Context, orderNumber string) (*orderDomain.Order, error) {
	return f.find(func(o *orderDomain.Order) bool { return o.OrderNumber == orderNumber })
}

func (f *fakeOrderRepository) GetByPaymentReference(_ context.Context, reference string) (*orderDomain.Order, error) {
	return f.find(func(o *orderDomain.Order) bool {
		return o.PaymentReference != nil && *o.PaymentReference == reference
	})
}

func (f *fakeOrderRepository) UpdatePayment(_ context.Context, order *orderDomain.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.orders[order.ID]; !ok {
		return orderDomain.ErrOrderNotFound
	}
	copied := *order
	f.orders[order.ID] = &copied
	return nil
}

func (f *fakeOrderRepository) CreateEvent(_ context.Context, event *orderDomain.OrderEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.events = append(f.events, event)
	return nil
}

func (f *fakeOrderRepository) order(id uuid.UUID) *orderDomain.Order {
	o, _ := f.GetByID(context.Background(), id)
	return o
}

func (f *fakeOrderRepository) eventCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

// serialTxManager runs transactions one at a time, standing in for the row lock taken by
// GetByIDForUpdate. It does not roll back.
type serialTxManager struct {
	mu sync.Mutex
}

func (s *serialTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(ctx)
}

// mockNotifier is a testify mock of Notifier.
type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) NotifySettled(ctx context.Context, orderID uuid.UUID, provider, eventKey string) error {
	return m.Called(ctx, orderID, provider, eventKey).Error(0)
}

func (m *mockNotifier) NotifyPaymentFailed(ctx context.Context, orderID uuid.UUID, provider, eventKey string) error {
	return m.Called(ctx, orderID, provider, eventKey).Error(0)
}
