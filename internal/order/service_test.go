package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/library-lending/internal/fine"
	"github.com/iliyamo/library-lending/internal/lifecycle"
	"github.com/iliyamo/library-lending/internal/model"
	"github.com/iliyamo/library-lending/internal/repository"
)

// fixedClock pins time for deterministic deadlines and fines.
type fixedClock struct{ at time.Time }

func (c *fixedClock) Now() time.Time { return c.at }

// memStore is an in-memory stand-in for every persistence
// collaborator. It counts writes so tests can assert that rejected
// operations make no persistence calls.
type memStore struct {
	users     map[uint64]*model.User
	instances map[uint64]*model.BookInstance
	orders    map[uint64]*model.Order
	audits    []model.OrderAudit
	nextID    uint64
	saves     int
}

func newMemStore() *memStore {
	return &memStore{
		users:     map[uint64]*model.User{},
		instances: map[uint64]*model.BookInstance{},
		orders:    map[uint64]*model.Order{},
		nextID:    1,
	}
}

func (m *memStore) GetUser(_ context.Context, id uint64) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (m *memStore) GetInstance(_ context.Context, id uint64) (*model.BookInstance, error) {
	i, ok := m.instances[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return i, nil
}

func (m *memStore) SaveInstance(_ context.Context, instance *model.BookInstance) error {
	m.saves++
	m.instances[instance.ID] = instance
	return nil
}

func (m *memStore) GetOrder(_ context.Context, id uint64) (*model.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return o, nil
}

func (m *memStore) CreateOrder(_ context.Context, o *model.Order) error {
	m.saves++
	o.ID = m.nextID
	m.nextID++
	m.orders[o.ID] = o
	return nil
}

func (m *memStore) SaveOrder(_ context.Context, o *model.Order) error {
	m.saves++
	m.orders[o.ID] = o
	return nil
}

func (m *memStore) FindActiveByUser(_ context.Context, userID uint64) ([]model.Order, error) {
	var active []model.Order
	for _, o := range m.orders {
		if o.UserID == userID && o.Status.IsActive() {
			active = append(active, *o)
		}
	}
	return active, nil
}

func (m *memStore) ListOverdueIDs(_ context.Context, asOf time.Time) ([]uint64, error) {
	var ids []uint64
	for _, o := range m.orders {
		if o.Status == model.OrderIssued && o.ExpectedReturnDate != nil && o.ExpectedReturnDate.Before(asOf) {
			ids = append(ids, o.ID)
		}
	}
	return ids, nil
}

func (m *memStore) Record(_ context.Context, userID, orderID uint64, op model.AuditOperation, oldValue, newValue string) error {
	m.audits = append(m.audits, model.OrderAudit{
		UserID:    userID,
		OrderID:   orderID,
		Operation: op,
		OldValue:  oldValue,
		NewValue:  newValue,
	})
	return nil
}

// recordingDispatcher collects dispatched notices and optionally fails.
type recordingDispatcher struct {
	notices []Notice
	err     error
}

func (d *recordingDispatcher) Dispatch(_ context.Context, n Notice) error {
	d.notices = append(d.notices, n)
	return d.err
}

var testNow = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

func testSettings() Settings {
	return Settings{ReservationPeriodDays: 14, MaxActiveOrdersPerUser: 3, BaseFinePerDay: 50}
}

func setup(t *testing.T) (*Service, *memStore, *recordingDispatcher, *fixedClock) {
	t.Helper()
	store := newMemStore()
	store.users[7] = &model.User{ID: 7, FullName: "Reader", Email: "r@example.com", Phone: "+100", IsActive: true}
	store.instances[3] = &model.BookInstance{
		ID:     3,
		Book:   &model.Book{ID: 1, Title: "The Master and Margarita"},
		Status: model.InstanceAvailable,
	}
	clock := &fixedClock{at: testNow}
	dispatch := &recordingDispatcher{}
	machine := lifecycle.NewMachine(fine.Progressive{}, testSettings().BaseFinePerDay)
	svc := NewService(store, store, store, store, machine, testSettings(), clock, dispatch)
	return svc, store, dispatch, clock
}

func reserve(t *testing.T, svc *Service) *model.Order {
	t.Helper()
	o, err := svc.CreateReservation(context.Background(), 7, 3, testNow.AddDate(0, 0, 14))
	require.NoError(t, err)
	return o
}

func TestCreateReservation(t *testing.T) {
	svc, store, dispatch, _ := setup(t)

	o := reserve(t, svc)

	assert.Equal(t, model.OrderCreated, o.Status)
	assert.Equal(t, model.InstanceReserved, store.instances[3].Status)
	require.NotNil(t, o.ReservationDeadline)
	assert.Equal(t, testNow.AddDate(0, 0, 14), *o.ReservationDeadline)
	assert.Equal(t, testNow, o.CreatedAt)

	require.Len(t, store.audits, 1)
	assert.Equal(t, model.AuditOrder, store.audits[0].Operation)
	assert.Empty(t, store.audits[0].OldValue)

	require.Len(t, dispatch.notices, 1)
	assert.Equal(t, model.OrderStatus(""), dispatch.notices[0].Old)
	assert.Equal(t, model.OrderCreated, dispatch.notices[0].New)
}

func TestCreateReservationMissingEntities(t *testing.T) {
	svc, _, _, _ := setup(t)

	_, err := svc.CreateReservation(context.Background(), 99, 3, testNow)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "user", nf.Entity)
	assert.Equal(t, uint64(99), nf.ID)

	_, err = svc.CreateReservation(context.Background(), 7, 99, testNow)
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "book instance", nf.Entity)
}

func TestCreateReservationUnavailableInstance(t *testing.T) {
	svc, store, _, _ := setup(t)
	store.instances[3].Status = model.InstanceIssued

	_, err := svc.CreateReservation(context.Background(), 7, 3, testNow)
	var unavailable *InstanceUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, model.InstanceIssued, unavailable.Status)
}

func TestCreateReservationCapacityExceeded(t *testing.T) {
	svc, store, _, _ := setup(t)
	for i := uint64(0); i < 3; i++ {
		store.orders[100+i] = &model.Order{ID: 100 + i, UserID: 7, Status: model.OrderIssued}
	}
	savesBefore := store.saves

	_, err := svc.CreateReservation(context.Background(), 7, 3, testNow)

	var capacity *CapacityExceededError
	require.ErrorAs(t, err, &capacity)
	assert.Equal(t, 3, capacity.Limit)
	// The rejection happens before any persistence call.
	assert.Equal(t, savesBefore, store.saves)
	assert.Empty(t, store.audits)
}

func TestRoundTrip(t *testing.T) {
	svc, store, dispatch, clock := setup(t)
	o := reserve(t, svc)

	_, err := svc.Issue(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, model.InstanceIssued, store.instances[3].Status)

	clock.at = testNow.AddDate(0, 0, 10)
	returned, fineOwed, err := svc.ReturnBook(context.Background(), o.ID)
	require.NoError(t, err)

	assert.Equal(t, model.OrderReturned, returned.Status)
	assert.Equal(t, model.InstanceAvailable, store.instances[3].Status)
	require.NotNil(t, returned.ActualReturnDate)
	assert.Zero(t, fineOwed) // back before the expected date

	// create + issue + return = three notices, last announces RETURNED.
	require.Len(t, dispatch.notices, 3)
	assert.Equal(t, model.OrderReturned, dispatch.notices[2].New)
}

func TestStagedIssueThroughReady(t *testing.T) {
	svc, _, _, _ := setup(t)
	o := reserve(t, svc)

	ready, err := svc.MarkReady(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderReadyForIssue, ready.Status)

	issued, err := svc.Issue(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderIssued, issued.Status)
}

func TestLateReturnReportsFine(t *testing.T) {
	svc, _, _, clock := setup(t)
	o := reserve(t, svc)
	_, err := svc.Issue(context.Background(), o.ID)
	require.NoError(t, err)

	// 20 whole days past the expected return date.
	clock.at = testNow.AddDate(0, 0, 34)
	_, fineOwed, err := svc.ReturnBook(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, 1500.0, fineOwed)
}

func TestFineQuoteForOpenOrder(t *testing.T) {
	svc, _, _, clock := setup(t)
	o := reserve(t, svc)
	_, err := svc.Issue(context.Background(), o.ID)
	require.NoError(t, err)

	clock.at = testNow.AddDate(0, 0, 19) // 5 days overdue
	quote, err := svc.Fine(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, 250.0, quote)
}

func TestCancelReleasesInstance(t *testing.T) {
	svc, store, _, _ := setup(t)
	o := reserve(t, svc)

	cancelled, err := svc.Cancel(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderCancelled, cancelled.Status)
	assert.Equal(t, model.InstanceAvailable, store.instances[3].Status)

	// A terminal order cannot be cancelled again.
	_, err = svc.Cancel(context.Background(), o.ID)
	var invalid *lifecycle.InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
}

func TestReturnAfterCancelRejected(t *testing.T) {
	svc, _, _, _ := setup(t)
	o := reserve(t, svc)
	_, err := svc.Cancel(context.Background(), o.ID)
	require.NoError(t, err)

	_, _, err = svc.ReturnBook(context.Background(), o.ID)
	var invalid *lifecycle.InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
}

func TestNotificationFailureDoesNotRollBack(t *testing.T) {
	svc, store, dispatch, _ := setup(t)
	o := reserve(t, svc)
	dispatch.err = errors.New("gateway down")

	issued, err := svc.Issue(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderIssued, issued.Status)
	assert.Equal(t, model.OrderIssued, store.orders[o.ID].Status)
}

func TestObserversRunAfterCommit(t *testing.T) {
	svc, store, _, _ := setup(t)
	seen := &recordingObserver{}
	svc.AddObserver(seen)
	o := reserve(t, svc)

	_, err := svc.Issue(context.Background(), o.ID)
	require.NoError(t, err)

	require.Len(t, seen.changes, 1)
	assert.Equal(t, model.OrderCreated, seen.changes[0].Old)
	assert.Equal(t, model.OrderIssued, seen.changes[0].New)
	// The order was already persisted when the observer fired.
	assert.Equal(t, model.OrderIssued, store.orders[o.ID].Status)
}

func TestSweepOverdue(t *testing.T) {
	svc, store, _, clock := setup(t)
	o := reserve(t, svc)
	_, err := svc.Issue(context.Background(), o.ID)
	require.NoError(t, err)

	clock.at = testNow.AddDate(0, 0, 20)
	flagged, err := svc.SweepOverdue(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, flagged)
	assert.Equal(t, model.OrderOverdue, store.orders[o.ID].Status)

	// A second sweep finds nothing new.
	flagged, err = svc.SweepOverdue(context.Background())
	require.NoError(t, err)
	assert.Zero(t, flagged)
}

// recordingObserver collects committed changes.
type recordingObserver struct {
	changes []*lifecycle.Change
}

func (r *recordingObserver) OrderStatusChanged(c *lifecycle.Change) {
	r.changes = append(r.changes, c)
}
