// Package order orchestrates the lending lifecycle: it loads entities
// through injected store collaborators, runs transitions through the
// state machine, persists the results, appends audit records and fires
// observers and notifications. Each operation is one logical unit of
// work touching exactly one order and at most one book instance;
// serializing concurrent mutation of the same pair is left to the
// transactional boundary of the persistence collaborator.
package order

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/iliyamo/library-lending/internal/lifecycle"
	"github.com/iliyamo/library-lending/internal/model"
	"github.com/iliyamo/library-lending/internal/repository"
)

// UserStore loads readers. Missing readers are reported with
// repository.ErrNotFound.
type UserStore interface {
	GetUser(ctx context.Context, id uint64) (*model.User, error)
}

// InstanceStore loads and saves book instances.
type InstanceStore interface {
	GetInstance(ctx context.Context, id uint64) (*model.BookInstance, error)
	SaveInstance(ctx context.Context, instance *model.BookInstance) error
}

// OrderStore loads and saves orders. GetOrder populates the User and
// Instance references. ListOverdueIDs returns the IDs of ISSUED orders
// whose expected return date lies before asOf.
type OrderStore interface {
	GetOrder(ctx context.Context, id uint64) (*model.Order, error)
	CreateOrder(ctx context.Context, o *model.Order) error
	SaveOrder(ctx context.Context, o *model.Order) error
	FindActiveByUser(ctx context.Context, userID uint64) ([]model.Order, error)
	ListOverdueIDs(ctx context.Context, asOf time.Time) ([]uint64, error)
}

// AuditSink appends one record per committed operation.
type AuditSink interface {
	Record(ctx context.Context, userID, orderID uint64, op model.AuditOperation, oldValue, newValue string) error
}

// Clock supplies the current time. Injected so tests can pin it.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// Settings carries the read-only business configuration, passed in
// explicitly at construction rather than read from ambient state.
type Settings struct {
	ReservationPeriodDays  int     // pickup window granted on reservation
	MaxActiveOrdersPerUser int     // borrowing limit per reader
	BaseFinePerDay         float64 // daily rate handed to the fine strategy
}

// Service is the order orchestrator.
type Service struct {
	users     UserStore
	instances InstanceStore
	orders    OrderStore
	audit     AuditSink
	clock     Clock
	machine   *lifecycle.Machine
	observers lifecycle.Observers
	dispatch  Dispatcher
	settings  Settings
}

// NewService wires the orchestrator. machine must be non-nil; clock
// defaults to SystemClock and dispatch may be nil to disable
// notifications.
func NewService(users UserStore, instances InstanceStore, orders OrderStore, audit AuditSink,
	machine *lifecycle.Machine, settings Settings, clock Clock, dispatch Dispatcher) *Service {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Service{
		users:     users,
		instances: instances,
		orders:    orders,
		audit:     audit,
		clock:     clock,
		machine:   machine,
		dispatch:  dispatch,
		settings:  settings,
	}
}

// AddObserver registers a lifecycle observer. Observers run after a
// transition is persisted, in registration order, with failures
// isolated from each other and from the transition itself.
func (s *Service) AddObserver(o lifecycle.Observer) {
	s.observers = append(s.observers, o)
}

// CreateReservation places a new order for a copy: the reader must
// exist, hold fewer than the configured number of active orders, and
// the copy must be AVAILABLE. On success the copy becomes RESERVED,
// the order is persisted in CREATED with a pickup deadline of now plus
// the reservation period, an audit record is appended and the order is
// returned.
func (s *Service) CreateReservation(ctx context.Context, userID, instanceID uint64, expectedReturn time.Time) (*model.Order, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, asNotFound("user", userID, err)
	}
	instance, err := s.instances.GetInstance(ctx, instanceID)
	if err != nil {
		return nil, asNotFound("book instance", instanceID, err)
	}

	active, err := s.orders.FindActiveByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count active orders: %w", err)
	}
	if len(active) >= s.settings.MaxActiveOrdersPerUser {
		return nil, &CapacityExceededError{UserID: userID, Limit: s.settings.MaxActiveOrdersPerUser}
	}
	if instance.Status != model.InstanceAvailable {
		return nil, &InstanceUnavailableError{InstanceID: instanceID, Status: instance.Status}
	}

	now := s.clock.Now()
	deadline := now.AddDate(0, 0, s.settings.ReservationPeriodDays)
	o, err := model.NewOrder(user, instance, deadline, expectedReturn, now)
	if err != nil {
		return nil, err
	}

	instance.Status = model.InstanceReserved
	if err := s.instances.SaveInstance(ctx, instance); err != nil {
		return nil, err
	}
	if err := s.orders.CreateOrder(ctx, o); err != nil {
		return nil, err
	}

	s.auditRecord(ctx, user.ID, o.ID, model.AuditOrder, "", "Order created with status: "+string(model.OrderCreated))
	s.notify(ctx, o, "", model.OrderCreated, 0, now)
	return o, nil
}

// MarkReady moves a reservation to READY_FOR_ISSUE once the copy has
// been pulled from the shelf.
func (s *Service) MarkReady(ctx context.Context, orderID uint64) (*model.Order, error) {
	return s.applyTransition(ctx, orderID, model.OrderReadyForIssue, model.AuditUpdate)
}

// Issue hands the copy to the reader: the order becomes ISSUED, the
// actual issue date is stamped and the copy becomes ISSUED.
func (s *Service) Issue(ctx context.Context, orderID uint64) (*model.Order, error) {
	return s.applyTransition(ctx, orderID, model.OrderIssued, model.AuditUpdate)
}

// ReturnBook takes the copy back: the order becomes RETURNED, the
// actual return date is stamped and the copy becomes AVAILABLE. The
// fine owed, if any, is returned alongside the order; a positive fine
// never blocks the return.
func (s *Service) ReturnBook(ctx context.Context, orderID uint64) (*model.Order, float64, error) {
	o, change, err := s.transition(ctx, orderID, model.OrderReturned, model.AuditUpdate)
	if err != nil {
		return nil, 0, err
	}
	return o, change.Fine, nil
}

// Cancel aborts an active order and releases the copy. Cancelling a
// RETURNED or CANCELLED order is rejected as an invalid transition.
func (s *Service) Cancel(ctx context.Context, orderID uint64) (*model.Order, error) {
	return s.applyTransition(ctx, orderID, model.OrderCancelled, model.AuditCancel)
}

// MarkOverdue flags an issued order whose expected return date has
// passed. The flag is informational: the order can still be returned.
func (s *Service) MarkOverdue(ctx context.Context, orderID uint64) (*model.Order, error) {
	return s.applyTransition(ctx, orderID, model.OrderOverdue, model.AuditUpdate)
}

// Fine quotes the fine currently owed on an order, using the actual
// return date when the book is back and the current time otherwise.
// The quote is transient and never persisted.
func (s *Service) Fine(ctx context.Context, orderID uint64) (float64, error) {
	o, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return 0, asNotFound("order", orderID, err)
	}
	return s.machine.ReturnFine(o, s.clock.Now()), nil
}

// SweepOverdue flags every issued order past its expected return date
// as OVERDUE and returns how many orders were flagged. Individual
// failures are logged and skipped so one bad order does not stall the
// sweep.
func (s *Service) SweepOverdue(ctx context.Context) (int, error) {
	ids, err := s.orders.ListOverdueIDs(ctx, s.clock.Now())
	if err != nil {
		return 0, fmt.Errorf("list overdue orders: %w", err)
	}
	flagged := 0
	for _, id := range ids {
		if _, err := s.MarkOverdue(ctx, id); err != nil {
			log.Printf("order: overdue sweep skipped order %d: %v", id, err)
			continue
		}
		flagged++
	}
	return flagged, nil
}

func (s *Service) applyTransition(ctx context.Context, orderID uint64, target model.OrderStatus, op model.AuditOperation) (*model.Order, error) {
	o, _, err := s.transition(ctx, orderID, target, op)
	return o, err
}

// transition is the shared load -> transition -> persist -> audit ->
// observe -> notify path of every status-changing operation. The
// transition is committed before observers and notifications run;
// their failures are reported but never undo it.
func (s *Service) transition(ctx context.Context, orderID uint64, target model.OrderStatus, op model.AuditOperation) (*model.Order, *lifecycle.Change, error) {
	o, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, nil, asNotFound("order", orderID, err)
	}

	now := s.clock.Now()
	change, err := s.machine.Transition(o, target, now)
	if err != nil {
		return nil, nil, err
	}

	if err := s.orders.SaveOrder(ctx, o); err != nil {
		return nil, nil, err
	}
	if err := s.instances.SaveInstance(ctx, o.Instance); err != nil {
		return nil, nil, err
	}

	s.auditRecord(ctx, o.UserID, o.ID, op,
		"Status: "+string(change.Old), "Status: "+string(change.New))
	s.observers.Notify(change)
	s.notify(ctx, o, change.Old, change.New, change.Fine, now)
	return o, change, nil
}

// auditRecord appends to the audit trail. Audit is an after-the-fact
// record; a failing sink is logged, not propagated.
func (s *Service) auditRecord(ctx context.Context, userID, orderID uint64, op model.AuditOperation, oldValue, newValue string) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, userID, orderID, op, oldValue, newValue); err != nil {
		log.Printf("order: audit record failed for order %d: %v", orderID, err)
	}
}

// notify dispatches a rendered notification for a committed change.
// Best effort: failures are logged and never roll the change back.
func (s *Service) notify(ctx context.Context, o *model.Order, oldStatus, newStatus model.OrderStatus, fineAmount float64, at time.Time) {
	if s.dispatch == nil {
		return
	}
	n := Notice{
		OrderID: o.ID,
		UserID:  o.UserID,
		Old:     oldStatus,
		New:     newStatus,
		Fine:    fineAmount,
		At:      at,
	}
	if o.User != nil {
		n.Email = o.User.Email
		n.Phone = o.User.Phone
	}
	if o.Instance != nil && o.Instance.Book != nil {
		n.BookTitle = o.Instance.Book.Title
	}
	if err := s.dispatch.Dispatch(ctx, n); err != nil {
		log.Printf("order: notification for order %d not delivered: %v", o.ID, err)
	}
}

// asNotFound maps the repository sentinel onto a typed NotFoundError
// carrying the entity kind and id; other errors pass through
// unchanged.
func asNotFound(entity string, id uint64, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return &NotFoundError{Entity: entity, ID: id}
	}
	return err
}
