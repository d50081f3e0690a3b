package lifecycle

import (
	"time"

	"github.com/iliyamo/library-lending/internal/fine"
	"github.com/iliyamo/library-lending/internal/model"
)

// transitions is the adjacency table of the order lifecycle. Happy
// path: CREATED -> READY_FOR_ISSUE -> ISSUED -> RETURNED; the
// READY_FOR_ISSUE staging step is optional, a reader may pick a
// reserved copy up directly. Any active state may be cancelled.
// OVERDUE is informational: an issued order may be flagged overdue
// and still be returned afterwards. CANCELLED and RETURNED are
// terminal; cancel from a terminal state is rejected so a returned
// instance already lent out again can never be re-freed.
var transitions = map[model.OrderStatus][]model.OrderStatus{
	model.OrderCreated:       {model.OrderReadyForIssue, model.OrderIssued, model.OrderCancelled},
	model.OrderReadyForIssue: {model.OrderIssued, model.OrderCancelled},
	model.OrderIssued:        {model.OrderReturned, model.OrderOverdue, model.OrderCancelled},
	model.OrderOverdue:       {model.OrderReturned},
	model.OrderCancelled:     {},
	model.OrderReturned:      {},
}

// Change describes a committed transition, handed to observers after
// persistence. Fine is non-zero only on a late return and is
// informational: it never blocks the transition.
type Change struct {
	Order *model.Order
	Old   model.OrderStatus
	New   model.OrderStatus
	Fine  float64
}

// Machine applies lifecycle transitions. The fine strategy and base
// rate are fixed at construction; the machine itself is stateless and
// safe to share.
type Machine struct {
	fines    fine.Strategy
	baseRate float64
}

// NewMachine returns a machine computing return fines with the given
// strategy at baseRate per day.
func NewMachine(fines fine.Strategy, baseRate float64) *Machine {
	return &Machine{fines: fines, baseRate: baseRate}
}

// Transition moves order to target at the given time, mutating the
// order and its linked instance in place.
//
// On ISSUED the actual issue date is stamped and the instance becomes
// ISSUED. On RETURNED the actual return date is stamped, the instance
// becomes AVAILABLE and the fine for the loan is computed and reported
// on the returned Change. On CANCELLED the instance is released to
// AVAILABLE whatever its current status (idempotent release); cancel
// is only reachable from active states. Timestamps already set are
// never cleared.
//
// The order is left unmodified when the transition is rejected.
func (m *Machine) Transition(order *model.Order, target model.OrderStatus, now time.Time) (*Change, error) {
	if order.User == nil {
		return nil, &PreconditionError{OrderID: order.ID, Missing: "user"}
	}
	if order.Instance == nil {
		return nil, &PreconditionError{OrderID: order.ID, Missing: "book instance"}
	}
	if !reachable(order.Status, target) {
		return nil, &InvalidTransitionError{OrderID: order.ID, From: order.Status, To: target}
	}

	change := &Change{Order: order, Old: order.Status, New: target}
	now = now.UTC()

	switch target {
	case model.OrderIssued:
		if order.ActualIssueDate == nil {
			order.ActualIssueDate = &now
		}
		order.Instance.Status = model.InstanceIssued
	case model.OrderReturned:
		if order.ActualReturnDate == nil {
			order.ActualReturnDate = &now
		}
		order.Instance.Status = model.InstanceAvailable
		change.Fine = m.ReturnFine(order, now)
	case model.OrderCancelled:
		order.Instance.Status = model.InstanceAvailable
	}

	order.Status = target
	return change, nil
}

// ReturnFine computes the fine owed for the order as of at, using the
// actual return date when set. Orders without an expected return date
// owe nothing.
func (m *Machine) ReturnFine(order *model.Order, at time.Time) float64 {
	if order.ExpectedReturnDate == nil {
		return 0
	}
	actual := at
	if order.ActualReturnDate != nil {
		actual = *order.ActualReturnDate
	}
	return m.fines.Calculate(*order.ExpectedReturnDate, actual, m.baseRate)
}

func reachable(from, to model.OrderStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
