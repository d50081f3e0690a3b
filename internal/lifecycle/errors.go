// Package lifecycle implements the order state machine. It validates
// and applies transitions between order and book-instance states,
// keeping the one invariant that matters: an instance is AVAILABLE
// exactly when no open order references it.
package lifecycle

import (
	"fmt"

	"github.com/iliyamo/library-lending/internal/model"
)

// InvalidTransitionError is returned when the target status is not
// reachable from the order's current status. The order is left
// unmodified.
type InvalidTransitionError struct {
	OrderID uint64
	From    model.OrderStatus
	To      model.OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("order %d: invalid transition %s -> %s", e.OrderID, e.From, e.To)
}

// PreconditionError is returned when an order is missing a required
// entity reference (user or book instance) and cannot be processed.
type PreconditionError struct {
	OrderID uint64
	Missing string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("order %d: missing %s", e.OrderID, e.Missing)
}
