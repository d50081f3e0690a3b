package order

import (
	"fmt"

	"github.com/iliyamo/library-lending/internal/model"
)

// NotFoundError reports a missing user, book instance or order. It is
// surfaced to the caller and never retried.
type NotFoundError struct {
	Entity string
	ID     uint64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// CapacityExceededError rejects a reservation for a reader who already
// holds the maximum number of active orders.
type CapacityExceededError struct {
	UserID uint64
	Limit  int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("user %d already has %d active orders", e.UserID, e.Limit)
}

// InstanceUnavailableError rejects a reservation for a copy that is
// currently reserved or issued.
type InstanceUnavailableError struct {
	InstanceID uint64
	Status     model.InstanceStatus
}

func (e *InstanceUnavailableError) Error() string {
	return fmt.Sprintf("book instance %d is not available (status %s)", e.InstanceID, e.Status)
}
