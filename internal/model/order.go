package model

import (
	"errors"
	"time"
)

// OrderStatus enumerates the lifecycle states of an order.
// CANCELLED and RETURNED are terminal; OVERDUE is informational
// and still permits a later return.
type OrderStatus string

const (
	OrderCreated       OrderStatus = "CREATED"
	OrderReadyForIssue OrderStatus = "READY_FOR_ISSUE"
	OrderIssued        OrderStatus = "ISSUED"
	OrderCancelled     OrderStatus = "CANCELLED"
	OrderReturned      OrderStatus = "RETURNED"
	OrderOverdue       OrderStatus = "OVERDUE"
)

// IsTerminal reports whether no further transition may leave s.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderCancelled || s == OrderReturned
}

// IsActive reports whether an order in this state counts toward
// a reader's borrowing limit.
func (s OrderStatus) IsActive() bool {
	return s == OrderCreated || s == OrderReadyForIssue || s == OrderIssued
}

// ActiveStatuses lists the states counted toward the per-user limit,
// in the order they appear in the lifecycle.
var ActiveStatuses = []OrderStatus{OrderCreated, OrderReadyForIssue, OrderIssued}

// Order records one reservation/loan of a single book instance by a
// reader. Timestamps are populated progressively as the order moves
// through its lifecycle and are never cleared once set. CreatedAt is
// assigned once at creation and is immutable afterwards.
//
// Fields:
//  ID                  – primary key identifier.
//  UserID              – reader who placed the order.
//  InstanceID          – copy being reserved or lent.
//  User                – reader record, populated by the repository on load.
//  Instance            – copy record, populated by the repository on load.
//  Status              – current lifecycle state.
//  CreatedAt           – when the reservation was placed.
//  ReservationDeadline – latest pickup time for the reservation.
//  ExpectedReturnDate  – agreed return time, basis for fines.
//  ActualIssueDate     – when the copy was handed over (nil until issued).
//  ActualReturnDate    – when the copy came back (nil until returned).
type Order struct {
	ID                  uint64        // orders.id
	UserID              uint64        // orders.user_id
	InstanceID          uint64        // orders.book_instance_id
	User                *User         // joined from users
	Instance            *BookInstance // joined from book_instances
	Status              OrderStatus   // orders.status
	CreatedAt           time.Time     // orders.created_at
	ReservationDeadline *time.Time    // orders.reservation_deadline (nullable)
	ExpectedReturnDate  *time.Time    // orders.expected_return_date (nullable)
	ActualIssueDate     *time.Time    // orders.actual_issue_date (nullable)
	ActualReturnDate    *time.Time    // orders.actual_return_date (nullable)
}

// NewOrder constructs an order in the CREATED state with its
// immutable creation timestamp. Both entity references are required;
// a nil user or instance is rejected so a half-built order can never
// enter the lifecycle.
func NewOrder(user *User, instance *BookInstance, deadline, expectedReturn time.Time, now time.Time) (*Order, error) {
	if user == nil {
		return nil, errors.New("order requires a user")
	}
	if instance == nil {
		return nil, errors.New("order requires a book instance")
	}
	return &Order{
		UserID:              user.ID,
		InstanceID:          instance.ID,
		User:                user,
		Instance:            instance,
		Status:              OrderCreated,
		CreatedAt:           now.UTC(),
		ReservationDeadline: utcPtr(deadline),
		ExpectedReturnDate:  utcPtr(expectedReturn),
	}, nil
}

func utcPtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	u := t.UTC()
	return &u
}
