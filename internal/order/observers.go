package order

import (
	"context"
	"log"

	"github.com/iliyamo/library-lending/internal/lifecycle"
)

// LogObserver writes one human-readable line per committed transition
// to the process log. It is the default observer registered by the
// worker; notification-side reactions run through the dispatch
// pipeline instead.
type LogObserver struct{}

func (LogObserver) OrderStatusChanged(c *lifecycle.Change) {
	name := ""
	if c.Order.User != nil {
		name = c.Order.User.FullName
	}
	log.Printf("audit: order %d | user %q | status %s -> %s", c.Order.ID, name, c.Old, c.New)
}

// DispatchObserver adapts a Dispatcher into a lifecycle observer, for
// callers that want notifications driven by the observer list rather
// than by the orchestrator directly. Delivery failures are logged;
// observers cannot fail the transition.
type DispatchObserver struct {
	Dispatcher Dispatcher
}

func (d DispatchObserver) OrderStatusChanged(c *lifecycle.Change) {
	n := Notice{
		OrderID: c.Order.ID,
		UserID:  c.Order.UserID,
		Old:     c.Old,
		New:     c.New,
		Fine:    c.Fine,
	}
	if c.Order.User != nil {
		n.Email = c.Order.User.Email
		n.Phone = c.Order.User.Phone
	}
	if c.Order.Instance != nil && c.Order.Instance.Book != nil {
		n.BookTitle = c.Order.Instance.Book.Title
	}
	if err := d.Dispatcher.Dispatch(context.Background(), n); err != nil {
		log.Printf("order: observer dispatch for order %d failed: %v", c.Order.ID, err)
	}
}
