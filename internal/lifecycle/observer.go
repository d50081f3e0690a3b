package lifecycle

import "log"

// Observer is notified after a transition has been committed. A
// failing or panicking observer must not prevent the remaining
// observers from running and cannot roll the transition back.
type Observer interface {
	OrderStatusChanged(change *Change)
}

// Observers is an ordered list of observers notified in registration
// order.
type Observers []Observer

// Notify invokes every observer with the committed change. Panics are
// recovered and logged so one misbehaving listener stays isolated.
func (os Observers) Notify(change *Change) {
	for _, o := range os {
		notifyOne(o, change)
	}
}

func notifyOne(o Observer, change *Change) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("lifecycle: observer panic on order %d: %v", change.Order.ID, r)
		}
	}()
	o.OrderStatusChanged(change)
}
