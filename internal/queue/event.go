// Package queue defines message payloads exchanged over the message broker.
package queue

// OrderStatusChangedEvent is published after an order lifecycle
// transition has been committed. It carries enough information for the
// dispatch worker to render and deliver notifications without querying
// the primary database. OldStatus is empty for a freshly created
// order; Fine is non-zero only for late returns.
type OrderStatusChangedEvent struct {
	OrderID   uint64  `json:"order_id"`
	UserID    uint64  `json:"user_id"`
	Email     string  `json:"email"`
	Phone     string  `json:"phone"`
	BookTitle string  `json:"book_title"`
	OldStatus string  `json:"old_status,omitempty"`
	NewStatus string  `json:"new_status"`
	Fine      float64 `json:"fine,omitempty"`
	ChangedAt string  `json:"changed_at"`
}
