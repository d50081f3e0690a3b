package model

import "time"

// AuditOperation tags the kind of order operation that produced an
// audit record.
type AuditOperation string

const (
	AuditOrder  AuditOperation = "ORDER"  // reservation created
	AuditUpdate AuditOperation = "UPDATE" // status moved by a lifecycle transition
	AuditCancel AuditOperation = "CANCEL" // order cancelled
)

// OrderAudit is an append-only trail entry written once per committed
// order operation. Records are never mutated after creation; UpdatedAt
// exists in the schema but is only ever set at insert time.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – acting reader.
//  OrderID   – affected order.
//  Operation – kind of operation performed.
//  OldValue  – free-text snapshot before the change (empty on create).
//  NewValue  – free-text snapshot after the change.
//  CreatedAt – when the record was written.
//  UpdatedAt – set at creation, kept for schema compatibility.
type OrderAudit struct {
	ID        uint64         // order_audit.id
	UserID    uint64         // order_audit.user_id
	OrderID   uint64         // order_audit.order_id
	Operation AuditOperation // order_audit.operation
	OldValue  string         // order_audit.old_value
	NewValue  string         // order_audit.new_value
	CreatedAt time.Time      // order_audit.created_at
	UpdatedAt time.Time      // order_audit.updated_at
}
