package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/library-lending/internal/model"
)

// OrderAuditRepo appends to the order audit trail. The trail is
// append-only: rows are written once per committed operation and never
// updated afterwards, updated_at is set at insert time only.
type OrderAuditRepo struct {
	db *sql.DB
}

// NewOrderAuditRepo returns a new OrderAuditRepo bound to the given
// database.
func NewOrderAuditRepo(db *sql.DB) *OrderAuditRepo { return &OrderAuditRepo{db: db} }

// Record inserts one audit row for an order operation.
func (r *OrderAuditRepo) Record(ctx context.Context, userID, orderID uint64, op model.AuditOperation, oldValue, newValue string) error {
	const q = `INSERT INTO order_audit
               (user_id, order_id, operation, old_value, new_value, created_at, updated_at)
               VALUES (?, ?, ?, ?, ?, ?, ?)`
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, q, userID, orderID, string(op), oldValue, newValue, now, now)
	return err
}

// ListByOrder returns the audit trail of one order, oldest first.
func (r *OrderAuditRepo) ListByOrder(ctx context.Context, orderID uint64) ([]model.OrderAudit, error) {
	const q = `SELECT id, user_id, order_id, operation, old_value, new_value, created_at, updated_at
               FROM order_audit WHERE order_id = ? ORDER BY created_at ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, q, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	records := make([]model.OrderAudit, 0)
	for rows.Next() {
		var rec model.OrderAudit
		var oldValue, newValue sql.NullString
		if err := rows.Scan(
			&rec.ID, &rec.UserID, &rec.OrderID, &rec.Operation,
			&oldValue, &newValue, &rec.CreatedAt, &rec.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if oldValue.Valid {
			rec.OldValue = oldValue.String
		}
		if newValue.Valid {
			rec.NewValue = newValue.String
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
