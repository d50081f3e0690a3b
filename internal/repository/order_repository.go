package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/library-lending/internal/model"
)

// OrderRepo loads and saves lending orders. Loads join the reader and
// the copy (with its catalog book) so the lifecycle has every
// reference it needs. All timestamps are stored and returned in UTC.
type OrderRepo struct {
	db *sql.DB
}

// NewOrderRepo returns a new OrderRepo bound to the given database.
func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

const orderColumns = `o.id, o.user_id, o.book_instance_id, o.status, o.created_at,
                      o.reservation_deadline, o.expected_return_date, o.actual_issue_date, o.actual_return_date`

// GetOrder returns the order with the given ID, with its user and
// book instance populated, or ErrNotFound when no such order exists.
func (r *OrderRepo) GetOrder(ctx context.Context, id uint64) (*model.Order, error) {
	const q = `SELECT ` + orderColumns + `,
                      u.id, u.full_name, u.email, u.phone, u.is_active, u.created_at, u.updated_at,
                      bi.id, bi.library_id, bi.book_id, bi.status,
                      b.id, b.title, b.author, b.year
               FROM orders o
               JOIN users u ON u.id = o.user_id
               JOIN book_instances bi ON bi.id = o.book_instance_id
               JOIN books b ON b.id = bi.book_id
               WHERE o.id = ?`
	var o model.Order
	var u model.User
	var inst model.BookInstance
	var book model.Book
	var phone sql.NullString
	var deadline, expected, issued, returned sql.NullTime
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&o.ID, &o.UserID, &o.InstanceID, &o.Status, &o.CreatedAt,
		&deadline, &expected, &issued, &returned,
		&u.ID, &u.FullName, &u.Email, &phone, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
		&inst.ID, &inst.LibraryID, &inst.BookID, &inst.Status,
		&book.ID, &book.Title, &book.Author, &book.Year,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if phone.Valid {
		u.Phone = phone.String
	}
	o.ReservationDeadline = timePtr(deadline)
	o.ExpectedReturnDate = timePtr(expected)
	o.ActualIssueDate = timePtr(issued)
	o.ActualReturnDate = timePtr(returned)
	inst.Book = &book
	o.User = &u
	o.Instance = &inst
	return &o, nil
}

// CreateOrder inserts a new order and populates the generated ID on
// the provided record.
func (r *OrderRepo) CreateOrder(ctx context.Context, o *model.Order) error {
	const q = `INSERT INTO orders
               (user_id, book_instance_id, status, created_at, reservation_deadline, expected_return_date)
               VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		o.UserID, o.InstanceID, o.Status, o.CreatedAt, nullTime(o.ReservationDeadline), nullTime(o.ExpectedReturnDate),
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	o.ID = uint64(id)
	return nil
}

// SaveOrder persists the mutable lifecycle columns of an existing
// order. CreatedAt and the entity references are immutable and never
// written again.
func (r *OrderRepo) SaveOrder(ctx context.Context, o *model.Order) error {
	const q = `UPDATE orders
               SET status = ?, reservation_deadline = ?, expected_return_date = ?,
                   actual_issue_date = ?, actual_return_date = ?
               WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q,
		o.Status, nullTime(o.ReservationDeadline), nullTime(o.ExpectedReturnDate),
		nullTime(o.ActualIssueDate), nullTime(o.ActualReturnDate), o.ID,
	)
	if err != nil {
		return err
	}
	if _, err := res.RowsAffected(); err != nil {
		return err
	}
	return nil
}

// FindActiveByUser returns the user's orders in CREATED,
// READY_FOR_ISSUE or ISSUED, the states counted toward the borrowing
// limit. Entity references are not populated; callers only need the
// count and statuses.
func (r *OrderRepo) FindActiveByUser(ctx context.Context, userID uint64) ([]model.Order, error) {
	statuses := make([]string, 0, len(model.ActiveStatuses))
	args := make([]interface{}, 0, len(model.ActiveStatuses)+1)
	args = append(args, userID)
	for _, s := range model.ActiveStatuses {
		statuses = append(statuses, "?")
		args = append(args, string(s))
	}
	q := `SELECT ` + orderColumns + `
          FROM orders o
          WHERE o.user_id = ? AND o.status IN (` + strings.Join(statuses, ",") + `)
          ORDER BY o.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	orders := make([]model.Order, 0)
	for rows.Next() {
		var o model.Order
		var deadline, expected, issued, returned sql.NullTime
		if err := rows.Scan(
			&o.ID, &o.UserID, &o.InstanceID, &o.Status, &o.CreatedAt,
			&deadline, &expected, &issued, &returned,
		); err != nil {
			return nil, err
		}
		o.ReservationDeadline = timePtr(deadline)
		o.ExpectedReturnDate = timePtr(expected)
		o.ActualIssueDate = timePtr(issued)
		o.ActualReturnDate = timePtr(returned)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

// ListOverdueIDs returns the IDs of issued orders whose expected
// return date lies before asOf. Used by the background overdue sweep.
func (r *OrderRepo) ListOverdueIDs(ctx context.Context, asOf time.Time) ([]uint64, error) {
	const q = `SELECT id FROM orders
               WHERE status = ? AND expected_return_date IS NOT NULL AND expected_return_date < ?`
	rows, err := r.db.QueryContext(ctx, q, string(model.OrderIssued), asOf.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	u := t.Time.UTC()
	return &u
}

func nullTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC()
}
