package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/library-lending/internal/model"
)

// BookInstanceRepo loads and saves physical copies. Loads join the
// catalog book and owning branch so callers get a fully referenced
// instance; saves only touch the mutable status column.
type BookInstanceRepo struct {
	db *sql.DB
}

// NewBookInstanceRepo returns a new BookInstanceRepo bound to the
// given database.
func NewBookInstanceRepo(db *sql.DB) *BookInstanceRepo { return &BookInstanceRepo{db: db} }

// GetInstance returns the copy with the given ID along with its book
// and library, or ErrNotFound when no such copy exists.
func (r *BookInstanceRepo) GetInstance(ctx context.Context, id uint64) (*model.BookInstance, error) {
	const q = `SELECT bi.id, bi.library_id, bi.book_id, bi.status,
                      b.id, b.title, b.author, b.year,
                      l.id, l.name, l.address
               FROM book_instances bi
               JOIN books b ON b.id = bi.book_id
               JOIN libraries l ON l.id = bi.library_id
               WHERE bi.id = ?`
	var inst model.BookInstance
	var book model.Book
	var lib model.Library
	var address sql.NullString
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&inst.ID, &inst.LibraryID, &inst.BookID, &inst.Status,
		&book.ID, &book.Title, &book.Author, &book.Year,
		&lib.ID, &lib.Name, &address,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if address.Valid {
		lib.Address = address.String
	}
	inst.Book = &book
	inst.Library = &lib
	return &inst, nil
}

// SaveInstance persists the copy's current status. The catalog and
// branch references of a copy never change after creation.
func (r *BookInstanceRepo) SaveInstance(ctx context.Context, instance *model.BookInstance) error {
	const q = `UPDATE book_instances SET status = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, instance.Status, instance.ID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// Status may be unchanged; verify the row exists at all.
		var exists uint64
		err := r.db.QueryRowContext(ctx, `SELECT id FROM book_instances WHERE id = ?`, instance.ID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
