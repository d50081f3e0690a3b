package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/library-lending/internal/model"
)

// UserRepo loads reader records. The lending core only ever reads
// users; account management belongs to the excluded web layer.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo returns a new UserRepo bound to the given database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

// GetUser returns the reader with the given ID, or ErrNotFound when
// no such reader exists.
func (r *UserRepo) GetUser(ctx context.Context, id uint64) (*model.User, error) {
	const q = `SELECT id, full_name, email, phone, is_active, created_at, updated_at
               FROM users WHERE id = ?`
	var u model.User
	var phone sql.NullString
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&u.ID, &u.FullName, &u.Email, &phone, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
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
	return &u, nil
}
