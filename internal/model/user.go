package model

import "time"

// User represents a registered reader as stored in the `users`
// table. Each field corresponds to a column in the database.
// Credential material (password hashes, tokens) is owned by the
// excluded authentication layer and is deliberately absent here;
// the lending core only needs contact details for notifications.
//
// Fields:
//  ID        – primary key identifier of the reader.
//  FullName  – display name used in audit lines.
//  Email     – address used by the email notification channel.
//  Phone     – number used by the SMS notification channel.
//  IsActive  – whether the account may place orders.
//  CreatedAt – timestamp of creation.
//  UpdatedAt – timestamp of last update.
type User struct {
	ID        uint64    // users.id
	FullName  string    // users.full_name
	Email     string    // users.email
	Phone     string    // users.phone
	IsActive  bool      // users.is_active
	CreatedAt time.Time // users.created_at
	UpdatedAt time.Time // users.updated_at
}
