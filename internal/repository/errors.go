// Package repository implements the persistence collaborators of the
// lending core over MySQL. Stores expose narrow load/save operations
// keyed by identifier; query shaping beyond that lives with the
// excluded web layer.
package repository

import "errors"

// ErrNotFound is returned when a requested user, book instance or
// order does not exist. Callers translate it into their own typed
// not-found errors carrying the entity kind and identifier.
var ErrNotFound = errors.New("not found")
