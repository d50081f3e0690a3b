package model

// InstanceStatus enumerates the states of a physical copy. A copy
// is AVAILABLE exactly when no open order references it; RESERVED
// while an order awaits pickup and ISSUED while a reader holds it.
type InstanceStatus string

const (
	InstanceAvailable InstanceStatus = "AVAILABLE"
	InstanceReserved  InstanceStatus = "RESERVED"
	InstanceIssued    InstanceStatus = "ISSUED"
)

// BookInstance is one physical copy of a catalog book, trackable
// independently of other copies of the same title.
//
// Fields:
//  ID        – primary key identifier.
//  LibraryID – branch that owns the copy.
//  BookID    – catalog book this copy belongs to.
//  Book      – catalog entry, populated by the repository on load.
//  Library   – owning branch, populated by the repository on load.
//  Status    – current availability of the copy.
type BookInstance struct {
	ID        uint64         // book_instances.id
	LibraryID uint64         // book_instances.library_id
	BookID    uint64         // book_instances.book_id
	Book      *Book          // joined from books
	Library   *Library       // joined from libraries
	Status    InstanceStatus // book_instances.status
}
