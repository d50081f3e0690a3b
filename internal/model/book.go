package model

// Book is a catalog entry describing a title, independent of how
// many physical copies exist. Copies are tracked as BookInstance
// records referencing the book.
//
// Fields:
//  ID     – primary key identifier.
//  Title  – book title.
//  Author – author name.
//  Year   – year of publication.
type Book struct {
	ID     uint64 // books.id
	Title  string // books.title
	Author string // books.author
	Year   int    // books.year
}

// Library is a physical branch holding book instances.
//
// Fields:
//  ID      – primary key identifier.
//  Name    – branch display name.
//  Address – postal address of the branch.
type Library struct {
	ID      uint64 // libraries.id
	Name    string // libraries.name
	Address string // libraries.address
}
