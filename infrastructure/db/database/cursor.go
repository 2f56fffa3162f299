package database

// Cursor walks the entries of a bucket in key order. A closed cursor panics
// on movement.
type Cursor interface {
	// Next advances to the following entry and reports whether there is one.
	Next() bool

	// First rewinds to the first entry and reports whether there is one.
	First() bool

	// Seek positions the cursor at the first key >= key, or returns
	// ErrNotFound.
	Seek(key *Key) error

	// Key and Value return the current entry, or ErrNotFound once the cursor
	// is exhausted. The returned data must not be modified and is only valid
	// until the cursor moves.
	Key() (*Key, error)
	Value() ([]byte, error)

	Close() error
}
