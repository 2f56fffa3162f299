package database

import "github.com/pkg/errors"

// ErrNotFound is returned, possibly wrapped, when a requested key or
// record doesn't exist.
var ErrNotFound = errors.New("not found")

// IsNotFoundError returns whether err wraps ErrNotFound.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// DataAccessor reads and writes single keys.
type DataAccessor interface {
	// Put stores value under key, replacing any previous value.
	Put(key *Key, value []byte) error

	// Get returns the value stored under key, or an error wrapping
	// ErrNotFound.
	Get(key *Key) ([]byte, error)

	Has(key *Key) (bool, error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(key *Key) error

	// Cursor iterates over the keys of bucket.
	Cursor(bucket *Bucket) (Cursor, error)
}

// Database defines the interface of a database that can begin
// batched writes and be closed.
type Database interface {
	DataAccessor

	// Batch returns a new write batch. Writes made through the batch are
	// applied atomically on Write.
	Batch() Batch

	// Close closes the database.
	Close() error
}

// Batch collects puts and deletes and commits them atomically.
type Batch interface {
	Put(key *Key, value []byte)
	Delete(key *Key)

	// Write commits all the collected operations.
	Write() error
}
