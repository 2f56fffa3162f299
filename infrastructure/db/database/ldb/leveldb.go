package ldb

import (
	"github.com/dynastynet/finalityd/infrastructure/db/database"
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	ldbErrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// defaultCacheSizeMiB is the block cache size used when none is given.
const defaultCacheSizeMiB = 32

// newOptions returns the leveldb options for the given block cache size.
func newOptions(cacheSizeMiB int) *opt.Options {
	if cacheSizeMiB <= 0 {
		cacheSizeMiB = defaultCacheSizeMiB
	}
	return &opt.Options{
		Compression:            opt.NoCompression,
		BlockCacheCapacity:     cacheSizeMiB * opt.MiB,
		WriteBuffer:            16 * opt.MiB,
		DisableSeeksCompaction: true,
	}
}

// LevelDB defines a thin wrapper around leveldb.
type LevelDB struct {
	ldb *leveldb.DB
}

// NewLevelDB opens a leveldb instance defined by the given path.
// A non-positive cacheSizeMiB selects the default block cache size.
func NewLevelDB(path string, cacheSizeMiB int) (*LevelDB, error) {
	options := newOptions(cacheSizeMiB)

	// Open leveldb. If it doesn't exist, create it.
	ldb, err := leveldb.OpenFile(path, options)

	// If the database is corrupted, attempt to recover.
	if _, corrupted := err.(*ldbErrors.ErrCorrupted); corrupted {
		log.Warnf("LevelDB corruption detected for path %s: %s",
			path, err)
		var err error
		ldb, err = leveldb.RecoverFile(path, options)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		log.Warnf("LevelDB recovered from corruption for path %s",
			path)
	}

	// If the database cannot be opened for any other
	// reason, return the error as-is.
	if err != nil {
		return nil, errors.WithStack(err)
	}

	db := &LevelDB{
		ldb: ldb,
	}
	return db, nil
}

// Compact compacts the leveldb instance.
func (db *LevelDB) Compact() error {
	err := db.ldb.CompactRange(util.Range{Start: nil, Limit: nil})
	return errors.WithStack(err)
}

// Close closes the leveldb instance.
func (db *LevelDB) Close() error {
	err := db.ldb.Close()
	return errors.WithStack(err)
}

// Put sets the value for the given key. It overwrites
// any previous value for that key.
func (db *LevelDB) Put(key *database.Key, value []byte) error {
	err := db.ldb.Put(key.Bytes(), value, nil)
	return errors.WithStack(err)
}

// Get gets the value for the given key. It returns
// ErrNotFound if the given key does not exist.
func (db *LevelDB) Get(key *database.Key) ([]byte, error) {
	data, err := db.ldb.Get(key.Bytes(), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, errors.Wrapf(database.ErrNotFound,
				"key %s not found", key)
		}
		return nil, errors.WithStack(err)
	}
	return data, nil
}

// Has returns true if the database does contains the
// given key.
func (db *LevelDB) Has(key *database.Key) (bool, error) {
	exists, err := db.ldb.Has(key.Bytes(), nil)
	if err != nil {
		return false, errors.WithStack(err)
	}
	return exists, nil
}

// Delete deletes the value for the given key. Will not
// return an error if the key doesn't exist.
func (db *LevelDB) Delete(key *database.Key) error {
	err := db.ldb.Delete(key.Bytes(), nil)
	return errors.WithStack(err)
}

// Batch returns a new write batch over this leveldb instance.
func (db *LevelDB) Batch() database.Batch {
	return &levelDBBatch{db: db, batch: new(leveldb.Batch)}
}

type levelDBBatch struct {
	db    *LevelDB
	batch *leveldb.Batch
}

func (b *levelDBBatch) Put(key *database.Key, value []byte) {
	b.batch.Put(key.Bytes(), value)
}

func (b *levelDBBatch) Delete(key *database.Key) {
	b.batch.Delete(key.Bytes())
}

func (b *levelDBBatch) Write() error {
	err := b.db.ldb.Write(b.batch, nil)
	return errors.WithStack(err)
}
