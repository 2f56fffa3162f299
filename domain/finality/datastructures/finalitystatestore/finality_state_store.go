package finalitystatestore

import (
	"github.com/dynastynet/finalityd/domain/dagconfig"
	"github.com/dynastynet/finalityd/domain/finality/finalitystate"
	"github.com/dynastynet/finalityd/domain/finality/model"
	"github.com/dynastynet/finalityd/domain/finality/model/externalapi"
	"github.com/dynastynet/finalityd/infrastructure/db/database"
	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
)

var bucketName = []byte("finalization-states")

// ErrCorruptState is returned when a stored state doesn't match the state
// hash stored along with it.
var ErrCorruptState = errors.New("corrupt finalization state")

type finalityStateStore struct {
	db     database.Database
	bucket *database.Bucket
	cache  *lru.Cache
	params *dagconfig.FinalizationParams
}

// New instantiates a new FinalityStateStore. Up to cacheSize deserialized
// states are kept in memory.
func New(db database.Database, prefixBucket *database.Bucket, params *dagconfig.FinalizationParams,
	cacheSize int) (model.FinalityStateStore, error) {

	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &finalityStateStore{
		db:     db,
		bucket: prefixBucket.Bucket(bucketName),
		cache:  cache,
		params: params,
	}, nil
}

// Put stores state as the state after the given block. The record is the
// state hash followed by the serialized state.
func (fss *finalityStateStore) Put(blockHash *externalapi.DomainHash, state *finalitystate.FinalizationState) error {
	serialized, err := state.Serialize()
	if err != nil {
		return err
	}
	stateHash, err := state.Hash()
	if err != nil {
		return err
	}
	record := make([]byte, 0, externalapi.DomainHashSize+len(serialized))
	record = append(record, stateHash.ByteSlice()...)
	record = append(record, serialized...)
	err = fss.db.Put(fss.hashAsKey(blockHash), record)
	if err != nil {
		return err
	}
	fss.cache.Add(*blockHash, state.Clone())
	return nil
}

// Get returns a copy of the state stored for the given block. It returns an
// error matching database.ErrNotFound if there is none, and ErrCorruptState
// if the stored state doesn't hash to the stored state hash.
func (fss *finalityStateStore) Get(blockHash *externalapi.DomainHash) (*finalitystate.FinalizationState, error) {
	if state, ok := fss.cache.Get(*blockHash); ok {
		return state.(*finalitystate.FinalizationState).Clone(), nil
	}

	record, err := fss.db.Get(fss.hashAsKey(blockHash))
	if err != nil {
		return nil, err
	}
	if len(record) < externalapi.DomainHashSize {
		return nil, errors.Wrapf(ErrCorruptState, "the record of %s is only %d bytes long", blockHash, len(record))
	}
	expectedHash, err := externalapi.NewDomainHashFromByteSlice(record[:externalapi.DomainHashSize])
	if err != nil {
		return nil, err
	}
	state, err := finalitystate.Deserialize(fss.params, record[externalapi.DomainHashSize:])
	if err != nil {
		return nil, errors.Wrapf(err, "failed deserializing the finalization state of %s", blockHash)
	}
	stateHash, err := state.Hash()
	if err != nil {
		return nil, err
	}
	if !stateHash.Equal(expectedHash) {
		return nil, errors.Wrapf(ErrCorruptState, "the state of %s hashes to %s instead of %s",
			blockHash, stateHash, expectedHash)
	}
	fss.cache.Add(*blockHash, state)
	return state.Clone(), nil
}

func (fss *finalityStateStore) Has(blockHash *externalapi.DomainHash) (bool, error) {
	if fss.cache.Contains(*blockHash) {
		return true, nil
	}
	return fss.db.Has(fss.hashAsKey(blockHash))
}

// Delete removes the states of the given blocks in a single batch.
func (fss *finalityStateStore) Delete(blockHashes []*externalapi.DomainHash) error {
	batch := fss.db.Batch()
	for _, blockHash := range blockHashes {
		batch.Delete(fss.hashAsKey(blockHash))
	}
	err := batch.Write()
	if err != nil {
		return err
	}
	for _, blockHash := range blockHashes {
		fss.cache.Remove(*blockHash)
	}
	return nil
}

// BlockHashes returns the hashes of all blocks with a stored state.
func (fss *finalityStateStore) BlockHashes() ([]*externalapi.DomainHash, error) {
	cursor, err := fss.db.Cursor(fss.bucket)
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	var blockHashes []*externalapi.DomainHash
	for ok := cursor.First(); ok; ok = cursor.Next() {
		key, err := cursor.Key()
		if err != nil {
			return nil, err
		}
		blockHash, err := externalapi.NewDomainHashFromByteSlice(key.Suffix())
		if err != nil {
			return nil, err
		}
		blockHashes = append(blockHashes, blockHash)
	}
	return blockHashes, nil
}

func (fss *finalityStateStore) hashAsKey(hash *externalapi.DomainHash) *database.Key {
	return fss.bucket.Key(hash.ByteSlice())
}
