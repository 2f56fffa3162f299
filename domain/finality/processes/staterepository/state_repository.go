package staterepository

import (
	"sync"

	"github.com/dynastynet/finalityd/domain/dagconfig"
	"github.com/dynastynet/finalityd/domain/finality/finalitystate"
	"github.com/dynastynet/finalityd/domain/finality/model"
	"github.com/dynastynet/finalityd/domain/finality/model/externalapi"
	"github.com/dynastynet/finalityd/domain/finality/ruleerrors"
	"github.com/dynastynet/finalityd/domain/finality/utils/consensushashing"
	"github.com/dynastynet/finalityd/infrastructure/db/database"
	"github.com/dynastynet/finalityd/infrastructure/logger"
	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"
)

// stateRepository keeps the finalization state after every block that
// wasn't pruned. Recent states live in memory; older ones are persisted to
// the store at checkpoint heights and replayed from there on demand.
type stateRepository struct {
	params      *dagconfig.Params
	blockIndex  model.BlockIndex
	blockDB     model.BlockDB
	stateStore  model.FinalityStateStore
	flights     singleflight.Group
	statesLock  sync.RWMutex
	states      map[externalapi.DomainHash]*finalitystate.FinalizationState
	genesisHash *externalapi.DomainHash
}

// New instantiates a new StateRepository and registers the genesis block of
// params in blockIndex and stateStore.
func New(params *dagconfig.Params, blockIndex model.BlockIndex, blockDB model.BlockDB,
	stateStore model.FinalityStateStore) (model.StateRepository, error) {

	err := blockIndex.AddBlock(params.GenesisHash, params.GenesisBlock.Header)
	if err != nil {
		return nil, err
	}
	hasGenesis, err := stateStore.Has(params.GenesisHash)
	if err != nil {
		return nil, err
	}
	if !hasGenesis {
		err = stateStore.Put(params.GenesisHash, finalitystate.New(&params.Finalization))
		if err != nil {
			return nil, err
		}
	}

	return &stateRepository{
		params:      params,
		blockIndex:  blockIndex,
		blockDB:     blockDB,
		stateStore:  stateStore,
		states:      make(map[externalapi.DomainHash]*finalitystate.FinalizationState),
		genesisHash: params.GenesisHash,
	}, nil
}

// Find returns a copy of the state after the given block. A state that is
// neither in memory nor in the store is replayed from the closest stored
// ancestor. Blocks missing from the block index yield ErrUnknownBlock.
func (sr *stateRepository) Find(blockHash *externalapi.DomainHash) (*finalitystate.FinalizationState, error) {
	state, err := sr.find(blockHash)
	if err != nil {
		return nil, err
	}
	return state.Clone(), nil
}

// find returns the shared instance of the state after blockHash. The
// returned state must not be mutated.
func (sr *stateRepository) find(blockHash *externalapi.DomainHash) (*finalitystate.FinalizationState, error) {
	state, ok, err := sr.lookup(blockHash)
	if err != nil {
		return nil, err
	}
	if ok {
		return state, nil
	}
	if !sr.blockIndex.HasBlock(blockHash) {
		return nil, errors.Wrapf(model.ErrUnknownBlock, "no finalization state for block %s", blockHash)
	}

	result, err, _ := sr.flights.Do(blockHash.String(), func() (interface{}, error) {
		return sr.replay(blockHash)
	})
	if err != nil {
		return nil, err
	}
	return result.(*finalitystate.FinalizationState), nil
}

func (sr *stateRepository) lookup(blockHash *externalapi.DomainHash) (*finalitystate.FinalizationState, bool, error) {
	sr.statesLock.RLock()
	state, ok := sr.states[*blockHash]
	sr.statesLock.RUnlock()
	if ok {
		return state, true, nil
	}

	state, err := sr.stateStore.Get(blockHash)
	if database.IsNotFoundError(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return state, true, nil
}

// replay rebuilds the state after blockHash by applying the blocks following
// its closest ancestor with a known state.
func (sr *stateRepository) replay(blockHash *externalapi.DomainHash) (*finalitystate.FinalizationState, error) {
	onEnd := logger.LogAndMeasureExecutionTime(log, "replay")
	defer onEnd()

	var pending []*externalapi.DomainHash
	current := blockHash
	var state *finalitystate.FinalizationState
	for {
		known, ok, err := sr.lookup(current)
		if err != nil {
			return nil, err
		}
		if ok {
			state = known.Clone()
			break
		}
		pending = append(pending, current)
		parent, err := sr.blockIndex.Parent(current)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, errors.Wrapf(model.ErrUnknownBlock, "no stored ancestor of block %s", blockHash)
		}
		current = parent
	}

	log.Debugf("Replaying %d blocks to rebuild the finalization state of %s", len(pending), blockHash)
	for i := len(pending) - 1; i >= 0; i-- {
		block, err := sr.blockDB.Block(pending[i])
		if database.IsNotFoundError(err) {
			return nil, errors.Wrapf(model.ErrMissingBlock, "block %s is needed to replay %s", pending[i], blockHash)
		}
		if err != nil {
			return nil, err
		}
		err = sr.applyBlock(state, block)
		if err != nil {
			// The block was accepted before, so it must apply again.
			return nil, errors.Wrapf(finalitystate.ErrInconsistentState,
				"replaying block %s failed: %s", pending[i], err)
		}
		sr.storeState(pending[i], state.Clone())
	}
	return state, nil
}

// ProcessNewBlock computes the state after block from the state of its
// parent. Rule violations reject the block without changing the repository.
// Processing a block twice returns the existing state.
func (sr *stateRepository) ProcessNewBlock(block *externalapi.DomainBlock) (*finalitystate.FinalizationState, error) {
	blockHash := consensushashing.BlockHash(block)
	result, err, _ := sr.flights.Do(blockHash.String(), func() (interface{}, error) {
		return sr.processNewBlock(blockHash, block)
	})
	if err != nil {
		return nil, err
	}
	return result.(*finalitystate.FinalizationState).Clone(), nil
}

func (sr *stateRepository) processNewBlock(blockHash *externalapi.DomainHash,
	block *externalapi.DomainBlock) (*finalitystate.FinalizationState, error) {

	existing, ok, err := sr.lookup(blockHash)
	if err != nil {
		return nil, err
	}
	if ok {
		return existing, nil
	}
	if block.Header.Height == 0 {
		return nil, errors.Errorf("block %s at height 0 isn't the genesis block %s", blockHash, sr.genesisHash)
	}

	parentState, err := sr.find(&block.Header.ParentHash)
	if errors.Is(err, model.ErrUnknownBlock) {
		return nil, ruleerrors.NewErrMissingParent(&block.Header.ParentHash)
	}
	if err != nil {
		return nil, err
	}
	parentHeight, err := sr.blockIndex.Height(&block.Header.ParentHash)
	if err != nil {
		return nil, err
	}
	if block.Header.Height != parentHeight+1 {
		return nil, errors.Errorf("block %s has height %d while its parent has height %d",
			blockHash, block.Header.Height, parentHeight)
	}

	state := parentState.Clone()
	err = sr.applyBlock(state, block)
	if err != nil {
		return nil, err
	}
	err = sr.blockIndex.AddBlock(blockHash, block.Header)
	if err != nil {
		return nil, err
	}
	sr.storeState(blockHash, state)

	log.Tracef("Processed block %s at height %d: epoch %d, last justified %d, last finalized %d",
		blockHash, block.Header.Height, state.CurrentEpoch(), state.LastJustifiedEpoch(), state.LastFinalizedEpoch())
	return state, nil
}

func (sr *stateRepository) storeState(blockHash *externalapi.DomainHash, state *finalitystate.FinalizationState) {
	sr.statesLock.Lock()
	defer sr.statesLock.Unlock()
	sr.states[*blockHash] = state
}
