package staterepository

import (
	"github.com/dynastynet/finalityd/domain/finality/finalitystate"
	"github.com/dynastynet/finalityd/domain/finality/model/externalapi"
	"github.com/dynastynet/finalityd/infrastructure/logger"
)

// Prune drops the states that can no longer be needed once the last
// finalized checkpoint of tipHash is final: states of blocks below that
// checkpoint which aren't in the chain of tipHash are deleted from memory
// and from the store. States in the chain of tipHash below the checkpoint
// are persisted at checkpoint heights and otherwise dropped from memory,
// since they can be replayed. It returns the number of states removed from
// memory.
//
// statesLock is only held to copy the in-memory states and to drop the
// pruned ones. Store and block index accesses happen without it.
func (sr *stateRepository) Prune(tipHash *externalapi.DomainHash) (int, error) {
	onEnd := logger.LogAndMeasureExecutionTime(log, "Prune")
	defer onEnd()

	tipState, err := sr.find(tipHash)
	if err != nil {
		return 0, err
	}
	tipHeight, err := sr.blockIndex.Height(tipHash)
	if err != nil {
		return 0, err
	}
	finalizedHeight := sr.params.Finalization.CheckpointHeight(tipState.LastFinalizedEpoch())
	if tipHeight < finalizedHeight {
		return 0, nil
	}

	victims, err := sr.persistPrunedStates(tipHash, finalizedHeight)
	if err != nil {
		return 0, err
	}
	pruned := sr.dropStates(victims)

	staleStoredHashes, err := sr.staleStoredStates(tipHash, finalizedHeight)
	if err != nil {
		return pruned, err
	}
	err = sr.stateStore.Delete(staleStoredHashes)
	if err != nil {
		return pruned, err
	}

	log.Debugf("Pruned %d finalization states below height %d and %d stored states of abandoned forks",
		pruned, finalizedHeight, len(staleStoredHashes))
	return pruned, nil
}

// statesSnapshot returns a copy of the in-memory states map. The states
// themselves are shared and must not be mutated.
func (sr *stateRepository) statesSnapshot() map[externalapi.DomainHash]*finalitystate.FinalizationState {
	sr.statesLock.RLock()
	defer sr.statesLock.RUnlock()

	snapshot := make(map[externalapi.DomainHash]*finalitystate.FinalizationState, len(sr.states))
	for blockHash, state := range sr.states {
		snapshot[blockHash] = state
	}
	return snapshot
}

// persistPrunedStates selects the in-memory states at or below
// finalizedHeight and stores those of checkpoints in the chain of tipHash,
// so that the others can be replayed from them.
func (sr *stateRepository) persistPrunedStates(tipHash *externalapi.DomainHash,
	finalizedHeight externalapi.BlockHeight) (map[externalapi.DomainHash]*finalitystate.FinalizationState, error) {

	victims := make(map[externalapi.DomainHash]*finalitystate.FinalizationState)
	for blockHash, state := range sr.statesSnapshot() {
		blockHash := blockHash
		height, err := sr.blockIndex.Height(&blockHash)
		if err != nil {
			return nil, err
		}
		if height > finalizedHeight {
			continue
		}
		isInChain, err := sr.blockIndex.IsInChainOf(&blockHash, tipHash)
		if err != nil {
			return nil, err
		}
		if isInChain && sr.params.Finalization.IsCheckpoint(height) {
			err = sr.stateStore.Put(&blockHash, state)
			if err != nil {
				return nil, err
			}
		}
		victims[blockHash] = state
	}
	return victims, nil
}

// dropStates removes victims from memory unless their entry was replaced
// in the meantime, and returns the number of removed states.
func (sr *stateRepository) dropStates(victims map[externalapi.DomainHash]*finalitystate.FinalizationState) int {
	sr.statesLock.Lock()
	defer sr.statesLock.Unlock()

	dropped := 0
	for blockHash, state := range victims {
		if sr.states[blockHash] != state {
			continue
		}
		delete(sr.states, blockHash)
		dropped++
	}
	return dropped
}

// staleStoredStates returns the stored states below finalizedHeight that
// aren't in the chain of tipHash.
func (sr *stateRepository) staleStoredStates(tipHash *externalapi.DomainHash,
	finalizedHeight externalapi.BlockHeight) ([]*externalapi.DomainHash, error) {

	storedHashes, err := sr.stateStore.BlockHashes()
	if err != nil {
		return nil, err
	}
	var staleStoredHashes []*externalapi.DomainHash
	for _, blockHash := range storedHashes {
		if !sr.blockIndex.HasBlock(blockHash) {
			continue
		}
		height, err := sr.blockIndex.Height(blockHash)
		if err != nil {
			return nil, err
		}
		if height >= finalizedHeight {
			continue
		}
		isInChain, err := sr.blockIndex.IsInChainOf(blockHash, tipHash)
		if err != nil {
			return nil, err
		}
		if !isInChain {
			staleStoredHashes = append(staleStoredHashes, blockHash)
		}
	}
	return staleStoredHashes, nil
}
