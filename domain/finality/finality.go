package finality

import (
	"github.com/dynastynet/finalityd/domain/dagconfig"
	"github.com/dynastynet/finalityd/domain/finality/finalitystate"
	"github.com/dynastynet/finalityd/domain/finality/model"
	"github.com/dynastynet/finalityd/domain/finality/model/externalapi"
	"github.com/dynastynet/finalityd/domain/finality/ruleerrors"
)

// Finality maintains the finalization state of every candidate chain tip
type Finality interface {
	ValidateAndInsertBlock(block *externalapi.DomainBlock) error
	FinalizationState(blockHash *externalapi.DomainHash) (*finalitystate.FinalizationState, error)
	FinalizationRewards(tipHash *externalapi.DomainHash) ([]*externalapi.DomainTransactionOutput, error)
	RecommendedVote(tipHash *externalapi.DomainHash, address externalapi.ValidatorAddress) (*externalapi.Vote, error)
	StateCommitment(blockHash *externalapi.DomainHash) (*StateCommitment, error)
	Prune(tipHash *externalapi.DomainHash) (int, error)
}

// StateCommitment identifies the finalization state after a block. Nodes
// that agree on StateHash agree on the whole state.
type StateCommitment struct {
	StateHash              *externalapi.DomainHash
	ValidatorSetCommitment *externalapi.DomainHash
}

type finality struct {
	params *dagconfig.Params

	blockIndex      model.BlockIndex
	stateRepository model.StateRepository
	rewardLogic     model.RewardLogic
}

// ValidateAndInsertBlock validates the finalization rewards paid by block
// and applies its operations on top of the state of its parent.
func (f *finality) ValidateAndInsertBlock(block *externalapi.DomainBlock) error {
	if !f.blockIndex.HasBlock(&block.Header.ParentHash) {
		return ruleerrors.NewErrMissingParent(&block.Header.ParentHash)
	}
	err := f.rewardLogic.ValidateCoinbaseRewards(block)
	if err != nil {
		return err
	}
	_, err = f.stateRepository.ProcessNewBlock(block)
	return err
}

func (f *finality) FinalizationState(blockHash *externalapi.DomainHash) (*finalitystate.FinalizationState, error) {
	return f.stateRepository.Find(blockHash)
}

// FinalizationRewards returns the finalization reward outputs the coinbase of
// a block on top of tipHash must pay.
func (f *finality) FinalizationRewards(tipHash *externalapi.DomainHash) ([]*externalapi.DomainTransactionOutput, error) {
	return f.rewardLogic.GetFinalizationRewards(tipHash)
}

// RecommendedVote returns the vote address should cast in a block on top of
// tipHash.
func (f *finality) RecommendedVote(tipHash *externalapi.DomainHash,
	address externalapi.ValidatorAddress) (*externalapi.Vote, error) {

	state, err := f.stateRepository.Find(tipHash)
	if err != nil {
		return nil, err
	}
	if state.CurrentEpoch() == 0 {
		return state.RecommendedVote(address, nil)
	}
	targetHeight := f.params.Finalization.CheckpointHeight(state.CurrentEpoch() - 1)
	targetHash, err := f.blockIndex.Ancestor(tipHash, targetHeight)
	if err != nil {
		return nil, err
	}
	return state.RecommendedVote(address, targetHash)
}

func (f *finality) StateCommitment(blockHash *externalapi.DomainHash) (*StateCommitment, error) {
	state, err := f.stateRepository.Find(blockHash)
	if err != nil {
		return nil, err
	}
	stateHash, err := state.Hash()
	if err != nil {
		return nil, err
	}
	return &StateCommitment{
		StateHash:              stateHash,
		ValidatorSetCommitment: state.ValidatorSetCommitment(),
	}, nil
}

func (f *finality) Prune(tipHash *externalapi.DomainHash) (int, error) {
	return f.stateRepository.Prune(tipHash)
}
