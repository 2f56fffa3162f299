package staterepository

import (
	"github.com/dynastynet/finalityd/domain/finality/finalitystate"
	"github.com/dynastynet/finalityd/domain/finality/model/externalapi"
	"github.com/dynastynet/finalityd/domain/finality/ruleerrors"
	"github.com/pkg/errors"
)

// applyBlock initializes a new epoch if block starts one, then applies the
// deposits and votes of block in transaction order. The coinbase is skipped.
// A state left inconsistent is a fatal error, never a rule error.
func (sr *stateRepository) applyBlock(state *finalitystate.FinalizationState, block *externalapi.DomainBlock) error {
	height := block.Header.Height
	if sr.params.Finalization.IsEpochStart(height) {
		err := state.InitializeEpoch(height)
		if err != nil {
			return err
		}
	}

	for i, tx := range block.Transactions {
		if tx.IsCoinbase() {
			continue
		}
		err := sr.applyTransaction(state, block, tx)
		if err != nil {
			if ruleerrors.IsRuleError(err) {
				return ruleerrors.NewErrInvalidOperation(i, err)
			}
			return err
		}
	}
	return state.CheckConsistency()
}

func (sr *stateRepository) applyTransaction(state *finalitystate.FinalizationState,
	block *externalapi.DomainBlock, tx *externalapi.DomainTransaction) error {

	switch tx.Type {
	case externalapi.TxTypeDeposit:
		if tx.Deposit == nil {
			return errors.WithStack(ruleerrors.ErrMalformedOperation)
		}
		return state.ProcessDeposit(tx.Deposit.ValidatorAddress, tx.Deposit.Amount)
	case externalapi.TxTypeVote:
		if tx.Vote == nil {
			return errors.WithStack(ruleerrors.ErrMalformedOperation)
		}
		err := state.ValidateVote(tx.Vote)
		if err != nil {
			return err
		}
		err = sr.validateVoteTarget(block, tx.Vote)
		if err != nil {
			return err
		}
		return state.ProcessVote(tx.Vote)
	}
	return nil
}

// validateVoteTarget checks that the vote's target hash is the checkpoint
// block of its target epoch in the chain block extends.
func (sr *stateRepository) validateVoteTarget(block *externalapi.DomainBlock, vote *externalapi.Vote) error {
	checkpointHeight := sr.params.Finalization.CheckpointHeight(vote.TargetEpoch)
	checkpointHash, err := sr.blockIndex.Ancestor(&block.Header.ParentHash, checkpointHeight)
	if err != nil {
		return err
	}
	if !checkpointHash.Equal(&vote.TargetHash) {
		return errors.Wrapf(ruleerrors.ErrVoteWrongTargetHash, "vote targets %s while checkpoint %d is %s",
			&vote.TargetHash, vote.TargetEpoch, checkpointHash)
	}
	return nil
}
