package rewardlogic

import (
	"github.com/dynastynet/finalityd/domain/dagconfig"
	"github.com/dynastynet/finalityd/domain/finality/finalitystate"
	"github.com/dynastynet/finalityd/domain/finality/model"
	"github.com/dynastynet/finalityd/domain/finality/model/externalapi"
	"github.com/dynastynet/finalityd/domain/finality/utils/ufp64"
	"github.com/dynastynet/finalityd/infrastructure/db/database"
	"github.com/pkg/errors"
)

type rewardLogic struct {
	params          *dagconfig.FinalizationParams
	behavior        model.Behavior
	stateRepository model.StateRepository
	blockIndex      model.BlockIndex
	blockDB         model.BlockDB
}

// New instantiates a new RewardLogic
func New(params *dagconfig.FinalizationParams,
	behavior model.Behavior,
	stateRepository model.StateRepository,
	blockIndex model.BlockIndex,
	blockDB model.BlockDB) model.RewardLogic {

	return &rewardLogic{
		params:          params,
		behavior:        behavior,
		stateRepository: stateRepository,
		blockIndex:      blockIndex,
		blockDB:         blockDB,
	}
}

// GetFinalizationRewards returns the finalization reward outputs that the
// coinbase of the block following tipHash must pay. There is one output per
// block of the epoch of tipHash when tipHash is a checkpoint, and none
// otherwise. Every block's reward goes to the first output script of its
// own coinbase.
func (rl *rewardLogic) GetFinalizationRewards(tipHash *externalapi.DomainHash) (
	[]*externalapi.DomainTransactionOutput, error) {

	tipHeight, ok, err := rl.rewardedTipHeight(tipHash)
	if err != nil || !ok {
		return nil, err
	}
	amounts, err := rl.rewardAmounts(tipHash, tipHeight)
	if err != nil {
		return nil, err
	}

	epochStart := rl.params.EpochStartHeight(rl.params.EpochOf(tipHeight))
	blockHashes, err := rl.blockIndex.ChainSegment(tipHash, epochStart)
	if err != nil {
		return nil, err
	}
	if len(blockHashes) != len(amounts) {
		return nil, errors.Errorf("%d blocks in the epoch of %s while there are %d reward amounts",
			len(blockHashes), tipHash, len(amounts))
	}

	rewards := make([]*externalapi.DomainTransactionOutput, len(blockHashes))
	for i, blockHash := range blockHashes {
		block, err := rl.blockDB.Block(blockHash)
		if database.IsNotFoundError(err) {
			return nil, errors.Wrapf(model.ErrMissingBlock, "block %s at height %d is needed for rewards",
				blockHash, epochStart+externalapi.BlockHeight(i))
		}
		if err != nil {
			return nil, err
		}
		coinbase := block.Coinbase()
		if coinbase == nil || !coinbase.IsCoinbase() || len(coinbase.Outputs) == 0 {
			return nil, errors.Errorf("block %s has no coinbase output to reward", blockHash)
		}
		script := make([]byte, len(coinbase.Outputs[0].ScriptPublicKey))
		copy(script, coinbase.Outputs[0].ScriptPublicKey)
		rewards[i] = &externalapi.DomainTransactionOutput{
			Value:           amounts[i],
			ScriptPublicKey: script,
		}
	}
	return rewards, nil
}

// GetFinalizationRewardAmounts returns the amounts of the outputs
// GetFinalizationRewards returns, without reading any block.
func (rl *rewardLogic) GetFinalizationRewardAmounts(tipHash *externalapi.DomainHash) ([]uint64, error) {
	tipHeight, ok, err := rl.rewardedTipHeight(tipHash)
	if err != nil || !ok {
		return nil, err
	}
	return rl.rewardAmounts(tipHash, tipHeight)
}

// GetNumberOfRewardOutputs returns the number of finalization reward outputs
// in the coinbase of a block at the given height.
func (rl *rewardLogic) GetNumberOfRewardOutputs(height externalapi.BlockHeight) uint64 {
	if rl.params.IsEpochStart(height) && rl.params.EpochOf(height) > 1 {
		return uint64(rl.params.EpochLength)
	}
	return 0
}

// rewardedTipHeight returns the height of tipHash and whether a block
// following it pays finalization rewards.
func (rl *rewardLogic) rewardedTipHeight(tipHash *externalapi.DomainHash) (externalapi.BlockHeight, bool, error) {
	tipHeight, err := rl.blockIndex.Height(tipHash)
	if err != nil {
		return 0, false, err
	}
	if tipHeight < rl.params.CheckpointHeight(1) || !rl.params.IsCheckpoint(tipHeight) {
		return tipHeight, false, nil
	}
	return tipHeight, true, nil
}

func (rl *rewardLogic) rewardAmounts(tipHash *externalapi.DomainHash, tipHeight externalapi.BlockHeight) ([]uint64, error) {
	state, err := rl.stateRepository.Find(tipHash)
	if err != nil {
		return nil, err
	}
	tipEpoch := rl.params.EpochOf(tipHeight)
	if state.CurrentEpoch() != tipEpoch {
		return nil, errors.Wrapf(finalitystate.ErrInconsistentState, "state of %s is in epoch %d while the block is in epoch %d",
			tipHash, state.CurrentEpoch(), tipEpoch)
	}
	fraction, err := state.ParticipationFraction()
	if err != nil {
		return nil, err
	}
	log.Debugf("Finalization rewards of epoch %d are scaled by %s", tipEpoch, fraction)

	epochStart := rl.params.EpochStartHeight(tipEpoch)
	amounts := make([]uint64, 0, rl.params.EpochLength)
	for height := epochStart; height <= tipHeight; height++ {
		reward, err := rl.behavior.CalculateFinalizationReward(height)
		if err != nil {
			return nil, err
		}
		amount, err := ufp64.MulByUint(fraction, reward)
		if err != nil {
			return nil, err
		}
		amounts = append(amounts, amount.ToUint())
	}
	return amounts, nil
}
