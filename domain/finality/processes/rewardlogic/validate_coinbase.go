package rewardlogic

import (
	"github.com/dynastynet/finalityd/domain/finality/model/externalapi"
	"github.com/dynastynet/finalityd/domain/finality/ruleerrors"
	"github.com/pkg/errors"
)

// ValidateCoinbaseRewards checks that the coinbase of block pays exactly the
// finalization rewards due after its parent, right after the subsidy output.
func (rl *rewardLogic) ValidateCoinbaseRewards(block *externalapi.DomainBlock) error {
	coinbase := block.Coinbase()
	if coinbase == nil || !coinbase.IsCoinbase() || len(coinbase.Outputs) == 0 {
		return errors.Wrapf(ruleerrors.ErrNoTransactions, "block at height %d has no coinbase", block.Header.Height)
	}

	var expected []*externalapi.DomainTransactionOutput
	if rl.GetNumberOfRewardOutputs(block.Header.Height) > 0 {
		var err error
		expected, err = rl.GetFinalizationRewards(&block.Header.ParentHash)
		if err != nil {
			return err
		}
	}

	actual := coinbase.Outputs[1:]
	if len(actual) != len(expected) {
		return errors.Wrapf(ruleerrors.ErrBadFinalizationRewards, "coinbase has %d finalization reward outputs, "+
			"expected %d", len(actual), len(expected))
	}
	for i, output := range actual {
		if !output.Equal(expected[i]) {
			return errors.Wrapf(ruleerrors.ErrBadFinalizationRewards, "finalization reward output %d pays %d to %x, "+
				"expected %d to %x", i, output.Value, output.ScriptPublicKey, expected[i].Value, expected[i].ScriptPublicKey)
		}
	}
	return nil
}
