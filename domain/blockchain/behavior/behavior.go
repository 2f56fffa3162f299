package behavior

import (
	"github.com/dynastynet/finalityd/domain/dagconfig"
	"github.com/dynastynet/finalityd/domain/finality/model"
	"github.com/dynastynet/finalityd/domain/finality/model/externalapi"
	"github.com/dynastynet/finalityd/domain/finality/utils/ufp64"
)

type behavior struct {
	params *dagconfig.Params
}

// New instantiates the Behavior of the network defined by params
func New(params *dagconfig.Params) model.Behavior {
	return &behavior{params: params}
}

// CalculateBlockReward returns the subsidy of the block at the given height.
//
// The subsidy is halved every SubsidyReductionInterval blocks. Mathematically
// this is: baseSubsidy / 2^(height/SubsidyReductionInterval)
func (b *behavior) CalculateBlockReward(height externalapi.BlockHeight) uint64 {
	if b.params.SubsidyReductionInterval == 0 {
		return b.params.BaseSubsidy
	}
	return b.params.BaseSubsidy >> (uint64(height) / b.params.SubsidyReductionInterval)
}

// CalculateFinalizationReward returns the share of the block reward at the
// given height that is paid to finalizers, floored to a whole amount.
func (b *behavior) CalculateFinalizationReward(height externalapi.BlockHeight) (uint64, error) {
	reward, err := ufp64.MulByUint(b.params.Finalization.FinalizerRewardRatio, b.CalculateBlockReward(height))
	if err != nil {
		return 0, err
	}
	return reward.ToUint(), nil
}
