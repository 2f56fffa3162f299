package model

import "github.com/dynastynet/finalityd/domain/finality/model/externalapi"

// RewardLogic computes the finalization rewards a coinbase must pay
type RewardLogic interface {
	GetFinalizationRewards(tipHash *externalapi.DomainHash) ([]*externalapi.DomainTransactionOutput, error)
	GetFinalizationRewardAmounts(tipHash *externalapi.DomainHash) ([]uint64, error)
	GetNumberOfRewardOutputs(height externalapi.BlockHeight) uint64
	ValidateCoinbaseRewards(block *externalapi.DomainBlock) error
}
