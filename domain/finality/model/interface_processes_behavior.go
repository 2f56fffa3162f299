package model

import "github.com/dynastynet/finalityd/domain/finality/model/externalapi"

// Behavior defines the block reward curve of the chain
type Behavior interface {
	CalculateBlockReward(height externalapi.BlockHeight) uint64
	CalculateFinalizationReward(height externalapi.BlockHeight) (uint64, error)
}
