package model

import (
	"github.com/dynastynet/finalityd/domain/finality/finalitystate"
	"github.com/dynastynet/finalityd/domain/finality/model/externalapi"
)

// StateRepository maps blocks to the finalization state after them
type StateRepository interface {
	Find(blockHash *externalapi.DomainHash) (*finalitystate.FinalizationState, error)
	ProcessNewBlock(block *externalapi.DomainBlock) (*finalitystate.FinalizationState, error)
	Prune(tipHash *externalapi.DomainHash) (int, error)
}
