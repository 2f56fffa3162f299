package model

import (
	"github.com/dynastynet/finalityd/domain/finality/finalitystate"
	"github.com/dynastynet/finalityd/domain/finality/model/externalapi"
)

// FinalityStateStore persists finalization states by block hash
type FinalityStateStore interface {
	Put(blockHash *externalapi.DomainHash, state *finalitystate.FinalizationState) error
	Get(blockHash *externalapi.DomainHash) (*finalitystate.FinalizationState, error)
	Has(blockHash *externalapi.DomainHash) (bool, error)
	Delete(blockHashes []*externalapi.DomainHash) error
	BlockHashes() ([]*externalapi.DomainHash, error)
}
