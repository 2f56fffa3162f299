package model

import "github.com/dynastynet/finalityd/domain/finality/model/externalapi"

// BlockDB provides read access to full blocks. Block returns an error
// matching database.ErrNotFound for blocks it doesn't have.
type BlockDB interface {
	Block(blockHash *externalapi.DomainHash) (*externalapi.DomainBlock, error)
}
