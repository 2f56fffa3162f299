package model

import "github.com/dynastynet/finalityd/domain/finality/model/externalapi"

// BlockIndex keeps the hash, parent and height of every known block.
type BlockIndex interface {
	AddBlock(blockHash *externalapi.DomainHash, header *externalapi.DomainBlockHeader) error
	HasBlock(blockHash *externalapi.DomainHash) bool
	Height(blockHash *externalapi.DomainHash) (externalapi.BlockHeight, error)
	Parent(blockHash *externalapi.DomainHash) (*externalapi.DomainHash, error)
	Ancestor(blockHash *externalapi.DomainHash, height externalapi.BlockHeight) (*externalapi.DomainHash, error)
	IsInChainOf(blockHash *externalapi.DomainHash, tipHash *externalapi.DomainHash) (bool, error)
	ChainSegment(tipHash *externalapi.DomainHash, fromHeight externalapi.BlockHeight) ([]*externalapi.DomainHash, error)
	Count() int
}
