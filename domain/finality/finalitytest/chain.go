package finalitytest

import (
	"sync"

	"github.com/dynastynet/finalityd/domain/dagconfig"
	"github.com/dynastynet/finalityd/domain/finality/model/externalapi"
	"github.com/dynastynet/finalityd/domain/finality/utils/consensushashing"
	"github.com/dynastynet/finalityd/infrastructure/db/database"
	"github.com/pkg/errors"
)

// Chain is an in-memory block tree for tests and simulations. It implements
// model.BlockDB.
type Chain struct {
	sync.RWMutex
	params *dagconfig.Params
	blocks map[externalapi.DomainHash]*externalapi.DomainBlock
	nonce  uint64
}

// NewChain returns a Chain that holds the genesis block of params.
func NewChain(params *dagconfig.Params) *Chain {
	return &Chain{
		params: params,
		blocks: map[externalapi.DomainHash]*externalapi.DomainBlock{
			*params.GenesisHash: params.GenesisBlock,
		},
	}
}

// Params returns the network parameters of the chain.
func (c *Chain) Params() *dagconfig.Params {
	return c.params
}

// GenesisHash returns the hash of the genesis block.
func (c *Chain) GenesisHash() *externalapi.DomainHash {
	return c.params.GenesisHash
}

// Block returns a copy of the block with the given hash.
func (c *Chain) Block(blockHash *externalapi.DomainHash) (*externalapi.DomainBlock, error) {
	c.RLock()
	defer c.RUnlock()
	block, ok := c.blocks[*blockHash]
	if !ok {
		return nil, errors.Wrapf(database.ErrNotFound, "block %s not found", blockHash)
	}
	return block.Clone(), nil
}

// RemoveBlock forgets the block with the given hash.
func (c *Chain) RemoveBlock(blockHash *externalapi.DomainHash) {
	c.Lock()
	defer c.Unlock()
	delete(c.blocks, *blockHash)
}

// CoinbaseScript returns the script of the subsidy output of the coinbase of
// blocks at the given height.
func CoinbaseScript(height externalapi.BlockHeight) []byte {
	return []byte{0x76, 0xa9, 0x14, byte(height >> 8), byte(height), 0x88, 0xac}
}

// BuildBlock creates a block on top of parentHash, adds it to the chain and
// returns it. The coinbase pays the subsidy to CoinbaseScript(height)
// followed by rewardOutputs.
func (c *Chain) BuildBlock(parentHash *externalapi.DomainHash,
	rewardOutputs []*externalapi.DomainTransactionOutput,
	transactions ...*externalapi.DomainTransaction) (*externalapi.DomainBlock, error) {

	c.Lock()
	defer c.Unlock()
	parent, ok := c.blocks[*parentHash]
	if !ok {
		return nil, errors.Errorf("parent %s not found", parentHash)
	}
	height := parent.Header.Height + 1

	coinbase := &externalapi.DomainTransaction{
		Type: externalapi.TxTypeCoinbase,
		Outputs: append([]*externalapi.DomainTransactionOutput{
			{Value: c.params.BaseSubsidy, ScriptPublicKey: CoinbaseScript(height)},
		}, rewardOutputs...),
	}
	c.nonce++
	block := &externalapi.DomainBlock{
		Header: &externalapi.DomainBlockHeader{
			ParentHash: *parentHash,
			Height:     height,
			Timestamp:  parent.Header.Timestamp + 1000,
			Nonce:      c.nonce,
		},
		Transactions: append([]*externalapi.DomainTransaction{coinbase}, transactions...),
	}
	c.blocks[*consensushashing.BlockHash(block)] = block
	return block.Clone(), nil
}

// Extend adds count empty blocks on top of tipHash and returns the hash of
// the last one.
func (c *Chain) Extend(tipHash *externalapi.DomainHash, count int) (*externalapi.DomainHash, error) {
	for i := 0; i < count; i++ {
		block, err := c.BuildBlock(tipHash, nil)
		if err != nil {
			return nil, err
		}
		tipHash = consensushashing.BlockHash(block)
	}
	return tipHash, nil
}

// Ancestor returns the hash of the block at the given height in the chain
// of tipHash.
func (c *Chain) Ancestor(tipHash *externalapi.DomainHash, height externalapi.BlockHeight) (*externalapi.DomainHash, error) {
	c.RLock()
	defer c.RUnlock()
	current := tipHash
	for {
		block, ok := c.blocks[*current]
		if !ok {
			return nil, errors.Errorf("block %s not found", current)
		}
		if block.Header.Height < height {
			return nil, errors.Errorf("block %s is below height %d", tipHash, height)
		}
		if block.Header.Height == height {
			return current, nil
		}
		current = &block.Header.ParentHash
	}
}

// DepositTransaction returns a deposit of amount by address.
func DepositTransaction(address externalapi.ValidatorAddress, amount uint64) *externalapi.DomainTransaction {
	return &externalapi.DomainTransaction{
		Type:    externalapi.TxTypeDeposit,
		Deposit: &externalapi.Deposit{ValidatorAddress: address, Amount: amount},
	}
}

// VoteTransaction returns a vote by address from sourceEpoch to the
// checkpoint of targetEpoch in the chain of tipHash.
func (c *Chain) VoteTransaction(tipHash *externalapi.DomainHash, address externalapi.ValidatorAddress,
	sourceEpoch, targetEpoch externalapi.Epoch) (*externalapi.DomainTransaction, error) {

	targetHash, err := c.Ancestor(tipHash, c.params.Finalization.CheckpointHeight(targetEpoch))
	if err != nil {
		return nil, err
	}
	return &externalapi.DomainTransaction{
		Type: externalapi.TxTypeVote,
		Vote: &externalapi.Vote{
			ValidatorAddress: address,
			TargetHash:       *targetHash,
			SourceEpoch:      sourceEpoch,
			TargetEpoch:      targetEpoch,
		},
	}, nil
}

// ValidatorAddress returns a deterministic address for tests.
func ValidatorAddress(id byte) externalapi.ValidatorAddress {
	var address externalapi.ValidatorAddress
	for i := range address {
		address[i] = id
	}
	return address
}
