package blockindex

import (
	"sync"

	"github.com/dynastynet/finalityd/domain/finality/model"
	"github.com/dynastynet/finalityd/domain/finality/model/externalapi"
	"github.com/dynastynet/finalityd/domain/finality/ruleerrors"
	"github.com/pkg/errors"
)

const noParent = -1

// node is a block in the arena. Parents are referenced by their position in
// the arena rather than by pointer.
type node struct {
	hash   externalapi.DomainHash
	parent int
	height externalapi.BlockHeight
}

type blockIndex struct {
	sync.RWMutex
	nodes  []node
	byHash map[externalapi.DomainHash]int
}

// New instantiates a new, empty BlockIndex
func New() model.BlockIndex {
	return &blockIndex{
		byHash: make(map[externalapi.DomainHash]int),
	}
}

// AddBlock adds the block with the given header to the index. A block at
// height 0 is a genesis block; any other block must extend a known parent
// by exactly one height. Adding a known block is a no-op.
//
// This function is safe for concurrent access.
func (bi *blockIndex) AddBlock(blockHash *externalapi.DomainHash, header *externalapi.DomainBlockHeader) error {
	bi.Lock()
	defer bi.Unlock()

	if _, ok := bi.byHash[*blockHash]; ok {
		return nil
	}

	parent := noParent
	if header.Height > 0 {
		parentIndex, ok := bi.byHash[header.ParentHash]
		if !ok {
			return ruleerrors.NewErrMissingParent(&header.ParentHash)
		}
		if bi.nodes[parentIndex].height+1 != header.Height {
			return errors.Errorf("block %s has height %d while its parent %s has height %d",
				blockHash, header.Height, header.ParentHash, bi.nodes[parentIndex].height)
		}
		parent = parentIndex
	}

	bi.byHash[*blockHash] = len(bi.nodes)
	bi.nodes = append(bi.nodes, node{
		hash:   *blockHash,
		parent: parent,
		height: header.Height,
	})
	return nil
}

// HasBlock returns whether or not the index contains the provided hash.
//
// This function is safe for concurrent access.
func (bi *blockIndex) HasBlock(blockHash *externalapi.DomainHash) bool {
	bi.RLock()
	defer bi.RUnlock()
	_, ok := bi.byHash[*blockHash]
	return ok
}

func (bi *blockIndex) Height(blockHash *externalapi.DomainHash) (externalapi.BlockHeight, error) {
	bi.RLock()
	defer bi.RUnlock()
	index, err := bi.lookup(blockHash)
	if err != nil {
		return 0, err
	}
	return bi.nodes[index].height, nil
}

// Parent returns the parent of the given block, or nil for a genesis block.
func (bi *blockIndex) Parent(blockHash *externalapi.DomainHash) (*externalapi.DomainHash, error) {
	bi.RLock()
	defer bi.RUnlock()
	index, err := bi.lookup(blockHash)
	if err != nil {
		return nil, err
	}
	parent := bi.nodes[index].parent
	if parent == noParent {
		return nil, nil
	}
	parentHash := bi.nodes[parent].hash
	return &parentHash, nil
}

// Ancestor returns the block at the given height in the chain of blockHash.
// A block is its own ancestor at its height.
func (bi *blockIndex) Ancestor(blockHash *externalapi.DomainHash, height externalapi.BlockHeight) (*externalapi.DomainHash, error) {
	bi.RLock()
	defer bi.RUnlock()
	index, err := bi.lookup(blockHash)
	if err != nil {
		return nil, err
	}
	ancestor, err := bi.ancestor(index, height)
	if err != nil {
		return nil, err
	}
	ancestorHash := bi.nodes[ancestor].hash
	return &ancestorHash, nil
}

// IsInChainOf returns whether blockHash is tipHash or one of its ancestors.
func (bi *blockIndex) IsInChainOf(blockHash *externalapi.DomainHash, tipHash *externalapi.DomainHash) (bool, error) {
	bi.RLock()
	defer bi.RUnlock()
	index, err := bi.lookup(blockHash)
	if err != nil {
		return false, err
	}
	tipIndex, err := bi.lookup(tipHash)
	if err != nil {
		return false, err
	}
	if bi.nodes[index].height > bi.nodes[tipIndex].height {
		return false, nil
	}
	ancestor, err := bi.ancestor(tipIndex, bi.nodes[index].height)
	if err != nil {
		return false, err
	}
	return ancestor == index, nil
}

// ChainSegment returns the hashes of the chain of tipHash from fromHeight up
// to and including the tip, in ascending height order.
func (bi *blockIndex) ChainSegment(tipHash *externalapi.DomainHash,
	fromHeight externalapi.BlockHeight) ([]*externalapi.DomainHash, error) {

	bi.RLock()
	defer bi.RUnlock()
	index, err := bi.lookup(tipHash)
	if err != nil {
		return nil, err
	}
	tipHeight := bi.nodes[index].height
	if fromHeight > tipHeight {
		return nil, errors.Errorf("height %d is above the tip %s at height %d", fromHeight, tipHash, tipHeight)
	}

	segment := make([]*externalapi.DomainHash, tipHeight-fromHeight+1)
	for i := len(segment) - 1; i >= 0; i-- {
		hash := bi.nodes[index].hash
		segment[i] = &hash
		index = bi.nodes[index].parent
	}
	return segment, nil
}

// Count returns the number of blocks in the index.
func (bi *blockIndex) Count() int {
	bi.RLock()
	defer bi.RUnlock()
	return len(bi.nodes)
}

func (bi *blockIndex) lookup(blockHash *externalapi.DomainHash) (int, error) {
	index, ok := bi.byHash[*blockHash]
	if !ok {
		return 0, errors.Wrapf(model.ErrUnknownBlock, "block %s is not in the block index", blockHash)
	}
	return index, nil
}

func (bi *blockIndex) ancestor(index int, height externalapi.BlockHeight) (int, error) {
	if height > bi.nodes[index].height {
		return 0, errors.Errorf("block %s at height %d has no ancestor at height %d",
			bi.nodes[index].hash, bi.nodes[index].height, height)
	}
	for bi.nodes[index].height > height {
		index = bi.nodes[index].parent
	}
	return index, nil
}
