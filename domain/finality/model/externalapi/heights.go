package externalapi

// BlockHeight is the number of ancestors of a block on its chain. The
// genesis block has height 0.
type BlockHeight uint64

// Epoch is the index of a fixed-length run of consecutive block heights.
// Epoch 0 contains the genesis block.
type Epoch uint32

// Dynasty is a generation counter of the validator set. It advances at an
// epoch boundary once the checkpoint two epochs back is finalized.
type Dynasty uint32

// MaxDynasty is the end dynasty of a validator that never exits.
const MaxDynasty = Dynasty(^uint32(0))
