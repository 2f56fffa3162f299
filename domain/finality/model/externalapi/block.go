package externalapi

// DomainBlock represents a block
type DomainBlock struct {
	Header       *DomainBlockHeader
	Transactions []*DomainTransaction
}

// Clone returns a clone of DomainBlock
func (block *DomainBlock) Clone() *DomainBlock {
	transactionClone := make([]*DomainTransaction, len(block.Transactions))
	for i, tx := range block.Transactions {
		transactionClone[i] = tx.Clone()
	}

	return &DomainBlock{
		Header:       block.Header.Clone(),
		Transactions: transactionClone,
	}
}

// Coinbase returns the first transaction of the block, or nil if the block
// has no transactions.
func (block *DomainBlock) Coinbase() *DomainTransaction {
	if len(block.Transactions) == 0 {
		return nil
	}
	return block.Transactions[0]
}

// DomainBlockHeader represents the header part of a block
type DomainBlockHeader struct {
	Version    uint16
	ParentHash DomainHash
	Height     BlockHeight
	Timestamp  int64
	Nonce      uint64
}

// Clone returns a clone of DomainBlockHeader
func (header *DomainBlockHeader) Clone() *DomainBlockHeader {
	headerClone := *header
	return &headerClone
}
