package dagconfig

import (
	"github.com/dynastynet/finalityd/domain/finality/model/externalapi"
	"github.com/dynastynet/finalityd/domain/finality/utils/consensushashing"
)

// genesisCoinbaseTx is the coinbase transaction of the genesis block. Its
// single output is unspendable.
var genesisCoinbaseTx = externalapi.DomainTransaction{
	Version: 0,
	Type:    externalapi.TxTypeCoinbase,
	Outputs: []*externalapi.DomainTransactionOutput{
		{Value: 0, ScriptPublicKey: []byte{0x6a}}, // OP_RETURN
	},
}

// genesisBlock defines the genesis block of the chain.
var genesisBlock = externalapi.DomainBlock{
	Header: &externalapi.DomainBlockHeader{
		Version:    0,
		ParentHash: externalapi.ZeroHash,
		Height:     0,
		Timestamp:  0x17305aa654a,
		Nonce:      0,
	},
	Transactions: []*externalapi.DomainTransaction{&genesisCoinbaseTx},
}

// genesisHash is the hash of the genesis block.
var genesisHash = consensushashing.BlockHash(&genesisBlock)
