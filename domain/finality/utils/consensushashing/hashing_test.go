package consensushashing

import (
	"testing"

	"github.com/dynastynet/finalityd/domain/finality/model/externalapi"
)

func TestBlockHashCommitsToTransactions(t *testing.T) {
	block := &externalapi.DomainBlock{
		Header: &externalapi.DomainBlockHeader{Height: 5},
		Transactions: []*externalapi.DomainTransaction{
			{
				Type:    externalapi.TxTypeCoinbase,
				Outputs: []*externalapi.DomainTransactionOutput{{Value: 100, ScriptPublicKey: []byte{1}}},
			},
		},
	}
	hash := BlockHash(block)
	if !BlockHash(block.Clone()).Equal(hash) {
		t.Fatalf("TestBlockHashCommitsToTransactions: hash of a clone differs")
	}

	withVote := block.Clone()
	withVote.Transactions = append(withVote.Transactions, &externalapi.DomainTransaction{
		Type: externalapi.TxTypeVote,
		Vote: &externalapi.Vote{SourceEpoch: 1, TargetEpoch: 2},
	})
	if BlockHash(withVote).Equal(hash) {
		t.Fatalf("TestBlockHashCommitsToTransactions: adding a transaction didn't change the hash")
	}

	differentHeight := block.Clone()
	differentHeight.Header.Height = 6
	if BlockHash(differentHeight).Equal(hash) {
		t.Fatalf("TestBlockHashCommitsToTransactions: changing the height didn't change the hash")
	}
}
