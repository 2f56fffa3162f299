package externalapi

import "bytes"

// TransactionType distinguishes finality operations from regular payments.
type TransactionType uint8

// Transaction types.
const (
	TxTypeRegular TransactionType = iota
	TxTypeCoinbase
	TxTypeDeposit
	TxTypeVote
)

var transactionTypeStrings = map[TransactionType]string{
	TxTypeRegular:  "regular",
	TxTypeCoinbase: "coinbase",
	TxTypeDeposit:  "deposit",
	TxTypeVote:     "vote",
}

func (txType TransactionType) String() string {
	if s, ok := transactionTypeStrings[txType]; ok {
		return s
	}
	return "unknown"
}

// DomainTransaction represents a transaction as far as finality is
// concerned. Deposit is set for TxTypeDeposit and Vote for TxTypeVote.
type DomainTransaction struct {
	Version uint16
	Type    TransactionType
	Outputs []*DomainTransactionOutput
	Deposit *Deposit
	Vote    *Vote
}

// Clone returns a clone of DomainTransaction
func (tx *DomainTransaction) Clone() *DomainTransaction {
	outputsClone := make([]*DomainTransactionOutput, len(tx.Outputs))
	for i, output := range tx.Outputs {
		outputsClone[i] = output.Clone()
	}
	var depositClone *Deposit
	if tx.Deposit != nil {
		deposit := *tx.Deposit
		depositClone = &deposit
	}
	var voteClone *Vote
	if tx.Vote != nil {
		vote := *tx.Vote
		voteClone = &vote
	}
	return &DomainTransaction{
		Version: tx.Version,
		Type:    tx.Type,
		Outputs: outputsClone,
		Deposit: depositClone,
		Vote:    voteClone,
	}
}

// IsCoinbase returns true if the transaction is a coinbase transaction
func (tx *DomainTransaction) IsCoinbase() bool {
	return tx.Type == TxTypeCoinbase
}

// DomainTransactionOutput represents a transaction output. Finalization
// reward outputs use the same type.
type DomainTransactionOutput struct {
	Value           uint64
	ScriptPublicKey []byte
}

// Clone returns a clone of DomainTransactionOutput
func (output *DomainTransactionOutput) Clone() *DomainTransactionOutput {
	scriptClone := make([]byte, len(output.ScriptPublicKey))
	copy(scriptClone, output.ScriptPublicKey)
	return &DomainTransactionOutput{
		Value:           output.Value,
		ScriptPublicKey: scriptClone,
	}
}

// Equal returns whether output equals to other
func (output *DomainTransactionOutput) Equal(other *DomainTransactionOutput) bool {
	if output == nil || other == nil {
		return output == other
	}
	return output.Value == other.Value &&
		bytes.Equal(output.ScriptPublicKey, other.ScriptPublicKey)
}
