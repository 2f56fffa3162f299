package consensushashing

import (
	"github.com/dynastynet/finalityd/domain/finality/model/externalapi"
	"github.com/dynastynet/finalityd/domain/finality/utils/hashes"
	"github.com/dynastynet/finalityd/util/binaryserializer"
	"github.com/pkg/errors"
)

// BlockHash returns the given block's hash. It commits to the header and to
// every transaction of the block.
func BlockHash(block *externalapi.DomainBlock) *externalapi.DomainHash {
	writer := hashes.NewBlockHashWriter()
	err := serializeHeader(writer, block.Header)
	if err != nil {
		panic(errors.Wrap(err, "this should never happen. Hash digest should never return an error"))
	}
	for _, tx := range block.Transactions {
		writer.InfallibleWrite(TransactionHash(tx).ByteSlice())
	}
	return writer.Finalize()
}

// TransactionHash returns the given transaction's hash.
func TransactionHash(tx *externalapi.DomainTransaction) *externalapi.DomainHash {
	writer := hashes.NewTransactionHashWriter()
	err := serializeTransaction(writer, tx)
	if err != nil {
		panic(errors.Wrap(err, "this should never happen. Hash digest should never return an error"))
	}
	return writer.Finalize()
}

func serializeHeader(w hashes.HashWriter, header *externalapi.DomainBlockHeader) error {
	if err := binaryserializer.PutUint32(w, uint32(header.Version)); err != nil {
		return err
	}
	if err := binaryserializer.PutFixedBytes(w, header.ParentHash.ByteSlice()); err != nil {
		return err
	}
	if err := binaryserializer.PutUint64(w, uint64(header.Height)); err != nil {
		return err
	}
	if err := binaryserializer.PutUint64(w, uint64(header.Timestamp)); err != nil {
		return err
	}
	return binaryserializer.PutUint64(w, header.Nonce)
}

func serializeTransaction(w hashes.HashWriter, tx *externalapi.DomainTransaction) error {
	if err := binaryserializer.PutUint32(w, uint32(tx.Version)); err != nil {
		return err
	}
	if err := binaryserializer.PutUint8(w, uint8(tx.Type)); err != nil {
		return err
	}
	if err := binaryserializer.PutUint32(w, uint32(len(tx.Outputs))); err != nil {
		return err
	}
	for _, output := range tx.Outputs {
		if err := binaryserializer.PutUint64(w, output.Value); err != nil {
			return err
		}
		if err := binaryserializer.PutVarBytes(w, output.ScriptPublicKey); err != nil {
			return err
		}
	}
	if tx.Deposit != nil {
		if err := binaryserializer.PutFixedBytes(w, tx.Deposit.ValidatorAddress[:]); err != nil {
			return err
		}
		if err := binaryserializer.PutUint64(w, tx.Deposit.Amount); err != nil {
			return err
		}
	}
	if tx.Vote != nil {
		if err := binaryserializer.PutFixedBytes(w, tx.Vote.ValidatorAddress[:]); err != nil {
			return err
		}
		if err := binaryserializer.PutFixedBytes(w, tx.Vote.TargetHash.ByteSlice()); err != nil {
			return err
		}
		if err := binaryserializer.PutUint32(w, uint32(tx.Vote.SourceEpoch)); err != nil {
			return err
		}
		if err := binaryserializer.PutUint32(w, uint32(tx.Vote.TargetEpoch)); err != nil {
			return err
		}
	}
	return nil
}
