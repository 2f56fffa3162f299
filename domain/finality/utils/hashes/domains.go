package hashes

import (
	"hash"

	"github.com/dynastynet/finalityd/domain/finality/model/externalapi"
	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
)

// Every hashed object type gets its own blake2b key, so that equal
// serializations of different types never collide.
const (
	blockDomain             = "BlockHash"
	transactionHashDomain   = "TransactionHash"
	finalizationStateDomain = "FinalizationStateHash"
	validatorAddressDomain  = "ValidatorAddress"
)

// HashWriter incrementally hashes the data written into it. Obtain one
// through the domain specific constructors below.
type HashWriter struct {
	hash.Hash
}

func newHashWriter(domain string) HashWriter {
	blake, err := blake2b.New256([]byte(domain))
	if err != nil {
		panic(errors.Wrapf(err, "domain %s doesn't fit in a blake2b key", domain))
	}
	return HashWriter{blake}
}

// NewBlockHashWriter returns a HashWriter for block headers.
func NewBlockHashWriter() HashWriter {
	return newHashWriter(blockDomain)
}

// NewTransactionHashWriter returns a HashWriter for transactions.
func NewTransactionHashWriter() HashWriter {
	return newHashWriter(transactionHashDomain)
}

// NewFinalizationStateHashWriter returns a HashWriter for serialized
// finalization states.
func NewFinalizationStateHashWriter() HashWriter {
	return newHashWriter(finalizationStateDomain)
}

// NewValidatorAddressHashWriter returns a HashWriter for serialized
// validator public keys.
func NewValidatorAddressHashWriter() HashWriter {
	return newHashWriter(validatorAddressDomain)
}

// InfallibleWrite writes p, panicking on the error that hash.Hash promises
// never to return.
func (h HashWriter) InfallibleWrite(p []byte) {
	if _, err := h.Write(p); err != nil {
		panic(errors.Wrap(err, "hash.Hash returned a write error"))
	}
}

// Finalize returns the hash of everything written so far.
func (h HashWriter) Finalize() *externalapi.DomainHash {
	var digest [externalapi.DomainHashSize]byte
	copy(digest[:], h.Sum(nil))
	return externalapi.NewDomainHashFromByteArray(&digest)
}
