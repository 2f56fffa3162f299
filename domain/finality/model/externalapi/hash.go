package externalapi

import (
	"encoding/hex"

	"github.com/pkg/errors"
)

// DomainHashSize is the size in bytes of block, transaction and state hashes.
const DomainHashSize = 32

// DomainHash identifies blocks, transactions and finalization states. It is
// comparable and may be used as a map key.
type DomainHash struct {
	hashArray [DomainHashSize]byte
}

// NewDomainHashFromByteArray returns a DomainHash holding a copy of hashBytes.
func NewDomainHashFromByteArray(hashBytes *[DomainHashSize]byte) *DomainHash {
	return &DomainHash{hashArray: *hashBytes}
}

// NewDomainHashFromByteSlice returns a DomainHash holding a copy of
// hashBytes, which must be exactly DomainHashSize long.
func NewDomainHashFromByteSlice(hashBytes []byte) (*DomainHash, error) {
	if len(hashBytes) != DomainHashSize {
		return nil, errors.Errorf("a hash is %d bytes long, got %d bytes", DomainHashSize, len(hashBytes))
	}
	var hashArray [DomainHashSize]byte
	copy(hashArray[:], hashBytes)
	return NewDomainHashFromByteArray(&hashArray), nil
}

func (hash DomainHash) String() string {
	return hex.EncodeToString(hash.hashArray[:])
}

// ByteArray returns a copy of the hash bytes.
func (hash *DomainHash) ByteArray() *[DomainHashSize]byte {
	hashArray := hash.hashArray
	return &hashArray
}

// ByteSlice returns a copy of the hash bytes as a slice.
func (hash *DomainHash) ByteSlice() []byte {
	return hash.ByteArray()[:]
}

// Equal returns whether hash and other are the same hash. Two nil hashes are
// equal.
func (hash *DomainHash) Equal(other *DomainHash) bool {
	if hash == nil || other == nil {
		return hash == other
	}
	return hash.hashArray == other.hashArray
}

// ZeroHash is the all-zero hash. It is the parent of the genesis block.
var ZeroHash DomainHash
