package externalapi

import (
	"encoding/hex"

	"github.com/pkg/errors"
)

// ValidatorAddressSize is the size of a validator address in bytes.
const ValidatorAddressSize = 20

// ValidatorAddress identifies a validator. It is the hash160 of the
// validator's public key.
type ValidatorAddress [ValidatorAddressSize]byte

// NewValidatorAddressFromString parses a hex-encoded validator address.
func NewValidatorAddressFromString(addressString string) (ValidatorAddress, error) {
	var address ValidatorAddress
	if len(addressString) != ValidatorAddressSize*2 {
		return address, errors.Errorf("validator address string length is %d, while it should be be %d",
			len(addressString), ValidatorAddressSize*2)
	}
	decoded, err := hex.DecodeString(addressString)
	if err != nil {
		return address, errors.WithStack(err)
	}
	copy(address[:], decoded)
	return address, nil
}

func (address ValidatorAddress) String() string {
	return hex.EncodeToString(address[:])
}
