package validatoraddress

import (
	"github.com/dynastynet/finalityd/domain/finality/model/externalapi"
	"github.com/dynastynet/finalityd/domain/finality/utils/hashes"
	"github.com/kaspanet/go-secp256k1"
	"github.com/pkg/errors"
)

// FromPublicKey returns the address of the validator holding publicKey: the
// leading ValidatorAddressSize bytes of the hash of its serialization.
func FromPublicKey(publicKey *secp256k1.SchnorrPublicKey) (externalapi.ValidatorAddress, error) {
	var address externalapi.ValidatorAddress
	serialized, err := publicKey.Serialize()
	if err != nil {
		return address, errors.Wrap(err, "failed serializing the validator public key")
	}
	writer := hashes.NewValidatorAddressHashWriter()
	writer.InfallibleWrite(serialized[:])
	copy(address[:], writer.Finalize().ByteSlice())
	return address, nil
}

// FromPrivateKey parses a serialized Schnorr private key and returns the
// address of its public key.
func FromPrivateKey(privateKey []byte) (externalapi.ValidatorAddress, error) {
	keyPair, err := secp256k1.DeserializeSchnorrPrivateKeyFromSlice(privateKey)
	if err != nil {
		return externalapi.ValidatorAddress{}, errors.Wrap(err, "invalid validator private key")
	}
	publicKey, err := keyPair.SchnorrPublicKey()
	if err != nil {
		return externalapi.ValidatorAddress{}, errors.WithStack(err)
	}
	return FromPublicKey(publicKey)
}
