package finalitystate

import (
	"bytes"

	"github.com/dynastynet/finalityd/domain/finality/model/externalapi"
	"github.com/dynastynet/finalityd/domain/finality/utils/hashes"
	"github.com/pkg/errors"
)

// Hash returns a hash of the canonical serialization of the state. Two nodes
// agree on the state after a block iff they agree on its hash.
func (s *FinalizationState) Hash() (*externalapi.DomainHash, error) {
	writer := hashes.NewFinalizationStateHashWriter()
	err := s.serialize(writer)
	if err != nil {
		return nil, err
	}
	return writer.Finalize(), nil
}

// ValidatorSetCommitment returns an order independent MuHash commitment to
// the registered validators and their deposits. It is maintained as
// deposits are processed.
func (s *FinalizationState) ValidatorSetCommitment() *externalapi.DomainHash {
	return s.validatorSet.Hash()
}

func serializeValidatorElement(validator *Validator) ([]byte, error) {
	buf := &bytes.Buffer{}
	err := serializeValidator(buf, validator)
	if err != nil {
		return nil, errors.Wrapf(err, "failed serializing validator %s", validator.Address)
	}
	return buf.Bytes(), nil
}
