package finalitystate

import (
	"bytes"
	"io"
	"sort"

	"github.com/dynastynet/finalityd/domain/dagconfig"
	"github.com/dynastynet/finalityd/domain/finality/model/externalapi"
	"github.com/dynastynet/finalityd/domain/finality/utils/multiset"
	"github.com/dynastynet/finalityd/util/binaryserializer"
	"github.com/pkg/errors"
)

const serializationVersion = 1

const (
	justifiedFlag = 1 << iota
	finalizedFlag
)

// Serialize returns the canonical binary encoding of the state. Maps are
// written in ascending key order so equal states serialize identically.
func (s *FinalizationState) Serialize() ([]byte, error) {
	buf := &bytes.Buffer{}
	err := s.serialize(buf)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *FinalizationState) serialize(w io.Writer) error {
	err := binaryserializer.PutUint8(w, serializationVersion)
	if err != nil {
		return err
	}
	for _, value := range []uint32{
		uint32(s.currentEpoch),
		uint32(s.currentDynasty),
		uint32(s.lastJustifiedEpoch),
		uint32(s.lastFinalizedEpoch),
		uint32(s.expectedSourceEpoch),
		uint32(s.dynastyFinalizedEpoch),
	} {
		err = binaryserializer.PutUint32(w, value)
		if err != nil {
			return err
		}
	}
	err = binaryserializer.PutUint64(w, s.curDynastyDeposits)
	if err != nil {
		return err
	}
	err = binaryserializer.PutUint64(w, s.prevDynastyDeposits)
	if err != nil {
		return err
	}

	validators := s.Validators()
	err = binaryserializer.PutUint32(w, uint32(len(validators)))
	if err != nil {
		return err
	}
	for _, validator := range validators {
		err = serializeValidator(w, validator)
		if err != nil {
			return err
		}
	}

	dynasties := make([]externalapi.Dynasty, 0, len(s.dynastyDeltas))
	for dynasty := range s.dynastyDeltas {
		dynasties = append(dynasties, dynasty)
	}
	sort.Slice(dynasties, func(i, j int) bool { return dynasties[i] < dynasties[j] })
	err = binaryserializer.PutUint32(w, uint32(len(dynasties)))
	if err != nil {
		return err
	}
	for _, dynasty := range dynasties {
		err = binaryserializer.PutUint32(w, uint32(dynasty))
		if err != nil {
			return err
		}
		err = binaryserializer.PutUint64(w, s.dynastyDeltas[dynasty])
		if err != nil {
			return err
		}
	}

	err = binaryserializer.PutUint32(w, uint32(len(s.checkpoints)))
	if err != nil {
		return err
	}
	for _, checkpoint := range s.checkpoints {
		err = serializeCheckpoint(w, checkpoint)
		if err != nil {
			return err
		}
	}
	return nil
}

func serializeValidator(w io.Writer, validator *Validator) error {
	err := binaryserializer.PutFixedBytes(w, validator.Address[:])
	if err != nil {
		return err
	}
	err = binaryserializer.PutUint64(w, validator.Deposit)
	if err != nil {
		return err
	}
	err = binaryserializer.PutUint32(w, uint32(validator.StartDynasty))
	if err != nil {
		return err
	}
	return binaryserializer.PutUint32(w, uint32(validator.EndDynasty))
}

func serializeCheckpoint(w io.Writer, checkpoint *Checkpoint) error {
	var flags uint8
	if checkpoint.IsJustified {
		flags |= justifiedFlag
	}
	if checkpoint.IsFinalized {
		flags |= finalizedFlag
	}
	err := binaryserializer.PutUint8(w, flags)
	if err != nil {
		return err
	}
	err = binaryserializer.PutUint64(w, checkpoint.CurDynastyDeposits)
	if err != nil {
		return err
	}
	err = binaryserializer.PutUint64(w, checkpoint.PrevDynastyDeposits)
	if err != nil {
		return err
	}
	err = serializeVotes(w, checkpoint.CurDynastyVotes)
	if err != nil {
		return err
	}
	err = serializeVotes(w, checkpoint.PrevDynastyVotes)
	if err != nil {
		return err
	}

	voters := make([]externalapi.ValidatorAddress, 0, len(checkpoint.Voters))
	for address := range checkpoint.Voters {
		voters = append(voters, address)
	}
	sort.Slice(voters, func(i, j int) bool { return lessAddress(voters[i], voters[j]) })
	err = binaryserializer.PutUint32(w, uint32(len(voters)))
	if err != nil {
		return err
	}
	for _, address := range voters {
		err = binaryserializer.PutFixedBytes(w, address[:])
		if err != nil {
			return err
		}
	}
	return nil
}

func serializeVotes(w io.Writer, votes map[externalapi.Epoch]uint64) error {
	epochs := make([]externalapi.Epoch, 0, len(votes))
	for epoch := range votes {
		epochs = append(epochs, epoch)
	}
	sort.Slice(epochs, func(i, j int) bool { return epochs[i] < epochs[j] })
	err := binaryserializer.PutUint32(w, uint32(len(epochs)))
	if err != nil {
		return err
	}
	for _, epoch := range epochs {
		err = binaryserializer.PutUint32(w, uint32(epoch))
		if err != nil {
			return err
		}
		err = binaryserializer.PutUint64(w, votes[epoch])
		if err != nil {
			return err
		}
	}
	return nil
}

// Deserialize decodes a state written by Serialize. The decoded state is
// checked for consistency.
func Deserialize(params *dagconfig.FinalizationParams, serialized []byte) (*FinalizationState, error) {
	r := bytes.NewReader(serialized)
	version, err := binaryserializer.Uint8(r)
	if err != nil {
		return nil, err
	}
	if version != serializationVersion {
		return nil, errors.Errorf("unknown finalization state serialization version %d", version)
	}

	s := &FinalizationState{
		params:        params,
		validators:    make(map[externalapi.ValidatorAddress]*Validator),
		dynastyDeltas: make(map[externalapi.Dynasty]uint64),
		validatorSet:  multiset.New(),
	}
	var header [6]uint32
	for i := range header {
		header[i], err = binaryserializer.Uint32(r)
		if err != nil {
			return nil, err
		}
	}
	s.currentEpoch = externalapi.Epoch(header[0])
	s.currentDynasty = externalapi.Dynasty(header[1])
	s.lastJustifiedEpoch = externalapi.Epoch(header[2])
	s.lastFinalizedEpoch = externalapi.Epoch(header[3])
	s.expectedSourceEpoch = externalapi.Epoch(header[4])
	s.dynastyFinalizedEpoch = externalapi.Epoch(header[5])
	s.curDynastyDeposits, err = binaryserializer.Uint64(r)
	if err != nil {
		return nil, err
	}
	s.prevDynastyDeposits, err = binaryserializer.Uint64(r)
	if err != nil {
		return nil, err
	}

	validatorCount, err := binaryserializer.Uint32(r)
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < validatorCount; i++ {
		validator, err := deserializeValidator(r)
		if err != nil {
			return nil, err
		}
		element, err := serializeValidatorElement(validator)
		if err != nil {
			return nil, err
		}
		s.validators[validator.Address] = validator
		s.validatorSet.Add(element)
	}

	deltaCount, err := binaryserializer.Uint32(r)
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < deltaCount; i++ {
		dynasty, err := binaryserializer.Uint32(r)
		if err != nil {
			return nil, err
		}
		amount, err := binaryserializer.Uint64(r)
		if err != nil {
			return nil, err
		}
		s.dynastyDeltas[externalapi.Dynasty(dynasty)] = amount
	}

	checkpointCount, err := binaryserializer.Uint32(r)
	if err != nil {
		return nil, err
	}
	if checkpointCount != uint32(s.currentEpoch)+1 {
		return nil, errors.Wrapf(ErrInconsistentState, "%d checkpoints in epoch %d",
			checkpointCount, s.currentEpoch)
	}
	s.checkpoints = make([]*Checkpoint, checkpointCount)
	for i := range s.checkpoints {
		s.checkpoints[i], err = deserializeCheckpoint(r)
		if err != nil {
			return nil, err
		}
	}

	if r.Len() != 0 {
		return nil, errors.Errorf("%d unexpected trailing bytes after the finalization state", r.Len())
	}
	err = s.CheckConsistency()
	if err != nil {
		return nil, err
	}
	return s, nil
}

func deserializeValidator(r io.Reader) (*Validator, error) {
	validator := &Validator{}
	err := binaryserializer.FixedBytes(r, validator.Address[:])
	if err != nil {
		return nil, err
	}
	validator.Deposit, err = binaryserializer.Uint64(r)
	if err != nil {
		return nil, err
	}
	startDynasty, err := binaryserializer.Uint32(r)
	if err != nil {
		return nil, err
	}
	endDynasty, err := binaryserializer.Uint32(r)
	if err != nil {
		return nil, err
	}
	validator.StartDynasty = externalapi.Dynasty(startDynasty)
	validator.EndDynasty = externalapi.Dynasty(endDynasty)
	return validator, nil
}

func deserializeCheckpoint(r io.Reader) (*Checkpoint, error) {
	flags, err := binaryserializer.Uint8(r)
	if err != nil {
		return nil, err
	}
	curDynastyDeposits, err := binaryserializer.Uint64(r)
	if err != nil {
		return nil, err
	}
	prevDynastyDeposits, err := binaryserializer.Uint64(r)
	if err != nil {
		return nil, err
	}
	checkpoint := newCheckpoint()
	checkpoint.CurDynastyDeposits = curDynastyDeposits
	checkpoint.PrevDynastyDeposits = prevDynastyDeposits
	checkpoint.IsJustified = flags&justifiedFlag != 0
	checkpoint.IsFinalized = flags&finalizedFlag != 0

	err = deserializeVotes(r, checkpoint.CurDynastyVotes)
	if err != nil {
		return nil, err
	}
	err = deserializeVotes(r, checkpoint.PrevDynastyVotes)
	if err != nil {
		return nil, err
	}

	voterCount, err := binaryserializer.Uint32(r)
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < voterCount; i++ {
		var address externalapi.ValidatorAddress
		err = binaryserializer.FixedBytes(r, address[:])
		if err != nil {
			return nil, err
		}
		checkpoint.Voters[address] = struct{}{}
	}
	return checkpoint, nil
}

func deserializeVotes(r io.Reader, votes map[externalapi.Epoch]uint64) error {
	count, err := binaryserializer.Uint32(r)
	if err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		epoch, err := binaryserializer.Uint32(r)
		if err != nil {
			return err
		}
		amount, err := binaryserializer.Uint64(r)
		if err != nil {
			return err
		}
		votes[externalapi.Epoch(epoch)] = amount
	}
	return nil
}
