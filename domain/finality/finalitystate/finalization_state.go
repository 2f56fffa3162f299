package finalitystate

import (
	"github.com/dynastynet/finalityd/domain/dagconfig"
	"github.com/dynastynet/finalityd/domain/finality/model/externalapi"
	"github.com/dynastynet/finalityd/domain/finality/utils/multiset"
	"github.com/pkg/errors"
)

// FinalizationState is the finality gadget state after some block. Every
// candidate tip owns its own instance; instances never share mutable data.
type FinalizationState struct {
	params *dagconfig.FinalizationParams

	validators    map[externalapi.ValidatorAddress]*Validator
	dynastyDeltas map[externalapi.Dynasty]uint64
	checkpoints   []*Checkpoint

	// validatorSet holds one serialized element per entry of validators.
	validatorSet *multiset.Multiset

	currentEpoch        externalapi.Epoch
	currentDynasty      externalapi.Dynasty
	curDynastyDeposits  uint64
	prevDynastyDeposits uint64
	lastJustifiedEpoch  externalapi.Epoch
	lastFinalizedEpoch  externalapi.Epoch
	expectedSourceEpoch externalapi.Epoch

	// dynastyFinalizedEpoch is the last finalized epoch at the time the
	// current dynasty began.
	dynastyFinalizedEpoch externalapi.Epoch
}

// New returns the state of the genesis block: epoch 0 whose checkpoint is
// justified and finalized, in dynasty 0, without validators.
func New(params *dagconfig.FinalizationParams) *FinalizationState {
	genesisCheckpoint := newCheckpoint()
	genesisCheckpoint.IsJustified = true
	genesisCheckpoint.IsFinalized = true

	return &FinalizationState{
		params:        params,
		validators:    make(map[externalapi.ValidatorAddress]*Validator),
		dynastyDeltas: make(map[externalapi.Dynasty]uint64),
		checkpoints:   []*Checkpoint{genesisCheckpoint},
		validatorSet:  multiset.New(),
	}
}

// Params returns the finalization parameters of the state.
func (s *FinalizationState) Params() *dagconfig.FinalizationParams {
	return s.params
}

// CurrentEpoch returns the epoch of the last initialized epoch.
func (s *FinalizationState) CurrentEpoch() externalapi.Epoch {
	return s.currentEpoch
}

// CurrentDynasty returns the current dynasty.
func (s *FinalizationState) CurrentDynasty() externalapi.Dynasty {
	return s.currentDynasty
}

// LastJustifiedEpoch returns the latest justified epoch.
func (s *FinalizationState) LastJustifiedEpoch() externalapi.Epoch {
	return s.lastJustifiedEpoch
}

// LastFinalizedEpoch returns the latest finalized epoch.
func (s *FinalizationState) LastFinalizedEpoch() externalapi.Epoch {
	return s.lastFinalizedEpoch
}

// ExpectedSourceEpoch returns the source epoch honest validators vote from
// in the current epoch.
func (s *FinalizationState) ExpectedSourceEpoch() externalapi.Epoch {
	return s.expectedSourceEpoch
}

// CurrentDynastyTotalDeposits returns the live sum of deposits eligible in
// the current dynasty.
func (s *FinalizationState) CurrentDynastyTotalDeposits() uint64 {
	return s.curDynastyDeposits
}

// PreviousDynastyTotalDeposits returns the live sum of deposits eligible in
// the previous dynasty.
func (s *FinalizationState) PreviousDynastyTotalDeposits() uint64 {
	return s.prevDynastyDeposits
}

// Checkpoint returns a copy of the checkpoint of the given epoch.
func (s *FinalizationState) Checkpoint(epoch externalapi.Epoch) (*Checkpoint, error) {
	if int(epoch) >= len(s.checkpoints) {
		return nil, errors.Errorf("no checkpoint for epoch %d, current epoch is %d", epoch, s.currentEpoch)
	}
	return s.checkpoints[epoch].Clone(), nil
}

// Checkpoints returns copies of all checkpoints indexed by epoch.
func (s *FinalizationState) Checkpoints() []*Checkpoint {
	checkpoints := make([]*Checkpoint, len(s.checkpoints))
	for i, checkpoint := range s.checkpoints {
		checkpoints[i] = checkpoint.Clone()
	}
	return checkpoints
}

// Clone returns a deep copy of the state. Mutating the copy never affects
// the original.
func (s *FinalizationState) Clone() *FinalizationState {
	clone := &FinalizationState{
		params:              s.params,
		validators:          make(map[externalapi.ValidatorAddress]*Validator, len(s.validators)),
		dynastyDeltas:       make(map[externalapi.Dynasty]uint64, len(s.dynastyDeltas)),
		checkpoints:         make([]*Checkpoint, len(s.checkpoints)),
		validatorSet:        s.validatorSet.Clone(),
		currentEpoch:        s.currentEpoch,
		currentDynasty:      s.currentDynasty,
		curDynastyDeposits:  s.curDynastyDeposits,
		prevDynastyDeposits: s.prevDynastyDeposits,
		lastJustifiedEpoch:  s.lastJustifiedEpoch,
		lastFinalizedEpoch:  s.lastFinalizedEpoch,
		expectedSourceEpoch: s.expectedSourceEpoch,

		dynastyFinalizedEpoch: s.dynastyFinalizedEpoch,
	}
	for address, validator := range s.validators {
		validatorCopy := *validator
		clone.validators[address] = &validatorCopy
	}
	for dynasty, amount := range s.dynastyDeltas {
		clone.dynastyDeltas[dynasty] = amount
	}
	for i, checkpoint := range s.checkpoints {
		clone.checkpoints[i] = checkpoint.Clone()
	}
	return clone
}

// Equal returns whether s equals to other
func (s *FinalizationState) Equal(other *FinalizationState) bool {
	if s.currentEpoch != other.currentEpoch ||
		s.currentDynasty != other.currentDynasty ||
		s.curDynastyDeposits != other.curDynastyDeposits ||
		s.prevDynastyDeposits != other.prevDynastyDeposits ||
		s.lastJustifiedEpoch != other.lastJustifiedEpoch ||
		s.lastFinalizedEpoch != other.lastFinalizedEpoch ||
		s.expectedSourceEpoch != other.expectedSourceEpoch ||
		s.dynastyFinalizedEpoch != other.dynastyFinalizedEpoch ||
		len(s.validators) != len(other.validators) ||
		len(s.dynastyDeltas) != len(other.dynastyDeltas) ||
		len(s.checkpoints) != len(other.checkpoints) {
		return false
	}
	for address, validator := range s.validators {
		otherValidator, ok := other.validators[address]
		if !ok || *otherValidator != *validator {
			return false
		}
	}
	for dynasty, amount := range s.dynastyDeltas {
		if otherAmount, ok := other.dynastyDeltas[dynasty]; !ok || otherAmount != amount {
			return false
		}
	}
	for i, checkpoint := range s.checkpoints {
		if !checkpoint.Equal(other.checkpoints[i]) {
			return false
		}
	}
	return true
}

// CheckConsistency verifies the invariants of the state.
func (s *FinalizationState) CheckConsistency() error {
	if len(s.checkpoints) != int(s.currentEpoch)+1 {
		return errors.Wrapf(ErrInconsistentState, "%d checkpoints in epoch %d",
			len(s.checkpoints), s.currentEpoch)
	}
	for epoch, checkpoint := range s.checkpoints {
		if checkpoint.IsFinalized && !checkpoint.IsJustified {
			return errors.Wrapf(ErrInconsistentState, "checkpoint %d is finalized but not justified", epoch)
		}
	}
	if s.lastJustifiedEpoch > s.currentEpoch || s.expectedSourceEpoch > s.currentEpoch {
		return errors.Wrapf(ErrInconsistentState, "last justified epoch %d or expected source epoch %d "+
			"is after the current epoch %d", s.lastJustifiedEpoch, s.expectedSourceEpoch, s.currentEpoch)
	}
	if s.lastFinalizedEpoch > s.lastJustifiedEpoch {
		return errors.Wrapf(ErrInconsistentState, "last finalized epoch %d is after last justified epoch %d",
			s.lastFinalizedEpoch, s.lastJustifiedEpoch)
	}
	if !s.checkpoints[s.lastJustifiedEpoch].IsJustified || !s.checkpoints[s.lastFinalizedEpoch].IsFinalized {
		return errors.Wrapf(ErrInconsistentState, "last justified %d or last finalized %d checkpoint has the wrong status",
			s.lastJustifiedEpoch, s.lastFinalizedEpoch)
	}
	if s.dynastyFinalizedEpoch > s.lastFinalizedEpoch {
		return errors.Wrapf(ErrInconsistentState, "dynasty %d began after finalization of epoch %d "+
			"while the last finalized epoch is %d", s.currentDynasty, s.dynastyFinalizedEpoch, s.lastFinalizedEpoch)
	}
	current := s.checkpoints[s.currentEpoch]
	if current.CurDynastyDeposits != s.curDynastyDeposits || current.PrevDynastyDeposits != s.prevDynastyDeposits {
		return errors.Wrapf(ErrInconsistentState, "checkpoint %d records deposits %d / %d while the dynasty "+
			"deposits are %d / %d", s.currentEpoch, current.CurDynastyDeposits, current.PrevDynastyDeposits,
			s.curDynastyDeposits, s.prevDynastyDeposits)
	}
	if s.prevDynastyDeposits > s.curDynastyDeposits {
		return errors.Wrapf(ErrInconsistentState, "previous dynasty deposits %d exceed current dynasty deposits %d",
			s.prevDynastyDeposits, s.curDynastyDeposits)
	}
	return nil
}

// StateInfo summarizes a FinalizationState.
type StateInfo struct {
	CurrentEpoch        externalapi.Epoch
	CurrentDynasty      externalapi.Dynasty
	LastJustifiedEpoch  externalapi.Epoch
	LastFinalizedEpoch  externalapi.Epoch
	ExpectedSourceEpoch externalapi.Epoch
	Validators          int
	CurDynastyDeposits  uint64
	PrevDynastyDeposits uint64
}

// Info returns a summary of the state.
func (s *FinalizationState) Info() *StateInfo {
	return &StateInfo{
		CurrentEpoch:        s.currentEpoch,
		CurrentDynasty:      s.currentDynasty,
		LastJustifiedEpoch:  s.lastJustifiedEpoch,
		LastFinalizedEpoch:  s.lastFinalizedEpoch,
		ExpectedSourceEpoch: s.expectedSourceEpoch,
		Validators:          len(s.validators),
		CurDynastyDeposits:  s.curDynastyDeposits,
		PrevDynastyDeposits: s.prevDynastyDeposits,
	}
}
