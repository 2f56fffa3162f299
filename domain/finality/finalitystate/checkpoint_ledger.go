package finalitystate

import (
	"github.com/dynastynet/finalityd/domain/dagconfig"
	"github.com/dynastynet/finalityd/domain/finality/model/externalapi"
	"github.com/dynastynet/finalityd/domain/finality/ruleerrors"
	"github.com/dynastynet/finalityd/domain/finality/utils/ufp64"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// InitializeEpoch opens the epoch that starts at the given height. height
// must be the first height of the epoch following the current one.
func (s *FinalizationState) InitializeEpoch(height externalapi.BlockHeight) error {
	newEpoch := s.currentEpoch + 1
	if !s.params.IsEpochStart(height) || s.params.EpochOf(height) != newEpoch {
		return errors.Wrapf(ErrEpochOutOfOrder, "cannot initialize epoch at height %d "+
			"while the current epoch is %d", height, s.currentEpoch)
	}

	checkpoint := newCheckpoint()
	s.checkpoints = append(s.checkpoints, checkpoint)
	s.currentEpoch = newEpoch

	// Without any stake in the current dynasty nobody could justify a
	// checkpoint, so the previous one is justified automatically.
	if s.curDynastyDeposits == 0 {
		s.instaJustify()
	}

	err := s.incrementDynastyIfFinalized()
	if err != nil {
		return err
	}
	checkpoint.CurDynastyDeposits = s.curDynastyDeposits
	checkpoint.PrevDynastyDeposits = s.prevDynastyDeposits
	s.expectedSourceEpoch = s.lastJustifiedEpoch

	log.Debugf("Initialized epoch %d at height %d: dynasty %d, last justified %d, last finalized %d",
		s.currentEpoch, height, s.currentDynasty, s.lastJustifiedEpoch, s.lastFinalizedEpoch)
	return nil
}

func (s *FinalizationState) instaJustify() {
	previousEpoch := s.currentEpoch - 1
	s.justify(previousEpoch)
	if previousEpoch > 0 && s.checkpoints[previousEpoch-1].IsJustified {
		s.finalize(previousEpoch - 1)
	}
}

// incrementDynastyIfFinalized starts a new dynasty once for every epoch
// initialization that follows a new finalization. The genesis checkpoint is
// finalized from the start and opens dynasty 1 in epoch 2.
func (s *FinalizationState) incrementDynastyIfFinalized() error {
	if s.currentEpoch < 2 {
		return nil
	}
	if s.currentDynasty > 0 && s.lastFinalizedEpoch <= s.dynastyFinalizedEpoch {
		return nil
	}
	newDynasty := s.currentDynasty + 1
	newDeposits, err := addDeposits(s.curDynastyDeposits, s.dynastyDeltas[newDynasty])
	if err != nil {
		return errors.Wrapf(err, "activating the deposits of dynasty %d", newDynasty)
	}
	s.dynastyFinalizedEpoch = s.lastFinalizedEpoch
	s.currentDynasty = newDynasty
	s.prevDynastyDeposits = s.curDynastyDeposits
	s.curDynastyDeposits = newDeposits
	delete(s.dynastyDeltas, newDynasty)
	return nil
}

// addDeposits returns a+b, or ErrDepositOverflow.
func addDeposits(a, b uint64) (uint64, error) {
	sum := a + b
	if sum < a {
		return 0, errors.Wrapf(ErrDepositOverflow, "%d + %d", a, b)
	}
	return sum, nil
}

func (s *FinalizationState) justify(epoch externalapi.Epoch) {
	checkpoint := s.checkpoints[epoch]
	if !checkpoint.IsJustified {
		checkpoint.IsJustified = true
		log.Debugf("Checkpoint %d justified", epoch)
	}
	if epoch > s.lastJustifiedEpoch {
		s.lastJustifiedEpoch = epoch
	}
}

func (s *FinalizationState) finalize(epoch externalapi.Epoch) {
	checkpoint := s.checkpoints[epoch]
	if !checkpoint.IsFinalized {
		checkpoint.IsFinalized = true
		log.Debugf("Checkpoint %d finalized", epoch)
	}
	if epoch > s.lastFinalizedEpoch {
		s.lastFinalizedEpoch = epoch
	}
}

// ValidateVote checks whether vote may be processed. It doesn't change the
// state.
func (s *FinalizationState) ValidateVote(vote *externalapi.Vote) error {
	validator, ok := s.validators[vote.ValidatorAddress]
	if !ok {
		return errors.Wrapf(ruleerrors.ErrVoterNotFound, "validator %s", vote.ValidatorAddress)
	}
	if !s.isInCurrentDynasty(validator) && !s.isInPreviousDynasty(validator) {
		return errors.Wrapf(ruleerrors.ErrVoterNotActive, "validator %s starts at dynasty %d, "+
			"current dynasty is %d", vote.ValidatorAddress, validator.StartDynasty, s.currentDynasty)
	}
	if vote.SourceEpoch >= vote.TargetEpoch {
		return errors.Wrapf(ruleerrors.ErrVoteSourceNotBeforeTarget, "source %d, target %d",
			vote.SourceEpoch, vote.TargetEpoch)
	}
	if s.currentEpoch == 0 || vote.TargetEpoch != s.currentEpoch-1 {
		return errors.Wrapf(ruleerrors.ErrVoteWrongTargetEpoch, "target %d while the current epoch is %d",
			vote.TargetEpoch, s.currentEpoch)
	}
	if !s.checkpoints[vote.SourceEpoch].IsJustified {
		return errors.Wrapf(ruleerrors.ErrVoteSourceNotJustified, "source %d", vote.SourceEpoch)
	}
	if s.checkpoints[vote.TargetEpoch].HasVoted(vote.ValidatorAddress) {
		return errors.Wrapf(ruleerrors.ErrVoteAlreadyCast, "validator %s, target %d",
			vote.ValidatorAddress, vote.TargetEpoch)
	}
	return nil
}

// ProcessVote validates vote and adds the voter's deposit to the target
// checkpoint. The target is justified once the votes linking it to the
// source reach the supermajority of both the current and the previous
// dynasty deposits. A justified target directly following its source
// finalizes the source.
func (s *FinalizationState) ProcessVote(vote *externalapi.Vote) error {
	err := s.ValidateVote(vote)
	if err != nil {
		return err
	}

	validator := s.validators[vote.ValidatorAddress]
	target := s.checkpoints[vote.TargetEpoch]
	curVotes := target.CurDynastyVotes[vote.SourceEpoch]
	prevVotes := target.PrevDynastyVotes[vote.SourceEpoch]
	inCurrent, inPrevious := s.isInCurrentDynasty(validator), s.isInPreviousDynasty(validator)
	if inCurrent {
		curVotes, err = addDeposits(curVotes, validator.Deposit)
		if err != nil {
			return errors.Wrapf(err, "current dynasty votes for checkpoint %d", vote.TargetEpoch)
		}
	}
	if inPrevious {
		prevVotes, err = addDeposits(prevVotes, validator.Deposit)
		if err != nil {
			return errors.Wrapf(err, "previous dynasty votes for checkpoint %d", vote.TargetEpoch)
		}
	}
	if inCurrent {
		target.CurDynastyVotes[vote.SourceEpoch] = curVotes
	}
	if inPrevious {
		target.PrevDynastyVotes[vote.SourceEpoch] = prevVotes
	}
	target.Voters[vote.ValidatorAddress] = struct{}{}

	log.Tracef("Vote %s: %d/%d current, %d/%d previous", vote,
		curVotes, s.curDynastyDeposits, prevVotes, s.prevDynastyDeposits)

	if !isSupermajority(curVotes, s.curDynastyDeposits) || !isSupermajority(prevVotes, s.prevDynastyDeposits) {
		return nil
	}
	s.justify(vote.TargetEpoch)
	if vote.TargetEpoch == vote.SourceEpoch+1 {
		s.finalize(vote.SourceEpoch)
	}
	return nil
}

// isSupermajority returns whether votes reach the supermajority of deposits.
func isSupermajority(votes, deposits uint64) bool {
	lhs := new(uint256.Int).Mul(uint256.NewInt(votes), uint256.NewInt(dagconfig.SupermajorityDenominator))
	rhs := new(uint256.Int).Mul(uint256.NewInt(deposits), uint256.NewInt(dagconfig.SupermajorityNumerator))
	return !lhs.Lt(rhs)
}

// CurrentDynastyVotes returns the current dynasty's vote weight for the last
// completed checkpoint from the expected source epoch.
func (s *FinalizationState) CurrentDynastyVotes() uint64 {
	if s.currentEpoch == 0 {
		return 0
	}
	return s.checkpoints[s.currentEpoch-1].CurDynastyVotes[s.expectedSourceEpoch]
}

// CurrentDynastyDeposits returns the deposits eligible to vote in the
// current dynasty, the same total ProcessVote justifies against.
func (s *FinalizationState) CurrentDynastyDeposits() uint64 {
	return s.curDynastyDeposits
}

// ParticipationFraction returns CurrentDynastyVotes / CurrentDynastyDeposits,
// or 1 when there are no deposits.
func (s *FinalizationState) ParticipationFraction() (ufp64.UFP64, error) {
	deposits := s.CurrentDynastyDeposits()
	if deposits == 0 {
		return ufp64.Unit, nil
	}
	return ufp64.DivUints(s.CurrentDynastyVotes(), deposits)
}

// RecommendedVote returns the vote the given validator should cast for the
// last completed checkpoint, whose hash is targetHash.
func (s *FinalizationState) RecommendedVote(address externalapi.ValidatorAddress,
	targetHash *externalapi.DomainHash) (*externalapi.Vote, error) {

	if s.currentEpoch == 0 {
		return nil, errors.Errorf("there is no completed checkpoint to vote for in epoch 0")
	}
	return &externalapi.Vote{
		ValidatorAddress: address,
		TargetHash:       *targetHash,
		SourceEpoch:      s.expectedSourceEpoch,
		TargetEpoch:      s.currentEpoch - 1,
	}, nil
}
