package finalitystate

import (
	"github.com/dynastynet/finalityd/domain/finality/model/externalapi"
)

// CheckpointStatus is the finality status of a checkpoint.
type CheckpointStatus uint8

// Checkpoint statuses. Transitions only go forward.
const (
	CheckpointPending CheckpointStatus = iota
	CheckpointJustified
	CheckpointFinalized
)

func (status CheckpointStatus) String() string {
	switch status {
	case CheckpointPending:
		return "pending"
	case CheckpointJustified:
		return "justified"
	case CheckpointFinalized:
		return "finalized"
	}
	return "unknown"
}

// Checkpoint is the vote ledger of one epoch's checkpoint.
type Checkpoint struct {
	IsJustified bool
	IsFinalized bool

	// CurDynastyDeposits and PrevDynastyDeposits are the deposits eligible
	// in the current and previous dynasty of the epoch, once the dynasty
	// advance at its initialization took place.
	CurDynastyDeposits  uint64
	PrevDynastyDeposits uint64

	// CurDynastyVotes and PrevDynastyVotes map a source epoch to the deposit
	// weight that voted for this checkpoint from that source.
	CurDynastyVotes  map[externalapi.Epoch]uint64
	PrevDynastyVotes map[externalapi.Epoch]uint64

	// Voters holds every validator that voted for this checkpoint.
	Voters map[externalapi.ValidatorAddress]struct{}
}

func newCheckpoint() *Checkpoint {
	return &Checkpoint{
		CurDynastyVotes:  make(map[externalapi.Epoch]uint64),
		PrevDynastyVotes: make(map[externalapi.Epoch]uint64),
		Voters:           make(map[externalapi.ValidatorAddress]struct{}),
	}
}

// Status returns the finality status of the checkpoint.
func (cp *Checkpoint) Status() CheckpointStatus {
	switch {
	case cp.IsFinalized:
		return CheckpointFinalized
	case cp.IsJustified:
		return CheckpointJustified
	}
	return CheckpointPending
}

// HasVoted returns whether the given validator voted for this checkpoint.
func (cp *Checkpoint) HasVoted(address externalapi.ValidatorAddress) bool {
	_, ok := cp.Voters[address]
	return ok
}

// Clone returns a deep copy of the checkpoint.
func (cp *Checkpoint) Clone() *Checkpoint {
	clone := &Checkpoint{
		IsJustified:         cp.IsJustified,
		IsFinalized:         cp.IsFinalized,
		CurDynastyDeposits:  cp.CurDynastyDeposits,
		PrevDynastyDeposits: cp.PrevDynastyDeposits,
		CurDynastyVotes:     make(map[externalapi.Epoch]uint64, len(cp.CurDynastyVotes)),
		PrevDynastyVotes:    make(map[externalapi.Epoch]uint64, len(cp.PrevDynastyVotes)),
		Voters:              make(map[externalapi.ValidatorAddress]struct{}, len(cp.Voters)),
	}
	for epoch, votes := range cp.CurDynastyVotes {
		clone.CurDynastyVotes[epoch] = votes
	}
	for epoch, votes := range cp.PrevDynastyVotes {
		clone.PrevDynastyVotes[epoch] = votes
	}
	for address := range cp.Voters {
		clone.Voters[address] = struct{}{}
	}
	return clone
}

// Equal returns whether cp equals to other
func (cp *Checkpoint) Equal(other *Checkpoint) bool {
	if cp.IsJustified != other.IsJustified ||
		cp.IsFinalized != other.IsFinalized ||
		cp.CurDynastyDeposits != other.CurDynastyDeposits ||
		cp.PrevDynastyDeposits != other.PrevDynastyDeposits ||
		len(cp.CurDynastyVotes) != len(other.CurDynastyVotes) ||
		len(cp.PrevDynastyVotes) != len(other.PrevDynastyVotes) ||
		len(cp.Voters) != len(other.Voters) {
		return false
	}
	for epoch, votes := range cp.CurDynastyVotes {
		if otherVotes, ok := other.CurDynastyVotes[epoch]; !ok || otherVotes != votes {
			return false
		}
	}
	for epoch, votes := range cp.PrevDynastyVotes {
		if otherVotes, ok := other.PrevDynastyVotes[epoch]; !ok || otherVotes != votes {
			return false
		}
	}
	for address := range cp.Voters {
		if !other.HasVoted(address) {
			return false
		}
	}
	return true
}
