package dagconfig

import (
	"github.com/dynastynet/finalityd/domain/finality/model/externalapi"
	"github.com/dynastynet/finalityd/domain/finality/utils/ufp64"
)

const (
	// DefaultDynastyActivationDelay is the number of dynasties a validator
	// waits between its deposit and its first eligible vote.
	DefaultDynastyActivationDelay externalapi.Dynasty = 2

	// SupermajorityNumerator and SupermajorityDenominator define the share
	// of eligible deposits that must vote for a checkpoint to justify it.
	SupermajorityNumerator   = 2
	SupermajorityDenominator = 3
)

// FinalizationParams defines the finality gadget parameters of a network.
type FinalizationParams struct {
	// EpochLength is the number of consecutive blocks in every epoch.
	EpochLength uint32

	// MinDepositSize is the smallest deposit a validator can make.
	MinDepositSize uint64

	// DynastyActivationDelay is the number of dynasties between a deposit
	// and the dynasty at which the validator may vote.
	DynastyActivationDelay externalapi.Dynasty

	// FinalizerRewardRatio is the share of every block reward that goes to
	// finalizers.
	FinalizerRewardRatio ufp64.UFP64
}

// EpochOf returns the epoch that contains the given height.
func (p *FinalizationParams) EpochOf(height externalapi.BlockHeight) externalapi.Epoch {
	return externalapi.Epoch(uint64(height) / uint64(p.EpochLength))
}

// EpochStartHeight returns the height of the first block of the given epoch.
func (p *FinalizationParams) EpochStartHeight(epoch externalapi.Epoch) externalapi.BlockHeight {
	return externalapi.BlockHeight(uint64(epoch) * uint64(p.EpochLength))
}

// CheckpointHeight returns the height of the last block of the given epoch.
func (p *FinalizationParams) CheckpointHeight(epoch externalapi.Epoch) externalapi.BlockHeight {
	return externalapi.BlockHeight((uint64(epoch)+1)*uint64(p.EpochLength) - 1)
}

// IsCheckpoint returns whether the given height is the last height of its
// epoch.
func (p *FinalizationParams) IsCheckpoint(height externalapi.BlockHeight) bool {
	return (uint64(height)+1)%uint64(p.EpochLength) == 0
}

// IsEpochStart returns whether the given height is the first height of its
// epoch.
func (p *FinalizationParams) IsEpochStart(height externalapi.BlockHeight) bool {
	return uint64(height)%uint64(p.EpochLength) == 0
}
