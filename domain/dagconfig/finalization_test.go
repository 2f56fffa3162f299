package dagconfig

import (
	"testing"

	"github.com/dynastynet/finalityd/domain/finality/model/externalapi"
)

func TestEpochArithmetic(t *testing.T) {
	params := &FinalizationParams{EpochLength: 5}

	tests := []struct {
		height       externalapi.BlockHeight
		epoch        externalapi.Epoch
		isCheckpoint bool
		isEpochStart bool
	}{
		{0, 0, false, true},
		{3, 0, false, false},
		{4, 0, true, false},
		{5, 1, false, true},
		{9, 1, true, false},
		{10, 2, false, true},
		{29, 5, true, false},
	}
	for _, test := range tests {
		if epoch := params.EpochOf(test.height); epoch != test.epoch {
			t.Errorf("EpochOf(%d): expected %d, got %d", test.height, test.epoch, epoch)
		}
		if isCheckpoint := params.IsCheckpoint(test.height); isCheckpoint != test.isCheckpoint {
			t.Errorf("IsCheckpoint(%d): expected %t, got %t", test.height, test.isCheckpoint, isCheckpoint)
		}
		if isEpochStart := params.IsEpochStart(test.height); isEpochStart != test.isEpochStart {
			t.Errorf("IsEpochStart(%d): expected %t, got %t", test.height, test.isEpochStart, isEpochStart)
		}
	}
}

func TestEpochRoundTrip(t *testing.T) {
	for _, epochLength := range []uint32{1, 5, 50} {
		params := &FinalizationParams{EpochLength: epochLength}
		for epoch := externalapi.Epoch(0); epoch < 20; epoch++ {
			checkpointHeight := params.CheckpointHeight(epoch)
			if params.EpochOf(checkpointHeight) != epoch {
				t.Errorf("L=%d: EpochOf(CheckpointHeight(%d)) = %d", epochLength, epoch, params.EpochOf(checkpointHeight))
			}
			if !params.IsCheckpoint(checkpointHeight) {
				t.Errorf("L=%d: CheckpointHeight(%d)=%d is not a checkpoint", epochLength, epoch, checkpointHeight)
			}
			startHeight := params.EpochStartHeight(epoch)
			if params.EpochOf(startHeight) != epoch || !params.IsEpochStart(startHeight) {
				t.Errorf("L=%d: EpochStartHeight(%d)=%d is not the start of the epoch", epochLength, epoch, startHeight)
			}
			if checkpointHeight-startHeight != externalapi.BlockHeight(epochLength-1) {
				t.Errorf("L=%d: epoch %d spans %d heights", epochLength, epoch, checkpointHeight-startHeight+1)
			}
		}
	}
}
