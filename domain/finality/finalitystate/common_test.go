package finalitystate

import (
	"testing"

	"github.com/dynastynet/finalityd/domain/dagconfig"
	"github.com/dynastynet/finalityd/domain/finality/model/externalapi"
)

func testParams() *dagconfig.FinalizationParams {
	params := dagconfig.SimnetParams.Finalization
	return &params
}

func testAddress(b byte) externalapi.ValidatorAddress {
	var address externalapi.ValidatorAddress
	address[0] = b
	address[externalapi.ValidatorAddressSize-1] = b
	return address
}

func mustInitializeEpochs(t *testing.T, s *FinalizationState, upToEpoch externalapi.Epoch) {
	for epoch := s.CurrentEpoch() + 1; epoch <= upToEpoch; epoch++ {
		err := s.InitializeEpoch(s.Params().EpochStartHeight(epoch))
		if err != nil {
			t.Fatalf("InitializeEpoch(%d): %+v", epoch, err)
		}
	}
}

func mustDeposit(t *testing.T, s *FinalizationState, address externalapi.ValidatorAddress, amount uint64) {
	err := s.ProcessDeposit(address, amount)
	if err != nil {
		t.Fatalf("ProcessDeposit(%s, %d): %+v", address, amount, err)
	}
}

func vote(address externalapi.ValidatorAddress, source, target externalapi.Epoch) *externalapi.Vote {
	return &externalapi.Vote{
		ValidatorAddress: address,
		SourceEpoch:      source,
		TargetEpoch:      target,
	}
}

func mustVote(t *testing.T, s *FinalizationState, address externalapi.ValidatorAddress, source, target externalapi.Epoch) {
	err := s.ProcessVote(vote(address, source, target))
	if err != nil {
		t.Fatalf("ProcessVote(%s, %d -> %d): %+v", address, source, target, err)
	}
}
