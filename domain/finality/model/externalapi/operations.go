package externalapi

import "fmt"

// Deposit locks Amount on behalf of ValidatorAddress so that it can
// participate in finalization.
type Deposit struct {
	ValidatorAddress ValidatorAddress
	Amount           uint64
}

func (deposit Deposit) String() string {
	return fmt.Sprintf("deposit(%s, %d)", deposit.ValidatorAddress, deposit.Amount)
}

// Vote is a finalizer's attestation linking a justified source checkpoint
// to a target checkpoint.
type Vote struct {
	ValidatorAddress ValidatorAddress
	TargetHash       DomainHash
	SourceEpoch      Epoch
	TargetEpoch      Epoch
}

func (vote Vote) String() string {
	return fmt.Sprintf("vote(%s, %s, %d -> %d)", vote.ValidatorAddress, vote.TargetHash,
		vote.SourceEpoch, vote.TargetEpoch)
}
