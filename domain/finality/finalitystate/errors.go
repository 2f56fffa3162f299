package finalitystate

import "github.com/pkg/errors"

var (
	// ErrEpochOutOfOrder is returned when InitializeEpoch is called with a
	// height that doesn't start the epoch following the current one.
	ErrEpochOutOfOrder = errors.New("epoch initialized out of order")

	// ErrInconsistentState is returned when the state breaks one of its
	// invariants, such as a finalized checkpoint that isn't justified.
	ErrInconsistentState = errors.New("inconsistent finalization state")

	// ErrDepositOverflow is returned when a deposit or vote total doesn't
	// fit in 64 bits.
	ErrDepositOverflow = errors.New("deposit total overflows")
)
