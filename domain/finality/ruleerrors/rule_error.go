package ruleerrors

import (
	"fmt"

	"github.com/dynastynet/finalityd/domain/finality/model/externalapi"
	"github.com/pkg/errors"
)

// These constants are used to identify a specific RuleError.
var (
	// ErrDepositInsufficient indicates a deposit below the minimum deposit
	// size.
	ErrDepositInsufficient = newRuleError("ErrDepositInsufficient")

	// ErrDepositDuplicate indicates a deposit from an address that already
	// has one.
	ErrDepositDuplicate = newRuleError("ErrDepositDuplicate")

	// ErrVoterNotFound indicates a vote from an address without a deposit.
	ErrVoterNotFound = newRuleError("ErrVoterNotFound")

	// ErrVoterNotActive indicates a vote from a validator that is in neither
	// the current nor the previous dynasty.
	ErrVoterNotActive = newRuleError("ErrVoterNotActive")

	// ErrVoteSourceNotBeforeTarget indicates a vote whose source epoch is
	// not strictly before its target epoch.
	ErrVoteSourceNotBeforeTarget = newRuleError("ErrVoteSourceNotBeforeTarget")

	// ErrVoteWrongTargetEpoch indicates a vote for a checkpoint other than
	// the last completed one.
	ErrVoteWrongTargetEpoch = newRuleError("ErrVoteWrongTargetEpoch")

	// ErrVoteWrongTargetHash indicates a vote whose target hash isn't the
	// checkpoint block of its target epoch in the chain of the voting block.
	ErrVoteWrongTargetHash = newRuleError("ErrVoteWrongTargetHash")

	// ErrVoteSourceNotJustified indicates a vote whose source checkpoint
	// isn't justified.
	ErrVoteSourceNotJustified = newRuleError("ErrVoteSourceNotJustified")

	// ErrVoteAlreadyCast indicates the validator already voted for the
	// target checkpoint.
	ErrVoteAlreadyCast = newRuleError("ErrVoteAlreadyCast")

	// ErrBadFinalizationRewards indicates the coinbase doesn't pay the
	// expected finalization rewards.
	ErrBadFinalizationRewards = newRuleError("ErrBadFinalizationRewards")

	// ErrNoTransactions indicates the block has no coinbase transaction.
	ErrNoTransactions = newRuleError("ErrNoTransactions")

	// ErrMalformedOperation indicates a deposit or vote transaction without
	// its payload.
	ErrMalformedOperation = newRuleError("ErrMalformedOperation")
)

// RuleError identifies a rule violation. It is used to indicate that
// processing of a block or operation failed due to one of the many
// validation rules. A rule error rejects the offending block or operation
// without any side effect on the state.
type RuleError struct {
	message string
	inner   error
}

// Error satisfies the error interface and prints human-readable errors.
func (e RuleError) Error() string {
	if e.inner != nil {
		return e.message + ": " + e.inner.Error()
	}
	return e.message
}

// Unwrap satisfies the errors.Unwrap interface
func (e RuleError) Unwrap() error {
	return e.inner
}

// Cause satisfies the github.com/pkg/errors.Cause interface
func (e RuleError) Cause() error {
	return e.inner
}

func newRuleError(message string) RuleError {
	return RuleError{message: message, inner: nil}
}

// IsRuleError returns whether err is or wraps a RuleError. Any other error
// returned by the finality packages is an internal inconsistency.
func IsRuleError(err error) bool {
	var ruleError RuleError
	return errors.As(err, &ruleError)
}

// ErrMissingParent indicates a block whose parent has no known state.
type ErrMissingParent struct {
	ParentHash *externalapi.DomainHash
}

func (e ErrMissingParent) Error() string {
	return fmt.Sprintf("missing parent %s", e.ParentHash)
}

// NewErrMissingParent creates a new ErrMissingParent error wrapped in a RuleError
func NewErrMissingParent(parentHash *externalapi.DomainHash) error {
	return errors.WithStack(RuleError{
		message: "ErrMissingParent",
		inner:   ErrMissingParent{parentHash},
	})
}

// ErrInvalidOperation indicates that an operation of a block failed
// validation. Index is the position of the transaction within the block.
type ErrInvalidOperation struct {
	Index int
	Err   error
}

func (e ErrInvalidOperation) Error() string {
	return fmt.Sprintf("transaction %d: %s", e.Index, e.Err)
}

// Unwrap returns the rule error of the operation.
func (e ErrInvalidOperation) Unwrap() error {
	return e.Err
}

// NewErrInvalidOperation creates a new ErrInvalidOperation error wrapped in a RuleError
func NewErrInvalidOperation(index int, err error) error {
	return errors.WithStack(RuleError{
		message: "ErrInvalidOperation",
		inner:   ErrInvalidOperation{Index: index, Err: err},
	})
}
