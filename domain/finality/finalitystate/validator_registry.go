package finalitystate

import (
	"bytes"
	"sort"

	"github.com/dynastynet/finalityd/domain/finality/model/externalapi"
	"github.com/dynastynet/finalityd/domain/finality/ruleerrors"
	"github.com/pkg/errors"
)

// Validator is a finalizer that made a deposit.
type Validator struct {
	Address      externalapi.ValidatorAddress
	Deposit      uint64
	StartDynasty externalapi.Dynasty
	EndDynasty   externalapi.Dynasty
}

// IsActiveIn returns whether the validator may vote in the given dynasty.
func (v *Validator) IsActiveIn(dynasty externalapi.Dynasty) bool {
	return v.StartDynasty <= dynasty && dynasty < v.EndDynasty
}

// ValidateDeposit checks whether address may deposit amount. It doesn't
// change the state.
func (s *FinalizationState) ValidateDeposit(address externalapi.ValidatorAddress, amount uint64) error {
	if amount < s.params.MinDepositSize {
		return errors.Wrapf(ruleerrors.ErrDepositInsufficient,
			"deposit of %d by %s is below the minimum of %d", amount, address, s.params.MinDepositSize)
	}
	if _, exists := s.validators[address]; exists {
		return errors.Wrapf(ruleerrors.ErrDepositDuplicate, "validator %s already has a deposit", address)
	}
	return nil
}

// ProcessDeposit registers a new validator. The validator becomes eligible
// to vote DynastyActivationDelay dynasties after the current one, and its
// deposit joins the current dynasty total when that dynasty begins.
func (s *FinalizationState) ProcessDeposit(address externalapi.ValidatorAddress, amount uint64) error {
	err := s.ValidateDeposit(address, amount)
	if err != nil {
		return err
	}

	startDynasty := s.currentDynasty + s.params.DynastyActivationDelay
	scheduled, err := addDeposits(s.dynastyDeltas[startDynasty], amount)
	if err != nil {
		return errors.Wrapf(err, "scheduling deposits for dynasty %d", startDynasty)
	}
	validator := &Validator{
		Address:      address,
		Deposit:      amount,
		StartDynasty: startDynasty,
		EndDynasty:   externalapi.MaxDynasty,
	}
	element, err := serializeValidatorElement(validator)
	if err != nil {
		return err
	}
	s.dynastyDeltas[startDynasty] = scheduled
	s.validators[address] = validator
	s.validatorSet.Add(element)
	log.Debugf("Validator %s deposited %d, start dynasty %d", address, amount, startDynasty)
	return nil
}

// Validator returns a copy of the validator with the given address.
func (s *FinalizationState) Validator(address externalapi.ValidatorAddress) (*Validator, bool) {
	validator, ok := s.validators[address]
	if !ok {
		return nil, false
	}
	validatorCopy := *validator
	return &validatorCopy, true
}

// Validators returns copies of all validators, ordered by address.
func (s *FinalizationState) Validators() []*Validator {
	validators := make([]*Validator, 0, len(s.validators))
	for _, validator := range s.validators {
		validatorCopy := *validator
		validators = append(validators, &validatorCopy)
	}
	sort.Slice(validators, func(i, j int) bool {
		return lessAddress(validators[i].Address, validators[j].Address)
	})
	return validators
}

func (s *FinalizationState) isInCurrentDynasty(validator *Validator) bool {
	return validator.IsActiveIn(s.currentDynasty)
}

func (s *FinalizationState) isInPreviousDynasty(validator *Validator) bool {
	return s.currentDynasty > 0 && validator.IsActiveIn(s.currentDynasty-1)
}

func lessAddress(a, b externalapi.ValidatorAddress) bool {
	return bytes.Compare(a[:], b[:]) < 0
}
