package finalitystate

import (
	"testing"

	"github.com/dynastynet/finalityd/domain/finality/model/externalapi"
	"github.com/dynastynet/finalityd/domain/finality/ruleerrors"
	"github.com/pkg/errors"
)

func TestProcessDeposit(t *testing.T) {
	s := New(testParams())
	minDeposit := s.Params().MinDepositSize

	err := s.ProcessDeposit(testAddress(1), minDeposit-1)
	if !errors.Is(err, ruleerrors.ErrDepositInsufficient) {
		t.Fatalf("expected ErrDepositInsufficient, got %v", err)
	}
	if _, ok := s.Validator(testAddress(1)); ok {
		t.Fatalf("a rejected deposit registered a validator")
	}

	mustDeposit(t, s, testAddress(1), minDeposit)
	err = s.ProcessDeposit(testAddress(1), minDeposit*2)
	if !errors.Is(err, ruleerrors.ErrDepositDuplicate) {
		t.Fatalf("expected ErrDepositDuplicate, got %v", err)
	}

	validator, ok := s.Validator(testAddress(1))
	if !ok {
		t.Fatalf("validator wasn't registered")
	}
	if validator.Deposit != minDeposit {
		t.Errorf("unexpected deposit %d, want %d", validator.Deposit, minDeposit)
	}
	if validator.StartDynasty != 2 {
		t.Errorf("unexpected start dynasty %d, want 2", validator.StartDynasty)
	}
	if validator.EndDynasty != externalapi.MaxDynasty {
		t.Errorf("unexpected end dynasty %d", validator.EndDynasty)
	}
	if s.CurrentDynastyTotalDeposits() != 0 {
		t.Errorf("a deposit must not count before its start dynasty")
	}
}

func TestDepositStartDynastyFollowsCurrentDynasty(t *testing.T) {
	s := New(testParams())
	mustInitializeEpochs(t, s, 2)
	if s.CurrentDynasty() != 1 {
		t.Fatalf("unexpected dynasty %d after two empty epochs, want 1", s.CurrentDynasty())
	}

	mustDeposit(t, s, testAddress(7), s.Params().MinDepositSize)
	validator, _ := s.Validator(testAddress(7))
	if validator.StartDynasty != 3 {
		t.Fatalf("unexpected start dynasty %d, want 3", validator.StartDynasty)
	}
}

func TestValidatorsAreSortedCopies(t *testing.T) {
	s := New(testParams())
	minDeposit := s.Params().MinDepositSize
	for _, b := range []byte{9, 3, 6} {
		mustDeposit(t, s, testAddress(b), minDeposit)
	}

	validators := s.Validators()
	if len(validators) != 3 {
		t.Fatalf("got %d validators, want 3", len(validators))
	}
	for i, want := range []byte{3, 6, 9} {
		if validators[i].Address != testAddress(want) {
			t.Errorf("validator %d is %s, want %s", i, validators[i].Address, testAddress(want))
		}
	}

	validators[0].Deposit = 1
	validator, _ := s.Validator(testAddress(3))
	if validator.Deposit != minDeposit {
		t.Fatalf("modifying a returned validator changed the state")
	}
}

func TestIsActiveIn(t *testing.T) {
	validator := &Validator{StartDynasty: 2, EndDynasty: 4}
	tests := []struct {
		dynasty externalapi.Dynasty
		active  bool
	}{
		{dynasty: 1, active: false},
		{dynasty: 2, active: true},
		{dynasty: 3, active: true},
		{dynasty: 4, active: false},
	}
	for _, test := range tests {
		if got := validator.IsActiveIn(test.dynasty); got != test.active {
			t.Errorf("IsActiveIn(%d): got %t, want %t", test.dynasty, got, test.active)
		}
	}
}
