package statepruner

import (
	"sync"
	"testing"
	"time"

	"github.com/dynastynet/finalityd/domain/finality/model/externalapi"
	"github.com/pkg/errors"
)

type fakeTipProvider struct {
	tip *externalapi.DomainHash
	err error
}

func (f *fakeTipProvider) Tip() (*externalapi.DomainHash, error) {
	return f.tip, f.err
}

type fakePruner struct {
	sync.Mutex
	calls    []*externalapi.DomainHash
	toPrune  int
	pruneErr error
	called   chan struct{}
}

func (f *fakePruner) Prune(tipHash *externalapi.DomainHash) (int, error) {
	f.Lock()
	f.calls = append(f.calls, tipHash)
	f.Unlock()
	if f.called != nil {
		select {
		case f.called <- struct{}{}:
		default:
		}
	}
	return f.toPrune, f.pruneErr
}

func (f *fakePruner) callCount() int {
	f.Lock()
	defer f.Unlock()
	return len(f.calls)
}

func TestPruneOnce(t *testing.T) {
	tip := externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{1})
	tipErr := errors.New("no tip")
	pruneErr := errors.New("prune failed")

	tests := []struct {
		name           string
		tipProvider    *fakeTipProvider
		pruner         *fakePruner
		expectedPruned int
		expectedErr    error
		expectedCalls  int
	}{
		{
			name:           "prunes behind the tip",
			tipProvider:    &fakeTipProvider{tip: tip},
			pruner:         &fakePruner{toPrune: 3},
			expectedPruned: 3,
			expectedCalls:  1,
		},
		{
			name:          "tip error",
			tipProvider:   &fakeTipProvider{err: tipErr},
			pruner:        &fakePruner{},
			expectedErr:   tipErr,
			expectedCalls: 0,
		},
		{
			name:          "prune error",
			tipProvider:   &fakeTipProvider{tip: tip},
			pruner:        &fakePruner{pruneErr: pruneErr},
			expectedErr:   pruneErr,
			expectedCalls: 1,
		},
	}
	for _, test := range tests {
		statePruner := New(test.pruner, test.tipProvider, time.Hour)
		pruned, err := statePruner.PruneOnce()
		if !errors.Is(err, test.expectedErr) {
			t.Errorf("%s: expected error %v, got %v", test.name, test.expectedErr, err)
		}
		if pruned != test.expectedPruned {
			t.Errorf("%s: pruned %d, want %d", test.name, pruned, test.expectedPruned)
		}
		if test.pruner.callCount() != test.expectedCalls {
			t.Errorf("%s: Prune called %d times, want %d", test.name, test.pruner.callCount(), test.expectedCalls)
		}
		if test.expectedCalls > 0 && !test.pruner.calls[0].Equal(tip) {
			t.Errorf("%s: pruned behind %s, want %s", test.name, test.pruner.calls[0], tip)
		}
	}
}

func TestStartAndStop(t *testing.T) {
	tip := externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{2})
	pruner := &fakePruner{called: make(chan struct{}, 1)}
	statePruner := New(pruner, &fakeTipProvider{tip: tip}, 10*time.Millisecond)
	statePruner.Start()
	statePruner.Start()

	select {
	case <-pruner.called:
	case <-time.After(5 * time.Second):
		t.Fatalf("the state pruner didn't prune in time")
	}
	statePruner.Stop()

	calls := pruner.callCount()
	time.Sleep(50 * time.Millisecond)
	if pruner.callCount() != calls {
		t.Fatalf("the state pruner kept pruning after Stop")
	}
}
