package statepruner

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/dynastynet/finalityd/domain/finality/model"
	"github.com/dynastynet/finalityd/domain/finality/model/externalapi"
)

// Pruner drops the finalization states made obsolete by the finalized
// checkpoint of a tip.
type Pruner interface {
	Prune(tipHash *externalapi.DomainHash) (int, error)
}

// StatePruner periodically prunes the finalization states behind the tip
// of the main chain.
type StatePruner struct {
	pruner      Pruner
	tipProvider model.TipProvider
	interval    time.Duration

	started  int32
	shutdown int32
	quit     chan struct{}
	wg       sync.WaitGroup
}

// New returns a StatePruner that prunes pruner behind the tip returned by
// tipProvider every interval.
func New(pruner Pruner, tipProvider model.TipProvider, interval time.Duration) *StatePruner {
	return &StatePruner{
		pruner:      pruner,
		tipProvider: tipProvider,
		interval:    interval,
		quit:        make(chan struct{}),
	}
}

// Start begins pruning in the background. Calling Start more than once has
// no effect.
func (sp *StatePruner) Start() {
	if atomic.AddInt32(&sp.started, 1) != 1 {
		return
	}
	log.Debugf("Starting the state pruner with an interval of %s", sp.interval)

	sp.wg.Add(1)
	spawn(sp.pruneHandler)
}

// Stop stops pruning and waits for an ongoing prune to complete.
func (sp *StatePruner) Stop() {
	if atomic.AddInt32(&sp.shutdown, 1) != 1 {
		log.Warnf("State pruner is already in the process of shutting down")
		return
	}
	close(sp.quit)
	sp.wg.Wait()
	log.Debugf("State pruner stopped")
}

func (sp *StatePruner) pruneHandler() {
	defer sp.wg.Done()

	ticker := time.NewTicker(sp.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			_, err := sp.PruneOnce()
			if err != nil {
				log.Errorf("Failed to prune finalization states: %+v", err)
			}
		case <-sp.quit:
			return
		}
	}
}

// PruneOnce prunes behind the current tip and returns the number of states
// removed from memory.
func (sp *StatePruner) PruneOnce() (int, error) {
	tipHash, err := sp.tipProvider.Tip()
	if err != nil {
		return 0, err
	}
	pruned, err := sp.pruner.Prune(tipHash)
	if err != nil {
		return pruned, err
	}
	if pruned > 0 {
		log.Infof("Pruned %d finalization states behind %s", pruned, tipHash)
	}
	return pruned, nil
}
