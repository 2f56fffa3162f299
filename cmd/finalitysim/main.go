package main

import (
	"context"
	"fmt"
	"io/ioutil"
	"os"

	"github.com/dynastynet/finalityd/domain/finality"
	"github.com/dynastynet/finalityd/domain/finality/finalitytest"
	"github.com/dynastynet/finalityd/domain/finality/model/externalapi"
	"github.com/dynastynet/finalityd/domain/finality/processes/statepruner"
	"github.com/dynastynet/finalityd/infrastructure/db/database/ldb"
	"github.com/dynastynet/finalityd/infrastructure/logger"
	"github.com/dynastynet/finalityd/infrastructure/os/signal"
	"github.com/dynastynet/finalityd/util/panics"
	"github.com/dynastynet/finalityd/util/profiling"
	"github.com/dynastynet/finalityd/version"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

const levelDBCacheSizeMiB = 16

func main() {
	defer panics.HandlePanic(log, nil)
	interrupt := signal.InterruptListener()

	cfg, err := parseConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing command-line arguments: %s\n", err)
		os.Exit(1)
	}
	err = initLog(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing the logger: %s\n", err)
		os.Exit(1)
	}
	defer logger.BackendLog.Close()

	// Show version at startup.
	log.Infof("Version %s", version.Version())

	if cfg.Profile != "" {
		profiling.Start(cfg.Profile, log)
	}

	err = run(cfg, interrupt)
	if err != nil {
		log.Criticalf("Simulation failed: %+v", err)
		logger.BackendLog.Close()
		os.Exit(1)
	}
}

// openRunDir creates a fresh directory for the states of this run inside
// the configured data directory. cleanup removes it unless --keepdata is
// set.
func openRunDir(cfg *configFlags) (runDir string, cleanup func(), err error) {
	err = os.MkdirAll(cfg.DataDir, 0700)
	if err != nil {
		return "", nil, errors.WithStack(err)
	}
	runDir, err = ioutil.TempDir(cfg.DataDir, "run")
	if err != nil {
		return "", nil, errors.WithStack(err)
	}
	if cfg.KeepData {
		log.Infof("Storing finalization states in %s", runDir)
		return runDir, func() {}, nil
	}
	return runDir, func() { os.RemoveAll(runDir) }, nil
}

func run(cfg *configFlags, interrupt <-chan struct{}) error {
	runDir, cleanup, err := openRunDir(cfg)
	if err != nil {
		return err
	}
	defer cleanup()
	db, err := ldb.NewLevelDB(runDir, levelDBCacheSizeMiB)
	if err != nil {
		return err
	}
	defer db.Close()

	params := cfg.NetParams()
	chain := finalitytest.NewChain(params)
	factory := finality.NewFactory()
	factory.SetStateCacheSize(cfg.StateCacheSize)
	finalityInstance, err := factory.NewFinality(params, db, chain)
	if err != nil {
		return err
	}
	sim, err := newSimulation(params, finalityInstance, chain, cfg.Validators, cfg.participation)
	if err != nil {
		return err
	}

	pruner := statepruner.New(finalityInstance, sim.tips, cfg.PruneInterval)
	pruner.Start()
	defer pruner.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	group, groupCtx := errgroup.WithContext(ctx)
	var reports []*epochReport
	group.Go(func() error {
		defer cancel()
		var err error
		reports, err = sim.run(groupCtx, externalapi.Epoch(cfg.Epochs))
		return err
	})
	group.Go(func() error {
		select {
		case <-interrupt:
			return errors.New("simulation interrupted")
		case <-groupCtx.Done():
			return nil
		}
	})
	err = group.Wait()
	printErr := printReports(os.Stdout, reports)
	if err != nil {
		return err
	}
	return printErr
}
