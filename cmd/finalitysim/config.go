package main

import (
	"path/filepath"
	"strconv"
	"time"

	"github.com/dynastynet/finalityd/domain/dagconfig"
	"github.com/dynastynet/finalityd/domain/finality/utils/ufp64"
	"github.com/dynastynet/finalityd/infrastructure/config"
	"github.com/pkg/errors"
)

const (
	defaultEpochs        = 10
	defaultValidators    = 4
	defaultParticipation = "1"
	defaultPruneInterval = time.Second
	simulationGroup      = "Simulation Options"
)

var defaultHomeDir = filepath.Join(config.DefaultHomeDir, "finalitysim")

type simulationFlags struct {
	Epochs        uint32 `short:"e" long:"epochs" description:"Number of epochs to simulate"`
	Validators    int    `long:"validators" description:"Number of validators depositing in the first block"`
	Participation string `long:"participation" description:"Share of the validators voting in every epoch, e.g. 0.75"`
	KeepData      bool   `long:"keepdata" description:"Keep the finalization states of the run in the data directory"`
	Profile       string `long:"profile" description:"Enable HTTP profiling on given port -- NOTE port must be between 1024 and 65535"`
}

type configFlags struct {
	*config.Config
	simulationFlags

	participation ufp64.UFP64
}

// parseConfig reads the finalityd options and the simulation options from
// args and the finalitysim config file. The simulation runs on simnet
// unless another network is selected.
func parseConfig(args []string) (*configFlags, error) {
	defaults := config.DefaultFlags()
	defaults.ConfigFile = filepath.Join(defaultHomeDir, "finalitysim.conf")
	defaults.DataDir = filepath.Join(defaultHomeDir, "data")
	defaults.LogDir = filepath.Join(defaultHomeDir, "logs")
	defaults.PruneInterval = defaultPruneInterval

	cfg := &configFlags{
		simulationFlags: simulationFlags{
			Epochs:        defaultEpochs,
			Validators:    defaultValidators,
			Participation: defaultParticipation,
		},
	}
	var err error
	cfg.Config, err = config.ParseConfig(args, &config.Options{
		Defaults:         defaults,
		AppOptions:       &cfg.simulationFlags,
		AppOptionsGroup:  simulationGroup,
		DefaultNetParams: &dagconfig.SimnetParams,
	})
	if err != nil {
		return nil, err
	}

	if cfg.Epochs == 0 {
		return nil, errors.New("--epochs must be positive")
	}
	if cfg.Validators <= 0 || cfg.Validators > 255 {
		return nil, errors.New("--validators must be between 1 and 255")
	}
	cfg.participation, err = ufp64.Parse(cfg.Participation)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid --participation %s", cfg.Participation)
	}
	if cfg.participation > ufp64.Unit {
		return nil, errors.Errorf("--participation %s is above 1", cfg.Participation)
	}
	if cfg.Profile != "" {
		profilePort, err := strconv.Atoi(cfg.Profile)
		if err != nil || profilePort < 1024 || profilePort > 65535 {
			return nil, errors.Errorf("the profile port must be between 1024 and 65535, got %s", cfg.Profile)
		}
	}
	return cfg, nil
}
