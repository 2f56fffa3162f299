package main

import (
	"os"

	"github.com/dynastynet/finalityd/infrastructure/logger"
)

var log = logger.RegisterSubSystem("FSIM")

// initLog writes the logs of every subsystem to stdout, next to the log
// files of the configured log directory.
func initLog(cfg *configFlags) error {
	err := logger.BackendLog.AddLogWriter(os.Stdout, logger.LevelTrace)
	if err != nil {
		return err
	}
	return cfg.InitLog()
}
