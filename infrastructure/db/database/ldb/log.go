package ldb

import "github.com/dynastynet/finalityd/infrastructure/logger"

var log = logger.RegisterSubSystem("KVDB")
