package statepruner

import (
	"github.com/dynastynet/finalityd/infrastructure/logger"
	"github.com/dynastynet/finalityd/util/panics"
)

var log = logger.RegisterSubSystem("PRUN")
var spawn = panics.GoroutineWrapperFunc(log)
