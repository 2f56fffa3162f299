package logger

import (
	"time"
)

// LogAndMeasureExecutionTime traces the start of the named operation and
// returns a function that logs its duration at debug level.
//
// Usage:
//	onEnd := logger.LogAndMeasureExecutionTime(log, "Prune")
//	defer onEnd()
func LogAndMeasureExecutionTime(log *Logger, operation string) (onEnd func()) {
	log.Tracef("%s started", operation)
	start := time.Now()
	return func() {
		log.Debugf("%s took %s", operation, time.Since(start).Round(time.Microsecond))
	}
}
