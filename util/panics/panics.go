package panics

import (
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"github.com/dynastynet/finalityd/infrastructure/logger"
)

// flushTimeout bounds how long a crashing process waits for its log to be
// written.
const flushTimeout = 5 * time.Second

// HandlePanic must be deferred. It recovers a panic, logs it together with
// spawnStackTrace (the stack of whoever started the goroutine, may be nil),
// and exits the process.
func HandlePanic(log *logger.Logger, spawnStackTrace []byte) {
	recovered := recover()
	if recovered == nil {
		return
	}
	crash(log, fmt.Sprintf("Fatal error: %+v", recovered), debug.Stack(), spawnStackTrace)
}

// GoroutineWrapperFunc returns a function that runs its argument in a new
// goroutine whose panics are logged to log before exiting.
func GoroutineWrapperFunc(log *logger.Logger) func(func()) {
	return func(f func()) {
		spawnStackTrace := debug.Stack()
		go func() {
			defer HandlePanic(log, spawnStackTrace)
			f()
		}()
	}
}

func crash(log *logger.Logger, reason string, stackTrace, spawnStackTrace []byte) {
	flushed := make(chan struct{})
	go func() {
		defer close(flushed)
		log.Criticalf("Exiting: %s", reason)
		log.Criticalf("Stack trace: %s", stackTrace)
		if spawnStackTrace != nil {
			log.Criticalf("Spawned from: %s", spawnStackTrace)
		}
		log.Backend().Close()
	}()

	select {
	case <-flushed:
	case <-time.After(flushTimeout):
		fmt.Fprintln(os.Stderr, "Timed out flushing the log before exiting")
	}
	os.Exit(1)
}
