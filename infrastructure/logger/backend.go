package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/jrick/logrotate/rotator"
	"github.com/pkg/errors"
)

// Flags that change how a Backend prints callsites.
const (
	// LogFlagLongFile prints the full path of the callsite, e.g. /a/b/c/main.go:123.
	LogFlagLongFile uint32 = 1 << iota

	// LogFlagShortFile prints only the file name of the callsite, e.g. main.go:123.
	// It takes precedence over LogFlagLongFile.
	LogFlagShortFile
)

const (
	normalLogSize = 512
	logsBuffer    = 128

	rotateThresholdKB = 10 * 1000
	rotateMaxRolls    = 3
)

// flagsFromEnvironment parses the comma separated LOGFLAGS environment
// variable.
func flagsFromEnvironment() uint32 {
	var flags uint32
	for _, name := range strings.Split(os.Getenv("LOGFLAGS"), ",") {
		switch strings.TrimSpace(name) {
		case "longfile":
			flags |= LogFlagLongFile
		case "shortfile":
			flags |= LogFlagShortFile
		}
	}
	return flags
}

// sink is a destination of log entries at or above minLevel.
type sink struct {
	io.WriteCloser
	minLevel Level
}

// Backend serializes the entries of all its subsystem loggers through a
// single goroutine that fans them out to the registered sinks.
type Backend struct {
	flag      uint32
	isRunning uint32
	sinks     []sink
	writeChan chan logEntry

	// done is held by the dispatching goroutine until writeChan is drained.
	done sync.Mutex
}

// NewBackendWithFlags returns a Backend that uses flags instead of the
// LOGFLAGS environment variable.
func NewBackendWithFlags(flags uint32) *Backend {
	return &Backend{
		flag:      flags,
		writeChan: make(chan logEntry, logsBuffer),
	}
}

// NewBackend returns a Backend configured from the LOGFLAGS environment
// variable.
func NewBackend() *Backend {
	return NewBackendWithFlags(flagsFromEnvironment())
}

func (b *Backend) addSink(writer io.WriteCloser, minLevel Level) error {
	if b.IsRunning() {
		return errors.New("cannot add a log writer to a running backend")
	}
	b.sinks = append(b.sinks, sink{WriteCloser: writer, minLevel: minLevel})
	return nil
}

// AddLogWriter adds writer as a sink for entries at or above logLevel.
func (b *Backend) AddLogWriter(writer io.WriteCloser, logLevel Level) error {
	return b.addSink(writer, logLevel)
}

// AddLogFile adds a rotated log file as a sink for entries at or above
// logLevel. Missing directories are created.
func (b *Backend) AddLogFile(logFile string, logLevel Level) error {
	if b.IsRunning() {
		return errors.New("cannot add a log file to a running backend")
	}
	if logDir := filepath.Dir(logFile); logDir != "." {
		err := os.MkdirAll(logDir, 0700)
		if err != nil {
			return errors.Wrapf(err, "failed to create log directory %s", logDir)
		}
	}
	fileRotator, err := rotator.New(logFile, rotateThresholdKB, false, rotateMaxRolls)
	if err != nil {
		return errors.Wrapf(err, "failed to create a rotator for %s", logFile)
	}
	return b.addSink(fileRotator, logLevel)
}

// Run starts dispatching entries to the sinks. It fails if the backend is
// already running.
func (b *Backend) Run() error {
	if !atomic.CompareAndSwapUint32(&b.isRunning, 0, 1) {
		return errors.New("the logger backend is already running")
	}
	b.done.Lock()
	go b.dispatch()
	return nil
}

func (b *Backend) dispatch() {
	defer b.done.Unlock()
	defer atomic.StoreUint32(&b.isRunning, 0)
	defer func() {
		if err := recover(); err != nil {
			fmt.Fprintf(os.Stderr, "Fatal error in the logger backend: %+v\n%s\n", err, debug.Stack())
		}
	}()

	for entry := range b.writeChan {
		for _, s := range b.sinks {
			if entry.level >= s.minLevel {
				_, _ = s.Write(entry.log)
			}
		}
	}
}

// IsRunning returns whether Run was called and the backend wasn't closed.
func (b *Backend) IsRunning() bool {
	return atomic.LoadUint32(&b.isRunning) == 1
}

// Close waits for the pending entries to be written and closes all sinks.
func (b *Backend) Close() {
	if !b.IsRunning() {
		return
	}
	close(b.writeChan)
	b.done.Lock()
	defer b.done.Unlock()
	for _, s := range b.sinks {
		_ = s.Close()
	}
}

// Logger returns a logger of the given subsystem tag that writes to b. The
// logger starts at LevelOff.
func (b *Backend) Logger(subsystemTag string) *Logger {
	return &Logger{lvl: LevelOff, tag: subsystemTag, b: b, writeChan: b.writeChan}
}
