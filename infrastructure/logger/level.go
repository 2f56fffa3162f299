package logger

import "strings"

// Level is the severity threshold of a logger. Messages below the configured
// level are dropped.
type Level uint32

// Supported levels, from the most verbose to the most silent.
const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelCritical
	LevelOff
)

type levelNames struct {
	tag  string
	name string
}

var levels = [...]levelNames{
	LevelTrace:    {"TRC", "trace"},
	LevelDebug:    {"DBG", "debug"},
	LevelInfo:     {"INF", "info"},
	LevelWarn:     {"WRN", "warn"},
	LevelError:    {"ERR", "error"},
	LevelCritical: {"CRT", "critical"},
	LevelOff:      {"OFF", "off"},
}

// LevelFromString parses either the long name or the three letter tag of a
// level, case insensitively. Unknown input yields LevelInfo and false.
func LevelFromString(s string) (Level, bool) {
	for level, names := range levels {
		if strings.EqualFold(s, names.name) || strings.EqualFold(s, names.tag) {
			return Level(level), true
		}
	}
	return LevelInfo, false
}

// String returns the tag printed in front of log messages.
func (l Level) String() string {
	if l >= LevelOff {
		return levels[LevelOff].tag
	}
	return levels[l].tag
}
