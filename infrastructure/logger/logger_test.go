package logger

import (
	"bytes"
	"strings"
	"sync"
	"testing"
)

type bufferCloser struct {
	sync.Mutex
	bytes.Buffer
	closed bool
}

func (b *bufferCloser) Write(p []byte) (int, error) {
	b.Lock()
	defer b.Unlock()
	return b.Buffer.Write(p)
}

func (b *bufferCloser) Close() error {
	b.closed = true
	return nil
}

func TestLoggerLevels(t *testing.T) {
	backend := NewBackendWithFlags(0)
	infoWriter := &bufferCloser{}
	errorWriter := &bufferCloser{}
	if err := backend.AddLogWriter(infoWriter, LevelInfo); err != nil {
		t.Fatalf("AddLogWriter: %+v", err)
	}
	if err := backend.AddLogWriter(errorWriter, LevelError); err != nil {
		t.Fatalf("AddLogWriter: %+v", err)
	}
	if err := backend.Run(); err != nil {
		t.Fatalf("Run: %+v", err)
	}
	if err := backend.Run(); err == nil {
		t.Fatalf("Run unexpectedly succeeded twice")
	}

	log := backend.Logger("TEST")
	log.Infof("dropped since the logger is off")
	log.SetLevel(LevelDebug)
	log.Tracef("dropped since it is below the logger level")
	log.Debugf("debug %d", 1)
	log.Infof("info %d", 2)
	log.Errorf("error %d", 3)
	backend.Close()

	infoOutput := infoWriter.String()
	if strings.Contains(infoOutput, "dropped") {
		t.Errorf("filtered messages were written: %s", infoOutput)
	}
	if strings.Contains(infoOutput, "debug 1") {
		t.Errorf("debug message was written to the info writer: %s", infoOutput)
	}
	if !strings.Contains(infoOutput, "[INF] TEST: info 2") {
		t.Errorf("info message is missing from the info writer: %s", infoOutput)
	}
	if !strings.Contains(infoOutput, "[ERR] TEST: error 3") {
		t.Errorf("error message is missing from the info writer: %s", infoOutput)
	}
	errorOutput := errorWriter.String()
	if strings.Contains(errorOutput, "info 2") || !strings.Contains(errorOutput, "error 3") {
		t.Errorf("unexpected error writer output: %s", errorOutput)
	}
	if !infoWriter.closed || !errorWriter.closed {
		t.Errorf("Close didn't close all writers")
	}
}

func TestLevelFromString(t *testing.T) {
	tests := []struct {
		input      string
		expected   Level
		expectedOK bool
	}{
		{"trace", LevelTrace, true},
		{"DBG", LevelDebug, true},
		{"info", LevelInfo, true},
		{"wrn", LevelWarn, true},
		{"error", LevelError, true},
		{"critical", LevelCritical, true},
		{"off", LevelOff, true},
		{"verbose", LevelInfo, false},
	}
	for _, test := range tests {
		level, ok := LevelFromString(test.input)
		if level != test.expected || ok != test.expectedOK {
			t.Errorf("LevelFromString(%q): expected (%s, %t), got (%s, %t)",
				test.input, test.expected, test.expectedOK, level, ok)
		}
	}
}

func TestParseAndSetLogLevels(t *testing.T) {
	log := RegisterSubSystem("PLTS")
	if RegisterSubSystem("PLTS") != log {
		t.Fatalf("RegisterSubSystem returned a different logger for the same subsystem")
	}

	if err := ParseAndSetLogLevels("debug"); err != nil {
		t.Fatalf("ParseAndSetLogLevels: %+v", err)
	}
	if log.Level() != LevelDebug {
		t.Errorf("expected level %s, got %s", LevelDebug, log.Level())
	}
	if err := ParseAndSetLogLevels("PLTS=warn"); err != nil {
		t.Fatalf("ParseAndSetLogLevels: %+v", err)
	}
	if log.Level() != LevelWarn {
		t.Errorf("expected level %s, got %s", LevelWarn, log.Level())
	}

	invalid := []string{"loud", "PLTS", "NOPE=info", "PLTS=loud"}
	for _, level := range invalid {
		if err := ParseAndSetLogLevels(level); err == nil {
			t.Errorf("ParseAndSetLogLevels(%q) unexpectedly succeeded", level)
		}
	}
}
