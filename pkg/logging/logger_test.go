package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNilLogger(t *testing.T) {
	var logger *Logger
	logger.Error("error")
	logger.Warnf("warning %d", 1)
	logger.Sublogger("child").Info("info")
	if logger.Level() != LevelDisabled {
		t.Error("nil logger reports non-disabled level")
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	buffer := &bytes.Buffer{}
	logger := NewLogger(LevelInfo, buffer)
	logger.Info("visible")
	logger.Debug("hidden")
	logger.Trace("hidden")
	output := buffer.String()
	if !strings.Contains(output, "visible") {
		t.Error("info line missing from output")
	}
	if strings.Contains(output, "hidden") {
		t.Error("debug or trace line present in output")
	}
	if lines := strings.Count(output, "\n"); lines != 1 {
		t.Error("unexpected line count:", lines)
	}
}

func TestSubloggerScope(t *testing.T) {
	buffer := &bytes.Buffer{}
	logger := NewLogger(LevelDebug, buffer).Sublogger("engine").Sublogger("windows")
	logger.Debugf("value %d", 42)
	if !strings.Contains(buffer.String(), "[engine.windows] value 42") {
		t.Error("scoped line missing from output:", buffer.String())
	}
	if logger.Level() != LevelDebug {
		t.Error("sublogger did not inherit level")
	}
}

func TestLevelText(t *testing.T) {
	var level Level
	if err := level.UnmarshalText([]byte("trace")); err != nil {
		t.Fatal("unable to unmarshal level:", err)
	} else if level != LevelTrace {
		t.Error("level mismatch:", level)
	}
	if err := level.UnmarshalText([]byte("verbose")); err == nil {
		t.Error("invalid level name accepted")
	}
	if text, _ := LevelWarn.MarshalText(); string(text) != "warn" {
		t.Error("unexpected level text:", string(text))
	}
}
