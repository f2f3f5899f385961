package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func newCapturedLogger() (*LogrusLogger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	l := logrus.New()
	l.SetOutput(buf)
	l.SetLevel(logrus.DebugLevel)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return NewLogrusLoggerFrom(l), buf
}

func TestLevelString(t *testing.T) {
	cases := []struct {
		level Level
		want  string
	}{
		{DebugLevel, "DEBUG"},
		{InfoLevel, "INFO"},
		{WarnLevel, "WARN"},
		{ErrorLevel, "ERROR"},
		{FatalLevel, "FATAL"},
		{Level(99), "UNKNOWN"},
	}
	for _, tc := range cases {
		if got := tc.level.String(); got != tc.want {
			t.Errorf("Level(%d).String() = %q, want %q", tc.level, got, tc.want)
		}
	}
}

func TestLogrusLogger_FieldsAppearInOutput(t *testing.T) {
	logger, buf := newCapturedLogger()

	logger.WithFields(Fields{"component": "conditioner"}).Info("filter designed", Fields{"order": 5})

	out := buf.String()
	for _, want := range []string{"filter designed", "component=conditioner", "order=5"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}
}

func TestLogrusLogger_ErrorCarriesCause(t *testing.T) {
	logger, buf := newCapturedLogger()

	logger.Error(errors.New("boom"), "stage failed")

	out := buf.String()
	if !strings.Contains(out, "boom") || !strings.Contains(out, "stage failed") {
		t.Errorf("output missing error or message: %s", out)
	}
}

func TestLogrusLogger_SetLevelFiltersDebug(t *testing.T) {
	logger, buf := newCapturedLogger()

	logger.SetLevel(InfoLevel)
	logger.Debug("hidden")
	logger.Info("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug line not filtered: %s", out)
	}
	if !strings.Contains(out, "visible") {
		t.Errorf("info line missing: %s", out)
	}
}

func TestSetGlobalLogger(t *testing.T) {
	original := GetGlobalLogger()
	defer SetGlobalLogger(original)

	logger, buf := newCapturedLogger()
	SetGlobalLogger(logger)

	Info("through the global logger")
	if !strings.Contains(buf.String(), "through the global logger") {
		t.Errorf("global logger not used: %s", buf.String())
	}

	// nil falls back to the no-op logger instead of panicking
	SetGlobalLogger(nil)
	Info("dropped")
	if _, ok := GetGlobalLogger().(*NoOpLogger); !ok {
		t.Errorf("nil global logger not replaced with NoOpLogger")
	}
}

func TestNoOpLogger(t *testing.T) {
	n := &NoOpLogger{}
	n.Debug("x")
	n.Info("x")
	n.Warn("x")
	n.Error(errors.New("x"), "x")
	n.SetLevel(DebugLevel)
	if n.WithFields(Fields{"a": 1}) != n {
		t.Error("WithFields must return the same no-op instance")
	}
}
