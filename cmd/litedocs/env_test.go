package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewLogger_Levels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		flags     commonFlags
		wantDebug bool
		wantInfo  bool
	}{
		{"default", commonFlags{}, false, true},
		{"verbose", commonFlags{verbose: true}, true, true},
		{"quiet", commonFlags{quiet: true}, false, false},
		{"quiet wins", commonFlags{quiet: true, verbose: true}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := newLogger(&buf, tt.flags)
			logger.Debug("dbg")
			logger.Info("inf")
			logger.Warn("wrn")

			out := buf.String()
			if got := strings.Contains(out, "dbg"); got != tt.wantDebug {
				t.Errorf("debug logged = %v, want %v", got, tt.wantDebug)
			}
			if got := strings.Contains(out, "inf"); got != tt.wantInfo {
				t.Errorf("info logged = %v, want %v", got, tt.wantInfo)
			}
			if !strings.Contains(out, "wrn") {
				t.Error("warning not logged")
			}
		})
	}
}

func TestDefaultEnv(t *testing.T) {
	t.Parallel()

	env := DefaultEnv()
	if env.Stdout == nil || env.Stderr == nil {
		t.Errorf("DefaultEnv() has nil fields: %+v", env)
	}
}
