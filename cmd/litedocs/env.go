package main

import (
	"io"
	"net/http"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Stdout     io.Writer
	Stderr     io.Writer
	HTTPClient *http.Client // nil = resolver default
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// newLogger builds a console logger on w. Quiet keeps warnings and errors,
// verbose adds debug output.
func newLogger(w io.Writer, f commonFlags) *zap.Logger {
	level := zapcore.InfoLevel
	switch {
	case f.quiet:
		level = zapcore.WarnLevel
	case f.verbose:
		level = zapcore.DebugLevel
	}

	enc := zap.NewDevelopmentEncoderConfig()
	enc.TimeKey = ""
	enc.CallerKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(w), level)
	return zap.New(core)
}
