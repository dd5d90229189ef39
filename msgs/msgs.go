// Package msgs is the leveled logging boundary of the reduction
// pipeline, built on logrus.
//
// Four levels mirror the pipeline's messaging conventions:
//
//	Info — progress reporting
//	Warn — degraded-but-continuing conditions
//	Error — fatal-for-the-operation conditions (the caller decides how
//	         to abort; Error itself never terminates anything)
//	Work — verbose work-in-progress notes, emitted only at the highest
//	        verbosity
//
// Verbosity levels are 0 (silent), 1 (standard), and 2 (everything).
// Output goes to standard error by default and can additionally be
// mirrored to a log file.
package msgs

import (
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
)

// Verbosity levels.
const (
	// Silent suppresses all output.
	Silent = 0

	// Standard emits info, warnings, and errors.
	Standard = 1

	// Verbose additionally emits Work diagnostics.
	Verbose = 2
)

// Options configures a Logger.
type Options struct {
	// Verbosity is one of Silent, Standard, Verbose. Out-of-range
	// values clamp.
	Verbosity int

	// LogFile, when non-empty, mirrors all output to the named file.
	LogFile string

	// Out overrides the primary sink (default os.Stderr).
	Out io.Writer
}

// Logger is a leveled message sink.
type Logger struct {
	l    *log.Logger
	file *os.File
}

// New builds a Logger with the given options. A LogFile that cannot be
// created is reported on the primary sink and skipped rather than
// failing the pipeline.
func New(o Options) *Logger {
	l := log.New()
	l.SetFormatter(&log.TextFormatter{
		DisableTimestamp: true,
		DisableQuote:     true,
	})

	out := o.Out
	if out == nil {
		out = os.Stderr
	}

	m := &Logger{l: l}
	if o.LogFile != "" {
		f, err := os.Create(o.LogFile)
		if err != nil {
			fmt.Fprintf(out, "msgs: cannot create log file %s: %v\n", o.LogFile, err)
		} else {
			m.file = f
			out = io.MultiWriter(out, f)
		}
	}
	l.SetOutput(out)

	switch {
	case o.Verbosity <= Silent:
		l.SetOutput(io.Discard)
	case o.Verbosity == Standard:
		l.SetLevel(log.InfoLevel)
	default:
		l.SetLevel(log.DebugLevel)
	}

	return m
}

// std is the shared default logger.
var std = New(Options{Verbosity: Standard})

// Default returns the shared standard-verbosity logger.
func Default() *Logger { return std }

// Info reports progress.
func (m *Logger) Info(format string, args ...interface{}) {
	m.l.Infof(format, args...)
}

// Warn reports a degraded-but-continuing condition.
func (m *Logger) Warn(format string, args ...interface{}) {
	m.l.Warnf(format, args...)
}

// Error reports a condition fatal to the current operation. The caller
// is responsible for aborting; Error only logs.
func (m *Logger) Error(format string, args ...interface{}) {
	m.l.Errorf(format, args...)
}

// Work emits a verbose work-in-progress diagnostic; visible only at
// Verbose.
func (m *Logger) Work(format string, args ...interface{}) {
	m.l.Debugf("WORK: "+format, args...)
}

// Close releases the log file, if any.
func (m *Logger) Close() error {
	if m.file == nil {
		return nil
	}

	return m.file.Close()
}
