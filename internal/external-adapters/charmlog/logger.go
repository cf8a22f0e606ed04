// Package charmlog adapts charmbracelet/log to the domain Logger contract.
package charmlog

import (
	"os"

	charm "github.com/charmbracelet/log"

	"github.com/ochairo/moddefs/internal/domain/interfaces"
)

// Logger implements interfaces.Logger on top of a charmbracelet logger
// writing to stderr.
type Logger struct {
	l *charm.Logger
}

// New creates a stderr logger. Verbose enables debug-level output.
func New(verbose bool) *Logger {
	l := charm.NewWithOptions(os.Stderr, charm.Options{
		ReportTimestamp: false,
	})
	if verbose {
		l.SetLevel(charm.DebugLevel)
	}
	return &Logger{l: l}
}

// Debug logs debug-level messages
func (a *Logger) Debug(msg string, fields ...interfaces.Field) {
	a.l.Debug(msg, keyvals(fields)...)
}

// Info logs informational messages
func (a *Logger) Info(msg string, fields ...interfaces.Field) {
	a.l.Info(msg, keyvals(fields)...)
}

// Warn logs warning messages
func (a *Logger) Warn(msg string, fields ...interfaces.Field) {
	a.l.Warn(msg, keyvals(fields)...)
}

// Error logs error messages
func (a *Logger) Error(msg string, fields ...interfaces.Field) {
	a.l.Error(msg, keyvals(fields)...)
}

func keyvals(fields []interfaces.Field) []interface{} {
	kv := make([]interface{}, 0, len(fields)*2)
	for _, f := range fields {
		kv = append(kv, f.Key, f.Value)
	}
	return kv
}
