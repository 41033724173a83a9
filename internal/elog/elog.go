// Package elog is a small level-prefixed logger built directly on the
// standard library's log package, following the convention shown by both
// hztools-go-sdr (bare log.Printf in rtltcp/server.go) and
// ClusterCockpit-cc-backend's pkg/log (a hand-rolled level-prefixed
// wrapper over stdlib log, despite that repository's otherwise large
// third-party dependency surface). No complete example repo in the
// retrieval pack imports a structured third-party logger, so this
// repository does not either.
package elog

import (
	"fmt"
	"io"
	"log"
	"os"
)

// Logger writes level-prefixed lines to an underlying io.Writer. Debug
// output is suppressed unless explicitly enabled, matching the debug/info
// split used throughout the pack's own ad-hoc logging.
type Logger struct {
	prefix string
	debug  bool
	out    *log.Logger
}

// New returns a Logger writing to os.Stderr with no prefix.
func New() *Logger {
	return &Logger{out: log.New(os.Stderr, "", log.LstdFlags)}
}

// NewWithWriter returns a Logger writing to w.
func NewWithWriter(w io.Writer) *Logger {
	return &Logger{out: log.New(w, "", log.LstdFlags)}
}

// With returns a child Logger whose every line is additionally prefixed
// with scope (e.g. a stage id or run ID). Nested calls join scopes with
// a dot.
func (l *Logger) With(scope string) *Logger {
	prefix := scope
	if l.prefix != "" {
		prefix = l.prefix + "." + scope
	}
	return &Logger{prefix: prefix, debug: l.debug, out: l.out}
}

// SetDebug toggles whether Debugf output is emitted.
func (l *Logger) SetDebug(on bool) { l.debug = on }

func (l *Logger) line(level, format string, args ...interface{}) string {
	msg := fmt.Sprintf(format, args...)
	if l.prefix == "" {
		return fmt.Sprintf("<%s> %s", level, msg)
	}
	return fmt.Sprintf("<%s> [%s] %s", level, l.prefix, msg)
}

func (l *Logger) Debugf(format string, args ...interface{}) {
	if !l.debug {
		return
	}
	l.out.Output(2, l.line("DEBUG", format, args...))
}

func (l *Logger) Infof(format string, args ...interface{}) {
	l.out.Output(2, l.line("INFO", format, args...))
}

func (l *Logger) Warnf(format string, args ...interface{}) {
	l.out.Output(2, l.line("WARN", format, args...))
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	l.out.Output(2, l.line("ERROR", format, args...))
}
