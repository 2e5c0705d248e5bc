package gekkomesh

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

type Logger interface {
	DebugEnabled() bool
	SetDebug(enabled bool)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// DefaultLogger writes "[prefix] LEVEL: message" lines. Debug lines are
// dropped unless debug output is enabled.
type DefaultLogger struct {
	mu     sync.Mutex
	debug  bool
	prefix string
	out    *log.Logger
	err    *log.Logger
}

func NewDefaultLogger(prefix string, debug bool) *DefaultLogger {
	return NewWriterLogger(os.Stdout, os.Stderr, prefix, debug)
}

// NewWriterLogger logs debug and info lines to out, warnings and errors to errOut.
func NewWriterLogger(out, errOut io.Writer, prefix string, debug bool) *DefaultLogger {
	flags := log.LstdFlags | log.Lmicroseconds
	return &DefaultLogger{
		debug:  debug,
		prefix: prefix,
		out:    log.New(out, "", flags),
		err:    log.New(errOut, "", flags),
	}
}

func (l *DefaultLogger) DebugEnabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.debug
}

func (l *DefaultLogger) SetDebug(enabled bool) {
	l.mu.Lock()
	l.debug = enabled
	l.mu.Unlock()
}

func (l *DefaultLogger) write(dst *log.Logger, level, format string, args []any) {
	msg := fmt.Sprintf(format, args...)
	if l.prefix == "" {
		dst.Printf("%s: %s", level, msg)
		return
	}
	dst.Printf("[%s] %s: %s", l.prefix, level, msg)
}

func (l *DefaultLogger) Debugf(format string, args ...any) {
	if l.DebugEnabled() {
		l.write(l.out, "DEBUG", format, args)
	}
}

func (l *DefaultLogger) Infof(format string, args ...any)  { l.write(l.out, "INFO", format, args) }
func (l *DefaultLogger) Warnf(format string, args ...any)  { l.write(l.err, "WARN", format, args) }
func (l *DefaultLogger) Errorf(format string, args ...any) { l.write(l.err, "ERROR", format, args) }

// Scoped returns a logger that prefixes every message of l with "scope: ".
// Meshes log through a scope named after their label, buffer devices
// through "gpu". Debug state is shared with l.
func Scoped(l Logger, scope string) Logger {
	if l == nil {
		return NewNopLogger()
	}
	if _, ok := l.(*nopLogger); ok {
		return l
	}
	return &scopedLogger{Logger: l, scope: scope}
}

type scopedLogger struct {
	Logger
	scope string
}

func (s *scopedLogger) msg(format string, args []any) string {
	return s.scope + ": " + fmt.Sprintf(format, args...)
}

func (s *scopedLogger) Debugf(format string, args ...any) {
	if s.DebugEnabled() {
		s.Logger.Debugf("%s", s.msg(format, args))
	}
}

func (s *scopedLogger) Infof(format string, args ...any) { s.Logger.Infof("%s", s.msg(format, args)) }
func (s *scopedLogger) Warnf(format string, args ...any) { s.Logger.Warnf("%s", s.msg(format, args)) }
func (s *scopedLogger) Errorf(format string, args ...any) {
	s.Logger.Errorf("%s", s.msg(format, args))
}

type nopLogger struct{}

func NewNopLogger() Logger { return &nopLogger{} }
func (n *nopLogger) DebugEnabled() bool                { return false }
func (n *nopLogger) SetDebug(enabled bool)             {}
func (n *nopLogger) Debugf(format string, args ...any) {}
func (n *nopLogger) Infof(format string, args ...any)  {}
func (n *nopLogger) Warnf(format string, args ...any)  {}
func (n *nopLogger) Errorf(format string, args ...any) {}
