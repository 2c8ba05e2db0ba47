package conveyor

import (
	"context"
	"io"
	"log"
	"os"
)

// Logger is the leveled logger the library writes to. It is satisfied by a
// logrus entry as well as by the GoLog adapter below, so hosts can plug in
// whatever they already use.
type Logger interface {
	Debugf(string, ...interface{})
	Infof(string, ...interface{})
	Warnf(string, ...interface{})
	Errorf(string, ...interface{})
	Fatalf(string, ...interface{})
}

// NopLogger drops everything on the floor, except Fatalf which still exits.
var NopLogger Logger = &goLogger{
	debug: log.New(io.Discard, "", 0),
	info:  log.New(io.Discard, "", 0),
	warn:  log.New(io.Discard, "", 0),
	err:   log.New(io.Discard, "", 0),
	fatal: log.New(io.Discard, "", 0),
}

// GoLog creates a leveled logger backed by the standard library logger.
// A nil writer defaults to stderr.
func GoLog(w io.Writer, prefix string, flags int) Logger {
	if w == nil {
		w = os.Stderr
	}
	return &goLogger{
		debug: log.New(w, prefix+"[DEBUG] ", flags),
		info:  log.New(w, prefix+"[INFO]  ", flags),
		warn:  log.New(w, prefix+"[WARN]  ", flags),
		err:   log.New(w, prefix+"[ERROR] ", flags),
		fatal: log.New(w, prefix+"[FATAL] ", flags),
	}
}

type goLogger struct {
	debug *log.Logger
	info  *log.Logger
	warn  *log.Logger
	err   *log.Logger
	fatal *log.Logger
}

func (g *goLogger) Debugf(format string, args ...interface{}) { g.debug.Printf(format, args...) }
func (g *goLogger) Infof(format string, args ...interface{})  { g.info.Printf(format, args...) }
func (g *goLogger) Warnf(format string, args ...interface{})  { g.warn.Printf(format, args...) }
func (g *goLogger) Errorf(format string, args ...interface{}) { g.err.Printf(format, args...) }
func (g *goLogger) Fatalf(format string, args ...interface{}) { g.fatal.Fatalf(format, args...) }

type loggerKey uint8

// SetLogger on the context for use further down the call chain
func SetLogger(ctx context.Context, logger Logger) context.Context {
	return context.WithValue(ctx, loggerKey(0), logger)
}

// ContextLogger gets the logger from the context, or NopLogger when none was set
func ContextLogger(ctx context.Context) Logger {
	if logger, ok := ctx.Value(loggerKey(0)).(Logger); ok {
		return logger
	}
	return NopLogger
}
