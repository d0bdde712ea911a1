// Package log is the structured logger every other package in this module
// writes through. It keeps the teacher's log/logger.go shape (a Logger
// interface backed by a swappable Handler, six graduated levels, lazily
// evaluated context values) but replaces glog as the sink: glog writes to
// global, process-wide files via package-level state, which is the wrong
// fit for a library meant to be embedded by a caller that owns its own
// logging policy. The handler chain here (TerminalHandler, FileHandler,
// MultiHandler) is built from go-stack/stack for call-site capture, the
// same as the teacher, plus fatih/color, mattn/go-colorable and
// mattn/go-isatty for terminal output and gopkg.in/natefinch/lumberjack.v2
// for rotating file output.
package log

import (
	"fmt"
	"os"
	"time"

	"github.com/go-stack/stack"
)

const skipLevel = 2

// Lvl is a graduated log severity, ordered most to least severe.
type Lvl int

const (
	LvlCrit Lvl = iota
	LvlError
	LvlWarn
	LvlInfo
	LvlDebug
	LvlTrace
)

// AlignedString returns a fixed 5-character name for l, for fixed-width
// terminal alignment.
func (l Lvl) AlignedString() string {
	switch l {
	case LvlTrace:
		return "TRACE"
	case LvlDebug:
		return "DEBUG"
	case LvlInfo:
		return "INFO "
	case LvlWarn:
		return "WARN "
	case LvlError:
		return "ERROR"
	case LvlCrit:
		return "CRIT "
	default:
		return "?????"
	}
}

func (l Lvl) String() string {
	switch l {
	case LvlTrace:
		return "trce"
	case LvlDebug:
		return "dbug"
	case LvlInfo:
		return "info"
	case LvlWarn:
		return "warn"
	case LvlError:
		return "eror"
	case LvlCrit:
		return "crit"
	default:
		return "unkn"
	}
}

// LvlFromString parses a level name, accepting both the long and short
// forms String returns.
func LvlFromString(s string) (Lvl, error) {
	switch s {
	case "trace", "trce":
		return LvlTrace, nil
	case "debug", "dbug":
		return LvlDebug, nil
	case "info":
		return LvlInfo, nil
	case "warn":
		return LvlWarn, nil
	case "error", "eror":
		return LvlError, nil
	case "crit":
		return LvlCrit, nil
	default:
		return LvlDebug, fmt.Errorf("unknown level: %v", s)
	}
}

// Record is what a Logger asks its Handler to write.
type Record struct {
	Time time.Time
	Lvl  Lvl
	Msg  string
	Ctx  []interface{}
	Call stack.Call
}

// Ctx is a map of key/value pairs, an alternative to a flat variadic
// context for callers that want argument-order safety.
type Ctx map[string]interface{}

func (c Ctx) toArray() []interface{} {
	arr := make([]interface{}, 0, len(c)*2)
	for k, v := range c {
		arr = append(arr, k, v)
	}
	return arr
}

// Lazy defers evaluation of an expensive context value until a Handler
// actually decides to emit the record (see LvlFilterHandler).
type Lazy struct {
	Fn interface{}
}

// Logger writes leveled, contextual records to a Handler.
type Logger interface {
	New(ctx ...interface{}) Logger
	GetHandler() Handler
	SetHandler(h Handler)

	Trace(msg string, ctx ...interface{})
	Debug(msg string, ctx ...interface{})
	Info(msg string, ctx ...interface{})
	Warn(msg string, ctx ...interface{})
	Error(msg string, ctx ...interface{})
	Crit(msg string, ctx ...interface{})
}

type logger struct {
	ctx []interface{}
	h   *swapHandler
}

// New constructs a root Logger writing to h.
func New(h Handler) Logger {
	l := &logger{h: new(swapHandler)}
	l.SetHandler(h)
	return l
}

// Root is the module-wide default logger, writing to a terminal handler
// at LvlInfo until replaced with SetRoot.
var Root = New(LvlFilterHandler(LvlInfo, NewTerminalHandler(os.Stderr, true)))

// SetRoot replaces the module-wide default logger's handler.
func SetRoot(h Handler) { Root.SetHandler(h) }

func (l *logger) write(msg string, lvl Lvl, ctx []interface{}, skip int) {
	l.h.Log(&Record{
		Time: time.Now(),
		Lvl:  lvl,
		Msg:  msg,
		Ctx:  newContext(l.ctx, ctx),
		Call: stack.Caller(skip),
	})
}

func (l *logger) New(ctx ...interface{}) Logger {
	child := &logger{ctx: newContext(l.ctx, ctx), h: new(swapHandler)}
	child.SetHandler(l.h)
	return child
}

func newContext(prefix, suffix []interface{}) []interface{} {
	normalized := normalize(suffix)
	out := make([]interface{}, len(prefix)+len(normalized))
	n := copy(out, prefix)
	copy(out[n:], normalized)
	return out
}

func normalize(ctx []interface{}) []interface{} {
	if len(ctx) == 1 {
		if m, ok := ctx[0].(Ctx); ok {
			ctx = m.toArray()
		}
	}
	if len(ctx)%2 != 0 {
		ctx = append(ctx, nil, "LOG_ERROR", "normalized odd number of arguments by adding nil")
	}
	return ctx
}

func (l *logger) Trace(msg string, ctx ...interface{}) { l.write(msg, LvlTrace, ctx, skipLevel) }
func (l *logger) Debug(msg string, ctx ...interface{}) { l.write(msg, LvlDebug, ctx, skipLevel) }
func (l *logger) Info(msg string, ctx ...interface{})  { l.write(msg, LvlInfo, ctx, skipLevel) }
func (l *logger) Warn(msg string, ctx ...interface{})  { l.write(msg, LvlWarn, ctx, skipLevel) }
func (l *logger) Error(msg string, ctx ...interface{}) { l.write(msg, LvlError, ctx, skipLevel) }

func (l *logger) Crit(msg string, ctx ...interface{}) {
	l.write(msg, LvlCrit, ctx, skipLevel)
	os.Exit(1)
}

func (l *logger) GetHandler() Handler { return l.h.Get() }
func (l *logger) SetHandler(h Handler) { l.h.Swap(h) }
