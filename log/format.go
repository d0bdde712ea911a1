package log

import (
	"bytes"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/fatih/color"
)

// Format renders a Record into a line of output bytes.
type Format func(r *Record) []byte

var locationLength int

// TerminalFormat produces "<time>[<LEVEL>] <msg> <k=v ...>" lines,
// colorizing the level tag when useColor is true. The call location is
// not written to the line. It is the format NewTerminalHandler installs.
func TerminalFormat(useColor bool) Format {
	return func(r *Record) []byte {
		buf := &bytes.Buffer{}
		lvlTag := r.Lvl.AlignedString()
		if useColor {
			lvlTag = colorForLvl(r.Lvl).Sprint(lvlTag)
		}
		fmt.Fprintf(buf, "%s[%s] %s", r.Time.Format("2006-01-02T15:04:05-0700"), lvlTag, r.Msg)

		location := fmt.Sprintf("%+v", r.Call)
		if len(location) > locationLength {
			locationLength = len(location)
		}
		if len(r.Ctx) > 0 {
			buf.WriteString(" ")
		}
		logfmt(buf, r.Ctx)
		buf.WriteString("\n")
		return buf.Bytes()
	}
}

// LogfmtFormat produces plain key=value output with no color and no call
// location, suitable for file handlers.
func LogfmtFormat() Format {
	return func(r *Record) []byte {
		buf := &bytes.Buffer{}
		fmt.Fprintf(buf, "t=%s lvl=%s msg=%q", r.Time.Format("2006-01-02T15:04:05-0700"), r.Lvl.String(), r.Msg)
		if len(r.Ctx) > 0 {
			buf.WriteString(" ")
		}
		logfmt(buf, r.Ctx)
		buf.WriteString("\n")
		return buf.Bytes()
	}
}

// JSONFormat produces one JSON object per record. Hand-rolled rather than
// via encoding/json.Marshal(map) because Ctx values may be Lazy or
// arbitrary types that need the same normalization logfmt performs.
func JSONFormat() Format {
	return func(r *Record) []byte {
		buf := &bytes.Buffer{}
		buf.WriteString("{")
		fmt.Fprintf(buf, "%q:%q,", "t", r.Time.Format("2006-01-02T15:04:05-0700"))
		fmt.Fprintf(buf, "%q:%q,", "lvl", r.Lvl.String())
		fmt.Fprintf(buf, "%q:%q", "msg", r.Msg)
		for i := 0; i < len(r.Ctx)-1; i += 2 {
			k := fmt.Sprintf("%v", r.Ctx[i])
			v := formatLogfmtValue(r.Ctx[i+1])
			fmt.Fprintf(buf, ",%q:%q", k, v)
		}
		buf.WriteString("}\n")
		return buf.Bytes()
	}
}

func colorForLvl(l Lvl) *color.Color {
	switch l {
	case LvlCrit:
		return color.New(color.FgMagenta, color.Bold)
	case LvlError:
		return color.New(color.FgRed)
	case LvlWarn:
		return color.New(color.FgYellow)
	case LvlInfo:
		return color.New(color.FgGreen)
	case LvlDebug:
		return color.New(color.FgCyan)
	default:
		return color.New(color.FgWhite)
	}
}

func logfmt(buf *bytes.Buffer, ctx []interface{}) {
	type kv struct{ k, v string }
	var pairs []kv
	for i := 0; i < len(ctx)-1; i += 2 {
		k := fmt.Sprintf("%v", ctx[i])
		v := formatLogfmtValue(ctx[i+1])
		pairs = append(pairs, kv{k, v})
	}
	for i, p := range pairs {
		if i > 0 {
			buf.WriteString(" ")
		}
		if strings.ContainsAny(p.v, " \t\n\"=") {
			buf.WriteString(p.k)
			buf.WriteString("=")
			buf.WriteString(strconv.Quote(p.v))
		} else {
			buf.WriteString(p.k)
			buf.WriteString("=")
			buf.WriteString(p.v)
		}
	}
}

func formatLogfmtValue(v interface{}) string {
	if v == nil {
		return "nil"
	}
	if lz, ok := v.(Lazy); ok {
		return formatLogfmtValue(evaluateLazy(lz))
	}
	switch x := v.(type) {
	case string:
		return x
	case error:
		return x.Error()
	case fmt.Stringer:
		return x.String()
	case *big.Int:
		if x == nil {
			return "<nil>"
		}
		return x.String()
	case int64:
		return FormatLogfmtInt64(x)
	case uint64:
		return FormatLogfmtUint64(x)
	case int:
		return FormatLogfmtInt64(int64(x))
	default:
		return fmt.Sprintf("%+v", v)
	}
}

func evaluateLazy(l Lazy) interface{} {
	// Only a Fn of type func() interface{} is called and its result
	// formatted; any other Fn value is returned as-is.
	fn, ok := l.Fn.(func() interface{})
	if !ok {
		return l.Fn
	}
	return fn()
}

// FormatLogfmtInt64 renders n with thousands separators once it reaches
// six digits, matching the teacher's PrettyInt64 grouping.
func FormatLogfmtInt64(n int64) string {
	if n < 100_000 && n > -100_000 {
		return strconv.FormatInt(n, 10)
	}
	return groupDigits(strconv.FormatInt(n, 10))
}

// FormatLogfmtUint64 is FormatLogfmtInt64 for unsigned magnitudes.
func FormatLogfmtUint64(n uint64) string {
	if n < 100_000 {
		return strconv.FormatUint(n, 10)
	}
	return groupDigits(strconv.FormatUint(n, 10))
}

func groupDigits(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}
