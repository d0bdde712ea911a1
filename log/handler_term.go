package log

import (
	"io"
	"os"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// NewTerminalHandler builds a StreamHandler over w using TerminalFormat.
// When useColor is true and w is *os.File, it is wrapped with
// mattn/go-colorable so ANSI codes render correctly on Windows consoles,
// and color is disabled automatically when w is not a real terminal
// (mattn/go-isatty), matching the teacher's convention of only colorizing
// interactive sessions.
func NewTerminalHandler(w io.Writer, useColor bool) Handler {
	if f, ok := w.(*os.File); ok {
		if useColor && !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
			useColor = false
		}
		if useColor {
			w = colorable.NewColorable(f)
		}
	}
	return StreamHandler(w, TerminalFormat(useColor))
}
