package log

import "gopkg.in/natefinch/lumberjack.v2"

// FileHandlerOptions configures NewFileHandler's rotation policy,
// forwarded directly to lumberjack.Logger.
type FileHandlerOptions struct {
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// NewFileHandler builds a Handler that writes LogfmtFormat lines to a
// rotating file via gopkg.in/natefinch/lumberjack.v2, the same rotation
// library the teacher's node process wires in for its own log file sink.
func NewFileHandler(opts FileHandlerOptions) Handler {
	lj := &lumberjack.Logger{
		Filename:   opts.Filename,
		MaxSize:    orDefault(opts.MaxSizeMB, 100),
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		Compress:   opts.Compress,
	}
	return StreamHandler(lj, LogfmtFormat())
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}
