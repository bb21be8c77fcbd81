package tlogger

import (
	"io"
	"os"
	"sync"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

var (
	mu   sync.Mutex
	base log.Logger
	hlog log.Logger

	levelOnce sync.Once
)

func init() {
	SetOutput(os.Stdout, "info")
}

// SetOutput sends logfmt records to w, keeping records at lvl and above.
func SetOutput(w io.Writer, lvl string) {
	mu.Lock()
	defer mu.Unlock()

	base = log.NewLogfmtLogger(log.NewSyncWriter(w))
	base = log.With(base, "ts", log.DefaultTimestampUTC, "app", "voicestage")
	hlog = log.With(level.NewFilter(base, levelOption(lvl)), "caller", log.Caller(4))
}

// ApplyLogLevel sets the minimum level once; later calls are ignored so that
// the first command-line choice wins.
func ApplyLogLevel(lvl string) {
	levelOnce.Do(func() {
		mu.Lock()
		defer mu.Unlock()
		hlog = log.With(level.NewFilter(base, levelOption(lvl)), "caller", log.Caller(4))
	})
}

func levelOption(lvl string) level.Option {
	switch lvl {
	case "debug":
		return level.AllowDebug()
	case "warn":
		return level.AllowWarn()
	case "error":
		return level.AllowError()
	case "all":
		return level.AllowAll()
	}
	return level.AllowInfo()
}

func logger() log.Logger {
	mu.Lock()
	defer mu.Unlock()
	return hlog
}

// Debug add a log entry w/ Debug level
func Debug(keyvals ...interface{}) {
	level.Debug(logger()).Log(keyvals...)
}

// Info add a log entry w/ Info level
func Info(keyvals ...interface{}) {
	level.Info(logger()).Log(keyvals...)
}

// Warn add a log entry w/ Warn level
func Warn(keyvals ...interface{}) {
	level.Warn(logger()).Log(keyvals...)
}

// Error add a log entry w/ Error level
func Error(keyvals ...interface{}) {
	level.Error(logger()).Log(keyvals...)
}

// FatalIf logs err and exits if err != nil
func FatalIf(err error) {
	if err == nil {
		return
	}
	level.Error(logger()).Log("err", err)
	os.Exit(1)
}
