package cli

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// logFormats maps --log-format values to formatters. Text is for terminals;
// json and logfmt suit `dendro serve` behind a log collector.
var logFormats = map[string]log.Formatter{
	"text":   log.TextFormatter,
	"json":   log.JSONFormatter,
	"logfmt": log.LogfmtFormatter,
}

func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// setLogFormat switches l to the named formatter. Structured formats get
// RFC 3339 timestamps.
func setLogFormat(l *log.Logger, name string) error {
	f, ok := logFormats[strings.ToLower(name)]
	if !ok {
		names := make([]string, 0, len(logFormats))
		for n := range logFormats {
			names = append(names, n)
		}
		slices.Sort(names)
		return fmt.Errorf("unknown log format %q (one of %s)", name, strings.Join(names, ", "))
	}
	l.SetFormatter(f)
	if f != log.TextFormatter {
		l.SetTimeFormat(time.RFC3339)
	}
	return nil
}

// progress times one command and logs the result once.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

func (p *progress) done(msg string, keyvals ...any) {
	took := time.Since(p.start).Round(time.Millisecond)
	p.logger.Info(msg, append(keyvals, "elapsed", took)...)
}

type loggerKey struct{}

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext falls back to log.Default outside a command.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
