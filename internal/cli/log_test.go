package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		level     log.Level
		wantDebug bool
		wantInfo  bool
	}{
		{log.DebugLevel, true, true},
		{log.InfoLevel, false, true},
		{log.WarnLevel, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			var buf bytes.Buffer
			l := newLogger(&buf, tt.level)

			l.Debug("debug line")
			if got := strings.Contains(buf.String(), "debug line"); got != tt.wantDebug {
				t.Errorf("debug written = %v, want %v", got, tt.wantDebug)
			}
			l.Info("info line")
			if got := strings.Contains(buf.String(), "info line"); got != tt.wantInfo {
				t.Errorf("info written = %v, want %v", got, tt.wantInfo)
			}
		})
	}
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	newProgress(newLogger(&buf, log.InfoLevel)).done("clustered", "items", 4)

	for _, want := range []string{"clustered", "items=4", "elapsed="} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output %q missing %q", buf.String(), want)
		}
	}
}

func TestLoggerContext(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("empty context should yield the default logger")
	}

	var buf bytes.Buffer
	l := newLogger(&buf, log.InfoLevel)
	got := loggerFromContext(withLogger(context.Background(), l))
	if got != l {
		t.Fatal("attached logger not returned")
	}
	got.Info("routed")
	if !strings.Contains(buf.String(), "routed") {
		t.Error("attached logger did not write")
	}
}

func TestSetLogFormat(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{"text", "routed items=4"},
		{"json", `"msg":"routed"`},
		{"LOGFMT", "msg=routed items=4"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			l := newLogger(&buf, log.InfoLevel)
			if err := setLogFormat(l, tt.format); err != nil {
				t.Fatal(err)
			}
			l.Info("routed", "items", 4)
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("output %q missing %q", buf.String(), tt.want)
			}
		})
	}

	err := setLogFormat(newLogger(io.Discard, log.InfoLevel), "xml")
	if err == nil || !strings.Contains(err.Error(), "json, logfmt, text") {
		t.Errorf("setLogFormat(xml) error = %v", err)
	}
}
