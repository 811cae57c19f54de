package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"info":  slog.LevelInfo,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}
	for in, want := range cases {
		got, silent := parseLogLevel(in)
		if got != want || silent {
			t.Fatalf("parseLogLevel(%q)=%v,%v want=%v,false", in, got, silent, want)
		}
	}
	if _, silent := parseLogLevel("silent"); !silent {
		t.Fatal("parseLogLevel(silent) not silent")
	}
}

func TestNew_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "casedesk.log")
	logger, closer, err := New(path, "warn")
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	logger.Info("dropped")
	logger.Warn("refresh failed", "status", 401)
	if err := closer.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if strings.Contains(out, "dropped") {
		t.Error("info record written at warn level")
	}
	if !strings.Contains(out, "refresh failed") || !strings.Contains(out, "status=401") {
		t.Errorf("log = %q", out)
	}
	info, _ := os.Stat(path)
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("log mode = %o, want 600", perm)
	}
}

func TestNew_Silent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "casedesk.log")
	logger, closer, err := New(path, "silent")
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	logger.Error("nobody hears this")
	closer.Close() //nolint:errcheck
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("silent logger created a file")
	}
}
