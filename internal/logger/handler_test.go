package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func newTestLogger(cfg Config) (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	cfg.process()
	base := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(newFilteringHandler(base, &cfg)), &buf
}

func TestFilteringHandlerTags(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		tag     string
		wantOut bool
	}{
		{"no filters untagged", Config{}, "", true},
		{"no filters tagged", Config{}, "runner", true},
		{"disabled tag", Config{DisabledTags: []string{"Runner"}}, "runner", false},
		{"enabled tag match", Config{EnabledTags: []string{"runner"}}, "runner", true},
		{"enabled tag miss", Config{EnabledTags: []string{"runner"}}, "settings", false},
		{"enabled tags drop untagged", Config{EnabledTags: []string{"runner"}}, "", false},
		{"disabled wins over enabled", Config{EnabledTags: []string{"x"}, DisabledTags: []string{"x"}}, "x", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, buf := newTestLogger(tt.cfg)
			if tt.tag != "" {
				log = log.With(tagKey, tt.tag)
			}
			log.Info("hello")
			got := strings.Contains(buf.String(), "hello")
			if got != tt.wantOut {
				t.Errorf("output present = %v, want %v (output %q)", got, tt.wantOut, buf.String())
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"err":     slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
