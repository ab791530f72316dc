package editortab

import (
	"testing"

	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/plugin"
)

func TestFormatSize(t *testing.T) {
	tests := map[int64]string{
		0:             "0 bytes",
		999:           "999 bytes",
		1_500:         "1.5 KB",
		10_000_000:    "10.0 MB",
		2_250_000_000: "2.2 GB",
	}
	for n, want := range tests {
		if got := FormatSize(n); got != want {
			t.Errorf("FormatSize(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestLoadMessage(t *testing.T) {
	tests := []struct {
		name string
		res  plugin.FileReadResult
		want string
	}{
		{"success", plugin.FileReadResult{Status: plugin.ReadSuccess, Content: "x"}, ""},
		{"too large", plugin.FileReadResult{Status: plugin.ReadTooLarge, SizeBytes: 12_000_000, MaxSizeBytes: 10_000_000}, "File too large (12.0 MB). Maximum: 10.0 MB"},
		{"not found", plugin.FileReadResult{Status: plugin.ReadNotFound}, "File not found: /x/y.go"},
		{"error", plugin.FileReadResult{Status: plugin.ReadError, Message: "permission denied"}, "permission denied"},
		{"error without message", plugin.FileReadResult{Status: plugin.ReadError}, "Could not read /x/y.go"},
	}
	for _, tt := range tests {
		if got := LoadMessage(tt.res, "/x/y.go"); got != tt.want {
			t.Errorf("%s: LoadMessage() = %q, want %q", tt.name, got, tt.want)
		}
	}
}
