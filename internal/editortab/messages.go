package editortab

import (
	"fmt"

	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/plugin"
)

// FormatSize renders a byte count in decimal units.
func FormatSize(n int64) string {
	switch {
	case n >= 1_000_000_000:
		return fmt.Sprintf("%.1f GB", float64(n)/1_000_000_000)
	case n >= 1_000_000:
		return fmt.Sprintf("%.1f MB", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1f KB", float64(n)/1_000)
	default:
		return fmt.Sprintf("%d bytes", n)
	}
}

// LoadMessage is the text shown in place of the editor when a read failed.
// It is empty for a successful read.
func LoadMessage(r plugin.FileReadResult, filePath string) string {
	switch r.Status {
	case plugin.ReadSuccess:
		return ""
	case plugin.ReadTooLarge:
		return fmt.Sprintf("File too large (%s). Maximum: %s", FormatSize(r.SizeBytes), FormatSize(r.MaxSizeBytes))
	case plugin.ReadNotFound:
		return "File not found: " + filePath
	default:
		if r.Message == "" {
			return "Could not read " + filePath
		}
		return r.Message
	}
}
