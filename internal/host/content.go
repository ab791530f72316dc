// Package host provides local implementations of the capabilities a host
// application hands to plugins. The terminal host and the CLI use them.
package host

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/lang"
	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/plugin"
)

// ErrFileTooLarge is returned when a file exceeds the configured maximum.
var ErrFileTooLarge = errors.New("file too large")

// LocalContent reads and writes files on the local disk.
type LocalContent struct {
	// MaxSize returns the largest file that may be opened, read on every call
	// so settings changes apply to the next read.
	MaxSize func() int64
}

// NewLocalContent creates a provider with a fixed maximum size.
func NewLocalContent(maxSize int64) *LocalContent {
	return &LocalContent{MaxSize: func() int64 { return maxSize }}
}

func (c *LocalContent) maxSize() int64 {
	if c.MaxSize == nil {
		return 0
	}
	return c.MaxSize()
}

// Read returns the file content, ErrFileTooLarge, or the underlying error.
func (c *LocalContent) Read(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", path)
	}
	if max := c.maxSize(); max > 0 && info.Size() > max {
		return "", fmt.Errorf("%s is %d bytes, limit %d: %w", path, info.Size(), max, ErrFileTooLarge)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ReadFile implements plugin.ContentProvider.
func (c *LocalContent) ReadFile(ctx context.Context, path string) plugin.FileReadResult {
	if err := ctx.Err(); err != nil {
		return plugin.FileReadResult{Status: plugin.ReadError, Message: err.Error()}
	}
	content, err := c.Read(path)
	switch {
	case err == nil:
		return plugin.FileReadResult{Status: plugin.ReadSuccess, Content: content, SizeBytes: int64(len(content))}
	case errors.Is(err, fs.ErrNotExist):
		return plugin.FileReadResult{Status: plugin.ReadNotFound}
	case errors.Is(err, ErrFileTooLarge):
		var size int64
		if info, serr := os.Stat(path); serr == nil {
			size = info.Size()
		}
		return plugin.FileReadResult{Status: plugin.ReadTooLarge, SizeBytes: size, MaxSizeBytes: c.maxSize()}
	default:
		return plugin.FileReadResult{Status: plugin.ReadError, Message: err.Error()}
	}
}

// WriteFile replaces path atomically, keeping the existing permissions.
func (c *LocalContent) WriteFile(ctx context.Context, path, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	perm := fs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to write file '%s': %w", path, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write file '%s': %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write file '%s': %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), perm); err != nil {
		return fmt.Errorf("failed to write file '%s': %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write file '%s': %w", path, err)
	}
	return nil
}

// DetectLanguage names the language of path.
func (c *LocalContent) DetectLanguage(path string) string {
	l := lang.Detect(path, nil)
	if l == lang.Unknown {
		return "text"
	}
	return l.String()
}

var _ plugin.ContentProvider = (*LocalContent)(nil)
