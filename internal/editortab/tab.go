// Package editortab implements the "Code Editor" tab: loading and saving
// the file through the host, the run gutter, search and replace, and rename
// and go-to-declaration over the syntax tree.
package editortab

import (
	"fmt"
	"path/filepath"
	"unicode/utf8"

	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/plugin"
)

// MaxTitleLength bounds tab titles, counted in characters.
const MaxTitleLength = 64

// DefaultTitle names tabs without a file.
const DefaultTitle = "Untitled"

// DefaultContent fills a tab opened without a file.
const DefaultContent = "// New file\n// Start typing...\n"

// TabType is the tab type this package contributes.
var TabType = plugin.TabTypeInfo{ID: "editor", DisplayName: "Code Editor", Icon: "code"}

// TabData is the configuration of one editor tab.
type TabData struct {
	ID       string `json:"id" yaml:"id"`
	Title    string `json:"title" yaml:"title"`
	FilePath string `json:"filePath" yaml:"filePath"`
}

// NewTabData creates tab data titled after the file's base name.
func NewTabData(id, filePath string) TabData {
	return TabData{ID: id, FilePath: filePath}.UpdateTitle(BaseTitle(filePath))
}

// BaseTitle is the unmodified title for a file path.
func BaseTitle(filePath string) string {
	if filePath == "" {
		return DefaultTitle
	}
	if base := filepath.Base(filePath); base != "." && base != string(filepath.Separator) {
		return base
	}
	return DefaultTitle
}

// UpdateTitle returns a copy with the title set, truncated to MaxTitleLength.
func (d TabData) UpdateTitle(title string) TabData {
	if utf8.RuneCountInString(title) > MaxTitleLength {
		title = string([]rune(title)[:MaxTitleLength])
	}
	d.Title = title
	return d
}

// Config converts the data back into the host's tab description.
func (d TabData) Config() plugin.TabConfig {
	attrs := map[string]string{}
	if d.FilePath != "" {
		attrs["filePath"] = d.FilePath
	}
	return plugin.TabConfig{ID: d.ID, TypeID: TabType.ID, Title: d.Title, Attributes: attrs}
}

// filePathKeys are the attribute names hosts have used for the file path.
var filePathKeys = []string{"filePath", "file_path", "path"}

// FromInfo converts a host tab description. Descriptions of another tab type
// are rejected.
func FromInfo(cfg plugin.TabConfig) (TabData, error) {
	if cfg.TypeID != "" && cfg.TypeID != TabType.ID {
		return TabData{}, fmt.Errorf("tab %q has type %q, not %q", cfg.ID, cfg.TypeID, TabType.ID)
	}
	var path string
	for _, k := range filePathKeys {
		if v := cfg.Attributes[k]; v != "" {
			path = v
			break
		}
	}
	d := NewTabData(cfg.ID, path)
	if cfg.Title != "" {
		d = d.UpdateTitle(cfg.Title)
	}
	return d, nil
}

// FromMap converts a loosely typed host representation, such as decoded JSON.
// Present keys must hold strings.
func FromMap(m map[string]any) (TabData, error) {
	str := func(key string) (string, error) {
		v, ok := m[key]
		if !ok || v == nil {
			return "", nil
		}
		s, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("tab field %q is %T, want string", key, v)
		}
		return s, nil
	}

	cfg := plugin.TabConfig{Attributes: map[string]string{}}
	var err error
	if cfg.ID, err = str("id"); err != nil {
		return TabData{}, err
	}
	if cfg.Title, err = str("title"); err != nil {
		return TabData{}, err
	}
	if cfg.TypeID, err = str("typeId"); err != nil {
		return TabData{}, err
	}
	for _, k := range filePathKeys {
		v, err := str(k)
		if err != nil {
			return TabData{}, err
		}
		if v != "" {
			cfg.Attributes[k] = v
		}
	}
	return FromInfo(cfg)
}
