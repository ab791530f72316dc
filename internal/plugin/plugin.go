// Package plugin defines the contract between the host application and the
// dynamically loaded plugins that contribute tab types to it.
package plugin

import (
	"context"
	"errors"

	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/settings"
)

// ErrTabTypeRegistered is returned when a tab type id is registered twice.
var ErrTabTypeRegistered = errors.New("tab type already registered")

// ErrTabTypeUnknown is returned for operations on an unregistered tab type.
var ErrTabTypeUnknown = errors.New("unknown tab type")

// TabTypeInfo describes a kind of tab the host can open.
type TabTypeInfo struct {
	ID          string `json:"id" yaml:"id"`
	DisplayName string `json:"displayName" yaml:"displayName"`
	Icon        string `json:"icon" yaml:"icon"`
}

// TabConfig is the host's description of one tab instance. Attributes carry
// the type-specific data; each tab type converts it into its own struct.
type TabConfig struct {
	ID         string
	TypeID     string
	Title      string
	Attributes map[string]string
}

// TabComponent is a live tab created by a factory.
type TabComponent interface {
	ID() string
	TabType() TabTypeInfo
	Close() error
}

// TabFactory creates the component for a tab of a registered type.
type TabFactory func(ctx context.Context, cfg TabConfig, pctx *Context) (TabComponent, error)

// TabRegistry is where plugins contribute tab types.
type TabRegistry interface {
	RegisterTabType(info TabTypeInfo, factory TabFactory) error
	UnregisterTabType(id string) error
}

// ReadStatus is the outcome of a file read.
type ReadStatus int

const (
	ReadSuccess ReadStatus = iota
	ReadTooLarge
	ReadNotFound
	ReadError
)

// FileReadResult is what the host's content provider returns for a read.
type FileReadResult struct {
	Status       ReadStatus
	Content      string
	SizeBytes    int64
	MaxSizeBytes int64
	Message      string
}

// ContentProvider reads and writes editor content.
type ContentProvider interface {
	ReadFile(ctx context.Context, path string) FileReadResult
	WriteFile(ctx context.Context, path, content string) error
	// DetectLanguage returns a language name for path, "text" when unknown.
	DetectLanguage(path string) string
}

// TitleProvider updates the title of one tab.
type TitleProvider interface {
	UpdateTitle(title string)
}

// TitleProviderFactory hands out the title provider for a tab id.
type TitleProviderFactory interface {
	Provider(tabID string) TitleProvider
}

// Executor runs a shell command line in a directory. The plugin never spawns
// processes itself.
type Executor interface {
	Execute(ctx context.Context, command, dir string) error
}

// Navigator opens a location, usually in another editor tab.
type Navigator interface {
	Open(path string, line, col int) error
}

// Level grades a user notification.
type Level int

const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
)

// Notifier shows transient messages to the user.
type Notifier interface {
	Notify(level Level, message string)
}

// UIThread marshals work onto the host's UI event loop.
type UIThread interface {
	Post(fn func())
}

// Context is what the host gives a plugin when registering it. Capabilities
// the host lacks are nil.
type Context struct {
	Tabs      TabRegistry
	Content   ContentProvider
	Titles    TitleProviderFactory
	Executor  Executor
	Navigator Navigator
	Notifier  Notifier
	UI        UIThread
	Settings  *settings.Service
}

// DynamicPlugin is implemented by every loadable plugin.
type DynamicPlugin interface {
	PluginID() string
	DisplayName() string
	Version() string
	Description() string
	Author() string
	URL() string

	// Register is called once after loading; the plugin contributes its tab
	// types here.
	Register(pctx *Context) error
	// Dispose is called when the host unloads the plugin.
	Dispose() error
}
