// Package event is the typed in-process bus editor tabs use to tell their
// host what happened.
package event

import (
	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/entrypoint"
	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/settings"
)

// Type identifies the kind of event.
type Type int

const (
	TypeUnknown Type = iota

	// Document events
	TypeContentChanged // content edited by the user
	TypeFileLoaded     // content read from storage (or failed to)
	TypeFileSaved      // content written to storage
	TypeTitleChanged   // tab title changed

	// Analysis events
	TypeEntryPointsChanged // run gutter must be redrawn
	TypeHighlightReady     // a fresh token set is available

	// Host events
	TypeSettingsReloaded
	TypeRunRequested
	TypeTabClosed
)

var typeNames = map[Type]string{
	TypeUnknown:            "unknown",
	TypeContentChanged:     "content-changed",
	TypeFileLoaded:         "file-loaded",
	TypeFileSaved:          "file-saved",
	TypeTitleChanged:       "title-changed",
	TypeEntryPointsChanged: "entry-points-changed",
	TypeHighlightReady:     "highlight-ready",
	TypeSettingsReloaded:   "settings-reloaded",
	TypeRunRequested:       "run-requested",
	TypeTabClosed:          "tab-closed",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "unknown"
}

// Event is the structure passed through the event bus.
type Event struct {
	Type  Type
	TabID string
	Data  any
}

// FileLoadedData reports the outcome of loading a tab's file. Message is set
// when the file could not be shown.
type FileLoadedData struct {
	FilePath string
	Message  string
}

// FileSavedData names the written file.
type FileSavedData struct {
	FilePath string
}

// TitleChangedData carries the new display title.
type TitleChangedData struct {
	Title string
}

// EntryPointsChangedData carries the fresh scan result.
type EntryPointsChangedData struct {
	EntryPoints []entrypoint.EntryPoint
}

// SettingsReloadedData carries the new settings value.
type SettingsReloadedData struct {
	Settings settings.Settings
}

// RunRequestedData is the command handed to the executor.
type RunRequestedData struct {
	Command string
	Dir     string
}
