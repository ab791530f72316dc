package settings

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr bool
		check   func(Settings) bool
	}{
		{"empty object keeps defaults", `{}`, false, func(s Settings) bool { return s == Defaults() }},
		{"partial override", `{"tabSize": 2, "wordWrap": true}`, false, func(s Settings) bool {
			return s.TabSize == 2 && s.WordWrap && s.FontSize == Defaults().FontSize
		}},
		{"unknown fields ignored", `{"fontSize": 16, "futureOption": [1, 2]}`, false, func(s Settings) bool { return s.FontSize == 16 }},
		{"invalid values reset", `{"tabSize": -1, "autoSaveDelayMs": 5, "theme": ""}`, false, func(s Settings) bool {
			return s.TabSize == 4 && s.AutoSaveDelayMs == 1000 && s.Theme == "default"
		}},
		{"malformed falls back", `{"tabSize": `, true, func(s Settings) bool { return s == Defaults() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Parse([]byte(tt.data))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.check(s) {
				t.Errorf("Parse() = %+v", s)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil || s != Defaults() {
		t.Errorf("Load() = %+v, %v", s, err)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", DefaultFileName)
	want := Defaults()
	want.AutoSave = true
	want.Theme = "monokai"
	if err := Save(path, want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := Load(path)
	if err != nil || got != want {
		t.Errorf("Load() = %+v, %v; want %+v", got, err, want)
	}
}

func TestServiceReloadAndSubscribe(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	svc := New(path, Options{})
	defer svc.Close()

	var got []Settings
	cancel := svc.Subscribe(func(s Settings) { got = append(got, s) })

	if err := os.WriteFile(path, []byte(`{"tabSize": 8}`), 0o644); err != nil {
		t.Fatal(err)
	}
	changed, err := svc.Reload()
	if err != nil || !changed {
		t.Fatalf("Reload() = %v, %v", changed, err)
	}
	if svc.Current().TabSize != 8 || len(got) != 1 {
		t.Errorf("Current() = %+v, notifications = %d", svc.Current(), len(got))
	}

	// same value is not published again
	if changed, _ := svc.Reload(); changed {
		t.Error("Reload() of unchanged file reported a change")
	}

	cancel()
	_ = os.WriteFile(path, []byte(`{"tabSize": 2}`), 0o644)
	_, _ = svc.Reload()
	if len(got) != 1 {
		t.Errorf("unsubscribed callback still called")
	}
}

func TestServiceMalformedFallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	_ = os.WriteFile(path, []byte(`{"tabSize": 3}`), 0o644)
	svc := New(path, Options{})
	if svc.Current().TabSize != 3 {
		t.Fatalf("initial TabSize = %d", svc.Current().TabSize)
	}
	_ = os.WriteFile(path, []byte(`not json`), 0o644)
	if _, err := svc.Reload(); err == nil {
		t.Error("Reload() of malformed file returned no error")
	}
	if svc.Current() != Defaults() {
		t.Errorf("Current() = %+v, want defaults", svc.Current())
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestServiceWatchModes(t *testing.T) {
	for _, mode := range []Mode{ModePoll, ModeNotify} {
		t.Run(string(mode), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), DefaultFileName)
			svc := New(path, Options{Interval: 20 * time.Millisecond, Mode: mode})
			if err := svc.Start(context.Background()); err != nil {
				t.Fatalf("Start() error = %v", err)
			}
			defer svc.Close()
			if err := svc.Start(context.Background()); err != ErrAlreadyStarted {
				t.Errorf("second Start() = %v", err)
			}

			if err := os.WriteFile(path, []byte(`{"showRunGutter": false, "fontSize": 20}`), 0o644); err != nil {
				t.Fatal(err)
			}
			waitFor(t, func() bool { return svc.Current().FontSize == 20 })
			if svc.Current().ShowRunGutter {
				t.Error("ShowRunGutter not reloaded")
			}
		})
	}
}

func TestCloseWithoutStart(t *testing.T) {
	svc := New(filepath.Join(t.TempDir(), DefaultFileName), Options{})
	if err := svc.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
}
