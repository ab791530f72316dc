package project

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeTree creates files (relative to root) with the given contents.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		full := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("Failed to create directory for %s: %v", rel, err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to write %s: %v", rel, err)
		}
	}
}

// skipIfAncestorsHaveMarkers guards tests that rely on walking past the temp dir.
func skipIfAncestorsHaveMarkers(t *testing.T, dir string) {
	t.Helper()
	if up := ancestorWith(dir, func(d string) bool {
		_, ok := matchDir(d)
		return ok
	}); up != "" {
		t.Skipf("ancestor %s of the temp dir holds a project marker", up)
	}
}

func TestResolveRoot(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		file  string
		want  string
	}{
		{
			name: "gradle wrapper beats submodule build file",
			files: map[string]string{
				"gradlew":                     "#!/bin/sh\n",
				"settings.gradle.kts":         "include(\":app\")\n",
				"app/build.gradle.kts":        "plugins {}\n",
				"app/src/main/kotlin/Main.kt": "fun main() {}\n",
			},
			file: "app/src/main/kotlin/Main.kt",
			want: ".",
		},
		{
			name: "standalone gradle build without wrapper",
			files: map[string]string{
				"lib/build.gradle":         "",
				"lib/src/main/java/A.java": "",
			},
			file: "lib/src/main/java/A.java",
			want: "lib",
		},
		{
			name: "maven descriptor",
			files: map[string]string{
				"svc/pom.xml":                "<project/>",
				"svc/src/main/java/App.java": "",
			},
			file: "svc/src/main/java/App.java",
			want: "svc",
		},
		{
			name: "cargo workspace preferred over member manifest",
			files: map[string]string{
				"Cargo.toml":         "[workspace]\nmembers = [\"member\"]\n",
				"member/Cargo.toml":  "[package]\nname = \"member\"\n",
				"member/src/main.rs": "fn main() {}\n",
			},
			file: "member/src/main.rs",
			want: ".",
		},
		{
			name: "cargo package without workspace",
			files: map[string]string{
				"tool/Cargo.toml":  "[package]\nname = \"tool\"\n",
				"tool/src/main.rs": "fn main() {}\n",
			},
			file: "tool/src/main.rs",
			want: "tool",
		},
		{
			name: "package.json",
			files: map[string]string{
				"web/package.json": "{}",
				"web/src/index.js": "",
			},
			file: "web/src/index.js",
			want: "web",
		},
		{
			name: "nearest marker wins over depth",
			files: map[string]string{
				"pom.xml":            "<project/>",
				"inner/package.json": "{}",
				"inner/a.js":         "",
			},
			file: "inner/a.js",
			want: "inner",
		},
		{
			name: "vcs marker as last resort",
			files: map[string]string{
				".git/HEAD":      "ref: refs/heads/main\n",
				"scripts/run.py": "",
			},
			file: "scripts/run.py",
			want: ".",
		},
		{
			name: "wrapper outranks vcs in the same directory",
			files: map[string]string{
				".git/HEAD": "",
				"gradlew":   "",
				"Main.kt":   "",
			},
			file: "Main.kt",
			want: ".",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			writeTree(t, root, tt.files)
			got := ResolveRoot(filepath.Join(root, tt.file))
			want := filepath.Join(root, tt.want)
			if got != want {
				t.Errorf("ResolveRoot() = %s, want %s", got, want)
			}
		})
	}
}

func TestResolveRootWithoutMarkersReturnsParent(t *testing.T) {
	root := t.TempDir()
	skipIfAncestorsHaveMarkers(t, root)
	writeTree(t, root, map[string]string{"a/b/c.py": ""})

	file := filepath.Join(root, "a", "b", "c.py")
	if got, want := ResolveRoot(file), filepath.Join(root, "a", "b"); got != want {
		t.Errorf("ResolveRoot() = %s, want %s", got, want)
	}
}

func TestResolveRootIsAncestorOfStart(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"gradlew":            "",
		"m/build.gradle.kts": "",
		"m/src/x/Y.kt":       "",
	})
	file := filepath.Join(root, "m", "src", "x", "Y.kt")
	got := ResolveRoot(file)
	if got != root || !strings.HasPrefix(filepath.Dir(file), got+string(filepath.Separator)) {
		t.Errorf("root %s is not an ancestor of %s", got, file)
	}
}

func TestCargoPackageName(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"Cargo.toml":     "[package]\nname = \"demo-bin\"\nversion = \"0.1.0\"\n",
		"bad/Cargo.toml": "not = [valid toml",
	})
	if got := CargoPackageName(root); got != "demo-bin" {
		t.Errorf("CargoPackageName() = %q, want demo-bin", got)
	}
	if got := CargoPackageName(filepath.Join(root, "bad")); got != "" {
		t.Errorf("CargoPackageName(bad) = %q, want empty", got)
	}
}
