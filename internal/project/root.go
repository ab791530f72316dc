// Package project infers the build root that owns a source file.
package project

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Marker files, grouped by the priority they are tested in.
var (
	gradleWrappers    = []string{"gradlew", "gradlew.bat"}
	gradleDescriptors = []string{"build.gradle.kts", "build.gradle", "settings.gradle.kts", "settings.gradle"}
	singleMarkers     = []string{"pom.xml", "Cargo.toml", "package.json", "go.mod"}
	vcsMarkers        = []string{".git"}
)

const cargoManifest = "Cargo.toml"

// ResolveRoot walks upward from the file's directory and returns the first
// directory holding a build marker. With no marker anywhere it returns the
// file's own directory. It never fails.
func ResolveRoot(filePath string) string {
	start := startDir(filePath)
	for dir := start; ; {
		if root, ok := matchDir(dir); ok {
			return root
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return start
		}
		dir = parent
	}
}

func startDir(filePath string) string {
	if abs, err := filepath.Abs(filePath); err == nil {
		filePath = abs
	}
	return filepath.Dir(filePath)
}

// matchDir applies the marker rules to a single directory.
func matchDir(dir string) (string, bool) {
	if hasAny(dir, gradleWrappers) {
		return dir, true
	}
	if hasAny(dir, gradleDescriptors) {
		// a submodule's own build file loses to a wrapper further up
		if up := ancestorWith(dir, func(d string) bool { return hasAny(d, gradleWrappers) }); up != "" {
			return up, true
		}
		return dir, true
	}
	for _, m := range singleMarkers {
		if !exists(filepath.Join(dir, m)) {
			continue
		}
		if m == cargoManifest {
			if ws := ancestorWith(dir, isCargoWorkspace); ws != "" {
				return ws, true
			}
		}
		return dir, true
	}
	if hasAny(dir, vcsMarkers) {
		return dir, true
	}
	return "", false
}

// ancestorWith returns the nearest strict ancestor of dir satisfying pred.
func ancestorWith(dir string, pred func(string) bool) string {
	for {
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		if pred(parent) {
			return parent
		}
		dir = parent
	}
}

type cargoFile struct {
	Workspace *struct {
		Members []string `toml:"members"`
	} `toml:"workspace"`
	Package *struct {
		Name string `toml:"name"`
	} `toml:"package"`
}

func readCargo(path string) (cargoFile, bool) {
	var cf cargoFile
	if _, err := toml.DecodeFile(path, &cf); err != nil {
		return cf, false
	}
	return cf, true
}

func isCargoWorkspace(dir string) bool {
	cf, ok := readCargo(filepath.Join(dir, cargoManifest))
	return ok && cf.Workspace != nil
}

// CargoPackageName returns the package name declared in dir/Cargo.toml.
func CargoPackageName(dir string) string {
	cf, ok := readCargo(filepath.Join(dir, cargoManifest))
	if !ok || cf.Package == nil {
		return ""
	}
	return cf.Package.Name
}

func hasAny(dir string, names []string) bool {
	for _, n := range names {
		if exists(filepath.Join(dir, n)) {
			return true
		}
	}
	return false
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Exists reports whether path exists. Shared with the command synthesizer.
func Exists(path string) bool {
	return exists(path)
}

// HasGradleWrapper reports whether dir holds a Gradle wrapper script.
func HasGradleWrapper(dir string) bool {
	return hasAny(dir, gradleWrappers)
}

// HasGradleBuild reports whether dir holds a Gradle build or settings file.
func HasGradleBuild(dir string) bool {
	return hasAny(dir, gradleDescriptors)
}
