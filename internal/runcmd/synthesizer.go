// Package runcmd turns a detected entry point into the shell command that runs it.
package runcmd

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/entrypoint"
	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/lang"
	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/project"
)

// Command is a shell command line and the directory it must run in.
type Command struct {
	Line string `json:"command" yaml:"command"`
	Dir  string `json:"workingDir" yaml:"workingDir"`
}

// Platform selects shell conventions.
type Platform int

const (
	Unix Platform = iota
	Windows
)

// CurrentPlatform reports the platform of the running process.
func CurrentPlatform() Platform {
	if runtime.GOOS == "windows" {
		return Windows
	}
	return Unix
}

// Separator chains two commands. The Windows shell's && does not behave like
// the POSIX one, so commands are sequenced with ; there.
func (p Platform) Separator() string {
	if p == Windows {
		return " ; "
	}
	return " && "
}

func (p Platform) gradleWrapper() string {
	if p == Windows {
		return `.\gradlew.bat`
	}
	return "./gradlew"
}

func (p Platform) mavenWrapper() string {
	if p == Windows {
		return `.\mvnw.cmd`
	}
	return "./mvnw"
}

// invoke runs a program given by (escaped) path.
func (p Platform) invoke(quotedPath string) string {
	if p == Windows {
		return "& " + quotedPath
	}
	return quotedPath
}

// DefaultInterpreters are the programs used for direct runtime invocation.
var DefaultInterpreters = map[lang.Language]string{
	lang.Python:     "python3",
	lang.JavaScript: "node",
	lang.TypeScript: "npx tsx",
	lang.Ruby:       "ruby",
	lang.PHP:        "php",
	lang.Shell:      "bash",
	lang.C:          "cc",
	lang.Cpp:        "c++",
}

// Synthesizer builds run commands. The zero value targets the current
// platform with the default interpreters and the system temp dir.
type Synthesizer struct {
	Platform     Platform
	Interpreters map[lang.Language]string
	TempDir      string
}

// New returns a Synthesizer for the current platform.
func New(interpreters map[lang.Language]string, tempDir string) *Synthesizer {
	return &Synthesizer{Platform: CurrentPlatform(), Interpreters: interpreters, TempDir: tempDir}
}

type template func(s *Synthesizer, ep entrypoint.EntryPoint, root string) string

var templates = map[lang.Language]template{
	lang.Kotlin:     kotlinCommand,
	lang.Java:       javaCommand,
	lang.Python:     interpretedCommand,
	lang.Go:         goCommand,
	lang.Rust:       rustCommand,
	lang.C:          nativeCommand,
	lang.Cpp:        nativeCommand,
	lang.JavaScript: interpretedCommand,
	lang.TypeScript: interpretedCommand,
	lang.Ruby:       interpretedCommand,
	lang.PHP:        interpretedCommand,
	lang.Shell:      interpretedCommand,
}

// Synthesize returns the command running ep from projectRoot. Unknown
// languages get a harmless echo instead of an error.
func (s *Synthesizer) Synthesize(ep entrypoint.EntryPoint, projectRoot string) Command {
	t, ok := templates[ep.Language]
	if !ok {
		msg := fmt.Sprintf("No run configuration for %s files", ep.Language)
		return Command{Line: "echo " + ShellEscape(msg), Dir: projectRoot}
	}
	return Command{Line: t(s, ep, projectRoot), Dir: projectRoot}
}

func (s *Synthesizer) interpreter(l lang.Language) string {
	if p, ok := s.Interpreters[l]; ok && p != "" {
		return p
	}
	return DefaultInterpreters[l]
}

func (s *Synthesizer) tempPath(name string) string {
	dir := s.TempDir
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, name)
}

func (s *Synthesizer) chain(cmds ...string) string {
	return strings.Join(cmds, s.Platform.Separator())
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ownerModule finds the build unit owning file: the directory path before the
// first "src" segment, accepted only when hasBuild confirms it.
func ownerModule(root, file string, hasBuild func(string) bool) []string {
	rel, err := filepath.Rel(root, file)
	if err != nil || strings.HasPrefix(rel, "..") {
		return nil
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	for i, p := range parts {
		if p != "src" {
			continue
		}
		if i == 0 || i == len(parts)-1 {
			return nil
		}
		if hasBuild(filepath.Join(append([]string{root}, parts[:i]...)...)) {
			return parts[:i]
		}
		return nil
	}
	return nil
}

func (s *Synthesizer) gradleRun(ep entrypoint.EntryPoint, root string) string {
	task := "run"
	if mod := ownerModule(root, ep.FilePath, project.HasGradleBuild); mod != nil {
		task = ":" + strings.Join(mod, ":") + ":run"
	}
	return s.Platform.gradleWrapper() + " " + ShellEscape(task)
}

func kotlinCommand(s *Synthesizer, ep entrypoint.EntryPoint, root string) string {
	file := ShellEscape(ep.FilePath)
	if lang.IsScript(ep.FilePath) {
		return "kotlinc -script " + file
	}
	if project.HasGradleWrapper(root) {
		return s.gradleRun(ep, root)
	}
	jar := ShellEscape(s.tempPath(stem(ep.FilePath) + ".jar"))
	return s.chain(
		"kotlinc "+file+" -include-runtime -d "+jar,
		"java -jar "+jar,
	)
}

// MainClass is the fully qualified class Maven should execute.
func MainClass(ep entrypoint.EntryPoint) string {
	class := ep.Class
	if class == "" {
		class = "Main"
	}
	if ep.Package != "" {
		return ep.Package + "." + class
	}
	return class
}

func javaCommand(s *Synthesizer, ep entrypoint.EntryPoint, root string) string {
	if project.HasGradleWrapper(root) {
		return s.gradleRun(ep, root)
	}
	if project.Exists(filepath.Join(root, "pom.xml")) {
		mvn := "mvn"
		if project.Exists(filepath.Join(root, "mvnw")) {
			mvn = s.Platform.mavenWrapper()
		}
		return mvn + " compile exec:java -Dexec.mainClass=" + ShellEscape(MainClass(ep))
	}
	return "java " + ShellEscape(ep.FilePath)
}

func goCommand(s *Synthesizer, ep entrypoint.EntryPoint, root string) string {
	return "go run " + ShellEscape(ep.FilePath)
}

func rustCommand(s *Synthesizer, ep entrypoint.EntryPoint, root string) string {
	if project.Exists(filepath.Join(root, "Cargo.toml")) {
		member := ownerModule(root, ep.FilePath, func(dir string) bool {
			return project.Exists(filepath.Join(dir, "Cargo.toml"))
		})
		if member == nil {
			return "cargo run"
		}
		name := project.CargoPackageName(filepath.Join(append([]string{root}, member...)...))
		if name == "" {
			name = member[len(member)-1]
		}
		return "cargo run -p " + ShellEscape(name)
	}
	bin := ShellEscape(s.tempPath(stem(ep.FilePath)))
	return s.chain(
		"rustc "+ShellEscape(ep.FilePath)+" -o "+bin,
		s.Platform.invoke(bin),
	)
}

func nativeCommand(s *Synthesizer, ep entrypoint.EntryPoint, root string) string {
	bin := ShellEscape(s.tempPath(stem(ep.FilePath)))
	return s.chain(
		s.interpreter(ep.Language)+" "+ShellEscape(ep.FilePath)+" -o "+bin,
		s.Platform.invoke(bin),
	)
}

func interpretedCommand(s *Synthesizer, ep entrypoint.EntryPoint, root string) string {
	return s.interpreter(ep.Language) + " " + ShellEscape(ep.FilePath)
}
