// Package entrypoint finds runnable program entry points in source text.
package entrypoint

import (
	"regexp"
	"strings"

	"github.com/risa-labs-inc/boss-plugin-editor-tab/internal/lang"
)

// EntryPoint is a location in a file that can be run.
type EntryPoint struct {
	// Line is the 0-based line of the declaration.
	Line         int           `json:"line" yaml:"line"`
	FunctionName string        `json:"functionName" yaml:"functionName"`
	FilePath     string        `json:"filePath" yaml:"filePath"`
	Language     lang.Language `json:"language" yaml:"language"`
	Package      string        `json:"package,omitempty" yaml:"package,omitempty"`
	Class        string        `json:"class,omitempty" yaml:"class,omitempty"`
}

// rule describes how one language declares its entry point.
type rule struct {
	// match is applied to each line.
	match *regexp.Regexp
	// requires must match somewhere in the file or the rule yields nothing.
	requires *regexp.Regexp
	function string
	pkg      *regexp.Regexp
	class    *regexp.Regexp
}

var (
	jvmPackage  = regexp.MustCompile(`(?m)^\s*package\s+([\w.]+)`)
	javaClass   = regexp.MustCompile(`(?m)^\s*public\s+(?:(?:final|abstract|static)\s+)*class\s+(\w+)`)
	goMainPkg   = regexp.MustCompile(`(?m)^\s*package\s+main\b`)
	cFamilyMain = regexp.MustCompile(`^\s*(?:int|void)\s+main\s*\(`)
)

var rules = map[lang.Language]rule{
	lang.Kotlin: {
		match:    regexp.MustCompile(`^\s*(?:@JvmStatic\s+)?(?:(?:public|internal|suspend)\s+)*fun\s+main\s*\(`),
		function: "main",
		pkg:      jvmPackage,
	},
	lang.Java: {
		match:    regexp.MustCompile(`^\s*public\s+static\s+(?:final\s+)?void\s+main\s*\(\s*(?:final\s+)?String\s*(?:\[\s*\]\s*\w+|\.\.\.\s*\w+|\w+\s*\[\s*\])\s*\)`),
		function: "main",
		pkg:      jvmPackage,
		class:    javaClass,
	},
	lang.Python: {
		match:    regexp.MustCompile(`^\s*if\s+(?:__name__\s*==\s*['"]__main__['"]|['"]__main__['"]\s*==\s*__name__)\s*:`),
		function: "__main__",
	},
	lang.Go: {
		match:    regexp.MustCompile(`^\s*func\s+main\s*\(\s*\)`),
		requires: goMainPkg,
		function: "main",
	},
	lang.Rust: {
		match:    regexp.MustCompile(`^\s*(?:pub\s+)?(?:async\s+)?fn\s+main\s*\(\s*\)`),
		function: "main",
	},
	lang.C: {
		match:    cFamilyMain,
		function: "main",
	},
	lang.Cpp: {
		match:    cFamilyMain,
		function: "main",
	},
}

// Supported reports whether entry points can be detected for l.
func Supported(l lang.Language) bool {
	_, ok := rules[l]
	return ok
}

// Detect returns every entry point declared in source. Languages without a
// rule yield nil.
func Detect(source string, language lang.Language, filePath string) []EntryPoint {
	r, ok := rules[language]
	if !ok || source == "" {
		return nil
	}
	if r.requires != nil && !r.requires.MatchString(source) {
		return nil
	}

	pkg := firstGroup(r.pkg, source)
	class := firstGroup(r.class, source)

	var found []EntryPoint
	for i, line := range strings.Split(source, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if !r.match.MatchString(line) {
			continue
		}
		found = append(found, EntryPoint{
			Line:         i,
			FunctionName: r.function,
			FilePath:     filePath,
			Language:     language,
			Package:      pkg,
			Class:        class,
		})
	}
	return found
}

func firstGroup(re *regexp.Regexp, source string) string {
	if re == nil {
		return ""
	}
	if m := re.FindStringSubmatch(source); len(m) > 1 {
		return m[1]
	}
	return ""
}

// Equal reports whether two scan results are identical, element by element.
func Equal(a, b []EntryPoint) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// At returns the entry point declared on line, if any.
func At(eps []EntryPoint, line int) (EntryPoint, bool) {
	for _, ep := range eps {
		if ep.Line == line {
			return ep, true
		}
	}
	return EntryPoint{}, false
}
