// Package lang maps file names to the languages the editor tab understands.
package lang

import (
	"path/filepath"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// Language identifies a source language.
type Language int

const (
	Unknown Language = iota
	Kotlin
	Java
	Python
	Go
	Rust
	C
	Cpp
	JavaScript
	TypeScript
	Ruby
	PHP
	Shell
)

var names = map[Language]string{
	Unknown:    "unknown",
	Kotlin:     "kotlin",
	Java:       "java",
	Python:     "python",
	Go:         "go",
	Rust:       "rust",
	C:          "c",
	Cpp:        "cpp",
	JavaScript: "javascript",
	TypeScript: "typescript",
	Ruby:       "ruby",
	PHP:        "php",
	Shell:      "shell",
}

func (l Language) String() string {
	if n, ok := names[l]; ok {
		return n
	}
	return names[Unknown]
}

// MarshalText lets languages appear by name in JSON and YAML output.
func (l Language) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// Parse returns the language with the given name, or Unknown.
func Parse(name string) Language {
	name = strings.ToLower(strings.TrimSpace(name))
	for l, n := range names {
		if n == name {
			return l
		}
	}
	switch name {
	case "c++":
		return Cpp
	case "golang":
		return Go
	case "bash", "sh":
		return Shell
	}
	return Unknown
}

var extensions = map[string]Language{
	".kt":   Kotlin,
	".kts":  Kotlin,
	".java": Java,
	".py":   Python,
	".pyw":  Python,
	".go":   Go,
	".rs":   Rust,
	".c":    C,
	".h":    C,
	".cc":   Cpp,
	".cpp":  Cpp,
	".cxx":  Cpp,
	".hpp":  Cpp,
	".hh":   Cpp,
	".js":   JavaScript,
	".mjs":  JavaScript,
	".cjs":  JavaScript,
	".jsx":  JavaScript,
	".ts":   TypeScript,
	".tsx":  TypeScript,
	".mts":  TypeScript,
	".rb":   Ruby,
	".php":  PHP,
	".sh":   Shell,
	".bash": Shell,
	".zsh":  Shell,
}

// enryNames maps linguist language names onto ours.
var enryNames = map[string]Language{
	"Kotlin":     Kotlin,
	"Java":       Java,
	"Python":     Python,
	"Go":         Go,
	"Rust":       Rust,
	"C":          C,
	"C++":        Cpp,
	"JavaScript": JavaScript,
	"TypeScript": TypeScript,
	"TSX":        TypeScript,
	"Ruby":       Ruby,
	"PHP":        PHP,
	"Shell":      Shell,
}

// FromPath looks the language up by extension only.
func FromPath(path string) Language {
	return extensions[strings.ToLower(filepath.Ext(path))]
}

// Detect resolves the language from the extension table, falling back to
// linguist heuristics over the file name and content (shebangs, modelines).
func Detect(path string, content []byte) Language {
	if l := FromPath(path); l != Unknown {
		return l
	}
	if name, safe := enry.GetLanguageByExtension(path); safe {
		if l, ok := enryNames[name]; ok {
			return l
		}
	}
	if len(content) == 0 {
		return Unknown
	}
	return enryNames[enry.GetLanguage(filepath.Base(path), content)]
}

// IsScript reports whether a file is the script variant of its language,
// which runs through an interpreter rather than a build.
func IsScript(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".kts")
}
