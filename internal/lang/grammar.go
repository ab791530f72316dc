package lang

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/bash"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/kotlin"
	"github.com/smacker/go-tree-sitter/php"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/ruby"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

var grammars = map[Language]func() *sitter.Language{
	Kotlin:     kotlin.GetLanguage,
	Java:       java.GetLanguage,
	Python:     python.GetLanguage,
	Go:         golang.GetLanguage,
	Rust:       rust.GetLanguage,
	C:          c.GetLanguage,
	Cpp:        cpp.GetLanguage,
	JavaScript: javascript.GetLanguage,
	TypeScript: typescript.GetLanguage,
	Ruby:       ruby.GetLanguage,
	PHP:        php.GetLanguage,
	Shell:      bash.GetLanguage,
}

// Grammar returns the tree-sitter grammar for l, or nil when none is bundled.
func Grammar(l Language) *sitter.Language {
	if get, ok := grammars[l]; ok {
		return get()
	}
	return nil
}
