package highlight

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Symbol is one identifier occurrence in a document.
type Symbol struct {
	Name        string `json:"name" yaml:"name"`
	Kind        string `json:"kind,omitempty" yaml:"kind,omitempty"`
	Line        int    `json:"line" yaml:"line"`
	Col         int    `json:"col" yaml:"col"`
	EndCol      int    `json:"endCol" yaml:"endCol"`
	StartByte   uint32 `json:"-" yaml:"-"`
	EndByte     uint32 `json:"-" yaml:"-"`
	Declaration bool   `json:"declaration,omitempty" yaml:"declaration,omitempty"`
}

// Index records the declarations and identifier occurrences of a document.
type Index struct {
	Declarations map[string][]Symbol
	Occurrences  []Symbol
}

// declRule says which children of a node type name a declaration.
type declRule struct {
	kind string
	// field holding the name; empty means the first identifier child.
	field string
	// all collects every identifier directly under the node instead.
	all bool
}

var declRules = map[string]declRule{
	// functions and methods
	"function_declaration":    {kind: TypeFunction, field: "name"},
	"method_declaration":      {kind: TypeFunction, field: "name"},
	"function_definition":     {kind: TypeFunction, field: "name"},
	"function_item":           {kind: TypeFunction, field: "name"},
	"method_definition":       {kind: TypeFunction, field: "name"},
	"function_declarator":     {kind: TypeFunction, field: "declarator"},
	"constructor_declaration": {kind: TypeFunction, field: "name"},

	// types
	"type_spec":              {kind: TypeType, field: "name"},
	"class_declaration":      {kind: TypeType, field: "name"},
	"class_definition":       {kind: TypeType, field: "name"},
	"interface_declaration":  {kind: TypeType, field: "name"},
	"enum_declaration":       {kind: TypeType, field: "name"},
	"object_declaration":     {kind: TypeType},
	"struct_item":            {kind: TypeType, field: "name"},
	"enum_item":              {kind: TypeType, field: "name"},
	"trait_item":             {kind: TypeType, field: "name"},
	"struct_specifier":       {kind: TypeType, field: "name"},
	"type_alias_declaration": {kind: TypeType, field: "name"},

	// parameters
	"parameter_declaration": {kind: TypeParameter, field: "name"},
	"formal_parameter":      {kind: TypeParameter, field: "name"},
	"parameter":             {kind: TypeParameter, field: "pattern"},
	"typed_parameter":       {kind: TypeParameter},
	"default_parameter":     {kind: TypeParameter, field: "name"},
	"required_parameter":    {kind: TypeParameter, field: "pattern"},
	"parameters":            {kind: TypeParameter, all: true},
	"formal_parameters":     {kind: TypeParameter, all: true},

	// variables and fields
	"short_var_declaration": {kind: TypeVariable, field: "left"},
	"var_spec":              {kind: TypeVariable, field: "name"},
	"const_spec":            {kind: TypeVariable, field: "name"},
	"let_declaration":       {kind: TypeVariable, field: "pattern"},
	"variable_declarator":   {kind: TypeVariable, field: "name"},
	"init_declarator":       {kind: TypeVariable, field: "declarator"},
	"assignment":            {kind: TypeVariable, field: "left"},
	"variable_declaration":  {kind: TypeVariable},
	"field_declaration":     {kind: TypeProperty, field: "name"},

	// namespaces
	"package_clause":      {kind: TypeNamespace},
	"package_declaration": {kind: TypeNamespace},
	"package_header":      {kind: TypeNamespace},
	"import_spec":         {kind: TypeNamespace, field: "name"},
	"mod_item":            {kind: TypeNamespace, field: "name"},
}

func isIdentifier(n *sitter.Node) bool {
	return n != nil && n.IsNamed() && n.ChildCount() == 0 && strings.HasSuffix(n.Type(), "identifier")
}

// memberAccess nodes name something owned by another value, never a new binding.
var memberAccess = map[string]bool{
	"attribute":           true,
	"selector_expression": true,
	"field_expression":    true,
	"member_expression":   true,
	"subscript":           true,
	"index_expression":    true,
}

// identifiersUnder collects identifier leaves of n, looking through list and
// pattern wrappers but not into member access or nested expressions.
func identifiersUnder(n *sitter.Node, depth int) []*sitter.Node {
	if n == nil || memberAccess[n.Type()] {
		return nil
	}
	if isIdentifier(n) {
		return []*sitter.Node{n}
	}
	if depth == 0 {
		return nil
	}
	var out []*sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		out = append(out, identifiersUnder(n.NamedChild(i), depth-1)...)
	}
	return out
}

// declaredNames returns the identifier nodes a declaration node introduces.
func declaredNames(n *sitter.Node, rule declRule) []*sitter.Node {
	if rule.all {
		var out []*sitter.Node
		for i := 0; i < int(n.NamedChildCount()); i++ {
			if c := n.NamedChild(i); isIdentifier(c) {
				out = append(out, c)
			}
		}
		return out
	}
	if rule.field != "" {
		var out []*sitter.Node
		for i := 0; i < int(n.ChildCount()); i++ {
			if n.FieldNameForChild(i) == rule.field {
				out = append(out, identifiersUnder(n.Child(i), 2)...)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	// grammars without name fields (kotlin) put the name first
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c == nil {
			continue
		}
		if c.Type() == "variable_declaration" {
			return identifiersUnder(c, 1)
		}
		if !isIdentifier(c) {
			continue
		}
		if c.Type() == "type_identifier" && rule.kind != TypeType {
			continue
		}
		return []*sitter.Node{c}
	}
	return nil
}

// isCallee reports whether n names the function of a call expression.
func isCallee(n *sitter.Node) bool {
	p := n.Parent()
	if p == nil {
		return false
	}
	switch p.Type() {
	case "call_expression", "call", "method_invocation":
		if fn := p.ChildByFieldName("function"); fn != nil && sameNode(fn, n) {
			return true
		}
		if name := p.ChildByFieldName("name"); name != nil && sameNode(name, n) {
			return true
		}
		// kotlin: call_expression's first child is the callee
		if first := p.NamedChild(0); first != nil && sameNode(first, n) && p.Type() == "call_expression" {
			return true
		}
	case "selector_expression", "field_expression", "attribute", "member_expression", "navigation_suffix":
		gp := p.Parent()
		if gp == nil {
			return false
		}
		last := p.NamedChild(int(p.NamedChildCount()) - 1)
		if last == nil || !sameNode(last, n) {
			return false
		}
		switch gp.Type() {
		case "call_expression", "call":
			fn := gp.ChildByFieldName("function")
			return fn == nil || sameNode(fn, p)
		case "navigation_expression":
			ggp := gp.Parent()
			return ggp != nil && ggp.Type() == "call_expression"
		}
	}
	return false
}

func sameNode(a, b *sitter.Node) bool {
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Type() == b.Type()
}

// BuildIndex walks the tree collecting declarations and identifier occurrences.
func BuildIndex(root *sitter.Node, src []byte) *Index {
	li := newLineIndex(src)
	ix := &Index{Declarations: make(map[string][]Symbol)}
	declared := make(map[uint32]string)

	symbolFor := func(n *sitter.Node) Symbol {
		sp, ep := n.StartPoint(), n.EndPoint()
		s := Symbol{
			Name:      n.Content(src),
			Line:      int(sp.Row),
			Col:       li.col(sp.Row, sp.Column),
			StartByte: n.StartByte(),
			EndByte:   n.EndByte(),
		}
		if ep.Row == sp.Row {
			s.EndCol = li.col(ep.Row, ep.Column)
		} else {
			s.EndCol = li.col(sp.Row, ^uint32(0))
		}
		return s
	}

	var collectDecls func(n *sitter.Node)
	collectDecls = func(n *sitter.Node) {
		if rule, ok := declRules[n.Type()]; ok {
			for _, id := range declaredNames(n, rule) {
				if _, seen := declared[id.StartByte()]; seen {
					continue
				}
				declared[id.StartByte()] = rule.kind
				s := symbolFor(id)
				s.Kind = rule.kind
				s.Declaration = true
				ix.Declarations[s.Name] = append(ix.Declarations[s.Name], s)
			}
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			if c := n.NamedChild(i); c != nil {
				collectDecls(c)
			}
		}
	}
	collectDecls(root)

	var collectRefs func(n *sitter.Node)
	collectRefs = func(n *sitter.Node) {
		if isIdentifier(n) {
			s := symbolFor(n)
			if kind, ok := declared[n.StartByte()]; ok {
				s.Kind = kind
				s.Declaration = true
			} else {
				s.Kind = referenceKind(n, ix, s.Name)
			}
			ix.Occurrences = append(ix.Occurrences, s)
			return
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			if c := n.NamedChild(i); c != nil {
				collectRefs(c)
			}
		}
	}
	collectRefs(root)
	return ix
}

func referenceKind(n *sitter.Node, ix *Index, name string) string {
	if isCallee(n) {
		return TypeFunction
	}
	switch n.Type() {
	case "type_identifier":
		return TypeType
	case "field_identifier", "property_identifier", "shorthand_property_identifier":
		return TypeProperty
	case "package_identifier", "namespace_identifier":
		return TypeNamespace
	}
	if decls := ix.Declarations[name]; len(decls) > 0 {
		return decls[0].Kind
	}
	return ""
}

// At returns the occurrence covering the character column col on line.
func (ix *Index) At(line, col int) (Symbol, bool) {
	for _, s := range ix.Occurrences {
		if s.Line == line && col >= s.Col && col < s.EndCol {
			return s, true
		}
		// the cursor sitting just past an identifier still selects it
		if s.Line == line && col == s.EndCol {
			return s, true
		}
	}
	return Symbol{}, false
}

// DeclarationOf returns the first declaration of name in document order.
func (ix *Index) DeclarationOf(name string) (Symbol, bool) {
	decls := ix.Declarations[name]
	if len(decls) == 0 {
		return Symbol{}, false
	}
	best := decls[0]
	for _, d := range decls[1:] {
		if d.StartByte < best.StartByte {
			best = d
		}
	}
	return best, true
}

// References returns every occurrence of name, declarations included.
func (ix *Index) References(name string) []Symbol {
	var out []Symbol
	for _, s := range ix.Occurrences {
		if s.Name == name {
			out = append(out, s)
		}
	}
	return out
}

// semanticTokens turns the classified occurrences into overlay tokens.
func semanticTokens(ix *Index) Result {
	res := make(Result)
	for _, s := range ix.Occurrences {
		if s.Kind == "" || s.EndCol <= s.Col {
			continue
		}
		tk := Token{Start: s.Col, End: s.EndCol, Type: s.Kind}
		if s.Declaration {
			tk.Modifiers = []string{ModDeclaration}
		}
		res[s.Line] = append(res[s.Line], tk)
	}
	sortLines(res)
	return res
}
