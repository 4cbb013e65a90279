// Package ast defines the shared node types produced by the Parser
// (spec §4.3) and consumed by every later pipeline stage. Nodes are
// mutated in place by the Variable Resolver (the only stage permitted
// to annotate rather than replace, per spec §2) and otherwise treated
// as immutable snapshots handed from one stage to the next.
package ast

// ValueKind tags a PropertyValue's underlying representation (spec §3
// Property Value: "a closed tagged union... implementers should not
// use runtime type-bag abstractions", spec §9).
type ValueKind int

const (
	ValString ValueKind = iota
	ValNumber           // numeric literal, Unit may be set
	ValColor
	ValIdentifier // bare identifier used for enum-valued properties
	ValVarRef     // $name, not yet substituted
	ValExpr       // balanced parenthesized expression, substituted but not yet evaluated
)

type Unit int

const (
	UnitNone Unit = iota
	UnitPx
	UnitPercent
	UnitEm
)

// PropertyValue is the tagged union carried on every property entry
// until the Variable Resolver / Style Resolver reduce it to a concrete
// value.
type PropertyValue struct {
	Kind   ValueKind
	Text   string // raw text: string contents, number text, color hex, identifier, var name, or expr body
	Unit   Unit
	Line   int
	Column int
}

// Property is a single `key: value` pair attached to a style or element.
type Property struct {
	Name  string
	Value PropertyValue
	Line  int
}

// PseudoBlock is a `&:<state> { ... }` overlay on a Style.
type PseudoBlock struct {
	State      string // hover | active | focus | disabled | checked
	Properties []Property
	Line       int
}

// Style corresponds to spec §3 Style.
type Style struct {
	Name        string
	Extends     []string
	Properties  []Property
	Pseudo      []PseudoBlock
	Line        int
	ModulePath  string
}

// ComponentProperty is a declared property of a Component Definition
// (spec §3 Component Definition).
type ComponentProperty struct {
	Name     string
	Type     string // String | Int | Float | Bool | Color | Size
	Default  *PropertyValue
	Required bool
	Line     int
}

// ComponentDef corresponds to spec §3 Component Definition.
type ComponentDef struct {
	Name       string
	Properties []ComponentProperty
	Template   *Element
	ModulePath string
	Line       int
}

// ScriptRecord corresponds to spec §3 Script Record.
type ScriptRecord struct {
	Lang        string // lua | javascript | python | wren
	Name        string
	FromPath    string // non-empty if `from "<path>"` was used
	Body        string // inline body, substituted with FromPath contents at load time
	EntryPoints []string
	ModulePath  string
	Line        int
}

// VariableDecl is a single `name: expr` inside an `@variables` block.
type VariableDecl struct {
	Name    string
	RawText string
	Line    int
}

// Element corresponds to spec §3 Element.
type Element struct {
	Type       string // App | Container | Text | Button | Input | Image | component-instance name
	ID         string
	Properties []Property
	StyleNames []string // zero, one, or many applied style names
	Children   []*Element
	Parent     *Element // borrowed back-reference per spec §9; never owned
	Line       int
	ModulePath string

	// IsComponentInstance marks an element whose Type matched a
	// defined component name at parse time, pending expansion by the
	// Component Resolver (spec §4.3 "tagged as component instances").
	IsComponentInstance bool

	// LayoutFlags is computed by the Semantic Analyzer (spec §4.7).
	LayoutFlags uint8
	// HasStateProperties is set if this element carries any pseudo-state styling.
	HasStateProperties bool
}

// Module corresponds to spec §3 Module: one KRY file after include
// expansion, holding its own namespace plus a dependency set and rank.
type Module struct {
	Path         string
	Variables    []VariableDecl
	Styles       []Style
	Components   []ComponentDef
	Scripts      []ScriptRecord
	Root         *Element // nil until the element tree is parsed
	Dependencies []string // canonical paths of modules this module includes
	ImportRank   int
}

// File is the fully parsed output of a single module's text: the flat
// list of top-level items the Parser recognizes (spec §4.3), before
// they are distributed into the Module's namespaces. Kept separate
// from Module so the Parser has no dependency on the Preprocessor's
// rank-assignment logic.
type File struct {
	Variables  []VariableDecl
	Styles     []Style
	Components []ComponentDef
	Scripts    []ScriptRecord
	Root       *Element
}
