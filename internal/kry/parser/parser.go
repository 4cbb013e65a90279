// Package parser implements the recursive-descent Parser (spec §4.3):
// it consumes a token stream for a single module and produces an
// ast.File of top-level items. Grounded on the teacher's parser.go in
// spirit — a single-pass, stateful walk over the source — but
// restructured around a token cursor instead of raw-line indentation,
// since the KRY grammar in spec §6.2 is brace-delimited, not
// indentation-sensitive.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kryonlabs/kryc/internal/kry/ast"
	"github.com/kryonlabs/kryc/internal/kry/kryerr"
	"github.com/kryonlabs/kryc/internal/kry/token"
)

var pseudoStates = map[string]bool{
	"hover": true, "active": true, "focus": true, "disabled": true, "checked": true,
}

var elementTypes = map[string]bool{
	"App": true, "Container": true, "Text": true, "Button": true,
	"Input": true, "Image": true, "Canvas": true, "List": true,
	"Grid": true, "Scrollable": true, "Video": true,
}

// Parser walks one module's token stream. locals records the component
// names Define'd so far in this module; element tagging does not
// consult it: parseElement tags every element type outside the
// built-in set as a component instance, and the Component Resolver
// rejects instances whose name matches no definition.
type Parser struct {
	file   string
	toks   []token.Token
	pos    int
	locals map[string]bool // component names declared so far in this module
}

func Parse(file string, toks []token.Token) (*ast.File, error) {
	p := &Parser{file: file, toks: toks, locals: map[string]bool{}}
	return p.parseFile()
}

func (p *Parser) cur() token.Token  { return p.toks[p.pos] }
func (p *Parser) atEOF() bool       { return p.cur().Kind == token.EOF }
func (p *Parser) advance() token.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) err(format string, args ...any) error {
	t := p.cur()
	return &kryerr.Error{Kind: kryerr.Parse, File: p.file, Line: t.Line, Column: t.Column,
		Message: fmt.Sprintf(format, args...)}
}

func (p *Parser) expectPunct(text string) (token.Token, error) {
	t := p.cur()
	if t.Kind != token.Punct || t.Text != text {
		return t, p.err("expected %q, found %s %q", text, t.Kind, t.Text)
	}
	return p.advance(), nil
}

func (p *Parser) isPunct(text string) bool {
	t := p.cur()
	return t.Kind == token.Punct && t.Text == text
}

func (p *Parser) parseFile() (*ast.File, error) {
	f := &ast.File{}
	for !p.atEOF() {
		t := p.cur()
		switch {
		case t.Kind == token.At && t.Text == "variables":
			decls, err := p.parseVariablesBlock()
			if err != nil {
				return nil, err
			}
			f.Variables = append(f.Variables, decls...)
		case t.Kind == token.At && t.Text == "script":
			s, err := p.parseScriptBlock()
			if err != nil {
				return nil, err
			}
			f.Scripts = append(f.Scripts, s)
		case t.Kind == token.Identifier && t.Text == "style":
			s, err := p.parseStyleBlock()
			if err != nil {
				return nil, err
			}
			f.Styles = append(f.Styles, s)
		case t.Kind == token.Identifier && t.Text == "Define":
			c, err := p.parseComponentDef()
			if err != nil {
				return nil, err
			}
			f.Components = append(f.Components, c)
			p.locals[c.Name] = true
		case t.Kind == token.Identifier:
			el, err := p.parseElement()
			if err != nil {
				return nil, err
			}
			if f.Root != nil {
				return nil, p.err("multiple root elements in one module")
			}
			f.Root = el
		default:
			return nil, p.err("unexpected token %s %q at top level", t.Kind, t.Text)
		}
	}
	return f, nil
}

func (p *Parser) parseVariablesBlock() ([]ast.VariableDecl, error) {
	p.advance() // @variables
	if _, err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	var decls []ast.VariableDecl
	for !p.isPunct("}") {
		if p.atEOF() {
			return nil, p.err("unterminated @variables block")
		}
		nameTok := p.cur()
		if nameTok.Kind != token.Identifier {
			return nil, p.err("expected variable name, found %s %q", nameTok.Kind, nameTok.Text)
		}
		p.advance()
		if _, err := p.expectPunct(":"); err != nil {
			return nil, err
		}
		raw, err := p.parseRawValueText()
		if err != nil {
			return nil, err
		}
		decls = append(decls, ast.VariableDecl{Name: nameTok.Text, RawText: raw, Line: nameTok.Line})
	}
	p.advance() // }
	return decls, nil
}

// parseRawValueText consumes tokens up to (not including) the next
// top-level `}` or the start of the next declaration, reconstructing
// the original text so the Variable Resolver can run its expression
// grammar over it (spec §4.4 operates on raw, substituted text).
func (p *Parser) parseRawValueText() (string, error) {
	start := p.pos
	depth := 0
	for {
		t := p.cur()
		if t.Kind == token.EOF {
			return "", p.err("unexpected end of input reading value")
		}
		if t.Kind == token.Punct {
			switch t.Text {
			case "(":
				depth++
			case ")":
				depth--
			case "}":
				if depth == 0 {
					goto done
				}
			}
		}
		p.advance()
		if depth == 0 && p.isLineBoundary(start) {
			goto done
		}
	}
done:
	return renderTokens(p.toks[start:p.pos]), nil
}

// isLineBoundary reports whether the token just consumed ends a
// logical value: the next token starts a new line in the source and
// isn't a continuation of an expression (closing paren etc). KRY has
// no statement terminator, so one value occupies the rest of its line.
func (p *Parser) isLineBoundary(valueStart int) bool {
	if p.pos <= valueStart {
		return false
	}
	if p.atEOF() {
		return true
	}
	prevLine := p.toks[p.pos-1].Line
	return p.cur().Line != prevLine
}

func renderTokens(toks []token.Token) string {
	var sb strings.Builder
	for i, t := range toks {
		if i > 0 {
			sb.WriteByte(' ')
		}
		switch t.Kind {
		case token.StringLiteral:
			sb.WriteByte('"')
			sb.WriteString(t.Text)
			sb.WriteByte('"')
		case token.ColorLiteral:
			sb.WriteByte('#')
			sb.WriteString(t.Text)
		case token.VarRef:
			sb.WriteByte('$')
			sb.WriteString(t.Text)
		default:
			sb.WriteString(t.Text)
		}
	}
	return strings.TrimSpace(sb.String())
}

func (p *Parser) parseScriptBlock() (ast.ScriptRecord, error) {
	line := p.cur().Line
	p.advance() // @script
	if p.cur().Kind != token.Identifier {
		return ast.ScriptRecord{}, p.err("expected script language after @script")
	}
	rec := ast.ScriptRecord{Lang: p.advance().Text, Line: line}
	for p.cur().Kind == token.Identifier && (p.cur().Text == "name" || p.cur().Text == "from") {
		kw := p.advance().Text
		if p.isPunct("=") { // "=" is optional, e.g. the bare `from "<path>"` form
			p.advance()
		}
		switch kw {
		case "name":
			if p.cur().Kind != token.Identifier {
				return ast.ScriptRecord{}, p.err("expected identifier after name=")
			}
			rec.Name = p.advance().Text
		case "from":
			if p.cur().Kind != token.StringLiteral {
				return ast.ScriptRecord{}, p.err("expected string path after 'from'")
			}
			rec.FromPath = p.advance().Text
		}
	}
	// An inline body is optional when `from` gave an external path —
	// loadScripts fills rec.Body from that file later.
	if p.isPunct("{") {
		p.advance()
		depth := 1
		var body strings.Builder
		for depth > 0 {
			if p.atEOF() {
				return ast.ScriptRecord{}, p.err("unterminated @script block")
			}
			t := p.advance()
			if t.Kind == token.Punct && t.Text == "{" {
				depth++
			}
			if t.Kind == token.Punct && t.Text == "}" {
				depth--
				if depth == 0 {
					break
				}
			}
			body.WriteString(t.Text)
			body.WriteByte(' ')
		}
		rec.Body = strings.TrimSpace(body.String())
	} else if rec.FromPath == "" {
		return ast.ScriptRecord{}, p.err("expected %q, found %s %q", "{", p.cur().Kind, p.cur().Text)
	}
	rec.EntryPoints = ExtractEntryPoints(rec.Lang, rec.Body)
	return rec, nil
}

func (p *Parser) parseStyleBlock() (ast.Style, error) {
	line := p.cur().Line
	p.advance() // 'style'
	if p.cur().Kind != token.StringLiteral {
		return ast.Style{}, p.err("expected style name string")
	}
	st := ast.Style{Name: p.advance().Text, Line: line}
	if _, err := p.expectPunct("{"); err != nil {
		return ast.Style{}, err
	}
	for !p.isPunct("}") {
		if p.atEOF() {
			return ast.Style{}, p.err("unterminated style block")
		}
		if p.isPunct("&") {
			p.advance()
			if _, err := p.expectPunct(":"); err != nil {
				return ast.Style{}, err
			}
			if p.cur().Kind != token.Identifier || !pseudoStates[p.cur().Text] {
				return ast.Style{}, p.err("unknown pseudo-state %q", p.cur().Text)
			}
			pb := ast.PseudoBlock{State: p.cur().Text, Line: p.cur().Line}
			p.advance()
			if _, err := p.expectPunct("{"); err != nil {
				return ast.Style{}, err
			}
			for !p.isPunct("}") {
				prop, err := p.parseProperty()
				if err != nil {
					return ast.Style{}, err
				}
				pb.Properties = append(pb.Properties, prop)
			}
			p.advance() // }
			st.Pseudo = append(st.Pseudo, pb)
			continue
		}
		if p.cur().Kind == token.Identifier && p.cur().Text == "extends" {
			p.advance()
			if _, err := p.expectPunct(":"); err != nil {
				return ast.Style{}, err
			}
			if p.isPunct("[") {
				p.advance()
				for !p.isPunct("]") {
					if p.cur().Kind != token.StringLiteral {
						return ast.Style{}, p.err("expected string in extends list")
					}
					st.Extends = append(st.Extends, p.advance().Text)
					if p.isPunct(",") {
						p.advance()
					}
				}
				p.advance() // ]
			} else {
				if p.cur().Kind != token.StringLiteral {
					return ast.Style{}, p.err("expected string after extends:")
				}
				st.Extends = append(st.Extends, p.advance().Text)
			}
			continue
		}
		prop, err := p.parseProperty()
		if err != nil {
			return ast.Style{}, err
		}
		st.Properties = append(st.Properties, prop)
	}
	p.advance() // }
	return st, nil
}

func (p *Parser) parseProperty() (ast.Property, error) {
	if p.cur().Kind != token.Identifier && p.cur().Kind != token.Keyword {
		return ast.Property{}, p.err("expected property name, found %s %q", p.cur().Kind, p.cur().Text)
	}
	nameTok := p.advance()
	if _, err := p.expectPunct(":"); err != nil {
		return ast.Property{}, err
	}
	val, err := p.parsePropertyValue()
	if err != nil {
		return ast.Property{}, err
	}
	return ast.Property{Name: nameTok.Text, Value: val, Line: nameTok.Line}, nil
}

func (p *Parser) parsePropertyValue() (ast.PropertyValue, error) {
	t := p.cur()
	switch t.Kind {
	case token.StringLiteral:
		p.advance()
		return ast.PropertyValue{Kind: ast.ValString, Text: t.Text, Line: t.Line, Column: t.Column}, nil
	case token.ColorLiteral:
		p.advance()
		return ast.PropertyValue{Kind: ast.ValColor, Text: t.Text, Line: t.Line, Column: t.Column}, nil
	case token.VarRef:
		p.advance()
		return ast.PropertyValue{Kind: ast.ValVarRef, Text: t.Text, Line: t.Line, Column: t.Column}, nil
	case token.Number:
		p.advance()
		return ast.PropertyValue{Kind: ast.ValNumber, Text: t.Text, Unit: ast.UnitNone, Line: t.Line, Column: t.Column}, nil
	case token.PixelSize:
		p.advance()
		unit := ast.UnitPx
		if strings.HasSuffix(t.Text, "em") {
			unit = ast.UnitEm
		}
		return ast.PropertyValue{Kind: ast.ValNumber, Text: strings.TrimSuffix(strings.TrimSuffix(t.Text, "px"), "em"),
			Unit: unit, Line: t.Line, Column: t.Column}, nil
	case token.Percentage:
		p.advance()
		return ast.PropertyValue{Kind: ast.ValNumber, Text: strings.TrimSuffix(t.Text, "%"), Unit: ast.UnitPercent,
			Line: t.Line, Column: t.Column}, nil
	case token.Identifier:
		p.advance()
		return ast.PropertyValue{Kind: ast.ValIdentifier, Text: t.Text, Line: t.Line, Column: t.Column}, nil
	case token.Punct:
		if t.Text == "(" {
			return p.parseParenExpr()
		}
	}
	return ast.PropertyValue{}, p.err("unexpected token %s %q in property value", t.Kind, t.Text)
}

func (p *Parser) parseParenExpr() (ast.PropertyValue, error) {
	start := p.pos
	line, col := p.cur().Line, p.cur().Column
	depth := 0
	for {
		t := p.cur()
		if t.Kind == token.EOF {
			return ast.PropertyValue{}, p.err("unterminated parenthesized expression")
		}
		if t.Kind == token.Punct && t.Text == "(" {
			depth++
		}
		if t.Kind == token.Punct && t.Text == ")" {
			depth--
			p.advance()
			if depth == 0 {
				break
			}
			continue
		}
		p.advance()
	}
	return ast.PropertyValue{Kind: ast.ValExpr, Text: renderTokens(p.toks[start:p.pos]), Line: line, Column: col}, nil
}

func (p *Parser) parseComponentDef() (ast.ComponentDef, error) {
	line := p.cur().Line
	p.advance() // Define
	if p.cur().Kind != token.Identifier {
		return ast.ComponentDef{}, p.err("expected component name after Define")
	}
	def := ast.ComponentDef{Name: p.advance().Text, Line: line}
	if _, err := p.expectPunct("{"); err != nil {
		return ast.ComponentDef{}, err
	}
	if p.cur().Kind == token.Identifier && p.cur().Text == "Properties" {
		p.advance()
		if _, err := p.expectPunct("{"); err != nil {
			return ast.ComponentDef{}, err
		}
		for !p.isPunct("}") {
			cp, err := p.parseComponentProperty()
			if err != nil {
				return ast.ComponentDef{}, err
			}
			def.Properties = append(def.Properties, cp)
		}
		p.advance() // }
	}
	if p.cur().Kind != token.Identifier {
		return ast.ComponentDef{}, p.err("expected component template root element")
	}
	root, err := p.parseElement()
	if err != nil {
		return ast.ComponentDef{}, err
	}
	def.Template = root
	if _, err := p.expectPunct("}"); err != nil {
		return ast.ComponentDef{}, err
	}
	return def, nil
}

func (p *Parser) parseComponentProperty() (ast.ComponentProperty, error) {
	if p.cur().Kind != token.Identifier {
		return ast.ComponentProperty{}, p.err("expected property name")
	}
	cp := ast.ComponentProperty{Name: p.advance().Text, Line: p.cur().Line, Required: true}
	if _, err := p.expectPunct(":"); err != nil {
		return ast.ComponentProperty{}, err
	}
	if p.cur().Kind != token.Identifier {
		return ast.ComponentProperty{}, p.err("expected property type")
	}
	cp.Type = p.advance().Text
	if p.isPunct("=") {
		p.advance()
		cp.Required = false
		v, err := p.parsePropertyValue()
		if err != nil {
			return ast.ComponentProperty{}, err
		}
		cp.Default = &v
	}
	return cp, nil
}

func (p *Parser) parseElement() (*ast.Element, error) {
	t := p.cur()
	if t.Kind != token.Identifier {
		return nil, p.err("expected element type, found %s %q", t.Kind, t.Text)
	}
	el := &ast.Element{Type: p.advance().Text, Line: t.Line}
	if !elementTypes[el.Type] {
		el.IsComponentInstance = true // resolved against real component names later (spec §4.3)
	}
	// optional bare identifier before the block, per spec §4.3 grammar
	if p.cur().Kind == token.Identifier && !p.isPunct("{") {
		el.ID = p.advance().Text
	}
	if _, err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	for !p.isPunct("}") {
		if p.atEOF() {
			return nil, p.err("unterminated element block for %s", el.Type)
		}
		if p.cur().Kind == token.Identifier && p.peekIsBlockStart() {
			child, err := p.parseElement()
			if err != nil {
				return nil, err
			}
			child.Parent = el
			el.Children = append(el.Children, child)
			continue
		}
		prop, err := p.parseProperty()
		if err != nil {
			return nil, err
		}
		if prop.Name == "style" {
			if prop.Value.Kind == ast.ValIdentifier || prop.Value.Kind == ast.ValString {
				el.StyleNames = append(el.StyleNames, prop.Value.Text)
			}
			continue
		}
		if prop.Name == "id" {
			el.ID = prop.Value.Text
		}
		el.Properties = append(el.Properties, prop)
	}
	p.advance() // }
	return el, nil
}

// peekIsBlockStart distinguishes `ChildType { ... }` / `ChildType id {
// ... }` from a `key: value` property line that happens to start with
// an identifier.
func (p *Parser) peekIsBlockStart() bool {
	save := p.pos
	defer func() { p.pos = save }()
	if p.cur().Kind != token.Identifier {
		return false
	}
	p.advance()
	if p.isPunct("{") {
		return true
	}
	if p.cur().Kind == token.Identifier {
		p.advance()
		return p.isPunct("{")
	}
	return false
}

// ParseNumber is exposed for the Variable Resolver and Style Resolver,
// which both need to turn already-substituted numeric text into a
// float64 without re-running the lexer.
func ParseNumber(text string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(text), 64)
}
