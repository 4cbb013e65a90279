// Package component implements the Component Resolver (spec §4.6):
// expands component-instance elements by binding declared properties,
// cloning the template subtree, substituting `$property` placeholders,
// and inserting the instance's own children at the template's slot.
//
// Grounded on the teacher's resolver.go component-instance handling
// (component placeholder setup, copying the root template type) but
// restructured as tree rewriting over ast.Element rather than
// CompilerState's flat Elements slice, since the new AST keeps an
// explicit Children tree (spec §3 Element).
package component

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kryonlabs/kryc/internal/kry/ast"
	"github.com/kryonlabs/kryc/internal/kry/kryerr"
)

const defaultMaxDepth = 64

var propRefRegex = regexp.MustCompile(`\$([a-zA-Z_][a-zA-Z0-9_]*)`)

// Expand rewrites root in place, replacing every component-instance
// element (and any introduced by expanding other components) until
// none remain or defaultMaxDepth recursive expansions are exceeded
// (spec §4.6 "maximum expansion depth is bounded (default 64)").
func Expand(root *ast.Element, defs map[string]*ast.ComponentDef) error {
	return expandChildren(root, defs, 0)
}

func expandChildren(el *ast.Element, defs map[string]*ast.ComponentDef, depth int) error {
	for i, child := range el.Children {
		if child.IsComponentInstance {
			expanded, err := expandInstance(child, defs, depth)
			if err != nil {
				return err
			}
			expanded.Parent = el
			el.Children[i] = expanded
			if err := expandChildren(expanded, defs, depth+1); err != nil {
				return err
			}
		} else if err := expandChildren(child, defs, depth); err != nil {
			return err
		}
	}
	return nil
}

func expandInstance(instance *ast.Element, defs map[string]*ast.ComponentDef, depth int) (*ast.Element, error) {
	if depth > defaultMaxDepth {
		return nil, &kryerr.Error{Kind: kryerr.Component, Line: instance.Line, Reason: "recursion",
			Message: fmt.Sprintf("component expansion depth exceeded %d (possible self-referencing component %q)", defaultMaxDepth, instance.Type)}
	}
	def, ok := defs[instance.Type]
	if !ok {
		return nil, &kryerr.Error{Kind: kryerr.Component, Line: instance.Line, Reason: "unknown-component",
			Message: fmt.Sprintf("unknown component %q", instance.Type)}
	}

	direct := make(map[string]ast.Property, len(instance.Properties))
	for _, p := range instance.Properties {
		direct[p.Name] = p
	}

	bindings := make(map[string]string, len(def.Properties))
	for _, decl := range def.Properties {
		if p, ok := direct[decl.Name]; ok {
			if err := typeCheck(decl, p.Value); err != nil {
				return nil, err
			}
			bindings[decl.Name] = renderValue(p.Value)
			continue
		}
		if decl.Default != nil {
			bindings[decl.Name] = renderValue(*decl.Default)
			continue
		}
		if decl.Required {
			return nil, &kryerr.Error{Kind: kryerr.Component, Line: instance.Line, Reason: "missing-property",
				Message: fmt.Sprintf("component %q missing required property %q", instance.Type, decl.Name)}
		}
	}

	clone := cloneElement(def.Template, nil)
	substituteBindings(clone, bindings)
	clone.ID = firstNonEmpty(instance.ID, clone.ID)
	clone.StyleNames = append(append([]string{}, clone.StyleNames...), instance.StyleNames...)
	clone.Children = append(clone.Children, cloneChildren(instance.Children, clone)...)
	clone.Line = instance.Line
	return clone, nil
}

func typeCheck(decl ast.ComponentProperty, v ast.PropertyValue) error {
	switch decl.Type {
	case "String":
		if v.Kind != ast.ValString && v.Kind != ast.ValIdentifier {
			return typeMismatch(decl, v)
		}
	case "Int", "Float":
		if v.Kind != ast.ValNumber {
			return typeMismatch(decl, v)
		}
	case "Bool":
		if v.Kind != ast.ValIdentifier || (v.Text != "true" && v.Text != "false") {
			return typeMismatch(decl, v)
		}
	case "Color":
		if v.Kind != ast.ValColor {
			return typeMismatch(decl, v)
		}
	case "Size":
		if v.Kind != ast.ValNumber {
			return typeMismatch(decl, v)
		}
	}
	return nil
}

func typeMismatch(decl ast.ComponentProperty, v ast.PropertyValue) error {
	return &kryerr.Error{Kind: kryerr.Component, Line: decl.Line, Reason: "type-mismatch",
		Message: fmt.Sprintf("property %q expects type %s, got %v", decl.Name, decl.Type, v.Kind)}
}

func renderValue(v ast.PropertyValue) string {
	switch v.Kind {
	case ast.ValString:
		return v.Text
	case ast.ValColor:
		return "#" + v.Text
	default:
		return v.Text
	}
}

func cloneElement(src *ast.Element, parent *ast.Element) *ast.Element {
	dst := &ast.Element{
		Type:       src.Type,
		ID:         src.ID,
		StyleNames: append([]string{}, src.StyleNames...),
		Line:       src.Line,
		ModulePath: src.ModulePath,
		Parent:     parent,
	}
	dst.Properties = make([]ast.Property, len(src.Properties))
	copy(dst.Properties, src.Properties)
	dst.Children = cloneChildren(src.Children, dst)
	return dst
}

func cloneChildren(children []*ast.Element, parent *ast.Element) []*ast.Element {
	out := make([]*ast.Element, len(children))
	for i, c := range children {
		out[i] = cloneElement(c, parent)
	}
	return out
}

// substituteBindings replaces `$property` references inside string-
// valued properties of the cloned template subtree (spec §4.6 step 5).
func substituteBindings(el *ast.Element, bindings map[string]string) {
	for i, p := range el.Properties {
		if p.Value.Kind == ast.ValVarRef {
			if v, ok := bindings[p.Value.Text]; ok {
				el.Properties[i].Value = ast.PropertyValue{Kind: ast.ValString, Text: v, Line: p.Line}
			}
			continue
		}
		if p.Value.Kind == ast.ValString && strings.Contains(p.Value.Text, "$") {
			el.Properties[i].Value.Text = propRefRegex.ReplaceAllStringFunc(p.Value.Text, func(m string) string {
				if v, ok := bindings[m[1:]]; ok {
					return v
				}
				return m
			})
		}
	}
	for _, c := range el.Children {
		substituteBindings(c, bindings)
	}
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
