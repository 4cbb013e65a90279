package vars

import (
	"strconv"
	"strings"

	"github.com/kryonlabs/kryc/internal/kry/ast"
	"github.com/kryonlabs/kryc/internal/kry/kryerr"
)

// FullScope returns the complete name->value lookup table a module's
// non-@variables property values should resolve $refs against: its own
// declared variables (which already shadow imports per resolveModule),
// overlaid on driver-supplied custom variables, overlaid on the
// dependency scope merged by import rank (spec §4.2/§4.4, testable
// property §8.I) — the same precedence resolveName applies internally,
// just exposed so Apply can reuse it outside @variables blocks.
func (r *Resolver) FullScope(path string, modules map[string]*Module) map[string]string {
	scope := r.mergeImportedScope(path, modules)
	for k, v := range r.CustomVariables {
		scope[k] = v
	}
	if m, ok := modules[path]; ok {
		for k, v := range m.Values {
			scope[k] = v
		}
	}
	return scope
}

// Apply substitutes every $name reference and every parenthesized
// expression appearing in a module's styles, component defaults and
// templates, and element tree with its final literal value (spec §4.4: substitution
// is not limited to @variables declarations — any property value may
// reference a variable).
func Apply(file *ast.File, scope map[string]string) error {
	lookup := func(name string) (string, error) {
		if v, ok := scope[name]; ok {
			return v, nil
		}
		return "", &kryerr.Error{Kind: kryerr.Variable, Reason: "undefined", Message: "undefined variable " + strconv.Quote(name)}
	}
	for i := range file.Styles {
		if err := applyStyle(&file.Styles[i], lookup); err != nil {
			return err
		}
	}
	for i := range file.Components {
		if err := applyComponent(&file.Components[i], lookup); err != nil {
			return err
		}
	}
	if file.Root != nil {
		if err := applyElement(file.Root, lookup); err != nil {
			return err
		}
	}
	return nil
}

func applyStyle(s *ast.Style, lookup func(string) (string, error)) error {
	for i := range s.Properties {
		v, err := resolveValue(s.Properties[i].Value, lookup)
		if err != nil {
			return err
		}
		s.Properties[i].Value = v
	}
	for pi := range s.Pseudo {
		for i := range s.Pseudo[pi].Properties {
			v, err := resolveValue(s.Pseudo[pi].Properties[i].Value, lookup)
			if err != nil {
				return err
			}
			s.Pseudo[pi].Properties[i].Value = v
		}
	}
	return nil
}

func applyComponent(c *ast.ComponentDef, lookup func(string) (string, error)) error {
	for i := range c.Properties {
		if c.Properties[i].Default == nil {
			continue
		}
		v, err := resolveValue(*c.Properties[i].Default, lookup)
		if err != nil {
			return err
		}
		c.Properties[i].Default = &v
	}
	if c.Template != nil {
		declared := make(map[string]bool, len(c.Properties))
		for _, p := range c.Properties {
			declared[p.Name] = true
		}
		// A template's $name for one of the component's own declared
		// properties stays in place as text; the Component Resolver
		// substitutes it per instance.
		return applyElement(c.Template, func(name string) (string, error) {
			if declared[name] {
				return "$" + name, nil
			}
			return lookup(name)
		})
	}
	return nil
}

func applyElement(el *ast.Element, lookup func(string) (string, error)) error {
	for i := range el.Properties {
		v, err := resolveValue(el.Properties[i].Value, lookup)
		if err != nil {
			return err
		}
		el.Properties[i].Value = v
	}
	for _, c := range el.Children {
		if err := applyElement(c, lookup); err != nil {
			return err
		}
	}
	return nil
}

// resolveValue substitutes and, for parenthesized expressions,
// evaluates v, re-tagging the result with its concrete kind — once
// substitution happens the original VarRef/Expr kind no longer
// applies.
func resolveValue(v ast.PropertyValue, lookup func(string) (string, error)) (ast.PropertyValue, error) {
	switch v.Kind {
	case ast.ValVarRef:
		text, err := lookup(v.Text)
		if err != nil {
			return v, err
		}
		return sniff(text, v), nil
	case ast.ValExpr:
		substituted, err := substitute(v.Text, lookup)
		if err != nil {
			return v, err
		}
		evaluated, err := evaluateIfExpression(substituted)
		if err != nil {
			return v, &kryerr.Error{Kind: kryerr.Variable, Line: v.Line, Reason: "eval-failure", Message: err.Error()}
		}
		return sniff(evaluated, v), nil
	default:
		return v, nil
	}
}

// sniff classifies already-resolved text back into a concrete
// PropertyValue kind.
func sniff(text string, orig ast.PropertyValue) ast.PropertyValue {
	text = strings.TrimSpace(text)
	out := ast.PropertyValue{Text: text, Line: orig.Line, Column: orig.Column, Unit: orig.Unit}
	switch {
	case strings.HasPrefix(text, "#"):
		out.Kind = ast.ValColor
		out.Text = strings.TrimPrefix(text, "#")
	case text == "true" || text == "false":
		out.Kind = ast.ValIdentifier
	default:
		if _, err := strconv.ParseFloat(text, 64); err == nil {
			out.Kind = ast.ValNumber
		} else {
			out.Kind = ast.ValString
		}
	}
	return out
}
