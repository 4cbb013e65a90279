// Package vars implements the Variable Resolver (spec §4.4): textual
// $name substitution followed by optional expression evaluation, with
// per-module import-rank override priority and cycle detection.
//
// Grounded on the teacher's variables.go (collect → resolve →
// substitute phases, resolving-state cycle guard, varUsageRegex) but
// generalized across the Module Graph instead of one flattened file,
// and upgraded with a real expression evaluator for the arithmetic /
// boolean / ternary grammar spec §9 calls for (the teacher has none —
// it only does textual $name replacement).
package vars

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/kryonlabs/kryc/internal/kry/ast"
	"github.com/kryonlabs/kryc/internal/kry/kryerr"
	"github.com/kryonlabs/kryc/internal/kry/module"
)

var varUsageRegex = regexp.MustCompile(`\$([a-zA-Z_][a-zA-Z0-9_]*)`)

type resolveState int

const (
	unresolved resolveState = iota
	resolving
	resolved
)

// Module is one module's fully resolved variable namespace.
type Module struct {
	Path   string
	Values map[string]string // all names (public and private) resolved, for same-module lookups
	Public map[string]string // names not prefixed "_", visible to dependents
}

// Resolver runs the two-phase collect/resolve algorithm over an
// already-built Module Graph.
type Resolver struct {
	Graph           *module.Graph
	Files           map[string]*ast.File // per-module parsed top-level items
	CustomVariables map[string]string    // driver-supplied overrides (spec §6.3 Options.custom_variables)
}

func New(g *module.Graph, files map[string]*ast.File, custom map[string]string) *Resolver {
	return &Resolver{Graph: g, Files: files, CustomVariables: custom}
}

// ResolveAll resolves every module's variables in compilation order
// (leaves first), so that by the time a module is processed every
// dependency it imports from is already fully resolved.
func (r *Resolver) ResolveAll() (map[string]*Module, error) {
	out := make(map[string]*Module, len(r.Graph.Order))
	for _, path := range r.Graph.Order {
		m, err := r.resolveModule(path, out)
		if err != nil {
			return nil, err
		}
		out[path] = m
	}
	return out, nil
}

func (r *Resolver) resolveModule(path string, already map[string]*Module) (*Module, error) {
	file := r.Files[path]
	raw := make(map[string]string, len(file.Variables))
	lines := make(map[string]int, len(file.Variables))
	for _, v := range file.Variables {
		raw[v.Name] = v.RawText
		lines[v.Name] = v.Line
	}

	imported := r.mergeImportedScope(path, already)

	state := make(map[string]resolveState, len(raw))
	values := make(map[string]string, len(raw))

	var resolveName func(name string, chain []string) (string, error)
	resolveName = func(name string, chain []string) (string, error) {
		if v, ok := values[name]; ok {
			return v, nil
		}
		rawText, isLocal := raw[name]
		if !isLocal {
			if v, ok := r.CustomVariables[name]; ok {
				return v, nil
			}
			if v, ok := imported[name]; ok {
				return v, nil
			}
			return "", &kryerr.Error{Kind: kryerr.Variable, File: path, Reason: "undefined",
				Message: fmt.Sprintf("undefined variable %q", name)}
		}
		switch state[name] {
		case resolving:
			cyclePath := append(append([]string{}, chain...), name)
			return "", &kryerr.Error{Kind: kryerr.Variable, File: path, Line: lines[name], Reason: "cycle",
				Message: fmt.Sprintf("circular variable reference: %s", strings.Join(cyclePath, " -> "))}
		case resolved:
			return values[name], nil
		}
		state[name] = resolving
		substituted, err := substitute(rawText, func(ref string) (string, error) {
			return resolveName(ref, append(chain, name))
		})
		if err != nil {
			return "", err
		}
		finalVal, err := evaluateIfExpression(substituted)
		if err != nil {
			return "", &kryerr.Error{Kind: kryerr.Variable, File: path, Line: lines[name], Reason: "eval-failure",
				Message: fmt.Sprintf("failed to evaluate expression for %q: %v", name, err)}
		}
		state[name] = resolved
		values[name] = finalVal
		return finalVal, nil
	}

	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, err := resolveName(name, nil); err != nil {
			return nil, err
		}
	}

	public := make(map[string]string, len(values))
	for k, v := range values {
		if !strings.HasPrefix(k, "_") {
			public[k] = v
		}
	}
	return &Module{Path: path, Values: values, Public: public}, nil
}

// mergeImportedScope merges each dependency's public bindings in
// ascending import-rank order, so a later (higher-rank) import
// overwrites an earlier one on name conflict (spec §4.2, testable
// property §8.I).
func (r *Resolver) mergeImportedScope(path string, already map[string]*Module) map[string]string {
	deps := append([]string{}, r.Graph.Deps[path]...)
	sort.Slice(deps, func(i, j int) bool { return r.Graph.Rank[deps[i]] < r.Graph.Rank[deps[j]] })
	merged := make(map[string]string)
	for _, dep := range deps {
		depModule, ok := already[dep]
		if !ok {
			continue
		}
		for k, v := range depModule.Public {
			merged[k] = v
		}
	}
	return merged
}

// substitute replaces every $name occurrence in raw with its resolved
// value, looked up via lookup (which itself recurses through the
// resolution engine with cycle tracking).
func substitute(raw string, lookup func(name string) (string, error)) (string, error) {
	var firstErr error
	result := varUsageRegex.ReplaceAllStringFunc(raw, func(match string) string {
		if firstErr != nil {
			return match
		}
		name := match[1:]
		v, err := lookup(name)
		if err != nil {
			firstErr = err
			return match
		}
		return v
	})
	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}
