// Package optimize implements the opt-in Optimizer passes (spec
// §4.8): each pass only ever reduces output size and preserves the
// resolved element tree's observable values (ids, types, property
// values) — testable property §8.K.
//
// Runs between the Semantic Analyzer and the Size Calculator (spec
// §2 stage 10 note). Property-block sharing and string-table index
// assignment themselves stay in internal/kry/size and
// internal/kry/codegen, which already dedupe by equality; what this
// package controls is what survives *into* that dedup pass.
package optimize

import (
	"sort"

	"github.com/kryonlabs/kryc/internal/kry/ast"
	"github.com/kryonlabs/kryc/internal/kry/style"
)

// Stats reports what each pass removed; the caller surfaces
// StylesRemoved into Stats.Warnings as an informational notice.
type Stats struct {
	DefaultsRemoved int
	StylesRemoved   []string
}

// Run applies every pass valid at level (0 = none, 1 = basic, 2 =
// aggressive, per spec §6.3 Options.optimization_level). Styles is
// mutated in place to drop unreferenced entries at level >= 2.
func Run(root *ast.Element, styles map[string]*style.Resolved, level int) Stats {
	var stats Stats
	if level <= 0 {
		return stats
	}
	stats.DefaultsRemoved = eliminateDefaults(root)
	canonicalizePropertyOrder(root)
	if level >= 2 {
		stats.StylesRemoved = removeUnusedStyles(root, styles)
	}
	return stats
}

// documentedDefaults are the (element type, property) pairs whose
// value, if explicitly set to the default, carries no information and
// can be dropped (spec §4.8 "Default elimination"). Grounded on the
// teacher's resolver.go default layout byte
// (LayoutDirectionColumn|LayoutAlignmentStart) and its implicit
// property defaults (opacity 1.0, visibility "visible", z_index 0).
var documentedDefaults = map[string]map[string]string{
	"*": {
		"opacity":    "1",
		"visibility": "visible",
		"z_index":    "0",
	},
}

func eliminateDefaults(root *ast.Element) int {
	removed := 0
	var walk func(el *ast.Element)
	walk = func(el *ast.Element) {
		kept := el.Properties[:0]
		for _, p := range el.Properties {
			if isDocumentedDefault(el.Type, p) {
				removed++
				continue
			}
			kept = append(kept, p)
		}
		el.Properties = kept
		for _, c := range el.Children {
			walk(c)
		}
	}
	walk(root)
	return removed
}

func isDocumentedDefault(elemType string, p ast.Property) bool {
	if defaults, ok := documentedDefaults["*"]; ok {
		if def, ok := defaults[p.Name]; ok && def == p.Value.Text {
			return true
		}
	}
	if defaults, ok := documentedDefaults[elemType]; ok {
		if def, ok := defaults[p.Name]; ok && def == p.Value.Text {
			return true
		}
	}
	return false
}

// canonicalizePropertyOrder sorts each element's declared properties
// by name so that two elements setting the same properties in a
// different source order produce byte-identical property blocks once
// emitted (spec §4.8 "Property-block merging": canonicalize key order
// then compare blocks for equality).
func canonicalizePropertyOrder(root *ast.Element) {
	var walk func(el *ast.Element)
	walk = func(el *ast.Element) {
		sort.SliceStable(el.Properties, func(i, j int) bool { return el.Properties[i].Name < el.Properties[j].Name })
		for _, c := range el.Children {
			walk(c)
		}
	}
	walk(root)
}

func removeUnusedStyles(root *ast.Element, styles map[string]*style.Resolved) []string {
	used := make(map[string]bool)
	var markUsed func(name string)
	markUsed = func(name string) {
		if used[name] {
			return
		}
		used[name] = true
	}
	var walk func(el *ast.Element)
	walk = func(el *ast.Element) {
		for _, n := range el.StyleNames {
			markUsed(n)
		}
		for _, c := range el.Children {
			walk(c)
		}
	}
	walk(root)

	var removed []string
	for name := range styles {
		if !used[name] {
			removed = append(removed, name)
			delete(styles, name)
		}
	}
	sort.Strings(removed)
	return removed
}
