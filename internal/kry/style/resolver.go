// Package style implements the Style Resolver (spec §4.5): builds the
// `extends` graph, topologically orders it with the same three-color
// DFS used by the Preprocessor (spec §9 design note), merges parent
// property maps, and overlays pseudo-state blocks.
//
// Grounded on the teacher's style_resolver.go for the merge-by-key,
// later-wins shape (there: resolveSingleStyle merging mergedProps
// keyed by KRB property ID) but reworked over property *names* — the
// byte-level property-id numbering is an encoding concern (see
// internal/kry/size), not a style-resolution one — and extended
// with the pseudo-state layering the teacher has no concept of.
package style

import (
	"fmt"
	"sort"

	"github.com/kryonlabs/kryc/internal/kry/ast"
	"github.com/kryonlabs/kryc/internal/kry/kryerr"
)

// Resolved is the fully merged property set for one style: its base
// map, and one map per pseudo-state that already inherits the base
// (spec §4.5 rule 3).
type Resolved struct {
	Name       string
	Properties map[string]ast.PropertyValue
	Pseudo     map[string]map[string]ast.PropertyValue
	HasState   bool
}

type color int

const (
	white color = iota
	gray
	black
)

// Resolve merges every style's extends chain and pseudo-state blocks.
// It returns the resolved set keyed by name plus any demotable
// warnings (unknown property names — spec §4.5 "downgradable to
// warning at lower strictness levels"; this implementation always
// demotes, since SPEC_FULL.md's driver options carry no separate
// strictness knob — see DESIGN.md).
func Resolve(styles []ast.Style) (map[string]*Resolved, []kryerr.Warning, error) {
	byName := make(map[string]ast.Style, len(styles))
	for _, s := range styles {
		byName[s.Name] = s
	}
	for _, s := range styles {
		for _, parent := range s.Extends {
			if _, ok := byName[parent]; !ok {
				return nil, nil, &kryerr.Error{Kind: kryerr.Semantic, Line: s.Line, Reason: "unknown-style",
					Message: fmt.Sprintf("style %q extends unknown style %q", s.Name, parent)}
			}
		}
	}

	colors := make(map[string]color, len(styles))
	resolved := make(map[string]*Resolved, len(styles))
	var warnings []kryerr.Warning

	var visit func(name string, stack []string) error
	visit = func(name string, stack []string) error {
		switch colors[name] {
		case black:
			return nil
		case gray:
			path := append(append([]string{}, stack...), name)
			return &kryerr.Error{Kind: kryerr.Semantic, Reason: "cycle",
				Message: fmt.Sprintf("circular style inheritance detected: %v", path)}
		}
		colors[name] = gray
		stack = append(stack, name)
		s := byName[name]
		for _, parent := range s.Extends {
			if err := visit(parent, stack); err != nil {
				return err
			}
		}

		base := make(map[string]ast.PropertyValue)
		for _, parent := range s.Extends {
			for k, v := range resolved[parent].Properties {
				base[k] = v
			}
		}
		for _, p := range s.Properties {
			if _, known := propertySchema[p.Name]; !known {
				warnings = append(warnings, kryerr.Warning{Stage: "style", Line: p.Line,
					Message: fmt.Sprintf("unknown property %q on style %q", p.Name, name)})
			}
			base[p.Name] = p.Value
		}

		r := &Resolved{Name: name, Properties: base, Pseudo: map[string]map[string]ast.PropertyValue{}}
		for _, pb := range s.Pseudo {
			overlay := make(map[string]ast.PropertyValue, len(base))
			for k, v := range base {
				overlay[k] = v
			}
			for _, p := range pb.Properties {
				overlay[p.Name] = p.Value
			}
			r.Pseudo[pb.State] = overlay
			r.HasState = true
		}
		resolved[name] = r
		colors[name] = black
		return nil
	}

	names := make([]string, 0, len(styles))
	for _, s := range styles {
		names = append(names, s.Name)
	}
	sort.Strings(names) // deterministic visit order (testable property §8.A)
	for _, n := range names {
		if err := visit(n, nil); err != nil {
			return nil, nil, err
		}
	}
	return resolved, warnings, nil
}

// propertySchema is the fixed vocabulary of style/element property
// names this compiler understands, grounded on the teacher's giant
// switch in style_resolver.go/resolver.go (background_color,
// text_color, border_*, padding, margin, font_*, layout, etc).
var propertySchema = map[string]bool{
	"background_color": true, "foreground_color": true, "text_color": true,
	"border_color": true, "border_width": true, "border_radius": true,
	"padding": true, "margin": true, "text": true, "content": true,
	"font_size": true, "font_weight": true, "text_alignment": true,
	"layout": true, "overflow": true, "width": true, "min_width": true,
	"max_width": true, "height": true, "min_height": true, "max_height": true,
	"aspect_ratio": true, "opacity": true, "visibility": true, "z_index": true,
	"transform": true, "shadow": true, "gap": true, "image_source": true,
	"source": true, "id": true, "style": true, "pos_x": true, "pos_y": true,
	"window_width": true, "window_height": true, "window_title": true,
	"resizable": true, "icon": true, "version": true, "author": true,
	"keep_aspect": true, "scale_factor": true,
}
