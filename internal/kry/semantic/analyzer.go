// Package semantic implements the Semantic Analyzer (spec §4.7): final
// validation after resolution/expansion, layout-flag computation, and
// pseudo-state flag aggregation.
package semantic

import (
	"fmt"
	"strings"

	"github.com/kryonlabs/kryc/internal/kry/ast"
	"github.com/kryonlabs/kryc/internal/kry/kryerr"
	"github.com/kryonlabs/kryc/internal/kry/style"
	"github.com/kryonlabs/kryc/pkg/krb"
)

type Result struct {
	IDs                map[string]*ast.Element
	HasStateProperties bool
	Warnings           []kryerr.Warning
}

var eventProps = map[string]bool{
	"onClick": true, "on_click": true,
	"onSubmit": true, "on_submit": true,
	"onChange": true, "on_change": true,
}

// Analyze validates root (spec §4.7) using the resolved style set to
// check style references and to propagate the pseudo-state flag, and
// the known script entry points to check event-handler references.
func Analyze(root *ast.Element, styles map[string]*style.Resolved, scriptEntryPoints map[string]bool) (*Result, error) {
	if root == nil || root.Type != "App" {
		return nil, &kryerr.Error{Kind: kryerr.Semantic, Reason: "missing-app",
			Message: "exactly one App element must be the compilation root"}
	}
	res := &Result{IDs: map[string]*ast.Element{}}

	var walk func(el *ast.Element) error
	walk = func(el *ast.Element) error {
		if el.ID != "" {
			if existing, dup := res.IDs[el.ID]; dup && existing != el {
				return &kryerr.Error{Kind: kryerr.Semantic, Line: el.Line, Reason: "duplicate-id",
					Message: fmt.Sprintf("duplicate id %q", el.ID)}
			}
			res.IDs[el.ID] = el
		}
		for _, name := range el.StyleNames {
			if _, ok := styles[name]; !ok {
				return &kryerr.Error{Kind: kryerr.Semantic, Line: el.Line, Reason: "unknown-style",
					Message: fmt.Sprintf("element references unknown style %q", name)}
			}
			if styles[name].HasState {
				el.HasStateProperties = true
				res.HasStateProperties = true
			}
		}
		for _, p := range el.Properties {
			if eventProps[p.Name] {
				handler := p.Value.Text
				if scriptEntryPoints != nil && !scriptEntryPoints[handler] {
					return &kryerr.Error{Kind: kryerr.Semantic, Line: p.Line, Reason: "unknown-entry-point",
						Message: fmt.Sprintf("event handler %q does not match any exported script entry point", handler)}
				}
			}
			if p.Name == "layout" {
				el.LayoutFlags = parseLayoutString(p.Value.Text)
			}
		}
		for _, c := range el.Children {
			if err := walk(c); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(root); err != nil {
		return nil, err
	}
	return res, nil
}

// parseLayoutString packs the space-separated layout tokens into the
// layout flag byte (spec §4.7 "direction bits, wrap bit, grow bit,
// absolute-positioning bit"), grounded on the teacher's
// utils.go parseLayoutString ("last one wins" per category).
func parseLayoutString(text string) uint8 {
	var flags uint8
	for _, tok := range strings.Fields(text) {
		switch tok {
		case "row":
			flags = (flags &^ krb.LayoutDirectionMask) | krb.LayoutDirRow
		case "column":
			flags = (flags &^ krb.LayoutDirectionMask) | krb.LayoutDirColumn
		case "row_reverse":
			flags = (flags &^ krb.LayoutDirectionMask) | krb.LayoutDirRowReverse
		case "column_reverse":
			flags = (flags &^ krb.LayoutDirectionMask) | krb.LayoutDirColumnReverse
		case "wrap":
			flags |= krb.LayoutWrapBit
		case "grow":
			flags |= krb.LayoutGrowBit
		case "absolute":
			flags |= krb.LayoutAbsoluteBit
		}
	}
	return flags
}
