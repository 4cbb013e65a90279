package size

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/kryonlabs/kryc/internal/kry/ast"
	"github.com/kryonlabs/kryc/internal/kry/kryerr"
	"github.com/kryonlabs/kryc/internal/kry/style"
	"github.com/kryonlabs/kryc/pkg/krb"
)

// ElementHeaderSize is the fixed per-element header size the Code
// Generator writes: type, id index, style index, layout byte,
// property-block index, geometry (posX/Y, width/height), event count,
// child count. Kept here (not in pkg/krb) since it is this
// compiler's own choice of layout for fields the spec leaves to the
// renderer contract (see pkg/krb.PropertyID doc comment); pkg/krb's
// reader assumes the same constant for its own elementHeaderSize.
const ElementHeaderSize = 18

type PropEntry struct {
	ID    krb.PropertyID
	Type  krb.ValueType
	Bytes []byte
}

type EventEntry struct {
	Type          krb.EventType
	CallbackIndex uint16
}

type ElementPlan struct {
	El             *ast.Element
	Type           krb.ElementType
	IDIndex        uint16
	StyleIndex     uint16
	PropBlockIndex uint16
	PosX, PosY     uint16
	Width, Height  uint16
	Events         []EventEntry
	Children       []*ElementPlan
	Offset         uint32 // relative to the element-tree section start
	Size           uint32
}

type StylePlan struct {
	Name          string
	NameIndex     uint16
	BasePropBlock uint16
	PseudoBlocks  map[string]uint16 // state -> property-block index, absent = 0
}

// pseudoStateOrder fixes a deterministic emission order for pseudo
// blocks (spec §6.2 lists the five recognized states).
var pseudoStateOrder = []string{"hover", "active", "focus", "disabled", "checked"}

// Plan is the fully-determined layout the Size Calculator produces:
// every index and offset the Code Generator needs is already computed
// (spec §4.9, §9 "no backpatching is required").
type Plan struct {
	Strings         *StringTable
	PropBlocks      [][]PropEntry
	propBlockIndex  map[string]uint16
	Styles          []StylePlan
	styleIndex      map[string]uint16
	Root            *ElementPlan
	ElementCount    int
	Flags           uint16
	ElementSectionSize uint32
	Warnings        []kryerr.Warning
}

func newPlan() *Plan {
	p := &Plan{
		Strings:        NewStringTable(),
		PropBlocks:     [][]PropEntry{nil}, // index 0 reserved: empty block
		propBlockIndex: map[string]uint16{"": 0},
		styleIndex:     map[string]uint16{},
	}
	return p
}

func (p *Plan) addPropertyBlock(entries []PropEntry) uint16 {
	if len(entries) == 0 {
		return 0
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	key := canonicalKey(entries)
	if idx, ok := p.propBlockIndex[key]; ok {
		return idx
	}
	idx := uint16(len(p.PropBlocks))
	p.PropBlocks = append(p.PropBlocks, entries)
	p.propBlockIndex[key] = idx
	return idx
}

func canonicalKey(entries []PropEntry) string {
	var b []byte
	for _, e := range entries {
		b = append(b, byte(e.ID), byte(e.Type), byte(len(e.Bytes)))
		b = append(b, e.Bytes...)
	}
	return string(b)
}

var elementTypeIDs = map[string]krb.ElementType{
	"App": krb.ElemApp, "Container": krb.ElemContainer, "Text": krb.ElemText,
	"Button": krb.ElemButton, "Input": krb.ElemInput, "Image": krb.ElemImage,
	"Canvas": krb.ElemCanvas, "List": krb.ElemList, "Grid": krb.ElemGrid,
	"Scrollable": krb.ElemScrollable, "Video": krb.ElemVideo,
}

var headerProps = map[string]bool{
	"pos_x": true, "pos_y": true, "width": true, "height": true,
	"id": true, "style": true, "layout": true,
}

var eventPropNames = map[string]krb.EventType{
	"onClick": krb.EventClick, "on_click": krb.EventClick,
	"onChange": krb.EventChange, "on_change": krb.EventChange,
	"onSubmit": krb.EventSubmit, "on_submit": krb.EventSubmit,
}

// Calculate walks the resolved element tree and style set, assigning
// style indices in style-name order, string/property-block indices in
// first-use order (script strings, then styles, then the tree), and element
// byte offsets relative to the start of the element-tree section
// (spec §4.9). scripts/embedScripts are interned into the same string
// table here (not left for the Code Generator) so the emitted string
// table already contains every script entry-point name and, for
// non-embedded scripts, every resource path the script/resource tables
// reference — the Code Generator's own Intern calls on these same
// strings become harmless no-ops once the table already holds them.
func Calculate(root *ast.Element, styles map[string]*style.Resolved, scripts []ast.ScriptRecord, embedScripts bool) (*Plan, error) {
	p := newPlan()
	for _, s := range scripts {
		for _, ep := range s.EntryPoints {
			p.Strings.Intern(ep)
		}
		if !embedScripts && s.FromPath != "" {
			p.Strings.Intern(s.FromPath)
		}
	}

	styleNames := make([]string, 0, len(styles))
	for name := range styles {
		styleNames = append(styleNames, name)
	}
	sort.Strings(styleNames)
	for i, name := range styleNames {
		s := styles[name]
		entries, err := resolvedPropsToEntries(s.Properties, p)
		if err != nil {
			return nil, err
		}
		sp := StylePlan{
			Name:          name,
			NameIndex:     p.Strings.Intern(name),
			BasePropBlock: p.addPropertyBlock(entries),
			PseudoBlocks:  map[string]uint16{},
		}
		for _, state := range pseudoStateOrder {
			overlay, ok := s.Pseudo[state]
			if !ok {
				continue
			}
			pe, err := resolvedPropsToEntries(overlay, p)
			if err != nil {
				return nil, err
			}
			sp.PseudoBlocks[state] = p.addPropertyBlock(pe)
		}
		p.Styles = append(p.Styles, sp)
		p.styleIndex[name] = uint16(i + 1) // 1-based, 0 = none
		if s.HasState {
			p.Flags |= krb.FlagHasStateProperties
		}
	}

	plan, err := p.planElement(root)
	if err != nil {
		return nil, err
	}
	p.Root = plan

	var offset uint32
	var assign func(ep *ElementPlan)
	assign = func(ep *ElementPlan) {
		ep.Offset = offset
		ep.Size = elementSize(ep)
		offset += ep.Size
		for _, c := range ep.Children {
			assign(c)
		}
	}
	assign(p.Root)
	p.ElementSectionSize = offset

	if p.Root.HasState() {
		p.Flags |= krb.FlagHasStateProperties
	}
	return p, nil
}

func elementSize(ep *ElementPlan) uint32 {
	return uint32(ElementHeaderSize + len(ep.Events)*3)
}

func (ep *ElementPlan) HasState() bool {
	if ep.El.HasStateProperties {
		return true
	}
	for _, c := range ep.Children {
		if c.HasState() {
			return true
		}
	}
	return false
}

func resolvedPropsToEntries(props map[string]ast.PropertyValue, p *Plan) ([]PropEntry, error) {
	var entries []PropEntry
	names := make([]string, 0, len(props))
	for n := range props {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, name := range names {
		if headerProps[name] {
			continue
		}
		id, ok := PropertyIDFor(name)
		if !ok {
			continue // unknown properties already warned by the Style Resolver
		}
		enc, err := EncodeValue(name, props[name], p.Strings)
		if err != nil {
			return nil, err
		}
		entries = append(entries, PropEntry{ID: id, Type: enc.Type, Bytes: enc.Bytes})
	}
	return entries, nil
}

func (p *Plan) planElement(el *ast.Element) (*ElementPlan, error) {
	typeID, ok := elementTypeIDs[el.Type]
	if !ok {
		typeID = krb.ElemCustom
	}
	ep := &ElementPlan{El: el, Type: typeID}
	if el.ID != "" {
		ep.IDIndex = p.Strings.Intern(el.ID)
	}
	if len(el.StyleNames) > 0 {
		if idx, ok := p.styleIndex[el.StyleNames[len(el.StyleNames)-1]]; ok {
			ep.StyleIndex = idx
		}
	}

	var entries []PropEntry
	for _, prop := range el.Properties {
		switch prop.Name {
		case "pos_x":
			ep.PosX = numericU16(prop.Value)
			continue
		case "pos_y":
			ep.PosY = numericU16(prop.Value)
			continue
		case "width":
			ep.Width = numericU16(prop.Value)
			continue
		case "height":
			ep.Height = numericU16(prop.Value)
			continue
		case "layout", "id", "style":
			continue
		}
		if evType, isEvent := eventPropNames[prop.Name]; isEvent {
			ep.Events = append(ep.Events, EventEntry{Type: evType, CallbackIndex: p.Strings.Intern(prop.Value.Text)})
			continue
		}
		id, known := PropertyIDFor(prop.Name)
		if !known {
			p.Warnings = append(p.Warnings, kryerr.Warning{Stage: "size", Line: prop.Line,
				Message: fmt.Sprintf("unhandled property %q on element %s ignored", prop.Name, el.Type)})
			continue
		}
		enc, err := EncodeValue(prop.Name, prop.Value, p.Strings)
		if err != nil {
			return nil, err
		}
		entries = append(entries, PropEntry{ID: id, Type: enc.Type, Bytes: enc.Bytes})
	}
	ep.PropBlockIndex = p.addPropertyBlock(entries)

	for _, c := range el.Children {
		cp, err := p.planElement(c)
		if err != nil {
			return nil, err
		}
		ep.Children = append(ep.Children, cp)
	}
	return ep, nil
}

func numericU16(v ast.PropertyValue) uint16 {
	f, err := strconv.ParseFloat(v.Text, 64)
	if err != nil {
		return 0
	}
	return uint16(f)
}
