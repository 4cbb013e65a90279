// Package krb defines the KRB binary container format (spec §6.1):
// constants, section layout, and a reader used by the driver-facing
// Analyze operation (spec §6.3).
//
// Grounded on the v0.3 reader in other_examples (…krb.go.go) for the
// general shape of a typed binary-format package (ElementType,
// PropertyID, ValueType, EventType, ResourceType/Format as distinct
// named byte types; a Header struct; little-endian helpers) and on the
// teacher's writer.go for the two-pass offset/size discipline — but
// implementing the spec's actual v1.0 layout (72-byte header: 8-byte
// preamble plus 8 section descriptors), which differs from both
// reference formats.
package krb

const (
	VersionMajor = 1
	VersionMinor = 0

	// HeaderSize is the total byte size of the fixed-position header
	// region: magic(4) + version-major(1) + version-minor(1) +
	// flags(2) = 8 bytes, followed by SectionCount 8-byte (u32 offset,
	// u32 size) descriptors = 64 bytes, for 72 bytes total. Spec §6.1
	// calls the descriptor table itself "64 bytes" while also spelling
	// out eight u32/u32 pairs (8*8=64) on top of the 8-byte preamble;
	// those two claims can't both be literally true, so this constant
	// resolves the inconsistency by counting the whole fixed region
	// actually written, which is what every section offset is relative
	// to (see DESIGN.md).
	HeaderSize = 72

	SectionCount = 8
)

var Magic = [4]byte{'K', 'R', 'B', '1'}

// Feature flag bits, spec §6.1.
const (
	FlagHasStateProperties uint16 = 1 << 0
	FlagCompressedStrings  uint16 = 1 << 1
	FlagHasScripts         uint16 = 1 << 2
	FlagHasComponents      uint16 = 1 << 3
	FlagHasResources       uint16 = 1 << 4
	FlagExtendedStringsU16 uint16 = 1 << 5
)

// SectionIndex names each of the header's eight (offset, size) pairs,
// in the order spec §4.10 lists them.
type SectionIndex int

const (
	SecHeader SectionIndex = iota
	SecStringTable
	SecStyleTable
	SecComponentTable
	SecElementTree
	SecPropertyBlockTable
	SecScriptTable
	SecResourceTable
)

// ElementType is the closed set of element kinds (spec §3 Element).
type ElementType uint8

const (
	ElemApp ElementType = iota
	ElemContainer
	ElemText
	ElemButton
	ElemInput
	ElemImage
	ElemCanvas
	ElemList
	ElemGrid
	ElemScrollable
	ElemVideo
	ElemCustom ElementType = 0x31
)

// PropertyID is our own canonical numbering for the property-block
// byte encoding. spec §9 notes the real mapping is "defined by the
// renderer's contract, external to this repository"; since no such
// contract ships with this corpus, this numbering is a documented
// Open Question decision (see DESIGN.md), grounded on the teacher's
// types.go PropID* constants to stay compatible with that renderer
// family's conventions.
type PropertyID uint8

const (
	PropInvalid PropertyID = iota
	PropBgColor
	PropFgColor
	PropBorderColor
	PropBorderWidth
	PropBorderRadius
	PropPadding
	PropMargin
	PropTextContent
	PropFontSize
	PropFontWeight
	PropTextAlignment
	PropImageSource
	PropOpacity
	PropZIndex
	PropVisibility
	PropGap
	PropMinWidth
	PropMinHeight
	PropMaxWidth
	PropMaxHeight
	PropAspectRatio
	PropTransform
	PropShadow
	PropOverflow
	PropLayoutFlags
	PropWindowWidth   PropertyID = 0x20
	PropWindowHeight  PropertyID = 0x21
	PropWindowTitle   PropertyID = 0x22
	PropResizable     PropertyID = 0x23
	PropKeepAspect    PropertyID = 0x24
	PropScaleFactor   PropertyID = 0x25
	PropIcon          PropertyID = 0x26
	PropVersion       PropertyID = 0x27
	PropAuthor        PropertyID = 0x28
	PropCustomDataRef PropertyID = 0x29
)

// ValueType tags the wire representation of a property value (spec §3
// Property Value).
type ValueType uint8

const (
	ValNone ValueType = iota
	ValByte
	ValShort
	ValColor
	ValString   // string table index
	ValResource // resource table index
	ValPercentage
	ValEnum
	ValCustom
)

// EventType is the closed set of event-handler kinds.
type EventType uint8

const (
	EventClick EventType = iota
	EventChange
	EventSubmit
)

// Layout flag byte bit layout (spec §4.7 "direction bits, wrap bit,
// grow bit, absolute-positioning bit"), grounded on the teacher's
// utils.go parseLayoutString bit packing.
const (
	LayoutDirectionMask uint8 = 0x03
	LayoutWrapBit       uint8 = 1 << 2
	LayoutGrowBit       uint8 = 1 << 3
	LayoutAbsoluteBit   uint8 = 1 << 4
)

const (
	LayoutDirRow uint8 = iota
	LayoutDirColumn
	LayoutDirRowReverse
	LayoutDirColumnReverse
)

// ResourceType/Format, spec §4.10 step 8 / §6.4.
type ResourceType uint8

const (
	ResImage ResourceType = iota
	ResFont
	ResSound
	ResVideo
	ResScript
	ResCustom
)

type ResourceFormat uint8

const (
	ResFormatExternal ResourceFormat = iota
	ResFormatInline
)

// ScriptLang is the closed set of embeddable script languages (spec §3
// Script Record).
type ScriptLang uint8

const (
	ScriptLua ScriptLang = iota
	ScriptJavaScript
	ScriptPython
	ScriptWren
)

func ParseScriptLang(s string) (ScriptLang, bool) {
	switch s {
	case "lua":
		return ScriptLua, true
	case "javascript", "js":
		return ScriptJavaScript, true
	case "python", "py":
		return ScriptPython, true
	case "wren":
		return ScriptWren, true
	default:
		return 0, false
	}
}
