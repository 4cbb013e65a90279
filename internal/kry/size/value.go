package size

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kryonlabs/kryc/internal/kry/ast"
	"github.com/kryonlabs/kryc/internal/kry/kryerr"
	"github.com/kryonlabs/kryc/internal/kry/style"
	"github.com/kryonlabs/kryc/pkg/krb"
)

// propertyIDs maps canonical KRY property names to the wire-format
// property-id byte. See pkg/krb's PropertyID doc comment for why this
// numbering is ours to define.
var propertyIDs = map[string]krb.PropertyID{
	"background_color": krb.PropBgColor,
	"foreground_color":  krb.PropFgColor,
	"text_color":        krb.PropFgColor,
	"border_color":      krb.PropBorderColor,
	"border_width":      krb.PropBorderWidth,
	"border_radius":     krb.PropBorderRadius,
	"padding":           krb.PropPadding,
	"margin":            krb.PropMargin,
	"text":              krb.PropTextContent,
	"content":           krb.PropTextContent,
	"font_size":         krb.PropFontSize,
	"font_weight":       krb.PropFontWeight,
	"text_alignment":    krb.PropTextAlignment,
	"image_source":      krb.PropImageSource,
	"source":            krb.PropImageSource,
	"opacity":           krb.PropOpacity,
	"z_index":           krb.PropZIndex,
	"visibility":        krb.PropVisibility,
	"gap":               krb.PropGap,
	"min_width":         krb.PropMinWidth,
	"min_height":        krb.PropMinHeight,
	"max_width":         krb.PropMaxWidth,
	"max_height":        krb.PropMaxHeight,
	"aspect_ratio":      krb.PropAspectRatio,
	"transform":         krb.PropTransform,
	"shadow":            krb.PropShadow,
	"overflow":          krb.PropOverflow,
	"window_width":      krb.PropWindowWidth,
	"window_height":     krb.PropWindowHeight,
	"window_title":      krb.PropWindowTitle,
	"resizable":         krb.PropResizable,
	"keep_aspect":       krb.PropKeepAspect,
	"scale_factor":      krb.PropScaleFactor,
	"icon":              krb.PropIcon,
	"version":           krb.PropVersion,
	"author":            krb.PropAuthor,
}

// PropertyIDFor looks up the canonical property-id byte for name.
func PropertyIDFor(name string) (krb.PropertyID, bool) {
	id, ok := propertyIDs[name]
	return id, ok
}

// EncodedValue is a fully-resolved (value-type, bytes) pair ready for
// the Code Generator to write verbatim.
type EncodedValue struct {
	Type  krb.ValueType
	Bytes []byte
}

// EncodeValue converts a resolved PropertyValue into its wire
// representation, interning strings as needed. Grounded on the
// teacher's parseKryValueToKrbBytes in resolver.go (dispatch by
// value-type-hint) but dispatching on the AST's own tagged union
// (spec §9: "a closed tagged union; implementers should not use
// runtime type-bag abstractions") instead of a separate hint enum.
func EncodeValue(propName string, v ast.PropertyValue, strings_ *StringTable) (EncodedValue, error) {
	switch v.Kind {
	case ast.ValColor:
		c, err := style.ParseColor(v.Text)
		if err != nil {
			return EncodedValue{}, &kryerr.Error{Kind: kryerr.Semantic, Line: v.Line, Message: err.Error()}
		}
		return EncodedValue{Type: krb.ValColor, Bytes: []byte{c.R, c.G, c.B, c.A}}, nil
	case ast.ValString:
		idx := strings_.Intern(v.Text)
		return EncodedValue{Type: krb.ValString, Bytes: u16le(idx)}, nil
	case ast.ValVarRef:
		return EncodedValue{}, &kryerr.Error{Kind: kryerr.Semantic, Line: v.Line,
			Message: fmt.Sprintf("unresolved variable reference $%s reached code generation", v.Text)}
	case ast.ValNumber:
		return encodeNumber(v)
	case ast.ValIdentifier:
		return encodeIdentifier(propName, v, strings_)
	default:
		return EncodedValue{}, &kryerr.Error{Kind: kryerr.Semantic, Line: v.Line,
			Message: fmt.Sprintf("cannot encode unresolved expression value %q", v.Text)}
	}
}

func encodeNumber(v ast.PropertyValue) (EncodedValue, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(v.Text), 64)
	if err != nil {
		return EncodedValue{}, &kryerr.Error{Kind: kryerr.Semantic, Line: v.Line, Message: "invalid numeric literal " + v.Text}
	}
	if v.Unit == ast.UnitPercent {
		return EncodedValue{Type: krb.ValPercentage, Bytes: fixed88(f)}, nil
	}
	if f == float64(int64(f)) && f >= 0 && f <= 0xFFFF {
		return EncodedValue{Type: krb.ValShort, Bytes: u16le(uint16(f))}, nil
	}
	return EncodedValue{Type: krb.ValPercentage, Bytes: fixed88(f)}, nil
}

func encodeIdentifier(propName string, v ast.PropertyValue, strings_ *StringTable) (EncodedValue, error) {
	switch v.Text {
	case "true":
		return EncodedValue{Type: krb.ValByte, Bytes: []byte{1}}, nil
	case "false":
		return EncodedValue{Type: krb.ValByte, Bytes: []byte{0}}, nil
	}
	idx := strings_.Intern(v.Text)
	return EncodedValue{Type: krb.ValEnum, Bytes: u16le(idx)}, nil
}

func u16le(v uint16) []byte { return []byte{byte(v), byte(v >> 8)} }

// fixed88 converts a float to an 8.8 fixed-point uint16 (spec's
// implicit percentage/fractional encoding, grounded on the teacher's
// writer.go handling of width/height percentage conversion).
func fixed88(f float64) []byte {
	fixed := uint16(f * 256.0)
	return u16le(fixed)
}
