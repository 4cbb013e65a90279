package style

import (
	"fmt"
	"strconv"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// RGBA is a resolved color property value (spec §3 Property Value:
// "color (RGBA 8 bits per channel)").
type RGBA struct{ R, G, B, A uint8 }

// ParseColor parses a #RRGGBBAA / #RRGGBB / #RGBA / #RGB hex literal
// (hash already stripped by the lexer) using go-colorful instead of
// the teacher's hand-rolled fmt.Sscanf parser in utils.go.
func ParseColor(hex string) (RGBA, error) {
	expanded, alpha, err := expandHex(hex)
	if err != nil {
		return RGBA{}, err
	}
	c, err := colorful.Hex("#" + expanded)
	if err != nil {
		return RGBA{}, fmt.Errorf("invalid color literal #%s: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return RGBA{R: r, G: g, B: b, A: alpha}, nil
}

// expandHex normalizes #RGB/#RGBA/#RRGGBB/#RRGGBBAA into a 6-digit hex
// string plus a separate alpha byte, since colorful.Hex only parses
// #RRGGBB / #RGB.
func expandHex(hex string) (string, uint8, error) {
	switch len(hex) {
	case 3: // RGB
		return string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]}), 255, nil
	case 4: // RGBA
		a, err := strconv.ParseUint(string([]byte{hex[3], hex[3]}), 16, 8)
		if err != nil {
			return "", 0, err
		}
		return string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]}), uint8(a), nil
	case 6: // RRGGBB
		return hex, 255, nil
	case 8: // RRGGBBAA
		a, err := strconv.ParseUint(hex[6:8], 16, 8)
		if err != nil {
			return "", 0, err
		}
		return hex[0:6], uint8(a), nil
	default:
		return "", 0, fmt.Errorf("unsupported color literal length %d", len(hex))
	}
}
