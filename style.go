package gocard

import (
	"image/color"
	"strings"
)

// Color represents an ARGB color.
type Color struct {
	ARGB string // 8-character hex string, e.g., "FF000000" for black
}

// Predefined colors.
var (
	ColorBlack       = Color{ARGB: "FF000000"}
	ColorWhite       = Color{ARGB: "FFFFFFFF"}
	ColorTransparent = Color{ARGB: "00000000"}

	// ColorGold is the dark goldenrod used for the card sides and edge trim.
	ColorGold = Color{ARGB: "FFB8860B"}
	// ColorSlate is the scene clear color.
	ColorSlate = Color{ARGB: "FF2E4053"}
)

// NewColor creates a new Color from an ARGB hex string.
// Accepts 6-char RGB (e.g. "FF0000") or 8-char ARGB (e.g. "FFFF0000").
// A leading "#" or "0x" is stripped automatically.
func NewColor(argb string) Color {
	argb = strings.TrimPrefix(argb, "#")
	argb = strings.TrimPrefix(strings.TrimPrefix(argb, "0x"), "0X")
	if len(argb) == 6 {
		argb = "FF" + argb
	}
	argb = strings.ToUpper(argb)
	if !isValidARGB(argb) {
		return ColorBlack
	}
	return Color{ARGB: argb}
}

// ColorFromHex creates an opaque Color from a 0xRRGGBB value.
func ColorFromHex(rgb uint32) Color {
	const digits = "0123456789ABCDEF"
	b := []byte("FF000000")
	for i := 0; i < 6; i++ {
		b[7-i] = digits[rgb&0xF]
		rgb >>= 4
	}
	return Color{ARGB: string(b)}
}

// isValidARGB checks that s is exactly 8 hex characters.
func isValidARGB(s string) bool {
	if len(s) != 8 {
		return false
	}
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}

func (c Color) GetRed() uint8   { return parseHexByte(c.ARGB, 2) }
func (c Color) GetGreen() uint8 { return parseHexByte(c.ARGB, 4) }
func (c Color) GetBlue() uint8  { return parseHexByte(c.ARGB, 6) }
func (c Color) GetAlpha() uint8 { return parseHexByte(c.ARGB, 0) }

// RGBA converts the color to a premultiplied color.RGBA.
func (c Color) RGBA() color.RGBA {
	a := uint16(c.GetAlpha())
	return color.RGBA{
		R: uint8(uint16(c.GetRed()) * a / 255),
		G: uint8(uint16(c.GetGreen()) * a / 255),
		B: uint8(uint16(c.GetBlue()) * a / 255),
		A: uint8(a),
	}
}

// parseHexByte parses two hex characters at offset into a uint8.
// Returns 0 on any error (out of range, invalid chars).
func parseHexByte(s string, offset int) uint8 {
	if offset+2 > len(s) {
		return 0
	}
	h := hexVal(s[offset])
	l := hexVal(s[offset+1])
	if h < 0 || l < 0 {
		return 0
	}
	return uint8(h<<4 | l)
}

func hexVal(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	default:
		return -1
	}
}

// Font describes a text face request. Size is in surface pixels.
type Font struct {
	Name string
	Size float64
	Bold bool
}

// Font families the card layouts ask for. They are expected to be installed
// or registered with FontCache.LoadFont; otherwise rendering falls back.
const (
	FontPretendard = "Pretendard-Regular"
	FontHurricane  = "Hurricane"
)

// NewFont creates a new Font with defaults.
func NewFont() *Font {
	return &Font{Name: FontPretendard, Size: 100}
}

// SetBold sets the bold property and returns the font for chaining.
func (f *Font) SetBold(bold bool) *Font {
	f.Bold = bold
	return f
}

// SetSize sets the font size in pixels (clamped to 1-4000).
func (f *Font) SetSize(size float64) *Font {
	if size < 1 {
		size = 1
	}
	if size > 4000 {
		size = 4000
	}
	f.Size = size
	return f
}

// SetName sets the font name.
func (f *Font) SetName(name string) *Font {
	f.Name = name
	return f
}

// TextAlign is the horizontal anchor of a text draw relative to its x coordinate.
type TextAlign int

const (
	AlignLeft TextAlign = iota
	AlignCenter
	AlignRight
)

// TextBaseline is the vertical anchor of a text draw relative to its y coordinate.
type TextBaseline int

const (
	BaselineAlphabetic TextBaseline = iota
	BaselineTop
	BaselineMiddle
	BaselineBottom
)

// TextStyle bundles everything FillText needs besides the string and position.
type TextStyle struct {
	Font     *Font
	Color    Color
	Align    TextAlign
	Baseline TextBaseline
}
