package font

import (
	"fmt"
	"strings"

	"github.com/unpdf/unpdf/core"
)

// Descriptor flag bits from the /FontDescriptor /Flags entry.
const (
	flagFixedPitch = 1 << 0
	flagSerif      = 1 << 1
	flagSymbolic   = 1 << 2
	flagItalic     = 1 << 6
	flagForceBold  = 1 << 18
)

// Resolver resolves indirect references to their objects. Font
// dictionaries routinely point at descriptors, width arrays and
// ToUnicode streams indirectly.
type Resolver interface {
	Resolve(obj core.Object) (core.Object, error)
}

// Font holds everything needed to turn show-text strings into Unicode:
// the byte encoding, an optional ToUnicode map, and glyph metrics.
type Font struct {
	Name     string // resource name under /Font, e.g. F1
	BaseFont string // /BaseFont as written, "Unknown" when absent
	Subtype  string

	encoding  Encoding
	toUnicode *CMap
	twoByte   bool // composite font with two-byte codes (Identity CMaps)
	vertical  bool

	firstChar    int
	widths       []float64
	stdWidths    map[rune]float64
	cidWidths    map[uint32]float64
	defaultWidth float64

	flags       int
	italicAngle float64
}

// LoadFont builds a Font from a /Font dictionary. name is the resource
// key the content stream selects it by. Composite (Type0) and simple
// fonts take different loading paths; both tolerate missing entries.
func LoadFont(dict core.Dict, name string, r Resolver) (*Font, error) {
	if dict == nil {
		return nil, fmt.Errorf("nil font dictionary")
	}
	f := &Font{
		Name:         name,
		BaseFont:     "Unknown",
		defaultWidth: defaultGlyphWidth,
	}
	if sub, ok := dict.GetName("Subtype"); ok {
		f.Subtype = string(sub)
	}
	if base, ok := dict.GetName("BaseFont"); ok {
		f.BaseFont = string(base)
	}
	f.stdWidths = standardWidths(f.BaseFont)

	var err error
	if f.Subtype == "Type0" {
		err = f.loadType0(dict, r)
	} else {
		err = f.loadSimple(dict, r)
	}
	if err != nil {
		return nil, fmt.Errorf("load font %s (%s): %w", name, f.BaseFont, err)
	}
	return f, nil
}

// DecodeString decodes a show-text string to Unicode. Priority order:
//
//  1. ToUnicode CMap when present (most accurate)
//  2. UTF-16 byte order mark (FEFF or FFFE)
//  3. Two-byte composite codes read as UTF-16BE
//  4. The font's simple encoding
//  5. UTF-8 if valid, else Latin-1
//
// Output is always NFC-normalized so downstream comparisons behave.
func (f *Font) DecodeString(data []byte) string {
	if len(data) == 0 {
		return ""
	}

	if f.toUnicode != nil && f.toUnicode.Len() > 0 {
		return NormalizeUnicode(f.toUnicode.DecodeString(data))
	}

	if len(data) >= 2 {
		if data[0] == 0xFE && data[1] == 0xFF {
			return NormalizeUnicode(DecodeUTF16BE(data[2:]))
		}
		if data[0] == 0xFF && data[1] == 0xFE {
			return NormalizeUnicode(DecodeUTF16LE(data[2:]))
		}
	}

	if f.twoByte {
		// Identity-mapped CIDs with no ToUnicode. Reading the pairs as
		// UTF-16BE recovers text from fonts whose CIDs track Unicode,
		// which is the common case for generated documents.
		return NormalizeUnicode(DecodeUTF16BE(data))
	}

	if f.encoding != nil {
		return NormalizeUnicode(f.encoding.DecodeString(data))
	}

	if IsValidUTF8(string(data)) {
		return NormalizeUnicode(string(data))
	}
	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = rune(b)
	}
	return NormalizeUnicode(string(runes))
}

// Width returns the width of a character code in 1000ths of an em.
func (f *Font) Width(code uint32) float64 {
	if f.twoByte {
		if w, ok := f.cidWidths[code]; ok {
			return w
		}
		return f.defaultWidth
	}
	if idx := int(code) - f.firstChar; f.widths != nil && idx >= 0 && idx < len(f.widths) {
		if w := f.widths[idx]; w > 0 {
			return w
		}
	}
	if f.stdWidths != nil {
		r := rune(code)
		if f.encoding != nil && code <= 0xFF {
			r = f.encoding.Decode(byte(code))
		}
		if w, ok := f.stdWidths[r]; ok {
			return w
		}
	}
	return f.defaultWidth
}

// StringWidth sums glyph widths over decoded text, in 1000ths of an em.
// Only meaningful for fonts with rune-keyed metrics (the Standard 14).
func (f *Font) StringWidth(s string) float64 {
	total := 0.0
	for _, r := range s {
		if w, ok := f.stdWidths[r]; ok {
			total += w
		} else {
			total += f.defaultWidth
		}
	}
	return total
}

// Bold reports whether the font renders as bold, judged from the base
// font name with the descriptor's ForceBold flag as a backstop.
func (f *Font) Bold() bool {
	name := strings.ToLower(f.BaseFont)
	if strings.Contains(name, "bold") || strings.Contains(name, "black") || strings.Contains(name, "heavy") {
		return true
	}
	return f.flags&flagForceBold != 0
}

// Italic reports whether the font renders as italic or oblique.
func (f *Font) Italic() bool {
	name := strings.ToLower(f.BaseFont)
	if strings.Contains(name, "italic") || strings.Contains(name, "oblique") {
		return true
	}
	return f.italicAngle != 0 || f.flags&flagItalic != 0
}

// IsVertical reports whether the font uses vertical writing mode
// (Identity-V composite fonts).
func (f *Font) IsVertical() bool {
	return f.vertical
}

// EncodingName returns the name of the simple encoding in use, or "" for
// composite fonts.
func (f *Font) EncodingName() string {
	if f.encoding == nil {
		return ""
	}
	return f.encoding.Name()
}

// HasToUnicode reports whether a usable ToUnicode map was loaded.
func (f *Font) HasToUnicode() bool {
	return f.toUnicode != nil && f.toUnicode.Len() > 0
}

// StripSubsetTag removes the six-letter subset prefix from a base font
// name: "ABCDEF+Helvetica" becomes "Helvetica".
func StripSubsetTag(baseFont string) string {
	if len(baseFont) > 7 && baseFont[6] == '+' {
		for i := 0; i < 6; i++ {
			if baseFont[i] < 'A' || baseFont[i] > 'Z' {
				return baseFont
			}
		}
		return baseFont[7:]
	}
	return baseFont
}

// resolve follows an indirect reference if r is non-nil, swallowing
// resolution failures into nil. Font loading treats a dangling ref the
// same as an absent entry.
func resolve(r Resolver, obj core.Object) core.Object {
	if obj == nil {
		return nil
	}
	if _, ok := obj.(core.IndirectRef); !ok {
		return obj
	}
	if r == nil {
		return nil
	}
	res, err := r.Resolve(obj)
	if err != nil {
		return nil
	}
	return res
}

// resolvedDict fetches a dictionary-valued entry through the resolver.
func resolvedDict(r Resolver, d core.Dict, key string) (core.Dict, bool) {
	obj := resolve(r, d.Get(key))
	dict, ok := obj.(core.Dict)
	return dict, ok
}

// resolvedArray fetches an array-valued entry through the resolver.
func resolvedArray(r Resolver, d core.Dict, key string) (core.Array, bool) {
	obj := resolve(r, d.Get(key))
	arr, ok := obj.(core.Array)
	return arr, ok
}

// resolvedStream fetches a stream-valued entry through the resolver.
func resolvedStream(r Resolver, d core.Dict, key string) (*core.Stream, bool) {
	obj := resolve(r, d.Get(key))
	stream, ok := obj.(*core.Stream)
	return stream, ok
}
