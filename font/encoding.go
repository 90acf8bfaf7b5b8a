package font

import (
	"unicode/utf8"

	xunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/unicode/norm"
)

// Encoding maps single-byte character codes to Unicode.
type Encoding interface {
	Decode(b byte) rune
	DecodeString(data []byte) string
	Name() string
}

// tableEncoding is a base encoding: ASCII identity plus a table of
// overrides for the bytes that differ.
type tableEncoding struct {
	name      string
	overrides map[byte]rune
}

func (e *tableEncoding) Name() string { return e.name }

func (e *tableEncoding) Decode(b byte) rune {
	if r, ok := e.overrides[b]; ok {
		return r
	}
	return rune(b)
}

func (e *tableEncoding) DecodeString(data []byte) string {
	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = e.Decode(b)
	}
	return string(runes)
}

// customEncoding overlays a /Differences table on a base encoding.
type customEncoding struct {
	base        Encoding
	differences map[byte]rune
}

func (e *customEncoding) Name() string { return e.base.Name() + "+custom" }

func (e *customEncoding) Decode(b byte) rune {
	if r, ok := e.differences[b]; ok {
		return r
	}
	return e.base.Decode(b)
}

func (e *customEncoding) DecodeString(data []byte) string {
	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = e.Decode(b)
	}
	return string(runes)
}

// NewCustomEncoding overlays direct rune differences on a base encoding.
func NewCustomEncoding(base Encoding, differences map[byte]rune) Encoding {
	return &customEncoding{base: base, differences: differences}
}

// NewCustomEncodingFromGlyphs overlays glyph-name differences, the form a
// /Differences array takes, on a base encoding. Unknown glyph names keep
// the base mapping.
func NewCustomEncodingFromGlyphs(base Encoding, differences map[byte]string) Encoding {
	resolved := make(map[byte]rune, len(differences))
	for b, glyph := range differences {
		if r, ok := glyphNameToUnicode[glyph]; ok {
			resolved[b] = r
		}
	}
	return &customEncoding{base: base, differences: resolved}
}

// GetEncoding returns the named base encoding, defaulting to WinAnsi,
// which is what the overwhelming majority of Western PDFs use.
func GetEncoding(name string) Encoding {
	switch name {
	case "WinAnsiEncoding":
		return WinAnsiEncoding
	case "MacRomanEncoding":
		return MacRomanEncoding
	case "PDFDocEncoding":
		return PDFDocEncoding
	case "StandardEncoding":
		return StandardEncodingTable
	default:
		return WinAnsiEncoding
	}
}

// DecodeWithEncoding decodes data using the named base encoding.
func DecodeWithEncoding(data []byte, encodingName string) string {
	return GetEncoding(encodingName).DecodeString(data)
}

// NormalizeUnicode normalizes a decoded string to NFC so that composed and
// decomposed forms of the same text compare equal downstream.
func NormalizeUnicode(s string) string {
	return norm.NFC.String(s)
}

// IsValidUTF8 reports whether s is well-formed UTF-8.
func IsValidUTF8(s string) bool {
	return utf8.ValidString(s)
}

// DecodeUTF16BE decodes big-endian UTF-16 bytes, without a BOM, to UTF-8.
func DecodeUTF16BE(data []byte) string {
	dec := xunicode.UTF16(xunicode.BigEndian, xunicode.IgnoreBOM).NewDecoder()
	out, err := dec.Bytes(data)
	if err != nil {
		return string(data)
	}
	return string(out)
}

// DecodeUTF16LE decodes little-endian UTF-16 bytes, without a BOM, to UTF-8.
func DecodeUTF16LE(data []byte) string {
	dec := xunicode.UTF16(xunicode.LittleEndian, xunicode.IgnoreBOM).NewDecoder()
	out, err := dec.Bytes(data)
	if err != nil {
		return string(data)
	}
	return string(out)
}

// WinAnsiEncoding is Windows code page 1252, the PDF default for Latin
// text. Only 0x80-0x9F differ from Latin-1.
var WinAnsiEncoding Encoding = &tableEncoding{
	name: "WinAnsiEncoding",
	overrides: map[byte]rune{
		0x80: '€', // Euro
		0x82: '‚',
		0x83: 'ƒ',
		0x84: '„',
		0x85: '…',
		0x86: '†',
		0x87: '‡',
		0x88: 'ˆ',
		0x89: '‰',
		0x8A: 'Š',
		0x8B: '‹',
		0x8C: 'Œ',
		0x8E: 'Ž',
		0x91: '‘',
		0x92: '’',
		0x93: '“',
		0x94: '”',
		0x95: '•',
		0x96: '–',
		0x97: '—',
		0x98: '˜',
		0x99: '™',
		0x9A: 'š',
		0x9B: '›',
		0x9C: 'œ',
		0x9E: 'ž',
		0x9F: 'Ÿ',
	},
}

// MacRomanEncoding is the classic Mac OS Roman character set.
var MacRomanEncoding Encoding = &tableEncoding{
	name: "MacRomanEncoding",
	overrides: map[byte]rune{
		0x80: 'Ä', 0x81: 'Å', 0x82: 'Ç', 0x83: 'É', 0x84: 'Ñ', 0x85: 'Ö',
		0x86: 'Ü', 0x87: 'á', 0x88: 'à', 0x89: 'â', 0x8A: 'ä', 0x8B: 'ã',
		0x8C: 'å', 0x8D: 'ç', 0x8E: 'é', 0x8F: 'è',
		0x90: 'ê', 0x91: 'ë', 0x92: 'í', 0x93: 'ì', 0x94: 'î', 0x95: 'ï',
		0x96: 'ñ', 0x97: 'ó', 0x98: 'ò', 0x99: 'ô', 0x9A: 'ö', 0x9B: 'õ',
		0x9C: 'ú', 0x9D: 'ù', 0x9E: 'û', 0x9F: 'ü',
		0xA0: '†', 0xA1: '°', 0xA2: '¢', 0xA3: '£', 0xA4: '§',
		0xA5: '•', 0xA6: '¶', 0xA7: 'ß', 0xA8: '®', 0xA9: '©',
		0xAA: '™', 0xAB: '´', 0xAC: '¨', 0xAD: '≠', 0xAE: 'Æ', 0xAF: 'Ø',
		0xB0: '∞', 0xB1: '±', 0xB2: '≤', 0xB3: '≥', 0xB4: '¥',
		0xB5: 'µ', 0xB6: '∂', 0xB7: '∑', 0xB8: '∏', 0xB9: 'π',
		0xBA: '∫', 0xBB: 'ª', 0xBC: 'º', 0xBD: 'Ω', 0xBE: 'æ', 0xBF: 'ø',
		0xC0: '¿', 0xC1: '¡', 0xC2: '¬', 0xC3: '√', 0xC4: 'ƒ',
		0xC5: '≈', 0xC6: '∆', 0xC7: '«', 0xC8: '»', 0xC9: '…',
		0xCA: ' ', 0xCB: 'À', 0xCC: 'Ã', 0xCD: 'Õ', 0xCE: 'Œ', 0xCF: 'œ',
		0xD0: '–', 0xD1: '—', 0xD2: '“', 0xD3: '”',
		0xD4: '‘', 0xD5: '’', 0xD6: '÷', 0xD7: '◊',
		0xD8: 'ÿ', 0xD9: 'Ÿ', 0xDA: '⁄', 0xDB: '€',
		0xDC: '‹', 0xDD: '›', 0xDE: 'ﬁ', 0xDF: 'ﬂ',
		0xE0: '‡', 0xE1: '·', 0xE2: '‚', 0xE3: '„', 0xE4: '‰',
		0xE5: 'Â', 0xE6: 'Ê', 0xE7: 'Á', 0xE8: 'Ë', 0xE9: 'È',
		0xEA: 'Í', 0xEB: 'Î', 0xEC: 'Ï', 0xED: 'Ì', 0xEE: 'Ó', 0xEF: 'Ô',
		0xF0: '', 0xF1: 'Ò', 0xF2: 'Ú', 0xF3: 'Û', 0xF4: 'Ù',
		0xF5: 'ı', 0xF6: 'ˆ', 0xF7: '˜', 0xF8: '¯',
		0xF9: '˘', 0xFA: '˙', 0xFB: '˚', 0xFC: '¸',
		0xFD: '˝', 0xFE: '˛', 0xFF: 'ˇ',
	},
}

// PDFDocEncoding is the encoding for text strings in document metadata and
// outlines when no UTF-16 BOM is present.
var PDFDocEncoding Encoding = &tableEncoding{
	name: "PDFDocEncoding",
	overrides: map[byte]rune{
		0x18: '˘', 0x19: 'ˇ', 0x1A: 'ˆ', 0x1B: '˙',
		0x1C: '˝', 0x1D: '˛', 0x1E: '˚', 0x1F: '¸',
		0x80: '•', 0x81: '†', 0x82: '‡', 0x83: '…',
		0x84: '—', 0x85: '–', 0x86: 'ƒ', 0x87: '⁄',
		0x88: '‹', 0x89: '›', 0x8A: '−', 0x8B: '‰',
		0x8C: '„', 0x8D: '“', 0x8E: '”', 0x8F: '‘',
		0x90: '’', 0x91: '‚', 0x92: '™', 0x93: 'ﬁ',
		0x94: 'ﬂ', 0x95: 'Ł', 0x96: 'Œ', 0x97: 'Š',
		0x98: 'Ÿ', 0x99: 'Ž', 0x9A: 'ı', 0x9B: 'ł',
		0x9C: 'œ', 0x9D: 'š', 0x9E: 'ž',
		0xA0: '€',
	},
}

// StandardEncodingTable is Adobe StandardEncoding, the built-in default of
// the original Type 1 fonts. Note the typographic quotes at 0x27 and 0x60.
var StandardEncodingTable Encoding = &tableEncoding{
	name: "StandardEncoding",
	overrides: map[byte]rune{
		0x27: '’', 0x60: '‘',
		0xA1: '¡', 0xA2: '¢', 0xA3: '£', 0xA4: '⁄', 0xA5: '¥',
		0xA6: 'ƒ', 0xA7: '§', 0xA8: '¤', 0xA9: '\'', 0xAA: '“',
		0xAB: '«', 0xAC: '‹', 0xAD: '›', 0xAE: 'ﬁ', 0xAF: 'ﬂ',
		0xB1: '–', 0xB2: '†', 0xB3: '‡', 0xB4: '·',
		0xB6: '¶', 0xB7: '•', 0xB8: '‚', 0xB9: '„',
		0xBA: '”', 0xBB: '»', 0xBC: '…', 0xBD: '‰', 0xBF: '¿',
		0xC1: '`', 0xC2: '´', 0xC3: 'ˆ', 0xC4: '˜', 0xC5: '¯',
		0xC6: '˘', 0xC7: '˙', 0xC8: '¨', 0xCA: '˚', 0xCB: '¸',
		0xCD: '˝', 0xCE: '˛', 0xCF: 'ˇ', 0xD0: '—',
		0xE1: 'Æ', 0xE3: 'ª', 0xE8: 'Ł', 0xE9: 'Ø', 0xEA: 'Œ',
		0xEB: 'º', 0xF1: 'æ', 0xF5: 'ı', 0xF8: 'ł', 0xF9: 'ø',
		0xFA: 'œ', 0xFB: 'ß',
	},
}
