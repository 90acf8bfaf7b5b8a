package text

import (
	"strings"
	"unicode/utf8"
)

// Span is one shown run of text with its position and style. X is the left
// edge and Y the baseline, both in page space.
type Span struct {
	Text     string
	X        float64
	Y        float64
	Width    float64
	FontSize float64
	FontName string
	Bold     bool
	Italic   bool
}

// NewSpan builds a span, judging bold and italic from the font name the
// way viewers name faces (bold/black/heavy, italic/oblique).
func NewSpan(text string, x, y, fontSize float64, fontName string) Span {
	lower := strings.ToLower(fontName)
	return Span{
		Text:     text,
		X:        x,
		Y:        y,
		FontSize: fontSize,
		FontName: fontName,
		Bold:     strings.Contains(lower, "bold") || strings.Contains(lower, "black") || strings.Contains(lower, "heavy"),
		Italic:   strings.Contains(lower, "italic") || strings.Contains(lower, "oblique"),
	}
}

// Bottom approximates the descender line from the font size.
func (s *Span) Bottom() float64 {
	return s.Y - s.FontSize*0.2
}

// Top approximates the ascender line from the font size.
func (s *Span) Top() float64 {
	return s.Y + s.FontSize*0.8
}

func lastRune(s string) (rune, bool) {
	if s == "" {
		return 0, false
	}
	r, _ := utf8.DecodeLastRuneInString(s)
	return r, true
}

// IsSpacelessScript reports whether r belongs to a script written without
// word spaces. Chinese and Japanese qualify; Korean does not, Hangul uses
// spaces like Latin text.
func IsSpacelessScript(r rune) bool {
	c := uint32(r)
	switch {
	case c >= 0x4E00 && c <= 0x9FFF: // CJK Unified Ideographs
		return true
	case c >= 0x3400 && c <= 0x4DBF: // Extension A
		return true
	case c >= 0x20000 && c <= 0x2A6DF: // Extension B
		return true
	case c >= 0x2A700 && c <= 0x2B73F: // Extension C
		return true
	case c >= 0x2B740 && c <= 0x2B81F: // Extension D
		return true
	case c >= 0x2B820 && c <= 0x2CEAF: // Extension E
		return true
	case c >= 0x2CEB0 && c <= 0x2EBEF: // Extension F
		return true
	case c >= 0x3040 && c <= 0x309F: // Hiragana
		return true
	case c >= 0x30A0 && c <= 0x30FF: // Katakana
		return true
	case c >= 0x3000 && c <= 0x303F: // CJK symbols and punctuation
		return true
	}
	return false
}
