package font

import (
	"fmt"
	"testing"

	"github.com/unpdf/unpdf/core"
)

// stubResolver serves objects from a map keyed by object number.
type stubResolver struct {
	objects map[int]core.Object
}

func (r *stubResolver) Resolve(obj core.Object) (core.Object, error) {
	ref, ok := obj.(core.IndirectRef)
	if !ok {
		return obj, nil
	}
	got, ok := r.objects[ref.Number]
	if !ok {
		return nil, fmt.Errorf("object %d not found", ref.Number)
	}
	return got, nil
}

func fontRef(n int) core.IndirectRef { return core.IndirectRef{Number: n} }

func TestLoadSimpleFont(t *testing.T) {
	dict := core.Dict{
		"Type":     core.Name("Font"),
		"Subtype":  core.Name("Type1"),
		"BaseFont": core.Name("Helvetica"),
		"Encoding": core.Name("WinAnsiEncoding"),
	}

	f, err := LoadFont(dict, "F1", nil)
	if err != nil {
		t.Fatalf("LoadFont() error = %v", err)
	}

	if f.Name != "F1" {
		t.Errorf("Name = %q, want %q", f.Name, "F1")
	}
	if f.BaseFont != "Helvetica" {
		t.Errorf("BaseFont = %q, want %q", f.BaseFont, "Helvetica")
	}
	if f.Subtype != "Type1" {
		t.Errorf("Subtype = %q, want %q", f.Subtype, "Type1")
	}
	if got := f.EncodingName(); got != "WinAnsiEncoding" {
		t.Errorf("EncodingName() = %q, want %q", got, "WinAnsiEncoding")
	}

	if got := f.DecodeString([]byte{0x48, 0x65, 0x6C, 0x6C, 0x6F}); got != "Hello" {
		t.Errorf("DecodeString() = %q, want %q", got, "Hello")
	}
	if got := f.DecodeString([]byte{0x63, 0x61, 0x66, 0xE9}); got != "café" {
		t.Errorf("DecodeString() = %q, want %q", got, "café")
	}
}

func TestLoadFontMissingBaseFont(t *testing.T) {
	f, err := LoadFont(core.Dict{"Subtype": core.Name("Type1")}, "F3", nil)
	if err != nil {
		t.Fatalf("LoadFont() error = %v", err)
	}
	if f.BaseFont != "Unknown" {
		t.Errorf("BaseFont = %q, want %q", f.BaseFont, "Unknown")
	}
}

func TestLoadFontDifferences(t *testing.T) {
	dict := core.Dict{
		"Subtype":  core.Name("Type1"),
		"BaseFont": core.Name("Custom"),
		"Encoding": core.Dict{
			"Type":         core.Name("Encoding"),
			"BaseEncoding": core.Name("WinAnsiEncoding"),
			"Differences": core.Array{
				core.Int(65), core.Name("Euro"), core.Name("bullet"),
			},
		},
	}

	f, err := LoadFont(dict, "F1", nil)
	if err != nil {
		t.Fatalf("LoadFont() error = %v", err)
	}

	// 65 and 66 are remapped, 67 falls through to WinAnsi.
	if got := f.DecodeString([]byte{65, 66, 67}); got != "€•C" {
		t.Errorf("DecodeString() = %q, want %q", got, "€•C")
	}
}

func TestLoadFontWidths(t *testing.T) {
	resolver := &stubResolver{objects: map[int]core.Object{
		7: core.Array{core.Int(500), core.Int(600), core.Int(700)},
	}}
	dict := core.Dict{
		"Subtype":   core.Name("Type1"),
		"BaseFont":  core.Name("Helvetica"),
		"FirstChar": core.Int(65),
		"Widths":    fontRef(7),
	}

	f, err := LoadFont(dict, "F1", resolver)
	if err != nil {
		t.Fatalf("LoadFont() error = %v", err)
	}

	tests := []struct {
		code uint32
		want float64
	}{
		{65, 500},  // from /Widths
		{66, 600},  // from /Widths
		{67, 700},  // from /Widths
		{64, 1015}, // '@' before FirstChar, Standard 14 metric
		{70, 611},  // 'F' past /Widths, Standard 14 metric
	}
	for _, tt := range tests {
		if got := f.Width(tt.code); got != tt.want {
			t.Errorf("Width(%d) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestLoadFontDescriptor(t *testing.T) {
	resolver := &stubResolver{objects: map[int]core.Object{
		3: core.Dict{
			"Type":         core.Name("FontDescriptor"),
			"Flags":        core.Int(flagItalic | flagSerif),
			"ItalicAngle":  core.Real(-12),
			"MissingWidth": core.Int(250),
		},
	}}
	dict := core.Dict{
		"Subtype":        core.Name("TrueType"),
		"BaseFont":       core.Name("SomeSerif"),
		"FontDescriptor": fontRef(3),
	}

	f, err := LoadFont(dict, "F2", resolver)
	if err != nil {
		t.Fatalf("LoadFont() error = %v", err)
	}

	if !f.Italic() {
		t.Error("Italic() = false, want true")
	}
	if f.Bold() {
		t.Error("Bold() = true, want false")
	}
	if got := f.Width(0x200); got != 250 {
		t.Errorf("Width(unmapped) = %v, want MissingWidth 250", got)
	}
}

func TestLoadType0Font(t *testing.T) {
	cmapData := `begincmap
1 begincodespacerange
<0000> <FFFF>
endcodespacerange
2 beginbfchar
<0001> <0048>
<0002> <0069>
endbfchar
endcmap
`
	resolver := &stubResolver{objects: map[int]core.Object{
		4: core.Array{fontRef(5)},
		5: core.Dict{
			"Type":     core.Name("Font"),
			"Subtype":  core.Name("CIDFontType2"),
			"BaseFont": core.Name("ABCDEF+NotoSans"),
			"DW":       core.Int(800),
			"W": core.Array{
				core.Int(1), core.Array{core.Int(600), core.Int(650)},
				core.Int(10), core.Int(12), core.Int(900),
			},
		},
		6: &core.Stream{Dict: core.Dict{}, Data: []byte(cmapData)},
	}}
	dict := core.Dict{
		"Subtype":         core.Name("Type0"),
		"BaseFont":        core.Name("ABCDEF+NotoSans"),
		"Encoding":        core.Name("Identity-H"),
		"DescendantFonts": fontRef(4),
		"ToUnicode":       fontRef(6),
	}

	f, err := LoadFont(dict, "F1", resolver)
	if err != nil {
		t.Fatalf("LoadFont() error = %v", err)
	}

	if f.IsVertical() {
		t.Error("IsVertical() = true, want false for Identity-H")
	}
	if !f.HasToUnicode() {
		t.Error("HasToUnicode() = false, want true")
	}

	widths := []struct {
		code uint32
		want float64
	}{
		{1, 600},
		{2, 650},
		{10, 900},
		{11, 900},
		{12, 900},
		{99, 800}, // /DW
	}
	for _, tt := range widths {
		if got := f.Width(tt.code); got != tt.want {
			t.Errorf("Width(%d) = %v, want %v", tt.code, got, tt.want)
		}
	}

	if got := f.DecodeString([]byte{0x00, 0x01, 0x00, 0x02}); got != "Hi" {
		t.Errorf("DecodeString() = %q, want %q", got, "Hi")
	}
}

func TestLoadType0IdentityV(t *testing.T) {
	resolver := &stubResolver{objects: map[int]core.Object{
		4: core.Array{fontRef(5)},
		5: core.Dict{"Subtype": core.Name("CIDFontType0")},
	}}
	dict := core.Dict{
		"Subtype":         core.Name("Type0"),
		"BaseFont":        core.Name("KozMin"),
		"Encoding":        core.Name("Identity-V"),
		"DescendantFonts": fontRef(4),
	}

	f, err := LoadFont(dict, "F1", resolver)
	if err != nil {
		t.Fatalf("LoadFont() error = %v", err)
	}

	if !f.IsVertical() {
		t.Error("IsVertical() = false, want true for Identity-V")
	}
	// Without ToUnicode, two-byte codes read as UTF-16BE.
	if got := f.DecodeString([]byte{0x4E, 0x2D, 0x65, 0x87}); got != "中文" {
		t.Errorf("DecodeString() = %q, want %q", got, "中文")
	}
}

func TestFontDecodeStringWithEncoding(t *testing.T) {
	tests := []struct {
		name     string
		encoding string
		input    []byte
		expected string
	}{
		{
			name:     "WinAnsi encoding",
			encoding: "WinAnsiEncoding",
			input:    []byte{0x48, 0x65, 0x6C, 0x6C, 0x6F},
			expected: "Hello",
		},
		{
			name:     "WinAnsi with accents",
			encoding: "WinAnsiEncoding",
			input:    []byte{0x63, 0x61, 0x66, 0xE9},
			expected: "café",
		},
		{
			name:     "PDFDoc encoding",
			encoding: "PDFDocEncoding",
			input:    []byte{0x80, 0x20, 0x54, 0x65, 0x73, 0x74},
			expected: "• Test",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &Font{
				Name:     "TestFont",
				BaseFont: "Helvetica",
				Subtype:  "Type1",
				encoding: GetEncoding(tt.encoding),
			}

			got := f.DecodeString(tt.input)
			if got != tt.expected {
				t.Errorf("Font.DecodeString() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestFontDecodeStringPriority(t *testing.T) {
	cmap := NewCMap()
	cmap.Put(0x41, "X")

	f := &Font{
		Name:      "TestFont",
		BaseFont:  "Helvetica",
		Subtype:   "Type1",
		encoding:  GetEncoding("WinAnsiEncoding"),
		toUnicode: cmap,
	}

	// ToUnicode takes priority over the simple encoding.
	if got := f.DecodeString([]byte{0x41}); got != "X" {
		t.Errorf("DecodeString() = %q, want %q (ToUnicode has priority)", got, "X")
	}

	f.toUnicode = nil
	if got := f.DecodeString([]byte{0x41}); got != "A" {
		t.Errorf("DecodeString() = %q, want %q (encoding fallback)", got, "A")
	}
}

func TestFontDecodeStringBOM(t *testing.T) {
	f := &Font{encoding: GetEncoding("WinAnsiEncoding")}

	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{"UTF-16BE", []byte{0xFE, 0xFF, 0x00, 0x48, 0x00, 0x69}, "Hi"},
		{"UTF-16LE", []byte{0xFF, 0xFE, 0x48, 0x00, 0x69, 0x00}, "Hi"},
		{"empty", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.DecodeString(tt.input); got != tt.want {
				t.Errorf("DecodeString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFontBoldItalic(t *testing.T) {
	tests := []struct {
		baseFont    string
		flags       int
		italicAngle float64
		bold        bool
		italic      bool
	}{
		{"Helvetica", 0, 0, false, false},
		{"Helvetica-Bold", 0, 0, true, false},
		{"Helvetica-Oblique", 0, 0, false, true},
		{"Times-BoldItalic", 0, 0, true, true},
		{"Arial-Black", 0, 0, true, false},
		{"ABCDEF+Roboto-Heavy", 0, 0, true, false},
		{"Plain", flagForceBold, 0, true, false},
		{"Plain", flagItalic, 0, false, true},
		{"Plain", 0, -12, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.baseFont, func(t *testing.T) {
			f := &Font{BaseFont: tt.baseFont, flags: tt.flags, italicAngle: tt.italicAngle}
			if got := f.Bold(); got != tt.bold {
				t.Errorf("Bold() = %v, want %v", got, tt.bold)
			}
			if got := f.Italic(); got != tt.italic {
				t.Errorf("Italic() = %v, want %v", got, tt.italic)
			}
		})
	}
}

func TestStripSubsetTag(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"ABCDEF+Helvetica", "Helvetica"},
		{"BAAAAA+Times-Roman", "Times-Roman"},
		{"Helvetica", "Helvetica"},
		{"AbCDEF+Font", "AbCDEF+Font"}, // lowercase in tag
		{"ABCDE+Font", "ABCDE+Font"},   // tag too short
		{"", ""},
	}
	for _, tt := range tests {
		if got := StripSubsetTag(tt.in); got != tt.want {
			t.Errorf("StripSubsetTag(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsStandardFont(t *testing.T) {
	tests := []struct {
		baseFont string
		want     bool
	}{
		{"Helvetica", true},
		{"Times-BoldItalic", true},
		{"Courier-Oblique", true},
		{"ZapfDingbats", true},
		{"Arial", true},            // substitution alias
		{"ABCDEF+Helvetica", true}, // subset of a standard font
		{"NotoSans-Regular", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsStandardFont(tt.baseFont); got != tt.want {
			t.Errorf("IsStandardFont(%q) = %v, want %v", tt.baseFont, got, tt.want)
		}
	}
}

func TestStringWidth(t *testing.T) {
	f, err := LoadFont(core.Dict{
		"Subtype":  core.Name("Type1"),
		"BaseFont": core.Name("Helvetica"),
	}, "F1", nil)
	if err != nil {
		t.Fatalf("LoadFont() error = %v", err)
	}

	// A=667, B=667 in Helvetica metrics.
	if got := f.StringWidth("AB"); got != 1334 {
		t.Errorf("StringWidth(%q) = %v, want %v", "AB", got, 1334.0)
	}
}
