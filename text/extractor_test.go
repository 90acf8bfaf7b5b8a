package text

import (
	"fmt"
	"testing"

	"github.com/unpdf/unpdf/contentstream"
	"github.com/unpdf/unpdf/core"
	"github.com/unpdf/unpdf/font"
)

type fakeResolver struct {
	objects map[int]core.Object
}

func (r *fakeResolver) Resolve(obj core.Object) (core.Object, error) {
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

// euroFontDict builds a simple font whose ToUnicode CMap maps code 0x41
// to the euro sign.
func euroFontDict() core.Dict {
	cmapData := `/CIDInit /ProcSet findresource begin
12 dict begin
begincmap
1 begincodespacerange
<00> <FF>
endcodespacerange
1 beginbfchar
<41> <20AC>
endbfchar
endcmap
CMapName currentdict /CMap defineresource pop
end
end`
	return core.Dict{
		"Type":      core.Name("Font"),
		"Subtype":   core.Name("Type1"),
		"BaseFont":  core.Name("Helvetica"),
		"ToUnicode": &core.Stream{Dict: core.Dict{}, Data: []byte(cmapData)},
	}
}

// TestNewExtractor tests extractor creation
func TestNewExtractor(t *testing.T) {
	ex := NewExtractor()

	if ex == nil {
		t.Fatal("expected non-nil extractor")
	}
	if ex.state == nil {
		t.Error("expected graphics state to be initialized")
	}
	if ex.fonts == nil {
		t.Error("expected fonts map to be initialized")
	}
}

// TestExtractSimpleText tests basic positioned extraction
func TestExtractSimpleText(t *testing.T) {
	ex := NewExtractor()

	ops := []contentstream.Operation{
		{Operator: "BT", Operands: []core.Object{}},
		{Operator: "Tf", Operands: []core.Object{core.Name("F1"), core.Int(12)}},
		{Operator: "Td", Operands: []core.Object{core.Int(100), core.Int(200)}},
		{Operator: "Tj", Operands: []core.Object{core.String("Hello")}},
		{Operator: "ET", Operands: []core.Object{}},
	}
	ex.Process(ops)

	spans := ex.Spans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Text != "Hello" {
		t.Errorf("Text = %q, want %q", spans[0].Text, "Hello")
	}
	if spans[0].X != 100 || spans[0].Y != 200 {
		t.Errorf("position = (%f, %f), want (100, 200)", spans[0].X, spans[0].Y)
	}
	if spans[0].FontSize != 12 {
		t.Errorf("FontSize = %f, want 12", spans[0].FontSize)
	}
	if spans[0].FontName != "F1" {
		t.Errorf("FontName = %q, want %q", spans[0].FontName, "F1")
	}
}

// TestExtractOutsideTextObject tests that show operators outside BT/ET
// produce nothing
func TestExtractOutsideTextObject(t *testing.T) {
	ex := NewExtractor()

	ops := []contentstream.Operation{
		{Operator: "Tf", Operands: []core.Object{core.Name("F1"), core.Int(12)}},
		{Operator: "Tj", Operands: []core.Object{core.String("stray")}},
	}
	ex.Process(ops)

	if got := len(ex.Spans()); got != 0 {
		t.Errorf("expected no spans outside a text object, got %d", got)
	}
}

// TestExtractSkipsWhitespaceOnly tests that blank runs position without
// emitting
func TestExtractSkipsWhitespaceOnly(t *testing.T) {
	ex := NewExtractor()

	ops := []contentstream.Operation{
		{Operator: "BT", Operands: []core.Object{}},
		{Operator: "Tj", Operands: []core.Object{core.String("   ")}},
		{Operator: "Tj", Operands: []core.Object{core.String("real")}},
		{Operator: "ET", Operands: []core.Object{}},
	}
	ex.Process(ops)

	spans := ex.Spans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Text != "real" {
		t.Errorf("Text = %q, want %q", spans[0].Text, "real")
	}
}

// TestExtractTJArray tests TJ adjustment handling
func TestExtractTJArray(t *testing.T) {
	tests := []struct {
		name  string
		array core.Array
		want  string
	}{
		{
			name:  "large negative adjustment becomes a space",
			array: core.Array{core.String("Hello"), core.Int(-500), core.String("World")},
			want:  "Hello World",
		},
		{
			name:  "kerning-sized adjustment does not",
			array: core.Array{core.String("Hel"), core.Int(-50), core.String("lo")},
			want:  "Hello",
		},
		{
			name:  "positive adjustment tightens, no space",
			array: core.Array{core.String("Wor"), core.Int(300), core.String("ld")},
			want:  "World",
		},
		{
			name:  "real adjustment",
			array: core.Array{core.String("a"), core.Real(-250.5), core.String("b")},
			want:  "a b",
		},
		{
			name:  "existing space is not doubled",
			array: core.Array{core.String("Hello "), core.Int(-500), core.String("World")},
			want:  "Hello World",
		},
		{
			name:  "no space after ideographs",
			array: core.Array{core.String("日本"), core.Int(-500), core.String("語")},
			want:  "日本語",
		},
		{
			name:  "leading adjustment is ignored",
			array: core.Array{core.Int(-500), core.String("text")},
			want:  "text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := NewExtractor()
			ops := []contentstream.Operation{
				{Operator: "BT", Operands: []core.Object{}},
				{Operator: "TJ", Operands: []core.Object{tt.array}},
				{Operator: "ET", Operands: []core.Object{}},
			}
			ex.Process(ops)

			spans := ex.Spans()
			if len(spans) != 1 {
				t.Fatalf("expected 1 span, got %d", len(spans))
			}
			if spans[0].Text != tt.want {
				t.Errorf("Text = %q, want %q", spans[0].Text, tt.want)
			}
		})
	}
}

// TestExtractQuoteOperators tests the ' and " shortcuts, which advance a
// line before showing
func TestExtractQuoteOperators(t *testing.T) {
	ex := NewExtractor()

	ops := []contentstream.Operation{
		{Operator: "BT", Operands: []core.Object{}},
		{Operator: "Tm", Operands: []core.Object{core.Int(1), core.Int(0), core.Int(0), core.Int(1), core.Int(50), core.Int(700)}},
		{Operator: "'", Operands: []core.Object{core.String("first")}},
		{Operator: "\"", Operands: []core.Object{core.Int(1), core.Int(2), core.String("second")}},
		{Operator: "ET", Operands: []core.Object{}},
	}
	ex.Process(ops)

	spans := ex.Spans()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[0].Text != "first" || spans[0].Y != 688 {
		t.Errorf("first span = %q at Y %f, want %q at 688", spans[0].Text, spans[0].Y, "first")
	}
	if spans[1].Text != "second" || spans[1].Y != 676 {
		t.Errorf("second span = %q at Y %f, want %q at 676", spans[1].Text, spans[1].Y, "second")
	}
}

// TestExtractTextMatrixScaling tests effective font size under Tm scaling
func TestExtractTextMatrixScaling(t *testing.T) {
	ex := NewExtractor()

	ops := []contentstream.Operation{
		{Operator: "BT", Operands: []core.Object{}},
		{Operator: "Tf", Operands: []core.Object{core.Name("F1"), core.Int(12)}},
		{Operator: "Tm", Operands: []core.Object{core.Int(2), core.Int(0), core.Int(0), core.Int(2), core.Int(100), core.Int(500)}},
		{Operator: "Tj", Operands: []core.Object{core.String("big")}},
		{Operator: "ET", Operands: []core.Object{}},
	}
	ex.Process(ops)

	spans := ex.Spans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].FontSize != 24 {
		t.Errorf("FontSize = %f, want 24", spans[0].FontSize)
	}
	if spans[0].X != 100 || spans[0].Y != 500 {
		t.Errorf("position = (%f, %f), want (100, 500)", spans[0].X, spans[0].Y)
	}
}

// TestExtractWithFont tests decoding through a registered font
func TestExtractWithFont(t *testing.T) {
	f, err := font.LoadFont(euroFontDict(), "F1", nil)
	if err != nil {
		t.Fatalf("LoadFont failed: %v", err)
	}

	ex := NewExtractor()
	ex.RegisterFont("F1", f)

	ops := []contentstream.Operation{
		{Operator: "BT", Operands: []core.Object{}},
		{Operator: "Tf", Operands: []core.Object{core.Name("F1"), core.Int(12)}},
		{Operator: "Tj", Operands: []core.Object{core.String("\x41\x42")}},
		{Operator: "ET", Operands: []core.Object{}},
	}
	ex.Process(ops)

	spans := ex.Spans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Text != "€B" {
		t.Errorf("Text = %q, want %q", spans[0].Text, "€B")
	}
	// The loaded font contributes its BaseFont as the span's face name.
	if spans[0].FontName != "Helvetica" {
		t.Errorf("FontName = %q, want %q", spans[0].FontName, "Helvetica")
	}
}

// TestExtractLatin1Fallback tests the no-font byte decoding chain
func TestExtractLatin1Fallback(t *testing.T) {
	ex := NewExtractor()

	ops := []contentstream.Operation{
		{Operator: "BT", Operands: []core.Object{}},
		{Operator: "Tj", Operands: []core.Object{core.String("caf\xe9")}},
		{Operator: "Tj", Operands: []core.Object{core.String("\xfe\xff\x00\x41")}},
		{Operator: "ET", Operands: []core.Object{}},
	}
	ex.Process(ops)

	spans := ex.Spans()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[0].Text != "café" {
		t.Errorf("Latin-1 text = %q, want %q", spans[0].Text, "café")
	}
	if spans[1].Text != "A" {
		t.Errorf("UTF-16 text = %q, want %q", spans[1].Text, "A")
	}
}

// TestRegisterFontsFromResources tests bulk font loading from a resource
// dictionary
func TestRegisterFontsFromResources(t *testing.T) {
	resolver := &fakeResolver{objects: map[int]core.Object{
		7: euroFontDict(),
	}}
	resources := core.Dict{
		"Font": core.Dict{
			"F1": euroFontDict(),
			"F2": core.IndirectRef{Number: 7},
			"F3": core.Int(5), // not a font dictionary, skipped
		},
	}

	ex := NewExtractor()
	if err := ex.RegisterFontsFromResources(resources, resolver); err != nil {
		t.Fatalf("RegisterFontsFromResources failed: %v", err)
	}

	if _, ok := ex.fonts["F1"]; !ok {
		t.Error("direct font F1 not registered")
	}
	if _, ok := ex.fonts["F2"]; !ok {
		t.Error("referenced font F2 not registered")
	}
	if _, ok := ex.fonts["F3"]; ok {
		t.Error("non-dictionary entry F3 should be skipped")
	}
}

// TestRegisterFontsFromResourcesMissing tests absent inputs
func TestRegisterFontsFromResourcesMissing(t *testing.T) {
	ex := NewExtractor()

	if err := ex.RegisterFontsFromResources(nil, nil); err != nil {
		t.Errorf("nil resources: %v", err)
	}
	if err := ex.RegisterFontsFromResources(core.Dict{}, nil); err != nil {
		t.Errorf("resources without fonts: %v", err)
	}
	if len(ex.fonts) != 0 {
		t.Errorf("expected no fonts, got %d", len(ex.fonts))
	}
}

// TestExtractorReset tests that Reset clears spans but keeps fonts
func TestExtractorReset(t *testing.T) {
	f, err := font.LoadFont(euroFontDict(), "F1", nil)
	if err != nil {
		t.Fatalf("LoadFont failed: %v", err)
	}

	ex := NewExtractor()
	ex.RegisterFont("F1", f)

	ops := []contentstream.Operation{
		{Operator: "BT", Operands: []core.Object{}},
		{Operator: "Tj", Operands: []core.Object{core.String("page one")}},
		{Operator: "ET", Operands: []core.Object{}},
	}
	ex.Process(ops)
	if len(ex.Spans()) != 1 {
		t.Fatalf("expected 1 span before reset, got %d", len(ex.Spans()))
	}

	ex.Reset()

	if len(ex.Spans()) != 0 {
		t.Errorf("expected no spans after reset, got %d", len(ex.Spans()))
	}
	if _, ok := ex.fonts["F1"]; !ok {
		t.Error("fonts should survive a reset")
	}
}

// TestExtractAccumulatesAcrossStreams tests multi-stream pages
func TestExtractAccumulatesAcrossStreams(t *testing.T) {
	ex := NewExtractor()

	ex.Process([]contentstream.Operation{
		{Operator: "BT", Operands: []core.Object{}},
		{Operator: "Tj", Operands: []core.Object{core.String("one")}},
		{Operator: "ET", Operands: []core.Object{}},
	})
	ex.Process([]contentstream.Operation{
		{Operator: "BT", Operands: []core.Object{}},
		{Operator: "Tj", Operands: []core.Object{core.String("two")}},
		{Operator: "ET", Operands: []core.Object{}},
	})

	spans := ex.Spans()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[0].Text != "one" || spans[1].Text != "two" {
		t.Errorf("got %q, %q; want %q, %q", spans[0].Text, spans[1].Text, "one", "two")
	}
}
