package text

import (
	"fmt"
	"strings"

	"github.com/unpdf/unpdf/contentstream"
	"github.com/unpdf/unpdf/core"
	"github.com/unpdf/unpdf/font"
	"github.com/unpdf/unpdf/graphicsstate"
)

// A TJ adjustment past this many thousandths of an em reads as a word
// gap the producer encoded as positioning instead of a space glyph.
const tjSpaceThreshold = 200.0

// Extractor walks content-stream operations and collects text spans with
// their page positions.
type Extractor struct {
	state *graphicsstate.State
	fonts map[string]*font.Font

	spans  []Span
	inText bool
}

// NewExtractor returns an extractor with an empty font table.
func NewExtractor() *Extractor {
	return &Extractor{
		state: graphicsstate.New(),
		fonts: make(map[string]*font.Font),
	}
}

// RegisterFont makes a loaded font available under its resource name.
func (e *Extractor) RegisterFont(name string, f *font.Font) {
	e.fonts[name] = f
}

// RegisterFontsFromResources loads every font in a page's /Resources /Font
// dictionary. Fonts that fail to load are skipped; their text still comes
// out through the fallback decoder.
func (e *Extractor) RegisterFontsFromResources(resources core.Dict, r font.Resolver) error {
	if resources == nil {
		return nil
	}
	obj := resources.Get("Font")
	if obj == nil {
		return nil
	}
	if r != nil {
		resolved, err := r.Resolve(obj)
		if err != nil {
			return fmt.Errorf("resolve /Font dictionary: %w", err)
		}
		obj = resolved
	}
	fontDict, ok := obj.(core.Dict)
	if !ok {
		return nil
	}

	for _, name := range fontDict.Keys() {
		entry := fontDict.Get(name)
		if r != nil {
			resolved, err := r.Resolve(entry)
			if err != nil {
				continue
			}
			entry = resolved
		}
		dict, ok := entry.(core.Dict)
		if !ok {
			continue
		}
		f, err := font.LoadFont(dict, name, r)
		if err != nil {
			continue
		}
		e.fonts[name] = f
	}
	return nil
}

// Process runs the operations through the extractor. It can be called
// repeatedly; spans accumulate across calls.
func (e *Extractor) Process(ops []contentstream.Operation) {
	for _, op := range ops {
		switch op.Operator {
		case "BT":
			e.inText = true
			e.state.Apply(op)
		case "ET":
			e.inText = false
			e.state.Apply(op)
		case "Tj":
			if e.inText {
				if s, ok := op.GetString(0); ok {
					e.show(e.decode([]byte(s)))
				}
			}
		case "TJ":
			if e.inText {
				e.show(e.combineTJ(op))
			}
		case "'":
			e.state.Apply(op) // line advance happens before the text shows
			if e.inText {
				if s, ok := op.GetString(0); ok {
					e.show(e.decode([]byte(s)))
				}
			}
		case "\"":
			e.state.Apply(op)
			if e.inText {
				if s, ok := op.GetString(2); ok {
					e.show(e.decode([]byte(s)))
				}
			}
		default:
			e.state.Apply(op)
		}
	}
}

// Spans returns everything collected so far.
func (e *Extractor) Spans() []Span {
	return e.spans
}

// Reset clears collected spans and restores the default state, keeping
// registered fonts.
func (e *Extractor) Reset() {
	e.spans = nil
	e.inText = false
	e.state = graphicsstate.New()
}

// show emits a span at the current text position. Runs that are entirely
// whitespace position the cursor but produce no span.
func (e *Extractor) show(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	x, y := e.state.Text.Position()
	size := e.state.Text.EffectiveFontSize()
	e.spans = append(e.spans, NewSpan(text, x, y, size, e.spanFontName()))
}

// spanFontName names the face for the span: the loaded font's BaseFont
// when known, otherwise the raw resource name from Tf.
func (e *Extractor) spanFontName() string {
	name := e.state.Text.FontName
	if f, ok := e.fonts[name]; ok {
		return f.BaseFont
	}
	return name
}

// decode turns show-text bytes into Unicode via the current font, falling
// back to a BOM/UTF-8/Latin-1 guess when no font is registered.
func (e *Extractor) decode(data []byte) string {
	if f, ok := e.fonts[e.state.Text.FontName]; ok {
		return f.DecodeString(data)
	}
	return decodeSimple(data)
}

// combineTJ flattens a TJ array into text. Adjustment numbers beyond the
// threshold become spaces, except inside ideographic text or when a space
// is already there.
func (e *Extractor) combineTJ(op contentstream.Operation) string {
	arr, ok := op.Operand(0).(core.Array)
	if !ok {
		return ""
	}

	var b strings.Builder
	for _, item := range arr {
		switch v := item.(type) {
		case core.String:
			b.WriteString(e.decode([]byte(v)))
		case core.Int:
			appendAdjustmentSpace(&b, -float64(v))
		case core.Real:
			appendAdjustmentSpace(&b, -float64(v))
		}
	}
	return b.String()
}

func appendAdjustmentSpace(b *strings.Builder, adjustment float64) {
	if adjustment <= tjSpaceThreshold {
		return
	}
	s := b.String()
	if s == "" || strings.HasSuffix(s, " ") || strings.HasSuffix(s, " ") {
		return
	}
	last, _ := lastRune(s)
	if IsSpacelessScript(last) {
		return
	}
	b.WriteByte(' ')
}

// decodeSimple is the no-font fallback: UTF-16BE with BOM, valid UTF-8,
// then Latin-1.
func decodeSimple(data []byte) string {
	if len(data) >= 2 && data[0] == 0xFE && data[1] == 0xFF {
		return font.DecodeUTF16BE(data[2:])
	}
	if font.IsValidUTF8(string(data)) {
		return string(data)
	}
	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = rune(b)
	}
	return string(runes)
}
