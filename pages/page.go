package pages

import (
	"bytes"
	"fmt"

	"github.com/unpdf/unpdf/core"
)

// US Letter, the fallback when a page declares no usable /MediaBox.
const (
	defaultPageWidth  = 612.0
	defaultPageHeight = 792.0
)

// Page is one leaf of the page tree with its inherited attributes already
// resolved.
type Page struct {
	dict     core.Dict
	ref      *core.IndirectRef
	number   int // 1-based position in document order
	inh      inherited
	resolver Resolver
}

func newPage(dict core.Dict, ref *core.IndirectRef, number int, inh inherited, resolver Resolver) *Page {
	return &Page{dict: dict, ref: ref, number: number, inh: inh, resolver: resolver}
}

// Dict returns the raw page dictionary.
func (p *Page) Dict() core.Dict { return p.dict }

// Number returns the 1-based page number.
func (p *Page) Number() int { return p.number }

// Ref returns the indirect reference that named this page, when the page
// tree used one.
func (p *Page) Ref() (core.IndirectRef, bool) {
	if p.ref == nil {
		return core.IndirectRef{}, false
	}
	return *p.ref, true
}

// MediaBox returns [x1 y1 x2 y2], falling back to US Letter when the page
// and its ancestors declare nothing usable.
func (p *Page) MediaBox() [4]float64 {
	box := [4]float64{0, 0, defaultPageWidth, defaultPageHeight}
	arr := p.inh.mediaBox
	if arr.Len() != 4 {
		return box
	}
	for i := 0; i < 4; i++ {
		n, ok := arr.GetNumber(i)
		if !ok {
			return [4]float64{0, 0, defaultPageWidth, defaultPageHeight}
		}
		box[i] = n
	}
	return box
}

// Width returns the page width in points.
func (p *Page) Width() float64 {
	box := p.MediaBox()
	w := box[2] - box[0]
	if w < 0 {
		w = -w
	}
	return w
}

// Height returns the page height in points.
func (p *Page) Height() float64 {
	box := p.MediaBox()
	h := box[3] - box[1]
	if h < 0 {
		h = -h
	}
	return h
}

// Rotate returns the page rotation normalized to 0, 90, 180, or 270.
func (p *Page) Rotate() int {
	r, ok := core.AsInt(p.inh.rotate)
	if !ok {
		return 0
	}
	r = ((r % 360) + 360) % 360
	if r%90 != 0 {
		return 0
	}
	return r
}

// Resources returns the page resource dictionary, possibly inherited; nil
// when neither the page nor any ancestor declares one.
func (p *Page) Resources() core.Dict { return p.inh.resources }

// Contents returns the page content streams. /Contents may be one stream,
// an array of streams, or absent; non-stream array entries are skipped.
func (p *Page) Contents() ([]*core.Stream, error) {
	obj := p.dict.Get("Contents")
	if obj == nil {
		return nil, nil
	}
	resolved, err := p.resolver.Resolve(obj)
	if err != nil {
		return nil, fmt.Errorf("resolve /Contents: %w", err)
	}

	switch v := resolved.(type) {
	case *core.Stream:
		return []*core.Stream{v}, nil
	case core.Array:
		streams := make([]*core.Stream, 0, len(v))
		for i, elem := range v {
			r, err := p.resolver.Resolve(elem)
			if err != nil {
				return nil, fmt.Errorf("resolve /Contents[%d]: %w", i, err)
			}
			if s, ok := r.(*core.Stream); ok {
				streams = append(streams, s)
			}
		}
		return streams, nil
	default:
		return nil, fmt.Errorf("/Contents is %T, want stream or array", resolved)
	}
}

// ContentData decodes and concatenates the content streams. Streams in an
// array are joined with a newline, which the content grammar treats as
// plain whitespace between operators.
func (p *Page) ContentData() ([]byte, error) {
	streams, err := p.Contents()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	for i, stream := range streams {
		data, err := stream.Decoded()
		if err != nil {
			return nil, fmt.Errorf("decode content stream %d: %w", i, err)
		}
		if i > 0 {
			buf.WriteByte('\n')
		}
		buf.Write(data)
	}
	return buf.Bytes(), nil
}
