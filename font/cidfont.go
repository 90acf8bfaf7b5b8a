package font

import (
	"strings"

	"github.com/unpdf/unpdf/core"
)

// loadType0 fills in a composite font. The descendant CIDFont carries
// the metrics and descriptor; the Type0 wrapper carries the CMap
// encoding and ToUnicode.
func (f *Font) loadType0(dict core.Dict, r Resolver) error {
	switch enc := resolve(r, dict.Get("Encoding")).(type) {
	case core.Name:
		name := string(enc)
		f.twoByte = true
		f.vertical = name == "Identity-V" || strings.HasSuffix(name, "-V")
	case *core.Stream:
		// Embedded CMap. Predefined and embedded CMaps for CJK text are
		// two-byte in practice; reading codes that way keeps ToUnicode
		// lookups aligned.
		f.twoByte = true
	default:
		f.twoByte = true
	}

	if stream, ok := resolvedStream(r, dict, "ToUnicode"); ok {
		if cmap, err := ParseToUnicodeCMap(stream); err == nil {
			f.toUnicode = cmap
		}
	}

	desc, ok := resolvedArray(r, dict, "DescendantFonts")
	if !ok || desc.Len() == 0 {
		return nil
	}
	cid, ok := resolve(r, desc.Get(0)).(core.Dict)
	if !ok {
		return nil
	}
	f.loadCIDFont(cid, r)
	return nil
}

// loadCIDFont reads /DW and /W from the descendant and its descriptor.
func (f *Font) loadCIDFont(dict core.Dict, r Resolver) {
	f.defaultWidth = 1000
	if dw, ok := dict.GetNumber("DW"); ok {
		f.defaultWidth = dw
	}
	if arr, ok := resolvedArray(r, dict, "W"); ok {
		f.cidWidths = parseCIDWidths(arr, r)
	}
	f.loadDescriptor(dict, r)
}

// parseCIDWidths walks a /W array. Two forms interleave freely:
//
//	c [w1 w2 ...]   widths for consecutive CIDs starting at c
//	c1 c2 w         one width for the whole range c1..c2
func parseCIDWidths(arr core.Array, r Resolver) map[uint32]float64 {
	widths := make(map[uint32]float64)
	i := 0
	for i < arr.Len() {
		start, ok := core.AsInt(resolve(r, arr.Get(i)))
		if !ok {
			break
		}
		i++
		if i >= arr.Len() {
			break
		}

		switch next := resolve(r, arr.Get(i)).(type) {
		case core.Array:
			for j := 0; j < next.Len(); j++ {
				if w, ok := core.AsNumber(resolve(r, next.Get(j))); ok {
					widths[uint32(start+j)] = w
				}
			}
			i++
		default:
			end, ok := core.AsInt(next)
			if !ok {
				return widths
			}
			i++
			if i >= arr.Len() {
				return widths
			}
			w, ok := core.AsNumber(resolve(r, arr.Get(i)))
			if !ok {
				return widths
			}
			i++
			if end < start || end-start > 65535 {
				continue
			}
			for c := start; c <= end; c++ {
				widths[uint32(c)] = w
			}
		}
	}
	return widths
}
