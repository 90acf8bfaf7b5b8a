package font

import (
	"github.com/unpdf/unpdf/core"
)

// loadSimple fills in a single-byte font: Type1, TrueType, Type3 and
// MMType1 all share the /Encoding, /Widths and /FontDescriptor layout.
func (f *Font) loadSimple(dict core.Dict, r Resolver) error {
	f.encoding = f.simpleEncoding(dict, r)
	f.loadWidthArray(dict, r)
	f.loadDescriptor(dict, r)

	if stream, ok := resolvedStream(r, dict, "ToUnicode"); ok {
		if cmap, err := ParseToUnicodeCMap(stream); err == nil {
			f.toUnicode = cmap
		}
	}
	return nil
}

// simpleEncoding interprets /Encoding, which is either a base encoding
// name or a dictionary carrying /BaseEncoding plus /Differences.
func (f *Font) simpleEncoding(dict core.Dict, r Resolver) Encoding {
	obj := resolve(r, dict.Get("Encoding"))
	switch enc := obj.(type) {
	case core.Name:
		return GetEncoding(string(enc))
	case core.Dict:
		base := ""
		if name, ok := enc.GetName("BaseEncoding"); ok {
			base = string(name)
		}
		baseEnc := GetEncoding(base)
		diffs, ok := resolvedArray(r, enc, "Differences")
		if !ok {
			return baseEnc
		}
		return NewCustomEncodingFromGlyphs(baseEnc, parseDifferences(diffs))
	default:
		// Symbolic fonts carry their own built-in encoding; WinAnsi is
		// still the least-wrong single-byte reading of their codes.
		return GetEncoding("")
	}
}

// parseDifferences walks a /Differences array: integers reset the current
// code, names assign glyphs to consecutive codes.
func parseDifferences(arr core.Array) map[byte]string {
	diffs := make(map[byte]string)
	code := 0
	for i := 0; i < arr.Len(); i++ {
		switch v := arr.Get(i).(type) {
		case core.Int:
			code = int(v)
		case core.Real:
			code = int(v)
		case core.Name:
			if code >= 0 && code <= 0xFF {
				diffs[byte(code)] = string(v)
			}
			code++
		}
	}
	return diffs
}

func (f *Font) loadWidthArray(dict core.Dict, r Resolver) {
	if first, ok := dict.GetInt("FirstChar"); ok {
		f.firstChar = int(first)
	}
	arr, ok := resolvedArray(r, dict, "Widths")
	if !ok {
		return
	}
	f.widths = make([]float64, 0, arr.Len())
	for i := 0; i < arr.Len(); i++ {
		w, ok := core.AsNumber(resolve(r, arr.Get(i)))
		if !ok {
			w = 0
		}
		f.widths = append(f.widths, w)
	}
}

func (f *Font) loadDescriptor(dict core.Dict, r Resolver) {
	desc, ok := resolvedDict(r, dict, "FontDescriptor")
	if !ok {
		return
	}
	if flags, ok := desc.GetInt("Flags"); ok {
		f.flags = int(flags)
	}
	if angle, ok := desc.GetNumber("ItalicAngle"); ok {
		f.italicAngle = angle
	}
	if missing, ok := desc.GetNumber("MissingWidth"); ok {
		f.defaultWidth = missing
	}
}
