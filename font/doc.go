// Package font turns PDF font dictionaries into Unicode text decoders.
//
// A [Font] is loaded from a /Font dictionary with [LoadFont], which
// routes composite (Type0) and simple (Type1, TrueType, Type3) fonts to
// the right loader. The result decodes show-text strings:
//
//	f, err := font.LoadFont(dict, "F1", resolver)
//	text := f.DecodeString(rawBytes)
//
// # Decoding
//
// Decoding prefers the embedded /ToUnicode CMap, then UTF-16 byte order
// marks, then the font's simple encoding (WinAnsiEncoding,
// MacRomanEncoding, PDFDocEncoding, StandardEncoding, or a /Differences
// customization), and finally a UTF-8/Latin-1 guess. Composite fonts
// without a ToUnicode map read their two-byte codes as UTF-16BE. All
// output is NFC-normalized.
//
// # Metrics
//
// Glyph widths come from /Widths or /W arrays when embedded, and from
// built-in Standard 14 tables otherwise:
//
//	w := f.Width(code)       // one character code
//	w := f.StringWidth(text) // decoded text, Standard 14 metrics
//
// Widths are expressed in 1000ths of an em, the PDF convention.
package font
