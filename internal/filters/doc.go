// Package filters implements the standard PDF stream decompression filters.
//
// PDF stream data can be encoded with one or more filters, applied in
// sequence. Each filter here takes the raw encoded bytes plus an optional
// Params map (the stream's /DecodeParms entries) and returns decoded bytes.
//
// # Supported Filters
//
// FlateDecode (zlib/deflate):
//
//	decoded, err := filters.FlateDecode(data, params)
//
// LZWDecode (LZW with the PDF EarlyChange convention):
//
//	decoded, err := filters.LZWDecode(data, params)
//
// Both Flate and LZW honor the Predictor parameter:
//   - 1: no prediction (default)
//   - 2: TIFF Predictor 2
//   - 10-15: PNG predictors (None, Sub, Up, Average, Paeth)
//
// RunLengthDecode:
//
//	decoded, err := filters.RunLengthDecode(data)
//
// ASCIIHexDecode and ASCII85Decode:
//
//	decoded, err := filters.ASCIIHexDecode(data)
//	decoded, err := filters.ASCII85Decode(data)
//
// Whitespace is ignored in both ASCII encodings.
//
// CCITTFaxDecode (Group 3/4 bi-level fax compression):
//
//	decoded, err := filters.CCITTFaxDecode(data, params)
//
// # Decode Parameters
//
// Filters accept a Params map carrying the stream dictionary's decode
// parameters:
//
//	params := filters.Params{
//	    "Predictor": 12,
//	    "Columns":   100,
//	    "Colors":    3,
//	}
//	decoded, err := filters.FlateDecode(data, params)
package filters
