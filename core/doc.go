// Package core implements the low-level PDF object machinery: the eight
// basic object types, the lexer and parser for PDF syntax, stream filter
// decoding, cross-reference data (classic tables and cross-reference
// streams), and object streams.
//
// # Objects
//
// Every value the parser can produce satisfies the [Object] interface:
// [Null], [Bool], [Int], [Real], [String], [Name], [Array], [Dict],
// [Stream] and [IndirectRef]. [Dict] carries typed getters that report
// presence alongside the value, which keeps call sites short when walking
// loosely structured documents.
//
// # Parsing
//
// [Lexer] tokenizes PDF syntax (comments are skipped, hex strings and name
// escapes are decoded in place). [Parser] assembles tokens into objects
// with two tokens of lookahead, enough to tell "7 0 R" from two integers.
//
// # Cross-references and object streams
//
// [XRefParser] locates the startxref pointer, reads classic tables and
// /Type /XRef streams, follows /Prev chains and hybrid /XRefStm pointers,
// and merges everything into one [XRefTable]. [ObjectStream] unpacks the
// objects compressed inside /Type /ObjStm streams.
//
// # Stream decoding
//
// [Stream.Decoded] applies the /Filter chain: Flate with PNG and TIFF
// predictors, LZW, ASCIIHex, ASCII85, RunLength and CCITT fax. DCT and JPX
// payloads pass through untouched since they are complete image files.
package core
