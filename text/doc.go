// Package text turns decoded content-stream operations into positioned
// text spans.
//
// The [Extractor] walks content-stream operations, tracking the graphics
// state and decoding show-text operands through the registered fonts:
//
//	ex := text.NewExtractor()
//	ex.RegisterFontsFromResources(resources, resolver)
//	ex.Process(ops)
//	spans := ex.Spans()
//
// Each [Span] carries the decoded text with its position, effective font
// size, font name, and bold/italic hints derived from the font name.
// Assembling spans into lines, columns and blocks is the layout package's
// job.
package text
