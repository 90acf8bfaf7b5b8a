// Package reader turns a PDF byte source into a materialized document.
//
// A [Reader] validates the %PDF- signature (tolerating up to a kilobyte of
// leading junk), loads the cross-reference chain including xref streams and
// compressed object streams, and then serves objects on demand with a
// per-reader cache. [Reader.BuildDocument] drives the full pipeline: page
// tree traversal, content-stream text extraction, layout analysis, image
// and attachment and font collection, metadata and outline decoding. The
// returned document owns all of its data; the source is never read again.
//
// # Opening
//
// Use [Open] for files and [NewReader] for any io.ReaderAt:
//
//	r, err := reader.Open("document.pdf")
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//	doc, err := r.BuildDocument()
//
// [Config] selects strictness and extraction scope; the zero configuration
// from [DefaultConfig] is strict and extracts everything.
//
// # Damage tolerance
//
// In lenient mode a reader whose cross-reference table is unusable scans
// the whole source for "N G obj" headers and rebuilds the table, and pages
// whose content streams fail to parse become sections holding whatever was
// recovered before the failure. Strict mode turns both into errors.
package reader
