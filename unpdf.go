// Package unpdf extracts structured content from PDF files: sections with
// headings, lists and tables, document metadata, embedded resources, and
// the bookmark outline.
//
// Parsing is eager: [Parse] and [ParseFile] materialize the whole
// document before returning, so every accessor on [model.Document] is a
// plain read and the document can be shared between goroutines freely.
//
//	doc, err := unpdf.ParseFile("report.pdf")
//	if err != nil {
//	    // handle error
//	}
//	md, err := render.Markdown(doc, render.MarkdownOptions{Frontmatter: true})
//
// Options tune strictness and scope:
//
//	doc, err := unpdf.ParseFile("report.pdf",
//	    unpdf.WithLenient(),
//	    unpdf.WithPages(1, 2, 3))
//
// The render package turns documents into Markdown, plain text, or JSON;
// the ffi directory exports the same operations over a C ABI.
package unpdf

import (
	"bytes"

	"github.com/unpdf/unpdf/model"
	"github.com/unpdf/unpdf/pdferr"
	"github.com/unpdf/unpdf/reader"
)

// Version is the library version, also reported through the C ABI.
const Version = "0.2.0"

// Parse parses a PDF held in memory. The data is read eagerly and not
// retained; the caller may reuse the slice once Parse returns.
func Parse(data []byte, opts ...Option) (*model.Document, error) {
	if len(data) == 0 {
		return nil, pdferr.UnknownFormat()
	}
	cfg := buildConfig(opts)
	r, err := reader.NewReaderWithConfig(bytes.NewReader(data), int64(len(data)), cfg)
	if err != nil {
		return nil, err
	}
	return r.BuildDocument()
}

// ParseFile opens and parses the PDF at path.
func ParseFile(path string, opts ...Option) (*model.Document, error) {
	r, err := reader.OpenWithConfig(path, buildConfig(opts))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return r.BuildDocument()
}

// IsPDF reports whether the file at path parses as a PDF. It runs a full
// parse, so a damaged document that merely starts with the right
// signature reports false.
func IsPDF(path string) bool {
	_, err := ParseFile(path)
	return err == nil
}

// PageCount parses the file at path and returns its page count.
func PageCount(path string) (int, error) {
	doc, err := ParseFile(path)
	if err != nil {
		return 0, err
	}
	return doc.SectionCount(), nil
}
