// The ffi command builds libunpdf, the C shared library exposing the
// extraction engine to foreign runtimes:
//
//	go build -buildmode=c-shared -o libunpdf.so ./ffi
//
// Exported symbols are prefixed unpdf_. Documents live behind opaque
// uint64 handles; every returned string or byte buffer is owned by the
// caller and released through unpdf_free_string or unpdf_free_bytes
// exactly once. The most recent failure text is kept per calling thread
// and read through unpdf_last_error.
//
// This file is the cgo-free half: operations on Go types, shared by the
// export shims and the tests. The shims in exports.go only marshal.
package main

import (
	"errors"

	"github.com/unpdf/unpdf"
	"github.com/unpdf/unpdf/internal/handles"
	"github.com/unpdf/unpdf/model"
	"github.com/unpdf/unpdf/render"
)

// Markdown flag bits, OR-able. They exist only at the ABI boundary and
// decode into render.MarkdownOptions on entry.
const (
	flagFrontmatter      = 1
	flagEscapeSpecial    = 2
	flagParagraphSpacing = 4
)

// JSON format selectors.
const (
	jsonPretty  = 0
	jsonCompact = 1
)

// Boundary-input failures, worded for a host-language caller.
var (
	errInvalidHandle = errors.New("Invalid document handle")
	errNullPath      = errors.New("Path cannot be null")
	errEmptyBuffer   = errors.New("Buffer cannot be null or empty")
	errNullID        = errors.New("Resource id cannot be null")
)

// documents maps live handles to parsed documents for the process
// lifetime. Slot generations make a freed handle stale instead of
// aliasing the next document.
var documents = handles.NewTable[*model.Document]()

func parseFileHandle(path string) (handles.Handle, error) {
	doc, err := unpdf.ParseFile(path)
	if err != nil {
		return 0, err
	}
	return documents.Put(doc), nil
}

func parseBytesHandle(data []byte) (handles.Handle, error) {
	doc, err := unpdf.Parse(data)
	if err != nil {
		return 0, err
	}
	return documents.Put(doc), nil
}

// freeDocument releases the document behind h. Zero and stale handles
// are ignored.
func freeDocument(h handles.Handle) {
	documents.Remove(h)
}

func document(h handles.Handle) (*model.Document, error) {
	doc, ok := documents.Get(h)
	if !ok {
		return nil, errInvalidHandle
	}
	return doc, nil
}

func decodeFlags(flags uint32) render.MarkdownOptions {
	return render.MarkdownOptions{
		Frontmatter:      flags&flagFrontmatter != 0,
		EscapeSpecial:    flags&flagEscapeSpecial != 0,
		ParagraphSpacing: flags&flagParagraphSpacing != 0,
	}
}

func toMarkdown(h handles.Handle, flags uint32) (string, error) {
	doc, err := document(h)
	if err != nil {
		return "", err
	}
	return render.Markdown(doc, decodeFlags(flags))
}

func toText(h handles.Handle) (string, error) {
	doc, err := document(h)
	if err != nil {
		return "", err
	}
	return render.Text(doc)
}

func toJSON(h handles.Handle, format int32) (string, error) {
	doc, err := document(h)
	if err != nil {
		return "", err
	}
	f := render.Pretty
	if format == jsonCompact {
		f = render.Compact
	}
	return render.JSON(doc, f)
}

func sectionCount(h handles.Handle) (int32, error) {
	doc, err := document(h)
	if err != nil {
		return -1, err
	}
	return int32(doc.SectionCount()), nil
}

func resourceCount(h handles.Handle) (int32, error) {
	doc, err := document(h)
	if err != nil {
		return -1, err
	}
	return int32(doc.ResourceCount()), nil
}

// getTitle returns the document title, or nil when the field is absent.
// Absence is not an error.
func getTitle(h handles.Handle) (*string, error) {
	doc, err := document(h)
	if err != nil {
		return nil, err
	}
	return doc.Metadata.Title, nil
}

func getAuthor(h handles.Handle) (*string, error) {
	doc, err := document(h)
	if err != nil {
		return nil, err
	}
	return doc.Metadata.Author, nil
}

func getInfo(h handles.Handle) (string, error) {
	doc, err := document(h)
	if err != nil {
		return "", err
	}
	return render.InfoJSON(doc)
}

func getResourceIDs(h handles.Handle) (string, error) {
	doc, err := document(h)
	if err != nil {
		return "", err
	}
	return render.ResourceIDsJSON(doc)
}

func getResourceInfo(h handles.Handle, id string) (string, error) {
	doc, err := document(h)
	if err != nil {
		return "", err
	}
	res, err := doc.ResourceInfo(id)
	if err != nil {
		return "", err
	}
	return render.ResourceJSON(res)
}

// getResourceData returns the resource bytes. The export shim copies
// them into a malloc allocation, so repeated calls never alias.
func getResourceData(h handles.Handle, id string) ([]byte, error) {
	doc, err := document(h)
	if err != nil {
		return nil, err
	}
	return doc.ResourceData(id)
}

// isPDF reports whether path parses fully as a PDF. The transient
// document never gets a handle, so nothing leaks.
func isPDF(path string) bool {
	return unpdf.IsPDF(path)
}

// getPageCount parses path and returns its page count, or -1 with the
// error that failed the parse.
func getPageCount(path string) (int32, error) {
	n, err := unpdf.PageCount(path)
	if err != nil {
		return -1, err
	}
	return int32(n), nil
}

// main is required by -buildmode=c-shared; it never runs. It lives in
// the cgo-free half so the package also compiles with CGO_ENABLED=0.
func main() {}
