// Package pdferr defines the error taxonomy shared by the parser, the
// renderers and the C ABI layer. Every failure that can cross the library
// boundary is classified by a Kind and carries a stable, human-readable
// message; underlying causes stay reachable through errors.Unwrap.
package pdferr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure. The zero value means "not one of ours".
type Kind int

const (
	// KindIO covers unreadable paths and short reads on the byte source.
	KindIO Kind = iota + 1
	// KindUnknownFormat means the source does not start with a PDF signature.
	KindUnknownFormat
	// KindUnsupportedVersion means the header version token is malformed.
	KindUnsupportedVersion
	// KindParse covers structural failures while reading objects.
	KindParse
	// KindEncrypted means the trailer references an /Encrypt dictionary.
	KindEncrypted
	// KindInvalidPassword is reserved for password-protected documents.
	KindInvalidPassword
	// KindCorrupted means the xref machinery or an object is damaged.
	KindCorrupted
	// KindMissingObject means a required object is absent or unresolvable.
	KindMissingObject
	// KindFontDecode covers font and CMap decoding failures.
	KindFontDecode
	// KindImageExtract covers image XObject extraction failures.
	KindImageExtract
	// KindRender covers renderer-internal failures.
	KindRender
	// KindTextExtract covers content-stream text extraction failures.
	KindTextExtract
	// KindPageRange means a page selection points outside the document.
	KindPageRange
	// KindNotFound means a resource id has no entry in the document.
	KindNotFound
	// KindEncoding covers character decoding failures.
	KindEncoding
)

// Error is the concrete error type for every classified failure.
type Error struct {
	kind Kind
	msg  string
	err  error
}

func (e *Error) Error() string { return e.msg }

// Unwrap exposes the cause so errors.Is/errors.As keep working through us.
func (e *Error) Unwrap() error { return e.err }

// Kind reports the classification of e.
func (e *Error) Kind() Kind { return e.kind }

// KindOf walks err's chain and returns the Kind of the first classified
// error, or 0 when the chain contains none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return 0
}

// Is reports whether err's chain contains a classified error of kind k.
func Is(err error, k Kind) bool { return KindOf(err) == k }

func newf(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...), err: cause}
}

// IO wraps a byte-source failure. The cause stays unwrappable so callers
// can still test for fs.ErrNotExist and friends.
func IO(cause error) error {
	return newf(KindIO, cause, "I/O error: %v", cause)
}

// UnknownFormat reports a source without a PDF signature.
func UnknownFormat() error {
	return newf(KindUnknownFormat, nil, "Unknown file format: not a valid PDF")
}

// UnsupportedVersion reports a header whose version token is not digit.digit.
func UnsupportedVersion(version string) error {
	return newf(KindUnsupportedVersion, nil, "Unsupported PDF version: %s", version)
}

// Parse reports a structural failure, wrapping cause when non-nil.
func Parse(cause error, format string, args ...any) error {
	detail := fmt.Sprintf(format, args...)
	return newf(KindParse, cause, "PDF parsing error: %s", detail)
}

// Encrypted reports a document protected by an /Encrypt dictionary.
func Encrypted() error {
	return newf(KindEncrypted, nil, "Document is encrypted")
}

// InvalidPassword reports a rejected password.
func InvalidPassword() error {
	return newf(KindInvalidPassword, nil, "Invalid password")
}

// Corrupted reports damage in the cross-reference machinery or an object.
func Corrupted(cause error, format string, args ...any) error {
	detail := fmt.Sprintf(format, args...)
	return newf(KindCorrupted, cause, "Corrupted PDF structure: %s", detail)
}

// MissingObject reports an absent or unresolvable required object.
func MissingObject(what string) error {
	return newf(KindMissingObject, nil, "Missing required object: %s", what)
}

// FontDecode wraps a font or CMap decoding failure.
func FontDecode(cause error, detail string) error {
	return newf(KindFontDecode, cause, "Font decoding error: %s", detail)
}

// ImageExtract wraps an image extraction failure.
func ImageExtract(cause error, detail string) error {
	return newf(KindImageExtract, cause, "Image extraction error: %s", detail)
}

// Render wraps a renderer-internal failure.
func Render(cause error) error {
	return newf(KindRender, cause, "Rendering error: %v", cause)
}

// TextExtract wraps a content-stream extraction failure.
func TextExtract(cause error, detail string) error {
	return newf(KindTextExtract, cause, "Text extraction error: %s", detail)
}

// PageOutOfRange reports a 1-based page outside the document.
func PageOutOfRange(page, total int) error {
	return newf(KindPageRange, nil, "Page %d is out of range (document has %d pages)", page, total)
}

// NotFound reports an unknown resource id.
func NotFound(id string) error {
	return newf(KindNotFound, nil, "Resource not found: %s", id)
}

// Encoding reports a character decoding failure.
func Encoding(detail string) error {
	return newf(KindEncoding, nil, "Encoding error: %s", detail)
}
