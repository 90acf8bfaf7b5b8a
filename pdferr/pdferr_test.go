package pdferr

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"
)

func TestMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"unknown format", UnknownFormat(), "Unknown file format: not a valid PDF"},
		{"unsupported version", UnsupportedVersion("x.y"), "Unsupported PDF version: x.y"},
		{"encrypted", Encrypted(), "Document is encrypted"},
		{"invalid password", InvalidPassword(), "Invalid password"},
		{"parse", Parse(nil, "bad token at %d", 42), "PDF parsing error: bad token at 42"},
		{"corrupted", Corrupted(nil, "xref offset %d out of bounds", 9), "Corrupted PDF structure: xref offset 9 out of bounds"},
		{"missing object", MissingObject("/Root"), "Missing required object: /Root"},
		{"page range", PageOutOfRange(12, 3), "Page 12 is out of range (document has 3 pages)"},
		{"not found", NotFound("page1_Im0"), "Resource not found: page1_Im0"},
		{"encoding", Encoding("invalid UTF-16 pair"), "Encoding error: invalid UTF-16 pair"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	err := fmt.Errorf("loading document: %w", Encrypted())
	if got := KindOf(err); got != KindEncrypted {
		t.Errorf("KindOf(wrapped) = %v, want KindEncrypted", got)
	}
	if KindOf(errors.New("plain")) != 0 {
		t.Error("KindOf(plain error) should be 0")
	}
	if !Is(err, KindEncrypted) {
		t.Error("Is(wrapped, KindEncrypted) should be true")
	}
	if Is(err, KindParse) {
		t.Error("Is(wrapped, KindParse) should be false")
	}
}

func TestIOKeepsCause(t *testing.T) {
	cause := fs.ErrNotExist
	err := IO(fmt.Errorf("open /tmp/missing.pdf: %w", cause))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Error("errors.Is(IO(...), fs.ErrNotExist) should be true")
	}
	if got := KindOf(err); got != KindIO {
		t.Errorf("KindOf = %v, want KindIO", got)
	}
	want := "I/O error: open /tmp/missing.pdf: file does not exist"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
