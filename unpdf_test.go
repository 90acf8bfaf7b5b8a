package unpdf

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/unpdf/unpdf/pdferr"
	"github.com/unpdf/unpdf/render"
)

// buildPDF assembles a single-revision PDF with a classic xref table.
// Object numbers follow position, starting at 1.
func buildPDF(trailerExtra string, bodies ...string) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n")

	offsets := make([]int, len(bodies))
	for i, body := range bodies {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}

	xrefPos := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(bodies)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R%s >>\n", len(bodies)+1, trailerExtra)
	fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF\n", xrefPos)
	return buf.Bytes()
}

func streamObj(data string) string {
	return fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(data), data)
}

// twoPagePDF holds "Hello, world!" on page one and "Second page." on
// page two, both in Helvetica, with an /Info dictionary.
func twoPagePDF() []byte {
	page := "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] " +
		"/Resources << /Font << /F1 7 0 R >> >> /Contents %d 0 R >>"
	return buildPDF(" /Info 8 0 R",
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R 4 0 R] /Count 2 >>",
		fmt.Sprintf(page, 5),
		fmt.Sprintf(page, 6),
		streamObj("BT /F1 12 Tf 72 720 Td (Hello, world!) Tj ET"),
		streamObj("BT /F1 12 Tf 72 720 Td (Second page.) Tj ET"),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
		"<< /Title (Fixture Document) /Author (unpdf) >>",
	)
}

func writeTempFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

func TestParse(t *testing.T) {
	doc, err := Parse(twoPagePDF())
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if got := doc.SectionCount(); got != 2 {
		t.Fatalf("SectionCount() = %d, want 2", got)
	}
	text, err := render.Text(doc)
	if err != nil {
		t.Fatalf("render.Text() error = %v", err)
	}
	for _, want := range []string{"Hello, world!", "Second page."} {
		if !bytes.Contains([]byte(text), []byte(want)) {
			t.Errorf("extracted text missing %q:\n%s", want, text)
		}
	}

	if doc.Metadata.Title == nil || *doc.Metadata.Title != "Fixture Document" {
		t.Errorf("Title = %v, want Fixture Document", doc.Metadata.Title)
	}
	if doc.Metadata.Subject != nil {
		t.Errorf("Subject should be absent, got %q", *doc.Metadata.Subject)
	}
	if doc.Metadata.PDFVersion != "1.7" {
		t.Errorf("PDFVersion = %q, want 1.7", doc.Metadata.PDFVersion)
	}
	if doc.Metadata.PageCount != 2 {
		t.Errorf("PageCount = %d, want 2", doc.Metadata.PageCount)
	}
}

func TestParseEmptyBuffer(t *testing.T) {
	_, err := Parse(nil)
	if got := pdferr.KindOf(err); got != pdferr.KindUnknownFormat {
		t.Errorf("Parse(nil) kind = %v, want KindUnknownFormat", got)
	}
}

// TestParseFailureMessages checks the two failure cases every binding
// distinguishes: a missing file and a file that is not a PDF.
func TestParseFailureMessages(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.pdf")
	_, missingErr := ParseFile(missing)
	if missingErr == nil {
		t.Fatal("ParseFile on a missing path succeeded")
	}
	if got := pdferr.KindOf(missingErr); got != pdferr.KindIO {
		t.Errorf("missing-file kind = %v, want KindIO", got)
	}

	notPDF := writeTempFile(t, "note.txt", []byte("This is not a PDF"))
	_, formatErr := ParseFile(notPDF)
	if formatErr == nil {
		t.Fatal("ParseFile on a text file succeeded")
	}
	if got := pdferr.KindOf(formatErr); got != pdferr.KindUnknownFormat {
		t.Errorf("non-PDF kind = %v, want KindUnknownFormat", got)
	}

	if missingErr.Error() == formatErr.Error() {
		t.Errorf("the two failures must read differently, both say %q", missingErr)
	}
}

func TestIsPDF(t *testing.T) {
	valid := writeTempFile(t, "ok.pdf", twoPagePDF())
	if !IsPDF(valid) {
		t.Errorf("IsPDF(%q) = false for a valid document", valid)
	}
	if IsPDF(filepath.Join(t.TempDir(), "absent.pdf")) {
		t.Errorf("IsPDF = true for a missing path")
	}
	notPDF := writeTempFile(t, "note.txt", []byte("This is not a PDF"))
	if IsPDF(notPDF) {
		t.Errorf("IsPDF = true for a text file")
	}
}

func TestPageCount(t *testing.T) {
	path := writeTempFile(t, "two.pdf", twoPagePDF())
	n, err := PageCount(path)
	if err != nil {
		t.Fatalf("PageCount() error = %v", err)
	}
	if n != 2 {
		t.Errorf("PageCount() = %d, want 2", n)
	}
}

func TestWithPages(t *testing.T) {
	doc, err := Parse(twoPagePDF(), WithPages(2))
	if err != nil {
		t.Fatalf("Parse(WithPages(2)) error = %v", err)
	}
	if got := doc.SectionCount(); got != 1 {
		t.Fatalf("SectionCount() = %d, want 1", got)
	}
	// The selected page is renumbered to index 0.
	if got := doc.Sections[0].Index; got != 0 {
		t.Errorf("section index = %d, want 0", got)
	}
	text, err := render.Text(doc)
	if err != nil {
		t.Fatalf("render.Text() error = %v", err)
	}
	if !bytes.Contains([]byte(text), []byte("Second page.")) {
		t.Errorf("selected page text missing, got %q", text)
	}
	if bytes.Contains([]byte(text), []byte("Hello")) {
		t.Errorf("unselected page leaked into %q", text)
	}

	_, err = Parse(twoPagePDF(), WithPages(3))
	if got := pdferr.KindOf(err); got != pdferr.KindPageRange {
		t.Errorf("out-of-range kind = %v, want KindPageRange (err: %v)", got, err)
	}
}

func TestEncryptedDocument(t *testing.T) {
	data := buildPDF(" /Encrypt 3 0 R",
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [] /Count 0 >>",
		"<< /Filter /Standard >>",
	)
	_, err := Parse(data)
	if got := pdferr.KindOf(err); got != pdferr.KindEncrypted {
		t.Fatalf("kind = %v, want KindEncrypted (err: %v)", got, err)
	}
	if err.Error() != "Document is encrypted" {
		t.Errorf("error = %q, want %q", err, "Document is encrypted")
	}

	// A password does not help: decryption is unsupported.
	_, err = Parse(data, WithPassword("secret"))
	if got := pdferr.KindOf(err); got != pdferr.KindEncrypted {
		t.Errorf("with password: kind = %v, want KindEncrypted", got)
	}
}

func TestVersion(t *testing.T) {
	semver := regexp.MustCompile(`^\d+\.\d+\.\d+$`)
	if !semver.MatchString(Version) {
		t.Errorf("Version = %q, not semver-like", Version)
	}
}

func TestTextOnlySkipsResources(t *testing.T) {
	doc, err := Parse(twoPagePDF(), WithTextOnly())
	if err != nil {
		t.Fatalf("Parse(WithTextOnly) error = %v", err)
	}
	if got := doc.ResourceCount(); got != 0 {
		t.Errorf("ResourceCount() = %d, want 0", got)
	}
	text, err := render.Text(doc)
	if err != nil {
		t.Fatalf("render.Text() error = %v", err)
	}
	if !bytes.Contains([]byte(text), []byte("Hello, world!")) {
		t.Errorf("text extraction suffered under WithTextOnly: %q", text)
	}
}
