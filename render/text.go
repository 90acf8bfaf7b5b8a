package render

import (
	"io"
	"strings"
	"unicode/utf8"

	"github.com/unpdf/unpdf/model"
	"github.com/unpdf/unpdf/pdferr"
)

// Text renders the document as undecorated plain text: every section's
// text in section order, blank lines between paragraph blocks and between
// sections, trimmed. No metadata, no Markdown.
func Text(doc *model.Document) (string, error) {
	parts := make([]string, 0, len(doc.Sections))
	for i := range doc.Sections {
		if t := doc.Sections[i].Text(); t != "" {
			parts = append(parts, t)
		}
	}

	out := strings.TrimSpace(strings.Join(parts, "\n\n"))
	if !utf8.ValidString(out) {
		return "", pdferr.Encoding("text output is not valid UTF-8")
	}
	return out, nil
}

// WriteText renders the document as plain text to w.
func WriteText(w io.Writer, doc *model.Document) error {
	s, err := Text(doc)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, s); err != nil {
		return pdferr.Render(err)
	}
	return nil
}
