package render

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/unpdf/unpdf/model"
	"github.com/unpdf/unpdf/pdferr"
)

// Markdown renders the document as Markdown. Section content follows in
// section order; headings become #-prefixed lines, list items get their
// markers back, tables render as pipe tables (HTML when they have merged
// cells), and image placements become image links addressed by resource
// id. The result is trimmed of surrounding whitespace.
func Markdown(doc *model.Document, opts MarkdownOptions) (string, error) {
	var sb strings.Builder
	if opts.Frontmatter {
		sb.WriteString(Frontmatter(&doc.Metadata))
	}

	r := mdRenderer{opts: opts, out: &sb}
	for i := range doc.Sections {
		r.section(&doc.Sections[i])
	}

	out := strings.TrimSpace(sb.String())
	if opts.Cleanup != nil {
		out = NewCleanup(*opts.Cleanup).Process(out)
	}
	if !utf8.ValidString(out) {
		return "", pdferr.Encoding("markdown output is not valid UTF-8")
	}
	return out, nil
}

// WriteMarkdown renders the document as Markdown to w.
func WriteMarkdown(w io.Writer, doc *model.Document, opts MarkdownOptions) error {
	s, err := Markdown(doc, opts)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, s); err != nil {
		return pdferr.Render(err)
	}
	return nil
}

// Frontmatter builds the YAML metadata block: the optional descriptive
// fields that are present, the timestamps in RFC 3339, and always the
// PDF version and page count. The block ends with a blank line so content
// can follow directly.
func Frontmatter(meta *model.Metadata) string {
	lines := []string{"---"}

	// %q escapes backslashes, quotes and control characters in a form a
	// YAML double-quoted scalar also accepts.
	add := func(key string, val *string) {
		if val != nil {
			lines = append(lines, fmt.Sprintf("%s: %q", key, *val))
		}
	}
	add("title", meta.Title)
	add("author", meta.Author)
	add("subject", meta.Subject)
	add("keywords", meta.Keywords)
	add("creator", meta.Creator)
	add("producer", meta.Producer)

	if meta.Created != nil {
		lines = append(lines, "created: "+meta.Created.Format("2006-01-02T15:04:05Z07:00"))
	}
	if meta.Modified != nil {
		lines = append(lines, "modified: "+meta.Modified.Format("2006-01-02T15:04:05Z07:00"))
	}

	lines = append(lines,
		fmt.Sprintf("pdf_version: %q", meta.PDFVersion),
		fmt.Sprintf("pages: %d", meta.PageCount),
		"---",
		"")
	return strings.Join(lines, "\n")
}

type mdRenderer struct {
	opts MarkdownOptions
	out  *strings.Builder
}

func (r *mdRenderer) section(s *model.Section) {
	for i, block := range s.Blocks {
		switch b := block.(type) {
		case *model.Paragraph:
			r.paragraph(b, nextIsListItem(s.Blocks, i))
		case *model.Table:
			r.table(b)
		case *model.ImageRef:
			r.out.WriteString("![](")
			r.out.WriteString(b.ResourceID)
			r.out.WriteString(")\n\n")
		}
	}
}

// nextIsListItem reports whether the block after i continues a list, so
// the closing blank line of a list block lands after its last item.
func nextIsListItem(blocks []model.Block, i int) bool {
	if i+1 >= len(blocks) {
		return false
	}
	p, ok := blocks[i+1].(*model.Paragraph)
	return ok && p.List != nil
}

func (r *mdRenderer) paragraph(p *model.Paragraph, moreListItems bool) {
	text := r.runs(p.Runs)
	if strings.TrimSpace(text) == "" {
		return
	}

	switch {
	case p.Heading > 0:
		level := p.Heading
		if level > 6 {
			level = 6
		}
		r.out.WriteString(strings.Repeat("#", level))
		r.out.WriteByte(' ')
		r.out.WriteString(text)
		r.out.WriteString("\n\n")
	case p.List != nil:
		r.out.WriteString(strings.Repeat("  ", p.List.Level))
		if p.List.Ordered {
			n := p.List.Number
			if n < 1 {
				n = 1
			}
			fmt.Fprintf(r.out, "%d. ", n)
		} else {
			r.out.WriteString("- ")
		}
		r.out.WriteString(text)
		r.out.WriteByte('\n')
		if !moreListItems {
			r.out.WriteByte('\n')
		}
	default:
		r.out.WriteString(text)
		if r.opts.ParagraphSpacing {
			r.out.WriteString("\n\n")
		} else {
			r.out.WriteByte('\n')
		}
	}
}

// runs renders styled runs: escaping first when requested, then italic
// inside bold, so a bold-italic run comes out as ***text***. Whitespace
// runs pass through unstyled to keep the emphasis markers valid.
func (r *mdRenderer) runs(runs []model.Run) string {
	var sb strings.Builder
	for _, run := range runs {
		text := run.Text
		if r.opts.EscapeSpecial {
			text = EscapeMarkdown(text)
		}
		if strings.TrimSpace(run.Text) == "" {
			sb.WriteString(text)
			continue
		}
		if run.Italic {
			text = "*" + text + "*"
		}
		if run.Bold {
			text = "**" + text + "**"
		}
		sb.WriteString(text)
	}
	return sb.String()
}

func (r *mdRenderer) table(t *model.Table) {
	if len(t.Cells) == 0 {
		return
	}
	if t.HasMergedCells() {
		r.tableHTML(t)
		return
	}
	r.tablePipe(t)
}

func (r *mdRenderer) tablePipe(t *model.Table) {
	for i, row := range t.Cells {
		r.out.WriteByte('|')
		for _, cell := range row {
			content := strings.TrimSpace(strings.ReplaceAll(cell.Text, "\n", " "))
			r.out.WriteByte(' ')
			r.out.WriteString(content)
			r.out.WriteString(" |")
		}
		r.out.WriteByte('\n')

		if i == 0 || (t.HeaderRows > 0 && i == t.HeaderRows-1) {
			r.out.WriteByte('|')
			for _, cell := range row {
				switch cell.Alignment {
				case model.AlignCenter:
					r.out.WriteString(" :---: |")
				case model.AlignRight:
					r.out.WriteString(" ---: |")
				default:
					r.out.WriteString(" --- |")
				}
			}
			r.out.WriteByte('\n')
		}
	}
	r.out.WriteByte('\n')
}

// tableHTML is the fallback for tables pipe syntax cannot express:
// rowspan and colspan survive as attributes, cell text is HTML-escaped.
func (r *mdRenderer) tableHTML(t *model.Table) {
	r.out.WriteString("<table>\n")

	if t.HeaderRows > 0 {
		r.out.WriteString("<thead>\n")
		for _, row := range t.Cells[:t.HeaderRows] {
			r.htmlRow(row, "th")
		}
		r.out.WriteString("</thead>\n")
	}

	r.out.WriteString("<tbody>\n")
	for _, row := range t.Cells[t.HeaderRows:] {
		r.htmlRow(row, "td")
	}
	r.out.WriteString("</tbody>\n</table>\n\n")
}

func (r *mdRenderer) htmlRow(row []model.TableCell, tag string) {
	r.out.WriteString("<tr>")
	for _, cell := range row {
		r.out.WriteByte('<')
		r.out.WriteString(tag)
		if cell.RowSpan > 1 {
			fmt.Fprintf(r.out, " rowspan=\"%d\"", cell.RowSpan)
		}
		if cell.ColSpan > 1 {
			fmt.Fprintf(r.out, " colspan=\"%d\"", cell.ColSpan)
		}
		r.out.WriteByte('>')
		r.out.WriteString(html.EscapeString(cell.Text))
		r.out.WriteString("</")
		r.out.WriteString(tag)
		r.out.WriteByte('>')
	}
	r.out.WriteString("</tr>\n")
}

// mdSpecial is the escape set: characters that read as Markdown syntax
// anywhere in a line. Characters only special at line start stay
// unescaped to keep extracted text readable.
const mdSpecial = "\\`*_[]|"

// EscapeMarkdown backslash-escapes Markdown control characters in text.
func EscapeMarkdown(text string) string {
	if !strings.ContainsAny(text, mdSpecial) {
		return text
	}
	var sb strings.Builder
	sb.Grow(len(text) + 8)
	for _, c := range text {
		if c < utf8.RuneSelf && strings.ContainsRune(mdSpecial, c) {
			sb.WriteByte('\\')
		}
		sb.WriteRune(c)
	}
	return sb.String()
}
