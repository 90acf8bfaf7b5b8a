package model

import "strings"

// Section is the extracted content of one page: its geometry, ordered
// blocks, and the ids of resources the page references. Index is 0-based
// and contiguous across the document.
type Section struct {
	Index    int
	Width    float64 // page width in points
	Height   float64 // page height in points
	Rotation int     // /Rotate, degrees clockwise

	Blocks    []Block
	Resources []string // ids into the document resource table
}

// Text returns the section's plain text: each block's text in order,
// separated by blank lines. Blocks without text (images) contribute
// nothing.
func (s *Section) Text() string {
	parts := make([]string, 0, len(s.Blocks))
	for _, block := range s.Blocks {
		if text := block.PlainText(); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n")
}

// BlockKind discriminates the block variants.
type BlockKind int

const (
	BlockParagraph BlockKind = iota + 1
	BlockTable
	BlockImage
)

func (k BlockKind) String() string {
	switch k {
	case BlockParagraph:
		return "paragraph"
	case BlockTable:
		return "table"
	case BlockImage:
		return "image"
	default:
		return "unknown"
	}
}

// Block is one unit of page content in reading order.
type Block interface {
	Kind() BlockKind
	PlainText() string
}

// Paragraph is a run of body text, a heading, or a list item.
type Paragraph struct {
	Runs    []Run
	Heading int       // 0 for body text, 1-6 for headings
	List    *ListInfo // nil unless this paragraph is a list item
}

func (p *Paragraph) Kind() BlockKind { return BlockParagraph }

// PlainText concatenates the runs without styling.
func (p *Paragraph) PlainText() string {
	var sb strings.Builder
	for _, run := range p.Runs {
		sb.WriteString(run.Text)
	}
	return sb.String()
}

// Run is a stretch of paragraph text with uniform styling.
type Run struct {
	Text   string
	Bold   bool
	Italic bool
}

// ListInfo marks a paragraph as a list item.
type ListInfo struct {
	Ordered bool
	Level   int // nesting depth, 0 = top level
	Number  int // 1-based position for ordered lists
}

// Table is rows of cells. Ragged rows are allowed; Columns reports the
// widest row.
type Table struct {
	Cells      [][]TableCell
	HeaderRows int // leading rows that are headers, usually 1
}

func (t *Table) Kind() BlockKind { return BlockTable }

// PlainText renders rows with tab-separated cells, one row per line.
func (t *Table) PlainText() string {
	var sb strings.Builder
	for i, row := range t.Cells {
		if i > 0 {
			sb.WriteByte('\n')
		}
		for j, cell := range row {
			if j > 0 {
				sb.WriteByte('\t')
			}
			sb.WriteString(cell.Text)
		}
	}
	return sb.String()
}

// Columns returns the width of the widest row.
func (t *Table) Columns() int {
	cols := 0
	for _, row := range t.Cells {
		if len(row) > cols {
			cols = len(row)
		}
	}
	return cols
}

// HasMergedCells reports whether any cell spans more than one row or
// column. Markdown pipe tables cannot express spans, so such tables fall
// back to HTML.
func (t *Table) HasMergedCells() bool {
	for _, row := range t.Cells {
		for _, cell := range row {
			if cell.RowSpan > 1 || cell.ColSpan > 1 {
				return true
			}
		}
	}
	return false
}

// TableCell is one cell. Zero spans mean 1.
type TableCell struct {
	Text      string
	Alignment Alignment
	RowSpan   int
	ColSpan   int
}

// Alignment is a cell's horizontal text alignment.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

func (a Alignment) String() string {
	switch a {
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	default:
		return "left"
	}
}

// ImageRef places an extracted image resource in the content flow.
type ImageRef struct {
	ResourceID string
	Width      float64 // placed width in points
	Height     float64 // placed height in points
}

func (i *ImageRef) Kind() BlockKind { return BlockImage }

// PlainText returns the empty string; images carry no text.
func (i *ImageRef) PlainText() string { return "" }
