package layout

import "strings"

// defaultLineSpacing stands in for the average when a page has too few
// lines to measure one.
const defaultLineSpacing = 12.0

// BlockType distinguishes heading blocks from body paragraphs.
type BlockType int

const (
	BlockParagraph BlockType = iota
	BlockHeading
)

// Block is a paragraph-sized group of consecutive lines.
type Block struct {
	Lines        []Line
	Type         BlockType
	HeadingLevel int // set for heading blocks, smallest level wins
}

// Text joins the block's lines with single spaces.
func (b *Block) Text() string {
	parts := make([]string, len(b.Lines))
	for i := range b.Lines {
		parts[i] = b.Lines[i].Text()
	}
	return strings.Join(parts, " ")
}

// X returns the left edge of the block's first line.
func (b *Block) X() float64 {
	if len(b.Lines) == 0 {
		return 0
	}
	return b.Lines[0].X
}

// Y returns the baseline of the block's first line.
func (b *Block) Y() float64 {
	if len(b.Lines) == 0 {
		return 0
	}
	return b.Lines[0].Y
}

// GroupIntoBlocks splits a page's lines into paragraphs. A block ends at
// a heading boundary, a vertical gap well above the page average, a font
// size jump, or an indentation shift.
func GroupIntoBlocks(lines []Line) []Block {
	if len(lines) == 0 {
		return nil
	}

	avgSpacing := averageLineSpacing(lines)

	var blocks []Block
	var current []Line

	for i, line := range lines {
		if i > 0 && shouldBreakBlock(&current[len(current)-1], &line, avgSpacing) {
			blocks = append(blocks, newBlock(current))
			current = nil
		}
		current = append(current, line)
	}
	blocks = append(blocks, newBlock(current))
	return blocks
}

// newBlock classifies the gathered lines: any heading line makes the
// whole block a heading, at the smallest (most prominent) level present.
func newBlock(lines []Line) Block {
	block := Block{Lines: lines, Type: BlockParagraph}
	for i := range lines {
		if !lines[i].Heading {
			continue
		}
		block.Type = BlockHeading
		if block.HeadingLevel == 0 || lines[i].HeadingLevel < block.HeadingLevel {
			block.HeadingLevel = lines[i].HeadingLevel
		}
	}
	return block
}

// averageLineSpacing is the mean absolute Y step between consecutive
// lines, ignoring near-zero steps from same-baseline artifacts.
func averageLineSpacing(lines []Line) float64 {
	if len(lines) < 2 {
		return defaultLineSpacing
	}

	sum, count := 0.0, 0
	for i := 1; i < len(lines); i++ {
		spacing := lines[i-1].Y - lines[i].Y
		if spacing < 0 {
			spacing = -spacing
		}
		if spacing > 0.1 {
			sum += spacing
			count++
		}
	}
	if count == 0 {
		return defaultLineSpacing
	}
	return sum / float64(count)
}

func shouldBreakBlock(prev, curr *Line, avgSpacing float64) bool {
	// Headings stand alone on both sides.
	if curr.Heading || prev.Heading {
		return true
	}

	// So do list items, or list grouping could never see them.
	if _, ok := ParseListMarker(curr.Text()); ok {
		return true
	}
	if _, ok := ParseListMarker(prev.Text()); ok {
		return true
	}

	spacing := prev.Y - curr.Y
	if spacing < 0 {
		spacing = -spacing
	}
	if spacing > avgSpacing*1.5 {
		return true
	}

	diff := prev.FontSize - curr.FontSize
	if diff < 0 {
		diff = -diff
	}
	if diff > 1.0 {
		return true
	}

	indent := prev.X - curr.X
	if indent < 0 {
		indent = -indent
	}
	return indent > 20.0
}
