package layout

import (
	"math"
	"sort"
	"strings"

	"github.com/unpdf/unpdf/model"
	"github.com/unpdf/unpdf/text"
)

// Analyzer turns a page's raw text spans into document-model blocks. Font
// statistics accumulate across pages, so heading detection sharpens as
// more of the document is seen.
type Analyzer struct {
	stats  FontStatistics
	tables *TableDetector
}

// NewAnalyzer returns an analyzer with default table detection.
func NewAnalyzer() *Analyzer {
	return &Analyzer{tables: NewTableDetector()}
}

// NewAnalyzerWithTableConfig returns an analyzer with custom table
// detection thresholds.
func NewAnalyzerWithTableConfig(config TableConfig) *Analyzer {
	return &Analyzer{tables: NewTableDetectorWithConfig(config)}
}

// Stats exposes the accumulated font statistics.
func (a *Analyzer) Stats() *FontStatistics {
	return &a.stats
}

// AnalyzePage runs the full layout pipeline on one page's spans: table
// regions come out first, the remaining spans group into lines and
// paragraph blocks with headings and list items marked, and everything
// returns interleaved in reading order.
func (a *Analyzer) AnalyzePage(spans []text.Span) []model.Block {
	if len(spans) == 0 {
		return nil
	}

	for i := range spans {
		a.stats.AddSize(spans[i].FontSize)
	}
	a.stats.Analyze()

	detected, rest := a.tables.Detect(spans)

	lines := GroupIntoLines(rest)
	a.detectHeadings(lines)
	blocks := GroupIntoBlocks(lines)

	type placed struct {
		y, x  float64
		para  *model.Paragraph
		table *model.Table
	}
	ordered := make([]placed, 0, len(blocks)+len(detected))
	for i := range blocks {
		ordered = append(ordered, placed{
			y:    blocks[i].Y(),
			x:    blocks[i].X(),
			para: blockToParagraph(&blocks[i]),
		})
	}
	for i := range detected {
		ordered = append(ordered, placed{
			y:     detected[i].TopY,
			table: a.tables.ToModel(&detected[i]),
		})
	}
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].y > ordered[j].y })

	paras := make([]*model.Paragraph, len(ordered))
	xs := make([]float64, len(ordered))
	for i := range ordered {
		paras[i] = ordered[i].para
		xs[i] = ordered[i].x
	}
	markListItems(paras, xs)

	out := make([]model.Block, len(ordered))
	for i := range ordered {
		if ordered[i].table != nil {
			out[i] = ordered[i].table
		} else {
			out[i] = ordered[i].para
		}
	}
	return out
}

// detectHeadings marks lines whose font size stands out as headings.
func (a *Analyzer) detectHeadings(lines []Line) {
	for i := range lines {
		if level := a.stats.HeadingLevel(lines[i].FontSize); level > 0 {
			lines[i].Heading = true
			lines[i].HeadingLevel = level
		}
	}
}

// blockToParagraph flattens a block into styled runs. Lines join with a
// single space; adjacent spans merge into one run while their styling
// matches.
func blockToParagraph(b *Block) *model.Paragraph {
	var runs []model.Run
	for li := range b.Lines {
		line := &b.Lines[li]
		for si := range line.Spans {
			span := &line.Spans[si]
			txt := span.Text
			if si == 0 {
				if li > 0 {
					txt = " " + txt
				}
			} else if spaceBefore(&line.Spans[si-1], span) {
				txt = " " + txt
			}
			appendRun(&runs, txt, span.Bold, span.Italic)
		}
	}

	level := 0
	if b.Type == BlockHeading {
		level = b.HeadingLevel
	}
	return &model.Paragraph{Runs: runs, Heading: level}
}

func appendRun(runs *[]model.Run, txt string, bold, italic bool) {
	if txt == "" {
		return
	}
	if n := len(*runs); n > 0 && (*runs)[n-1].Bold == bold && (*runs)[n-1].Italic == italic {
		(*runs)[n-1].Text += txt
		return
	}
	*runs = append(*runs, model.Run{Text: txt, Bold: bold, Italic: italic})
}

// markListItems finds runs of consecutive non-heading paragraphs that
// open with matching list markers. Runs long enough to be a real list
// get the marker stripped and list info attached, with nesting read
// from indentation. The paras and xs slices run parallel; table slots
// hold nil paragraphs and break list runs like any other interruption.
func markListItems(paras []*model.Paragraph, xs []float64) {
	i := 0
	for i < len(paras) {
		marker, ok := listCandidate(paras[i])
		if !ok {
			i++
			continue
		}

		markers := []ListMarker{marker}
		j := i
		for j+1 < len(paras) {
			next, ok := listCandidate(paras[j+1])
			if !ok || next.Ordered != marker.Ordered {
				break
			}
			markers = append(markers, next)
			j++
		}

		if len(markers) < minListItems {
			i = j + 1
			continue
		}

		base := math.Inf(1)
		for k := i; k <= j; k++ {
			if xs[k] < base {
				base = xs[k]
			}
		}

		for k := i; k <= j; k++ {
			m := markers[k-i]
			p := paras[k]
			if drop := strings.Index(p.PlainText(), m.Rest); drop >= 0 {
				p.Runs = dropRunBytes(p.Runs, drop)
			}
			level := int((xs[k] - base) / listIndentStep)
			if level < 0 {
				level = 0
			}
			p.List = &model.ListInfo{Ordered: m.Ordered, Level: level, Number: m.Number}
		}
		i = j + 1
	}
}

func listCandidate(p *model.Paragraph) (ListMarker, bool) {
	if p == nil || p.Heading != 0 {
		return ListMarker{}, false
	}
	return ParseListMarker(p.PlainText())
}

// dropRunBytes removes the first n bytes of text across the runs,
// dropping runs that empty out entirely.
func dropRunBytes(runs []model.Run, n int) []model.Run {
	var out []model.Run
	for _, run := range runs {
		if n >= len(run.Text) {
			n -= len(run.Text)
			continue
		}
		if n > 0 {
			run.Text = run.Text[n:]
			n = 0
		}
		out = append(out, run)
	}
	return out
}
