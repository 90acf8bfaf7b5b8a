package layout

import (
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/unpdf/unpdf/text"
)

// Line is a group of spans sharing a baseline, ordered left to right.
type Line struct {
	Spans    []text.Span
	X        float64
	Y        float64
	FontSize float64

	Heading      bool
	HeadingLevel int
}

// LineFromSpans assembles a line: spans sorted by X, the dominant font
// size weighted by text length, position from the leftmost span.
func LineFromSpans(spans []text.Span) Line {
	if len(spans) == 0 {
		return Line{}
	}

	sort.SliceStable(spans, func(i, j int) bool { return spans[i].X < spans[j].X })

	totalChars := 0
	weightedSize := 0.0
	for _, s := range spans {
		totalChars += len(s.Text)
		weightedSize += s.FontSize * float64(len(s.Text))
	}
	fontSize := spans[0].FontSize
	if totalChars > 0 {
		fontSize = weightedSize / float64(totalChars)
	}

	return Line{
		Spans:    spans,
		X:        spans[0].X,
		Y:        spans[0].Y,
		FontSize: fontSize,
	}
}

// spaceBefore decides whether a word boundary fell between two adjacent
// spans: the X gap must exceed a fifth of the average glyph width, the
// neighbors must not both be ideographic, and neither side may already
// carry a space.
func spaceBefore(prev, curr *text.Span) bool {
	gap := curr.X - (prev.X + prev.Width)

	// Without measured widths, half the font size stands in for the
	// average glyph width.
	avgCharWidth := curr.FontSize * 0.5
	if charCount := utf8.RuneCountInString(curr.Text); charCount > 0 && curr.Width > 0 {
		avgCharWidth = curr.Width / float64(charCount)
	}
	if gap <= avgCharWidth*0.2 {
		return false
	}

	prevLast, _ := utf8.DecodeLastRuneInString(prev.Text)
	currFirst, _ := utf8.DecodeRuneInString(curr.Text)
	if text.IsSpacelessScript(prevLast) && text.IsSpacelessScript(currFirst) {
		return false
	}

	if strings.HasSuffix(prev.Text, " ") || strings.HasSuffix(prev.Text, " ") {
		return false
	}
	if strings.HasPrefix(curr.Text, " ") || strings.HasPrefix(curr.Text, " ") {
		return false
	}
	return true
}

// Text joins the spans, inserting spaces at detected word boundaries.
func (l *Line) Text() string {
	if len(l.Spans) == 0 {
		return ""
	}
	if len(l.Spans) == 1 {
		return l.Spans[0].Text
	}

	var b strings.Builder
	for i := range l.Spans {
		if i > 0 && spaceBefore(&l.Spans[i-1], &l.Spans[i]) {
			b.WriteByte(' ')
		}
		b.WriteString(l.Spans[i].Text)
	}
	return b.String()
}

// Bold reports whether more than half the line's text is bold.
func (l *Line) Bold() bool {
	boldChars, totalChars := 0, 0
	for _, s := range l.Spans {
		totalChars += len(s.Text)
		if s.Bold {
			boldChars += len(s.Text)
		}
	}
	return totalChars > 0 && float64(boldChars)/float64(totalChars) > 0.5
}

// Uppercase reports whether every letter in the line is uppercase.
func (l *Line) Uppercase() bool {
	letters := 0
	for _, r := range l.Text() {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return letters > 0
}

// GroupIntoLines clusters spans into baselines. Multi-column pages are
// grouped per column and the lines interleaved top to bottom so reading
// order survives.
func GroupIntoLines(spans []text.Span) []Line {
	if len(spans) == 0 {
		return nil
	}

	columns := DetectColumns(spans)
	if len(columns) <= 1 {
		return groupLinesSingleColumn(spans)
	}

	columnSpans := make([][]text.Span, len(columns))
	for _, span := range spans {
		idx := 0
		for _, col := range columns {
			if col.ContainsSpan(&span) {
				idx = col.Index
				break
			}
		}
		columnSpans[idx] = append(columnSpans[idx], span)
	}

	type placed struct {
		column int
		line   Line
	}
	var all []placed
	for idx, cs := range columnSpans {
		for _, line := range groupLinesSingleColumn(cs) {
			all = append(all, placed{column: idx, line: line})
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].line.Y != all[j].line.Y {
			return all[i].line.Y > all[j].line.Y
		}
		return all[i].column < all[j].column
	})

	lines := make([]Line, len(all))
	for i, p := range all {
		lines[i] = p.line
	}
	return lines
}

// groupLinesSingleColumn clusters by Y alone: a span within 30% of its
// font size from the group's baseline joins it.
func groupLinesSingleColumn(spans []text.Span) []Line {
	if len(spans) == 0 {
		return nil
	}

	sorted := make([]text.Span, len(spans))
	copy(sorted, spans)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var lines []Line
	var current []text.Span
	currentY := 0.0

	for _, span := range sorted {
		tolerance := span.FontSize * 0.3
		if len(current) == 0 {
			current = append(current, span)
			currentY = span.Y
			continue
		}
		if math.Abs(span.Y-currentY) <= tolerance {
			current = append(current, span)
			continue
		}
		lines = append(lines, LineFromSpans(current))
		current = []text.Span{span}
		currentY = span.Y
	}
	if len(current) > 0 {
		lines = append(lines, LineFromSpans(current))
	}
	return lines
}
