package layout

import (
	"math"

	"github.com/unpdf/unpdf/text"
)

// Column detection constants, in points. A gutter must clear minGutterWidth
// and sit between columns at least minColumnWidth wide; narrower pages are
// never split.
const (
	columnSliceWidth    = 3.0
	minPageWidthToSplit = 250.0
	minGapWidth         = 10.0
	minGutterWidth      = 12.0
	minColumnWidth      = 80.0
	columnMargin        = 10.0
)

// Column is a detected vertical band of the page, leftmost first.
type Column struct {
	Left  float64
	Right float64
	Index int
}

// Contains reports whether an X coordinate falls inside the column.
func (c Column) Contains(x float64) bool {
	return x >= c.Left && x <= c.Right
}

// ContainsSpan reports whether a span belongs to this column, by its left
// edge or its center.
func (c Column) ContainsSpan(s *text.Span) bool {
	center := s.X + s.Width/2
	return c.Contains(s.X) || c.Contains(center)
}

// DetectColumns looks for a vertical gutter of empty space splitting the
// spans into two columns. The page is cut into thin slices; the widest
// central run of unoccupied slices becomes the gutter if both sides hold
// enough text. At most two columns come back; everything else is one.
func DetectColumns(spans []text.Span) []Column {
	if len(spans) == 0 {
		return nil
	}

	minX := math.Inf(1)
	maxX := math.Inf(-1)
	for i := range spans {
		if spans[i].X < minX {
			minX = spans[i].X
		}
		if right := spans[i].X + spans[i].Width; right > maxX {
			maxX = right
		}
	}

	pageWidth := maxX - minX
	single := []Column{{Left: minX - columnMargin, Right: maxX + columnMargin, Index: 0}}
	if pageWidth < minPageWidthToSplit {
		return single
	}

	numSlices := int(pageWidth/columnSliceWidth) + 1
	occupancy := make([]int, numSlices)
	for i := range spans {
		start := int((spans[i].X - minX) / columnSliceWidth)
		end := int((spans[i].X + spans[i].Width - minX) / columnSliceWidth)
		if end > numSlices-1 {
			end = numSlices - 1
		}
		for slot := start; slot <= end; slot++ {
			occupancy[slot]++
		}
	}

	// Search the middle 70% of the page for the best run of empty slices:
	// wider wins, with proximity to center breaking near-ties.
	searchStart := numSlices * 15 / 100
	searchEnd := numSlices * 85 / 100
	pageCenter := numSlices / 2

	bestStart, bestLen := 0, 0
	bestCenterDist := math.Inf(1)
	curStart, curLen := 0, 0

	consider := func(start, length int) {
		gapWidth := float64(length) * columnSliceWidth
		if gapWidth < minGapWidth {
			return
		}
		centerDist := math.Abs(float64(start + length/2 - pageCenter))
		bestWidth := float64(bestLen) * columnSliceWidth
		if gapWidth > bestWidth*1.5 || (gapWidth >= bestWidth*0.7 && centerDist < bestCenterDist) {
			bestStart, bestLen = start, length
			bestCenterDist = centerDist
		}
	}

	for i := searchStart; i < searchEnd && i < numSlices; i++ {
		if occupancy[i] == 0 {
			if curLen == 0 {
				curStart = i
			}
			curLen++
			continue
		}
		if curLen > 0 {
			consider(curStart, curLen)
			curLen = 0
		}
	}
	if curLen > 0 {
		consider(curStart, curLen)
	}

	if float64(bestLen)*columnSliceWidth < minGutterWidth {
		return single
	}

	gutterCenter := minX + (float64(bestStart)+float64(bestLen)/2)*columnSliceWidth

	if gutterCenter-minX < minColumnWidth || maxX-gutterCenter < minColumnWidth {
		return single
	}

	// Both sides need a meaningful share of the text.
	leftCount, rightCount := 0, 0
	for i := range spans {
		if spans[i].X+spans[i].Width/2 < gutterCenter {
			leftCount++
		} else {
			rightCount++
		}
	}
	minSpans := len(spans) / 10
	if minSpans < 2 {
		minSpans = 2
	}
	if leftCount < minSpans || rightCount < minSpans {
		return single
	}

	return []Column{
		{Left: minX - columnMargin, Right: gutterCenter, Index: 0},
		{Left: gutterCenter, Right: maxX + columnMargin, Index: 1},
	}
}
