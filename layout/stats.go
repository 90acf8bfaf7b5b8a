package layout

import "sort"

// defaultBodySize is assumed when a document shows no font sizes at all.
const defaultBodySize = 12.0

// FontStatistics accumulates font size observations across pages and
// derives the body text size and the heading size hierarchy from them.
// The body size is simply the most common size; anything noticeably
// larger is a heading candidate.
type FontStatistics struct {
	// BodySize is the most frequently observed size, valid after Analyze.
	BodySize float64

	// HeadingSizes are the observed sizes above body, largest first.
	HeadingSizes []float64

	histogram map[int]int
}

// AddSize records one observation, at 0.1pt precision.
func (fs *FontStatistics) AddSize(size float64) {
	if fs.histogram == nil {
		fs.histogram = make(map[int]int)
	}
	fs.histogram[int(size*10)]++
}

// Analyze recomputes BodySize and HeadingSizes from the observations so
// far. Ties on the most common size go to the smaller one, body text
// being smaller than any heading sharing its frequency.
func (fs *FontStatistics) Analyze() {
	if len(fs.histogram) == 0 {
		fs.BodySize = defaultBodySize
		return
	}

	bodyKey, bodyCount := 0, -1
	for key, count := range fs.histogram {
		if count > bodyCount || (count == bodyCount && key < bodyKey) {
			bodyKey, bodyCount = key, count
		}
	}
	fs.BodySize = float64(bodyKey) / 10

	fs.HeadingSizes = fs.HeadingSizes[:0]
	for key := range fs.histogram {
		if size := float64(key) / 10; size > fs.BodySize+0.5 {
			fs.HeadingSizes = append(fs.HeadingSizes, size)
		}
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(fs.HeadingSizes)))
}

// HeadingLevel maps a font size to a heading level 1-6, or 0 for body
// text. A heading must be at least 1.5pt larger than body to avoid
// flagging ordinary emphasis; sizes between body and the known heading
// sizes land on level 5.
func (fs *FontStatistics) HeadingLevel(fontSize float64) int {
	if fontSize < fs.BodySize+1.5 {
		return 0
	}

	for i, headingSize := range fs.HeadingSizes {
		if fontSize >= headingSize-0.5 {
			if i+1 > 6 {
				return 6
			}
			return i + 1
		}
	}
	return 5
}
