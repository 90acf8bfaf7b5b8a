package layout

import (
	"math"
	"sort"
	"strings"

	"github.com/unpdf/unpdf/model"
	"github.com/unpdf/unpdf/text"
)

// edgeBucketSize groups span left edges into 5pt buckets when voting for
// column boundaries; alignmentTolerance is how far a span may sit from a
// column edge and still count as aligned.
const (
	edgeBucketSize     = 5.0
	alignmentTolerance = 5.0
)

// TableConfig tunes stream-mode table detection, which finds tables by
// text alignment alone, without ruling lines.
type TableConfig struct {
	// MinRows and MinColumns are the smallest shape worth calling a table.
	MinRows    int
	MinColumns int

	// MaxColumns guards against word-level span splitting looking like a
	// very wide table.
	MaxColumns int

	// YToleranceFactor scales a span's font size into the tolerance for
	// grouping spans onto one row.
	YToleranceFactor float64

	// MinAlignmentRatio is the fraction of a row's spans that must sit on
	// detected column edges for the row to count as tabular.
	MinAlignmentRatio float64

	// MinColumnGap merges detected edges closer together than this.
	MinColumnGap float64
}

// DefaultTableConfig returns the detection thresholds that work across
// most report-style documents.
func DefaultTableConfig() TableConfig {
	return TableConfig{
		MinRows:           2,
		MinColumns:        2,
		MaxColumns:        6,
		YToleranceFactor:  0.4,
		MinAlignmentRatio: 0.3,
		MinColumnGap:      15.0,
	}
}

// TableRow is one row of a detected table: spans sharing a baseline,
// left to right.
type TableRow struct {
	Y     float64
	Spans []text.Span

	indices []int // positions in the page span slice, for used-span tracking
}

// DetectedTable is a table region with its geometry and content rows.
type DetectedTable struct {
	TopY    float64
	BottomY float64
	LeftX   float64
	RightX  float64
	Columns []float64 // column left edges, ascending
	Rows    []TableRow
}

// TableDetector finds tables from text span positions.
type TableDetector struct {
	config TableConfig
}

// NewTableDetector creates a detector with the default thresholds.
func NewTableDetector() *TableDetector {
	return &TableDetector{config: DefaultTableConfig()}
}

// NewTableDetectorWithConfig creates a detector with custom thresholds.
func NewTableDetectorWithConfig(config TableConfig) *TableDetector {
	return &TableDetector{config: config}
}

// Detect finds table regions among the spans. It returns the detected
// tables and the spans that were not part of any table, for normal
// paragraph processing.
func (d *TableDetector) Detect(spans []text.Span) ([]DetectedTable, []text.Span) {
	if len(spans) < d.config.MinRows*d.config.MinColumns {
		return nil, spans
	}

	rows := d.groupIntoRows(spans)
	if len(rows) < d.config.MinRows {
		return nil, spans
	}

	columns := d.detectColumnEdges(rows)
	if len(columns) < d.config.MinColumns {
		return nil, spans
	}

	regions := d.findTableRegions(rows, columns)
	if len(regions) == 0 {
		return nil, spans
	}

	used := make([]bool, len(spans))
	var tables []DetectedTable

	for _, region := range regions {
		tableRows := rows[region.start : region.end+1]

		// Column positions inside this region may differ from the whole
		// page, so detect again on just its rows.
		tableColumns := d.detectColumnEdges(tableRows)
		if len(tableColumns) < d.config.MinColumns || len(tableColumns) > d.config.MaxColumns {
			continue
		}
		if d.isListPattern(tableRows, tableColumns) {
			continue
		}

		topY, bottomY := tableRows[0].Y, tableRows[len(tableRows)-1].Y
		leftX, rightX := math.Inf(1), math.Inf(-1)
		for _, row := range tableRows {
			for _, s := range row.Spans {
				if s.X < leftX {
					leftX = s.X
				}
				if right := s.X + s.Width; right > rightX {
					rightX = right
				}
			}
			for _, idx := range row.indices {
				used[idx] = true
			}
		}

		tables = append(tables, DetectedTable{
			TopY:    topY,
			BottomY: bottomY,
			LeftX:   leftX,
			RightX:  rightX,
			Columns: tableColumns,
			Rows:    tableRows,
		})
	}

	if len(tables) == 0 {
		return nil, spans
	}

	rest := make([]text.Span, 0, len(spans))
	for i, s := range spans {
		if !used[i] {
			rest = append(rest, s)
		}
	}
	return tables, rest
}

// groupIntoRows clusters spans onto baselines, top of the page first.
// The tolerance is wider than line grouping uses so that slightly
// misaligned cell text still lands on one row.
func (d *TableDetector) groupIntoRows(spans []text.Span) []TableRow {
	if len(spans) == 0 {
		return nil
	}

	order := make([]int, len(spans))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		sa, sb := &spans[order[a]], &spans[order[b]]
		if sa.Y != sb.Y {
			return sa.Y > sb.Y
		}
		return sa.X < sb.X
	})

	var rows []TableRow
	var current []int
	currentY := 0.0

	flush := func() {
		if len(current) == 0 {
			return
		}
		row := TableRow{indices: current}
		sum := 0.0
		for _, idx := range current {
			row.Spans = append(row.Spans, spans[idx])
			sum += spans[idx].Y
		}
		row.Y = sum / float64(len(current))
		rows = append(rows, row)
		current = nil
	}

	for _, idx := range order {
		span := &spans[idx]
		tolerance := span.FontSize * d.config.YToleranceFactor
		if len(current) > 0 && math.Abs(span.Y-currentY) <= tolerance {
			current = append(current, idx)
			continue
		}
		flush()
		currentY = span.Y
		current = append(current, idx)
	}
	flush()

	return rows
}

// detectColumnEdges votes span left edges into 5pt buckets and keeps the
// positions that repeat across rows. Rows holding several spans are the
// reliable voters; when too few exist, every span gets a vote instead.
func (d *TableDetector) detectColumnEdges(rows []TableRow) []float64 {
	if len(rows) == 0 {
		return nil
	}

	var multiSpanRows []*TableRow
	for i := range rows {
		if len(rows[i].Spans) >= 2 {
			multiSpanRows = append(multiSpanRows, &rows[i])
		}
	}
	if len(multiSpanRows) < d.config.MinRows {
		return d.detectColumnEdgesSimple(rows)
	}

	counts := make(map[int]int)
	for _, row := range multiSpanRows {
		// Each bucket votes once per row.
		seen := make(map[int]bool)
		for _, s := range row.Spans {
			seen[int(math.Round(s.X/edgeBucketSize))] = true
		}
		for bucket := range seen {
			counts[bucket]++
		}
	}

	return d.mergeEdges(counts, d.minOccurrences(len(multiSpanRows)))
}

// detectColumnEdgesSimple is the fallback when almost every row holds a
// single span: count every edge, not once per row.
func (d *TableDetector) detectColumnEdgesSimple(rows []TableRow) []float64 {
	counts := make(map[int]int)
	for i := range rows {
		for _, s := range rows[i].Spans {
			counts[int(math.Round(s.X/edgeBucketSize))]++
		}
	}
	return d.mergeEdges(counts, d.minOccurrences(len(rows)))
}

func (d *TableDetector) minOccurrences(rowCount int) int {
	min := int(float64(rowCount) * d.config.MinAlignmentRatio)
	if min < 2 {
		min = 2
	}
	return min
}

// mergeEdges keeps buckets with enough votes, sorted, and collapses
// edges closer together than the minimum column gap.
func (d *TableDetector) mergeEdges(counts map[int]int, minOccurrences int) []float64 {
	var edges []float64
	for bucket, count := range counts {
		if count >= minOccurrences {
			edges = append(edges, float64(bucket)*edgeBucketSize)
		}
	}
	sort.Float64s(edges)

	var merged []float64
	for _, edge := range edges {
		if len(merged) == 0 || edge-merged[len(merged)-1] >= d.config.MinColumnGap {
			merged = append(merged, edge)
		}
	}
	return merged
}

type rowRegion struct {
	start, end int
}

// findTableRegions returns maximal runs of consecutive rows whose spans
// sit on the detected column edges.
func (d *TableDetector) findTableRegions(rows []TableRow, columns []float64) []rowRegion {
	var regions []rowRegion
	start := -1
	consecutive := 0

	for i := range rows {
		if d.alignmentScore(&rows[i], columns) >= d.config.MinAlignmentRatio {
			if start < 0 {
				start = i
			}
			consecutive++
			continue
		}
		if start >= 0 && consecutive >= d.config.MinRows {
			regions = append(regions, rowRegion{start: start, end: i - 1})
		}
		start = -1
		consecutive = 0
	}
	if start >= 0 && consecutive >= d.config.MinRows {
		regions = append(regions, rowRegion{start: start, end: len(rows) - 1})
	}

	return regions
}

// alignmentScore is the fraction of the row's spans starting on one of
// the column edges.
func (d *TableDetector) alignmentScore(row *TableRow, columns []float64) float64 {
	if len(row.Spans) == 0 || len(columns) == 0 {
		return 0
	}

	aligned := 0
	for _, s := range row.Spans {
		for _, col := range columns {
			if math.Abs(s.X-col) <= alignmentTolerance {
				aligned++
				break
			}
		}
	}
	return float64(aligned) / float64(len(row.Spans))
}

// isListPattern reports whether the rows are really a bulleted or
// numbered list whose markers split into their own spans. Bullet markers
// almost never open real table rows; numbering can, so numbers only veto
// two-column shapes.
func (d *TableDetector) isListPattern(rows []TableRow, columns []float64) bool {
	if len(columns) < 2 || len(rows) == 0 {
		return false
	}

	bullets, numbers := 0, 0
	for i := range rows {
		if len(rows[i].Spans) == 0 {
			continue
		}
		first := &rows[i].Spans[0]
		for j := range rows[i].Spans {
			if rows[i].Spans[j].X < first.X {
				first = &rows[i].Spans[j]
			}
		}
		trimmed := strings.TrimSpace(first.Text)
		if isBulletMarkerText(trimmed) {
			bullets++
		} else if isNumberMarkerText(trimmed) {
			numbers++
		}
	}

	if float64(bullets)/float64(len(rows)) >= 0.5 {
		return true
	}
	if len(columns) == 2 && float64(bullets+numbers)/float64(len(rows)) >= 0.5 {
		return true
	}
	return false
}

// ToModel converts a detected table into the document model: each span
// assigned to the nearest column, cell text joined with spaces, and the
// first row marked as a header when more rows follow.
func (d *TableDetector) ToModel(detected *DetectedTable) *model.Table {
	headerRows := 0
	if len(detected.Rows) > 1 {
		headerRows = 1
	}

	cells := make([][]model.TableCell, 0, len(detected.Rows))
	for _, row := range detected.Rows {
		contents := make([][]string, len(detected.Columns))
		for _, span := range row.Spans {
			col := columnForSpan(span.X, detected.Columns, detected.RightX)
			if col < len(contents) {
				contents[col] = append(contents[col], strings.TrimSpace(span.Text))
			}
		}

		rowCells := make([]model.TableCell, len(detected.Columns))
		for i, parts := range contents {
			rowCells[i] = model.TableCell{Text: strings.Join(parts, " ")}
		}
		cells = append(cells, rowCells)
	}

	return &model.Table{Cells: cells, HeaderRows: headerRows}
}

// columnForSpan finds the column whose band holds the span's left edge,
// allowing 10pt of slack before a column start, else the closest column.
func columnForSpan(x float64, columns []float64, rightX float64) int {
	if len(columns) == 0 {
		return 0
	}

	for i, colStart := range columns {
		colEnd := rightX + 100
		if i+1 < len(columns) {
			colEnd = columns[i+1]
		}
		if x >= colStart-10 && x < colEnd-10 {
			return i
		}
	}

	closest := 0
	minDist := math.Inf(1)
	for i, colStart := range columns {
		if dist := math.Abs(x - colStart); dist < minDist {
			minDist = dist
			closest = i
		}
	}
	return closest
}
