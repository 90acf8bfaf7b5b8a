// Package layout turns the raw text spans extracted from a page into
// document structure: lines, paragraphs, headings, lists, columns, and
// tables, in reading order.
//
// # Pipeline
//
// The [Analyzer] runs the whole pipeline and produces model blocks:
//
//	analyzer := layout.NewAnalyzer()
//	for _, page := range pages {
//		blocks := analyzer.AnalyzePage(page.Spans)
//		// blocks are paragraphs and tables in reading order
//	}
//
// Font statistics accumulate across pages, so one analyzer should be
// used per document. Heading levels are assigned relative to the body
// font size found by [FontStatistics].
//
// # Stages
//
// Each stage is usable on its own:
//
//   - [DetectColumns] - finds a two-column split from the horizontal
//     span distribution
//   - [GroupIntoLines] - groups spans into [Line] values, column-aware
//   - [GroupIntoBlocks] - merges lines into [Block] values using
//     vertical spacing, font size, and indentation
//   - [FontStatistics] - tracks the font-size histogram and classifies
//     heading sizes
//   - [ParseListMarker] - recognizes bullet, numbered, lettered, and
//     roman list markers
//   - [TableDetector] - finds aligned-column table regions and converts
//     them with [TableDetector.ToModel]
//
// # Table Detection
//
// Tables are detected from span alignment alone, before line grouping,
// so table cells never bleed into paragraph text. Detection thresholds
// can be tuned through [TableConfig]:
//
//	config := layout.DefaultTableConfig()
//	config.MaxColumns = 8
//	analyzer := layout.NewAnalyzerWithTableConfig(config)
package layout
