package layout

import (
	"testing"

	"github.com/unpdf/unpdf/model"
	"github.com/unpdf/unpdf/text"
)

// TestAnalyzePageHeadingAndBody tests the basic pipeline: a large title
// becomes a level-1 heading block, body lines merge into one paragraph.
func TestAnalyzePageHeadingAndBody(t *testing.T) {
	spans := []text.Span{
		{Text: "Document Title", X: 72, Y: 760, Width: 170, FontSize: 24},
	}
	for i := 0; i < 10; i++ {
		spans = append(spans, tableSpan("body text line", 72, 700-float64(i)*12))
	}

	blocks := NewAnalyzer().AnalyzePage(spans)
	if len(blocks) != 2 {
		t.Fatalf("AnalyzePage returned %d blocks, want 2", len(blocks))
	}

	title, ok := blocks[0].(*model.Paragraph)
	if !ok {
		t.Fatalf("first block is %T, want *model.Paragraph", blocks[0])
	}
	if title.Heading != 1 {
		t.Errorf("title heading level = %d, want 1", title.Heading)
	}
	if got := title.PlainText(); got != "Document Title" {
		t.Errorf("title text = %q, want %q", got, "Document Title")
	}

	body, ok := blocks[1].(*model.Paragraph)
	if !ok {
		t.Fatalf("second block is %T, want *model.Paragraph", blocks[1])
	}
	if body.Heading != 0 {
		t.Errorf("body heading level = %d, want 0", body.Heading)
	}
	if len(body.Runs) != 1 {
		t.Errorf("body has %d runs, want 1 (uniform style)", len(body.Runs))
	}
}

// TestAnalyzePageBulletList tests that consecutive bullet lines become
// list items with the markers stripped.
func TestAnalyzePageBulletList(t *testing.T) {
	spans := []text.Span{
		tableSpan("Shopping list:", 72, 700),
		tableSpan("• apples", 72, 688),
		tableSpan("• oranges", 72, 676),
		tableSpan("• pears", 72, 664),
	}

	blocks := NewAnalyzer().AnalyzePage(spans)
	if len(blocks) != 4 {
		t.Fatalf("AnalyzePage returned %d blocks, want 4", len(blocks))
	}

	intro := blocks[0].(*model.Paragraph)
	if intro.List != nil {
		t.Errorf("intro paragraph marked as list item: %+v", intro.List)
	}

	wantTexts := []string{"apples", "oranges", "pears"}
	for i, want := range wantTexts {
		item, ok := blocks[i+1].(*model.Paragraph)
		if !ok {
			t.Fatalf("block %d is %T, want *model.Paragraph", i+1, blocks[i+1])
		}
		if item.List == nil {
			t.Fatalf("block %d not marked as list item", i+1)
		}
		if item.List.Ordered {
			t.Errorf("block %d marked ordered, want bullet", i+1)
		}
		if got := item.PlainText(); got != want {
			t.Errorf("item %d text = %q, want %q", i, got, want)
		}
	}
}

// TestAnalyzePageOrderedListNesting tests numbering and the
// indentation-derived nesting level.
func TestAnalyzePageOrderedListNesting(t *testing.T) {
	spans := []text.Span{
		tableSpan("1. First", 72, 700),
		tableSpan("a) Child", 90, 688),
		tableSpan("2. Second", 72, 676),
	}

	blocks := NewAnalyzer().AnalyzePage(spans)
	if len(blocks) != 3 {
		t.Fatalf("AnalyzePage returned %d blocks, want 3", len(blocks))
	}

	tests := []struct {
		idx        int
		wantText   string
		wantLevel  int
		wantNumber int
	}{
		{0, "First", 0, 1},
		{1, "Child", 1, 1},
		{2, "Second", 0, 2},
	}

	for _, tt := range tests {
		item := blocks[tt.idx].(*model.Paragraph)
		if item.List == nil {
			t.Fatalf("block %d not marked as list item", tt.idx)
		}
		if !item.List.Ordered {
			t.Errorf("block %d not ordered", tt.idx)
		}
		if got := item.PlainText(); got != tt.wantText {
			t.Errorf("block %d text = %q, want %q", tt.idx, got, tt.wantText)
		}
		if item.List.Level != tt.wantLevel {
			t.Errorf("block %d level = %d, want %d", tt.idx, item.List.Level, tt.wantLevel)
		}
		if item.List.Number != tt.wantNumber {
			t.Errorf("block %d number = %d, want %d", tt.idx, item.List.Number, tt.wantNumber)
		}
	}
}

// TestAnalyzePageLoneMarkerNotList tests that a single marked line
// stays a plain paragraph.
func TestAnalyzePageLoneMarkerNotList(t *testing.T) {
	spans := []text.Span{
		tableSpan("1. Introduction text here", 72, 700),
		tableSpan("plain paragraph follows", 72, 688),
	}

	blocks := NewAnalyzer().AnalyzePage(spans)
	for i, block := range blocks {
		p, ok := block.(*model.Paragraph)
		if !ok {
			continue
		}
		if p.List != nil {
			t.Errorf("block %d marked as list item, want plain paragraph", i)
		}
	}
}

// TestAnalyzePageTableInterleave tests that a detected table lands in
// reading order among the paragraphs.
func TestAnalyzePageTableInterleave(t *testing.T) {
	spans := []text.Span{
		tableSpan("Quarterly results follow.", 90, 760),
		tableSpan("A", 72, 700), tableSpan("B", 200, 700),
		tableSpan("C", 72, 680), tableSpan("D", 200, 680),
	}

	blocks := NewAnalyzer().AnalyzePage(spans)
	if len(blocks) != 2 {
		t.Fatalf("AnalyzePage returned %d blocks, want 2", len(blocks))
	}

	para, ok := blocks[0].(*model.Paragraph)
	if !ok {
		t.Fatalf("first block is %T, want *model.Paragraph", blocks[0])
	}
	if got := para.PlainText(); got != "Quarterly results follow." {
		t.Errorf("paragraph text = %q, want %q", got, "Quarterly results follow.")
	}

	table, ok := blocks[1].(*model.Table)
	if !ok {
		t.Fatalf("second block is %T, want *model.Table", blocks[1])
	}
	if table.HeaderRows != 1 {
		t.Errorf("HeaderRows = %d, want 1", table.HeaderRows)
	}
	if got := table.Cells[0][0].Text; got != "A" {
		t.Errorf("first cell = %q, want %q", got, "A")
	}
	if got := table.Cells[1][1].Text; got != "D" {
		t.Errorf("last cell = %q, want %q", got, "D")
	}
}

// TestAnalyzePageStyleRuns tests bold span styling carrying into runs.
func TestAnalyzePageStyleRuns(t *testing.T) {
	spans := []text.Span{
		{Text: "Results", X: 72, Y: 700, Width: 42, FontSize: 12, Bold: true},
		{Text: ":", X: 114, Y: 700, Width: 6, FontSize: 12},
	}

	blocks := NewAnalyzer().AnalyzePage(spans)
	if len(blocks) != 1 {
		t.Fatalf("AnalyzePage returned %d blocks, want 1", len(blocks))
	}

	para := blocks[0].(*model.Paragraph)
	if len(para.Runs) != 2 {
		t.Fatalf("paragraph has %d runs, want 2", len(para.Runs))
	}
	if para.Runs[0].Text != "Results" || !para.Runs[0].Bold {
		t.Errorf("first run = %+v, want bold %q", para.Runs[0], "Results")
	}
	if para.Runs[1].Text != ":" || para.Runs[1].Bold {
		t.Errorf("second run = %+v, want plain %q", para.Runs[1], ":")
	}
}

// TestAnalyzePageStatsPersist tests that font statistics carry across
// pages: a lone large line on a later page still reads as a heading.
func TestAnalyzePageStatsPersist(t *testing.T) {
	var page1 []text.Span
	for i := 0; i < 10; i++ {
		page1 = append(page1, tableSpan("body", 72, 700-float64(i)*12))
	}
	page2 := []text.Span{
		{Text: "Chapter Two", X: 72, Y: 720, Width: 130, FontSize: 24},
	}

	a := NewAnalyzer()
	a.AnalyzePage(page1)
	blocks := a.AnalyzePage(page2)

	if len(blocks) != 1 {
		t.Fatalf("AnalyzePage returned %d blocks, want 1", len(blocks))
	}
	if got := blocks[0].(*model.Paragraph).Heading; got != 1 {
		t.Errorf("heading level = %d, want 1", got)
	}
}

// TestAnalyzePageEmpty tests the nil result for no spans.
func TestAnalyzePageEmpty(t *testing.T) {
	if blocks := NewAnalyzer().AnalyzePage(nil); blocks != nil {
		t.Errorf("AnalyzePage(nil) = %v, want nil", blocks)
	}
}

// TestDropRunBytes tests marker stripping across run boundaries.
func TestDropRunBytes(t *testing.T) {
	runs := []model.Run{
		{Text: "• "},
		{Text: "apples", Bold: true},
	}

	got := dropRunBytes(runs, 4)
	if len(got) != 1 {
		t.Fatalf("dropRunBytes returned %d runs, want 1", len(got))
	}
	if got[0].Text != "apples" || !got[0].Bold {
		t.Errorf("run = %+v, want bold %q", got[0], "apples")
	}

	partial := dropRunBytes([]model.Run{{Text: "abcdef"}}, 2)
	if len(partial) != 1 || partial[0].Text != "cdef" {
		t.Errorf("partial drop = %+v, want [{cdef}]", partial)
	}
}
