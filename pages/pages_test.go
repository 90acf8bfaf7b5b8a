package pages

import (
	"fmt"
	"strings"
	"testing"

	"github.com/unpdf/unpdf/core"
)

// fakeResolver serves objects from a map keyed by object number.
type fakeResolver struct {
	objects map[int]core.Object
}

func (r *fakeResolver) Resolve(obj core.Object) (core.Object, error) {
	ref, ok := obj.(core.IndirectRef)
	if !ok {
		return obj, nil
	}
	got, ok := r.objects[ref.Number]
	if !ok {
		return nil, fmt.Errorf("object %d not found", ref.Number)
	}
	return got, nil
}

func ref(n int) core.IndirectRef { return core.IndirectRef{Number: n} }

func TestCatalogPages(t *testing.T) {
	pagesDict := core.Dict{"Type": core.Name("Pages"), "Kids": core.Array{}, "Count": core.Int(0)}
	r := &fakeResolver{objects: map[int]core.Object{2: pagesDict}}

	cat := NewCatalog(core.Dict{"Type": core.Name("Catalog"), "Pages": ref(2)}, r)
	got, err := cat.Pages()
	if err != nil {
		t.Fatalf("Pages() error: %v", err)
	}
	if typ, _ := got.GetName("Type"); typ != "Pages" {
		t.Errorf("Pages() type = %q, want Pages", typ)
	}

	empty := NewCatalog(core.Dict{"Type": core.Name("Catalog")}, r)
	if _, err := empty.Pages(); err == nil {
		t.Error("Pages() on catalog without /Pages: want error, got nil")
	}
}

func TestCatalogOutlines(t *testing.T) {
	outlines := core.Dict{"Type": core.Name("Outlines"), "Count": core.Int(2)}
	r := &fakeResolver{objects: map[int]core.Object{5: outlines, 6: core.Int(7)}}

	tests := []struct {
		name    string
		dict    core.Dict
		wantNil bool
	}{
		{"present", core.Dict{"Outlines": ref(5)}, false},
		{"absent", core.Dict{}, true},
		{"malformed", core.Dict{"Outlines": ref(6)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewCatalog(tt.dict, r).Outlines()
			if err != nil {
				t.Fatalf("Outlines() error: %v", err)
			}
			if (got == nil) != tt.wantNil {
				t.Errorf("Outlines() = %v, wantNil %v", got, tt.wantNil)
			}
		})
	}
}

// buildTree wires a three-leaf tree exercising inheritance at every level:
//
//	1 Pages (MediaBox letter, Resources, Count 3)
//	├── 2 Page
//	└── 3 Pages (MediaBox 200x400, Rotate 90)
//	    ├── 4 Page
//	    └── 5 Page (own MediaBox 100x100, Rotate 270, own Resources)
func buildTree() (core.Dict, *fakeResolver) {
	root := core.Dict{
		"Type":      core.Name("Pages"),
		"Kids":      core.Array{ref(2), ref(3)},
		"Count":     core.Int(3),
		"MediaBox":  core.Array{core.Int(0), core.Int(0), core.Int(612), core.Int(792)},
		"Resources": core.Dict{"Level": core.Name("Root")},
	}
	mid := core.Dict{
		"Type":     core.Name("Pages"),
		"Kids":     core.Array{ref(4), ref(5)},
		"Count":    core.Int(2),
		"MediaBox": core.Array{core.Int(0), core.Int(0), core.Int(200), core.Int(400)},
		"Rotate":   core.Int(90),
	}
	leaf2 := core.Dict{"Type": core.Name("Page")}
	leaf4 := core.Dict{"Type": core.Name("Page")}
	leaf5 := core.Dict{
		"Type":      core.Name("Page"),
		"MediaBox":  core.Array{core.Int(0), core.Int(0), core.Int(100), core.Int(100)},
		"Rotate":    core.Int(270),
		"Resources": core.Dict{"Level": core.Name("Leaf")},
	}
	r := &fakeResolver{objects: map[int]core.Object{
		1: root, 2: leaf2, 3: mid, 4: leaf4, 5: leaf5,
	}}
	return root, r
}

func TestPageTreeWalk(t *testing.T) {
	root, r := buildTree()
	tree := NewPageTree(root, r)

	pages, err := tree.Pages()
	if err != nil {
		t.Fatalf("Pages() error: %v", err)
	}
	if len(pages) != 3 {
		t.Fatalf("len(pages) = %d, want 3", len(pages))
	}

	tests := []struct {
		index     int
		number    int
		width     float64
		height    float64
		rotate    int
		resLevel  core.Name
		refNumber int
	}{
		{0, 1, 612, 792, 0, "Root", 2},
		{1, 2, 200, 400, 90, "Root", 4},
		{2, 3, 100, 100, 270, "Leaf", 5},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("page%d", tt.number), func(t *testing.T) {
			p := pages[tt.index]
			if p.Number() != tt.number {
				t.Errorf("Number() = %d, want %d", p.Number(), tt.number)
			}
			if p.Width() != tt.width || p.Height() != tt.height {
				t.Errorf("size = %gx%g, want %gx%g", p.Width(), p.Height(), tt.width, tt.height)
			}
			if p.Rotate() != tt.rotate {
				t.Errorf("Rotate() = %d, want %d", p.Rotate(), tt.rotate)
			}
			res := p.Resources()
			if res == nil {
				t.Fatal("Resources() = nil")
			}
			if level, _ := res.GetName("Level"); level != tt.resLevel {
				t.Errorf("resources level = %q, want %q", level, tt.resLevel)
			}
			got, ok := p.Ref()
			if !ok || got.Number != tt.refNumber {
				t.Errorf("Ref() = %v, %v, want object %d", got, ok, tt.refNumber)
			}
		})
	}
}

func TestPageTreeCount(t *testing.T) {
	root, r := buildTree()
	if n, err := NewPageTree(root, r).Count(); err != nil || n != 3 {
		t.Errorf("Count() = %d, %v, want 3, nil", n, err)
	}

	// Without /Count the walk total is used.
	delete(root, "Count")
	if n, err := NewPageTree(root, r).Count(); err != nil || n != 3 {
		t.Errorf("Count() fallback = %d, %v, want 3, nil", n, err)
	}
}

func TestPageTreeIndexOfRef(t *testing.T) {
	root, r := buildTree()
	tree := NewPageTree(root, r)

	tests := []struct {
		objNum    int
		wantIndex int
		wantOK    bool
	}{
		{2, 0, true},
		{4, 1, true},
		{5, 2, true},
		{99, 0, false},
	}
	for _, tt := range tests {
		idx, ok := tree.IndexOfRef(tt.objNum)
		if idx != tt.wantIndex || ok != tt.wantOK {
			t.Errorf("IndexOfRef(%d) = %d, %v, want %d, %v", tt.objNum, idx, ok, tt.wantIndex, tt.wantOK)
		}
	}
}

func TestPageTreeTypeInference(t *testing.T) {
	// Neither node carries /Type; the intermediate is spotted by /Kids.
	root := core.Dict{"Kids": core.Array{ref(2)}}
	leaf := core.Dict{"MediaBox": core.Array{core.Int(0), core.Int(0), core.Int(300), core.Int(300)}}
	r := &fakeResolver{objects: map[int]core.Object{2: leaf}}

	pages, err := NewPageTree(root, r).Pages()
	if err != nil {
		t.Fatalf("Pages() error: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("len(pages) = %d, want 1", len(pages))
	}
	if pages[0].Width() != 300 {
		t.Errorf("Width() = %g, want 300", pages[0].Width())
	}
}

func TestPageTreeCycle(t *testing.T) {
	root := core.Dict{"Type": core.Name("Pages"), "Kids": core.Array{ref(2)}}
	loop := core.Dict{"Type": core.Name("Pages"), "Kids": core.Array{ref(1)}}
	r := &fakeResolver{objects: map[int]core.Object{1: root, 2: loop}}

	_, err := NewPageTree(root, r).Pages()
	if err == nil {
		t.Fatal("Pages() on cyclic tree: want error, got nil")
	}
	if !strings.Contains(err.Error(), "cycle") {
		t.Errorf("error = %q, want mention of cycle", err)
	}
}

func TestPageTreeLimits(t *testing.T) {
	root, r := buildTree()

	if _, err := NewPageTree(root, r, WithMaxPages(2)).Pages(); err == nil {
		t.Error("WithMaxPages(2) on 3-page tree: want error, got nil")
	}
	if _, err := NewPageTree(root, r, WithMaxDepth(1)).Pages(); err == nil {
		t.Error("WithMaxDepth(1) on nested tree: want error, got nil")
	}
	if _, err := NewPageTree(root, r, WithMaxPages(3), WithMaxDepth(2)).Pages(); err != nil {
		t.Errorf("limits at exact size: unexpected error %v", err)
	}
}

func TestPageMediaBoxDefault(t *testing.T) {
	r := &fakeResolver{objects: map[int]core.Object{}}
	tests := []struct {
		name string
		dict core.Dict
	}{
		{"absent", core.Dict{"Type": core.Name("Page")}},
		{"short", core.Dict{"Type": core.Name("Page"), "MediaBox": core.Array{core.Int(0), core.Int(0), core.Int(612)}}},
		{"non-numeric", core.Dict{"Type": core.Name("Page"), "MediaBox": core.Array{core.Int(0), core.Int(0), core.Name("x"), core.Int(792)}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := core.Dict{"Type": core.Name("Pages"), "Kids": core.Array{tt.dict}}
			pages, err := NewPageTree(root, r).Pages()
			if err != nil {
				t.Fatalf("Pages() error: %v", err)
			}
			box := pages[0].MediaBox()
			if box != [4]float64{0, 0, 612, 792} {
				t.Errorf("MediaBox() = %v, want letter default", box)
			}
		})
	}
}

func TestPageRotate(t *testing.T) {
	r := &fakeResolver{objects: map[int]core.Object{}}
	tests := []struct {
		name   string
		rotate core.Object
		want   int
	}{
		{"quarter", core.Int(90), 90},
		{"negative", core.Int(-90), 270},
		{"wrapped", core.Int(450), 90},
		{"skewed", core.Int(45), 0},
		{"real", core.Real(180), 180},
		{"absent", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			leaf := core.Dict{"Type": core.Name("Page")}
			if tt.rotate != nil {
				leaf.Set("Rotate", tt.rotate)
			}
			root := core.Dict{"Type": core.Name("Pages"), "Kids": core.Array{leaf}}
			pages, err := NewPageTree(root, r).Pages()
			if err != nil {
				t.Fatalf("Pages() error: %v", err)
			}
			if got := pages[0].Rotate(); got != tt.want {
				t.Errorf("Rotate() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPageContents(t *testing.T) {
	bt := &core.Stream{Dict: core.Dict{"Length": core.Int(2)}, Data: []byte("BT")}
	et := &core.Stream{Dict: core.Dict{"Length": core.Int(2)}, Data: []byte("ET")}
	r := &fakeResolver{objects: map[int]core.Object{
		10: bt,
		11: et,
		12: core.Int(3),
	}}

	t.Run("single", func(t *testing.T) {
		p := newPage(core.Dict{"Contents": ref(10)}, nil, 1, inherited{}, r)
		streams, err := p.Contents()
		if err != nil {
			t.Fatalf("Contents() error: %v", err)
		}
		if len(streams) != 1 || string(streams[0].Data) != "BT" {
			t.Errorf("Contents() = %v, want one BT stream", streams)
		}
	})

	t.Run("array skips non-streams", func(t *testing.T) {
		p := newPage(core.Dict{"Contents": core.Array{ref(10), ref(12), ref(11)}}, nil, 1, inherited{}, r)
		streams, err := p.Contents()
		if err != nil {
			t.Fatalf("Contents() error: %v", err)
		}
		if len(streams) != 2 {
			t.Fatalf("len(streams) = %d, want 2", len(streams))
		}
	})

	t.Run("absent", func(t *testing.T) {
		p := newPage(core.Dict{}, nil, 1, inherited{}, r)
		streams, err := p.Contents()
		if err != nil || streams != nil {
			t.Errorf("Contents() = %v, %v, want nil, nil", streams, err)
		}
	})

	t.Run("wrong type", func(t *testing.T) {
		p := newPage(core.Dict{"Contents": ref(12)}, nil, 1, inherited{}, r)
		if _, err := p.Contents(); err == nil {
			t.Error("Contents() on integer /Contents: want error, got nil")
		}
	})
}

func TestPageContentData(t *testing.T) {
	bt := &core.Stream{Dict: core.Dict{}, Data: []byte("BT /F1 12 Tf")}
	et := &core.Stream{Dict: core.Dict{}, Data: []byte("ET")}
	r := &fakeResolver{objects: map[int]core.Object{10: bt, 11: et}}

	p := newPage(core.Dict{"Contents": core.Array{ref(10), ref(11)}}, nil, 1, inherited{}, r)
	data, err := p.ContentData()
	if err != nil {
		t.Fatalf("ContentData() error: %v", err)
	}
	if got, want := string(data), "BT /F1 12 Tf\nET"; got != want {
		t.Errorf("ContentData() = %q, want %q", got, want)
	}
}
