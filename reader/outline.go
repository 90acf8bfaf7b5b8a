package reader

import (
	"github.com/unpdf/unpdf/core"
	"github.com/unpdf/unpdf/model"
)

// pageIndexer maps a page object number to its 0-based index in the page
// tree. Satisfied by pages.PageTree.
type pageIndexer interface {
	IndexOfRef(objNum int) (int, bool)
}

// buildOutline walks the catalog's /Outlines tree into bookmark items.
// Outline damage never fails a parse; the walk just stops where the
// structure stops making sense.
func buildOutline(outlines core.Dict, res objectResolver, idx pageIndexer, maxDepth int) []model.OutlineItem {
	if outlines == nil {
		return nil
	}
	w := &outlineWalker{
		res:      res,
		idx:      idx,
		maxDepth: maxDepth,
		visited:  make(map[int]bool),
	}
	return w.children(outlines, 1)
}

type outlineWalker struct {
	res      objectResolver
	idx      pageIndexer
	maxDepth int
	visited  map[int]bool
}

// children walks node's /First chain, following /Next between siblings.
// The visited set breaks reference cycles; direct-embedded items have no
// number to track, which the depth cap covers.
func (w *outlineWalker) children(node core.Dict, level int) []model.OutlineItem {
	if w.maxDepth > 0 && level > w.maxDepth {
		return nil
	}

	var items []model.OutlineItem
	next := node.Get("First")
	for next != nil {
		if ref, ok := next.(core.IndirectRef); ok {
			if w.visited[ref.Number] {
				break
			}
			w.visited[ref.Number] = true
		}
		resolved, err := w.res.Resolve(next)
		if err != nil {
			break
		}
		item, ok := resolved.(core.Dict)
		if !ok {
			break
		}

		out := model.OutlineItem{Level: level}
		if s, ok := item.GetString("Title"); ok {
			out.Title = decodeTextString([]byte(s))
		}
		out.Page = w.destPage(item)
		out.Children = w.children(item, level+1)
		items = append(items, out)

		next = item.Get("Next")
	}
	return items
}

// destPage resolves an item's target to a 1-based page number. Named
// destinations and anything else unresolvable come back as 0.
func (w *outlineWalker) destPage(item core.Dict) int {
	dest := item.Get("Dest")
	if dest == nil {
		dest = w.goToDest(item.Get("A"))
	}
	if dest == nil {
		return 0
	}
	if _, ok := dest.(core.IndirectRef); ok {
		resolved, err := w.res.Resolve(dest)
		if err != nil {
			return 0
		}
		dest = resolved
	}

	arr, ok := dest.(core.Array)
	if !ok || len(arr) == 0 {
		return 0
	}
	ref, ok := arr[0].(core.IndirectRef)
	if !ok {
		return 0
	}
	if i, ok := w.idx.IndexOfRef(ref.Number); ok {
		return i + 1
	}
	return 0
}

// goToDest extracts the /D destination from a GoTo action.
func (w *outlineWalker) goToDest(action core.Object) core.Object {
	if action == nil {
		return nil
	}
	resolved, err := w.res.Resolve(action)
	if err != nil {
		return nil
	}
	dict, ok := resolved.(core.Dict)
	if !ok {
		return nil
	}
	if s, ok := dict.GetName("S"); !ok || s != "GoTo" {
		return nil
	}
	return dict.Get("D")
}
