package pages

import (
	"fmt"

	"github.com/unpdf/unpdf/core"
	"github.com/unpdf/unpdf/internal/config"
)

// Resolver follows indirect references for the page tree walk.
type Resolver interface {
	Resolve(obj core.Object) (core.Object, error)
}

// Catalog is the document catalog, the root of the object graph.
type Catalog struct {
	dict     core.Dict
	resolver Resolver
}

// NewCatalog wraps the catalog dictionary.
func NewCatalog(dict core.Dict, resolver Resolver) *Catalog {
	return &Catalog{dict: dict, resolver: resolver}
}

// Dict returns the raw catalog dictionary.
func (c *Catalog) Dict() core.Dict { return c.dict }

// Pages returns the page tree root dictionary.
func (c *Catalog) Pages() (core.Dict, error) {
	obj := c.dict.Get("Pages")
	if obj == nil {
		return nil, fmt.Errorf("catalog has no /Pages")
	}
	resolved, err := c.resolver.Resolve(obj)
	if err != nil {
		return nil, fmt.Errorf("resolve /Pages: %w", err)
	}
	dict, ok := resolved.(core.Dict)
	if !ok {
		return nil, fmt.Errorf("/Pages is %T, want dictionary", resolved)
	}
	return dict, nil
}

// Outlines returns the outline root dictionary, or nil when the document
// has no bookmarks.
func (c *Catalog) Outlines() (core.Dict, error) {
	obj := c.dict.Get("Outlines")
	if obj == nil {
		return nil, nil
	}
	resolved, err := c.resolver.Resolve(obj)
	if err != nil {
		return nil, fmt.Errorf("resolve /Outlines: %w", err)
	}
	dict, ok := resolved.(core.Dict)
	if !ok {
		return nil, nil // tolerate a malformed outline root
	}
	return dict, nil
}

// Names returns the catalog /Names dictionary, or nil.
func (c *Catalog) Names() (core.Dict, error) {
	obj := c.dict.Get("Names")
	if obj == nil {
		return nil, nil
	}
	resolved, err := c.resolver.Resolve(obj)
	if err != nil {
		return nil, fmt.Errorf("resolve /Names: %w", err)
	}
	dict, ok := resolved.(core.Dict)
	if !ok {
		return nil, nil
	}
	return dict, nil
}

// inherited carries the attributes a /Pages node passes down to its kids.
type inherited struct {
	mediaBox  core.Array
	resources core.Dict
	rotate    core.Object
}

// PageTree flattens the page tree into an ordered page list, applying
// attribute inheritance along the way.
type PageTree struct {
	root     core.Dict
	resolver Resolver
	maxPages int
	maxDepth int

	pages   []*Page
	byRef   map[int]int // object number -> 0-based page index
	loadErr error
	loaded  bool
}

// Option configures the page tree walk.
type Option func(*PageTree)

// WithMaxPages caps how many pages the walk will collect.
func WithMaxPages(n int) Option {
	return func(t *PageTree) {
		if n > 0 {
			t.maxPages = n
		}
	}
}

// WithMaxDepth caps the nesting depth of /Pages nodes.
func WithMaxDepth(n int) Option {
	return func(t *PageTree) {
		if n > 0 {
			t.maxDepth = n
		}
	}
}

// NewPageTree builds a walker over the page tree rooted at root.
func NewPageTree(root core.Dict, resolver Resolver, opts ...Option) *PageTree {
	limits := config.DefaultLimits()
	t := &PageTree{
		root:     root,
		resolver: resolver,
		maxPages: limits.MaxPages,
		maxDepth: limits.MaxDepth,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Count returns the declared /Count when present, falling back to the
// walked page total.
func (t *PageTree) Count() (int, error) {
	if n, ok := core.AsInt(t.root.Get("Count")); ok && n >= 0 {
		return n, nil
	}
	pages, err := t.Pages()
	if err != nil {
		return 0, err
	}
	return len(pages), nil
}

// Pages returns all pages in document order. The walk runs once; the
// result is cached.
func (t *PageTree) Pages() ([]*Page, error) {
	if !t.loaded {
		t.loaded = true
		t.byRef = make(map[int]int)
		t.loadErr = t.walk(t.root, nil, inherited{}, make(map[int]bool), 0)
	}
	return t.pages, t.loadErr
}

// GetPage returns the 0-based page.
func (t *PageTree) GetPage(index int) (*Page, error) {
	pages, err := t.Pages()
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(pages) {
		return nil, fmt.Errorf("page index %d out of range [0, %d)", index, len(pages))
	}
	return pages[index], nil
}

// IndexOfRef maps a page object number to its 0-based index. Used to
// resolve outline destinations.
func (t *PageTree) IndexOfRef(objNum int) (int, bool) {
	if _, err := t.Pages(); err != nil {
		return 0, false
	}
	idx, ok := t.byRef[objNum]
	return idx, ok
}

// walk visits node, accumulating inheritable attributes. ref is the
// indirect reference that named the node, when there was one.
func (t *PageTree) walk(node core.Dict, ref *core.IndirectRef, inh inherited, visiting map[int]bool, depth int) error {
	if depth > t.maxDepth {
		return fmt.Errorf("page tree deeper than %d", t.maxDepth)
	}

	// Pick up inheritable attributes defined on this node.
	if obj := node.Get("MediaBox"); obj != nil {
		if arr, err := t.resolveArray(obj); err == nil {
			inh.mediaBox = arr
		}
	}
	if obj := node.Get("Resources"); obj != nil {
		if resolved, err := t.resolver.Resolve(obj); err == nil {
			if dict, ok := resolved.(core.Dict); ok {
				inh.resources = dict
			}
		}
	}
	if obj := node.Get("Rotate"); obj != nil {
		if resolved, err := t.resolver.Resolve(obj); err == nil {
			inh.rotate = resolved
		}
	}

	// Broken files omit /Type; infer from the presence of /Kids.
	typ, _ := node.GetName("Type")
	isPages := typ == "Pages" || (typ == "" && node.Has("Kids"))

	if !isPages {
		if len(t.pages) >= t.maxPages {
			return fmt.Errorf("document exceeds %d pages", t.maxPages)
		}
		page := newPage(node, ref, len(t.pages)+1, inh, t.resolver)
		if ref != nil {
			t.byRef[ref.Number] = len(t.pages)
		}
		t.pages = append(t.pages, page)
		return nil
	}

	kidsObj := node.Get("Kids")
	if kidsObj == nil {
		return fmt.Errorf("/Pages node has no /Kids")
	}
	kids, err := t.resolveArray(kidsObj)
	if err != nil {
		return fmt.Errorf("resolve /Kids: %w", err)
	}

	for i, kidObj := range kids {
		var kidRef *core.IndirectRef
		if r, ok := kidObj.(core.IndirectRef); ok {
			if visiting[r.Number] {
				return fmt.Errorf("page tree cycle through object %d", r.Number)
			}
			visiting[r.Number] = true
			kidRef = &r
		}

		resolved, err := t.resolver.Resolve(kidObj)
		if err != nil {
			return fmt.Errorf("resolve kid %d: %w", i, err)
		}
		kidDict, ok := resolved.(core.Dict)
		if !ok {
			return fmt.Errorf("kid %d is %T, want dictionary", i, resolved)
		}
		if err := t.walk(kidDict, kidRef, inh, visiting, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func (t *PageTree) resolveArray(obj core.Object) (core.Array, error) {
	resolved, err := t.resolver.Resolve(obj)
	if err != nil {
		return nil, err
	}
	arr, ok := resolved.(core.Array)
	if !ok {
		return nil, fmt.Errorf("%T is not an array", resolved)
	}
	return arr, nil
}
