package reader

import (
	"fmt"
	"math"
	"sort"

	"github.com/unpdf/unpdf/contentstream"
	"github.com/unpdf/unpdf/core"
	"github.com/unpdf/unpdf/graphicsstate"
	"github.com/unpdf/unpdf/layout"
	"github.com/unpdf/unpdf/model"
	"github.com/unpdf/unpdf/pages"
	"github.com/unpdf/unpdf/pdferr"
	"github.com/unpdf/unpdf/text"
)

// BuildDocument materializes the document: every selected page becomes a
// section, resources and the outline are collected, and the result holds
// no reference back to the source. Strict mode fails on the first broken
// page; lenient mode keeps whatever each page yielded.
func (r *Reader) BuildDocument() (*model.Document, error) {
	catalogDict, err := r.Catalog()
	if err != nil {
		return nil, err
	}
	catalog := pages.NewCatalog(catalogDict, r.resolver)

	pagesRoot, err := catalog.Pages()
	if err != nil {
		return nil, pdferr.Corrupted(err, "page tree root: %v", err)
	}
	tree := pages.NewPageTree(pagesRoot, r.resolver,
		pages.WithMaxPages(r.cfg.Limits.MaxPages),
		pages.WithMaxDepth(r.cfg.Limits.MaxDepth))

	count, err := tree.Count()
	if err != nil {
		return nil, pdferr.Corrupted(err, "page tree: %v", err)
	}

	selected, err := r.selectPages(tree, count)
	if err != nil {
		return nil, err
	}

	info, _ := r.Info()
	meta := buildMetadata(info, r.resolver, r.version, count)

	analyzer := layout.NewAnalyzer()
	sections := make([]model.Section, 0, len(selected))
	var resources []model.Resource

	for i, page := range selected {
		section, pageResources, err := r.buildSection(page, i, analyzer)
		if err != nil {
			if !r.cfg.Lenient {
				return nil, err
			}
			r.log.WithError(err).WithField("page", page.Number()).Warn("page recovered partially")
		}
		sections = append(sections, section)
		resources = append(resources, pageResources...)
	}

	if !r.cfg.TextOnly && !r.cfg.SkipResources {
		resources = append(resources, r.collectAttachments(catalog)...)
		resources = append(resources, r.collectFonts(selected)...)
	}

	var outline []model.OutlineItem
	if outlines, err := catalog.Outlines(); err == nil && outlines != nil {
		outline = buildOutline(outlines, r.resolver, tree, r.cfg.Limits.MaxDepth)
	}

	doc := model.NewDocument(meta, sections, resources, outline)
	r.log.WithField("sections", len(sections)).Debug("document materialized")
	return doc, nil
}

// selectPages validates the 1-based page selection against the page count
// and returns the pages to materialize, in selection order. A nil
// selection means every page.
func (r *Reader) selectPages(tree *pages.PageTree, count int) ([]*pages.Page, error) {
	if r.cfg.Pages == nil {
		all, err := tree.Pages()
		if err != nil {
			return nil, pdferr.Corrupted(err, "page tree: %v", err)
		}
		return all, nil
	}

	out := make([]*pages.Page, 0, len(r.cfg.Pages))
	for _, n := range r.cfg.Pages {
		if n < 1 || n > count {
			return nil, pdferr.PageOutOfRange(n, count)
		}
		page, err := tree.GetPage(n - 1)
		if err != nil {
			return nil, pdferr.Corrupted(err, "page %d: %v", n, err)
		}
		out = append(out, page)
	}
	return out, nil
}

// buildSection turns one page into a section. On error the returned
// section still carries the page geometry and any resources gathered
// before the failure, so lenient callers keep the partial result.
func (r *Reader) buildSection(page *pages.Page, index int, analyzer *layout.Analyzer) (model.Section, []model.Resource, error) {
	section := model.Section{
		Index:    index,
		Width:    page.Width(),
		Height:   page.Height(),
		Rotation: page.Rotate(),
	}

	var images []pageImage
	if !r.cfg.TextOnly {
		images = r.imageXObjects(page)
	}

	var pageResources []model.Resource
	if r.cfg.SkipResources {
		for _, img := range images {
			section.Resources = append(section.Resources, fmt.Sprintf("page%d_%s", page.Number(), img.name))
		}
	} else {
		pageResources = r.collectPageImages(page.Number(), images)
		for _, rsc := range pageResources {
			section.Resources = append(section.Resources, rsc.ID)
		}
	}

	data, err := page.ContentData()
	if err != nil {
		return section, pageResources, pdferr.Parse(err, "page %d content: %v", page.Number(), err)
	}
	if err := r.checkStreamLimit(len(data)); err != nil {
		return section, pageResources, err
	}

	ops, err := contentstream.NewParser(data).Parse()
	if err != nil {
		return section, pageResources, pdferr.Parse(err, "page %d content stream: %v", page.Number(), err)
	}

	extractor := text.NewExtractor()
	if err := extractor.RegisterFontsFromResources(page.Resources(), r.resolver); err != nil {
		r.log.WithError(err).WithField("page", page.Number()).Debug("font registration incomplete")
	}
	extractor.Process(ops)
	section.Blocks = analyzer.AnalyzePage(extractor.Spans())

	if len(images) > 0 {
		names := make(map[string]bool, len(images))
		for _, img := range images {
			names[img.name] = true
		}
		for _, ref := range imagePlacements(ops, names, page.Number()) {
			section.Blocks = append(section.Blocks, ref)
		}
	}
	return section, pageResources, nil
}

// pageImage pairs an image XObject with its resource name.
type pageImage struct {
	name   string
	stream *core.Stream
}

// imageXObjects finds a page's image XObjects in sorted name order, so
// ids derived from them stay stable between parses.
func (r *Reader) imageXObjects(page *pages.Page) []pageImage {
	resources := page.Resources()
	if resources == nil {
		return nil
	}
	xobjObj := resources.Get("XObject")
	if xobjObj == nil {
		return nil
	}
	xobjects, err := r.resolver.ResolveDict(xobjObj)
	if err != nil {
		r.log.WithError(err).Debug("XObject dictionary unreadable")
		return nil
	}

	names := xobjects.Keys()
	sort.Strings(names)

	var out []pageImage
	for _, name := range names {
		resolved, err := r.resolver.Resolve(xobjects.Get(name))
		if err != nil {
			continue
		}
		stream, ok := resolved.(*core.Stream)
		if !ok {
			continue
		}
		if sub, ok := stream.Dict.GetName("Subtype"); !ok || sub != "Image" {
			continue
		}
		out = append(out, pageImage{name: name, stream: stream})
	}
	return out
}

// imagePlacements replays the operations against a graphics state and
// records each Do of a known image with its placed size: for an image
// XObject the CTM maps the unit square onto the page, so the matrix
// coefficients are the drawn extent in points.
func imagePlacements(ops []contentstream.Operation, images map[string]bool, pageNum int) []*model.ImageRef {
	state := graphicsstate.New()
	var refs []*model.ImageRef
	for _, op := range ops {
		if op.Operator != "Do" {
			_ = state.Apply(op)
			continue
		}
		name, ok := op.GetName(0)
		if !ok || !images[string(name)] {
			continue
		}
		refs = append(refs, &model.ImageRef{
			ResourceID: fmt.Sprintf("page%d_%s", pageNum, name),
			Width:      math.Abs(state.CTM[0]),
			Height:     math.Abs(state.CTM[3]),
		})
	}
	return refs
}
