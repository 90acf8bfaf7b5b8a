package model

import (
	"time"

	"github.com/unpdf/unpdf/pdferr"
)

// Document is the fully materialized result of parsing a PDF: metadata,
// ordered sections, extracted resources, and the bookmark outline. It holds
// no reference to the byte source it came from and is immutable once built,
// so concurrent reads are safe.
type Document struct {
	Metadata  Metadata
	Sections  []Section
	Resources []Resource
	Outline   []OutlineItem // empty when the document has no bookmarks

	resourceIndex map[string]int
}

// NewDocument assembles a document and its resource lookup index.
func NewDocument(meta Metadata, sections []Section, resources []Resource, outline []OutlineItem) *Document {
	index := make(map[string]int, len(resources))
	for i, res := range resources {
		index[res.ID] = i
	}
	return &Document{
		Metadata:      meta,
		Sections:      sections,
		Resources:     resources,
		Outline:       outline,
		resourceIndex: index,
	}
}

// SectionCount returns the number of sections.
func (d *Document) SectionCount() int { return len(d.Sections) }

// ResourceCount returns the number of extracted resources.
func (d *Document) ResourceCount() int { return len(d.Resources) }

// ResourceIDs returns every resource id in extraction order: page order,
// then resource name order within a page. The order is stable for the
// document's lifetime.
func (d *Document) ResourceIDs() []string {
	ids := make([]string, len(d.Resources))
	for i, res := range d.Resources {
		ids[i] = res.ID
	}
	return ids
}

// ResourceInfo returns the resource record for id.
func (d *Document) ResourceInfo(id string) (*Resource, error) {
	i, ok := d.resourceIndex[id]
	if !ok {
		return nil, pdferr.NotFound(id)
	}
	return &d.Resources[i], nil
}

// ResourceData returns the decoded bytes of the resource. The slice is the
// document's own copy; callers that need to mutate must copy it.
func (d *Document) ResourceData(id string) ([]byte, error) {
	res, err := d.ResourceInfo(id)
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

// Metadata is the document-level information from the header, the trailer,
// and the /Info dictionary. The string fields are pointers so that a key
// absent from /Info (nil) is distinguishable from one present with an empty
// value (pointer to "").
type Metadata struct {
	Title    *string
	Author   *string
	Subject  *string
	Keywords *string
	Creator  *string
	Producer *string
	Created  *time.Time
	Modified *time.Time

	PDFVersion string // from the %PDF-x.y header
	PageCount  int
	Encrypted  bool
}

// OutlineItem is one bookmark: its title, the 1-based page it targets
// (0 when the destination could not be resolved), its depth starting at 1,
// and any nested bookmarks.
type OutlineItem struct {
	Title    string
	Page     int
	Level    int
	Children []OutlineItem
}
