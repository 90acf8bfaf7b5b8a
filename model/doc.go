// Package model defines the extracted document structure: Document,
// Section, the Block variants (Paragraph, Table, ImageRef), Metadata,
// Resource, and OutlineItem.
//
// The model is pure data. Parsing builds it eagerly; renderers read it
// without mutation. A Document is immutable after construction and safe
// for concurrent reads.
//
// Metadata string fields are pointers: nil means the key was absent from
// the document's /Info dictionary, while a pointer to "" means it was
// present and empty. Renderers preserve that distinction.
package model
