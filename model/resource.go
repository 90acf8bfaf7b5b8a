package model

// ResourceKind classifies extracted resources.
type ResourceKind int

const (
	ResourceImage ResourceKind = iota + 1
	ResourceFont
	ResourceAttachment
	ResourceOther
)

func (k ResourceKind) String() string {
	switch k {
	case ResourceImage:
		return "image"
	case ResourceFont:
		return "font"
	case ResourceAttachment:
		return "attachment"
	default:
		return "other"
	}
}

// Resource is one extracted binary resource. IDs are stable within a
// document: images use "page{page}_{name}" with the 1-based page number and
// the page's XObject name, attachments "attach_{n}", embedded font programs
// "font_{n}". Data is decoded (filters applied) except for DCT/JPX images,
// whose payload is already a complete JPEG/JPEG 2000 file; len(Data) is the
// authoritative length everywhere.
type Resource struct {
	ID   string
	Kind ResourceKind
	MIME string
	Data []byte

	// Image attributes, zero when unknown or not an image.
	Width            int
	Height           int
	ColorSpace       string
	BitsPerComponent int

	// Attachment attributes.
	Filename string
}
