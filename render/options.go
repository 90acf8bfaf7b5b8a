package render

// MarkdownOptions controls Markdown output shaping. The zero value renders
// bare content: no frontmatter, no escaping, single newlines between
// plain paragraphs.
type MarkdownOptions struct {
	// Frontmatter prepends a YAML metadata block before any content.
	Frontmatter bool

	// EscapeSpecial escapes Markdown-significant characters in extracted
	// text, so literal asterisks and brackets survive a Markdown viewer.
	EscapeSpecial bool

	// ParagraphSpacing separates plain paragraphs with a blank line
	// instead of a single newline. Headings, list blocks, and tables
	// always end with a blank line regardless.
	ParagraphSpacing bool

	// Cleanup post-processes the rendered output when non-nil.
	Cleanup *CleanupOptions
}

// Format selects the JSON presentation. It never changes the schema.
type Format int

const (
	// Pretty indents with two spaces.
	Pretty Format = iota
	// Compact emits minimal whitespace.
	Compact
)

func (f Format) String() string {
	if f == Compact {
		return "compact"
	}
	return "pretty"
}
