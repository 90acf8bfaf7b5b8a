// Package render turns a parsed document into Markdown, plain text, or
// JSON. All three renderers are pure functions of the document and their
// options: they never mutate the document, never cache, and re-render on
// every call, so one immutable document can be rendered concurrently.
//
// Markdown output is shaped by [MarkdownOptions]:
//
//	md, err := render.Markdown(doc, render.MarkdownOptions{Frontmatter: true})
//
// JSON output carries the same schema in both [Pretty] and [Compact]
// form; the format selects whitespace only. The optional [Cleanup]
// pipeline post-processes rendered text and is never applied unless
// requested.
package render
