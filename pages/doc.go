// Package pages walks the document catalog and page tree.
//
// The page tree is flattened once into an ordered list of Page values, with
// the inheritable attributes (/MediaBox, /Resources, /Rotate) resolved
// during the walk so each Page answers for itself. The walker tolerates the
// usual real-world damage: missing /Type entries, reference cycles, and
// absent media boxes, which fall back to US Letter.
package pages
