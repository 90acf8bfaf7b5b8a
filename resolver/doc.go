// Package resolver follows indirect references in PDF object graphs.
//
// PDF objects refer to each other through references like "5 0 R". The
// ObjectResolver turns those into the objects they point at, reading
// through any type that satisfies ObjectReader:
//
//	res := resolver.NewResolver(reader)
//	obj, err := res.Resolve(ref)           // follow one reference chain
//	dict, err := res.ResolveDict(pageObj)  // follow and assert a dictionary
//	full, err := res.ResolveDeep(infoDict) // expand every nested reference
//
// Resolution detects reference cycles and caps recursion depth
// (configurable with WithMaxDepth). ResolveDeep treats a cycle as an
// error, so it must not be used on structures with back-pointers such as
// page trees; Resolve and the typed helpers are safe everywhere.
package resolver
