package resolver

import (
	"fmt"

	"github.com/unpdf/unpdf/core"
)

// ObjectReader loads indirect objects on demand. The document reader
// satisfies this; tests substitute a map-backed fake.
type ObjectReader interface {
	GetObject(objNum int) (core.Object, error)
	ResolveReference(ref core.IndirectRef) (core.Object, error)
}

// ObjectResolver follows indirect references with cycle detection and a
// recursion cap. Resolve follows reference chains shallowly; ResolveDeep
// expands every nested reference, which is only safe for structures without
// back-pointers (metadata, small dictionaries). Page trees carry /Parent
// references and must use shallow resolution.
type ObjectResolver struct {
	reader   ObjectReader
	maxDepth int
}

// Option configures the resolver.
type Option func(*ObjectResolver)

// WithMaxDepth caps reference-chain length and deep-resolution nesting.
func WithMaxDepth(depth int) Option {
	return func(r *ObjectResolver) {
		if depth > 0 {
			r.maxDepth = depth
		}
	}
}

const defaultMaxDepth = 64

// NewResolver returns a resolver reading through reader.
func NewResolver(reader ObjectReader, opts ...Option) *ObjectResolver {
	r := &ObjectResolver{
		reader:   reader,
		maxDepth: defaultMaxDepth,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve follows obj through any chain of indirect references and returns
// the first non-reference object. Non-references come back unchanged.
func (r *ObjectResolver) Resolve(obj core.Object) (core.Object, error) {
	visited := make(map[int]bool)
	for depth := 0; ; depth++ {
		ref, ok := obj.(core.IndirectRef)
		if !ok {
			return obj, nil
		}
		if depth >= r.maxDepth {
			return nil, fmt.Errorf("reference chain longer than %d", r.maxDepth)
		}
		if visited[ref.Number] {
			return nil, fmt.Errorf("circular reference through object %d", ref.Number)
		}
		visited[ref.Number] = true

		resolved, err := r.reader.ResolveReference(ref)
		if err != nil {
			return nil, fmt.Errorf("resolve %d %d R: %w", ref.Number, ref.Generation, err)
		}
		obj = resolved
	}
}

// ResolveDict resolves obj and asserts the result is a dictionary.
func (r *ObjectResolver) ResolveDict(obj core.Object) (core.Dict, error) {
	resolved, err := r.Resolve(obj)
	if err != nil {
		return nil, err
	}
	dict, ok := resolved.(core.Dict)
	if !ok {
		return nil, fmt.Errorf("resolved to %T, want dictionary", resolved)
	}
	return dict, nil
}

// ResolveArray resolves obj and asserts the result is an array.
func (r *ObjectResolver) ResolveArray(obj core.Object) (core.Array, error) {
	resolved, err := r.Resolve(obj)
	if err != nil {
		return nil, err
	}
	arr, ok := resolved.(core.Array)
	if !ok {
		return nil, fmt.Errorf("resolved to %T, want array", resolved)
	}
	return arr, nil
}

// ResolveStream resolves obj and asserts the result is a stream.
func (r *ObjectResolver) ResolveStream(obj core.Object) (*core.Stream, error) {
	resolved, err := r.Resolve(obj)
	if err != nil {
		return nil, err
	}
	stream, ok := resolved.(*core.Stream)
	if !ok {
		return nil, fmt.Errorf("resolved to %T, want stream", resolved)
	}
	return stream, nil
}

// ResolveDeep resolves obj and every reference nested in dictionaries,
// arrays, and stream dictionaries. A reference cycle is an error.
func (r *ObjectResolver) ResolveDeep(obj core.Object) (core.Object, error) {
	return r.resolveDeep(obj, make(map[int]bool), 0)
}

func (r *ObjectResolver) resolveDeep(obj core.Object, visited map[int]bool, depth int) (core.Object, error) {
	if depth >= r.maxDepth {
		return nil, fmt.Errorf("resolution deeper than %d", r.maxDepth)
	}

	switch v := obj.(type) {
	case core.IndirectRef:
		if visited[v.Number] {
			return nil, fmt.Errorf("circular reference through object %d", v.Number)
		}
		visited[v.Number] = true
		// Unmark on the way out so the same object may appear in sibling
		// branches.
		defer delete(visited, v.Number)

		resolved, err := r.reader.ResolveReference(v)
		if err != nil {
			return nil, fmt.Errorf("resolve %d %d R: %w", v.Number, v.Generation, err)
		}
		return r.resolveDeep(resolved, visited, depth+1)

	case core.Dict:
		resolved := make(core.Dict, len(v))
		for key, value := range v {
			rv, err := r.resolveDeep(value, visited, depth+1)
			if err != nil {
				return nil, fmt.Errorf("key /%s: %w", key, err)
			}
			resolved[key] = rv
		}
		return resolved, nil

	case core.Array:
		resolved := make(core.Array, len(v))
		for i, elem := range v {
			re, err := r.resolveDeep(elem, visited, depth+1)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			resolved[i] = re
		}
		return resolved, nil

	case *core.Stream:
		dict, err := r.resolveDeep(v.Dict, visited, depth+1)
		if err != nil {
			return nil, fmt.Errorf("stream dictionary: %w", err)
		}
		return &core.Stream{Dict: dict.(core.Dict), Data: v.Data}, nil

	default:
		return obj, nil
	}
}
