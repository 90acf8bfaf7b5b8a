package core

import (
	"bytes"
	"fmt"
)

// ObjectStream gives access to the objects packed inside a /Type /ObjStm
// stream (PDF 1.5+). The stream payload starts with N pairs of integers
// (object number, relative offset) followed by the object bodies; decoding
// and header parsing happen lazily on first access.
type ObjectStream struct {
	stream  *Stream
	n       int
	first   int
	extends *IndirectRef

	decoded []byte
	offsets []objStmEntry
	cache   map[int]Object // keyed by index
}

type objStmEntry struct {
	objNum int
	offset int // relative to /First
}

// NewObjectStream validates stream as an object stream and wraps it.
func NewObjectStream(stream *Stream) (*ObjectStream, error) {
	if stream == nil {
		return nil, fmt.Errorf("nil stream")
	}
	if typ, ok := stream.Dict.GetName("Type"); !ok || typ != "ObjStm" {
		return nil, fmt.Errorf("stream /Type is %v, want /ObjStm", stream.Dict.Get("Type"))
	}

	n, ok := stream.Dict.GetInt("N")
	if !ok || n < 0 {
		return nil, fmt.Errorf("object stream has invalid /N %v", stream.Dict.Get("N"))
	}
	first, ok := stream.Dict.GetInt("First")
	if !ok || first < 0 {
		return nil, fmt.Errorf("object stream has invalid /First %v", stream.Dict.Get("First"))
	}

	var extends *IndirectRef
	if ref, ok := stream.Dict.GetIndirectRef("Extends"); ok {
		extends = &ref
	}

	return &ObjectStream{
		stream:  stream,
		n:       int(n),
		first:   int(first),
		extends: extends,
		cache:   make(map[int]Object),
	}, nil
}

// N returns the number of objects the stream declares.
func (os *ObjectStream) N() int { return os.n }

// Extends returns the stream this one extends, or nil.
func (os *ObjectStream) Extends() *IndirectRef { return os.extends }

func (os *ObjectStream) decode() error {
	if os.decoded != nil {
		return nil
	}
	decoded, err := os.stream.Decoded()
	if err != nil {
		return fmt.Errorf("decode object stream: %w", err)
	}
	if os.first > len(decoded) {
		return fmt.Errorf("/First %d exceeds decoded size %d", os.first, len(decoded))
	}
	os.decoded = decoded

	parser := NewParser(bytes.NewReader(decoded[:os.first]))
	os.offsets = make([]objStmEntry, 0, os.n)
	for i := 0; i < os.n; i++ {
		numObj, err := parser.ParseObject()
		if err != nil {
			return fmt.Errorf("header pair %d: %w", i, err)
		}
		num, ok := numObj.(Int)
		if !ok {
			return fmt.Errorf("header pair %d: object number is %T", i, numObj)
		}
		offObj, err := parser.ParseObject()
		if err != nil {
			return fmt.Errorf("header pair %d: %w", i, err)
		}
		off, ok := offObj.(Int)
		if !ok {
			return fmt.Errorf("header pair %d: offset is %T", i, offObj)
		}
		os.offsets = append(os.offsets, objStmEntry{objNum: int(num), offset: int(off)})
	}
	return nil
}

// GetObjectByIndex parses the object at the 0-based header index and
// returns it with its object number.
func (os *ObjectStream) GetObjectByIndex(index int) (Object, int, error) {
	if err := os.decode(); err != nil {
		return nil, 0, err
	}
	if index < 0 || index >= len(os.offsets) {
		return nil, 0, fmt.Errorf("index %d out of range [0, %d)", index, len(os.offsets))
	}
	if obj, ok := os.cache[index]; ok {
		return obj, os.offsets[index].objNum, nil
	}

	start := os.first + os.offsets[index].offset
	end := len(os.decoded)
	if index+1 < len(os.offsets) {
		end = os.first + os.offsets[index+1].offset
	}
	if start >= len(os.decoded) {
		return nil, 0, fmt.Errorf("object %d starts at %d, past decoded size %d",
			os.offsets[index].objNum, start, len(os.decoded))
	}
	if end > len(os.decoded) {
		end = len(os.decoded)
	}

	parser := NewParser(bytes.NewReader(os.decoded[start:end]))
	obj, err := parser.ParseObject()
	if err != nil {
		return nil, 0, fmt.Errorf("object at index %d: %w", index, err)
	}
	os.cache[index] = obj
	return obj, os.offsets[index].objNum, nil
}

// GetObjectByNumber finds an object by its object number and returns it
// with its index.
func (os *ObjectStream) GetObjectByNumber(objNum int) (Object, int, error) {
	if err := os.decode(); err != nil {
		return nil, 0, err
	}
	for i, entry := range os.offsets {
		if entry.objNum == objNum {
			obj, _, err := os.GetObjectByIndex(i)
			return obj, i, err
		}
	}
	return nil, 0, fmt.Errorf("object %d not present in object stream", objNum)
}
