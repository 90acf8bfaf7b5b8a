package core

import (
	"fmt"
	"strconv"
	"strings"
)

// Object is implemented by every PDF object the parser can produce.
type Object interface {
	Type() ObjectType
	String() string
}

// ObjectType discriminates the concrete object kinds.
type ObjectType int

const (
	ObjNull ObjectType = iota
	ObjBool
	ObjInt
	ObjReal
	ObjString
	ObjName
	ObjArray
	ObjDict
	ObjStream
	ObjIndirect
)

func (t ObjectType) String() string {
	switch t {
	case ObjNull:
		return "Null"
	case ObjBool:
		return "Bool"
	case ObjInt:
		return "Int"
	case ObjReal:
		return "Real"
	case ObjString:
		return "String"
	case ObjName:
		return "Name"
	case ObjArray:
		return "Array"
	case ObjDict:
		return "Dict"
	case ObjStream:
		return "Stream"
	case ObjIndirect:
		return "IndirectRef"
	default:
		return "Unknown"
	}
}

// Null is the PDF null object.
type Null struct{}

func (Null) Type() ObjectType { return ObjNull }
func (Null) String() string   { return "null" }

// Bool is a PDF boolean.
type Bool bool

func (b Bool) Type() ObjectType { return ObjBool }
func (b Bool) String() string {
	if b {
		return "true"
	}
	return "false"
}

// Int is a PDF integer.
type Int int64

func (i Int) Type() ObjectType { return ObjInt }
func (i Int) String() string   { return strconv.FormatInt(int64(i), 10) }

// Real is a PDF real number.
type Real float64

func (r Real) Type() ObjectType { return ObjReal }
func (r Real) String() string   { return strconv.FormatFloat(float64(r), 'f', -1, 64) }

// String is a PDF string. It holds raw bytes as read from the file; text
// decoding (UTF-16, PDFDoc encoding) happens in higher layers.
type String string

func (s String) Type() ObjectType { return ObjString }
func (s String) String() string   { return string(s) }

// Name is a PDF name without the leading slash.
type Name string

func (n Name) Type() ObjectType { return ObjName }
func (n Name) String() string   { return "/" + string(n) }

// AsNumber converts an Int or Real to float64.
func AsNumber(obj Object) (float64, bool) {
	switch v := obj.(type) {
	case Int:
		return float64(v), true
	case Real:
		return float64(v), true
	}
	return 0, false
}

// AsInt converts an Int, or a Real with no fractional part, to int.
func AsInt(obj Object) (int, bool) {
	switch v := obj.(type) {
	case Int:
		return int(v), true
	case Real:
		if v == Real(int64(v)) {
			return int(v), true
		}
	}
	return 0, false
}

// Array is a PDF array.
type Array []Object

func (a Array) Type() ObjectType { return ObjArray }
func (a Array) String() string {
	parts := make([]string, 0, len(a))
	for _, obj := range a {
		parts = append(parts, obj.String())
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// Len returns the number of elements.
func (a Array) Len() int { return len(a) }

// Get returns the element at index, or nil when out of range.
func (a Array) Get(index int) Object {
	if index < 0 || index >= len(a) {
		return nil
	}
	return a[index]
}

// GetInt returns the integer at index.
func (a Array) GetInt(index int) (Int, bool) {
	i, ok := a.Get(index).(Int)
	return i, ok
}

// GetName returns the name at index.
func (a Array) GetName(index int) (Name, bool) {
	n, ok := a.Get(index).(Name)
	return n, ok
}

// GetNumber returns the element at index as a float64 when it is an Int
// or a Real.
func (a Array) GetNumber(index int) (float64, bool) {
	return AsNumber(a.Get(index))
}

// Dict is a PDF dictionary keyed by name (without the slash).
type Dict map[string]Object

func (d Dict) Type() ObjectType { return ObjDict }
func (d Dict) String() string {
	parts := make([]string, 0, len(d))
	for key, val := range d {
		parts = append(parts, fmt.Sprintf("/%s %s", key, val.String()))
	}
	return "<<" + strings.Join(parts, " ") + ">>"
}

// Get returns the raw value for key, nil when absent.
func (d Dict) Get(key string) Object { return d[key] }

// Has reports whether key is present.
func (d Dict) Has(key string) bool {
	_, ok := d[key]
	return ok
}

// Set stores value under key.
func (d Dict) Set(key string, value Object) { d[key] = value }

// Keys returns the keys in map order.
func (d Dict) Keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	return keys
}

// GetName returns the name value for key.
func (d Dict) GetName(key string) (Name, bool) {
	n, ok := d[key].(Name)
	return n, ok
}

// GetInt returns the integer value for key.
func (d Dict) GetInt(key string) (Int, bool) {
	i, ok := d[key].(Int)
	return i, ok
}

// GetReal returns the real value for key.
func (d Dict) GetReal(key string) (Real, bool) {
	r, ok := d[key].(Real)
	return r, ok
}

// GetNumber returns the value for key as float64 when it is numeric.
func (d Dict) GetNumber(key string) (float64, bool) {
	return AsNumber(d[key])
}

// GetBool returns the boolean value for key.
func (d Dict) GetBool(key string) (Bool, bool) {
	b, ok := d[key].(Bool)
	return b, ok
}

// GetString returns the string value for key.
func (d Dict) GetString(key string) (String, bool) {
	s, ok := d[key].(String)
	return s, ok
}

// GetDict returns the dictionary value for key.
func (d Dict) GetDict(key string) (Dict, bool) {
	sub, ok := d[key].(Dict)
	return sub, ok
}

// GetArray returns the array value for key.
func (d Dict) GetArray(key string) (Array, bool) {
	arr, ok := d[key].(Array)
	return arr, ok
}

// GetStream returns the stream value for key.
func (d Dict) GetStream(key string) (*Stream, bool) {
	s, ok := d[key].(*Stream)
	return s, ok
}

// GetIndirectRef returns the indirect reference stored under key.
func (d Dict) GetIndirectRef(key string) (IndirectRef, bool) {
	ref, ok := d[key].(IndirectRef)
	return ref, ok
}

// IndirectRef is a reference to an indirect object ("n g R").
type IndirectRef struct {
	Number     int
	Generation int
}

func (r IndirectRef) Type() ObjectType { return ObjIndirect }
func (r IndirectRef) String() string {
	return fmt.Sprintf("%d %d R", r.Number, r.Generation)
}

// IndirectObject pairs a parsed object with the reference that names it.
type IndirectObject struct {
	Ref    IndirectRef
	Object Object
}
