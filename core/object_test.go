package core

import (
	"strings"
	"testing"
)

func TestObjectTypeString(t *testing.T) {
	tests := []struct {
		typ  ObjectType
		want string
	}{
		{ObjNull, "Null"},
		{ObjBool, "Bool"},
		{ObjInt, "Int"},
		{ObjReal, "Real"},
		{ObjString, "String"},
		{ObjName, "Name"},
		{ObjArray, "Array"},
		{ObjDict, "Dict"},
		{ObjStream, "Stream"},
		{ObjIndirect, "IndirectRef"},
		{ObjectType(99), "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("ObjectType(%d).String() = %q, want %q", tt.typ, got, tt.want)
		}
	}
}

func TestScalarObjects(t *testing.T) {
	tests := []struct {
		name     string
		obj      Object
		wantType ObjectType
		wantStr  string
	}{
		{"null", Null{}, ObjNull, "null"},
		{"true", Bool(true), ObjBool, "true"},
		{"false", Bool(false), ObjBool, "false"},
		{"int", Int(-17), ObjInt, "-17"},
		{"real", Real(3.14), ObjReal, "3.14"},
		{"real integral", Real(42), ObjReal, "42"},
		{"string", String("hello"), ObjString, "hello"},
		{"name", Name("Type"), ObjName, "/Type"},
		{"ref", IndirectRef{Number: 5, Generation: 2}, ObjIndirect, "5 2 R"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.obj.Type() != tt.wantType {
				t.Errorf("Type() = %v, want %v", tt.obj.Type(), tt.wantType)
			}
			if tt.obj.String() != tt.wantStr {
				t.Errorf("String() = %q, want %q", tt.obj.String(), tt.wantStr)
			}
		})
	}
}

func TestAsNumber(t *testing.T) {
	tests := []struct {
		name   string
		obj    Object
		want   float64
		wantOK bool
	}{
		{"int", Int(7), 7, true},
		{"real", Real(2.5), 2.5, true},
		{"name", Name("Seven"), 0, false},
		{"nil", nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AsNumber(tt.obj)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("AsNumber() = %v, %v; want %v, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestAsInt(t *testing.T) {
	tests := []struct {
		name   string
		obj    Object
		want   int
		wantOK bool
	}{
		{"int", Int(7), 7, true},
		{"integral real", Real(12), 12, true},
		{"fractional real", Real(12.5), 0, false},
		{"string", String("7"), 0, false},
		{"nil", nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AsInt(tt.obj)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("AsInt() = %v, %v; want %v, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestArray(t *testing.T) {
	t.Run("Get bounds", func(t *testing.T) {
		arr := Array{Int(10), Int(20), Int(30)}

		if obj := arr.Get(0); obj != Int(10) {
			t.Errorf("Get(0) = %v, want 10", obj)
		}
		if obj := arr.Get(-1); obj != nil {
			t.Errorf("Get(-1) = %v, want nil", obj)
		}
		if obj := arr.Get(3); obj != nil {
			t.Errorf("Get(3) = %v, want nil", obj)
		}
		if arr.Len() != 3 {
			t.Errorf("Len() = %d, want 3", arr.Len())
		}
	})

	t.Run("typed getters", func(t *testing.T) {
		arr := Array{Int(42), Name("DeviceRGB"), Real(1.5)}

		if v, ok := arr.GetInt(0); !ok || v != Int(42) {
			t.Errorf("GetInt(0) = %v, %v; want 42, true", v, ok)
		}
		if _, ok := arr.GetInt(1); ok {
			t.Error("GetInt(1) should fail for a name")
		}
		if v, ok := arr.GetName(1); !ok || v != Name("DeviceRGB") {
			t.Errorf("GetName(1) = %v, %v; want DeviceRGB, true", v, ok)
		}
		if v, ok := arr.GetNumber(2); !ok || v != 1.5 {
			t.Errorf("GetNumber(2) = %v, %v; want 1.5, true", v, ok)
		}
		if v, ok := arr.GetNumber(0); !ok || v != 42 {
			t.Errorf("GetNumber(0) = %v, %v; want 42, true", v, ok)
		}
		if _, ok := arr.GetNumber(10); ok {
			t.Error("GetNumber(10) should fail out of range")
		}
	})

	t.Run("String", func(t *testing.T) {
		arr := Array{Array{Int(1), Int(2)}, Int(3)}
		if got := arr.String(); got != "[[1 2] 3]" {
			t.Errorf("String() = %q, want %q", got, "[[1 2] 3]")
		}
		if got := (Array{}).String(); got != "[]" {
			t.Errorf("empty String() = %q, want %q", got, "[]")
		}
	})
}

func TestDict(t *testing.T) {
	t.Run("typed getters", func(t *testing.T) {
		dict := Dict{
			"Type":   Name("Page"),
			"Count":  Int(10),
			"Scale":  Real(1.5),
			"Title":  String("Report"),
			"Open":   Bool(true),
			"Kids":   Array{IndirectRef{Number: 1}, IndirectRef{Number: 2}},
			"Group":  Dict{"S": Name("Transparency")},
			"Parent": IndirectRef{Number: 7, Generation: 0},
		}

		if v, ok := dict.GetName("Type"); !ok || v != Name("Page") {
			t.Errorf("GetName(Type) = %v, %v", v, ok)
		}
		if v, ok := dict.GetInt("Count"); !ok || v != Int(10) {
			t.Errorf("GetInt(Count) = %v, %v", v, ok)
		}
		if v, ok := dict.GetReal("Scale"); !ok || v != Real(1.5) {
			t.Errorf("GetReal(Scale) = %v, %v", v, ok)
		}
		if v, ok := dict.GetString("Title"); !ok || v != String("Report") {
			t.Errorf("GetString(Title) = %v, %v", v, ok)
		}
		if v, ok := dict.GetBool("Open"); !ok || v != Bool(true) {
			t.Errorf("GetBool(Open) = %v, %v", v, ok)
		}
		if arr, ok := dict.GetArray("Kids"); !ok || arr.Len() != 2 {
			t.Errorf("GetArray(Kids) = %v, %v", arr, ok)
		}
		if sub, ok := dict.GetDict("Group"); !ok || !sub.Has("S") {
			t.Errorf("GetDict(Group) = %v, %v", sub, ok)
		}
		if ref, ok := dict.GetIndirectRef("Parent"); !ok || ref.Number != 7 {
			t.Errorf("GetIndirectRef(Parent) = %v, %v", ref, ok)
		}

		if _, ok := dict.GetInt("Type"); ok {
			t.Error("GetInt(Type) should fail for a name")
		}
		if _, ok := dict.GetName("Missing"); ok {
			t.Error("GetName(Missing) should fail")
		}
	})

	t.Run("GetNumber accepts Int and Real", func(t *testing.T) {
		dict := Dict{"A": Int(3), "B": Real(0.25), "C": Name("x")}

		if v, ok := dict.GetNumber("A"); !ok || v != 3 {
			t.Errorf("GetNumber(A) = %v, %v; want 3, true", v, ok)
		}
		if v, ok := dict.GetNumber("B"); !ok || v != 0.25 {
			t.Errorf("GetNumber(B) = %v, %v; want 0.25, true", v, ok)
		}
		if _, ok := dict.GetNumber("C"); ok {
			t.Error("GetNumber(C) should fail for a name")
		}
	})

	t.Run("GetStream", func(t *testing.T) {
		stream := &Stream{Dict: Dict{}, Data: []byte("abc")}
		dict := Dict{"Contents": stream, "NotStream": Int(1)}

		if s, ok := dict.GetStream("Contents"); !ok || string(s.Data) != "abc" {
			t.Errorf("GetStream(Contents) = %v, %v", s, ok)
		}
		if _, ok := dict.GetStream("NotStream"); ok {
			t.Error("GetStream(NotStream) should fail")
		}
	})

	t.Run("Has Set Keys", func(t *testing.T) {
		dict := make(Dict)
		dict.Set("Key", Int(42))

		if !dict.Has("Key") {
			t.Error("Has(Key) = false after Set")
		}
		if dict.Has("Missing") {
			t.Error("Has(Missing) = true")
		}

		dict.Set("Other", Int(1))
		keys := dict.Keys()
		if len(keys) != 2 {
			t.Errorf("Keys() returned %d keys, want 2", len(keys))
		}
	})

	t.Run("String", func(t *testing.T) {
		dict := Dict{"Type": Name("Page")}
		if got := dict.String(); !strings.Contains(got, "/Type /Page") {
			t.Errorf("String() = %q, missing /Type /Page", got)
		}
		if got := (Dict{}).String(); got != "<<>>" {
			t.Errorf("empty String() = %q, want <<>>", got)
		}
	})
}

func TestIndirectObject(t *testing.T) {
	indirect := IndirectObject{
		Ref:    IndirectRef{Number: 5, Generation: 0},
		Object: Int(42),
	}

	if indirect.Ref.Number != 5 || indirect.Ref.Generation != 0 {
		t.Errorf("Ref = %v, want 5 0", indirect.Ref)
	}
	if indirect.Object != Int(42) {
		t.Errorf("Object = %v, want 42", indirect.Object)
	}
}
