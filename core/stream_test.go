package core

import (
	"bytes"
	"compress/zlib"
	"encoding/hex"
	"testing"
)

func deflate(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		t.Fatalf("zlib write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("zlib close: %v", err)
	}
	return buf.Bytes()
}

func TestStreamDecodedRaw(t *testing.T) {
	stream := &Stream{Dict: Dict{"Length": Int(9)}, Data: []byte("test data")}

	decoded, err := stream.Decoded()
	if err != nil {
		t.Fatalf("Decoded() error = %v", err)
	}
	if string(decoded) != "test data" {
		t.Errorf("Decoded() = %q, want %q", decoded, "test data")
	}
}

func TestStreamDecodedFlate(t *testing.T) {
	plain := []byte("BT /F1 12 Tf (Hello) Tj ET")
	compressed := deflate(t, plain)

	stream := &Stream{
		Dict: Dict{
			"Filter": Name("FlateDecode"),
			"Length": Int(len(compressed)),
		},
		Data: compressed,
	}

	decoded, err := stream.Decoded()
	if err != nil {
		t.Fatalf("Decoded() error = %v", err)
	}
	if !bytes.Equal(decoded, plain) {
		t.Errorf("Decoded() = %q, want %q", decoded, plain)
	}
}

func TestStreamDecodedFilterChain(t *testing.T) {
	// On-disk form is hex(zlib(plain)); decoding applies the array in order.
	plain := []byte("chained stream content")
	encoded := []byte(hex.EncodeToString(deflate(t, plain)) + ">")

	stream := &Stream{
		Dict: Dict{
			"Filter": Array{Name("ASCIIHexDecode"), Name("FlateDecode")},
			"Length": Int(len(encoded)),
		},
		Data: encoded,
	}

	decoded, err := stream.Decoded()
	if err != nil {
		t.Fatalf("Decoded() error = %v", err)
	}
	if !bytes.Equal(decoded, plain) {
		t.Errorf("Decoded() = %q, want %q", decoded, plain)
	}
}

func TestStreamDecodedChainWithParms(t *testing.T) {
	// PNG Sub-filtered row compressed with flate, then hex encoded. The
	// predictor parameters belong to the second filter in the chain.
	encoded := []byte(hex.EncodeToString(deflate(t, []byte{1, 10, 10, 10, 10})) + ">")

	stream := &Stream{
		Dict: Dict{
			"Filter": Array{Name("ASCIIHexDecode"), Name("FlateDecode")},
			"DecodeParms": Array{
				Null{},
				Dict{
					"Predictor":        Int(12),
					"Colors":           Int(1),
					"BitsPerComponent": Int(8),
					"Columns":          Int(4),
				},
			},
			"Length": Int(len(encoded)),
		},
		Data: encoded,
	}

	decoded, err := stream.Decoded()
	if err != nil {
		t.Fatalf("Decoded() error = %v", err)
	}
	want := []byte{10, 20, 30, 40}
	if !bytes.Equal(decoded, want) {
		t.Errorf("Decoded() = %v, want %v", decoded, want)
	}
}

func TestStreamDecodedImagePassthrough(t *testing.T) {
	// DCT and JPX payloads are complete image files; they stay encoded.
	jpegish := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x01, 0x02}

	for _, filter := range []string{"DCTDecode", "JPXDecode"} {
		t.Run(filter, func(t *testing.T) {
			stream := &Stream{
				Dict: Dict{"Filter": Name(filter), "Length": Int(len(jpegish))},
				Data: jpegish,
			}
			decoded, err := stream.Decoded()
			if err != nil {
				t.Fatalf("Decoded() error = %v", err)
			}
			if !bytes.Equal(decoded, jpegish) {
				t.Errorf("Decoded() = %v, want raw data", decoded)
			}
		})
	}
}

func TestStreamDecodedUnsupportedFilter(t *testing.T) {
	tests := []string{"JBIG2Decode", "Crypt", "BogusDecode"}

	for _, filter := range tests {
		t.Run(filter, func(t *testing.T) {
			stream := &Stream{
				Dict: Dict{"Filter": Name(filter)},
				Data: []byte{0x00},
			}
			if _, err := stream.Decoded(); err == nil {
				t.Errorf("Decoded() with %s expected error, got nil", filter)
			}
		})
	}
}

func TestStreamDecodedCaches(t *testing.T) {
	stream := &Stream{
		Dict: Dict{"Filter": Name("FlateDecode")},
		Data: deflate(t, []byte("cache me")),
	}

	first, err := stream.Decoded()
	if err != nil {
		t.Fatalf("Decoded() error = %v", err)
	}
	second, err := stream.Decoded()
	if err != nil {
		t.Fatalf("second Decoded() error = %v", err)
	}
	if &first[0] != &second[0] {
		t.Error("Decoded() should return the cached slice")
	}

	// Errors are cached the same way.
	bad := &Stream{
		Dict: Dict{"Filter": Name("FlateDecode")},
		Data: []byte("not zlib"),
	}
	if _, err := bad.Decoded(); err == nil {
		t.Fatal("Decoded() of invalid data expected error")
	}
	if _, err := bad.Decoded(); err == nil {
		t.Error("second Decoded() should repeat the cached error")
	}
}

func TestStreamFilterNames(t *testing.T) {
	tests := []struct {
		name    string
		dict    Dict
		want    []string
		wantNil bool
	}{
		{"no filter", Dict{}, nil, true},
		{"single name", Dict{"Filter": Name("FlateDecode")}, []string{"FlateDecode"}, false},
		{
			"array",
			Dict{"Filter": Array{Name("AHx"), Name("Fl")}},
			[]string{"AHx", "Fl"},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stream := &Stream{Dict: tt.dict}
			got := stream.FilterNames()
			if tt.wantNil {
				if got != nil {
					t.Errorf("FilterNames() = %v, want nil", got)
				}
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("FilterNames() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("FilterNames()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}
