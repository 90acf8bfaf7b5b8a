package filters

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
)

// Params carries decode parameters lowered from a stream's /DecodeParms
// dictionary: Predictor, Columns, Colors, BitsPerComponent, EarlyChange and
// friends as Go primitives.
type Params map[string]interface{}

// FlateDecode inflates zlib/deflate data and applies the predictor named in
// params, if any.
func FlateDecode(data []byte, params Params) ([]byte, error) {
	reader, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open zlib stream: %w", err)
	}
	defer reader.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return nil, fmt.Errorf("inflate: %w", err)
	}
	return applyPredictor(buf.Bytes(), params)
}

// applyPredictor undoes the prediction transform named in params.
// Predictor 1 is identity, 2 is TIFF horizontal differencing, 10-15 are the
// PNG filters with a per-row filter byte.
func applyPredictor(data []byte, params Params) ([]byte, error) {
	predictor := getIntParam(params, "Predictor", 1)
	switch {
	case predictor == 1:
		return data, nil
	case predictor == 2:
		return undoTIFFPredictor(data, params)
	case predictor >= 10 && predictor <= 15:
		return undoPNGPredictor(data, params)
	default:
		return nil, fmt.Errorf("unsupported predictor %d", predictor)
	}
}

func undoTIFFPredictor(data []byte, params Params) ([]byte, error) {
	columns := getIntParam(params, "Columns", 1)
	colors := getIntParam(params, "Colors", 1)
	bpc := getIntParam(params, "BitsPerComponent", 8)
	if bpc != 8 {
		return nil, fmt.Errorf("TIFF predictor supports 8 bits per component, got %d", bpc)
	}

	rowSize := columns * colors
	if rowSize <= 0 || len(data)%rowSize != 0 {
		return nil, fmt.Errorf("data size %d does not divide into rows of %d", len(data), rowSize)
	}

	out := make([]byte, len(data))
	for rowStart := 0; rowStart < len(data); rowStart += rowSize {
		for col := 0; col < rowSize; col++ {
			idx := rowStart + col
			if col < colors {
				out[idx] = data[idx]
			} else {
				out[idx] = data[idx] + out[idx-colors]
			}
		}
	}
	return out, nil
}

func undoPNGPredictor(data []byte, params Params) ([]byte, error) {
	columns := getIntParam(params, "Columns", 1)
	colors := getIntParam(params, "Colors", 1)
	bpc := getIntParam(params, "BitsPerComponent", 8)
	if bpc != 8 {
		return nil, fmt.Errorf("PNG predictor supports 8 bits per component, got %d", bpc)
	}

	bytesPerPixel := colors
	rowLen := columns * colors
	stride := rowLen + 1 // leading filter byte per row
	if rowLen <= 0 || len(data)%stride != 0 {
		return nil, fmt.Errorf("data size %d does not divide into rows of %d", len(data), stride)
	}

	numRows := len(data) / stride
	out := make([]byte, numRows*rowLen)
	for row := 0; row < numRows; row++ {
		filter := data[row*stride]
		src := data[row*stride+1 : (row+1)*stride]
		dst := out[row*rowLen : (row+1)*rowLen]
		var prev []byte
		if row > 0 {
			prev = out[(row-1)*rowLen : row*rowLen]
		}
		if err := unfilterPNGRow(dst, src, prev, filter, bytesPerPixel); err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
	}
	return out, nil
}

// unfilterPNGRow reverses one PNG row filter. Types: 0 None, 1 Sub, 2 Up,
// 3 Average, 4 Paeth.
func unfilterPNGRow(dst, src, prev []byte, filter byte, bpp int) error {
	for i := range src {
		var left, up, upLeft byte
		if i >= bpp {
			left = dst[i-bpp]
		}
		if prev != nil {
			up = prev[i]
			if i >= bpp {
				upLeft = prev[i-bpp]
			}
		}

		var predicted byte
		switch filter {
		case 0:
		case 1:
			predicted = left
		case 2:
			predicted = up
		case 3:
			predicted = byte((int(left) + int(up)) / 2)
		case 4:
			predicted = paeth(left, up, upLeft)
		default:
			return fmt.Errorf("unknown PNG filter byte %d", filter)
		}
		dst[i] = src[i] + predicted
	}
	return nil
}

// paeth picks the neighbor closest to the linear prediction, per the PNG
// specification.
func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa := abs(p - int(a))
	pb := abs(p - int(b))
	pc := abs(p - int(c))
	if pa <= pb && pa <= pc {
		return a
	}
	if pb <= pc {
		return b
	}
	return c
}

// getIntParam reads an integer-valued parameter, tolerating the numeric
// types dictToParams may have produced.
func getIntParam(params Params, key string, defaultValue int) int {
	if params == nil {
		return defaultValue
	}
	switch v := params[key].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return defaultValue
}

// getBoolParam reads a boolean parameter, treating a numeric 0 as false and
// other numbers as true.
func getBoolParam(params Params, key string, defaultValue bool) bool {
	if params == nil {
		return defaultValue
	}
	switch v := params[key].(type) {
	case bool:
		return v
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	}
	return defaultValue
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
