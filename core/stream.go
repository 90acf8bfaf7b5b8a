package core

import (
	"fmt"

	"github.com/unpdf/unpdf/internal/filters"
)

// Stream is a PDF stream object: a dictionary plus raw data. Data holds the
// bytes exactly as stored in the file; Decoded runs the filter chain.
type Stream struct {
	Dict Dict
	Data []byte

	decoded    []byte
	decodeErr  error
	decodeDone bool
}

func (s *Stream) Type() ObjectType { return ObjStream }
func (s *Stream) String() string {
	return fmt.Sprintf("stream %s (%d bytes)", s.Dict.String(), len(s.Data))
}

// Decoded returns the stream data with all filters applied, computing it
// once and caching the result.
func (s *Stream) Decoded() ([]byte, error) {
	if !s.decodeDone {
		s.decoded, s.decodeErr = s.decode()
		s.decodeDone = true
	}
	return s.decoded, s.decodeErr
}

// FilterNames returns the filter chain as written, outermost first. A
// stream without /Filter returns nil.
func (s *Stream) FilterNames() []string {
	switch f := s.Dict.Get("Filter").(type) {
	case Name:
		return []string{string(f)}
	case Array:
		names := make([]string, 0, len(f))
		for _, obj := range f {
			if n, ok := obj.(Name); ok {
				names = append(names, string(n))
			}
		}
		return names
	}
	return nil
}

// decode applies the /Filter chain using /DecodeParms.
func (s *Stream) decode() ([]byte, error) {
	filterObj := s.Dict.Get("Filter")
	if filterObj == nil {
		return s.Data, nil
	}
	paramsObj := s.Dict.Get("DecodeParms")
	if paramsObj == nil {
		paramsObj = s.Dict.Get("DP") // abbreviated form
	}

	if filterName, ok := filterObj.(Name); ok {
		return decodeWithFilter(s.Data, string(filterName), paramsDict(paramsObj))
	}

	filterArray, ok := filterObj.(Array)
	if !ok {
		return nil, fmt.Errorf("invalid /Filter type %T", filterObj)
	}

	data := s.Data
	for i, filter := range filterArray {
		filterName, ok := filter.(Name)
		if !ok {
			return nil, fmt.Errorf("filter %d is %T, want name", i, filter)
		}

		var params Dict
		if paramsArray, ok := paramsObj.(Array); ok {
			if i < len(paramsArray) {
				params = paramsDict(paramsArray[i])
			}
		} else {
			params = paramsDict(paramsObj)
		}

		var err error
		data, err = decodeWithFilter(data, string(filterName), params)
		if err != nil {
			return nil, fmt.Errorf("filter %d (%s): %w", i, filterName, err)
		}
	}
	return data, nil
}

// decodeWithFilter applies one named filter. DCT and JPX streams pass
// through untouched: their payload is a complete JPEG/JPEG2000 file that
// image handling consumes as-is.
func decodeWithFilter(data []byte, filterName string, params Dict) ([]byte, error) {
	switch filterName {
	case "FlateDecode", "Fl":
		return filters.FlateDecode(data, dictToParams(params))
	case "LZWDecode", "LZW":
		return filters.LZWDecode(data, dictToParams(params))
	case "ASCIIHexDecode", "AHx":
		return filters.ASCIIHexDecode(data)
	case "ASCII85Decode", "A85":
		return filters.ASCII85Decode(data)
	case "RunLengthDecode", "RL":
		return filters.RunLengthDecode(data)
	case "CCITTFaxDecode", "CCF":
		return filters.CCITTFaxDecode(data, dictToParams(params))
	case "DCTDecode", "DCT", "JPXDecode":
		return data, nil
	case "JBIG2Decode":
		return nil, fmt.Errorf("JBIG2Decode is not supported")
	case "Crypt":
		return nil, fmt.Errorf("Crypt filter is not supported")
	default:
		return nil, fmt.Errorf("unknown filter %q", filterName)
	}
}

// paramsDict normalizes a DecodeParms entry to a Dict; Null and missing
// entries become nil.
func paramsDict(obj Object) Dict {
	if dict, ok := obj.(Dict); ok {
		return dict
	}
	return nil
}

// dictToParams lowers a Dict to the primitive map the filters take.
func dictToParams(dict Dict) filters.Params {
	if dict == nil {
		return nil
	}
	params := make(filters.Params, len(dict))
	for k, v := range dict {
		switch obj := v.(type) {
		case Int:
			params[k] = int(obj)
		case Real:
			params[k] = float64(obj)
		case Bool:
			params[k] = bool(obj)
		case String:
			params[k] = string(obj)
		case Name:
			params[k] = string(obj)
		default:
			params[k] = v
		}
	}
	return params
}
