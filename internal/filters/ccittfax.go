package filters

import (
	"bytes"
	"fmt"
	"io"

	"golang.org/x/image/ccitt"
)

// CCITTFaxDecode decodes CCITT Group 3/4 fax data, the bi-level compression
// used by scanned documents. /K selects the group (negative means Group 4),
// /Columns defaults to 1728 per the fax standard, /Rows 0 means the height
// is detected from the data, and /BlackIs1 flips the bit sense.
func CCITTFaxDecode(data []byte, params Params) ([]byte, error) {
	columns := getIntParam(params, "Columns", 1728)
	rows := getIntParam(params, "Rows", 0)
	k := getIntParam(params, "K", 0)
	blackIs1 := getBoolParam(params, "BlackIs1", false)

	sf := ccitt.Group3
	if k < 0 {
		sf = ccitt.Group4
	}
	if rows == 0 {
		rows = ccitt.AutoDetectHeight
	}

	opts := &ccitt.Options{Invert: blackIs1}
	reader := ccitt.NewReader(bytes.NewReader(data), ccitt.MSB, sf, columns, rows, opts)
	out, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("ccitt decode: %w", err)
	}
	return out, nil
}
