package filters

import (
	"bytes"
	"fmt"
	"io"

	"github.com/hhrutter/lzw"
)

// LZWDecode decompresses LZW data. PDF uses the TIFF flavor with MSB bit
// order and an /EarlyChange parameter (default 1) controlling whether code
// width increases one code early.
func LZWDecode(data []byte, params Params) ([]byte, error) {
	earlyChange := getIntParam(params, "EarlyChange", 1) != 0

	reader := lzw.NewReader(bytes.NewReader(data), earlyChange)
	defer reader.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return nil, fmt.Errorf("lzw decode: %w", err)
	}
	return applyPredictor(buf.Bytes(), params)
}
