package filters

import "fmt"

// RunLengthDecode expands PDF run-length data. Each run starts with a
// length byte L: 0-127 copies the next L+1 bytes literally, 129-255 repeats
// the next byte 257-L times, and 128 marks end of data.
func RunLengthDecode(data []byte) ([]byte, error) {
	var out []byte
	i := 0
	for i < len(data) {
		l := data[i]
		i++
		switch {
		case l == 128:
			return out, nil
		case l < 128:
			n := int(l) + 1
			if i+n > len(data) {
				return nil, fmt.Errorf("literal run of %d bytes overruns input at offset %d", n, i)
			}
			out = append(out, data[i:i+n]...)
			i += n
		default:
			if i >= len(data) {
				return nil, fmt.Errorf("replicated run missing its byte at offset %d", i)
			}
			n := 257 - int(l)
			for j := 0; j < n; j++ {
				out = append(out, data[i])
			}
			i++
		}
	}
	// Missing EOD marker; everything decoded is still usable.
	return out, nil
}
