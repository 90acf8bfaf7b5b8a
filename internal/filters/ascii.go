package filters

import (
	"bytes"
	"fmt"
)

// ASCIIHexDecode decodes hex-encoded data. Whitespace is ignored, '>' ends
// the data, and an odd trailing digit is padded with zero.
func ASCIIHexDecode(data []byte) ([]byte, error) {
	var out bytes.Buffer
	var pending byte
	havePending := false

	for i := 0; i < len(data); i++ {
		c := data[i]
		if isWhitespace(c) {
			continue
		}
		if c == '>' {
			break
		}
		v, err := hexDigitToByte(c)
		if err != nil {
			return nil, err
		}
		if havePending {
			out.WriteByte(pending<<4 | v)
			havePending = false
		} else {
			pending = v
			havePending = true
		}
	}
	if havePending {
		out.WriteByte(pending << 4)
	}
	return out.Bytes(), nil
}

// ASCII85Decode decodes base-85 data: five characters in '!'..'u' encode
// four bytes, 'z' is shorthand for four zero bytes, and "~>" ends the data.
// A short final group is decoded by padding with 'u'.
func ASCII85Decode(data []byte) ([]byte, error) {
	var out bytes.Buffer

	i := 0
	for i < len(data) {
		c := data[i]
		if isWhitespace(c) {
			i++
			continue
		}
		if c == '~' {
			break
		}
		if c == 'z' {
			out.Write([]byte{0, 0, 0, 0})
			i++
			continue
		}

		group := make([]byte, 0, 5)
		for len(group) < 5 && i < len(data) {
			c = data[i]
			if isWhitespace(c) {
				i++
				continue
			}
			if c == '~' {
				break
			}
			if c < '!' || c > 'u' {
				return nil, fmt.Errorf("invalid base-85 byte 0x%02x", c)
			}
			group = append(group, c-'!')
			i++
		}
		if len(group) == 0 {
			break
		}
		if len(group) == 1 {
			return nil, fmt.Errorf("dangling base-85 digit at end of data")
		}

		outBytes := len(group) - 1
		for len(group) < 5 {
			group = append(group, 84) // pad with 'u'
		}
		var value uint32
		for _, d := range group {
			value = value*85 + uint32(d)
		}
		for j := 0; j < outBytes; j++ {
			out.WriteByte(byte(value >> (24 - j*8)))
		}
	}
	return out.Bytes(), nil
}

func hexDigitToByte(c byte) (byte, error) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', nil
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, nil
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, nil
	}
	return 0, fmt.Errorf("invalid hex byte 0x%02x", c)
}

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f' || c == 0
}
