package font

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/unpdf/unpdf/core"
)

// CMap maps character codes to Unicode text, parsed from a /ToUnicode
// stream.
type CMap struct {
	single    map[uint32]string
	ranges    []bfRange
	codeSizes []int // code byte lengths declared by codespacerange, ascending
}

type bfRange struct {
	lo, hi uint32
	dst    uint32
}

// NewCMap returns an empty character map.
func NewCMap() *CMap {
	return &CMap{single: make(map[uint32]string)}
}

// Len returns the number of mapping entries.
func (c *CMap) Len() int {
	return len(c.single) + len(c.ranges)
}

// Put records a single code mapping. Used by tests and by callers that
// synthesize maps.
func (c *CMap) Put(code uint32, text string) {
	c.single[code] = text
}

// ParseToUnicodeCMap decodes and parses a /ToUnicode stream.
func ParseToUnicodeCMap(stream *core.Stream) (*CMap, error) {
	if stream == nil {
		return nil, fmt.Errorf("nil ToUnicode stream")
	}
	data, err := stream.Decoded()
	if err != nil {
		return nil, fmt.Errorf("decode ToUnicode stream: %w", err)
	}
	return ParseCMapData(data)
}

// ParseCMapData parses CMap syntax. Malformed entries are skipped rather
// than failing the whole map; how much survives is what matters for text
// recovery.
func ParseCMapData(data []byte) (*CMap, error) {
	c := NewCMap()
	s := &cmapScanner{data: data}

	for {
		tok, ok := s.next()
		if !ok {
			break
		}
		if tok.kind != tokKeyword {
			continue
		}
		switch tok.text {
		case "begincodespacerange":
			c.parseCodeSpaceRange(s)
		case "beginbfchar":
			c.parseBfChar(s)
		case "beginbfrange":
			c.parseBfRange(s)
		}
	}
	return c, nil
}

func (c *CMap) parseCodeSpaceRange(s *cmapScanner) {
	for {
		lo, ok := s.next()
		if !ok || lo.kind == tokKeyword {
			return
		}
		hi, ok := s.next()
		if !ok || hi.kind == tokKeyword {
			return
		}
		if lo.kind != tokHex || hi.kind != tokHex {
			continue
		}
		size := len(lo.text) / 2
		if size >= 1 && size <= 4 && !c.hasCodeSize(size) {
			c.codeSizes = append(c.codeSizes, size)
			for i := len(c.codeSizes) - 1; i > 0 && c.codeSizes[i] < c.codeSizes[i-1]; i-- {
				c.codeSizes[i], c.codeSizes[i-1] = c.codeSizes[i-1], c.codeSizes[i]
			}
		}
	}
}

func (c *CMap) hasCodeSize(size int) bool {
	for _, s := range c.codeSizes {
		if s == size {
			return true
		}
	}
	return false
}

func (c *CMap) parseBfChar(s *cmapScanner) {
	for {
		src, ok := s.next()
		if !ok || src.kind == tokKeyword {
			return
		}
		dst, ok := s.next()
		if !ok || dst.kind == tokKeyword {
			return
		}
		if src.kind != tokHex || dst.kind != tokHex {
			continue
		}
		code, err := hexToUint32(src.text)
		if err != nil {
			continue
		}
		if text := hexToText(dst.text); text != "" {
			c.single[code] = text
		}
	}
}

func (c *CMap) parseBfRange(s *cmapScanner) {
	for {
		lo, ok := s.next()
		if !ok || lo.kind == tokKeyword {
			return
		}
		hi, ok := s.next()
		if !ok || hi.kind == tokKeyword {
			return
		}
		dst, ok := s.next()
		if !ok || dst.kind == tokKeyword {
			return
		}
		if lo.kind != tokHex || hi.kind != tokHex {
			continue
		}
		loCode, err1 := hexToUint32(lo.text)
		hiCode, err2 := hexToUint32(hi.text)
		if err1 != nil || err2 != nil || hiCode < loCode {
			continue
		}

		switch dst.kind {
		case tokHex:
			dstCode, err := hexToUint32(dst.text)
			if err != nil {
				continue
			}
			c.ranges = append(c.ranges, bfRange{lo: loCode, hi: hiCode, dst: dstCode})
		case tokArrayOpen:
			// [<dst> <dst> ...] with one destination per code.
			code := loCode
			for {
				el, ok := s.next()
				if !ok || el.kind == tokArrayClose || el.kind == tokKeyword {
					break
				}
				if el.kind == tokHex && code <= hiCode {
					if text := hexToText(el.text); text != "" {
						c.single[code] = text
					}
				}
				code++
			}
		}
	}
}

// Lookup resolves one character code.
func (c *CMap) Lookup(code uint32) (string, bool) {
	if text, ok := c.single[code]; ok {
		return text, true
	}
	for _, r := range c.ranges {
		if code >= r.lo && code <= r.hi {
			return string(rune(r.dst + (code - r.lo))), true
		}
	}
	return "", false
}

// DecodeString decodes a run of character codes to Unicode. Code width
// comes from the codespacerange when present; otherwise two-byte codes are
// tried before single bytes, which handles both CID and simple fonts.
func (c *CMap) DecodeString(data []byte) string {
	var b strings.Builder
	i := 0
	for i < len(data) {
		if consumed := c.decodeAt(data, i, &b); consumed > 0 {
			i += consumed
			continue
		}
		// Nothing mapped. Pass the byte through so unmapped stretches
		// degrade instead of vanishing.
		b.WriteByte(data[i])
		i++
	}
	return b.String()
}

func (c *CMap) decodeAt(data []byte, i int, b *strings.Builder) int {
	sizes := c.codeSizes
	if len(sizes) == 0 {
		sizes = []int{2, 1}
	}
	for _, size := range sizes {
		if i+size > len(data) {
			continue
		}
		code := uint32(0)
		for _, by := range data[i : i+size] {
			code = code<<8 | uint32(by)
		}
		if text, ok := c.Lookup(code); ok {
			b.WriteString(text)
			return size
		}
	}
	// With a declared code width, consume a full code even when unmapped.
	if len(c.codeSizes) > 0 {
		size := c.codeSizes[0]
		if i+size <= len(data) {
			code := uint32(0)
			for _, by := range data[i : i+size] {
				code = code<<8 | uint32(by)
			}
			if code < 0x110000 {
				b.WriteRune(rune(code))
				return size
			}
		}
	}
	return 0
}

// hexToUint32 parses hex digits as a big-endian code value.
func hexToUint32(digits string) (uint32, error) {
	if len(digits) == 0 || len(digits) > 8 {
		return 0, fmt.Errorf("bad code length %d", len(digits))
	}
	var v uint32
	for i := 0; i < len(digits); i++ {
		d := digits[i]
		switch {
		case d >= '0' && d <= '9':
			v = v<<4 | uint32(d-'0')
		case d >= 'a' && d <= 'f':
			v = v<<4 | uint32(d-'a'+10)
		case d >= 'A' && d <= 'F':
			v = v<<4 | uint32(d-'A'+10)
		default:
			return 0, fmt.Errorf("bad hex digit %q", d)
		}
	}
	return v, nil
}

// hexToText decodes a destination hex string to Unicode text. Two or more
// bytes are UTF-16BE, with or without a BOM; one byte is taken directly.
func hexToText(digits string) string {
	if len(digits)%2 != 0 {
		digits = "0" + digits
	}
	raw, err := hex.DecodeString(digits)
	if err != nil {
		return ""
	}
	switch {
	case len(raw) >= 2 && raw[0] == 0xFE && raw[1] == 0xFF:
		return DecodeUTF16BE(raw[2:])
	case len(raw) >= 2:
		return DecodeUTF16BE(raw)
	case len(raw) == 1:
		return string(rune(raw[0]))
	}
	return ""
}

type cmapTokenKind int

const (
	tokHex cmapTokenKind = iota
	tokName
	tokNumber
	tokKeyword
	tokArrayOpen
	tokArrayClose
	tokOther
)

type cmapToken struct {
	kind cmapTokenKind
	text string
}

// cmapScanner tokenizes CMap/PostScript syntax just enough to pull out the
// hex strings, arrays and section keywords.
type cmapScanner struct {
	data []byte
	pos  int
}

func (s *cmapScanner) next() (cmapToken, bool) {
	s.skipSpace()
	if s.pos >= len(s.data) {
		return cmapToken{}, false
	}

	c := s.data[s.pos]
	switch {
	case c == '<':
		if s.pos+1 < len(s.data) && s.data[s.pos+1] == '<' {
			s.pos += 2
			return cmapToken{kind: tokOther}, true
		}
		return s.readHex()
	case c == '>':
		if s.pos+1 < len(s.data) && s.data[s.pos+1] == '>' {
			s.pos += 2
		} else {
			s.pos++
		}
		return cmapToken{kind: tokOther}, true
	case c == '[':
		s.pos++
		return cmapToken{kind: tokArrayOpen}, true
	case c == ']':
		s.pos++
		return cmapToken{kind: tokArrayClose}, true
	case c == '(':
		s.skipLiteralString()
		return cmapToken{kind: tokOther}, true
	case c == '/':
		s.pos++
		start := s.pos
		for s.pos < len(s.data) && !isCMapDelim(s.data[s.pos]) {
			s.pos++
		}
		return cmapToken{kind: tokName, text: string(s.data[start:s.pos])}, true
	case c == '-' || c == '+' || (c >= '0' && c <= '9'):
		start := s.pos
		s.pos++
		for s.pos < len(s.data) && !isCMapDelim(s.data[s.pos]) {
			s.pos++
		}
		return cmapToken{kind: tokNumber, text: string(s.data[start:s.pos])}, true
	default:
		start := s.pos
		for s.pos < len(s.data) && !isCMapDelim(s.data[s.pos]) {
			s.pos++
		}
		if s.pos == start {
			s.pos++
			return cmapToken{kind: tokOther}, true
		}
		return cmapToken{kind: tokKeyword, text: string(s.data[start:s.pos])}, true
	}
}

func (s *cmapScanner) readHex() (cmapToken, bool) {
	s.pos++ // consume '<'
	var digits strings.Builder
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		if c == '>' {
			s.pos++
			return cmapToken{kind: tokHex, text: digits.String()}, true
		}
		if !isCMapSpace(c) {
			digits.WriteByte(c)
		}
		s.pos++
	}
	return cmapToken{kind: tokOther}, true
}

func (s *cmapScanner) skipLiteralString() {
	s.pos++ // consume '('
	depth := 1
	for s.pos < len(s.data) && depth > 0 {
		switch s.data[s.pos] {
		case '\\':
			s.pos++
		case '(':
			depth++
		case ')':
			depth--
		}
		s.pos++
	}
}

func (s *cmapScanner) skipSpace() {
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		if isCMapSpace(c) {
			s.pos++
			continue
		}
		if c == '%' {
			for s.pos < len(s.data) && s.data[s.pos] != '\n' && s.data[s.pos] != '\r' {
				s.pos++
			}
			continue
		}
		break
	}
}

func isCMapSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f' || c == 0
}

func isCMapDelim(c byte) bool {
	return isCMapSpace(c) || c == '<' || c == '>' || c == '[' || c == ']' ||
		c == '(' || c == ')' || c == '/' || c == '%' || c == '{' || c == '}'
}
