package contentstream

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/unpdf/unpdf/core"
)

// Operation is one content stream instruction: an operator preceded by its
// operands.
type Operation struct {
	Operator string
	Operands []core.Object
}

// Operand returns the i-th operand, or nil when out of range.
func (op Operation) Operand(i int) core.Object {
	if i < 0 || i >= len(op.Operands) {
		return nil
	}
	return op.Operands[i]
}

// GetNumber returns the i-th operand as a float64.
func (op Operation) GetNumber(i int) (float64, bool) {
	return core.AsNumber(op.Operand(i))
}

// GetInt returns the i-th operand as an int.
func (op Operation) GetInt(i int) (int, bool) {
	return core.AsInt(op.Operand(i))
}

// GetName returns the i-th operand as a name.
func (op Operation) GetName(i int) (core.Name, bool) {
	n, ok := op.Operand(i).(core.Name)
	return n, ok
}

// GetString returns the i-th operand as a string object.
func (op Operation) GetString(i int) (core.String, bool) {
	s, ok := op.Operand(i).(core.String)
	return s, ok
}

// Parser splits decoded content stream bytes into a flat operation list.
// Inline images (BI .. ID .. EI) are reported as a bare BI operation with
// the image payload skipped.
type Parser struct {
	data  []byte
	pos   int
	stack []core.Object
	ops   []Operation
}

// NewParser returns a parser over decoded content stream data.
func NewParser(data []byte) *Parser {
	return &Parser{data: data}
}

// Parse consumes the whole stream and returns the operations in order.
func (p *Parser) Parse() ([]Operation, error) {
	for {
		p.skipSpace()
		if p.pos >= len(p.data) {
			break
		}
		if err := p.parseNext(); err != nil {
			return nil, err
		}
	}
	return p.ops, nil
}

// parseNext handles one token: operands are pushed, an operator closes the
// pending operation.
func (p *Parser) parseNext() error {
	c := p.data[p.pos]
	if isLetter(c) || c == '\'' || c == '"' {
		return p.parseOperator()
	}

	start := p.pos
	operand, err := p.parseOperand()
	if err != nil {
		return fmt.Errorf("at offset %d: %w", start, err)
	}
	p.stack = append(p.stack, operand)
	return nil
}

// parseOperator reads an operator token and emits an operation with the
// accumulated operands. The bare keywords true, false and null are operands
// that happen to start with a letter, so they are routed back to the stack.
func (p *Parser) parseOperator() error {
	start := p.pos
	var buf bytes.Buffer
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		// d0 and d1 are the only operators containing digits.
		ok := isLetter(c) || c == '\'' || c == '"' || c == '*' ||
			(buf.Len() > 0 && (c == '0' || c == '1'))
		if !ok {
			break
		}
		buf.WriteByte(c)
		p.pos++
	}

	operator := buf.String()
	switch operator {
	case "":
		return fmt.Errorf("empty operator at offset %d", start)
	case "true":
		p.stack = append(p.stack, core.Bool(true))
		return nil
	case "false":
		p.stack = append(p.stack, core.Bool(false))
		return nil
	case "null":
		p.stack = append(p.stack, core.Null{})
		return nil
	case "BI":
		p.stack = p.stack[:0]
		p.ops = append(p.ops, Operation{Operator: "BI"})
		return p.skipInlineImage()
	}

	operands := make([]core.Object, len(p.stack))
	copy(operands, p.stack)
	p.stack = p.stack[:0]
	p.ops = append(p.ops, Operation{Operator: operator, Operands: operands})
	return nil
}

// skipInlineImage consumes the image dictionary entries, the ID keyword and
// the binary payload up to and including the closing EI.
func (p *Parser) skipInlineImage() error {
	for {
		p.skipSpace()
		if p.pos >= len(p.data) {
			return fmt.Errorf("unterminated inline image")
		}
		c := p.data[p.pos]
		if !isLetter(c) {
			if _, err := p.parseOperand(); err != nil {
				return fmt.Errorf("inline image dictionary: %w", err)
			}
			continue
		}

		start := p.pos
		for p.pos < len(p.data) && isLetter(p.data[p.pos]) {
			p.pos++
		}
		switch token := string(p.data[start:p.pos]); token {
		case "ID":
			return p.skipInlineImageData()
		case "true", "false", "null":
			// Dictionary values; nothing to keep.
		default:
			return fmt.Errorf("unexpected token %q in inline image dictionary", token)
		}
	}
}

// skipInlineImageData scans past the binary payload that follows ID. The
// payload ends at an EI keyword set off by whitespace; since the data may
// contain any bytes this is a delimiter heuristic, not a parse.
func (p *Parser) skipInlineImageData() error {
	// A single whitespace byte separates ID from the data.
	if p.pos < len(p.data) && isWhitespace(p.data[p.pos]) {
		p.pos++
	}
	for i := p.pos; i+2 < len(p.data); i++ {
		if !isWhitespace(p.data[i]) || p.data[i+1] != 'E' || p.data[i+2] != 'I' {
			continue
		}
		after := i + 3
		if after < len(p.data) && !isWhitespace(p.data[after]) && !isDelimiter(p.data[after]) {
			continue
		}
		p.pos = after
		return nil
	}
	return fmt.Errorf("inline image data not terminated by EI")
}

// parseOperand parses one object: number, string, hex string, name, array,
// dictionary, boolean or null.
func (p *Parser) parseOperand() (core.Object, error) {
	p.skipSpace()
	if p.pos >= len(p.data) {
		return nil, fmt.Errorf("unexpected end of content stream")
	}

	c := p.data[p.pos]
	switch {
	case c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9'):
		return p.parseNumber()
	case c == '(':
		return p.parseString()
	case c == '/':
		return p.parseName()
	case c == '[':
		return p.parseArray()
	case c == '<':
		if p.pos+1 < len(p.data) && p.data[p.pos+1] == '<' {
			return p.parseDict()
		}
		return p.parseHexString()
	case isLetter(c):
		return p.parseKeyword()
	}
	return nil, fmt.Errorf("unexpected byte %q", c)
}

// parseKeyword handles true, false and null in operand position, which is
// how they appear inside arrays and dictionaries.
func (p *Parser) parseKeyword() (core.Object, error) {
	start := p.pos
	for p.pos < len(p.data) && isLetter(p.data[p.pos]) {
		p.pos++
	}
	switch token := string(p.data[start:p.pos]); token {
	case "true":
		return core.Bool(true), nil
	case "false":
		return core.Bool(false), nil
	case "null":
		return core.Null{}, nil
	default:
		return nil, fmt.Errorf("unexpected keyword %q", token)
	}
}

func (p *Parser) parseNumber() (core.Object, error) {
	start := p.pos
	if c := p.data[p.pos]; c == '+' || c == '-' {
		p.pos++
	}
	sawDot := false
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		if c >= '0' && c <= '9' {
			p.pos++
		} else if c == '.' && !sawDot {
			sawDot = true
			p.pos++
		} else {
			break
		}
	}

	text := string(p.data[start:p.pos])
	if sawDot {
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid real %q", text)
		}
		return core.Real(v), nil
	}
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid integer %q", text)
	}
	return core.Int(v), nil
}

// parseString reads a literal string, handling nested parentheses, escape
// sequences, octal escapes and line continuations.
func (p *Parser) parseString() (core.Object, error) {
	p.pos++ // consume '('
	var buf bytes.Buffer
	depth := 1

	for p.pos < len(p.data) && depth > 0 {
		c := p.data[p.pos]
		switch {
		case c == '\\' && p.pos+1 < len(p.data):
			p.pos++
			p.parseEscape(&buf)
		case c == '(':
			depth++
			buf.WriteByte(c)
			p.pos++
		case c == ')':
			depth--
			if depth > 0 {
				buf.WriteByte(c)
			}
			p.pos++
		default:
			buf.WriteByte(c)
			p.pos++
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("unclosed string")
	}
	return core.String(buf.String()), nil
}

// parseEscape writes the byte named by the escape at p.pos, which follows a
// backslash already consumed by the caller.
func (p *Parser) parseEscape(buf *bytes.Buffer) {
	c := p.data[p.pos]
	switch c {
	case 'n':
		buf.WriteByte('\n')
		p.pos++
	case 'r':
		buf.WriteByte('\r')
		p.pos++
	case 't':
		buf.WriteByte('\t')
		p.pos++
	case 'b':
		buf.WriteByte('\b')
		p.pos++
	case 'f':
		buf.WriteByte('\f')
		p.pos++
	case '\r':
		// Line continuation; swallows an optional following LF.
		p.pos++
		if p.pos < len(p.data) && p.data[p.pos] == '\n' {
			p.pos++
		}
	case '\n':
		p.pos++
	case '0', '1', '2', '3', '4', '5', '6', '7':
		v := int(c - '0')
		p.pos++
		for i := 0; i < 2 && p.pos < len(p.data); i++ {
			d := p.data[p.pos]
			if d < '0' || d > '7' {
				break
			}
			v = v*8 + int(d-'0')
			p.pos++
		}
		buf.WriteByte(byte(v))
	default:
		// Includes \( \) and \\; an unknown escape drops the backslash.
		buf.WriteByte(c)
		p.pos++
	}
}

func (p *Parser) parseHexString() (core.Object, error) {
	p.pos++ // consume '<'
	var buf bytes.Buffer
	var hi byte
	haveHi := false

	for p.pos < len(p.data) {
		c := p.data[p.pos]
		if c == '>' {
			p.pos++
			if haveHi {
				// Odd digit count implies a trailing zero.
				buf.WriteByte(hi << 4)
			}
			return core.String(buf.String()), nil
		}
		if isWhitespace(c) {
			p.pos++
			continue
		}
		if !isHexDigit(c) {
			return nil, fmt.Errorf("invalid hex digit %q", c)
		}
		if haveHi {
			buf.WriteByte(hi<<4 | hexValue(c))
			haveHi = false
		} else {
			hi = hexValue(c)
			haveHi = true
		}
		p.pos++
	}
	return nil, fmt.Errorf("unclosed hex string")
}

func (p *Parser) parseName() (core.Object, error) {
	p.pos++ // consume '/'
	var buf bytes.Buffer

	for p.pos < len(p.data) {
		c := p.data[p.pos]
		if isWhitespace(c) || isDelimiter(c) {
			break
		}
		if c == '#' && p.pos+2 < len(p.data) &&
			isHexDigit(p.data[p.pos+1]) && isHexDigit(p.data[p.pos+2]) {
			buf.WriteByte(hexValue(p.data[p.pos+1])<<4 | hexValue(p.data[p.pos+2]))
			p.pos += 3
			continue
		}
		buf.WriteByte(c)
		p.pos++
	}
	return core.Name(buf.String()), nil
}

func (p *Parser) parseArray() (core.Object, error) {
	p.pos++ // consume '['
	var arr core.Array

	for {
		p.skipSpace()
		if p.pos >= len(p.data) {
			return nil, fmt.Errorf("unclosed array")
		}
		if p.data[p.pos] == ']' {
			p.pos++
			return arr, nil
		}
		obj, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		arr = append(arr, obj)
	}
}

// parseDict handles inline dictionaries, seen as BDC/DP property lists and
// inline image headers.
func (p *Parser) parseDict() (core.Object, error) {
	p.pos += 2 // consume '<<'
	dict := make(core.Dict)

	for {
		p.skipSpace()
		if p.pos >= len(p.data) {
			return nil, fmt.Errorf("unclosed dictionary")
		}
		if p.pos+1 < len(p.data) && p.data[p.pos] == '>' && p.data[p.pos+1] == '>' {
			p.pos += 2
			return dict, nil
		}
		if p.data[p.pos] != '/' {
			return nil, fmt.Errorf("dictionary key must be a name, found %q", p.data[p.pos])
		}
		key, err := p.parseName()
		if err != nil {
			return nil, err
		}
		value, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		dict[string(key.(core.Name))] = value
	}
}

// skipSpace advances past whitespace and % comments.
func (p *Parser) skipSpace() {
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		if isWhitespace(c) {
			p.pos++
			continue
		}
		if c == '%' {
			for p.pos < len(p.data) && p.data[p.pos] != '\n' && p.data[p.pos] != '\r' {
				p.pos++
			}
			continue
		}
		break
	}
}

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f' || c == 0
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDelimiter(c byte) bool {
	return c == '(' || c == ')' || c == '<' || c == '>' ||
		c == '[' || c == ']' || c == '{' || c == '}' ||
		c == '/' || c == '%'
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func hexValue(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
