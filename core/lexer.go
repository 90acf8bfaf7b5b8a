package core

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
)

// TokenType classifies lexical tokens.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenKeyword   // true, false, null, obj, endobj, stream, R, ...
	TokenInteger   // 42
	TokenReal      // 3.14
	TokenString    // (hello); Value holds the unescaped bytes
	TokenHexString // <48656C6C6F>; Value holds the decoded bytes
	TokenName      // /Type; Value holds the name without the slash
	TokenArrayStart
	TokenArrayEnd
	TokenDictStart
	TokenDictEnd
)

// Token is a single lexical token. Pos is the byte offset of its first
// character in the input.
type Token struct {
	Type  TokenType
	Value []byte
	Pos   int64
}

// Lexer tokenizes PDF syntax. Comments are consumed silently; stream data
// is read out of band through ReadBytes/SkipBytes.
type Lexer struct {
	reader *bufio.Reader
	pos    int64
}

// NewLexer returns a lexer over r.
func NewLexer(r io.Reader) *Lexer {
	return &Lexer{reader: bufio.NewReader(r)}
}

// Pos returns the byte offset of the next unread byte.
func (l *Lexer) Pos() int64 { return l.pos }

// NextToken returns the next token, skipping whitespace and comments.
func (l *Lexer) NextToken() (*Token, error) {
	for {
		l.skipWhitespace()

		b, err := l.peek()
		if err == io.EOF {
			return &Token{Type: TokenEOF, Pos: l.pos}, nil
		}
		if err != nil {
			return nil, err
		}

		if b == '%' {
			if err := l.skipComment(); err != nil {
				return nil, err
			}
			continue
		}

		switch b {
		case '[':
			l.readByte()
			return &Token{Type: TokenArrayStart, Value: []byte{'['}, Pos: l.pos - 1}, nil
		case ']':
			l.readByte()
			return &Token{Type: TokenArrayEnd, Value: []byte{']'}, Pos: l.pos - 1}, nil
		case '(':
			return l.readString()
		case '<':
			next, err := l.peekN(2)
			if err == nil && len(next) == 2 && next[1] == '<' {
				l.readByte()
				l.readByte()
				return &Token{Type: TokenDictStart, Value: []byte("<<"), Pos: l.pos - 2}, nil
			}
			return l.readHexString()
		case '>':
			next, err := l.peekN(2)
			if err == nil && len(next) == 2 && next[1] == '>' {
				l.readByte()
				l.readByte()
				return &Token{Type: TokenDictEnd, Value: []byte(">>"), Pos: l.pos - 2}, nil
			}
			l.readByte()
			return nil, fmt.Errorf("unexpected '>' at offset %d", l.pos-1)
		case '/':
			return l.readName()
		}

		if isDigit(b) || b == '-' || b == '+' || b == '.' {
			return l.readNumber()
		}
		if isAlpha(b) {
			return l.readKeyword()
		}
		// The bad byte must be consumed: a caller that retries after the
		// error would otherwise see the same byte again.
		l.readByte()
		return nil, fmt.Errorf("unexpected byte 0x%02x at offset %d", b, l.pos-1)
	}
}

func (l *Lexer) readByte() (byte, error) {
	b, err := l.reader.ReadByte()
	if err != nil {
		return 0, err
	}
	l.pos++
	return b, nil
}

func (l *Lexer) peek() (byte, error) {
	buf, err := l.reader.Peek(1)
	if err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (l *Lexer) peekN(n int) ([]byte, error) {
	return l.reader.Peek(n)
}

func (l *Lexer) skipWhitespace() {
	for {
		b, err := l.peek()
		if err != nil || !isWhitespace(b) {
			return
		}
		l.readByte()
	}
}

func (l *Lexer) skipComment() error {
	// '%' through end of line
	for {
		b, err := l.readByte()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if b == '\n' {
			return nil
		}
		if b == '\r' {
			if next, err := l.peek(); err == nil && next == '\n' {
				l.readByte()
			}
			return nil
		}
	}
}

// readString reads a literal string. Balanced parentheses nest; escapes
// follow the PDF rules including octal codes and line continuations.
func (l *Lexer) readString() (*Token, error) {
	startPos := l.pos
	var buf bytes.Buffer

	if b, err := l.readByte(); err != nil {
		return nil, err
	} else if b != '(' {
		return nil, fmt.Errorf("expected '(' at offset %d", l.pos-1)
	}

	depth := 1
	for depth > 0 {
		b, err := l.readByte()
		if err != nil {
			return nil, fmt.Errorf("unterminated string starting at offset %d: %w", startPos, err)
		}

		switch b {
		case '(':
			depth++
			buf.WriteByte(b)
		case ')':
			depth--
			if depth > 0 {
				buf.WriteByte(b)
			}
		case '\\':
			next, err := l.readByte()
			if err != nil {
				return nil, fmt.Errorf("unterminated escape at offset %d: %w", l.pos, err)
			}
			switch next {
			case 'n':
				buf.WriteByte('\n')
			case 'r':
				buf.WriteByte('\r')
			case 't':
				buf.WriteByte('\t')
			case 'b':
				buf.WriteByte('\b')
			case 'f':
				buf.WriteByte('\f')
			case '(', ')', '\\':
				buf.WriteByte(next)
			case '\r', '\n':
				// backslash-newline is a line continuation
				if next == '\r' {
					if p, err := l.peek(); err == nil && p == '\n' {
						l.readByte()
					}
				}
			case '0', '1', '2', '3', '4', '5', '6', '7':
				val := next - '0'
				for i := 0; i < 2; i++ {
					p, err := l.peek()
					if err != nil || !isOctalDigit(p) {
						break
					}
					d, _ := l.readByte()
					val = val*8 + (d - '0')
				}
				buf.WriteByte(val)
			default:
				buf.WriteByte(next)
			}
		default:
			buf.WriteByte(b)
		}
	}

	return &Token{Type: TokenString, Value: buf.Bytes(), Pos: startPos}, nil
}

// readHexString reads <...> and decodes the hex pairs. An odd final digit
// is padded with zero.
func (l *Lexer) readHexString() (*Token, error) {
	startPos := l.pos

	if b, err := l.readByte(); err != nil {
		return nil, err
	} else if b != '<' {
		return nil, fmt.Errorf("expected '<' at offset %d", l.pos-1)
	}

	var digits []byte
	for {
		b, err := l.readByte()
		if err != nil {
			return nil, fmt.Errorf("unterminated hex string starting at offset %d: %w", startPos, err)
		}
		if b == '>' {
			break
		}
		if isWhitespace(b) {
			continue
		}
		if !isHexDigit(b) {
			return nil, fmt.Errorf("invalid hex digit %q at offset %d", b, l.pos-1)
		}
		digits = append(digits, b)
	}
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}

	decoded := make([]byte, len(digits)/2)
	for i := range decoded {
		decoded[i] = hexValue(digits[2*i])<<4 | hexValue(digits[2*i+1])
	}
	return &Token{Type: TokenHexString, Value: decoded, Pos: startPos}, nil
}

// readName reads /Name. #XX escapes are decoded.
func (l *Lexer) readName() (*Token, error) {
	startPos := l.pos
	var buf bytes.Buffer

	if b, err := l.readByte(); err != nil {
		return nil, err
	} else if b != '/' {
		return nil, fmt.Errorf("expected '/' at offset %d", l.pos-1)
	}

	for {
		b, err := l.peek()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if isWhitespace(b) || isDelimiter(b) {
			break
		}
		b, _ = l.readByte()

		if b == '#' {
			h1, err1 := l.readByte()
			h2, err2 := l.readByte()
			if err1 != nil || err2 != nil || !isHexDigit(h1) || !isHexDigit(h2) {
				return nil, fmt.Errorf("invalid #-escape in name at offset %d", l.pos-2)
			}
			buf.WriteByte(hexValue(h1)<<4 | hexValue(h2))
			continue
		}
		buf.WriteByte(b)
	}

	return &Token{Type: TokenName, Value: buf.Bytes(), Pos: startPos}, nil
}

func (l *Lexer) readNumber() (*Token, error) {
	startPos := l.pos
	var buf bytes.Buffer
	hasDecimal := false

	for {
		b, err := l.peek()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch {
		case b == '.' && !hasDecimal:
			hasDecimal = true
		case isDigit(b):
		case buf.Len() == 0 && (b == '-' || b == '+'):
		default:
			goto done
		}
		b, _ = l.readByte()
		buf.WriteByte(b)
	}
done:
	tokenType := TokenInteger
	if hasDecimal {
		tokenType = TokenReal
	}
	return &Token{Type: tokenType, Value: buf.Bytes(), Pos: startPos}, nil
}

func (l *Lexer) readKeyword() (*Token, error) {
	startPos := l.pos
	var buf bytes.Buffer

	for {
		b, err := l.peek()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if !isAlpha(b) && !isDigit(b) {
			break
		}
		b, _ = l.readByte()
		buf.WriteByte(b)
	}
	return &Token{Type: TokenKeyword, Value: buf.Bytes(), Pos: startPos}, nil
}

// SkipStreamEOL consumes the end-of-line after a "stream" keyword: CRLF,
// LF, or a lone CR from sloppy writers.
func (l *Lexer) SkipStreamEOL() error {
	b, err := l.peek()
	if err != nil {
		return err
	}
	switch b {
	case '\r':
		l.readByte()
		if next, err := l.peek(); err == nil && next == '\n' {
			l.readByte()
		}
	case '\n':
		l.readByte()
	}
	return nil
}

// ReadBytes reads exactly n bytes of raw data, bypassing tokenization.
func (l *Lexer) ReadBytes(n int) ([]byte, error) {
	data := make([]byte, n)
	read, err := io.ReadFull(l.reader, data)
	l.pos += int64(read)
	if err != nil {
		return data[:read], fmt.Errorf("short read: wanted %d bytes, got %d: %w", n, read, err)
	}
	return data, nil
}

// SkipBytes discards exactly n bytes of raw data.
func (l *Lexer) SkipBytes(n int) error {
	discarded, err := l.reader.Discard(n)
	l.pos += int64(discarded)
	if err != nil {
		return fmt.Errorf("skip %d bytes: %w", n, err)
	}
	return nil
}

// Peek returns the next byte without consuming it.
func (l *Lexer) Peek() (byte, error) { return l.peek() }

// ReadByte consumes and returns one byte.
func (l *Lexer) ReadByte() (byte, error) { return l.readByte() }

func isWhitespace(b byte) bool {
	// space, tab, LF, CR, FF, NUL
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f' || b == 0
}

func isDelimiter(b byte) bool {
	switch b {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isOctalDigit(b byte) bool { return b >= '0' && b <= '7' }

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func isAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func hexValue(b byte) byte {
	switch {
	case b >= '0' && b <= '9':
		return b - '0'
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10
	}
	return 0
}
