package core

import (
	"fmt"
	"io"
	"strconv"

	"github.com/unpdf/unpdf/pdferr"
)

// ReferenceResolver resolves indirect references during parsing. The parser
// needs it only for streams whose /Length is itself indirect.
type ReferenceResolver interface {
	ResolveReference(ref IndirectRef) (Object, error)
}

// Parser builds Objects from a token stream. It keeps two tokens of
// lookahead so "num gen R" references can be distinguished from bare
// integers without backtracking.
type Parser struct {
	lexer        *Lexer
	currentToken *Token
	peekToken    *Token
	resolver     ReferenceResolver
	maxDepth     int
	depth        int
}

const defaultMaxDepth = 64

// NewParser returns a parser over r with the lookahead primed.
func NewParser(r io.Reader) *Parser {
	p := &Parser{lexer: NewLexer(r), maxDepth: defaultMaxDepth}
	p.nextToken()
	p.nextToken()
	return p
}

// SetMaxDepth caps container nesting. Values <= 0 keep the default.
func (p *Parser) SetMaxDepth(n int) {
	if n > 0 {
		p.maxDepth = n
	}
}

// SetReferenceResolver installs the resolver used for indirect /Length
// entries.
func (p *Parser) SetReferenceResolver(resolver ReferenceResolver) {
	p.resolver = resolver
}

// nextToken shifts the lookahead window. When the current token becomes the
// "stream" keyword the lexer stops tokenizing: what follows is binary data
// that parseStream reads out of band.
func (p *Parser) nextToken() error {
	p.currentToken = p.peekToken

	if p.currentToken != nil &&
		p.currentToken.Type == TokenKeyword &&
		string(p.currentToken.Value) == "stream" {
		p.peekToken = nil
		return nil
	}

	token, err := p.lexer.NextToken()
	if err != nil {
		// The lookahead must still advance: parking it on EOF keeps the
		// parse loops terminating even when the caller drops the error.
		p.peekToken = &Token{Type: TokenEOF, Pos: p.lexer.Pos()}
		return err
	}
	p.peekToken = token
	return nil
}

// ParseObject parses and returns the next object from the input.
func (p *Parser) ParseObject() (Object, error) {
	if p.currentToken == nil {
		return nil, fmt.Errorf("unexpected end of input")
	}

	switch p.currentToken.Type {
	case TokenEOF:
		return nil, io.EOF

	case TokenKeyword:
		keyword := string(p.currentToken.Value)
		switch keyword {
		case "null":
			p.nextToken()
			return Null{}, nil
		case "true":
			p.nextToken()
			return Bool(true), nil
		case "false":
			p.nextToken()
			return Bool(false), nil
		default:
			return nil, fmt.Errorf("unexpected keyword %q at offset %d", keyword, p.currentToken.Pos)
		}

	case TokenInteger:
		return p.parseNumberOrRef()

	case TokenReal:
		val, err := strconv.ParseFloat(string(p.currentToken.Value), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid real number %q: %w", p.currentToken.Value, err)
		}
		p.nextToken()
		return Real(val), nil

	case TokenString, TokenHexString:
		val := String(p.currentToken.Value)
		p.nextToken()
		return val, nil

	case TokenName:
		val := Name(p.currentToken.Value)
		p.nextToken()
		return val, nil

	case TokenArrayStart:
		return p.parseArray()

	case TokenDictStart:
		return p.parseDict()

	default:
		return nil, fmt.Errorf("unexpected token type %v at offset %d", p.currentToken.Type, p.currentToken.Pos)
	}
}

// parseNumberOrRef disambiguates "n", "n m" and "n m R" using the lookahead.
func (p *Parser) parseNumberOrRef() (Object, error) {
	first, err := strconv.ParseInt(string(p.currentToken.Value), 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(string(p.currentToken.Value), 64)
		if ferr != nil {
			return nil, fmt.Errorf("invalid number %q", p.currentToken.Value)
		}
		p.nextToken()
		return Real(f), nil
	}

	if p.peekToken != nil && p.peekToken.Type == TokenInteger {
		second, err := strconv.ParseInt(string(p.peekToken.Value), 10, 64)
		if err == nil {
			p.nextToken() // now at the second integer
			if p.peekToken != nil && p.peekToken.Type == TokenKeyword && string(p.peekToken.Value) == "R" {
				p.nextToken() // consume R
				p.nextToken()
				return IndirectRef{Number: int(first), Generation: int(second)}, nil
			}
			// Plain integer; the second one stays current for the caller.
			return Int(first), nil
		}
	}

	p.nextToken()
	return Int(first), nil
}

func (p *Parser) parseArray() (Object, error) {
	if p.currentToken.Type != TokenArrayStart {
		return nil, fmt.Errorf("expected '[', got %v", p.currentToken.Type)
	}
	if p.depth >= p.maxDepth {
		return nil, pdferr.Corrupted(nil, "object nesting exceeds %d levels", p.maxDepth)
	}
	p.depth++
	defer func() { p.depth-- }()
	p.nextToken()

	var arr Array
	for {
		if p.currentToken == nil {
			return nil, fmt.Errorf("unexpected end of input in array")
		}
		if p.currentToken.Type == TokenArrayEnd {
			p.nextToken()
			return arr, nil
		}
		if p.currentToken.Type == TokenEOF {
			return nil, fmt.Errorf("unterminated array")
		}
		obj, err := p.ParseObject()
		if err != nil {
			return nil, fmt.Errorf("array element %d: %w", len(arr), err)
		}
		arr = append(arr, obj)
	}
}

func (p *Parser) parseDict() (Object, error) {
	if p.currentToken.Type != TokenDictStart {
		return nil, fmt.Errorf("expected '<<', got %v", p.currentToken.Type)
	}
	if p.depth >= p.maxDepth {
		return nil, pdferr.Corrupted(nil, "object nesting exceeds %d levels", p.maxDepth)
	}
	p.depth++
	defer func() { p.depth-- }()
	p.nextToken()

	dict := make(Dict)
	for {
		if p.currentToken == nil {
			return nil, fmt.Errorf("unexpected end of input in dictionary")
		}
		if p.currentToken.Type == TokenDictEnd {
			p.nextToken()
			return dict, nil
		}
		if p.currentToken.Type == TokenEOF {
			return nil, fmt.Errorf("unterminated dictionary")
		}
		if p.currentToken.Type != TokenName {
			return nil, fmt.Errorf("dictionary key must be a name, got %v at offset %d",
				p.currentToken.Type, p.currentToken.Pos)
		}
		key := string(p.currentToken.Value)
		p.nextToken()

		value, err := p.ParseObject()
		if err != nil {
			return nil, fmt.Errorf("value for key /%s: %w", key, err)
		}
		dict[key] = value
	}
}

// ParseIndirectObject parses "num gen obj ... endobj", including stream
// objects whose data follows the dictionary.
func (p *Parser) ParseIndirectObject() (*IndirectObject, error) {
	if p.currentToken == nil || p.currentToken.Type != TokenInteger {
		return nil, fmt.Errorf("expected object number")
	}
	num, err := strconv.ParseInt(string(p.currentToken.Value), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid object number: %w", err)
	}
	p.nextToken()

	if p.currentToken.Type != TokenInteger {
		return nil, fmt.Errorf("expected generation number for object %d", num)
	}
	gen, err := strconv.ParseInt(string(p.currentToken.Value), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid generation number: %w", err)
	}
	p.nextToken()

	if p.currentToken.Type != TokenKeyword || string(p.currentToken.Value) != "obj" {
		return nil, fmt.Errorf("expected 'obj' keyword for object %d %d", num, gen)
	}
	p.nextToken()

	obj, err := p.ParseObject()
	if err != nil {
		return nil, fmt.Errorf("object %d %d: %w", num, gen, err)
	}

	if p.currentToken != nil && p.currentToken.Type == TokenKeyword && string(p.currentToken.Value) == "stream" {
		dict, ok := obj.(Dict)
		if !ok {
			return nil, fmt.Errorf("object %d %d: stream keyword without a dictionary", num, gen)
		}
		stream, err := p.parseStream(dict)
		if err != nil {
			return nil, fmt.Errorf("object %d %d: %w", num, gen, err)
		}
		obj = stream
	}

	if p.currentToken == nil || p.currentToken.Type != TokenKeyword || string(p.currentToken.Value) != "endobj" {
		return nil, fmt.Errorf("object %d %d: missing 'endobj'", num, gen)
	}
	p.nextToken()

	return &IndirectObject{
		Ref:    IndirectRef{Number: int(num), Generation: int(gen)},
		Object: obj,
	}, nil
}

// parseStream reads the binary payload after the "stream" keyword. The
// length comes from /Length, resolving it when indirect.
func (p *Parser) parseStream(dict Dict) (*Stream, error) {
	if p.currentToken.Type != TokenKeyword || string(p.currentToken.Value) != "stream" {
		return nil, fmt.Errorf("expected 'stream' keyword")
	}

	lengthObj := dict.Get("Length")
	if lengthObj == nil {
		return nil, fmt.Errorf("stream dictionary missing /Length")
	}

	var length int
	switch v := lengthObj.(type) {
	case Int:
		length = int(v)
	case IndirectRef:
		if p.resolver == nil {
			return nil, fmt.Errorf("indirect /Length %s needs a reference resolver", v)
		}
		resolved, err := p.resolver.ResolveReference(v)
		if err != nil {
			return nil, fmt.Errorf("resolving /Length %s: %w", v, err)
		}
		n, ok := resolved.(Int)
		if !ok {
			return nil, fmt.Errorf("/Length %s resolved to %T, want integer", v, resolved)
		}
		length = int(n)
	default:
		return nil, fmt.Errorf("invalid /Length type %T", lengthObj)
	}
	if length < 0 {
		return nil, fmt.Errorf("negative /Length %d", length)
	}

	// The keyword is followed by CRLF or LF, then exactly length bytes.
	if err := p.lexer.SkipStreamEOL(); err != nil {
		return nil, fmt.Errorf("after 'stream' keyword: %w", err)
	}
	data, err := p.lexer.ReadBytes(length)
	if err != nil {
		return nil, fmt.Errorf("reading %d stream bytes: %w", length, err)
	}

	token, err := p.lexer.NextToken()
	if err != nil {
		return nil, fmt.Errorf("after stream data: %w", err)
	}
	if token.Type != TokenKeyword || string(token.Value) != "endstream" {
		return nil, fmt.Errorf("expected 'endstream', got %q", token.Value)
	}

	// Re-prime the lookahead; it was parked while raw data went by.
	p.currentToken = nil
	p.peekToken = nil
	p.nextToken()
	p.nextToken()

	return &Stream{Dict: dict, Data: data}, nil
}
