package kicadsexp

import (
	"errors"
	"fmt"
	"io"
)

// DefaultMaxDepth bounds list nesting. KiCad files rarely exceed a dozen levels.
const DefaultMaxDepth = 256

// ErrTooDeep is returned when lists nest deeper than the parser allows.
var ErrTooDeep = errors.New("list nesting too deep")

// Parser reads S-expressions one top-level form at a time.
type Parser struct {
	lexer    *Lexer
	maxDepth int
}

// open is a list still waiting for its ')'.
type open struct {
	line  int
	elems []Sexp
}

// NewParser creates a parser reading from r.
func NewParser(r io.Reader) *Parser {
	return &Parser{lexer: NewLexer(r), maxDepth: DefaultMaxDepth}
}

// SetMaxDepth changes the nesting limit. Values below 1 restore the default.
func (p *Parser) SetMaxDepth(n int) {
	if n < 1 {
		n = DefaultMaxDepth
	}
	p.maxDepth = n
}

// Next returns the next top-level expression. It returns io.EOF once the
// input holds nothing but whitespace and comments.
func (p *Parser) Next() (Sexp, error) {
	var stack []*open
	for {
		tok, err := p.lexer.NextToken()
		if err != nil {
			return nil, err
		}

		var done Sexp
		switch tok.Type {
		case TokenLeftParen:
			if len(stack) >= p.maxDepth {
				return nil, fmt.Errorf("line %d: %w", tok.Line, ErrTooDeep)
			}
			stack = append(stack, &open{line: tok.Line})
			continue
		case TokenRightParen:
			if len(stack) == 0 {
				return nil, fmt.Errorf("line %d: unexpected ')'", tok.Line)
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			done = &List{elements: top.elems}
		case TokenSymbol, TokenString:
			done = Symbol(tok.Value)
		case TokenEOF:
			if len(stack) == 0 {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("unexpected EOF in list opened on line %d", stack[len(stack)-1].line)
		default:
			return nil, fmt.Errorf("line %d: unexpected %v", tok.Line, tok.Type)
		}

		if len(stack) == 0 {
			return done, nil
		}
		parent := stack[len(stack)-1]
		parent.elems = append(parent.elems, done)
	}
}

// ParseAll collects every top-level expression.
func (p *Parser) ParseAll() ([]Sexp, error) {
	var result []Sexp
	for {
		expr, err := p.Next()
		if errors.Is(err, io.EOF) {
			return result, nil
		}
		if err != nil {
			return nil, err
		}
		result = append(result, expr)
	}
}
