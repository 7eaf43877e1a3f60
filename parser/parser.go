package parser

import (
	"fmt"
	"strings"

	"github.com/typolang/typo/tokenizer"
)

type ParseError struct {
	Pos     Position
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: parse error: %s", e.Pos, e.Message)
}

type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("line %d, column %d", p.Line, p.Column)
}

// Expr is a parsed type expression. Exactly one of Name, Quoted or
// Ellipsis describes the node; Args is only set when the expression was
// subscripted, so "List" and "List[]" can be told apart through HasArgs.
type Expr struct {
	Name     string
	Quoted   bool
	Ellipsis bool
	HasArgs  bool
	Args     []*Expr
	Start    Position
	End      Position
}

// String renders the expression in canonical form.
func (e *Expr) String() string {
	var b strings.Builder
	e.write(&b)
	return b.String()
}

func (e *Expr) write(b *strings.Builder) {
	switch {
	case e.Ellipsis:
		b.WriteString("...")
		return
	case e.Quoted:
		b.WriteString("'" + e.Name + "'")
		return
	}
	b.WriteString(e.Name)
	if !e.HasArgs {
		return
	}
	b.WriteByte('[')
	for i, arg := range e.Args {
		if i > 0 {
			b.WriteString(", ")
		}
		arg.write(b)
	}
	b.WriteByte(']')
}

type parser struct {
	tokens []tokenizer.Token
	pos    int
	end    Position
}

// Parse parses a single type expression such as "Dict[str, List[T]]".
func Parse(input string) (*Expr, error) {
	t := tokenizer.NewTokenizer(input)
	tokens := t.Tokenize()
	for _, tok := range tokens {
		if tok.Type == tokenizer.Error {
			return nil, &ParseError{Pos: position(tok.Start), Message: tok.Value}
		}
	}
	p := &parser{tokens: tokens, end: endOf(input)}
	expr, err := p.parseExpr(false)
	if err != nil {
		return nil, err
	}
	if tok, ok := p.peek(); ok {
		return nil, p.errorAt(tok, "unexpected %s after type expression", describe(tok))
	}
	return expr, nil
}

func position(p tokenizer.Position) Position {
	return Position{Line: p.Line, Column: p.Column}
}

// endOf returns the position just past the last character of input.
func endOf(input string) Position {
	pos := Position{Line: 1, Column: 1}
	for _, c := range []byte(input) {
		if c == '\n' {
			pos.Line++
			pos.Column = 1
		} else {
			pos.Column++
		}
	}
	return pos
}

func (p *parser) peek() (tokenizer.Token, bool) {
	if p.pos >= len(p.tokens) {
		return tokenizer.Token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *parser) next() (tokenizer.Token, bool) {
	tok, ok := p.peek()
	if ok {
		p.pos++
	}
	return tok, ok
}

func (p *parser) errorAt(tok tokenizer.Token, format string, args ...any) *ParseError {
	return &ParseError{Pos: position(tok.Start), Message: fmt.Sprintf(format, args...)}
}

func (p *parser) errorAtEnd(format string, args ...any) *ParseError {
	return &ParseError{Pos: p.end, Message: fmt.Sprintf(format, args...)}
}

func describe(tok tokenizer.Token) string {
	switch tok.Type {
	case tokenizer.Ident:
		return fmt.Sprintf("name %s", tok.Value)
	case tokenizer.String:
		return fmt.Sprintf("string '%s'", tok.Value)
	default:
		return fmt.Sprintf("'%s'", tok.Value)
	}
}

// parseExpr parses one expression. An ellipsis is only accepted as a
// subscript argument.
func (p *parser) parseExpr(inArgs bool) (*Expr, error) {
	tok, ok := p.next()
	if !ok {
		return nil, p.errorAtEnd("expected type expression")
	}
	switch tok.Type {
	case tokenizer.String:
		return &Expr{Name: tok.Value, Quoted: true, Start: position(tok.Start), End: position(tok.End)}, nil
	case tokenizer.Ellipsis:
		if !inArgs {
			return nil, p.errorAt(tok, "unexpected '...'")
		}
		return &Expr{Ellipsis: true, Start: position(tok.Start), End: position(tok.End)}, nil
	case tokenizer.Ident:
	default:
		return nil, p.errorAt(tok, "expected type expression, got %s", describe(tok))
	}

	expr := &Expr{Name: tok.Value, Start: position(tok.Start), End: position(tok.End)}
	open, ok := p.peek()
	if !ok || open.Type != tokenizer.LeftBracket {
		return expr, nil
	}
	p.pos++
	expr.HasArgs = true
	for {
		tok, ok := p.peek()
		if !ok {
			return nil, p.errorAtEnd("unclosed '[' opened at %s", position(open.Start))
		}
		if tok.Type == tokenizer.RightBracket {
			p.pos++
			expr.End = position(tok.End)
			return expr, nil
		}
		arg, err := p.parseExpr(true)
		if err != nil {
			return nil, err
		}
		expr.Args = append(expr.Args, arg)

		tok, ok = p.peek()
		if !ok {
			return nil, p.errorAtEnd("unclosed '[' opened at %s", position(open.Start))
		}
		switch tok.Type {
		case tokenizer.Comma:
			p.pos++
		case tokenizer.RightBracket:
		default:
			return nil, p.errorAt(tok, "expected ',' or ']', got %s", describe(tok))
		}
	}
}
