package tokenizer

import (
	"unicode"
)

// TokenizerState represents the current state of the tokenizer
type TokenizerState int

const (
	DATA TokenizerState = iota
	IDENT
	AFTER_DOT
	STRING_DOUBLE_QUOTE
	STRING_SINGLE_QUOTE
	DOTS
)

// TokenType represents the type of a token
type TokenType int

const (
	Ident TokenType = iota
	String
	LeftBracket
	RightBracket
	Comma
	Ellipsis
	Error
)

func (tt TokenType) String() string {
	switch tt {
	case Ident:
		return "Ident"
	case String:
		return "String"
	case LeftBracket:
		return "LeftBracket"
	case RightBracket:
		return "RightBracket"
	case Comma:
		return "Comma"
	case Ellipsis:
		return "Ellipsis"
	case Error:
		return "Error"
	default:
		return "Unknown"
	}
}

// Position represents a position in the source code
type Position struct {
	Line   int
	Column int
}

// Token represents a lexical token
type Token struct {
	Type  TokenType
	Value string
	Start Position
	End   Position
}

// Tokenizer splits a type expression such as "Dict[str, List[T]]" into
// tokens
type Tokenizer struct {
	input           string
	state           TokenizerState
	position        Position
	currentPosition int
	tokens          []Token
	currentToken    *Token
	dots            int
}

// NewTokenizer creates a new tokenizer with the given input
func NewTokenizer(input string) *Tokenizer {
	return &Tokenizer{
		input:    input,
		state:    DATA,
		position: Position{Line: 1, Column: 1},
		tokens:   make([]Token, 0),
	}
}

// peek returns the next character without consuming it
func (t *Tokenizer) peek() rune {
	if t.currentPosition >= len(t.input) {
		return 0
	}
	return rune(t.input[t.currentPosition])
}

// advance consumes the next character and advances the position
func (t *Tokenizer) advance() rune {
	if t.currentPosition >= len(t.input) {
		return 0
	}
	char := rune(t.input[t.currentPosition])
	t.currentPosition++
	if char == '\n' {
		t.position.Line++
		t.position.Column = 1
	} else {
		t.position.Column++
	}
	return char
}

func (t *Tokenizer) initializeToken(tt TokenType) {
	t.currentToken = &Token{
		Type:  tt,
		Start: t.position,
		End:   t.position,
	}
}

// pushCurrentToken adds the current token to the tokens slice
func (t *Tokenizer) pushCurrentToken() {
	if t.currentToken == nil {
		panic("Expected current token to be defined when pushing current token")
	}
	t.currentToken.End = t.position
	t.tokens = append(t.tokens, *t.currentToken)
	t.currentToken = nil
	t.state = DATA
}

// pushErrorToken creates and pushes an error token
func (t *Tokenizer) pushErrorToken(message string) {
	if t.currentToken == nil {
		t.initializeToken(Error)
	}
	t.currentToken.Type = Error
	t.currentToken.Value = message
	t.pushCurrentToken()
}

// pushSingle pushes a one-character token
func (t *Tokenizer) pushSingle(tt TokenType) {
	t.initializeToken(tt)
	t.currentToken.Value = string(t.advance())
	t.pushCurrentToken()
}

func isIdentStart(char rune) bool {
	return char == '_' || (char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z')
}

func isIdentPart(char rune) bool {
	return isIdentStart(char) || (char >= '0' && char <= '9')
}

func isWhitespace(char rune) bool {
	return unicode.IsSpace(char)
}

// Tokenize processes the input and returns the tokens. Malformed input
// produces Error tokens rather than stopping the tokenizer.
func (t *Tokenizer) Tokenize() []Token {
	for t.currentPosition < len(t.input) {
		char := t.peek()

		switch t.state {
		case DATA:
			switch {
			case isWhitespace(char):
				t.advance()
			case isIdentStart(char):
				t.initializeToken(Ident)
				t.currentToken.Value += string(t.advance())
				t.state = IDENT
			case char == '[':
				t.pushSingle(LeftBracket)
			case char == ']':
				t.pushSingle(RightBracket)
			case char == ',':
				t.pushSingle(Comma)
			case char == '"':
				t.initializeToken(String)
				t.advance()
				t.state = STRING_DOUBLE_QUOTE
			case char == '\'':
				t.initializeToken(String)
				t.advance()
				t.state = STRING_SINGLE_QUOTE
			case char == '.':
				t.initializeToken(Ellipsis)
				t.dots = 0
				t.state = DOTS
			default:
				t.initializeToken(Error)
				t.advance()
				t.pushErrorToken("Unexpected character " + string(char))
			}

		case IDENT:
			if isIdentPart(char) {
				t.currentToken.Value += string(t.advance())
			} else if char == '.' {
				t.currentToken.Value += string(t.advance())
				t.state = AFTER_DOT
			} else {
				t.pushCurrentToken()
			}

		case AFTER_DOT:
			if isIdentStart(char) {
				t.currentToken.Value += string(t.advance())
				t.state = IDENT
			} else {
				t.pushErrorToken("Expected name after '.'")
			}

		case STRING_DOUBLE_QUOTE, STRING_SINGLE_QUOTE:
			quote := '"'
			if t.state == STRING_SINGLE_QUOTE {
				quote = '\''
			}
			if char == quote {
				t.advance()
				t.pushCurrentToken()
			} else if char == '\n' {
				t.pushErrorToken("Unterminated string")
			} else {
				t.currentToken.Value += string(t.advance())
			}

		case DOTS:
			if char == '.' && t.dots < 3 {
				t.advance()
				t.dots++
				if t.dots == 3 {
					t.currentToken.Value = "..."
					t.pushCurrentToken()
				}
			} else {
				t.pushErrorToken("Expected '...'")
			}

		default:
			t.initializeToken(Error)
			t.advance()
			t.pushErrorToken("Unknown tokenizer state")
		}
	}

	// Flush a token cut off by the end of input
	switch t.state {
	case IDENT:
		t.pushCurrentToken()
	case AFTER_DOT:
		t.pushErrorToken("Expected name after '.'")
	case STRING_DOUBLE_QUOTE, STRING_SINGLE_QUOTE:
		t.pushErrorToken("Unterminated string")
	case DOTS:
		t.pushErrorToken("Expected '...'")
	}

	return t.tokens
}
