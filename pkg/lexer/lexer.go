package lexer

import (
	"fmt"
	"strconv"

	"lox/pkg/token"
)

// Error is a scanning problem. Scanning keeps going after one is recorded.
type Error struct {
	Line    int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("[line %d] Error: %s", e.Line, e.Message)
}

type Lexer struct {
	input        string
	start        int  // first byte of the lexeme being scanned
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination
	line         int

	errors []*Error
}

func New(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
	}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition += 1
}

func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *Lexer) atEnd() bool {
	return l.position >= len(l.input)
}

// ScanTokens scans the whole input. The result always ends with an EOF token,
// even when errors were recorded along the way.
func (l *Lexer) ScanTokens() []token.Token {
	var tokens []token.Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			return tokens
		}
	}
}

// NextToken returns the next valid token. Illegal characters and unterminated
// strings are recorded in Errors and skipped.
func (l *Lexer) NextToken() token.Token {
	for {
		l.skipWhitespaceAndComments()

		l.start = l.position
		if l.atEnd() {
			return token.Token{Type: token.EOF, Lexeme: "", Line: l.line}
		}

		var tok token.Token
		switch l.ch {
		case '=':
			tok = l.either('=', token.EQ, token.ASSIGN)
		case '!':
			tok = l.either('=', token.NOT_EQ, token.BANG)
		case '<':
			tok = l.either('=', token.LTE, token.LT)
		case '>':
			tok = l.either('=', token.GTE, token.GT)
		case '+':
			tok = l.single(token.PLUS)
		case '-':
			tok = l.single(token.MINUS)
		case '*':
			tok = l.single(token.ASTERISK)
		case '/':
			tok = l.single(token.SLASH)
		case ',':
			tok = l.single(token.COMMA)
		case ';':
			tok = l.single(token.SEMICOLON)
		case '.':
			tok = l.single(token.DOT)
		case '(':
			tok = l.single(token.LPAREN)
		case ')':
			tok = l.single(token.RPAREN)
		case '{':
			tok = l.single(token.LBRACE)
		case '}':
			tok = l.single(token.RBRACE)
		case '"':
			var ok bool
			if tok, ok = l.readString(); !ok {
				continue
			}
		default:
			if isLetter(l.ch) {
				return l.readIdentifier()
			} else if isDigit(l.ch) {
				return l.readNumber()
			}
			l.errorf("Unexpected character '%c'.", l.ch)
			l.readChar()
			continue
		}
		return tok
	}
}

// Errors returns every problem recorded so far, in source order.
func (l *Lexer) Errors() []*Error {
	return l.errors
}

func (l *Lexer) errorf(format string, a ...any) {
	l.errors = append(l.errors, &Error{Line: l.line, Message: fmt.Sprintf(format, a...)})
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		switch l.ch {
		case ' ', '\t', '\r':
			l.readChar()
		case '\n':
			l.line++
			l.readChar()
		case '/':
			if l.peekChar() != '/' {
				return
			}
			for l.ch != '\n' && !l.atEnd() {
				l.readChar()
			}
		default:
			return
		}
	}
}

func (l *Lexer) single(t token.TokenType) token.Token {
	tok := newToken(t, string(l.ch), l.line)
	l.readChar()
	return tok
}

// either scans a one or two character operator depending on the next byte.
func (l *Lexer) either(next byte, double, single token.TokenType) token.Token {
	if l.peekChar() == next {
		ch := l.ch
		l.readChar()
		tok := newToken(double, string(ch)+string(l.ch), l.line)
		l.readChar()
		return tok
	}
	return l.single(single)
}

func newToken(tokenType token.TokenType, lexeme string, line int) token.Token {
	return token.Token{Type: tokenType, Lexeme: lexeme, Line: line}
}

func (l *Lexer) readIdentifier() token.Token {
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	text := l.input[l.start:l.position]
	return newToken(token.LookupIdent(text), text, l.line)
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func (l *Lexer) readNumber() token.Token {
	for isDigit(l.ch) {
		l.readChar()
	}
	// A trailing dot without digits is left for the DOT token.
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	text := l.input[l.start:l.position]
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		l.errorf("Invalid number %q.", text)
	}
	tok := newToken(token.NUMBER, text, l.line)
	tok.Literal = value
	return tok
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func (l *Lexer) readString() (token.Token, bool) {
	l.readChar() // Skip opening quote

	for l.ch != '"' && !l.atEnd() {
		if l.ch == '\n' {
			l.line++
		}
		l.readChar()
	}

	if l.atEnd() {
		l.errorf("Unterminated string.")
		return token.Token{}, false
	}

	l.readChar() // closing quote
	text := l.input[l.start:l.position]
	tok := newToken(token.STRING, text, l.line)
	tok.Literal = text[1 : len(text)-1]
	return tok, true
}
