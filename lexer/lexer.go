// Package lexer turns source text into a flat token stream.
//
// Whitespace (space, tab, carriage return) is skipped; line comments
// starting with '#' run to end-of-line and are skipped; newlines are
// significant and emitted as their own token, since the grammar is
// newline-terminated.
package lexer

import (
	"strings"

	"github.com/anemo-lang/anemo/diag"
	"github.com/anemo-lang/anemo/token"
)

// Lexer holds our scanning state.
type Lexer struct {
	file string

	characters   []rune // rune slice of the source text
	position     int    // current character position
	readPosition int    // next character position
	ch           rune   // current character

	line int // 1-based line of l.ch
	col  int // 1-based column of l.ch
}

// New builds a Lexer over the given source text. file is used only to
// qualify diagnostics.
func New(file, input string) *Lexer {
	l := &Lexer{file: file, characters: []rune(input), line: 1, col: 0}
	l.readChar()
	return l
}

// read one character forward, tracking line/column as we go.
func (l *Lexer) readChar() {
	if l.readPosition > 0 && l.position < len(l.characters) && l.characters[l.position] == '\n' {
		l.line++
		l.col = 0
	}
	if l.readPosition >= len(l.characters) {
		l.ch = rune(0)
	} else {
		l.ch = l.characters[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	l.col++
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.characters) {
		return rune(0)
	}
	return l.characters[l.readPosition]
}

// Next returns the next token in the stream, or a *diag.Diagnostic if
// the source text cannot be tokenized. Once EOF is returned, every
// subsequent call returns EOF again.
func (l *Lexer) Next() (token.Token, error) {
	l.skipWhitespaceAndComments()

	line, col := l.line, l.col

	switch l.ch {
	case rune(0):
		return token.Token{Kind: token.EOF, Pos: token.Position{Line: line, Col: col}}, nil
	case '\n':
		l.readChar()
		return token.Token{Kind: token.NEWLINE, Pos: token.Position{Line: line, Col: col}}, nil
	case '"':
		return l.readString(line, col)
	}

	if isDigit(l.ch) {
		return l.readNumber(line, col), nil
	}
	if isIdentStart(l.ch) {
		return l.readIdentifier(line, col), nil
	}

	var kind token.Kind
	switch l.ch {
	case '+':
		kind = token.PLUS
	case '-':
		kind = token.MINUS
	case '*':
		kind = token.STAR
	case '/':
		kind = token.SLASH
	case '=':
		kind = token.ASSIGN
	case ',':
		kind = token.COMMA
	case ':':
		kind = token.COLON
	case '[':
		kind = token.LBRACKET
	case ']':
		kind = token.RBRACKET
	default:
		bad := l.ch
		return token.Token{}, diag.New(l.file, line, col, "unexpected character %q", bad)
	}

	l.readChar()
	return token.Token{Kind: kind, Pos: token.Position{Line: line, Col: col}}, nil
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\r':
			l.readChar()
		case l.ch == '#':
			for l.ch != '\n' && l.ch != rune(0) {
				l.readChar()
			}
		default:
			return
		}
	}
}

func (l *Lexer) readNumber(line, col int) token.Token {
	var sb strings.Builder
	for isDigit(l.ch) {
		sb.WriteRune(l.ch)
		l.readChar()
	}
	text := sb.String()

	// Wraparound on an out-of-range literal is permitted; we do not
	// detect overflow at lex time.
	var v int64
	for _, r := range text {
		v = v*10 + int64(r-'0')
	}

	return token.Token{
		Kind:     token.INT,
		Lexeme:   text,
		IntValue: v,
		Pos:      token.Position{Line: line, Col: col},
	}
}

func (l *Lexer) readIdentifier(line, col int) token.Token {
	var sb strings.Builder
	for isIdentPart(l.ch) {
		sb.WriteRune(l.ch)
		l.readChar()
	}
	text := sb.String()

	return token.Token{
		Kind:   token.LookupIdent(text),
		Lexeme: text,
		Pos:    token.Position{Line: line, Col: col},
	}
}

func (l *Lexer) readString(line, col int) (token.Token, error) {
	l.readChar() // consume opening quote

	var sb strings.Builder
	for {
		switch l.ch {
		case rune(0):
			return token.Token{}, diag.New(l.file, line, col, "unterminated string literal")
		case '\n':
			return token.Token{}, diag.New(l.file, line, col, "newline in string literal")
		case '"':
			l.readChar() // consume closing quote
			return token.Token{
				Kind:   token.STRING,
				Lexeme: sb.String(),
				Pos:    token.Position{Line: line, Col: col},
			}, nil
		case '\\':
			escLine, escCol := l.line, l.col
			l.readChar()
			switch l.ch {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case '"':
				sb.WriteByte('"')
			case '\\':
				sb.WriteByte('\\')
			case rune(0):
				return token.Token{}, diag.New(l.file, line, col, "unterminated string escape")
			default:
				return token.Token{}, diag.New(l.file, escLine, escCol, "unsupported escape sequence \\%c", l.ch)
			}
			l.readChar()
		default:
			sb.WriteRune(l.ch)
			l.readChar()
		}
	}
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch rune) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch rune) bool {
	return isIdentStart(ch) || isDigit(ch)
}
