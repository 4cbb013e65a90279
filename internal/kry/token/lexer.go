package token

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kryonlabs/kryc/internal/kry/kryerr"
)

// Lexer scans KRY source left-to-right, maintaining a line/column
// cursor (spec §4.1). Whitespace is significant only as a separator;
// there is no indentation semantics at this layer (unlike the
// teacher's indentation-driven parser.go, which folded lexing and
// block-structure into one pass — here lexing is a standalone stage
// per spec §2).
type Lexer struct {
	file string
	src  []byte
	pos  int
	line int
	col  int
}

func New(file string, src []byte) *Lexer {
	return &Lexer{file: file, src: src, pos: 0, line: 1, col: 1}
}

// Tokens lexes the entire input eagerly into a slice terminated by an
// EOF sentinel (spec §3: "a lazy ordered sequence"; eager here since
// KRY files are small and the rest of the pipeline wants random access
// for lookahead without re-implementing a cursor).
func (l *Lexer) Tokens() ([]Token, error) {
	var out []Token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		out = append(out, tok)
		if tok.Kind == EOF {
			return out, nil
		}
	}
}

func (l *Lexer) peekByte() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) peekByteAt(off int) byte {
	if l.pos+off >= len(l.src) {
		return 0
	}
	return l.src[l.pos+off]
}

func (l *Lexer) advance() byte {
	b := l.src[l.pos]
	l.pos++
	if b == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return b
}

func (l *Lexer) skipWhitespaceAndComments() {
	for l.pos < len(l.src) {
		b := l.peekByte()
		switch {
		case b == ' ' || b == '\t' || b == '\r' || b == '\n':
			l.advance()
		case b == '#' && !isHexColorStart(l.src[l.pos:]):
			for l.pos < len(l.src) && l.peekByte() != '\n' {
				l.advance()
			}
		case b == '/' && l.peekByteAt(1) == '/':
			for l.pos < len(l.src) && l.peekByte() != '\n' {
				l.advance()
			}
		default:
			return
		}
	}
}

func (l *Lexer) next() (Token, error) {
	l.skipWhitespaceAndComments()
	if l.pos >= len(l.src) {
		return Token{Kind: EOF, Line: l.line, Column: l.col}, nil
	}

	startLine, startCol := l.line, l.col
	b := l.peekByte()

	switch {
	case b == '"':
		return l.lexString(startLine, startCol)
	case b == '#' && isHexColorStart(l.src[l.pos:]):
		return l.lexColor(startLine, startCol)
	case b == '$':
		return l.lexVarRef(startLine, startCol)
	case isDigit(b) || (b == '-' && isDigit(l.peekByteAt(1))):
		return l.lexNumber(startLine, startCol)
	case isIdentStart(b):
		return l.lexIdentifier(startLine, startCol)
	case b == '@':
		return l.lexDirective(startLine, startCol)
	case strings.IndexByte(punctChars, b) >= 0:
		l.advance()
		return Token{Kind: Punct, Text: string(b), Line: startLine, Column: startCol}, nil
	default:
		r, size := utf8.DecodeRune(l.src[l.pos:])
		l.pos += size
		l.col++
		return Token{}, &kryerr.Error{Kind: kryerr.Lex, File: l.file, Line: startLine, Column: startCol,
			Message: "unrecognized character " + string(r)}
	}
}

func isHexColorStart(rest []byte) bool {
	if len(rest) < 2 || rest[0] != '#' {
		return false
	}
	return isHexDigit(rest[1])
}

func isDigit(b byte) bool      { return b >= '0' && b <= '9' }
func isHexDigit(b byte) bool   { return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F') }
func isIdentStart(b byte) bool { return unicode.IsLetter(rune(b)) || b == '_' }
func isIdentCont(b byte) bool  { return unicode.IsLetter(rune(b)) || unicode.IsDigit(rune(b)) || b == '_' }

func (l *Lexer) lexString(line, col int) (Token, error) {
	l.advance() // opening quote
	var sb strings.Builder
	for {
		if l.pos >= len(l.src) {
			return Token{}, &kryerr.Error{Kind: kryerr.Lex, File: l.file, Line: line, Column: col, Message: "unterminated string literal"}
		}
		b := l.peekByte()
		if b == '"' {
			l.advance()
			return Token{Kind: StringLiteral, Text: sb.String(), Line: line, Column: col}, nil
		}
		if b == '\\' {
			l.advance()
			if l.pos >= len(l.src) {
				return Token{}, &kryerr.Error{Kind: kryerr.Lex, File: l.file, Line: line, Column: col, Message: "unterminated string literal"}
			}
			esc := l.advance()
			switch esc {
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
			default:
				sb.WriteByte(esc)
			}
			continue
		}
		if b == '\n' {
			return Token{}, &kryerr.Error{Kind: kryerr.Lex, File: l.file, Line: line, Column: col, Message: "unterminated string literal"}
		}
		sb.WriteByte(l.advance())
	}
}

func (l *Lexer) lexColor(line, col int) (Token, error) {
	l.advance() // '#', not kept in the token text
	var sb strings.Builder
	for l.pos < len(l.src) && isHexDigit(l.peekByte()) {
		sb.WriteByte(l.advance())
	}
	hex := sb.String()
	n := len(hex)
	if n != 3 && n != 4 && n != 6 && n != 8 {
		return Token{}, &kryerr.Error{Kind: kryerr.Lex, File: l.file, Line: line, Column: col, Message: "malformed color literal #" + hex}
	}
	return Token{Kind: ColorLiteral, Text: hex, Line: line, Column: col}, nil
}

func (l *Lexer) lexVarRef(line, col int) (Token, error) {
	l.advance() // '$'
	var sb strings.Builder
	for l.pos < len(l.src) && isIdentCont(l.peekByte()) {
		sb.WriteByte(l.advance())
	}
	if sb.Len() == 0 {
		return Token{}, &kryerr.Error{Kind: kryerr.Lex, File: l.file, Line: line, Column: col, Message: "bare '$' with no variable name"}
	}
	return Token{Kind: VarRef, Text: sb.String(), Line: line, Column: col}, nil
}

func (l *Lexer) lexNumber(line, col int) (Token, error) {
	var sb strings.Builder
	if l.peekByte() == '-' {
		sb.WriteByte(l.advance())
	}
	for l.pos < len(l.src) && (isDigit(l.peekByte()) || l.peekByte() == '.') {
		sb.WriteByte(l.advance())
	}
	// optional unit suffix
	switch {
	case l.pos < len(l.src) && l.peekByte() == '%':
		sb.WriteByte(l.advance())
		return Token{Kind: Percentage, Text: sb.String(), Line: line, Column: col}, nil
	case strings.HasPrefix(string(l.src[l.pos:min(l.pos+2, len(l.src))]), "px"):
		l.advance()
		l.advance()
		sb.WriteString("px")
		return Token{Kind: PixelSize, Text: sb.String(), Line: line, Column: col}, nil
	case strings.HasPrefix(string(l.src[l.pos:min(l.pos+2, len(l.src))]), "em"):
		l.advance()
		l.advance()
		sb.WriteString("em")
		return Token{Kind: PixelSize, Text: sb.String(), Line: line, Column: col}, nil
	}
	return Token{Kind: Number, Text: sb.String(), Line: line, Column: col}, nil
}

func (l *Lexer) lexIdentifier(line, col int) (Token, error) {
	var sb strings.Builder
	for l.pos < len(l.src) && isIdentCont(l.peekByte()) {
		sb.WriteByte(l.advance())
	}
	return Token{Kind: Identifier, Text: sb.String(), Line: line, Column: col}, nil
}

func (l *Lexer) lexDirective(line, col int) (Token, error) {
	l.advance() // '@'
	var sb strings.Builder
	for l.pos < len(l.src) && isIdentCont(l.peekByte()) {
		sb.WriteByte(l.advance())
	}
	return Token{Kind: At, Text: sb.String(), Line: line, Column: col}, nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
