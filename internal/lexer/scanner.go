package lexer

import (
	"fmt"

	"tern/internal/errors"
)

type TokenType string

const (
	// Keywords
	TokenVar   TokenType = "VAR"
	TokenPrint TokenType = "PRINT"
	TokenIf    TokenType = "IF"
	TokenElse  TokenType = "ELSE"
	TokenTrue  TokenType = "TRUE"
	TokenFalse TokenType = "FALSE"

	// Literals
	TokenIdent  TokenType = "IDENT"
	TokenInt    TokenType = "INT"
	TokenFloat  TokenType = "FLOAT"
	TokenString TokenType = "STRING"

	// Symbols
	TokenPlus        TokenType = "+"
	TokenMinus       TokenType = "-"
	TokenStar        TokenType = "*"
	TokenSlash       TokenType = "/"
	TokenGT          TokenType = ">"
	TokenLT          TokenType = "<"
	TokenGE          TokenType = ">="
	TokenLE          TokenType = "<="
	TokenDoubleEqual TokenType = "=="
	TokenNotEqual    TokenType = "!="
	TokenBang        TokenType = "!"
	TokenAnd         TokenType = "&&"
	TokenOr          TokenType = "||"
	TokenEqual       TokenType = "="
	TokenSemicolon   TokenType = ";"
	TokenLParen      TokenType = "("
	TokenRParen      TokenType = ")"
	TokenLBrace      TokenType = "{"
	TokenRBrace      TokenType = "}"
	TokenEOF         TokenType = "EOF"
)

var keywords = map[string]TokenType{
	"var":   TokenVar,
	"print": TokenPrint,
	"if":    TokenIf,
	"else":  TokenElse,
	"true":  TokenTrue,
	"false": TokenFalse,
}

type Token struct {
	Type   TokenType
	Lexeme string
	Line   int
	Column int
}

func (t Token) String() string {
	return fmt.Sprintf("[%s] '%s' L%d:C%d", t.Type, t.Lexeme, t.Line, t.Column)
}

// Scanner turns source text into a flat token stream. It stops at the
// first lexical error.
type Scanner struct {
	source    string
	tokens    []Token
	current   int
	line      int
	lineStart int
}

func NewScanner(source string) *Scanner {
	return &Scanner{
		source: source,
		line:   1,
	}
}

// ScanTokens scans the whole source and returns the tokens, terminated
// by an EOF token.
func (s *Scanner) ScanTokens() ([]Token, error) {
	for !s.isAtEnd() {
		if err := s.scanToken(); err != nil {
			return nil, err
		}
	}
	s.tokens = append(s.tokens, Token{Type: TokenEOF, Line: s.line, Column: s.column() + 1})
	return s.tokens, nil
}

func (s *Scanner) scanToken() error {
	c := s.advance()
	col := s.column()

	switch c {
	case ' ', '\r', '\t':
		// skip
	case '\n':
		s.line++
		s.lineStart = s.current
	case '+':
		s.add(TokenPlus, "+", col)
	case '-':
		s.add(TokenMinus, "-", col)
	case '*':
		s.add(TokenStar, "*", col)
	case '/':
		if s.match('/') {
			for !s.isAtEnd() && s.peek() != '\n' {
				s.advance()
			}
		} else {
			s.add(TokenSlash, "/", col)
		}
	case '(':
		s.add(TokenLParen, "(", col)
	case ')':
		s.add(TokenRParen, ")", col)
	case '{':
		s.add(TokenLBrace, "{", col)
	case '}':
		s.add(TokenRBrace, "}", col)
	case ';':
		s.add(TokenSemicolon, ";", col)
	case '=':
		if s.match('=') {
			s.add(TokenDoubleEqual, "==", col)
		} else {
			s.add(TokenEqual, "=", col)
		}
	case '>':
		if s.match('=') {
			s.add(TokenGE, ">=", col)
		} else {
			s.add(TokenGT, ">", col)
		}
	case '<':
		if s.match('=') {
			s.add(TokenLE, "<=", col)
		} else {
			s.add(TokenLT, "<", col)
		}
	case '!':
		if s.match('=') {
			s.add(TokenNotEqual, "!=", col)
		} else {
			s.add(TokenBang, "!", col)
		}
	case '&':
		if s.match('&') {
			s.add(TokenAnd, "&&", col)
		} else {
			return errors.NewSyntaxError("unexpected character '&'", s.line, col)
		}
	case '|':
		if s.match('|') {
			s.add(TokenOr, "||", col)
		} else {
			return errors.NewSyntaxError("unexpected character '|'", s.line, col)
		}
	case '"':
		return s.stringLiteral(col)
	default:
		if isDigit(c) {
			s.number(c, col)
			return nil
		}
		if isAlpha(c) {
			s.identifier(c, col)
			return nil
		}
		return errors.NewSyntaxError(fmt.Sprintf("unexpected character %q", c), s.line, col)
	}
	return nil
}

// number scans an integer or float literal. At most one decimal point
// is consumed; a second dot ends the literal.
func (s *Scanner) number(first byte, col int) {
	lexeme := []byte{first}
	hasDecimal := false
	for !s.isAtEnd() && (isDigit(s.peek()) || s.peek() == '.') {
		if s.peek() == '.' {
			if hasDecimal {
				break
			}
			hasDecimal = true
		}
		lexeme = append(lexeme, s.advance())
	}
	if hasDecimal {
		s.add(TokenFloat, string(lexeme), col)
	} else {
		s.add(TokenInt, string(lexeme), col)
	}
}

func (s *Scanner) identifier(first byte, col int) {
	lexeme := []byte{first}
	for !s.isAtEnd() && isAlphaNumeric(s.peek()) {
		lexeme = append(lexeme, s.advance())
	}
	name := string(lexeme)
	if kw, ok := keywords[name]; ok {
		s.add(kw, name, col)
	} else {
		s.add(TokenIdent, name, col)
	}
}

// stringLiteral scans a double-quoted string. Only \" and \\ escapes are
// recognized; any other backslash is kept literally.
func (s *Scanner) stringLiteral(col int) error {
	var value []byte
	for !s.isAtEnd() && s.peek() != '"' {
		c := s.advance()
		if c == '\\' && !s.isAtEnd() {
			switch s.peek() {
			case '"':
				value = append(value, '"')
				s.advance()
			case '\\':
				value = append(value, '\\')
				s.advance()
			default:
				value = append(value, c)
			}
			continue
		}
		if c == '\n' {
			s.line++
			s.lineStart = s.current
		}
		value = append(value, c)
	}
	if s.isAtEnd() {
		return errors.NewSyntaxError("unterminated string literal", s.line, col)
	}
	s.advance() // closing quote
	s.add(TokenString, string(value), col)
	return nil
}

func (s *Scanner) add(t TokenType, lexeme string, col int) {
	s.tokens = append(s.tokens, Token{Type: t, Lexeme: lexeme, Line: s.line, Column: col})
}

func (s *Scanner) advance() byte {
	c := s.source[s.current]
	s.current++
	return c
}

func (s *Scanner) match(expected byte) bool {
	if s.isAtEnd() || s.source[s.current] != expected {
		return false
	}
	s.current++
	return true
}

func (s *Scanner) peek() byte {
	return s.source[s.current]
}

func (s *Scanner) isAtEnd() bool {
	return s.current >= len(s.source)
}

func (s *Scanner) column() int {
	return s.current - s.lineStart
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlpha(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}

func isAlphaNumeric(c byte) bool {
	return isAlpha(c) || isDigit(c)
}
