package lexer

import (
	"testing"
)

func scan(t *testing.T, source string) []Token {
	t.Helper()
	tokens, err := NewScanner(source).ScanTokens()
	if err != nil {
		t.Fatalf("unexpected scan error: %v", err)
	}
	return tokens
}

func expectTypes(t *testing.T, tokens []Token, want []TokenType) {
	t.Helper()
	if len(tokens) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(tokens), tokens)
	}
	for i, tt := range want {
		if tokens[i].Type != tt {
			t.Errorf("token %d: expected %s, got %s (%q)", i, tt, tokens[i].Type, tokens[i].Lexeme)
		}
	}
}

func TestScanStatement(t *testing.T) {
	tokens := scan(t, `var x = 5;`)
	expectTypes(t, tokens, []TokenType{
		TokenVar, TokenIdent, TokenEqual, TokenInt, TokenSemicolon, TokenEOF,
	})
	if tokens[1].Lexeme != "x" {
		t.Errorf("expected identifier x, got %q", tokens[1].Lexeme)
	}
	if tokens[3].Lexeme != "5" {
		t.Errorf("expected literal 5, got %q", tokens[3].Lexeme)
	}
}

func TestKeywords(t *testing.T) {
	tokens := scan(t, `var print if else true false printer`)
	expectTypes(t, tokens, []TokenType{
		TokenVar, TokenPrint, TokenIf, TokenElse, TokenTrue, TokenFalse,
		TokenIdent, // "printer" is not a keyword
		TokenEOF,
	})
}

func TestOperators(t *testing.T) {
	tokens := scan(t, `+ - * / > < >= <= == != ! && || =`)
	expectTypes(t, tokens, []TokenType{
		TokenPlus, TokenMinus, TokenStar, TokenSlash,
		TokenGT, TokenLT, TokenGE, TokenLE,
		TokenDoubleEqual, TokenNotEqual, TokenBang,
		TokenAnd, TokenOr, TokenEqual,
		TokenEOF,
	})
}

func TestNumbers(t *testing.T) {
	tests := []struct {
		source string
		want   TokenType
		lexeme string
	}{
		{"42", TokenInt, "42"},
		{"0", TokenInt, "0"},
		{"3.14", TokenFloat, "3.14"},
		{"0.5", TokenFloat, "0.5"},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			tokens := scan(t, tt.source)
			if tokens[0].Type != tt.want || tokens[0].Lexeme != tt.lexeme {
				t.Errorf("expected %s %q, got %s %q", tt.want, tt.lexeme, tokens[0].Type, tokens[0].Lexeme)
			}
		})
	}

	t.Run("second decimal point ends the literal", func(t *testing.T) {
		tokens := scan(t, "1.2.3")
		expectTypes(t, tokens, []TokenType{TokenFloat, TokenFloat, TokenEOF})
		if tokens[0].Lexeme != "1.2" {
			t.Errorf("expected 1.2, got %q", tokens[0].Lexeme)
		}
	})
}

func TestStringLiterals(t *testing.T) {
	t.Run("plain", func(t *testing.T) {
		tokens := scan(t, `"hello world"`)
		expectTypes(t, tokens, []TokenType{TokenString, TokenEOF})
		if tokens[0].Lexeme != "hello world" {
			t.Errorf("expected %q, got %q", "hello world", tokens[0].Lexeme)
		}
	})

	t.Run("escaped quote", func(t *testing.T) {
		tokens := scan(t, `"say \"hi\""`)
		if tokens[0].Lexeme != `say "hi"` {
			t.Errorf("expected %q, got %q", `say "hi"`, tokens[0].Lexeme)
		}
	})

	t.Run("escaped backslash", func(t *testing.T) {
		tokens := scan(t, `"a\\b"`)
		if tokens[0].Lexeme != `a\b` {
			t.Errorf("expected %q, got %q", `a\b`, tokens[0].Lexeme)
		}
	})

	t.Run("unterminated", func(t *testing.T) {
		if _, err := NewScanner(`"oops`).ScanTokens(); err == nil {
			t.Fatal("expected error for unterminated string")
		}
	})
}

func TestComments(t *testing.T) {
	tokens := scan(t, "var x = 1; // trailing comment\nprint(x);")
	expectTypes(t, tokens, []TokenType{
		TokenVar, TokenIdent, TokenEqual, TokenInt, TokenSemicolon,
		TokenPrint, TokenLParen, TokenIdent, TokenRParen, TokenSemicolon,
		TokenEOF,
	})
}

func TestLineAndColumnTracking(t *testing.T) {
	tokens := scan(t, "var x;\nprint(x);")
	if tokens[0].Line != 1 || tokens[0].Column != 1 {
		t.Errorf("expected var at L1:C1, got L%d:C%d", tokens[0].Line, tokens[0].Column)
	}
	// "print" starts the second line
	if tokens[3].Line != 2 || tokens[3].Column != 1 {
		t.Errorf("expected print at L2:C1, got L%d:C%d", tokens[3].Line, tokens[3].Column)
	}
}

func TestScanErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"stray ampersand", "a & b"},
		{"stray pipe", "a | b"},
		{"unexpected character", "a # b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewScanner(tt.source).ScanTokens(); err == nil {
				t.Fatal("expected scan error, got none")
			}
		})
	}
}
