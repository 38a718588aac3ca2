// internal/parser/parser.go
package parser

import (
	"fmt"
	"strconv"

	"tern/internal/errors"
	"tern/internal/lexer"
)

// Parser builds a tree from a token stream by recursive descent.
// The first syntax error aborts parsing; no recovery is attempted and
// no partial tree is returned.
type Parser struct {
	tokens  []lexer.Token
	current int
}

func NewParser(tokens []lexer.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse parses the whole token stream. A single statement is returned
// directly; multiple statements are wrapped in a Block. Empty input
// yields a nil tree and no error.
func (p *Parser) Parse() (Node, error) {
	var stmts []Node
	for !p.isAtEnd() {
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	switch len(stmts) {
	case 0:
		return nil, nil
	case 1:
		return stmts[0], nil
	default:
		return &Block{Stmts: stmts}, nil
	}
}

func (p *Parser) statement() (Node, error) {
	switch p.peek().Type {
	case lexer.TokenVar:
		return p.varDeclaration()
	case lexer.TokenIf:
		return p.ifStatement()
	case lexer.TokenPrint:
		return p.printStatement()
	case lexer.TokenLBrace:
		return p.block()
	}
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.TokenSemicolon, "expected ';' after expression statement"); err != nil {
		return nil, err
	}
	return expr, nil
}

// varDeclaration parses: var identifier [= expression] ;
func (p *Parser) varDeclaration() (Node, error) {
	p.advance() // var
	name, err := p.consume(lexer.TokenIdent, "expected identifier after 'var'")
	if err != nil {
		return nil, err
	}
	var init Node
	if p.match(lexer.TokenEqual) {
		init, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(lexer.TokenSemicolon, "expected ';' after variable declaration"); err != nil {
		return nil, err
	}
	return &VarDecl{Name: name.Lexeme, Init: init, Line: name.Line, Col: name.Column}, nil
}

// ifStatement parses: if (cond) { ... } [else { ... } | else if ...]
func (p *Parser) ifStatement() (Node, error) {
	p.advance() // if
	if _, err := p.consume(lexer.TokenLParen, "expected '(' after 'if'"); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.TokenRParen, "expected ')' after if condition"); err != nil {
		return nil, err
	}
	then, err := p.block()
	if err != nil {
		return nil, err
	}
	var elseBranch Node
	if p.match(lexer.TokenElse) {
		if p.peek().Type == lexer.TokenIf {
			elseBranch, err = p.ifStatement()
		} else {
			elseBranch, err = p.block()
		}
		if err != nil {
			return nil, err
		}
	}
	return &If{Cond: cond, Then: then, Else: elseBranch}, nil
}

// printStatement parses: print ( expression ) ;
func (p *Parser) printStatement() (Node, error) {
	p.advance() // print
	if _, err := p.consume(lexer.TokenLParen, "expected '(' after 'print'"); err != nil {
		return nil, err
	}
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.TokenRParen, "expected ')' after print expression"); err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.TokenSemicolon, "expected ';' after print statement"); err != nil {
		return nil, err
	}
	return &Print{Expr: expr}, nil
}

func (p *Parser) block() (Node, error) {
	if _, err := p.consume(lexer.TokenLBrace, "expected '{' to start a block"); err != nil {
		return nil, err
	}
	var stmts []Node
	for p.peek().Type != lexer.TokenRBrace && !p.isAtEnd() {
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	if _, err := p.consume(lexer.TokenRBrace, "expected '}' to end a block"); err != nil {
		return nil, err
	}
	return &Block{Stmts: stmts}, nil
}

// Precedence ladder, lowest first:
// assignment > or > and > comparison > term > factor > unary > primary.

func (p *Parser) expression() (Node, error) {
	return p.assignment()
}

func (p *Parser) assignment() (Node, error) {
	expr, err := p.logicalOr()
	if err != nil {
		return nil, err
	}
	if p.check(lexer.TokenEqual) {
		equals := p.advance()
		target, ok := expr.(*Ident)
		if !ok {
			return nil, errors.NewSyntaxError("invalid assignment target, expected identifier", equals.Line, equals.Column)
		}
		// Right-associative: a = b = c parses as a = (b = c).
		value, err := p.assignment()
		if err != nil {
			return nil, err
		}
		return &Assign{Name: target.Name, Value: value, Line: target.Line, Col: target.Col}, nil
	}
	return expr, nil
}

func (p *Parser) logicalOr() (Node, error) {
	return p.binaryLoop(p.logicalAnd, lexer.TokenOr)
}

func (p *Parser) logicalAnd() (Node, error) {
	return p.binaryLoop(p.comparison, lexer.TokenAnd)
}

func (p *Parser) comparison() (Node, error) {
	return p.binaryLoop(p.term,
		lexer.TokenGT, lexer.TokenLT, lexer.TokenGE, lexer.TokenLE,
		lexer.TokenDoubleEqual, lexer.TokenNotEqual)
}

func (p *Parser) term() (Node, error) {
	return p.binaryLoop(p.factor, lexer.TokenPlus, lexer.TokenMinus)
}

func (p *Parser) factor() (Node, error) {
	return p.binaryLoop(p.unary, lexer.TokenStar, lexer.TokenSlash)
}

// binaryLoop parses a left-associative run of binary operators at one
// precedence level.
func (p *Parser) binaryLoop(next func() (Node, error), ops ...lexer.TokenType) (Node, error) {
	expr, err := next()
	if err != nil {
		return nil, err
	}
	for p.matchAny(ops...) {
		op := p.previous()
		right, err := next()
		if err != nil {
			return nil, err
		}
		expr = &Binary{Left: expr, Op: op.Lexeme, Right: right, Line: op.Line, Col: op.Column}
	}
	return expr, nil
}

func (p *Parser) unary() (Node, error) {
	if p.check(lexer.TokenBang) || p.check(lexer.TokenMinus) {
		op := p.advance()
		operand, err := p.unary() // right-associative
		if err != nil {
			return nil, err
		}
		return &Unary{Op: op.Lexeme, Operand: operand, Line: op.Line, Col: op.Column}, nil
	}
	return p.primary()
}

func (p *Parser) primary() (Node, error) {
	tok := p.peek()
	switch tok.Type {
	case lexer.TokenInt:
		p.advance()
		value, err := strconv.ParseInt(tok.Lexeme, 10, 64)
		if err != nil {
			return nil, errors.NewSyntaxError(fmt.Sprintf("invalid integer literal %q", tok.Lexeme), tok.Line, tok.Column)
		}
		return &IntLit{Value: value, Line: tok.Line, Col: tok.Column}, nil
	case lexer.TokenFloat:
		p.advance()
		value, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			return nil, errors.NewSyntaxError(fmt.Sprintf("invalid float literal %q", tok.Lexeme), tok.Line, tok.Column)
		}
		return &FloatLit{Value: value, Line: tok.Line, Col: tok.Column}, nil
	case lexer.TokenString:
		p.advance()
		return &StringLit{Value: tok.Lexeme, Line: tok.Line, Col: tok.Column}, nil
	case lexer.TokenTrue:
		p.advance()
		return &BoolLit{Value: true, Line: tok.Line, Col: tok.Column}, nil
	case lexer.TokenFalse:
		p.advance()
		return &BoolLit{Value: false, Line: tok.Line, Col: tok.Column}, nil
	case lexer.TokenIdent:
		p.advance()
		return &Ident{Name: tok.Lexeme, Line: tok.Line, Col: tok.Column}, nil
	case lexer.TokenLParen:
		p.advance()
		expr, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(lexer.TokenRParen, "expected ')' after expression"); err != nil {
			return nil, err
		}
		return expr, nil
	}
	return nil, errors.NewSyntaxError("expected expression", tok.Line, tok.Column)
}

// --- Token stream helpers ---

func (p *Parser) peek() lexer.Token {
	if p.current >= len(p.tokens) {
		return lexer.Token{Type: lexer.TokenEOF}
	}
	return p.tokens[p.current]
}

func (p *Parser) previous() lexer.Token {
	return p.tokens[p.current-1]
}

func (p *Parser) advance() lexer.Token {
	tok := p.peek()
	if p.current < len(p.tokens) {
		p.current++
	}
	return tok
}

func (p *Parser) check(t lexer.TokenType) bool {
	return p.peek().Type == t
}

func (p *Parser) match(t lexer.TokenType) bool {
	if p.check(t) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) matchAny(types ...lexer.TokenType) bool {
	for _, t := range types {
		if p.match(t) {
			return true
		}
	}
	return false
}

func (p *Parser) consume(t lexer.TokenType, message string) (lexer.Token, error) {
	if p.check(t) {
		return p.advance(), nil
	}
	tok := p.peek()
	return lexer.Token{}, errors.NewSyntaxError(message, tok.Line, tok.Column)
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Type == lexer.TokenEOF
}
