package parser

import (
	"fmt"
	"strings"
)

// ValueType is the semantic type attached to expressions and symbols.
type ValueType int

const (
	TypeUnknown ValueType = iota
	TypeInteger
	TypeFloat
	TypeString
	TypeBoolean
)

func (t ValueType) String() string {
	switch t {
	case TypeInteger:
		return "INTEGER"
	case TypeFloat:
		return "FLOAT"
	case TypeString:
		return "STRING"
	case TypeBoolean:
		return "BOOLEAN"
	default:
		return "UNKNOWN"
	}
}

// Node is the closed set of tree nodes the compiler consumes. The node
// method seals the interface so the compiler's type switch stays
// exhaustive over exactly these variants.
//
// ValueType reports the node's intrinsic semantic type: the type knowable
// from the node alone, without a symbol table. Identifiers and statements
// report TypeUnknown; the compiler resolves those during the walk.
type Node interface {
	ValueType() ValueType
	String() string
	node()
}

// IsExpression reports whether n produces a value when compiled.
func IsExpression(n Node) bool {
	switch n.(type) {
	case *IntLit, *FloatLit, *StringLit, *BoolLit, *Ident, *Assign, *Binary, *Unary:
		return true
	default:
		return false
	}
}

// IntLit is an integer literal.
type IntLit struct {
	Value int64
	Line  int
	Col   int
}

// FloatLit is a floating-point literal.
type FloatLit struct {
	Value float64
	Line  int
	Col   int
}

// StringLit is a double-quoted string literal.
type StringLit struct {
	Value string
	Line  int
	Col   int
}

// BoolLit is a true/false literal.
type BoolLit struct {
	Value bool
	Line  int
	Col   int
}

// Ident is a variable reference.
type Ident struct {
	Name string
	Line int
	Col  int
}

// Assign is an assignment expression: x = value. Assignment produces
// the assigned value, so it can itself be used as an operand.
type Assign struct {
	Name  string
	Value Node
	Line  int
	Col   int
}

// Binary is a binary operator expression. Op is the operator lexeme
// ("+", "&&", "==", ...).
type Binary struct {
	Left  Node
	Op    string
	Right Node
	Line  int
	Col   int
}

// Unary is a unary operator expression: !x or -x.
type Unary struct {
	Op      string
	Operand Node
	Line    int
	Col     int
}

// VarDecl declares a variable, optionally with an initializer:
// var x = expr; or var x;
type VarDecl struct {
	Name string
	Init Node // nil when declared without initializer
	Line int
	Col  int
}

// Block is a brace-delimited statement sequence with its own scope.
type Block struct {
	Stmts []Node
}

// If is a conditional statement with an optional else branch.
type If struct {
	Cond Node
	Then Node
	Else Node // nil when absent
}

// Print is a print statement: print(expr);
type Print struct {
	Expr Node
}

func (*IntLit) node()    {}
func (*FloatLit) node()  {}
func (*StringLit) node() {}
func (*BoolLit) node()   {}
func (*Ident) node()     {}
func (*Assign) node()    {}
func (*Binary) node()    {}
func (*Unary) node()     {}
func (*VarDecl) node()   {}
func (*Block) node()     {}
func (*If) node()        {}
func (*Print) node()     {}

func (*IntLit) ValueType() ValueType    { return TypeInteger }
func (*FloatLit) ValueType() ValueType  { return TypeFloat }
func (*StringLit) ValueType() ValueType { return TypeString }
func (*BoolLit) ValueType() ValueType   { return TypeBoolean }

// Identifiers resolve through the symbol table, not intrinsically.
func (*Ident) ValueType() ValueType { return TypeUnknown }

func (a *Assign) ValueType() ValueType { return a.Value.ValueType() }

func (u *Unary) ValueType() ValueType { return u.Operand.ValueType() }

// ValueType combines the operand types statically, without symbol
// resolution. String "+" concatenates; any other string mix is an
// error, surfaced as TypeUnknown.
func (b *Binary) ValueType() ValueType {
	lt := b.Left.ValueType()
	rt := b.Right.ValueType()
	if b.Op == "+" {
		if lt == TypeString && rt == TypeString {
			return TypeString
		}
		if lt == TypeString || rt == TypeString {
			return TypeUnknown
		}
	}
	switch {
	case lt == TypeUnknown || rt == TypeUnknown:
		return TypeUnknown
	case lt == TypeFloat || rt == TypeFloat:
		return TypeFloat
	case lt == TypeInteger || rt == TypeInteger:
		return TypeInteger
	case lt == TypeBoolean || rt == TypeBoolean:
		return TypeBoolean
	default:
		return TypeUnknown
	}
}

func (*VarDecl) ValueType() ValueType { return TypeUnknown }
func (*Block) ValueType() ValueType   { return TypeUnknown }
func (*If) ValueType() ValueType      { return TypeUnknown }
func (*Print) ValueType() ValueType   { return TypeUnknown }

func (n *IntLit) String() string    { return fmt.Sprintf("Literal(%d)", n.Value) }
func (n *FloatLit) String() string  { return fmt.Sprintf("Literal(%g)", n.Value) }
func (n *StringLit) String() string { return fmt.Sprintf("Literal(%q)", n.Value) }

func (n *BoolLit) String() string {
	if n.Value {
		return "BooleanLiteral(true)"
	}
	return "BooleanLiteral(false)"
}

func (n *Ident) String() string { return "Identifier(" + n.Name + ")" }

func (n *Assign) String() string {
	return fmt.Sprintf("Assignment(%s = %s)", n.Name, n.Value)
}

func (n *Binary) String() string {
	return fmt.Sprintf("BinaryExpression(%s %s %s)", n.Left, n.Op, n.Right)
}

func (n *Unary) String() string {
	return fmt.Sprintf("UnaryExpression(%s%s)", n.Op, n.Operand)
}

func (n *VarDecl) String() string {
	if n.Init == nil {
		return fmt.Sprintf("VarDecl(%s)", n.Name)
	}
	return fmt.Sprintf("VarDecl(%s = %s)", n.Name, n.Init)
}

func (n *Block) String() string {
	var sb strings.Builder
	sb.WriteString("BlockStatement(\n")
	for _, stmt := range n.Stmts {
		sb.WriteString("  " + stmt.String() + "\n")
	}
	sb.WriteString(")")
	return sb.String()
}

func (n *If) String() string {
	s := fmt.Sprintf("IfStatement(Condition: %s, Then: %s", n.Cond, n.Then)
	if n.Else != nil {
		s += ", Else: " + n.Else.String()
	}
	return s + ")"
}

func (n *Print) String() string {
	return fmt.Sprintf("PrintStatement(%s)", n.Expr)
}
