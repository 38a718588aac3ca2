// internal/compiler/compiler.go
package compiler

import (
	"fmt"

	"github.com/tliron/commonlog"

	"tern/internal/bytecode"
	"tern/internal/errors"
	"tern/internal/parser"
)

var log = commonlog.GetLogger("tern.compiler")

// Compiler walks a tree once, performing type resolution and scope
// checks while emitting instructions into a flat buffer. Jump targets
// that are not yet known are emitted as placeholders and backpatched.
//
// The first semantic error aborts compilation and discards the whole
// buffer; a Compiler never returns a partial program. One Compiler
// compiles one tree; it is not reusable or safe for concurrent use.
type Compiler struct {
	code    []bytecode.Instruction
	strings []string
	symbols *SymbolTable
}

func New() *Compiler {
	return &Compiler{symbols: NewSymbolTable()}
}

// Compile translates the tree into a runnable program. On success the
// program ends in HALT and every jump operand is a valid instruction
// index. On failure it returns nil and the first error encountered.
func (c *Compiler) Compile(root parser.Node) (*bytecode.Program, error) {
	if root == nil {
		return nil, errors.NewCompileError("nothing to compile", 0, 0)
	}
	c.symbols.EnterScope()
	err := c.compileNode(root)
	c.symbols.ExitScope()
	if err != nil {
		c.code = nil
		c.strings = nil
		return nil, err
	}
	c.emit(bytecode.OpHalt)
	return &bytecode.Program{Code: c.code, Strings: c.strings}, nil
}

func (c *Compiler) compileNode(n parser.Node) error {
	switch n := n.(type) {
	case *parser.IntLit:
		c.emitOperand(bytecode.OpPushInt, float64(n.Value))

	case *parser.FloatLit:
		c.emitOperand(bytecode.OpPushFloat, n.Value)

	case *parser.StringLit:
		idx := c.internString(n.Value)
		c.emitOperand(bytecode.OpPushString, float64(idx))

	case *parser.BoolLit:
		if n.Value {
			c.emitOperand(bytecode.OpPushInt, 1)
		} else {
			c.emitOperand(bytecode.OpPushInt, 0)
		}

	case *parser.Ident:
		sym := c.symbols.Lookup(n.Name)
		if sym == nil {
			return errors.NewCompileError(fmt.Sprintf("undeclared variable %q", n.Name), n.Line, n.Col)
		}
		c.emitOperand(bytecode.OpPushInt, float64(sym.Address))
		c.emit(bytecode.OpLoad)

	case *parser.Assign:
		return c.compileAssign(n)

	case *parser.Binary:
		return c.compileBinary(n)

	case *parser.Unary:
		if err := c.compileNode(n.Operand); err != nil {
			return err
		}
		switch n.Op {
		case "!":
			c.emit(bytecode.OpNot)
		case "-":
			c.emit(bytecode.OpNegate)
		default:
			return errors.NewCompileError(fmt.Sprintf("unknown unary operator %q", n.Op), n.Line, n.Col)
		}

	case *parser.VarDecl:
		return c.compileVarDecl(n)

	case *parser.Block:
		c.symbols.EnterScope()
		for _, stmt := range n.Stmts {
			if err := c.compileNode(stmt); err != nil {
				return err
			}
		}
		c.symbols.ExitScope()

	case *parser.If:
		return c.compileIf(n)

	case *parser.Print:
		if err := c.compileNode(n.Expr); err != nil {
			return err
		}
		if c.resolveType(n.Expr) == parser.TypeString {
			c.emit(bytecode.OpPrintString)
		} else {
			c.emit(bytecode.OpPrintValue)
		}
	}
	return nil
}

func (c *Compiler) compileAssign(n *parser.Assign) error {
	sym := c.symbols.Lookup(n.Name)
	if sym == nil {
		return errors.NewCompileError(fmt.Sprintf("assignment to undeclared variable %q", n.Name), n.Line, n.Col)
	}
	if err := c.compileNode(n.Value); err != nil {
		return err
	}
	assigned := c.resolveType(n.Value)
	if sym.Type != parser.TypeUnknown && assigned != parser.TypeUnknown && sym.Type != assigned {
		return errors.NewCompileError(
			fmt.Sprintf("type mismatch in assignment to %q: expected %s, got %s", n.Name, sym.Type, assigned),
			n.Line, n.Col)
	}
	// A variable declared without initializer takes the type of its
	// first assignment.
	if sym.Type == parser.TypeUnknown {
		sym.Type = assigned
	}
	c.emitOperand(bytecode.OpPushInt, float64(sym.Address))
	c.emit(bytecode.OpStore)
	return nil
}

func (c *Compiler) compileBinary(n *parser.Binary) error {
	leftType := c.resolveType(n.Left)
	rightType := c.resolveType(n.Right)

	switch n.Op {
	case "&&":
		if !isLogical(leftType) || !isLogical(rightType) {
			return errors.NewCompileError("operator '&&' requires boolean or integer operands", n.Line, n.Col)
		}
		if err := c.compileNode(n.Left); err != nil {
			return err
		}
		// Left false short-circuits to a push-0 path; otherwise the
		// right operand's value is the result.
		jumpFalse := c.emitOperand(bytecode.OpJumpIfFalse, 0)
		if err := c.compileNode(n.Right); err != nil {
			return err
		}
		jumpEnd := c.emitOperand(bytecode.OpJump, 0)
		c.patchJump(jumpFalse)
		c.emitOperand(bytecode.OpPushInt, 0)
		c.patchJump(jumpEnd)

	case "||":
		if !isLogical(leftType) || !isLogical(rightType) {
			return errors.NewCompileError("operator '||' requires boolean or integer operands", n.Line, n.Col)
		}
		if err := c.compileNode(n.Left); err != nil {
			return err
		}
		jumpTrue := c.emitOperand(bytecode.OpJumpIfTrue, 0)
		if err := c.compileNode(n.Right); err != nil {
			return err
		}
		jumpEnd := c.emitOperand(bytecode.OpJump, 0)
		c.patchJump(jumpTrue)
		c.emitOperand(bytecode.OpPushInt, 1)
		c.patchJump(jumpEnd)

	case "+":
		switch {
		case leftType == parser.TypeString && rightType == parser.TypeString:
			if err := c.compileOperands(n); err != nil {
				return err
			}
			c.emit(bytecode.OpConcatString)
		case isNumeric(leftType) && isNumeric(rightType):
			if err := c.compileOperands(n); err != nil {
				return err
			}
			c.emit(bytecode.OpAdd)
		default:
			return errors.NewCompileError("operator '+' requires two numeric operands or two string operands", n.Line, n.Col)
		}

	case "-", "*", "/":
		if !isNumeric(leftType) || !isNumeric(rightType) {
			return errors.NewCompileError(
				fmt.Sprintf("arithmetic operator %q requires numeric operands", n.Op), n.Line, n.Col)
		}
		if err := c.compileOperands(n); err != nil {
			return err
		}
		switch n.Op {
		case "-":
			c.emit(bytecode.OpSub)
		case "*":
			c.emit(bytecode.OpMul)
		case "/":
			c.emit(bytecode.OpDiv)
		}

	case ">", "<", ">=", "<=", "==", "!=":
		if !isNumeric(leftType) || !isNumeric(rightType) {
			return errors.NewCompileError(
				fmt.Sprintf("comparison operator %q requires numeric operands", n.Op), n.Line, n.Col)
		}
		if err := c.compileOperands(n); err != nil {
			return err
		}
		switch n.Op {
		case ">":
			c.emit(bytecode.OpGreater)
		case "<":
			c.emit(bytecode.OpLess)
		case ">=":
			c.emit(bytecode.OpGreaterEqual)
		case "<=":
			c.emit(bytecode.OpLessEqual)
		case "==":
			c.emit(bytecode.OpEqual)
		case "!=":
			c.emit(bytecode.OpNotEqual)
		}

	default:
		return errors.NewCompileError(fmt.Sprintf("unknown binary operator %q", n.Op), n.Line, n.Col)
	}
	return nil
}

func (c *Compiler) compileOperands(n *parser.Binary) error {
	if err := c.compileNode(n.Left); err != nil {
		return err
	}
	return c.compileNode(n.Right)
}

func (c *Compiler) compileVarDecl(n *parser.VarDecl) error {
	varType := parser.TypeUnknown
	if n.Init != nil {
		// One level of identifier aliasing: var y = x takes x's
		// declared type and requires x to exist.
		if id, ok := n.Init.(*parser.Ident); ok {
			sym := c.symbols.Lookup(id.Name)
			if sym == nil {
				return errors.NewCompileError(
					fmt.Sprintf("initializer for %q references undeclared variable %q", n.Name, id.Name),
					n.Line, n.Col)
			}
			varType = sym.Type
		} else {
			varType = c.resolveType(n.Init)
		}
	}
	if !c.symbols.Add(n.Name, varType) {
		return errors.NewCompileError(
			fmt.Sprintf("variable %q already declared in this scope", n.Name), n.Line, n.Col)
	}
	if n.Init != nil {
		if err := c.compileNode(n.Init); err != nil {
			return err
		}
		sym := c.symbols.Lookup(n.Name)
		c.emitOperand(bytecode.OpPushInt, float64(sym.Address))
		c.emit(bytecode.OpStore)
	}
	return nil
}

func (c *Compiler) compileIf(n *parser.If) error {
	if err := c.compileNode(n.Cond); err != nil {
		return err
	}
	jumpFalse := c.emitOperand(bytecode.OpJumpIfFalse, 0)
	if err := c.compileNode(n.Then); err != nil {
		return err
	}
	if n.Else != nil {
		jumpEnd := c.emitOperand(bytecode.OpJump, 0)
		c.patchJump(jumpFalse)
		if err := c.compileNode(n.Else); err != nil {
			return err
		}
		c.patchJump(jumpEnd)
	} else {
		c.patchJump(jumpFalse)
	}
	return nil
}

// resolveType determines an expression's type where the intrinsic node
// type is not enough: identifiers resolve through the symbol table and
// binary expressions combine their resolved operand types. Everything
// else reports its intrinsic type.
func (c *Compiler) resolveType(n parser.Node) parser.ValueType {
	switch n := n.(type) {
	case *parser.Ident:
		if sym := c.symbols.Lookup(n.Name); sym != nil {
			return sym.Type
		}
		log.Warningf("resolving type of undeclared variable %q", n.Name)
		return parser.TypeUnknown
	case *parser.Binary:
		leftType := c.resolveType(n.Left)
		rightType := c.resolveType(n.Right)
		if n.Op == "+" && leftType == parser.TypeString && rightType == parser.TypeString {
			return parser.TypeString
		}
		if isLogical(leftType) || leftType == parser.TypeFloat {
			if isLogical(rightType) || rightType == parser.TypeFloat {
				if leftType == parser.TypeFloat || rightType == parser.TypeFloat {
					return parser.TypeFloat
				}
				return parser.TypeInteger
			}
		}
		return parser.TypeUnknown
	default:
		return n.ValueType()
	}
}

func isNumeric(t parser.ValueType) bool {
	return t == parser.TypeInteger || t == parser.TypeFloat
}

func isLogical(t parser.ValueType) bool {
	return t == parser.TypeBoolean || t == parser.TypeInteger
}

// emit appends an instruction and returns its index.
func (c *Compiler) emit(op bytecode.Op) int {
	c.code = append(c.code, bytecode.Instruction{Op: op})
	return len(c.code) - 1
}

func (c *Compiler) emitOperand(op bytecode.Op, operand float64) int {
	c.code = append(c.code, bytecode.Instruction{Op: op, Operand: operand})
	return len(c.code) - 1
}

// patchJump points the placeholder jump at `at` to the next instruction
// to be emitted.
func (c *Compiler) patchJump(at int) {
	c.code[at].Operand = float64(len(c.code))
}

// internString appends a literal to the string pool and returns its
// index. Every literal occurrence gets its own entry; the pool is a
// log of literals, not a deduplicated table.
func (c *Compiler) internString(s string) int {
	c.strings = append(c.strings, s)
	return len(c.strings) - 1
}
