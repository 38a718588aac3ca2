// internal/errors/errors.go
package errors

import "fmt"

// Type represents the stage that produced an error.
type Type string

const (
	SyntaxError  Type = "SyntaxError"
	CompileError Type = "CompileError"
	RuntimeError Type = "RuntimeError"
)

// Error is a structured error with an optional source location.
// Each pipeline stage reports failure through one of these; no stage
// panics across a package boundary.
type Error struct {
	Type    Type
	Message string
	Line    int
	Column  int
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: %s at L%d:C%d", e.Type, e.Message, e.Line, e.Column)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// NewSyntaxError creates a new syntax error with a source location.
func NewSyntaxError(message string, line, column int) *Error {
	return &Error{Type: SyntaxError, Message: message, Line: line, Column: column}
}

// NewCompileError creates a new semantic/compile error with a source location.
func NewCompileError(message string, line, column int) *Error {
	return &Error{Type: CompileError, Message: message, Line: line, Column: column}
}

// NewRuntimeError creates a new runtime error. Runtime errors carry no
// source location; the virtual machine only knows instruction indices.
func NewRuntimeError(message string) *Error {
	return &Error{Type: RuntimeError, Message: message}
}
