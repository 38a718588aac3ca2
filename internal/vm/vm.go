// internal/vm/vm.go
package vm

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/tliron/commonlog"

	"tern/internal/bytecode"
	"tern/internal/errors"
)

var log = commonlog.GetLogger("tern.vm")

// VM executes a compiled program on an operand stack with a flat,
// grow-on-store memory array. Each Run starts from a clean machine
// state; the program's string pool is copied so run-time concatenation
// never mutates the compiled program.
type VM struct {
	stack   []float64
	memory  []float64
	strings []string
	out     io.Writer
}

// New creates a machine that prints to standard output.
func New() *VM {
	return NewWithOutput(os.Stdout)
}

// NewWithOutput creates a machine whose print instructions write to out.
func NewWithOutput(out io.Writer) *VM {
	return &VM{out: out}
}

// Run executes the program until HALT and returns the top-of-stack
// value, or 0 when the stack is empty at HALT. Any stack underflow,
// bad address, bad pool index, division by zero, reserved opcode, or
// falling off the end of the code is a fatal runtime error.
func (v *VM) Run(prog *bytecode.Program) (float64, error) {
	v.stack = v.stack[:0]
	v.memory = v.memory[:0]
	v.strings = append([]string(nil), prog.Strings...)

	ip := 0
	for ip < len(prog.Code) {
		in := prog.Code[ip]
		ip++

		switch in.Op {
		case bytecode.OpPushInt, bytecode.OpPushFloat:
			v.push(in.Operand)

		case bytecode.OpAdd, bytecode.OpSub, bytecode.OpMul, bytecode.OpDiv:
			right, left, err := v.pop2(in.Op)
			if err != nil {
				return 0, err
			}
			switch in.Op {
			case bytecode.OpAdd:
				v.push(left + right)
			case bytecode.OpSub:
				v.push(left - right)
			case bytecode.OpMul:
				v.push(left * right)
			case bytecode.OpDiv:
				if right == 0 {
					return 0, errors.NewRuntimeError("division by zero")
				}
				v.push(left / right)
			}

		case bytecode.OpNegate:
			val, err := v.pop(in.Op)
			if err != nil {
				return 0, err
			}
			v.push(-val)

		case bytecode.OpNot:
			val, err := v.pop(in.Op)
			if err != nil {
				return 0, err
			}
			if val == 0 {
				v.push(1)
			} else {
				v.push(0)
			}

		case bytecode.OpPop:
			if _, err := v.pop(in.Op); err != nil {
				return 0, err
			}

		case bytecode.OpStore:
			addr, err := v.pop(in.Op)
			if err != nil {
				return 0, err
			}
			val, err := v.pop(in.Op)
			if err != nil {
				return 0, err
			}
			idx := int(addr)
			if idx < 0 {
				return 0, errors.NewRuntimeError(fmt.Sprintf("invalid memory address %d for STORE", idx))
			}
			for len(v.memory) <= idx {
				v.memory = append(v.memory, 0)
			}
			v.memory[idx] = val
			// Assignment is an expression; its value stays available.
			v.push(val)

		case bytecode.OpLoad:
			addr, err := v.pop(in.Op)
			if err != nil {
				return 0, err
			}
			idx := int(addr)
			if idx < 0 || idx >= len(v.memory) {
				return 0, errors.NewRuntimeError(fmt.Sprintf("invalid memory address %d for LOAD", idx))
			}
			v.push(v.memory[idx])

		case bytecode.OpJump:
			ip = int(in.Operand)

		case bytecode.OpJumpIfFalse:
			cond, err := v.pop(in.Op)
			if err != nil {
				return 0, err
			}
			if cond == 0 {
				ip = int(in.Operand)
			}

		case bytecode.OpJumpIfTrue:
			cond, err := v.pop(in.Op)
			if err != nil {
				return 0, err
			}
			if cond != 0 {
				ip = int(in.Operand)
			}

		case bytecode.OpGreater, bytecode.OpLess, bytecode.OpGreaterEqual,
			bytecode.OpLessEqual, bytecode.OpEqual, bytecode.OpNotEqual:
			right, left, err := v.pop2(in.Op)
			if err != nil {
				return 0, err
			}
			v.push(boolToFloat(compare(in.Op, left, right)))

		case bytecode.OpAnd, bytecode.OpOr:
			// Logical operators are always lowered to jump sequences;
			// these opcodes exist only for format compatibility.
			return 0, errors.NewRuntimeError(fmt.Sprintf("reached reserved opcode %s", in.Op))

		case bytecode.OpPushString:
			idx := int(in.Operand)
			if idx < 0 || idx >= len(v.strings) {
				return 0, errors.NewRuntimeError(fmt.Sprintf("invalid string pool index %d", idx))
			}
			v.push(in.Operand)

		case bytecode.OpConcatString:
			rightIdx, leftIdx, err := v.pop2(in.Op)
			if err != nil {
				return 0, err
			}
			ri, li := int(rightIdx), int(leftIdx)
			if li < 0 || li >= len(v.strings) || ri < 0 || ri >= len(v.strings) {
				return 0, errors.NewRuntimeError(fmt.Sprintf("invalid string pool index in %s", in.Op))
			}
			v.strings = append(v.strings, v.strings[li]+v.strings[ri])
			v.push(float64(len(v.strings) - 1))

		case bytecode.OpPrintValue:
			val, err := v.pop(in.Op)
			if err != nil {
				return 0, err
			}
			fmt.Fprintln(v.out, FormatValue(val))

		case bytecode.OpPrintString:
			idxVal, err := v.pop(in.Op)
			if err != nil {
				return 0, err
			}
			idx := int(idxVal)
			if idx < 0 || idx >= len(v.strings) {
				return 0, errors.NewRuntimeError(fmt.Sprintf("invalid string pool index %d for PRINT_STRING", idx))
			}
			fmt.Fprintln(v.out, v.strings[idx])

		case bytecode.OpHalt:
			if len(v.stack) == 0 {
				return 0, nil
			}
			result := v.stack[len(v.stack)-1]
			log.Debugf("halted with result %g, stack depth %d", result, len(v.stack))
			return result, nil

		default:
			return 0, errors.NewRuntimeError(fmt.Sprintf("unknown opcode %d", in.Op))
		}
	}
	return 0, errors.NewRuntimeError("program did not halt")
}

// FormatValue renders a machine value the way print does: 0 and 1 are
// the boolean words, everything else is a number.
func FormatValue(val float64) string {
	switch val {
	case 0:
		return "false"
	case 1:
		return "true"
	default:
		return strconv.FormatFloat(val, 'g', -1, 64)
	}
}

func (v *VM) push(val float64) {
	v.stack = append(v.stack, val)
}

func (v *VM) pop(op bytecode.Op) (float64, error) {
	if len(v.stack) == 0 {
		return 0, errors.NewRuntimeError(fmt.Sprintf("stack underflow in %s", op))
	}
	val := v.stack[len(v.stack)-1]
	v.stack = v.stack[:len(v.stack)-1]
	return val, nil
}

// pop2 pops the right operand first, then the left.
func (v *VM) pop2(op bytecode.Op) (right, left float64, err error) {
	if right, err = v.pop(op); err != nil {
		return 0, 0, err
	}
	if left, err = v.pop(op); err != nil {
		return 0, 0, err
	}
	return right, left, nil
}

func compare(op bytecode.Op, left, right float64) bool {
	switch op {
	case bytecode.OpGreater:
		return left > right
	case bytecode.OpLess:
		return left < right
	case bytecode.OpGreaterEqual:
		return left >= right
	case bytecode.OpLessEqual:
		return left <= right
	case bytecode.OpEqual:
		return left == right
	default:
		return left != right
	}
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
