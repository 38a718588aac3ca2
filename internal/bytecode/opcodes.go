package bytecode

// Op identifies one virtual machine instruction. The numeric values are
// part of the bundle format and must not be reordered.
type Op byte

const (
	OpPushInt    Op = iota // push an integer literal
	OpPushFloat            // push a floating-point literal
	OpAdd                  // pop two values, push their sum
	OpSub                  // pop two values, push their difference
	OpMul                  // pop two values, push their product
	OpDiv                  // pop two values, push their quotient
	OpNegate               // pop one value, push its negation
	OpPop                  // pop one value and discard it
	OpStore                // pop address, pop value, store, push value back
	OpLoad                 // pop address, push the value stored there
	OpHalt                 // stop execution, top of stack is the result

	OpJumpIfFalse // pop condition, jump to operand when exactly 0
	OpJump        // unconditional jump to operand
	OpJumpIfTrue  // pop condition, jump to operand when nonzero

	OpGreater      // pop two, push 1 if left > right else 0
	OpLess         // pop two, push 1 if left < right else 0
	OpGreaterEqual // pop two, push 1 if left >= right else 0
	OpLessEqual    // pop two, push 1 if left <= right else 0
	OpEqual        // pop two, push 1 if left == right else 0
	OpNotEqual     // pop two, push 1 if left != right else 0
	OpNot          // pop one, push 1 if 0 else 0

	// OpAnd and OpOr are reserved. The compiler always lowers logical
	// operators to jump sequences; the VM treats these as fatal.
	OpAnd
	OpOr

	OpPushString   // push a string pool index
	OpConcatString // pop two pool indices, append concatenation, push new index
	OpPrintValue   // pop a value and print it (number or boolean)
	OpPrintString  // pop a pool index and print the referenced string
)

var opNames = map[Op]string{
	OpPushInt:      "PUSH_INT",
	OpPushFloat:    "PUSH_FLOAT",
	OpAdd:          "ADD",
	OpSub:          "SUB",
	OpMul:          "MUL",
	OpDiv:          "DIV",
	OpNegate:       "NEGATE",
	OpPop:          "POP",
	OpStore:        "STORE",
	OpLoad:         "LOAD",
	OpHalt:         "HALT",
	OpJumpIfFalse:  "JUMP_IF_FALSE",
	OpJump:         "JUMP",
	OpJumpIfTrue:   "JUMP_IF_TRUE",
	OpGreater:      "GREATER",
	OpLess:         "LESS",
	OpGreaterEqual: "GREATER_EQUAL",
	OpLessEqual:    "LESS_EQUAL",
	OpEqual:        "EQUAL_EQUAL",
	OpNotEqual:     "BANG_EQUAL",
	OpNot:          "NOT",
	OpAnd:          "AND",
	OpOr:           "OR",
	OpPushString:   "PUSH_STRING",
	OpConcatString: "CONCAT_STRING",
	OpPrintValue:   "PRINT_VALUE",
	OpPrintString:  "PRINT_STRING",
}

func (op Op) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return "UNKNOWN"
}

// HasOperand reports whether the instruction's operand slot is
// meaningful for this opcode.
func (op Op) HasOperand() bool {
	switch op {
	case OpPushInt, OpPushFloat, OpPushString, OpJump, OpJumpIfFalse, OpJumpIfTrue:
		return true
	default:
		return false
	}
}
