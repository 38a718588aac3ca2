package bytecode

import "fmt"

// Instruction is one opcode plus its operand. The operand is a float64
// so one slot holds jump targets, memory addresses, pool indices and
// literal values without loss for the ranges this language produces.
type Instruction struct {
	Op      Op
	Operand float64
}

// Program is a compiled instruction sequence together with the string
// pool its string opcodes index into. The pool is seeded at compile
// time; the VM appends to its own copy at run time.
type Program struct {
	Code    []Instruction
	Strings []string
}

// Validate checks structural well-formedness: a non-empty sequence
// ending in HALT, every jump target inside the sequence, and every
// PUSH_STRING operand inside the pool. It does not prove the program
// safe to run; stack discipline is the compiler's invariant.
func (p *Program) Validate() error {
	if len(p.Code) == 0 {
		return fmt.Errorf("empty program")
	}
	if p.Code[len(p.Code)-1].Op != OpHalt {
		return fmt.Errorf("program does not end in %s", OpHalt)
	}
	for i, in := range p.Code {
		switch in.Op {
		case OpJump, OpJumpIfFalse, OpJumpIfTrue:
			target := int(in.Operand)
			if target < 0 || target >= len(p.Code) {
				return fmt.Errorf("instruction %d: jump target %d out of range [0,%d)", i, target, len(p.Code))
			}
		case OpPushString:
			idx := int(in.Operand)
			if idx < 0 || idx >= len(p.Strings) {
				return fmt.Errorf("instruction %d: string pool index %d out of range [0,%d)", i, idx, len(p.Strings))
			}
		}
		if _, known := opNames[in.Op]; !known {
			return fmt.Errorf("instruction %d: unknown opcode %d", i, in.Op)
		}
	}
	return nil
}
